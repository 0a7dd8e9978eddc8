package handler

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"hanzi/internal/domain"
	"hanzi/internal/service"
	"hanzi/internal/srs"
	"hanzi/internal/study"

	tele "gopkg.in/telebot.v3"
)

const (
	maxWordsShown     = 5
	maxSentencesShown = 3
	maxResultsShown   = 15
)

// formatFront renders the question side of a card
func formatFront(card domain.Card, remaining int) string {
	var b strings.Builder
	if card.IsNew() {
		b.WriteString("🆕 New card\n\n")
	}
	fmt.Fprintf(&b, "<b>%s</b>\n\n", html.EscapeString(card.Identity))
	fmt.Fprintf(&b, "<i>Cards left: %d</i>", remaining)
	return b.String()
}

// formatDetails renders a dictionary entry with its examples
func formatDetails(d *service.CharacterDetails) string {
	var b strings.Builder
	c := d.Character

	fmt.Fprintf(&b, "<b>%s</b>", html.EscapeString(c.Character))
	if c.Traditional != "" && c.Traditional != c.Character {
		fmt.Fprintf(&b, " (%s)", html.EscapeString(c.Traditional))
	}
	if c.IsFavorite {
		b.WriteString(" ⭐")
	}
	b.WriteString("\n")
	if c.Pinyin != "" {
		fmt.Fprintf(&b, "🔊 %s\n", html.EscapeString(c.Pinyin))
	}
	if c.Meaning != "" {
		fmt.Fprintf(&b, "📖 %s\n", html.EscapeString(c.Meaning))
	}

	var facts []string
	if c.HSKLevel > 0 {
		facts = append(facts, "HSK "+strconv.Itoa(c.HSKLevel))
	}
	if c.StrokeCount > 0 {
		facts = append(facts, fmt.Sprintf("%d strokes", c.StrokeCount))
	}
	if c.TypeOfWord != "" {
		facts = append(facts, html.EscapeString(c.TypeOfWord))
	}
	if len(facts) > 0 {
		fmt.Fprintf(&b, "<i>%s</i>\n", strings.Join(facts, " · "))
	}

	if len(d.Words) > 0 {
		b.WriteString("\n<b>Words</b>\n")
		for _, w := range d.Words[:min(len(d.Words), maxWordsShown)] {
			fmt.Fprintf(&b, "%s %s: %s\n",
				html.EscapeString(w.Simplified), html.EscapeString(w.Pinyin), html.EscapeString(w.Meaning))
		}
	}

	if len(d.Sentences) > 0 {
		b.WriteString("\n<b>Examples</b>\n")
		for _, s := range d.Sentences[:min(len(d.Sentences), maxSentencesShown)] {
			fmt.Fprintf(&b, "%s\n<i>%s</i>\n", html.EscapeString(s.Simplified), html.EscapeString(s.Translation))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatBack renders the answer side of a card; details may be nil for cards
// whose dictionary entry is missing
func formatBack(card domain.Card, details *service.CharacterDetails, remaining int) string {
	if details == nil {
		return formatFront(card, remaining)
	}
	return fmt.Sprintf("%s\n\n<i>Cards left: %d</i>", formatDetails(details), remaining)
}

// gradeLabel renders a grade button such as "Good · <10m"
func gradeLabel(o srs.Option) string {
	return fmt.Sprintf("%s · %s", o.Grade.Title(), srs.FormatInterval(o.Delay))
}

// gradeMarkup returns one button per grade for the revealed card
func gradeMarkup(identity string, options []srs.Option) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	buttons := make([]tele.Btn, 0, len(options))
	for _, o := range options {
		buttons = append(buttons, markup.Data(gradeLabel(o), btnGrade.Unique, strconv.Itoa(int(o.Grade)), identity))
	}
	markup.Inline(
		markup.Row(buttons[:min(2, len(buttons))]...),
		markup.Row(buttons[min(2, len(buttons)):]...),
		markup.Row(btnEndSession),
	)
	return markup
}

// frontMarkup returns the buttons shown with a hidden answer
func frontMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(btnReveal),
		markup.Row(btnEndSession),
	)
	return markup
}

// detailsMarkup returns the buttons shown under a dictionary entry
func detailsMarkup(c domain.Character) *tele.ReplyMarkup {
	label := "☆ Add to favorites"
	if c.IsFavorite {
		label = "★ Remove from favorites"
	}
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data(label, btnFavorite.Unique, c.Character)),
		markup.Row(btnRandom, btnMainMenu),
	)
	return markup
}

// formatSummary renders the end of a session
func formatSummary(stats study.Stats) string {
	if stats.CardsStudied == 0 {
		return "🎉 Nothing to review right now. Come back later!"
	}
	return fmt.Sprintf("🎉 Session complete!\n\nCards studied: %d\nCorrect answers: %d",
		stats.CardsStudied, stats.CorrectAnswers)
}

// formatProgress renders deck counters
func formatProgress(p domain.Progress) string {
	return fmt.Sprintf(
		"📊 Progress\n\nTotal: %d\nDue now: %d\nNew: %d\nLearning: %d\nMature: %d",
		p.Total, p.Due, p.New, p.Learning, p.Mature,
	)
}

// formatCharacterList renders search results or favorites, one line each
func formatCharacterList(title string, chars []domain.Character) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d)\n\n", title, len(chars))
	for i, c := range chars[:min(len(chars), maxResultsShown)] {
		fmt.Fprintf(&b, "%d. <b>%s</b> %s: %s\n", i+1,
			html.EscapeString(c.Character), html.EscapeString(c.Pinyin), html.EscapeString(c.Meaning))
	}
	if len(chars) > maxResultsShown {
		fmt.Fprintf(&b, "…and %d more", len(chars)-maxResultsShown)
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseGradeArgs decodes the payload of a grade button
func parseGradeArgs(args []string) (domain.Grade, string, error) {
	if len(args) != 2 {
		return 0, "", fmt.Errorf("malformed grade payload %q", strings.Join(args, "|"))
	}
	g, err := domain.ParseGrade(args[0])
	if err != nil {
		return 0, "", err
	}
	return g, args[1], nil
}
