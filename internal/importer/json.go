// Package importer reads character datasets from files and git repositories.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"hanzi/internal/domain"
)

type chineseData struct {
	Hanzi            []hanziChar       `json:"hanzi"`
	RelatedWords     []relatedWord     `json:"related_words"`
	ExampleSentences []exampleSentence `json:"example_sentences"`
}

type hanziChar struct {
	Character             string          `json:"character"`
	Traditional           *string         `json:"traditional"`
	Pinyin                *string         `json:"pinyin"`
	Meaning               *string         `json:"meaning"`
	Difficulty            *string         `json:"difficulty"`
	TypeOfWord            *string         `json:"typeOfWord"`
	Frequency             *string         `json:"frequency"`
	RadicalsJSON          json.RawMessage `json:"radicalsJson"`
	StrokeOrderVisualJSON json.RawMessage `json:"strokeOrderVisualJson"`
	StrokeOrderSVGJSON    json.RawMessage `json:"strokeOrderSVGJson"`
	StrokeCount           *int            `json:"strokeCount"`
	HSKLevel              *int            `json:"hskLevel"`
	IsFavorite            bool            `json:"isFavorite"`
}

type relatedWord struct {
	Simplified  string  `json:"simplified"`
	Traditional *string `json:"traditional"`
	Pinyin      *string `json:"pinyin"`
	Meaning     *string `json:"meaning"`
	TypeOfWord  *string `json:"typeOfWord"`
}

type exampleSentence struct {
	ChineseSimplified  string  `json:"chineseSimplified"`
	ChineseTraditional *string `json:"chineseTraditional"`
	Pinyin             *string `json:"pinyin"`
	Translation        string  `json:"translation"`
}

// DecodeJSON reads a dataset in the {hanzi, related_words, example_sentences} layout.
// Nested JSON values such as radicals are kept as compact JSON text.
func DecodeJSON(r io.Reader) (domain.Dataset, error) {
	var data chineseData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return domain.Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}

	out := domain.Dataset{
		Characters: make([]domain.Character, 0, len(data.Hanzi)),
		Words:      make([]domain.RelatedWord, 0, len(data.RelatedWords)),
		Sentences:  make([]domain.ExampleSentence, 0, len(data.ExampleSentences)),
	}

	for _, h := range data.Hanzi {
		out.Characters = append(out.Characters, domain.Character{
			Character:         h.Character,
			Traditional:       deref(h.Traditional),
			Pinyin:            deref(h.Pinyin),
			Meaning:           deref(h.Meaning),
			Difficulty:        deref(h.Difficulty),
			TypeOfWord:        deref(h.TypeOfWord),
			Frequency:         deref(h.Frequency),
			RadicalsJSON:      rawText(h.RadicalsJSON),
			StrokeOrderVisual: rawText(h.StrokeOrderVisualJSON),
			StrokeOrderSVG:    rawText(h.StrokeOrderSVGJSON),
			StrokeCount:       derefInt(h.StrokeCount),
			HSKLevel:          derefInt(h.HSKLevel),
			IsFavorite:        h.IsFavorite,
		})
	}
	for _, w := range data.RelatedWords {
		out.Words = append(out.Words, domain.RelatedWord{
			Simplified:  w.Simplified,
			Traditional: deref(w.Traditional),
			Pinyin:      deref(w.Pinyin),
			Meaning:     deref(w.Meaning),
			TypeOfWord:  deref(w.TypeOfWord),
		})
	}
	for _, s := range data.ExampleSentences {
		out.Sentences = append(out.Sentences, domain.ExampleSentence{
			Simplified:  s.ChineseSimplified,
			Traditional: deref(s.ChineseTraditional),
			Pinyin:      deref(s.Pinyin),
			Translation: s.Translation,
		})
	}

	return out, nil
}

func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
