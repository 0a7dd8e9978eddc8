package handler

import (
	"context"
	"errors"

	"hanzi/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleProgress shows deck counters
func (h *Handler) handleProgress(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	p, err := h.progressService.Progress(ctx)
	if err != nil {
		h.logger.Error("Failed to load progress", zap.Error(err))
		return h.reply(c, msgInternalError, nil)
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnStudy), markup.Row(btnMainMenu))
	return h.reply(c, formatProgress(p), markup)
}

// handleRandom shows a random dictionary entry
func (h *Handler) handleRandom(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	ch, err := h.charService.Random(ctx)
	if errors.Is(err, service.ErrCharacterNotFound) {
		return h.reply(c, "The dictionary is empty. Import a dataset first.", mainMenuMarkup())
	}
	if err != nil {
		h.logger.Error("Failed to get random character", zap.Error(err))
		return h.reply(c, msgInternalError, nil)
	}

	return h.showCharacter(c, ch.Character)
}

// handleFavorites lists favorite characters
func (h *Handler) handleFavorites(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	chars, err := h.charService.Favorites(ctx)
	if err != nil {
		h.logger.Error("Failed to load favorites", zap.Error(err))
		return h.reply(c, msgInternalError, nil)
	}
	if len(chars) == 0 {
		return h.reply(c, "No favorites yet. Open a character and tap ☆ to add it.", mainMenuMarkup())
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnMainMenu))
	return h.reply(c, formatCharacterList("⭐ Favorites", chars), markup)
}

// handleToggleFavorite flips the favorite flag of the character in the button payload
func (h *Handler) handleToggleFavorite(c tele.Context) error {
	character := cleanCallbackData(c.Data())
	if character == "" {
		return c.Respond(&tele.CallbackResponse{Text: "Unknown button"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	favorite, err := h.charService.ToggleFavorite(ctx, character)
	if err != nil {
		h.logger.Error("Failed to toggle favorite", zap.String("character", character), zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "Could not update favorites"})
	}

	h.logger.Debug("Favorite toggled", zap.String("character", character), zap.Bool("favorite", favorite))
	return h.showCharacter(c, character)
}

// showCharacter renders a dictionary entry with its buttons
func (h *Handler) showCharacter(c tele.Context, character string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	details, err := h.charService.Details(ctx, character)
	if errors.Is(err, service.ErrCharacterNotFound) {
		return h.reply(c, "Character not found.", mainMenuMarkup())
	}
	if err != nil {
		h.logger.Error("Failed to load character", zap.String("character", character), zap.Error(err))
		return h.reply(c, msgInternalError, nil)
	}

	return h.reply(c, formatDetails(details), detailsMarkup(details.Character))
}

// search looks the text up in the dictionary. A single matching character is
// shown in full, several as a list.
func (h *Handler) search(c tele.Context, query string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	chars, err := h.charService.Search(ctx, query, 0)
	if err != nil {
		h.logger.Error("Search failed", zap.String("query", query), zap.Error(err))
		return c.Send(msgInternalError)
	}

	switch len(chars) {
	case 0:
		return c.Send("Nothing found for that query.", mainMenuMarkup())
	case 1:
		return h.showCharacter(c, chars[0].Character)
	}

	for _, ch := range chars {
		if ch.Character == query {
			return h.showCharacter(c, ch.Character)
		}
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnMainMenu))
	return c.Send(formatCharacterList("🔎 Results", chars), tele.ModeHTML, markup)
}
