package handler

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// If message is not modified, it was already edited by another callback
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		_ = c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	// Always acknowledge callback before sending new message
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// callbackRoute splits raw callback data into button unique and payload.
// Clients sometimes drop the leading \f marker, so both forms are accepted.
func callbackRoute(raw string) (unique string, args []string) {
	data := cleanCallbackData(raw)
	if data == "" {
		return "", nil
	}
	parts := strings.Split(data, "|")
	return parts[0], parts[1:]
}

// handleCallback handles callback queries that no button handler matched
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	unique := callback.Unique
	args := c.Args()
	if unique == "" {
		unique, args = callbackRoute(callback.Data)
	}

	h.logger.Info("handleCallback: Processing callback",
		zap.String("unique", unique),
		zap.Strings("args", args),
		zap.String("data_raw", callback.Data),
		zap.Int64("user_id", c.Sender().ID),
	)

	switch unique {
	case btnStudy.Unique:
		return h.handleStudy(c)
	case btnProgress.Unique:
		return h.handleProgress(c)
	case btnRandom.Unique:
		return h.handleRandom(c)
	case btnFavorites.Unique:
		return h.handleFavorites(c)
	case btnReveal.Unique:
		return h.handleReveal(c)
	case btnEndSession.Unique:
		return h.handleEndSession(c)
	case btnMainMenu.Unique:
		return h.handleStart(c)
	case btnGrade.Unique:
		return h.gradeWithArgs(c, args)
	}

	// If it's not handled, acknowledge it anyway
	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", callback.Data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}
