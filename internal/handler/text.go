package handler

import (
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleText handles all text messages: the password for new users, a
// dictionary search for everyone else
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	// Ensure user exists
	if err := h.authService.EnsureUserExists(userID); err != nil {
		h.logger.Error("Failed to ensure user exists", zap.Error(err))
		return nil
	}

	// Check authorization first
	authorized, err := h.authService.IsAuthorized(userID)
	if err != nil {
		h.logger.Error("Failed to check authorization", zap.Error(err))
		return c.Send(msgInternalError)
	}

	// If not authorized, check password
	if !authorized {
		if h.authService.CheckPassword(text) {
			if err := h.authService.AuthorizeUser(userID); err != nil {
				h.logger.Error("Failed to authorize user", zap.Error(err))
				return c.Send(msgInternalError)
			}

			h.logger.Info("User authorized", zap.Int64("user_id", userID))
			h.ResetState(userID)
			return c.Send("✅ Access granted!\n\n"+mainMenuText, mainMenuMarkup())
		}

		h.logger.Info("Wrong password", zap.Int64("user_id", userID))
		return c.Send("Wrong password")
	}

	if text == "" {
		return nil
	}
	return h.search(c, text)
}
