package handler

import (
	"hanzi/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	msgInternalError  = "Something went wrong. Please try again later."
	msgPasswordPrompt = "Hi! This bot is private. Send the password to continue:"
)

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	// Ensure user exists in database
	if err := h.authService.EnsureUserExists(userID); err != nil {
		h.logger.Error("Failed to ensure user exists", zap.Error(err))
		return c.Send(msgInternalError)
	}

	// Check if authorized
	authorized, err := h.authService.IsAuthorized(userID)
	if err != nil {
		h.logger.Error("Failed to check authorization", zap.Error(err))
		return c.Send(msgInternalError)
	}

	if !authorized {
		h.SetState(userID, &domain.StateData{State: domain.StateWaitingPassword})
		return c.Send(msgPasswordPrompt)
	}

	// Show main menu
	h.ResetState(userID)
	if c.Callback() != nil {
		_ = c.Respond()
	}
	return c.Send(mainMenuText, mainMenuMarkup())
}
