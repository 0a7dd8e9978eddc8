package middleware

import (
	"hanzi/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	msgInternalError  = "Something went wrong. Please try again later."
	msgPasswordPrompt = "Hi! This bot is private. Send the password to continue:"
)

// AuthMiddleware rejects updates from users who have not entered the bot password
func AuthMiddleware(authService *service.AuthService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}
			userID := sender.ID

			// Ensure user exists
			if err := authService.EnsureUserExists(userID); err != nil {
				logger.Error("Failed to ensure user exists in middleware", zap.Error(err))
				return c.Send(msgInternalError)
			}

			authorized, err := authService.IsAuthorized(userID)
			if err != nil {
				logger.Error("Failed to check authorization in middleware", zap.Error(err))
				return c.Send(msgInternalError)
			}

			if !authorized && c.Text() != "/start" {
				logger.Debug("Rejected unauthorized update", zap.Int64("user_id", userID))
				if c.Callback() != nil {
					_ = c.Respond()
				}
				return c.Send(msgPasswordPrompt)
			}

			return next(c)
		}
	}
}
