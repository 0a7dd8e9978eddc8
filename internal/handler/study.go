package handler

import (
	"context"
	"errors"
	"time"

	"hanzi/internal/domain"
	"hanzi/internal/repository"
	"hanzi/internal/service"
	"hanzi/internal/study"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleStudy starts a new review session with the cards due now
func (h *Handler) handleStudy(c tele.Context) error {
	userID := c.Sender().ID
	defer h.lockUser(userID)()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	view, err := h.studyService.StartSession(ctx, ownerKey(userID), time.Time{})
	if err != nil {
		h.logger.Error("Failed to start session", zap.Int64("user_id", userID), zap.Error(err))
		return h.reply(c, msgInternalError, nil)
	}

	if view.Current == nil {
		h.ResetState(userID)
		return h.reply(c, formatSummary(view.Stats), mainMenuMarkup())
	}

	h.SetState(userID, &domain.StateData{State: domain.StateStudying, SessionID: view.ID})
	return h.reply(c, formatFront(*view.Current, view.Remaining), frontMarkup())
}

// handleReveal shows the answer and the grade buttons
func (h *Handler) handleReveal(c tele.Context) error {
	userID := c.Sender().ID
	defer h.lockUser(userID)()

	state := h.GetState(userID)
	if state.State != domain.StateStudying {
		return c.Respond(&tele.CallbackResponse{Text: "No active session. Press Study to start one."})
	}

	view, err := h.studyService.Reveal(state.SessionID)
	if err != nil {
		return h.respondStudyError(c, userID, err)
	}
	options, err := h.studyService.Preview(state.SessionID)
	if err != nil {
		return h.respondStudyError(c, userID, err)
	}

	card := *view.Current
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	details, err := h.charService.Details(ctx, card.Identity)
	if err != nil && !errors.Is(err, service.ErrCharacterNotFound) {
		h.logger.Warn("Failed to load character details", zap.String("card", card.Identity), zap.Error(err))
	}

	return h.reply(c, formatBack(card, details, view.Remaining), gradeMarkup(card.Identity, options))
}

// handleGrade records the grade carried by a grade button
func (h *Handler) handleGrade(c tele.Context) error {
	return h.gradeWithArgs(c, c.Args())
}

func (h *Handler) gradeWithArgs(c tele.Context, args []string) error {
	userID := c.Sender().ID
	defer h.lockUser(userID)()

	grade, identity, err := parseGradeArgs(args)
	if err != nil {
		h.logger.Warn("Bad grade callback", zap.Strings("args", args), zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "Unknown button"})
	}

	state := h.GetState(userID)
	if state.State != domain.StateStudying {
		return c.Respond(&tele.CallbackResponse{Text: "No active session. Press Study to start one."})
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if _, err := h.studyService.SubmitGrade(ctx, state.SessionID, identity, grade); err != nil {
		return h.respondStudyError(c, userID, err)
	}

	view, err := h.studyService.Session(state.SessionID)
	if err != nil {
		return h.respondStudyError(c, userID, err)
	}

	if view.Current == nil {
		h.ResetState(userID)
		_ = h.studyService.EndSession(view.ID)
		return h.reply(c, formatSummary(view.Stats), mainMenuMarkup())
	}
	return h.reply(c, formatFront(*view.Current, view.Remaining), frontMarkup())
}

// handleEndSession abandons the current session
func (h *Handler) handleEndSession(c tele.Context) error {
	userID := c.Sender().ID
	defer h.lockUser(userID)()

	state := h.GetState(userID)
	h.ResetState(userID)

	if state.State == domain.StateStudying {
		view, err := h.studyService.Session(state.SessionID)
		if err == nil {
			_ = h.studyService.EndSession(state.SessionID)
			return h.reply(c, formatSummary(view.Stats), mainMenuMarkup())
		}
	}
	return h.reply(c, mainMenuText, mainMenuMarkup())
}

// respondStudyError maps session errors to a short callback answer
func (h *Handler) respondStudyError(c tele.Context, userID int64, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		h.ResetState(userID)
		return c.Respond(&tele.CallbackResponse{Text: "This session has ended. Press Study to start a new one.", ShowAlert: true})
	case errors.Is(err, study.ErrSessionComplete):
		h.ResetState(userID)
		return c.Respond(&tele.CallbackResponse{Text: "This session is already complete."})
	case errors.Is(err, study.ErrInvalidState), errors.Is(err, study.ErrNotCurrentCard), errors.Is(err, study.ErrUnknownCard):
		// Stale button from an earlier message
		return c.Respond(&tele.CallbackResponse{Text: "This card was already answered."})
	case errors.Is(err, domain.ErrInvalidGrade):
		return c.Respond(&tele.CallbackResponse{Text: "Unknown grade"})
	case errors.Is(err, repository.ErrConflict):
		return c.Respond(&tele.CallbackResponse{Text: "This card was just reviewed elsewhere. Please grade it again.", ShowAlert: true})
	}

	h.logger.Error("Study action failed", zap.Int64("user_id", userID), zap.Error(err))
	return c.Respond(&tele.CallbackResponse{Text: "Could not save your answer. Please try again.", ShowAlert: true})
}

// reply edits the message behind a callback, or sends a new one for commands
func (h *Handler) reply(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	opts := []any{tele.ModeHTML}
	if markup != nil {
		opts = append(opts, markup)
	}

	if c.Callback() != nil {
		if err := c.Edit(text, opts...); err != nil {
			if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
				return nil // Message was already modified, just acknowledged
			}
			return c.Send(text, opts...)
		}
		return c.Respond()
	}
	return c.Send(text, opts...)
}
