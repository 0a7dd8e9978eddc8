package study

import "errors"

var (
	// ErrInvalidState is returned when an action does not fit the current session state.
	ErrInvalidState = errors.New("action not allowed in current session state")
	// ErrSessionComplete is returned for any card action after the queue is exhausted.
	ErrSessionComplete = errors.New("session complete")
	// ErrUnknownCard is returned for an identity that is not part of the session.
	ErrUnknownCard = errors.New("card is not part of this session")
	// ErrNotCurrentCard is returned when grading a card other than the one presented.
	ErrNotCurrentCard = errors.New("card is not the current card")
)
