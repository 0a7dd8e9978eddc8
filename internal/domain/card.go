package domain

import "time"

// Default review state for a card that has never been studied.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// Card is the review state of one learnable unit (a character or a word).
type Card struct {
	Identity     string    `json:"identity"`
	EaseFactor   float64   `json:"easeFactor"`
	IntervalDays int       `json:"intervalDays"`
	Repetitions  int       `json:"repetitions"`
	LastReviewed time.Time `json:"lastReviewed"`
	NextReview   time.Time `json:"nextReview"`
}

// NewCard returns a card with import-time defaults. It is due immediately.
func NewCard(identity string) Card {
	return Card{
		Identity:   identity,
		EaseFactor: DefaultEaseFactor,
	}
}

// IsNew reports whether the card has never been reviewed.
func (c Card) IsNew() bool {
	return c.LastReviewed.IsZero()
}

// IsDue reports whether the card should be studied at the given time.
func (c Card) IsDue(now time.Time) bool {
	return !c.NextReview.After(now)
}

// ToMillis converts a timestamp to epoch milliseconds. The zero time maps to 0.
func ToMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds to a UTC timestamp. 0 maps to the zero time.
func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
