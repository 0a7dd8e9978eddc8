package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCard(t *testing.T) {
	card := NewCard("学")

	assert.Equal(t, "学", card.Identity)
	assert.Equal(t, 2.5, card.EaseFactor)
	assert.Zero(t, card.IntervalDays)
	assert.Zero(t, card.Repetitions)
	assert.True(t, card.IsNew())
	assert.True(t, card.IsDue(time.Now()))
}

func TestCard_IsDue(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		nextReview time.Time
		expected   bool
	}{
		{name: "never scheduled", nextReview: time.Time{}, expected: true},
		{name: "in the past", nextReview: now.Add(-time.Hour), expected: true},
		{name: "exactly now", nextReview: now, expected: true},
		{name: "in the future", nextReview: now.Add(time.Minute), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := Card{Identity: "人", NextReview: tt.nextReview}
			assert.Equal(t, tt.expected, card.IsDue(now))
		})
	}
}

func TestMillisConversion(t *testing.T) {
	assert.Equal(t, int64(0), ToMillis(time.Time{}))
	assert.True(t, FromMillis(0).IsZero())

	ts := time.Date(2024, 12, 12, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, ts, FromMillis(ToMillis(ts)))
}
