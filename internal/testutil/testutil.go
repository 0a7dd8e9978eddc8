package testutil

import (
	"time"

	"hanzi/internal/domain"

	"go.uber.org/zap"
)

// T0 is a fixed reference time for deterministic tests
var T0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user
func NewTestUser(userID int64, authorized bool) *domain.User {
	return &domain.User{
		UserID:     userID,
		Authorized: authorized,
		CreatedAt:  time.Now(),
	}
}

// NewTestCard creates a card that was last reviewed at T0 and is due after the interval
func NewTestCard(identity string, ease float64, intervalDays, repetitions int) domain.Card {
	return domain.Card{
		Identity:     identity,
		EaseFactor:   ease,
		IntervalDays: intervalDays,
		Repetitions:  repetitions,
		LastReviewed: T0,
		NextReview:   T0.AddDate(0, 0, intervalDays),
	}
}

// NewDueCards creates never-reviewed cards, due immediately
func NewDueCards(identities ...string) []domain.Card {
	cards := make([]domain.Card, 0, len(identities))
	for _, id := range identities {
		cards = append(cards, domain.NewCard(id))
	}
	return cards
}

// NewTestCharacter creates a test dictionary entry
func NewTestCharacter(character, pinyin, meaning string, hsk int) *domain.Character {
	return &domain.Character{
		Character: character,
		Pinyin:    pinyin,
		Meaning:   meaning,
		HSKLevel:  hsk,
	}
}
