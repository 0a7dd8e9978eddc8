package repository

import (
	"context"
	"errors"
	"strings"

	"hanzi/internal/domain"
)

var (
	// ErrNotFound is returned when a keyed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a card changed between reading and saving it.
	ErrConflict = errors.New("card was changed by another review")
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes s match literally inside a LIKE pattern using ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// UserRepository defines user data operations
type UserRepository interface {
	IsAuthorized(userID int64) (bool, error)
	AuthorizeUser(userID int64) error
	EnsureUserExists(userID int64) error
	ListAuthorized() ([]int64, error)
}

// CardRepository stores the review state of every learnable unit, keyed by identity.
// Save writes next only while the stored record still matches prev, so two
// reviews of one card never overwrite each other.
type CardRepository interface {
	LoadAll(ctx context.Context) ([]domain.Card, error)
	Get(ctx context.Context, identity string) (domain.Card, error)
	Save(ctx context.Context, prev, next domain.Card) error
	ResetAll(ctx context.Context) error
}

// CharacterRepository defines dictionary data operations
type CharacterRepository interface {
	GetCharacter(ctx context.Context, character string) (*domain.Character, error)
	SearchCharacters(ctx context.Context, query string, limit int) ([]domain.Character, error)
	GetByHSKLevel(ctx context.Context, level int) ([]domain.Character, error)
	GetFavorites(ctx context.Context) ([]domain.Character, error)
	SetFavorite(ctx context.Context, character string, favorite bool) error
	GetRandom(ctx context.Context) (*domain.Character, error)
	Count(ctx context.Context) (int, error)
	WordsContaining(ctx context.Context, character string, limit int) ([]domain.RelatedWord, error)
	SentencesContaining(ctx context.Context, character string, limit int) ([]domain.ExampleSentence, error)
	Import(ctx context.Context, data domain.Dataset) (int, error)
}
