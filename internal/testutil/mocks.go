package testutil

import (
	"context"

	"hanzi/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) IsAuthorized(userID int64) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) AuthorizeUser(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) EnsureUserExists(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) ListAuthorized() ([]int64, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockCardRepository is a mock for CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) LoadAll(ctx context.Context) ([]domain.Card, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Card), args.Error(1)
}

func (m *MockCardRepository) Get(ctx context.Context, identity string) (domain.Card, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(domain.Card), args.Error(1)
}

func (m *MockCardRepository) Save(ctx context.Context, prev, next domain.Card) error {
	args := m.Called(ctx, prev, next)
	return args.Error(0)
}

// ExpectCards makes Get return each card by identity
func (m *MockCardRepository) ExpectCards(cards ...domain.Card) {
	for _, c := range cards {
		m.On("Get", mock.Anything, c.Identity).Return(c, nil)
	}
}

func (m *MockCardRepository) ResetAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCharacterRepository is a mock for CharacterRepository
type MockCharacterRepository struct {
	mock.Mock
}

func (m *MockCharacterRepository) GetCharacter(ctx context.Context, character string) (*domain.Character, error) {
	args := m.Called(ctx, character)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Character), args.Error(1)
}

func (m *MockCharacterRepository) SearchCharacters(ctx context.Context, query string, limit int) ([]domain.Character, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Character), args.Error(1)
}

func (m *MockCharacterRepository) GetByHSKLevel(ctx context.Context, level int) ([]domain.Character, error) {
	args := m.Called(ctx, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Character), args.Error(1)
}

func (m *MockCharacterRepository) GetFavorites(ctx context.Context) ([]domain.Character, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Character), args.Error(1)
}

func (m *MockCharacterRepository) SetFavorite(ctx context.Context, character string, favorite bool) error {
	args := m.Called(ctx, character, favorite)
	return args.Error(0)
}

func (m *MockCharacterRepository) GetRandom(ctx context.Context) (*domain.Character, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Character), args.Error(1)
}

func (m *MockCharacterRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCharacterRepository) WordsContaining(ctx context.Context, character string, limit int) ([]domain.RelatedWord, error) {
	args := m.Called(ctx, character, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RelatedWord), args.Error(1)
}

func (m *MockCharacterRepository) SentencesContaining(ctx context.Context, character string, limit int) ([]domain.ExampleSentence, error) {
	args := m.Called(ctx, character, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExampleSentence), args.Error(1)
}

func (m *MockCharacterRepository) Import(ctx context.Context, data domain.Dataset) (int, error) {
	args := m.Called(ctx, data)
	return args.Int(0), args.Error(1)
}
