package service

import (
	"context"
	"fmt"
	"strings"

	"hanzi/internal/domain"
	"hanzi/internal/repository"

	"go.uber.org/zap"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	relatedLimit       = 10
)

// CharacterDetails is a dictionary entry with its usage examples
type CharacterDetails struct {
	domain.Character
	Words     []domain.RelatedWord     `json:"relatedWords"`
	Sentences []domain.ExampleSentence `json:"exampleSentences"`
}

// CharacterService handles dictionary lookups and imports
type CharacterService struct {
	charRepo repository.CharacterRepository
	logger   *zap.Logger
}

// NewCharacterService creates a new character service
func NewCharacterService(charRepo repository.CharacterRepository, logger *zap.Logger) *CharacterService {
	return &CharacterService{
		charRepo: charRepo,
		logger:   logger,
	}
}

// Details returns a character with related words and example sentences
func (s *CharacterService) Details(ctx context.Context, character string) (*CharacterDetails, error) {
	character = strings.TrimSpace(character)
	c, err := s.charRepo.GetCharacter(ctx, character)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrCharacterNotFound, character)
	}

	words, err := s.charRepo.WordsContaining(ctx, character, relatedLimit)
	if err != nil {
		return nil, err
	}
	sentences, err := s.charRepo.SentencesContaining(ctx, character, relatedLimit)
	if err != nil {
		return nil, err
	}

	return &CharacterDetails{Character: *c, Words: words, Sentences: sentences}, nil
}

// Search finds characters by character, pinyin or meaning
func (s *CharacterService) Search(ctx context.Context, query string, limit int) ([]domain.Character, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)
	return s.charRepo.SearchCharacters(ctx, query, limit)
}

// ByHSKLevel lists the characters of one HSK level
func (s *CharacterService) ByHSKLevel(ctx context.Context, level int) ([]domain.Character, error) {
	if level < 1 || level > 6 {
		return nil, ErrInvalidHSKLevel
	}
	return s.charRepo.GetByHSKLevel(ctx, level)
}

// Favorites lists favorite characters
func (s *CharacterService) Favorites(ctx context.Context) ([]domain.Character, error) {
	return s.charRepo.GetFavorites(ctx)
}

// ToggleFavorite flips the favorite flag and returns the new value
func (s *CharacterService) ToggleFavorite(ctx context.Context, character string) (bool, error) {
	c, err := s.charRepo.GetCharacter(ctx, character)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, fmt.Errorf("%w: %s", ErrCharacterNotFound, character)
	}

	favorite := !c.IsFavorite
	if err := s.charRepo.SetFavorite(ctx, character, favorite); err != nil {
		return false, err
	}
	return favorite, nil
}

// Random returns a random character
func (s *CharacterService) Random(ctx context.Context) (*domain.Character, error) {
	c, err := s.charRepo.GetRandom(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCharacterNotFound
	}
	return c, nil
}

// Count returns the dictionary size
func (s *CharacterService) Count(ctx context.Context) (int, error) {
	return s.charRepo.Count(ctx)
}

// Import stores a dataset. Characters without a value in the character field are skipped.
func (s *CharacterService) Import(ctx context.Context, data domain.Dataset) (int, error) {
	valid := data.Characters[:0:0]
	for _, c := range data.Characters {
		if strings.TrimSpace(c.Character) == "" {
			continue
		}
		valid = append(valid, c)
	}
	skipped := len(data.Characters) - len(valid)
	data.Characters = valid

	s.logger.Info("Importing dataset",
		zap.Int("characters", len(data.Characters)),
		zap.Int("words", len(data.Words)),
		zap.Int("sentences", len(data.Sentences)),
		zap.Int("skipped", skipped),
	)

	n, err := s.charRepo.Import(ctx, data)
	if err != nil {
		s.logger.Error("Import failed", zap.Error(err))
		return 0, err
	}

	s.logger.Info("Import completed", zap.Int("characters", n))
	return n, nil
}
