package service

import (
	"context"
	"fmt"
	"testing"

	"hanzi/internal/domain"
	"hanzi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCharacterService_Details(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo := new(testutil.MockCharacterRepository)
		repo.On("GetCharacter", ctx, "学").Return(testutil.NewTestCharacter("学", "xué", "to study", 1), nil)
		repo.On("WordsContaining", ctx, "学", 10).Return([]domain.RelatedWord{{Simplified: "学生"}}, nil)
		repo.On("SentencesContaining", ctx, "学", 10).Return([]domain.ExampleSentence{{Simplified: "我是学生。"}}, nil)
		svc := NewCharacterService(repo, testutil.NewTestLogger())

		d, err := svc.Details(ctx, " 学 ")

		require.NoError(t, err)
		assert.Equal(t, "xué", d.Pinyin)
		assert.Len(t, d.Words, 1)
		assert.Len(t, d.Sentences, 1)
		repo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(testutil.MockCharacterRepository)
		repo.On("GetCharacter", ctx, "猫").Return(nil, nil)
		svc := NewCharacterService(repo, testutil.NewTestLogger())

		d, err := svc.Details(ctx, "猫")

		assert.ErrorIs(t, err, ErrCharacterNotFound)
		assert.Nil(t, d)
		repo.AssertNotCalled(t, "WordsContaining", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCharacterService_Search(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		limit         int
		expectedQuery string
		expectedLimit int
		expectedError error
	}{
		{name: "default limit", query: "study", expectedQuery: "study", expectedLimit: 20},
		{name: "trimmed", query: "  xué ", limit: 5, expectedQuery: "xué", expectedLimit: 5},
		{name: "capped limit", query: "a", limit: 1000, expectedQuery: "a", expectedLimit: 100},
		{name: "empty", query: "   ", expectedError: ErrEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(testutil.MockCharacterRepository)
			if tt.expectedError == nil {
				repo.On("SearchCharacters", mock.Anything, tt.expectedQuery, tt.expectedLimit).
					Return([]domain.Character{{Character: "学"}}, nil)
			}
			svc := NewCharacterService(repo, testutil.NewTestLogger())

			chars, err := svc.Search(context.Background(), tt.query, tt.limit)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, chars)
			} else {
				assert.NoError(t, err)
				assert.Len(t, chars, 1)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCharacterService_ByHSKLevel(t *testing.T) {
	for _, level := range []int{0, 7, -1} {
		svc := NewCharacterService(new(testutil.MockCharacterRepository), testutil.NewTestLogger())
		_, err := svc.ByHSKLevel(context.Background(), level)
		assert.ErrorIs(t, err, ErrInvalidHSKLevel, "level %d", level)
	}

	repo := new(testutil.MockCharacterRepository)
	repo.On("GetByHSKLevel", mock.Anything, 3).Return([]domain.Character{{Character: "龙"}}, nil)
	svc := NewCharacterService(repo, testutil.NewTestLogger())

	chars, err := svc.ByHSKLevel(context.Background(), 3)

	assert.NoError(t, err)
	assert.Len(t, chars, 1)
}

func TestCharacterService_ToggleFavorite(t *testing.T) {
	tests := []struct {
		name          string
		current       *domain.Character
		setError      error
		expected      bool
		expectedError bool
	}{
		{
			name:     "mark favorite",
			current:  &domain.Character{Character: "学"},
			expected: true,
		},
		{
			name:     "unmark favorite",
			current:  &domain.Character{Character: "学", IsFavorite: true},
			expected: false,
		},
		{
			name:          "update fails",
			current:       &domain.Character{Character: "学"},
			setError:      fmt.Errorf("db error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(testutil.MockCharacterRepository)
			repo.On("GetCharacter", mock.Anything, "学").Return(tt.current, nil)
			repo.On("SetFavorite", mock.Anything, "学", !tt.current.IsFavorite).Return(tt.setError)
			svc := NewCharacterService(repo, testutil.NewTestLogger())

			favorite, err := svc.ToggleFavorite(context.Background(), "学")

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, favorite)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCharacterService_Random(t *testing.T) {
	repo := new(testutil.MockCharacterRepository)
	repo.On("GetRandom", mock.Anything).Return(nil, nil)
	svc := NewCharacterService(repo, testutil.NewTestLogger())

	c, err := svc.Random(context.Background())

	assert.ErrorIs(t, err, ErrCharacterNotFound)
	assert.Nil(t, c)
}

func TestCharacterService_Import(t *testing.T) {
	repo := new(testutil.MockCharacterRepository)
	expected := domain.Dataset{
		Characters: []domain.Character{{Character: "学"}, {Character: "人"}},
		Words:      []domain.RelatedWord{{Simplified: "学生"}},
	}
	repo.On("Import", mock.Anything, expected).Return(2, nil)
	svc := NewCharacterService(repo, testutil.NewTestLogger())

	n, err := svc.Import(context.Background(), domain.Dataset{
		Characters: []domain.Character{{Character: "学"}, {Character: " "}, {Character: "人"}},
		Words:      []domain.RelatedWord{{Simplified: "学生"}},
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	repo.AssertExpectations(t)
}
