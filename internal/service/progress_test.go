package service

import (
	"context"
	"fmt"
	"testing"

	"hanzi/internal/clock"
	"hanzi/internal/domain"
	"hanzi/internal/metrics"
	"hanzi/internal/testutil"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProgressService_Progress(t *testing.T) {
	cards := []domain.Card{
		domain.NewCard("一"),
		domain.NewCard("二"),
		testutil.NewTestCard("三", 2.5, 0, 1),
		testutil.NewTestCard("四", 2.5, 3, 2),
		testutil.NewTestCard("五", 2.7, 30, 6),
	}

	tests := []struct {
		name     string
		days     int
		expected domain.Progress
	}{
		{
			name:     "at last review",
			days:     0,
			expected: domain.Progress{Total: 5, New: 2, Due: 3, Learning: 2, Mature: 1},
		},
		{
			name:     "a week later",
			days:     7,
			expected: domain.Progress{Total: 5, New: 2, Due: 4, Learning: 2, Mature: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(testutil.MockCardRepository)
			repo.On("LoadAll", mock.Anything).Return(cards, nil)
			collector := metrics.NewCollector("test")
			svc := NewProgressService(repo, clock.NewFixed(testutil.T0.AddDate(0, 0, tt.days)), collector, testutil.NewTestLogger())

			p, err := svc.Progress(context.Background())

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, p)
			assert.Equal(t, float64(tt.expected.Due), promtest.ToFloat64(collector.DueCards))
		})
	}
}

func TestProgressService_DueCountError(t *testing.T) {
	repo := new(testutil.MockCardRepository)
	repo.On("LoadAll", mock.Anything).Return(nil, fmt.Errorf("db error"))
	svc := NewProgressService(repo, clock.NewFixed(testutil.T0), nil, testutil.NewTestLogger())

	n, err := svc.DueCount(context.Background())

	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestProgressService_ResetAll(t *testing.T) {
	tests := []struct {
		name          string
		mockError     error
		expectedError bool
	}{
		{
			name:          "successful reset",
			mockError:     nil,
			expectedError: false,
		},
		{
			name:          "database error",
			mockError:     fmt.Errorf("db error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(testutil.MockCardRepository)
			mockRepo.On("ResetAll", mock.Anything).Return(tt.mockError)

			service := NewProgressService(mockRepo, clock.NewFixed(testutil.T0), nil, testutil.NewTestLogger())

			err := service.ResetAll(context.Background())

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
