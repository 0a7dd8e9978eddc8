package service

import (
	"context"
	"fmt"

	"hanzi/internal/clock"
	"hanzi/internal/domain"
	"hanzi/internal/metrics"
	"hanzi/internal/repository"

	"go.uber.org/zap"
)

// MatureIntervalDays is the interval at which a card counts as mature rather than learning
const MatureIntervalDays = 21

// ProgressService reports on the whole deck and resets it
type ProgressService struct {
	cardRepo repository.CardRepository
	clock    clock.Clock
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// NewProgressService creates a new progress service
func NewProgressService(cardRepo repository.CardRepository, clk clock.Clock, collector *metrics.Collector, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		cardRepo: cardRepo,
		clock:    clk,
		metrics:  collector,
		logger:   logger,
	}
}

// Progress counts cards by review status at the current time
func (s *ProgressService) Progress(ctx context.Context) (domain.Progress, error) {
	cards, err := s.cardRepo.LoadAll(ctx)
	if err != nil {
		return domain.Progress{}, fmt.Errorf("load progress: %w", err)
	}

	now := s.clock.Now()
	p := domain.Progress{Total: len(cards)}
	for _, c := range cards {
		switch {
		case c.IsNew():
			p.New++
		case c.IntervalDays >= MatureIntervalDays:
			p.Mature++
		default:
			p.Learning++
		}
		if c.IsDue(now) {
			p.Due++
		}
	}

	s.metrics.SetDueCards(p.Due)
	return p, nil
}

// DueCount returns the number of cards due now
func (s *ProgressService) DueCount(ctx context.Context) (int, error) {
	p, err := s.Progress(ctx)
	if err != nil {
		return 0, err
	}
	return p.Due, nil
}

// ResetAll returns every card to its import-time defaults
func (s *ProgressService) ResetAll(ctx context.Context) error {
	s.logger.Info("Resetting review progress")

	if err := s.cardRepo.ResetAll(ctx); err != nil {
		s.logger.Error("Failed to reset progress", zap.Error(err))
		return err
	}

	s.logger.Info("Review progress reset")
	return nil
}
