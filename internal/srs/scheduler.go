// Package srs implements SM-2 style spaced-repetition scheduling and the review queue.
//
// Everything in this package is pure: no I/O, no clock reads, no shared mutable state.
package srs

import (
	"fmt"
	"math"
	"time"

	"hanzi/internal/domain"
)

const day = 24 * time.Hour

// Scheduler computes the next review state of a card from a grade.
type Scheduler struct {
	policy Policy
}

// NewScheduler creates a Scheduler. Zero policy fields take their default values.
func NewScheduler(p Policy) (*Scheduler, error) {
	p = p.withDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{policy: p}, nil
}

// Policy returns the effective policy.
func (s *Scheduler) Policy() Policy {
	return s.policy
}

// NewCard returns a fresh card using the policy's initial ease.
func (s *Scheduler) NewCard(identity string) domain.Card {
	c := domain.NewCard(identity)
	c.EaseFactor = s.policy.InitialEase
	return c
}

// Review applies grade to card at time now and returns the updated card.
// The input card is not modified.
func (s *Scheduler) Review(card domain.Card, grade domain.Grade, now time.Time) (domain.Card, error) {
	if !grade.IsValid() {
		return card, fmt.Errorf("%w: %d", domain.ErrInvalidGrade, int(grade))
	}

	p := s.policy
	next := card
	ease := math.Max(domain.MinEaseFactor, card.EaseFactor)
	prev := float64(card.IntervalDays)
	learning := card.Repetitions == 0

	var step time.Duration
	switch grade {
	case domain.GradeAgain:
		next.Repetitions = 0
		next.IntervalDays = 0
		next.EaseFactor = math.Max(domain.MinEaseFactor, ease-p.AgainPenalty)
	case domain.GradeHard:
		next.Repetitions = card.Repetitions + 1
		if learning {
			next.IntervalDays = 0
			step = p.HardStep
		} else {
			next.IntervalDays = max(1, roundDays(prev*p.HardMultiplier))
		}
		next.EaseFactor = math.Max(domain.MinEaseFactor, ease-p.HardPenalty)
	case domain.GradeGood:
		next.Repetitions = card.Repetitions + 1
		if learning {
			next.IntervalDays = 0
			step = p.GoodStep
		} else {
			next.IntervalDays = max(1, roundDays(prev*ease))
		}
		next.EaseFactor = ease
	case domain.GradeEasy:
		next.Repetitions = card.Repetitions + 1
		next.IntervalDays = max(p.EasyFloorDays, roundDays(prev*ease*p.EasyMultiplier))
		next.EaseFactor = ease + p.EasyBonus
	}

	next.IntervalDays = min(next.IntervalDays, p.MaxIntervalDays)
	next.EaseFactor = roundEase(next.EaseFactor)
	next.LastReviewed = now
	if next.IntervalDays > 0 {
		next.NextReview = now.Add(time.Duration(next.IntervalDays) * day)
	} else {
		next.NextReview = now.Add(step)
	}
	return next, nil
}

// Option is the outcome of one grade, used to label review buttons.
type Option struct {
	Grade domain.Grade
	Card  domain.Card
	Delay time.Duration
}

// Preview returns the outcome of every grade for card, in button order.
func (s *Scheduler) Preview(card domain.Card, now time.Time) []Option {
	options := make([]Option, 0, len(domain.Grades))
	for _, g := range domain.Grades {
		next, _ := s.Review(card, g, now)
		options = append(options, Option{Grade: g, Card: next, Delay: next.NextReview.Sub(now)})
	}
	return options
}

func roundDays(v float64) int {
	return int(math.Round(v))
}

// roundEase keeps the ease factor at two decimals so repeated penalties do not drift.
func roundEase(v float64) float64 {
	return math.Round(v*100) / 100
}
