// Package study runs a single review session over a queue of due cards.
package study

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"hanzi/internal/clock"
	"hanzi/internal/domain"
	"hanzi/internal/srs"
)

// State is the position of a session in its presentation cycle.
type State int

const (
	StateIdle State = iota
	StatePresenting
	StateRevealed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePresenting:
		return "presenting"
	case StateRevealed:
		return "revealed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Store reads and conditionally writes card records. Save must fail when the
// stored record no longer matches prev.
type Store interface {
	Get(ctx context.Context, identity string) (domain.Card, error)
	Save(ctx context.Context, prev, next domain.Card) error
}

// Stats are the per-session counters.
type Stats struct {
	CardsStudied   int `json:"cardsStudied"`
	CorrectAnswers int `json:"correctAnswers"`
}

// Options tune how a session counts and re-queues answers.
type Options struct {
	// PassGrade is the lowest grade counted as a correct answer. Zero means GradeEasy.
	PassGrade domain.Grade
	// RequeueLapses puts a card graded AGAIN back at the end of the queue.
	RequeueLapses bool
}

// Session presents due cards one at a time and records grades.
type Session struct {
	scheduler *srs.Scheduler
	store     Store
	clock     clock.Clock
	opts      Options

	mu      sync.Mutex
	queue   []domain.Card
	members map[string]struct{}
	state   State
	stats   Stats
}

// New starts a session over cards. An empty sequence gives a session that is
// already complete.
func New(scheduler *srs.Scheduler, store Store, clk clock.Clock, cards iter.Seq[domain.Card], opts Options) *Session {
	if !opts.PassGrade.IsValid() {
		opts.PassGrade = domain.GradeEasy
	}

	s := &Session{
		scheduler: scheduler,
		store:     store,
		clock:     clk,
		opts:      opts,
		members:   make(map[string]struct{}),
	}
	for c := range cards {
		s.queue = append(s.queue, c)
		s.members[c.Identity] = struct{}{}
	}
	if len(s.queue) > 0 {
		s.state = StatePresenting
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the card being presented. ok is false once the session is complete.
func (s *Session) Current() (card domain.Card, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		return domain.Card{}, false
	}
	return s.queue[0], true
}

// Reveal shows the answer of the current card.
func (s *Session) Reveal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StatePresenting:
		s.state = StateRevealed
		return nil
	case StateIdle:
		return ErrSessionComplete
	default:
		return ErrInvalidState
	}
}

// Preview returns the outcome of each grade for the current card.
func (s *Session) Preview() ([]srs.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		return nil, ErrSessionComplete
	}
	return s.scheduler.Preview(s.queue[0], s.clock.Now()), nil
}

// SubmitGrade grades the revealed card, persists the new review state and
// advances to the next card. Scheduling starts from the stored record, not the
// queued copy. If reading or saving fails the session is left as it was.
func (s *Session) SubmitGrade(ctx context.Context, identity string, grade domain.Grade) (domain.Card, error) {
	if !grade.IsValid() {
		return domain.Card{}, fmt.Errorf("%w: %d", domain.ErrInvalidGrade, int(grade))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[identity]; !ok {
		return domain.Card{}, fmt.Errorf("%w: %s", ErrUnknownCard, identity)
	}
	switch s.state {
	case StateIdle:
		return domain.Card{}, ErrSessionComplete
	case StatePresenting:
		return domain.Card{}, ErrInvalidState
	}
	if s.queue[0].Identity != identity {
		return domain.Card{}, fmt.Errorf("%w: %s", ErrNotCurrentCard, identity)
	}

	stored, err := s.store.Get(ctx, identity)
	if err != nil {
		return domain.Card{}, err
	}
	updated, err := s.scheduler.Review(stored, grade, s.clock.Now())
	if err != nil {
		return domain.Card{}, err
	}
	if err := s.store.Save(ctx, stored, updated); err != nil {
		return domain.Card{}, err
	}

	s.stats.CardsStudied++
	if grade >= s.opts.PassGrade {
		s.stats.CorrectAnswers++
	}

	s.queue = s.queue[1:]
	if grade == domain.GradeAgain && s.opts.RequeueLapses {
		s.queue = append(s.queue, updated)
	}
	if len(s.queue) == 0 {
		s.state = StateIdle
	} else {
		s.state = StatePresenting
	}
	return updated, nil
}

// Stats returns a copy of the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Remaining returns the number of cards left, the current one included.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Done reports whether the queue is exhausted.
func (s *Session) Done() bool {
	return s.State() == StateIdle
}
