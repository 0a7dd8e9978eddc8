package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"hanzi/internal/clock"
	"hanzi/internal/domain"
	"hanzi/internal/metrics"
	"hanzi/internal/repository"
	"hanzi/internal/srs"
	"hanzi/internal/study"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StudyOptions configure new sessions
type StudyOptions struct {
	PassGrade     domain.Grade
	RequeueLapses bool
	// SessionLimit caps the cards in one session. Zero means every due card.
	SessionLimit int
	// SessionTTL is how long a session is kept without activity. Zero means DefaultSessionTTL.
	SessionTTL time.Duration
}

// DefaultSessionTTL is the inactivity period after which a session is dropped
const DefaultSessionTTL = 30 * time.Minute

// SessionView is a read-only snapshot of a session
type SessionView struct {
	ID        string       `json:"id"`
	Owner     string       `json:"owner"`
	State     study.State  `json:"state"`
	Current   *domain.Card `json:"current,omitempty"`
	Remaining int          `json:"remaining"`
	Stats     study.Stats  `json:"stats"`
	StartedAt time.Time    `json:"startedAt"`
}

type activeSession struct {
	id         string
	owner      string
	startedAt  time.Time
	session    *study.Session
	lastActive atomic.Int64 // unix nanoseconds
}

func (a *activeSession) touch(now time.Time) {
	a.lastActive.Store(now.UnixNano())
}

func (a *activeSession) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, a.lastActive.Load()))
}

func (a *activeSession) view() SessionView {
	v := SessionView{
		ID:        a.id,
		Owner:     a.owner,
		State:     a.session.State(),
		Remaining: a.session.Remaining(),
		Stats:     a.session.Stats(),
		StartedAt: a.startedAt,
	}
	if c, ok := a.session.Current(); ok {
		v.Current = &c
	}
	return v
}

// StudyService keeps one review session per owner
type StudyService struct {
	cardRepo  repository.CardRepository
	scheduler *srs.Scheduler
	clock     clock.Clock
	opts      StudyOptions
	metrics   *metrics.Collector
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*activeSession
	byOwner  map[string]string
}

// NewStudyService creates a new study service
func NewStudyService(
	cardRepo repository.CardRepository,
	scheduler *srs.Scheduler,
	clk clock.Clock,
	opts StudyOptions,
	collector *metrics.Collector,
	logger *zap.Logger,
) *StudyService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	return &StudyService{
		cardRepo:  cardRepo,
		scheduler: scheduler,
		clock:     clk,
		opts:      opts,
		metrics:   collector,
		logger:    logger,
		sessions:  make(map[string]*activeSession),
		byOwner:   make(map[string]string),
	}
}

// StartSession loads the deck and starts a session over the cards due at asOf.
// A zero asOf means now. Any previous session of the owner is discarded.
func (s *StudyService) StartSession(ctx context.Context, owner string, asOf time.Time) (SessionView, error) {
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}

	cards, err := s.cardRepo.LoadAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load cards", zap.String("owner", owner), zap.Error(err))
		return SessionView{}, fmt.Errorf("start session: %w", err)
	}

	queue := srs.Limit(srs.Due(cards, asOf), s.opts.SessionLimit)
	active := &activeSession{
		id:        uuid.NewString(),
		owner:     owner,
		startedAt: asOf,
		session: study.New(s.scheduler, s.cardRepo, s.clock, queue, study.Options{
			PassGrade:     s.opts.PassGrade,
			RequeueLapses: s.opts.RequeueLapses,
		}),
	}
	now := s.clock.Now()
	active.touch(now)

	s.mu.Lock()
	if prev, ok := s.byOwner[owner]; ok {
		delete(s.sessions, prev)
	}
	evicted := s.evictExpiredLocked(now)
	s.sessions[active.id] = active
	s.byOwner[owner] = active.id
	s.mu.Unlock()

	if evicted > 0 {
		s.logger.Debug("Expired study sessions dropped", zap.Int("count", evicted))
	}

	s.metrics.RecordSessionStarted()
	view := active.view()
	s.logger.Info("Study session started",
		zap.String("session_id", active.id),
		zap.String("owner", owner),
		zap.Int("due", view.Remaining),
	)
	return view, nil
}

// get returns a live session and marks it active
func (s *StudyService) get(id string) (*activeSession, error) {
	s.mu.RLock()
	a, ok := s.sessions[id]
	s.mu.RUnlock()

	now := s.clock.Now()
	if !ok || a.idleSince(now) > s.opts.SessionTTL {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	a.touch(now)
	return a, nil
}

// evictExpiredLocked drops sessions idle for longer than the TTL. s.mu must be held.
func (s *StudyService) evictExpiredLocked(now time.Time) int {
	n := 0
	for id, a := range s.sessions {
		if a.idleSince(now) <= s.opts.SessionTTL {
			continue
		}
		delete(s.sessions, id)
		if s.byOwner[a.owner] == id {
			delete(s.byOwner, a.owner)
		}
		n++
	}
	return n
}

// Len returns the number of sessions held in memory
func (s *StudyService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Session returns a snapshot of a session
func (s *StudyService) Session(id string) (SessionView, error) {
	a, err := s.get(id)
	if err != nil {
		return SessionView{}, err
	}
	return a.view(), nil
}

// SessionByOwner returns the active session of an owner
func (s *StudyService) SessionByOwner(owner string) (SessionView, error) {
	s.mu.RLock()
	id, ok := s.byOwner[owner]
	s.mu.RUnlock()
	if !ok {
		return SessionView{}, fmt.Errorf("%w: owner %s", ErrSessionNotFound, owner)
	}
	return s.Session(id)
}

// Reveal shows the answer of the current card
func (s *StudyService) Reveal(id string) (SessionView, error) {
	a, err := s.get(id)
	if err != nil {
		return SessionView{}, err
	}
	if err := a.session.Reveal(); err != nil {
		return SessionView{}, err
	}
	return a.view(), nil
}

// Preview returns the outcome of each grade for the current card
func (s *StudyService) Preview(id string) ([]srs.Option, error) {
	a, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return a.session.Preview()
}

// SubmitGrade grades the current card of a session and persists the result
func (s *StudyService) SubmitGrade(ctx context.Context, id, identity string, grade domain.Grade) (domain.Card, error) {
	a, err := s.get(id)
	if err != nil {
		return domain.Card{}, err
	}

	updated, err := a.session.SubmitGrade(ctx, identity, grade)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.logger.Warn("Card changed by another review, grade not saved",
				zap.String("session_id", id),
				zap.String("card", identity),
			)
			return domain.Card{}, err
		}
		if isInvalidInput(err) {
			s.logger.Debug("Grade rejected",
				zap.String("session_id", id),
				zap.String("card", identity),
				zap.Error(err),
			)
			return domain.Card{}, err
		}
		s.metrics.RecordPersistFailure()
		s.logger.Error("Failed to save review",
			zap.String("session_id", id),
			zap.String("card", identity),
			zap.Error(err),
		)
		return domain.Card{}, err
	}

	s.metrics.RecordReview(grade.String())
	s.logger.Debug("Card reviewed",
		zap.String("session_id", id),
		zap.String("card", identity),
		zap.String("grade", grade.String()),
		zap.Int("interval_days", updated.IntervalDays),
	)

	if a.session.Done() {
		s.metrics.RecordSessionCompleted()
		stats := a.session.Stats()
		s.logger.Info("Study session completed",
			zap.String("session_id", id),
			zap.Int("cards_studied", stats.CardsStudied),
			zap.Int("correct_answers", stats.CorrectAnswers),
		)
	}
	return updated, nil
}

// Stats returns the counters of a session
func (s *StudyService) Stats(id string) (study.Stats, error) {
	a, err := s.get(id)
	if err != nil {
		return study.Stats{}, err
	}
	return a.session.Stats(), nil
}

// EndSession discards a session in whatever state it is
func (s *StudyService) EndSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	if s.byOwner[a.owner] == id {
		delete(s.byOwner, a.owner)
	}
	return nil
}

func isInvalidInput(err error) bool {
	return errors.Is(err, domain.ErrInvalidGrade) ||
		errors.Is(err, study.ErrUnknownCard) ||
		errors.Is(err, study.ErrNotCurrentCard) ||
		errors.Is(err, study.ErrInvalidState) ||
		errors.Is(err, study.ErrSessionComplete)
}
