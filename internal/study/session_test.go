package study

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"hanzi/internal/clock"
	"hanzi/internal/domain"
	"hanzi/internal/repository"
	"hanzi/internal/srs"
	"hanzi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newScheduler(t *testing.T) *srs.Scheduler {
	t.Helper()
	s, err := srs.NewScheduler(srs.DefaultPolicy())
	require.NoError(t, err)
	return s
}

func newSession(t *testing.T, store Store, clk clock.Clock, cards []domain.Card, opts Options) *Session {
	t.Helper()
	return New(newScheduler(t), store, clk, srs.Due(cards, clk.Now()), opts)
}

func TestSession_EmptyQueueIsComplete(t *testing.T) {
	store := new(testutil.MockCardRepository)
	s := newSession(t, store, clock.NewFixed(testutil.T0), nil, Options{})

	assert.Equal(t, StateIdle, s.State())
	assert.True(t, s.Done())
	_, ok := s.Current()
	assert.False(t, ok)
	assert.ErrorIs(t, s.Reveal(), ErrSessionComplete)
	assert.Equal(t, Stats{}, s.Stats())
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_FullCycle(t *testing.T) {
	clk := clock.NewFixed(testutil.T0)
	store := new(testutil.MockCardRepository)
	store.ExpectCards(testutil.NewDueCards("人", "大")...)
	store.On("Save", mock.Anything, mock.Anything, mock.AnythingOfType("domain.Card")).Return(nil)

	s := newSession(t, store, clk, testutil.NewDueCards("人", "大"), Options{})

	assert.Equal(t, StatePresenting, s.State())
	assert.Equal(t, 2, s.Remaining())
	first, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "人", first.Identity)

	require.NoError(t, s.Reveal())
	assert.Equal(t, StateRevealed, s.State())

	updated, err := s.SubmitGrade(context.Background(), "人", domain.GradeEasy)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.IntervalDays)
	assert.Equal(t, testutil.T0.AddDate(0, 0, 4), updated.NextReview)
	assert.Equal(t, StatePresenting, s.State())

	require.NoError(t, s.Reveal())
	_, err = s.SubmitGrade(context.Background(), "大", domain.GradeGood)
	require.NoError(t, err)

	assert.True(t, s.Done())
	assert.Equal(t, Stats{CardsStudied: 2, CorrectAnswers: 1}, s.Stats())
	store.AssertNumberOfCalls(t, "Save", 2)
}

func TestSession_SubmitGradeRejectsBeforeMutation(t *testing.T) {
	tests := []struct {
		name     string
		reveal   bool
		identity string
		grade    domain.Grade
		wantErr  error
	}{
		{name: "invalid grade", reveal: true, identity: "人", grade: domain.Grade(9), wantErr: domain.ErrInvalidGrade},
		{name: "unknown card", reveal: true, identity: "猫", grade: domain.GradeGood, wantErr: ErrUnknownCard},
		{name: "not current card", reveal: true, identity: "大", grade: domain.GradeGood, wantErr: ErrNotCurrentCard},
		{name: "not revealed", reveal: false, identity: "人", grade: domain.GradeGood, wantErr: ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(testutil.MockCardRepository)
			s := newSession(t, store, clock.NewFixed(testutil.T0), testutil.NewDueCards("人", "大"), Options{})
			if tt.reveal {
				require.NoError(t, s.Reveal())
			}
			before := s.State()

			_, err := s.SubmitGrade(context.Background(), tt.identity, tt.grade)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, s.State())
			assert.Equal(t, 2, s.Remaining())
			assert.Equal(t, Stats{}, s.Stats())
			store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSession_PersistFailureLeavesSessionUnchanged(t *testing.T) {
	clk := clock.NewFixed(testutil.T0)
	store := new(testutil.MockCardRepository)
	failure := errors.New("disk full")
	store.ExpectCards(domain.NewCard("大"))
	store.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(failure).Once()
	store.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	s := newSession(t, store, clk, testutil.NewDueCards("大"), Options{})
	require.NoError(t, s.Reveal())

	_, err := s.SubmitGrade(context.Background(), "大", domain.GradeGood)
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, StateRevealed, s.State())
	assert.Equal(t, Stats{}, s.Stats())
	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, domain.NewCard("大"), current)

	updated, err := s.SubmitGrade(context.Background(), "大", domain.GradeGood)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Repetitions)
	assert.True(t, s.Done())
	assert.Equal(t, Stats{CardsStudied: 1}, s.Stats())
	store.AssertExpectations(t)
}

func TestSession_GradesFromStoredRecord(t *testing.T) {
	clk := clock.NewFixed(testutil.T0.AddDate(0, 0, 5))
	store := new(testutil.MockCardRepository)
	queued := domain.NewCard("学")
	// another session reviewed the card after this queue was built
	stored := testutil.NewTestCard("学", 2.65, 4, 1)
	store.ExpectCards(stored)
	store.On("Save", mock.Anything, stored, mock.AnythingOfType("domain.Card")).Return(nil)

	s := newSession(t, store, clk, []domain.Card{queued}, Options{})
	require.NoError(t, s.Reveal())

	updated, err := s.SubmitGrade(context.Background(), "学", domain.GradeGood)

	require.NoError(t, err)
	assert.Equal(t, 2, updated.Repetitions)
	assert.Equal(t, 11, updated.IntervalDays)
	store.AssertExpectations(t)
}

func TestSession_StoreErrorsLeaveSessionUnchanged(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(*testutil.MockCardRepository)
		wantErr   error
	}{
		{
			name: "read fails",
			mockSetup: func(m *testutil.MockCardRepository) {
				m.On("Get", mock.Anything, "大").Return(domain.Card{}, repository.ErrNotFound)
			},
			wantErr: repository.ErrNotFound,
		},
		{
			name: "changed between read and save",
			mockSetup: func(m *testutil.MockCardRepository) {
				m.ExpectCards(domain.NewCard("大"))
				m.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(repository.ErrConflict)
			},
			wantErr: repository.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(testutil.MockCardRepository)
			tt.mockSetup(store)
			s := newSession(t, store, clock.NewFixed(testutil.T0), testutil.NewDueCards("大"), Options{})
			require.NoError(t, s.Reveal())

			_, err := s.SubmitGrade(context.Background(), "大", domain.GradeGood)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StateRevealed, s.State())
			assert.Equal(t, 1, s.Remaining())
			assert.Equal(t, Stats{}, s.Stats())
		})
	}
}

func TestSession_AgainRequeuesAtTail(t *testing.T) {
	clk := clock.NewFixed(testutil.T0)
	store := new(testutil.MockCardRepository)
	store.ExpectCards(testutil.NewDueCards("一", "二")...)
	store.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	s := newSession(t, store, clk, testutil.NewDueCards("一", "二"), Options{RequeueLapses: true})

	require.NoError(t, s.Reveal())
	lapsed, err := s.SubmitGrade(context.Background(), "一", domain.GradeAgain)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Remaining())

	current, _ := s.Current()
	assert.Equal(t, "二", current.Identity)

	require.NoError(t, s.Reveal())
	_, err = s.SubmitGrade(context.Background(), "二", domain.GradeEasy)
	require.NoError(t, err)

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, lapsed, current)
	assert.Equal(t, 2, s.Stats().CardsStudied)
}

func TestSession_AgainWithoutRequeue(t *testing.T) {
	store := new(testutil.MockCardRepository)
	store.ExpectCards(domain.NewCard("一"))
	store.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	s := newSession(t, store, clock.NewFixed(testutil.T0), testutil.NewDueCards("一"), Options{})

	require.NoError(t, s.Reveal())
	_, err := s.SubmitGrade(context.Background(), "一", domain.GradeAgain)
	require.NoError(t, err)

	assert.True(t, s.Done())
	_, err = s.SubmitGrade(context.Background(), "一", domain.GradeGood)
	assert.ErrorIs(t, err, ErrSessionComplete)
}

func TestSession_PassGrade(t *testing.T) {
	tests := []struct {
		name        string
		pass        domain.Grade
		grades      []domain.Grade
		wantCorrect int
	}{
		{name: "default counts easy only", grades: domain.Grades, wantCorrect: 1},
		{name: "good and above", pass: domain.GradeGood, grades: domain.Grades, wantCorrect: 2},
		{name: "hard and above", pass: domain.GradeHard, grades: domain.Grades, wantCorrect: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(testutil.MockCardRepository)
			store.ExpectCards(testutil.NewDueCards("一", "二", "三", "四")...)
			store.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			s := newSession(t, store, clock.NewFixed(testutil.T0), testutil.NewDueCards("一", "二", "三", "四"), Options{PassGrade: tt.pass})

			for _, g := range tt.grades {
				current, ok := s.Current()
				require.True(t, ok)
				require.NoError(t, s.Reveal())
				_, err := s.SubmitGrade(context.Background(), current.Identity, g)
				require.NoError(t, err)
			}

			assert.Equal(t, Stats{CardsStudied: 4, CorrectAnswers: tt.wantCorrect}, s.Stats())
		})
	}
}

func TestSession_UsesClockAtGradeTime(t *testing.T) {
	clk := clock.NewFixed(testutil.T0)
	store := new(testutil.MockCardRepository)
	store.ExpectCards(domain.NewCard("大"))
	store.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	s := newSession(t, store, clk, testutil.NewDueCards("大"), Options{})
	clk.Advance(90 * time.Second)

	require.NoError(t, s.Reveal())
	updated, err := s.SubmitGrade(context.Background(), "大", domain.GradeHard)
	require.NoError(t, err)

	assert.Equal(t, testutil.T0.Add(90*time.Second), updated.LastReviewed)
	assert.Equal(t, testutil.T0.Add(90*time.Second+6*time.Minute), updated.NextReview)
}

func TestSession_SnapshotIsIndependent(t *testing.T) {
	store := new(testutil.MockCardRepository)
	cards := testutil.NewDueCards("甲", "乙")

	s := newSession(t, store, clock.NewFixed(testutil.T0), cards, Options{})
	cards[0].Identity = "changed"

	current, _ := s.Current()
	assert.True(t, slices.Contains([]string{"甲", "乙"}, current.Identity))
	assert.Equal(t, 2, s.Remaining())
}

func TestSession_Preview(t *testing.T) {
	store := new(testutil.MockCardRepository)
	s := newSession(t, store, clock.NewFixed(testutil.T0), testutil.NewDueCards("大"), Options{})

	options, err := s.Preview()
	require.NoError(t, err)

	labels := make([]string, 0, len(options))
	for _, o := range options {
		labels = append(labels, srs.FormatInterval(o.Delay))
	}
	assert.Equal(t, []string{"<1m", "<6m", "<10m", "4d"}, labels)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "revealed", StateRevealed.String())
	assert.Equal(t, "State(7)", State(7).String())
}
