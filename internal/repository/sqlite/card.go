package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hanzi/internal/domain"
	"hanzi/internal/repository"

	"github.com/jmoiron/sqlx"
)

// CardRepo implements repository.CardRepository on the review columns of the characters table
type CardRepo struct {
	db *sqlx.DB
}

// NewCardRepo creates a new card repository
func NewCardRepo(db *sqlx.DB) *CardRepo {
	return &CardRepo{db: db}
}

type cardRow struct {
	Identity     string  `db:"character"`
	EaseFactor   float64 `db:"ease_factor"`
	IntervalDays int     `db:"interval_days"`
	Repetitions  int     `db:"repetitions"`
	LastReviewed int64   `db:"last_reviewed"`
	NextReview   int64   `db:"next_review"`
}

func (r cardRow) card() domain.Card {
	return domain.Card{
		Identity:     r.Identity,
		EaseFactor:   r.EaseFactor,
		IntervalDays: r.IntervalDays,
		Repetitions:  r.Repetitions,
		LastReviewed: domain.FromMillis(r.LastReviewed),
		NextReview:   domain.FromMillis(r.NextReview),
	}
}

// LoadAll returns the review state of every character
func (r *CardRepo) LoadAll(ctx context.Context) ([]domain.Card, error) {
	var rows []cardRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT character, ease_factor, interval_days, repetitions, last_reviewed, next_review
		FROM characters
		ORDER BY character
	`)
	if err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}

	cards := make([]domain.Card, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, row.card())
	}
	return cards, nil
}

// Get returns the stored review state of one card
func (r *CardRepo) Get(ctx context.Context, identity string) (domain.Card, error) {
	var row cardRow
	err := r.db.GetContext(ctx, &row, `
		SELECT character, ease_factor, interval_days, repetitions, last_reviewed, next_review
		FROM characters
		WHERE character = ?
	`, identity)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Card{}, fmt.Errorf("get card %s: %w", identity, repository.ErrNotFound)
	}
	if err != nil {
		return domain.Card{}, fmt.Errorf("get card %s: %w", identity, err)
	}
	return row.card(), nil
}

type saveArgs struct {
	cardRow
	PrevRepetitions  int   `db:"prev_repetitions"`
	PrevLastReviewed int64 `db:"prev_last_reviewed"`
	PrevNextReview   int64 `db:"prev_next_review"`
}

// Save writes all review fields of next in a single statement, provided the
// stored record still has the repetitions and timestamps of prev
func (r *CardRepo) Save(ctx context.Context, prev, next domain.Card) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE characters
		SET ease_factor = :ease_factor, interval_days = :interval_days, repetitions = :repetitions,
			last_reviewed = :last_reviewed, next_review = :next_review
		WHERE character = :character AND repetitions = :prev_repetitions
			AND last_reviewed = :prev_last_reviewed AND next_review = :prev_next_review
	`, saveArgs{
		cardRow: cardRow{
			Identity:     next.Identity,
			EaseFactor:   next.EaseFactor,
			IntervalDays: next.IntervalDays,
			Repetitions:  next.Repetitions,
			LastReviewed: domain.ToMillis(next.LastReviewed),
			NextReview:   domain.ToMillis(next.NextReview),
		},
		PrevRepetitions:  prev.Repetitions,
		PrevLastReviewed: domain.ToMillis(prev.LastReviewed),
		PrevNextReview:   domain.ToMillis(prev.NextReview),
	})
	if err != nil {
		return fmt.Errorf("save card %s: %w", next.Identity, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save card %s: %w", next.Identity, err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM characters WHERE character = ?)`, next.Identity); err != nil {
		return fmt.Errorf("save card %s: %w", next.Identity, err)
	}
	if !exists {
		return fmt.Errorf("save card %s: %w", next.Identity, repository.ErrNotFound)
	}
	return fmt.Errorf("save card %s: %w", next.Identity, repository.ErrConflict)
}

// ResetAll puts every card back to its import-time defaults
func (r *CardRepo) ResetAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE characters
		SET ease_factor = ?, interval_days = 0, repetitions = 0, last_reviewed = 0, next_review = 0
	`, domain.DefaultEaseFactor)
	if err != nil {
		return fmt.Errorf("reset cards: %w", err)
	}
	return nil
}
