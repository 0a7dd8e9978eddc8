package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hanzi/internal/domain"
	"hanzi/internal/repository"
)

// CardRepo implements repository.CardRepository on the review columns of the characters table
type CardRepo struct {
	db *sql.DB
}

// NewCardRepo creates a new card repository
func NewCardRepo(db *sql.DB) *CardRepo {
	return &CardRepo{db: db}
}

// LoadAll returns the review state of every character
func (r *CardRepo) LoadAll(ctx context.Context) ([]domain.Card, error) {
	query := `
		SELECT character, ease_factor, interval_days, repetitions, last_reviewed, next_review
		FROM characters
		ORDER BY character
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var c domain.Card
		var lastReviewed, nextReview int64
		if err := rows.Scan(&c.Identity, &c.EaseFactor, &c.IntervalDays, &c.Repetitions, &lastReviewed, &nextReview); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		c.LastReviewed = domain.FromMillis(lastReviewed)
		c.NextReview = domain.FromMillis(nextReview)
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}

	return cards, nil
}

// Get returns the stored review state of one card
func (r *CardRepo) Get(ctx context.Context, identity string) (domain.Card, error) {
	query := `
		SELECT character, ease_factor, interval_days, repetitions, last_reviewed, next_review
		FROM characters
		WHERE character = $1
	`
	var c domain.Card
	var lastReviewed, nextReview int64
	err := r.db.QueryRowContext(ctx, query, identity).
		Scan(&c.Identity, &c.EaseFactor, &c.IntervalDays, &c.Repetitions, &lastReviewed, &nextReview)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Card{}, fmt.Errorf("get card %s: %w", identity, repository.ErrNotFound)
	}
	if err != nil {
		return domain.Card{}, fmt.Errorf("get card %s: %w", identity, err)
	}
	c.LastReviewed = domain.FromMillis(lastReviewed)
	c.NextReview = domain.FromMillis(nextReview)
	return c, nil
}

// Save writes all review fields of next in a single statement, provided the
// stored record still has the repetitions and timestamps of prev
func (r *CardRepo) Save(ctx context.Context, prev, next domain.Card) error {
	query := `
		UPDATE characters
		SET ease_factor = $2, interval_days = $3, repetitions = $4, last_reviewed = $5, next_review = $6
		WHERE character = $1 AND repetitions = $7 AND last_reviewed = $8 AND next_review = $9
	`
	res, err := r.db.ExecContext(ctx, query,
		next.Identity,
		next.EaseFactor,
		next.IntervalDays,
		next.Repetitions,
		domain.ToMillis(next.LastReviewed),
		domain.ToMillis(next.NextReview),
		prev.Repetitions,
		domain.ToMillis(prev.LastReviewed),
		domain.ToMillis(prev.NextReview),
	)
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
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM characters WHERE character = $1)`, next.Identity).Scan(&exists); err != nil {
		return fmt.Errorf("save card %s: %w", next.Identity, err)
	}
	if !exists {
		return fmt.Errorf("save card %s: %w", next.Identity, repository.ErrNotFound)
	}
	return fmt.Errorf("save card %s: %w", next.Identity, repository.ErrConflict)
}

// ResetAll puts every card back to its import-time defaults
func (r *CardRepo) ResetAll(ctx context.Context) error {
	query := `
		UPDATE characters
		SET ease_factor = $1, interval_days = 0, repetitions = 0, last_reviewed = 0, next_review = 0
	`
	if _, err := r.db.ExecContext(ctx, query, domain.DefaultEaseFactor); err != nil {
		return fmt.Errorf("reset cards: %w", err)
	}
	return nil
}
