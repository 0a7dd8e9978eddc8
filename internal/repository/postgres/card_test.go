package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"hanzi/internal/domain"
	"hanzi/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var cardColumns = []string{"character", "ease_factor", "interval_days", "repetitions", "last_reviewed", "next_review"}

func TestCardRepo_LoadAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewCardRepo(db)

	reviewed := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(cardColumns).
		AddRow("人", 2.5, 0, 0, int64(0), int64(0)).
		AddRow("学", 2.36, 3, 2, reviewed.UnixMilli(), reviewed.Add(72*time.Hour).UnixMilli())

	mock.ExpectQuery("SELECT character, ease_factor, interval_days, repetitions, last_reviewed, next_review FROM characters").
		WillReturnRows(rows)

	cards, err := repo.LoadAll(context.Background())

	assert.NoError(t, err)
	assert.Len(t, cards, 2)
	assert.True(t, cards[0].IsNew())
	assert.True(t, cards[0].NextReview.IsZero())
	assert.Equal(t, "学", cards[1].Identity)
	assert.Equal(t, 3, cards[1].IntervalDays)
	assert.Equal(t, reviewed, cards[1].LastReviewed)
	assert.Equal(t, reviewed.Add(72*time.Hour), cards[1].NextReview)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepo_LoadAll_Errors(t *testing.T) {
	tests := []struct {
		name     string
		rows     *sqlmock.Rows
		queryErr error
	}{
		{
			name:     "query error",
			queryErr: fmt.Errorf("connection refused"),
		},
		{
			name: "scan error",
			rows: sqlmock.NewRows(cardColumns).AddRow("人", "not a float", 0, 0, int64(0), int64(0)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewCardRepo(db)

			expect := mock.ExpectQuery("SELECT character")
			if tt.queryErr != nil {
				expect.WillReturnError(tt.queryErr)
			} else {
				expect.WillReturnRows(tt.rows)
			}

			cards, err := repo.LoadAll(context.Background())

			assert.Error(t, err)
			assert.Nil(t, cards)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCardRepo_Get(t *testing.T) {
	reviewed := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		mockSetup   func(sqlmock.Sqlmock)
		expected    domain.Card
		expectedErr error
		anyError    bool
	}{
		{
			name: "card found",
			mockSetup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT character, ease_factor").
					WithArgs("学").
					WillReturnRows(sqlmock.NewRows(cardColumns).
						AddRow("学", 2.6, 4, 1, reviewed.UnixMilli(), reviewed.AddDate(0, 0, 4).UnixMilli()))
			},
			expected: domain.Card{
				Identity:     "学",
				EaseFactor:   2.6,
				IntervalDays: 4,
				Repetitions:  1,
				LastReviewed: reviewed,
				NextReview:   reviewed.AddDate(0, 0, 4),
			},
		},
		{
			name: "unknown identity",
			mockSetup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT character, ease_factor").
					WithArgs("学").
					WillReturnError(sql.ErrNoRows)
			},
			expectedErr: repository.ErrNotFound,
		},
		{
			name: "database error",
			mockSetup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT character, ease_factor").
					WithArgs("学").
					WillReturnError(fmt.Errorf("db error"))
			},
			anyError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			tt.mockSetup(mock)
			card, err := NewCardRepo(db).Get(context.Background(), "学")

			switch {
			case tt.expectedErr != nil:
				assert.ErrorIs(t, err, tt.expectedErr)
			case tt.anyError:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, card)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCardRepo_Save(t *testing.T) {
	reviewed := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	prev := domain.Card{
		Identity:     "学",
		EaseFactor:   2.5,
		IntervalDays: 1,
		Repetitions:  1,
		LastReviewed: reviewed.AddDate(0, 0, -1),
		NextReview:   reviewed,
	}
	next := domain.Card{
		Identity:     "学",
		EaseFactor:   2.5,
		IntervalDays: 3,
		Repetitions:  2,
		LastReviewed: reviewed,
		NextReview:   reviewed.Add(72 * time.Hour),
	}

	tests := []struct {
		name        string
		mockSetup   func(sqlmock.Sqlmock)
		expectedErr error
		anyError    bool
	}{
		{
			name: "card updated",
			mockSetup: func(m sqlmock.Sqlmock) {
				m.ExpectExec("UPDATE characters SET ease_factor").
					WithArgs("学", 2.5, 3, 2, reviewed.UnixMilli(), reviewed.Add(72*time.Hour).UnixMilli(),
						1, reviewed.AddDate(0, 0, -1).UnixMilli(), reviewed.UnixMilli()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "changed by another review",
			mockSetup: func(m sqlmock.Sqlmock) {
				m.ExpectExec("UPDATE characters").WillReturnResult(sqlmock.NewResult(0, 0))
				m.ExpectQuery("SELECT EXISTS").
					WithArgs("学").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			expectedErr: repository.ErrConflict,
		},
		{
			name: "unknown identity",
			mockSetup: func(m sqlmock.Sqlmock) {
				m.ExpectExec("UPDATE characters").WillReturnResult(sqlmock.NewResult(0, 0))
				m.ExpectQuery("SELECT EXISTS").
					WithArgs("学").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			expectedErr: repository.ErrNotFound,
		},
		{
			name: "database error",
			mockSetup: func(m sqlmock.Sqlmock) {
				m.ExpectExec("UPDATE characters").WillReturnError(fmt.Errorf("db error"))
			},
			anyError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewCardRepo(db)
			tt.mockSetup(mock)

			err = repo.Save(context.Background(), prev, next)

			switch {
			case tt.expectedErr != nil:
				assert.ErrorIs(t, err, tt.expectedErr)
			case tt.anyError:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCardRepo_Save_NeverReviewed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewCardRepo(db)

	mock.ExpectExec("UPDATE characters").
		WithArgs("人", 2.5, 0, 0, int64(0), int64(0), 0, int64(0), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	card := domain.NewCard("人")
	err = repo.Save(context.Background(), card, card)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepo_ResetAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewCardRepo(db)

	mock.ExpectExec("UPDATE characters SET ease_factor = \\$1, interval_days = 0").
		WithArgs(2.5).
		WillReturnResult(sqlmock.NewResult(0, 12))

	err = repo.ResetAll(context.Background())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
