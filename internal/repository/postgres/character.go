package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"hanzi/internal/domain"
	"hanzi/internal/repository"
)

const characterColumns = `character, traditional, pinyin, meaning, difficulty, type_of_word, frequency,
	radicals_json, stroke_order_visual_json, stroke_order_svg_json, stroke_count, hsk_level, is_favorite`

// CharacterRepo implements repository.CharacterRepository
type CharacterRepo struct {
	db *sql.DB
}

// NewCharacterRepo creates a new character repository
func NewCharacterRepo(db *sql.DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(s rowScanner) (*domain.Character, error) {
	var c domain.Character
	var traditional, pinyin, meaning, difficulty, typeOfWord, frequency sql.NullString
	var radicals, visual, svg sql.NullString
	var strokeCount, hskLevel sql.NullInt64

	err := s.Scan(
		&c.Character, &traditional, &pinyin, &meaning, &difficulty, &typeOfWord, &frequency,
		&radicals, &visual, &svg, &strokeCount, &hskLevel, &c.IsFavorite,
	)
	if err != nil {
		return nil, err
	}

	c.Traditional = traditional.String
	c.Pinyin = pinyin.String
	c.Meaning = meaning.String
	c.Difficulty = difficulty.String
	c.TypeOfWord = typeOfWord.String
	c.Frequency = frequency.String
	c.RadicalsJSON = radicals.String
	c.StrokeOrderVisual = visual.String
	c.StrokeOrderSVG = svg.String
	c.StrokeCount = int(strokeCount.Int64)
	c.HSKLevel = int(hskLevel.Int64)
	return &c, nil
}

func (r *CharacterRepo) queryCharacters(ctx context.Context, query string, args ...any) ([]domain.Character, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chars []domain.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		chars = append(chars, *c)
	}
	return chars, rows.Err()
}

// GetCharacter returns a character or nil if it is not in the dictionary
func (r *CharacterRepo) GetCharacter(ctx context.Context, character string) (*domain.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE character = $1`
	c, err := scanCharacter(r.db.QueryRowContext(ctx, query, character))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SearchCharacters matches the query against character, pinyin and meaning
func (r *CharacterRepo) SearchCharacters(ctx context.Context, query string, limit int) ([]domain.Character, error) {
	q := `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE character LIKE '%' || $1 || '%' ESCAPE '\'
			OR pinyin ILIKE '%' || $1 || '%' ESCAPE '\'
			OR meaning ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY hsk_level NULLS LAST, character
		LIMIT $2
	`
	return r.queryCharacters(ctx, q, repository.EscapeLike(query), limit)
}

// GetByHSKLevel returns all characters of an HSK level
func (r *CharacterRepo) GetByHSKLevel(ctx context.Context, level int) ([]domain.Character, error) {
	q := `SELECT ` + characterColumns + ` FROM characters WHERE hsk_level = $1 ORDER BY character`
	return r.queryCharacters(ctx, q, level)
}

// GetFavorites returns characters marked as favorite
func (r *CharacterRepo) GetFavorites(ctx context.Context) ([]domain.Character, error) {
	q := `SELECT ` + characterColumns + ` FROM characters WHERE is_favorite = TRUE ORDER BY character`
	return r.queryCharacters(ctx, q)
}

// SetFavorite marks or unmarks a character as favorite
func (r *CharacterRepo) SetFavorite(ctx context.Context, character string, favorite bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE characters SET is_favorite = $2 WHERE character = $1`, character, favorite)
	return err
}

// GetRandom returns a random character or nil if the dictionary is empty
func (r *CharacterRepo) GetRandom(ctx context.Context) (*domain.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters ORDER BY RANDOM() LIMIT 1`
	c, err := scanCharacter(r.db.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Count returns the number of characters in the dictionary
func (r *CharacterRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM characters`).Scan(&count)
	return count, err
}

// WordsContaining returns related words that use the character
func (r *CharacterRepo) WordsContaining(ctx context.Context, character string, limit int) ([]domain.RelatedWord, error) {
	query := `
		SELECT id, simplified, COALESCE(traditional, ''), COALESCE(pinyin, ''), COALESCE(meaning, ''), COALESCE(type_of_word, '')
		FROM related_words
		WHERE simplified LIKE '%' || $1 || '%'
		ORDER BY LENGTH(simplified), simplified
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, character, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []domain.RelatedWord
	for rows.Next() {
		var w domain.RelatedWord
		if err := rows.Scan(&w.ID, &w.Simplified, &w.Traditional, &w.Pinyin, &w.Meaning, &w.TypeOfWord); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// SentencesContaining returns example sentences that use the character
func (r *CharacterRepo) SentencesContaining(ctx context.Context, character string, limit int) ([]domain.ExampleSentence, error) {
	query := `
		SELECT id, chinese_simplified, COALESCE(chinese_traditional, ''), COALESCE(pinyin, ''), translation
		FROM example_sentences
		WHERE chinese_simplified LIKE '%' || $1 || '%'
		ORDER BY LENGTH(chinese_simplified), id
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, character, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sentences []domain.ExampleSentence
	for rows.Next() {
		var s domain.ExampleSentence
		if err := rows.Scan(&s.ID, &s.Simplified, &s.Traditional, &s.Pinyin, &s.Translation); err != nil {
			return nil, err
		}
		sentences = append(sentences, s)
	}
	return sentences, rows.Err()
}

// Import upserts a dataset in one transaction. Review state of existing
// characters is left untouched; new characters start with default card values.
func (r *CharacterRepo) Import(ctx context.Context, data domain.Dataset) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	charQuery := `
		INSERT INTO characters (` + characterColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (character) DO UPDATE SET
			traditional = EXCLUDED.traditional,
			pinyin = EXCLUDED.pinyin,
			meaning = EXCLUDED.meaning,
			difficulty = EXCLUDED.difficulty,
			type_of_word = EXCLUDED.type_of_word,
			frequency = EXCLUDED.frequency,
			radicals_json = EXCLUDED.radicals_json,
			stroke_order_visual_json = EXCLUDED.stroke_order_visual_json,
			stroke_order_svg_json = EXCLUDED.stroke_order_svg_json,
			stroke_count = EXCLUDED.stroke_count,
			hsk_level = EXCLUDED.hsk_level
	`
	for _, c := range data.Characters {
		_, err := tx.ExecContext(ctx, charQuery,
			c.Character, nullString(c.Traditional), nullString(c.Pinyin), nullString(c.Meaning),
			nullString(c.Difficulty), nullString(c.TypeOfWord), nullString(c.Frequency),
			nullString(c.RadicalsJSON), nullString(c.StrokeOrderVisual), nullString(c.StrokeOrderSVG),
			nullInt(c.StrokeCount), nullInt(c.HSKLevel), c.IsFavorite,
		)
		if err != nil {
			return 0, fmt.Errorf("import character %s: %w", c.Character, err)
		}
	}

	wordQuery := `
		INSERT INTO related_words (simplified, traditional, pinyin, meaning, type_of_word)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (simplified) DO UPDATE SET
			traditional = EXCLUDED.traditional,
			pinyin = EXCLUDED.pinyin,
			meaning = EXCLUDED.meaning,
			type_of_word = EXCLUDED.type_of_word
	`
	for _, w := range data.Words {
		_, err := tx.ExecContext(ctx, wordQuery,
			w.Simplified, nullString(w.Traditional), nullString(w.Pinyin), nullString(w.Meaning), nullString(w.TypeOfWord),
		)
		if err != nil {
			return 0, fmt.Errorf("import word %s: %w", w.Simplified, err)
		}
	}

	sentenceQuery := `
		INSERT INTO example_sentences (chinese_simplified, chinese_traditional, pinyin, translation)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chinese_simplified) DO UPDATE SET
			chinese_traditional = EXCLUDED.chinese_traditional,
			pinyin = EXCLUDED.pinyin,
			translation = EXCLUDED.translation
	`
	for _, s := range data.Sentences {
		_, err := tx.ExecContext(ctx, sentenceQuery,
			s.Simplified, nullString(s.Traditional), nullString(s.Pinyin), s.Translation,
		)
		if err != nil {
			return 0, fmt.Errorf("import sentence %q: %w", s.Simplified, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(data.Characters), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
