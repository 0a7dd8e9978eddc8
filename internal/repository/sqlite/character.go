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

const characterColumns = `character,
	COALESCE(traditional, '') AS traditional,
	COALESCE(pinyin, '') AS pinyin,
	COALESCE(meaning, '') AS meaning,
	COALESCE(difficulty, '') AS difficulty,
	COALESCE(type_of_word, '') AS type_of_word,
	COALESCE(frequency, '') AS frequency,
	COALESCE(radicals_json, '') AS radicals_json,
	COALESCE(stroke_order_visual_json, '') AS stroke_order_visual_json,
	COALESCE(stroke_order_svg_json, '') AS stroke_order_svg_json,
	COALESCE(stroke_count, 0) AS stroke_count,
	COALESCE(hsk_level, 0) AS hsk_level,
	is_favorite`

// CharacterRepo implements repository.CharacterRepository
type CharacterRepo struct {
	db *sqlx.DB
}

// NewCharacterRepo creates a new character repository
func NewCharacterRepo(db *sqlx.DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

func (r *CharacterRepo) getOne(ctx context.Context, query string, args ...any) (*domain.Character, error) {
	var c domain.Character
	err := r.db.GetContext(ctx, &c, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCharacter returns a character or nil if it is not in the dictionary
func (r *CharacterRepo) GetCharacter(ctx context.Context, character string) (*domain.Character, error) {
	return r.getOne(ctx, `SELECT `+characterColumns+` FROM characters WHERE character = ?`, character)
}

// SearchCharacters matches the query against character, pinyin and meaning.
// LIKE is case-insensitive for ASCII in SQLite.
func (r *CharacterRepo) SearchCharacters(ctx context.Context, query string, limit int) ([]domain.Character, error) {
	var chars []domain.Character
	err := r.db.SelectContext(ctx, &chars, `
		SELECT `+characterColumns+`
		FROM characters
		WHERE character LIKE '%' || ?1 || '%' ESCAPE '\'
			OR pinyin LIKE '%' || ?1 || '%' ESCAPE '\'
			OR meaning LIKE '%' || ?1 || '%' ESCAPE '\'
		ORDER BY hsk_level IS NULL, hsk_level, character
		LIMIT ?2
	`, repository.EscapeLike(query), limit)
	return chars, err
}

// GetByHSKLevel returns all characters of an HSK level
func (r *CharacterRepo) GetByHSKLevel(ctx context.Context, level int) ([]domain.Character, error) {
	var chars []domain.Character
	err := r.db.SelectContext(ctx, &chars,
		`SELECT `+characterColumns+` FROM characters WHERE hsk_level = ? ORDER BY character`, level)
	return chars, err
}

// GetFavorites returns characters marked as favorite
func (r *CharacterRepo) GetFavorites(ctx context.Context) ([]domain.Character, error) {
	var chars []domain.Character
	err := r.db.SelectContext(ctx, &chars,
		`SELECT `+characterColumns+` FROM characters WHERE is_favorite = TRUE ORDER BY character`)
	return chars, err
}

// SetFavorite marks or unmarks a character as favorite
func (r *CharacterRepo) SetFavorite(ctx context.Context, character string, favorite bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE characters SET is_favorite = ? WHERE character = ?`, favorite, character)
	return err
}

// GetRandom returns a random character or nil if the dictionary is empty
func (r *CharacterRepo) GetRandom(ctx context.Context) (*domain.Character, error) {
	return r.getOne(ctx, `SELECT `+characterColumns+` FROM characters ORDER BY RANDOM() LIMIT 1`)
}

// Count returns the number of characters in the dictionary
func (r *CharacterRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM characters`)
	return count, err
}

// WordsContaining returns related words that use the character
func (r *CharacterRepo) WordsContaining(ctx context.Context, character string, limit int) ([]domain.RelatedWord, error) {
	var words []domain.RelatedWord
	err := r.db.SelectContext(ctx, &words, `
		SELECT id, simplified,
			COALESCE(traditional, '') AS traditional,
			COALESCE(pinyin, '') AS pinyin,
			COALESCE(meaning, '') AS meaning,
			COALESCE(type_of_word, '') AS type_of_word
		FROM related_words
		WHERE instr(simplified, ?) > 0
		ORDER BY length(simplified), simplified
		LIMIT ?
	`, character, limit)
	return words, err
}

// SentencesContaining returns example sentences that use the character
func (r *CharacterRepo) SentencesContaining(ctx context.Context, character string, limit int) ([]domain.ExampleSentence, error) {
	var sentences []domain.ExampleSentence
	err := r.db.SelectContext(ctx, &sentences, `
		SELECT id, chinese_simplified,
			COALESCE(chinese_traditional, '') AS chinese_traditional,
			COALESCE(pinyin, '') AS pinyin,
			translation
		FROM example_sentences
		WHERE instr(chinese_simplified, ?) > 0
		ORDER BY length(chinese_simplified), id
		LIMIT ?
	`, character, limit)
	return sentences, err
}

// Import upserts a dataset in one transaction. Review state of existing
// characters is left untouched; new characters start with default card values.
func (r *CharacterRepo) Import(ctx context.Context, data domain.Dataset) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, c := range data.Characters {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO characters (character, traditional, pinyin, meaning, difficulty, type_of_word, frequency,
				radicals_json, stroke_order_visual_json, stroke_order_svg_json, stroke_count, hsk_level, is_favorite)
			VALUES (:character, :traditional, :pinyin, :meaning, :difficulty, :type_of_word, :frequency,
				:radicals_json, :stroke_order_visual_json, :stroke_order_svg_json, :stroke_count, :hsk_level, :is_favorite)
			ON CONFLICT (character) DO UPDATE SET
				traditional = excluded.traditional,
				pinyin = excluded.pinyin,
				meaning = excluded.meaning,
				difficulty = excluded.difficulty,
				type_of_word = excluded.type_of_word,
				frequency = excluded.frequency,
				radicals_json = excluded.radicals_json,
				stroke_order_visual_json = excluded.stroke_order_visual_json,
				stroke_order_svg_json = excluded.stroke_order_svg_json,
				stroke_count = excluded.stroke_count,
				hsk_level = excluded.hsk_level
		`, c)
		if err != nil {
			return 0, fmt.Errorf("import character %s: %w", c.Character, err)
		}
	}

	for _, w := range data.Words {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO related_words (simplified, traditional, pinyin, meaning, type_of_word)
			VALUES (:simplified, :traditional, :pinyin, :meaning, :type_of_word)
			ON CONFLICT (simplified) DO UPDATE SET
				traditional = excluded.traditional,
				pinyin = excluded.pinyin,
				meaning = excluded.meaning,
				type_of_word = excluded.type_of_word
		`, w)
		if err != nil {
			return 0, fmt.Errorf("import word %s: %w", w.Simplified, err)
		}
	}

	for _, s := range data.Sentences {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO example_sentences (chinese_simplified, chinese_traditional, pinyin, translation)
			VALUES (:chinese_simplified, :chinese_traditional, :pinyin, :translation)
			ON CONFLICT (chinese_simplified) DO UPDATE SET
				chinese_traditional = excluded.chinese_traditional,
				pinyin = excluded.pinyin,
				translation = excluded.translation
		`, s)
		if err != nil {
			return 0, fmt.Errorf("import sentence %q: %w", s.Simplified, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(data.Characters), nil
}
