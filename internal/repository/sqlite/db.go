package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id INTEGER PRIMARY KEY,
	authorized BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS characters (
	character TEXT PRIMARY KEY,
	traditional TEXT,
	pinyin TEXT,
	meaning TEXT,
	difficulty TEXT,
	type_of_word TEXT,
	frequency TEXT,
	radicals_json TEXT,
	stroke_order_visual_json TEXT,
	stroke_order_svg_json TEXT,
	stroke_count INTEGER,
	hsk_level INTEGER,
	is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
	last_reviewed INTEGER NOT NULL DEFAULT 0,
	next_review INTEGER NOT NULL DEFAULT 0,
	ease_factor REAL NOT NULL DEFAULT 2.5 CHECK (ease_factor >= 1.3),
	interval_days INTEGER NOT NULL DEFAULT 0 CHECK (interval_days >= 0),
	repetitions INTEGER NOT NULL DEFAULT 0 CHECK (repetitions >= 0)
);

CREATE INDEX IF NOT EXISTS idx_characters_next_review ON characters (next_review);
CREATE INDEX IF NOT EXISTS idx_characters_hsk_level ON characters (hsk_level);

CREATE TABLE IF NOT EXISTS related_words (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	simplified TEXT NOT NULL UNIQUE,
	traditional TEXT,
	pinyin TEXT,
	meaning TEXT,
	type_of_word TEXT
);

CREATE TABLE IF NOT EXISTS example_sentences (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	chinese_simplified TEXT NOT NULL UNIQUE,
	chinese_traditional TEXT,
	pinyin TEXT,
	translation TEXT NOT NULL
);
`

// Open connects to the database file at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}
