package wordbank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bodul/wordsearch/wordsearch"
)

var (
	ErrUnknownTheme = errors.New("unknown theme")
	ErrEmptyTheme   = errors.New("theme has no words")
)

// Store reads and writes themes in sqlite.
type Store struct {
	db *sql.DB
}

// NewStore wraps an initialized connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ThemeName normalizes a theme name for storage and lookup.
func ThemeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Seed stores the built-in themes that are not in the database yet.
func (s *Store) Seed(ctx context.Context) error {
	for name, entries := range builtin {
		var id int64
		err := s.db.QueryRowContext(ctx, `SELECT id FROM themes WHERE name = ?`, name).Scan(&id)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("look up theme %s: %w", name, err)
		}
		if err := s.SaveTheme(ctx, name, entries); err != nil {
			return err
		}
	}
	return nil
}

// SaveTheme creates the theme if needed and upserts its words. Words are
// normalized the same way the puzzle generator does.
func (s *Store) SaveTheme(ctx context.Context, name string, entries []Entry) error {
	name = ThemeName(name)
	if name == "" {
		return fmt.Errorf("theme name must be non-empty")
	}
	if len(entries) == 0 {
		return ErrEmptyTheme
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var themeID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO themes (name) VALUES (?)
		 ON CONFLICT(name) DO UPDATE SET name = excluded.name
		 RETURNING id`, name).Scan(&themeID)
	if err != nil {
		return fmt.Errorf("upsert theme %s: %w", name, err)
	}

	for _, e := range entries {
		word, err := wordsearch.Normalize(e.Word)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO words (theme_id, word, definition) VALUES (?, ?, ?)
			 ON CONFLICT(theme_id, word) DO UPDATE SET
			   definition = COALESCE(NULLIF(excluded.definition, ''), words.definition)`,
			themeID, word, strings.TrimSpace(e.Definition))
		if err != nil {
			return fmt.Errorf("upsert word %s: %w", word, err)
		}
	}
	return tx.Commit()
}

// Entries returns the words of a theme sorted alphabetically.
func (s *Store) Entries(ctx context.Context, name string) ([]Entry, error) {
	name = ThemeName(name)
	rows, err := s.db.QueryContext(ctx,
		`SELECT w.word, w.definition FROM words w
		 JOIN themes t ON t.id = w.theme_id
		 WHERE t.name = ? ORDER BY w.word`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Word, &e.Definition); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTheme, name)
	}
	return out, nil
}

// Themes lists the stored theme names.
func (s *Store) Themes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM themes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
