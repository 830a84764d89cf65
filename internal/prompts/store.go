// Package prompts persists the prompt history across sessions. The
// store holds a single ordered list, newest first, capped at the
// session state's limit; it is read once at startup and rewritten
// after every successful prompt submission.
package prompts

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS prompt_history (
    position INTEGER PRIMARY KEY,
    prompt TEXT NOT NULL
);
`

type Store struct {
	db *sql.DB
}

func NewStore() (*Store, error) {
	dbPath, err := defaultDBPath()
	if err != nil {
		return nil, err
	}
	return NewStoreWithPath(dbPath)
}

func NewStoreWithPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func defaultDBPath() (string, error) {
	dataDir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "history.db"), nil
}

// DefaultDataDir is where the prompt database and the image workspace
// live.
func DefaultDataDir() (string, error) {
	if testDir := os.Getenv("SPACEAI_DATA_DIR"); testDir != "" {
		return testDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".spaceai"), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the saved prompt list, newest first.
func (s *Store) Load(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT prompt FROM prompt_history ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// Save replaces the stored list with prompts, preserving order. The
// caller owns deduplication and the cap; the store is a dumb slot.
func (s *Store) Save(ctx context.Context, prompts []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM prompt_history`); err != nil {
		return err
	}
	for i, p := range prompts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO prompt_history (position, prompt) VALUES (?, ?)`, i, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}
