package testutil

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"

	_ "modernc.org/sqlite"
)

// SampleHistoryJSON is a persisted snapshot with one completed exchange
const SampleHistoryJSON = `[{"sender":"user","text":"Hello"},{"sender":"assistant","text":"Hi there!"}]`

// LegacyHistoryJSON uses the old "bot" sender name
const LegacyHistoryJSON = `[{"sender":"user","text":"Hello"},{"sender":"bot","text":"Hi there!"}]`

// CreateSQLiteFixture creates a SQLite file at dbPath holding value under key
func CreateSQLiteFixture(t *testing.T, dbPath, key, value string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS chatKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	if _, err := db.Exec("INSERT OR REPLACE INTO chatKV (key, value) VALUES (?, ?)", key, value); err != nil {
		t.Fatalf("Failed to insert fixture: %v", err)
	}
}

// CompleterCall records one call made to a StubCompleter
type CompleterCall struct {
	Persona  string
	UserText string
}

// StubCompleter returns canned replies and records what it was asked
type StubCompleter struct {
	mu    sync.Mutex
	Reply string
	Err   error
	// Block, when set, holds every call until it is closed
	Block chan struct{}
	Calls []CompleterCall
}

// Complete implements the completer contract
func (s *StubCompleter) Complete(ctx context.Context, persona, userText string) (string, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, CompleterCall{Persona: persona, UserText: userText})
	block := s.Block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.Reply, nil
}

// CallCount returns how many times Complete ran
func (s *StubCompleter) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}
