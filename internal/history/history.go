package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/logger"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Transition is one applied brightness change
type Transition struct {
	ID         int64     `db:"id" json:"id"`
	Timestamp  time.Time `db:"ts" json:"ts"`
	Brightness int       `db:"brightness" json:"brightness"`
	Previous   int       `db:"previous" json:"previous"`
	Reason     string    `db:"reason" json:"reason"`
	Profile    string    `db:"profile" json:"profile"`
}

// Store records applied brightness transitions in a local SQLite
// database. Recording is best effort: failures are logged by the caller
// and never stop a tick.
type Store struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// Open creates or opens the history database and ensures the schema
// exists.
func Open(path string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			log.WithError(err).WithField("pragma", pragma).Warn("Failed to apply pragma")
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS brightness_transitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts DATETIME NOT NULL,
		brightness INTEGER NOT NULL,
		previous INTEGER NOT NULL,
		reason TEXT NOT NULL,
		profile TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transitions_ts ON brightness_transitions(ts);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db, logger: log}, nil
}

// Record inserts one transition
func (s *Store) Record(t Transition) error {
	_, err := s.db.Exec(
		`INSERT INTO brightness_transitions (ts, brightness, previous, reason, profile)
		 VALUES (?, ?, ?, ?, ?)`,
		t.Timestamp, t.Brightness, t.Previous, t.Reason, t.Profile,
	)
	if err != nil {
		return fmt.Errorf("failed to record transition: %w", err)
	}
	return nil
}

// Recent returns the latest n transitions, newest first
func (s *Store) Recent(n int) ([]Transition, error) {
	var transitions []Transition
	err := s.db.Select(&transitions,
		`SELECT id, ts, brightness, previous, reason, profile
		 FROM brightness_transitions ORDER BY ts DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	return transitions, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
