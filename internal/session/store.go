package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store persists the credential pair in a single-row SQLite table.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default state database path.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "zooportal", "state.sqlite")
}

// Open opens (creating if needed) the state database.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS credentials (
			id      INTEGER PRIMARY KEY CHECK (id = 1),
			user_id TEXT NOT NULL,
			role    TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create credentials table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Restore reads the persisted credential pair. A missing or partial row is
// treated as logged out, never as authenticated.
func (s *Store) Restore() (Session, error) {
	row := s.db.QueryRow(`SELECT user_id, role FROM credentials WHERE id = 1`)

	var userID, role string
	if err := row.Scan(&userID, &role); err != nil {
		if err == sql.ErrNoRows {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("scan credentials: %w", err)
	}

	sess := Session{UserID: userID, Role: Role(role)}
	if !sess.LoggedIn() {
		return Session{}, nil
	}
	return sess, nil
}

// Login stores the credential pair. Both fields land in one statement, so a
// reader never observes a half-written identity.
func (s *Store) Login(userID string, role Role) error {
	if userID == "" || !role.Valid() {
		return fmt.Errorf("login: incomplete identity")
	}

	_, err := s.db.Exec(`
		INSERT INTO credentials (id, user_id, role) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET user_id = excluded.user_id, role = excluded.role
	`, userID, string(role))
	if err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}
	return nil
}

// Logout erases the persisted credential pair.
func (s *Store) Logout() error {
	if _, err := s.db.Exec(`DELETE FROM credentials WHERE id = 1`); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
