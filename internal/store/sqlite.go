package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Credential store keys
const (
	keyAuthorizationCredential = "authorization_credential"
	keyAccessToken             = "access_token"
	keyAccessTokenExpiry       = "access_token_expiry" // milliseconds since epoch
)

// Store is the SQLite-backed persistence layer: finalized test results plus
// the credential/token key-value table.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database and initializes the schema
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createResultsTable := `
	CREATE TABLE IF NOT EXISTS test_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		test_type TEXT NOT NULL,
		verdict TEXT NOT NULL,
		turn_count INTEGER NOT NULL,
		details TEXT,
		created_at INTEGER NOT NULL
	);`

	createCredentialsTable := `
	CREATE TABLE IF NOT EXISTS credentials (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`

	if _, err := db.Exec(createResultsTable); err != nil {
		return nil, fmt.Errorf("failed to create test_results table: %w", err)
	}

	if _, err := db.Exec(createCredentialsTable); err != nil {
		return nil, fmt.Errorf("failed to create credentials table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getValue(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM credentials WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) setValue(key, value string) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO credentials (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) removeValue(key string) error {
	if _, err := s.db.Exec("DELETE FROM credentials WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Credential returns the stored authorization credential, or "" when absent
func (s *Store) Credential() (string, error) {
	value, _, err := s.getValue(keyAuthorizationCredential)
	return value, err
}

// SetCredential replaces the stored authorization credential
func (s *Store) SetCredential(cred string) error {
	return s.setValue(keyAuthorizationCredential, cred)
}

// AccessToken returns the cached access token and its absolute expiry
func (s *Store) AccessToken() (string, time.Time, bool, error) {
	token, ok, err := s.getValue(keyAccessToken)
	if err != nil || !ok {
		return "", time.Time{}, false, err
	}

	expiryStr, ok, err := s.getValue(keyAccessTokenExpiry)
	if err != nil || !ok {
		return "", time.Time{}, false, err
	}

	expiryMillis, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("invalid stored token expiry %q: %w", expiryStr, err)
	}

	return token, time.UnixMilli(expiryMillis), true, nil
}

// SetAccessToken replaces the cached token and its expiry together
func (s *Store) SetAccessToken(token string, expiresAt time.Time) error {
	if err := s.setValue(keyAccessToken, token); err != nil {
		return err
	}
	return s.setValue(keyAccessTokenExpiry, strconv.FormatInt(expiresAt.UnixMilli(), 10))
}

// ClearAccessToken drops the cached token and its expiry
func (s *Store) ClearAccessToken() error {
	if err := s.removeValue(keyAccessToken); err != nil {
		return err
	}
	return s.removeValue(keyAccessTokenExpiry)
}
