package store

import (
	"database/sql"
	"errors"
	"time"
)

// Stable keys for persisted client state. The keys are part of the on-disk
// contract: a new client version must keep reading state written by an old one.
const (
	KeyCredential = "credential"
	KeyUserID     = "user_id"
	KeyUsername   = "username"
	KeyTheme      = "theme"
	KeyLocale     = "locale"
)

// ErrNotFound is returned when a state key has no value.
var ErrNotFound = errors.New("state key not found")

// GetState returns the value stored under key, or ErrNotFound.
func (db *DB) GetState(key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM client_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetState stores value under key (idempotent upsert).
func (db *DB) SetState(key, value string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO client_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	return err
}

// DeleteState removes a key. Deleting an absent key is not an error.
func (db *DB) DeleteState(key string) error {
	_, err := db.Exec(`DELETE FROM client_state WHERE key = ?`, key)
	return err
}
