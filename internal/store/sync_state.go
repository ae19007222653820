package store

import (
	"database/sql"
	"errors"
	"time"
)

// Scan state keys
const (
	StateLastScan      = "last_scan"
	StateLastScanFiles = "last_scan_files"
)

// GetScanState retrieves a scan state value by key
// Returns empty string if key doesn't exist
func (db *DB) GetScanState(key string) (string, error) {
	var value string
	err := db.QueryRow(`
		SELECT value FROM scan_state WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetScanState sets a scan state value
func (db *DB) SetScanState(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO scan_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// LastScan returns when the FIT directory was last scanned, or the zero time.
func (db *DB) LastScan() (time.Time, error) {
	v, err := db.GetScanState(StateLastScan)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}
