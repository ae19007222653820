package store

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ErrNoToken is returned when no grant is stored for a platform.
var ErrNoToken = errors.New("no token stored for platform")

// PlatformKey normalizes a calendar API base URL into the key tokens are
// stored under. Scheme and host are case-insensitive; a trailing slash is
// ignored.
func PlatformKey(baseURL string) string {
	raw := strings.TrimSpace(baseURL)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(raw, "/")
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + strings.TrimRight(u.Path, "/")
}

// ConnectToken returns the grant stored for platform. A token saved for a
// different base URL is never returned, so pointing the config at another
// platform requires a new login.
func (db *DB) ConnectToken(platform string) (*ConnectToken, error) {
	var (
		t                    ConnectToken
		expiresAt, updatedAt string
	)
	err := db.QueryRow(`
		SELECT platform, account_id, access_token, refresh_token, token_type, expires_at, updated_at
		FROM connect_tokens
		WHERE platform = ?
	`, PlatformKey(platform)).Scan(&t.Platform, &t.AccountID, &t.AccessToken, &t.RefreshToken, &t.TokenType, &expiresAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, err
	}

	if t.ExpiresAt, err = parseTokenTime(expiresAt); err != nil {
		return nil, fmt.Errorf("token expiry for %s: %w", t.Platform, err)
	}
	if t.UpdatedAt, err = parseTokenTime(updatedAt); err != nil {
		return nil, fmt.Errorf("token update time for %s: %w", t.Platform, err)
	}
	return &t, nil
}

// SaveConnectToken stores the grant from a fresh login, replacing any earlier
// grant for the same platform.
func (db *DB) SaveConnectToken(t *ConnectToken) error {
	if t.AccessToken == "" {
		return errors.New("saving token: access token is empty")
	}
	_, err := db.Exec(`
		INSERT INTO connect_tokens (platform, account_id, access_token, refresh_token, token_type, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(platform) DO UPDATE SET
			account_id = excluded.account_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, PlatformKey(t.Platform), t.AccountID, t.AccessToken, t.RefreshToken, t.TokenType,
		formatTokenTime(t.ExpiresAt), formatTokenTime(time.Now()))
	return err
}

// RefreshConnectToken records a refreshed access token. The refresh token is
// kept when the platform does not rotate it.
func (db *DB) RefreshConnectToken(platform, accessToken, refreshToken string, expiresAt time.Time) error {
	result, err := db.Exec(`
		UPDATE connect_tokens
		SET access_token = ?,
			refresh_token = COALESCE(NULLIF(?, ''), refresh_token),
			expires_at = ?,
			updated_at = ?
		WHERE platform = ?
	`, accessToken, refreshToken, formatTokenTime(expiresAt), formatTokenTime(time.Now()), PlatformKey(platform))
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoToken
	}
	return nil
}

// DeleteConnectToken forgets the grant for platform.
func (db *DB) DeleteConnectToken(platform string) error {
	result, err := db.Exec(`DELETE FROM connect_tokens WHERE platform = ?`, PlatformKey(platform))
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoToken
	}
	return nil
}

func formatTokenTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// parseTokenTime reads an RFC3339 timestamp; empty means no expiry.
func parseTokenTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
