// Package auth runs the OAuth login against the workout calendar platform
// and keeps its tokens fresh.
package auth

import (
	"strconv"

	"golang.org/x/oauth2"
)

// Scopes required to read the training calendar
var Scopes = []string{"calendar:read", "workouts:read"}

// Config holds the OAuth client credentials and endpoints
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string // e.g., "http://localhost:8089/callback"
}

// NewOAuthConfig creates an oauth2.Config from our Config
func NewOAuthConfig(cfg Config) *oauth2.Config {
	redirect := cfg.RedirectURL
	if redirect == "" {
		redirect = DefaultRedirectURL
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
		RedirectURL: redirect,
		Scopes:      Scopes,
	}
}

// AuthResult contains the token and account info from successful auth
type AuthResult struct {
	Token     *oauth2.Token
	AccountID string
}

// ExtractAccountID reads the account id the platform returns alongside the
// token, either as "account_id" or as {"account": {"id": ...}}.
// Returns "" when neither is present.
func ExtractAccountID(token *oauth2.Token) string {
	if id := idString(token.Extra("account_id")); id != "" {
		return id
	}
	if account, ok := token.Extra("account").(map[string]any); ok {
		return idString(account["id"])
	}
	return ""
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatInt(int64(id), 10)
	default:
		return ""
	}
}
