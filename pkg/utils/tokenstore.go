package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
)

const tokenDir = ".club-duties/tokens"

// StoredToken is a token together with the scopes the user granted.
// oauth2.Token drops the raw response when marshalled, so the scopes are
// kept next to it.
type StoredToken struct {
	Token  *oauth2.Token `json:"token"`
	Scopes []string      `json:"scopes"`
}

// TokenStore persists the token of one environment under the home directory
type TokenStore struct {
	path string
}

// NewTokenStore returns the store for env, e.g. ~/.club-duties/tokens/token-test.json
func NewTokenStore(env string) (*TokenStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	name := "token.json"
	if env != "" {
		name = "token-" + strings.ToLower(env) + ".json"
	}
	return &TokenStore{path: filepath.Join(home, tokenDir, name)}, nil
}

// Path returns the token file location
func (s *TokenStore) Path() string {
	return s.path
}

// Load returns nil without error when no token has been stored yet
func (s *TokenStore) Load() (*StoredToken, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var stored StoredToken
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	if stored.Token == nil {
		return nil, nil
	}
	return &stored, nil
}

// Save writes the token readable by the owner only
func (s *TokenStore) Save(stored *StoredToken) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
