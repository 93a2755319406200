package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/jakechorley/club-duties/internal/config"
)

func testOAuthClient() *config.OAuthClientConfig {
	return &config.OAuthClientConfig{
		Installed: config.OAuthInstalled{
			ClientID:                "client-id.apps.googleusercontent.com",
			ProjectID:               "club-duties",
			AuthURI:                 "https://accounts.google.com/o/oauth2/auth",
			TokenURI:                "https://oauth2.googleapis.com/token",
			AuthProviderX509CertURL: "https://www.googleapis.com/oauth2/v1/certs",
			ClientSecret:            "secret",
			RedirectURIs:            []string{"http://localhost"},
		},
	}
}

func TestGetOAuthConfig(t *testing.T) {
	cfg, err := GetOAuthConfig(testOAuthClient())

	require.NoError(t, err)
	assert.Equal(t, "client-id.apps.googleusercontent.com", cfg.ClientID)
	assert.Equal(t, []string{ScopeSheetsReadonly, ScopeGmailSend}, cfg.Scopes)
	assert.Equal(t, "http://localhost:3000/oauth/callback", cfg.RedirectURL)
}

func TestTokenStore_RoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewTokenStore("Test")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".club-duties", "tokens", "token-test.json"), store.Path())

	missing, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, missing)

	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(&StoredToken{
		Token:  &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: expiry},
		Scopes: []string{ScopeSheetsReadonly},
	}))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "refresh", loaded.Token.RefreshToken)
	assert.True(t, expiry.Equal(loaded.Token.Expiry))
	assert.Equal(t, []string{ScopeSheetsReadonly}, loaded.Scopes)
}

func TestTokenStore_LoadCorruptFile(t *testing.T) {
	store := &TokenStore{path: filepath.Join(t.TempDir(), "token.json")}
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	loaded, err := store.Load()
	assert.Error(t, err)
	assert.Nil(t, loaded)
}

func TestAuthorizer_ReusesValidStoredToken(t *testing.T) {
	cfg, err := GetOAuthConfig(testOAuthClient())
	require.NoError(t, err)

	store := &TokenStore{path: filepath.Join(t.TempDir(), "token.json")}
	require.NoError(t, store.Save(&StoredToken{
		Token:  &oauth2.Token{AccessToken: "access", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)},
		Scopes: []string{ScopeSheetsReadonly, ScopeGmailSend},
	}))

	auth := &Authorizer{Config: cfg, Store: store, Prompt: &failingWriter{t: t}, Logger: zap.NewNop()}
	token, err := auth.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "access", token.AccessToken)
}

func TestAuthorizer_StoredTokenMissingScope(t *testing.T) {
	cfg, err := GetOAuthConfig(testOAuthClient())
	require.NoError(t, err)

	auth := &Authorizer{Config: cfg, Logger: zap.NewNop()}
	_, err = auth.reuse(context.Background(), &StoredToken{
		Token:  &oauth2.Token{AccessToken: "access", Expiry: time.Now().Add(time.Hour)},
		Scopes: []string{ScopeSheetsReadonly},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), ScopeGmailSend)
}

func TestGrantedScopes(t *testing.T) {
	requested := []string{ScopeSheetsReadonly, ScopeGmailSend}

	plain := &oauth2.Token{AccessToken: "a"}
	assert.Equal(t, requested, grantedScopes(plain, requested))

	partial := plain.WithExtra(map[string]interface{}{"scope": ScopeSheetsReadonly})
	granted := grantedScopes(partial, requested)
	assert.Equal(t, []string{ScopeSheetsReadonly}, granted)
	assert.Equal(t, []string{ScopeGmailSend}, missingScopes(granted, requested))
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
		wantErr    bool
		delivered  bool
	}{
		{name: "code", query: "state=s1&code=abc", wantStatus: http.StatusOK, wantCode: "abc", delivered: true},
		{name: "denied", query: "state=s1&error=access_denied", wantStatus: http.StatusBadRequest, wantErr: true, delivered: true},
		{name: "no code", query: "state=s1", wantStatus: http.StatusBadRequest, wantErr: true, delivered: true},
		{name: "wrong state", query: "state=other&code=abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(chan callbackResult, 1)
			rec := httptest.NewRecorder()

			callbackHandler("s1", results).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, callbackPath+"?"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if !tt.delivered {
				assert.Empty(t, results)
				return
			}
			result := <-results
			assert.Equal(t, tt.wantCode, result.code)
			assert.Equal(t, tt.wantErr, result.err != nil)
		})
	}
}

// failingWriter fails the test when the consent prompt is shown
type failingWriter struct {
	t *testing.T
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.t.Errorf("unexpected consent prompt: %s", p)
	return len(p), nil
}
