package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/jakechorley/club-duties/internal/config"
)

const (
	callbackAddr = "localhost:3000"
	callbackPath = "/oauth/callback"
	authTimeout  = 5 * time.Minute
)

// Scopes the tool asks for: member import reads a sheet, reminders send mail
const (
	ScopeSheetsReadonly = "https://www.googleapis.com/auth/spreadsheets.readonly"
	ScopeGmailSend      = "https://www.googleapis.com/auth/gmail.send"
)

// GetOAuthConfig turns the installed-app client file into an oauth2 config
// asking for the sheets and gmail scopes
func GetOAuthConfig(oauthCfg *config.OAuthClientConfig) (*oauth2.Config, error) {
	raw, err := json.Marshal(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal oauth client: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(raw, ScopeSheetsReadonly, ScopeGmailSend)
	if err != nil {
		return nil, fmt.Errorf("failed to parse oauth client: %w", err)
	}
	oauthConfig.RedirectURL = "http://" + callbackAddr + callbackPath

	return oauthConfig, nil
}

// Authorizer hands out a token for the configured scopes. A stored token is
// reused while it covers them; otherwise the user is sent through the
// browser consent screen and the result is stored.
type Authorizer struct {
	Config *oauth2.Config
	Store  *TokenStore
	// Prompt receives the consent URL
	Prompt io.Writer
	Logger *zap.Logger
}

// Token returns a usable token, refreshing or re-authorizing as needed
func (a *Authorizer) Token(ctx context.Context) (*oauth2.Token, error) {
	stored, err := a.Store.Load()
	if err != nil {
		a.Logger.Warn("Ignoring unreadable token file", zap.String("path", a.Store.Path()), zap.Error(err))
	}

	if stored != nil {
		token, err := a.reuse(ctx, stored)
		if err == nil {
			return token, nil
		}
		a.Logger.Info("Stored token cannot be reused", zap.Error(err))
	}

	return a.consent(ctx)
}

func (a *Authorizer) reuse(ctx context.Context, stored *StoredToken) (*oauth2.Token, error) {
	if missing := missingScopes(stored.Scopes, a.Config.Scopes); len(missing) > 0 {
		return nil, fmt.Errorf("token lacks scopes %s", strings.Join(missing, " "))
	}

	// The token source refreshes an expired access token with the refresh token
	token, err := a.Config.TokenSource(ctx, stored.Token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if token.AccessToken != stored.Token.AccessToken {
		a.Logger.Debug("Refreshed access token")
		if err := a.Store.Save(&StoredToken{Token: token, Scopes: stored.Scopes}); err != nil {
			return nil, err
		}
	}
	return token, nil
}

func (a *Authorizer) consent(ctx context.Context) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	listener, err := net.Listen("tcp", callbackAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for oauth callback on %s: %w", callbackAddr, err)
	}

	state := uuid.NewString()
	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.Handle(callbackPath, callbackHandler(state, results))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Warn("OAuth callback server stopped", zap.Error(err))
		}
	}()
	defer server.Close()

	authURL := a.Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(a.Prompt, "Open this link to give access to the club sheet and mailbox:\n\n%s\n\n", authURL)

	var result callbackResult
	select {
	case result = <-results:
	case <-ctx.Done():
		return nil, fmt.Errorf("timed out waiting for authorization: %w", ctx.Err())
	}
	if result.err != nil {
		return nil, result.err
	}

	token, err := a.Config.Exchange(ctx, result.code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	granted := grantedScopes(token, a.Config.Scopes)
	if missing := missingScopes(granted, a.Config.Scopes); len(missing) > 0 {
		return nil, fmt.Errorf("access was not granted for %s", strings.Join(missing, " "))
	}

	if err := a.Store.Save(&StoredToken{Token: token, Scopes: granted}); err != nil {
		return nil, err
	}
	a.Logger.Info("Authorization complete", zap.String("path", a.Store.Path()))

	return token, nil
}

type callbackResult struct {
	code string
	err  error
}

// callbackHandler delivers the first callback carrying the expected state
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(w, "unexpected state", http.StatusBadRequest)
			return
		}

		result := callbackResult{code: query.Get("code")}
		switch {
		case query.Get("error") != "":
			result = callbackResult{err: fmt.Errorf("authorization denied: %s", query.Get("error"))}
		case result.code == "":
			result = callbackResult{err: errors.New("authorization callback without code")}
		}

		select {
		case results <- result:
		default:
		}

		if result.err != nil {
			http.Error(w, result.err.Error(), http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization received. You can close this window.")
	})
}

// grantedScopes reads the scope field of a token response. Google reports
// what the user ticked on the consent screen, which can be less than asked.
func grantedScopes(token *oauth2.Token, requested []string) []string {
	raw, _ := token.Extra("scope").(string)
	if raw == "" {
		return slices.Clone(requested)
	}
	return strings.Fields(raw)
}

func missingScopes(granted, required []string) []string {
	var missing []string
	for _, scope := range required {
		if !slices.Contains(granted, scope) {
			missing = append(missing, scope)
		}
	}
	return missing
}

