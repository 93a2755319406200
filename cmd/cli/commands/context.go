package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/internal/config"
	"github.com/jakechorley/club-duties/pkg/clients/gmailclient"
	"github.com/jakechorley/club-duties/pkg/clients/sheetsclient"
	"github.com/jakechorley/club-duties/pkg/core/duties"
	"github.com/jakechorley/club-duties/pkg/db"
	"github.com/jakechorley/club-duties/pkg/metrics"
	"github.com/jakechorley/club-duties/pkg/notify"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env       string
	Cfg       *config.Config
	Repo      *db.Repository
	Metrics   *metrics.Metrics
	Notifier  notify.Notifier
	Confirmer notify.Confirmer
	Logger    *zap.Logger
	Out       io.Writer
	// In is shared with the console confirmer so interactive input and
	// confirmations read from the same buffer
	In        *bufio.Reader
	Ctx       context.Context

	// Google clients are created on first use so commands that do not need
	// them never start the OAuth flow
	oauthCfg     *config.OAuthClientConfig
	sheetsClient *sheetsclient.Client
	gmailClient  *gmailclient.Client
}

// Rates returns the configured fees
func (app *AppContext) Rates() duties.Rates {
	return app.Cfg.Rates()
}

// SheetsClient returns the Sheets client, authenticating on first use
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}

	oauthCfg, err := app.oauthClientConfig()
	if err != nil {
		return nil, err
	}

	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(app.Ctx, oauthCfg, app.Env, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.sheetsClient = client
	return client, nil
}

// GmailClient returns the Gmail client. It reuses the token of the Sheets
// client, which requests every scope the tool needs.
func (app *AppContext) GmailClient() (*gmailclient.Client, error) {
	if app.gmailClient != nil {
		return app.gmailClient, nil
	}

	sheets, err := app.SheetsClient()
	if err != nil {
		return nil, err
	}

	app.Logger.Info("Initializing gmail client")
	client, err := gmailclient.NewClient(app.Ctx, app.oauthCfg, sheets.Token(), app.Cfg.GmailUserID, app.Cfg.GmailSender)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	app.gmailClient = client
	return client, nil
}

func (app *AppContext) oauthClientConfig() (*config.OAuthClientConfig, error) {
	if app.oauthCfg != nil {
		return app.oauthCfg, nil
	}

	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}
	app.oauthCfg = oauthCfg
	return oauthCfg, nil
}

// Finish refreshes the document gauges and writes the metrics textfile when
// one is configured. It runs after every command, also inside an interactive session.
func (app *AppContext) Finish() {
	if app.Metrics == nil || app.Cfg == nil || app.Cfg.MetricsTextfile == "" {
		return
	}

	doc, err := app.Repo.Load(app.Ctx)
	if err != nil {
		app.Logger.Warn("Failed to load document for metrics", zap.Error(err))
		return
	}
	app.Metrics.UpdateDocument(doc, app.Rates())

	if err := app.Metrics.WriteTextfile(app.Cfg.MetricsTextfile); err != nil {
		app.Logger.Warn("Failed to write metrics", zap.String("path", app.Cfg.MetricsTextfile), zap.Error(err))
	}
}

// Close releases the storage backend
func (app *AppContext) Close() {
	if app.Repo == nil {
		return
	}
	if app.Repo.HasUnsavedChanges() {
		app.Notifier.Notify(notify.Warning, "Changes from this session could not be saved")
	}
	if err := app.Repo.Close(); err != nil {
		app.Logger.Warn("Failed to close storage", zap.Error(err))
	}
}
