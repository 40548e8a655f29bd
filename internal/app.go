// Package internal provides the App struct that wires all components of the
// mail triage system together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/mail-triage/internal/agent"
	"github.com/valter-silva-au/mail-triage/internal/cli"
	"github.com/valter-silva-au/mail-triage/internal/core"
	"github.com/valter-silva-au/mail-triage/internal/observability"
	"github.com/valter-silva-au/mail-triage/internal/storage"
	"github.com/valter-silva-au/mail-triage/pkg/models"
)

// App holds all service dependencies for the mail triage system.
type App struct {
	BasePath string
	Config   *models.Config

	// Business data
	Store   core.Store
	Overlay *core.Overlay
	Ops     core.Operations

	// Agent
	Gateway agent.Gateway

	// Email sources
	Emails storage.EmailLoader

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components of the mail triage system.
// basePath is the root directory holding the configuration file and, by
// default, the data, emails, and intent directories.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	cfg, err := core.NewConfigLoader(basePath).Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	app.Config = cfg

	// --- Business data ---
	app.Store = core.NewStore(cfg.DataDir, cfg.TemplatesFile)
	report := app.Store.Load()
	for _, msg := range report.Errors {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".mta_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable observability if the log can't be created.
		app.EventLog = nil
	}
	var evtAdapter core.EventLogger
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
		evtAdapter = &eventLogAdapter{log: app.EventLog}
	}

	app.Overlay = core.NewOverlay()
	app.Ops = core.NewOperations(app.Store, app.Overlay, evtAdapter)

	// --- Agent gateway ---
	if cfg.OfflineMode {
		app.Gateway = agent.NewScriptedGateway(app.Ops)
	} else {
		app.Gateway = agent.NewHostedGateway(cfg.Model)
	}

	// --- Email sources ---
	app.Emails = storage.NewEmailLoader(cfg.EmailsDir)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Cfg = app.Config
	cli.DataStore = app.Store
	cli.Overlay = app.Overlay
	cli.Ops = app.Ops
	cli.Gateway = app.Gateway
	cli.Emails = app.Emails
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App, such as the event log file
// handle. It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}

// ResolveBasePath determines the base path for the mail triage data
// directory. It checks the MTA_HOME env var, then walks up from the current
// directory looking for a .mailtriagerc file, then falls back to cwd.
func ResolveBasePath() string {
	if home := os.Getenv("MTA_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".mailtriagerc")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
