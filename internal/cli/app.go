// Package cli wires the portal's commands: scriptable subcommands for auth,
// concerns, rooms, and exports, plus the interactive chat TUI as the default
// action.
package cli

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/api"
	"github.com/noah-isme/studentlink-portal/internal/session"
	"github.com/noah-isme/studentlink-portal/pkg/config"
	"github.com/noah-isme/studentlink-portal/pkg/logger"
	"github.com/noah-isme/studentlink-portal/pkg/metrics"
)

// App carries the shared state every command needs. bootstrap builds it
// lazily so flag parsing and help never touch the network or disk.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	session *session.Session
	client  *api.Client
	metrics *metrics.Metrics
}

func (a *App) bootstrap() error {
	if a.client != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	a.cfg = cfg

	log, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	a.logger = log

	store := session.NewFileStore(cfg.Session.File)
	sess := session.New(store)
	if err := sess.Restore(); err != nil {
		log.Warn("could not restore session, starting logged out", zap.Error(err))
	}
	a.session = sess

	a.metrics = metrics.New()
	a.client = api.New(cfg.API.BaseURL, sess, log,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithMetrics(a.metrics),
		api.WithUnauthorizedHook(func() {
			fmt.Fprintln(os.Stderr, "session expired, please log in again")
		}),
	)
	return nil
}

// tuiLogger returns a file-backed logger so log output never corrupts the
// interactive screen.
func (a *App) tuiLogger() *zap.Logger {
	dir := filepath.Dir(a.cfg.Session.File)
	log, err := logger.NewFile(a.cfg, filepath.Join(dir, "portal.log"))
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
