package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nhle/task-reminders/internal/app"
	"github.com/nhle/task-reminders/internal/logging"
	"github.com/nhle/task-reminders/internal/model"
	"github.com/nhle/task-reminders/internal/notify"
	"github.com/nhle/task-reminders/internal/platform/local"
	"github.com/nhle/task-reminders/internal/store"
)

// runtime holds everything a command needs, opened from config.
type runtime struct {
	cfg      *model.AppConfig
	logger   *slog.Logger
	store    *store.SQLiteStore
	platform *local.Platform
	app      *app.App
}

func openRuntime(cmd *cobra.Command) (*runtime, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Database = db
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr(), "taskremind")

	if dir := filepath.Dir(cfg.Database); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}
	s, err := store.NewSQLiteStore(cfg.Database)
	if err != nil {
		return nil, err
	}

	platform := local.New(s,
		local.WithChannels(cfg.Platform.Channels),
		local.WithPrompter(local.FormPrompter{AppName: "taskremind"}),
		local.WithLogger(logger),
	)
	svc := notify.New(platform,
		notify.WithLogger(logger),
		notify.WithReminderLead(cfg.Reminders.DefaultLead),
	)
	svc.Init(cmd.Context())

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		store:    s,
		platform: platform,
		app:      app.New(s, svc, cfg, app.WithLogger(logger)),
	}, nil
}

func (r *runtime) Close() {
	if err := r.store.Close(); err != nil {
		r.logger.Warn("closing store", "error", err)
	}
}

// withRuntime wraps a RunE body with openRuntime and Close.
func withRuntime(fn func(cmd *cobra.Command, args []string, rt *runtime) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		return fn(cmd, args, rt)
	}
}
