package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nhle/task-reminders/internal/model"
	"github.com/nhle/task-reminders/internal/notify"
	"github.com/nhle/task-reminders/internal/platform/local"
	"github.com/nhle/task-reminders/internal/ui/watch"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Deliver due notifications and show them live",
		Long: `Runs the dispatcher that fires due notifications and shows each delivery
as it arrives. Press enter on a delivery to tap it. When a daily summary is
delivered the next one is scheduled.`,
		RunE: runWatch,
	}

	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (overrides config)")
	cmd.Flags().String("log-file", "", "Write logs here while the view is open (default next to the database)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	logPath, _ := cmd.Flags().GetString("log-file")
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(defaultDatabase(cmd)), "taskremind.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", logPath, err)
	}
	defer logFile.Close()
	cmd.SetErr(logFile)

	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	svc := rt.app.Notify()

	addr := rt.cfg.Metrics.Addr
	if flagAddr, _ := cmd.Flags().GetString("metrics-addr"); flagAddr != "" {
		addr = flagAddr
	}
	if addr != "" {
		srv := serveMetrics(addr, rt)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Keep one daily summary pending: schedule it now and again after
	// each delivery.
	if _, _, err := rt.app.ScheduleDailySummary(ctx); err != nil {
		rt.logger.Warn("scheduling daily summary", "error", err)
	}
	rollover := svc.AddNotificationReceivedListener(func(r notify.Received) {
		if r.Payload == nil || r.Payload.Kind() != notify.KindDailySummary {
			return
		}
		if _, _, err := rt.app.ScheduleDailySummary(ctx); err != nil {
			rt.logger.Warn("rescheduling daily summary", "error", err)
		}
	})
	defer rollover.Close()

	feed := watch.Subscribe(svc)
	defer feed.Close()

	interval := time.Duration(rt.cfg.Platform.PollIntervalSec) * time.Second
	dispatcher := local.NewDispatcher(rt.platform, interval, rt.logger)
	dispatcher.Start()
	defer dispatcher.Stop()

	program := tea.NewProgram(
		watch.New(feed, rt.platform, dispatcher, 80, 24),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func serveMetrics(addr string, rt *runtime) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	rt.logger.Info("serving metrics", "addr", addr)
	return srv
}

// defaultDatabase resolves the database path without opening it.
func defaultDatabase(cmd *cobra.Command) string {
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		return db
	}
	return model.DefaultDatabasePath()
}
