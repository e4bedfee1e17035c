package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "taskremind",
		Short:         "Local task reminders and notification scheduling",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/taskremind/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Database path (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(todoCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(streakCmd())
	rootCmd.AddCommand(overdueCmd())
	rootCmd.AddCommand(deadlineCmd())
	rootCmd.AddCommand(pendingCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(resyncCmd())
	rootCmd.AddCommand(permissionCmd())
	rootCmd.AddCommand(channelsCmd())
	rootCmd.AddCommand(watchCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
