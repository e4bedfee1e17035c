package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/task-reminders/internal/notify"
	"github.com/nhle/task-reminders/internal/theme"
)

// report prints the outcome of a best-effort scheduling call.
func report(w io.Writer, what string, h notify.Handle, ok bool) {
	if !ok {
		fmt.Fprintln(w, theme.ErrorStyle.Render(what+" not scheduled"))
		return
	}
	fmt.Fprintf(w, "%s %s\n", theme.OKStyle.Render(what+" scheduled"), theme.DimmedStyle.Render(string(h)))
}

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Send task summaries",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "daily",
		Short: "Schedule the next daily summary at the configured time",
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			if !rt.cfg.Summary.DailyEnabled {
				fmt.Fprintln(cmd.OutOrStdout(), theme.HelpStyle.Render("Daily summary is disabled."))
				return nil
			}
			h, ok, err := rt.app.ScheduleDailySummary(cmd.Context())
			if err != nil {
				return err
			}
			report(cmd.OutOrStdout(), "Daily summary for "+rt.cfg.Summary.DailyTime, h, ok)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "weekly",
		Short: "Send the weekly summary now",
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			h, ok, err := rt.app.SendWeeklySummary(cmd.Context())
			if err != nil {
				return err
			}
			report(cmd.OutOrStdout(), "Weekly summary", h, ok)
			return nil
		}),
	})

	return cmd
}

func streakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streak [days]",
		Short: "Celebrate a completion streak",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			days, err := strconv.Atoi(args[0])
			if err != nil || days < 0 {
				return fmt.Errorf("streak must be a non-negative number, got %q", args[0])
			}
			h, ok := rt.app.Notify().SendStreakNotification(cmd.Context(), days)
			report(cmd.OutOrStdout(), "Streak notification", h, ok)
			return nil
		}),
	}
}

func overdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "Alert about overdue todos",
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			todos, err := rt.app.Overdue(cmd.Context())
			if err != nil {
				return err
			}
			if len(todos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), theme.HelpStyle.Render("Nothing overdue."))
				return nil
			}
			h, ok, err := rt.app.SendOverdueAlert(cmd.Context())
			if err != nil {
				return err
			}
			report(cmd.OutOrStdout(), "Overdue alert", h, ok)
			return nil
		}),
	}
}

func deadlineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deadline",
		Short: "Warn about todos due soon",
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			within, _ := cmd.Flags().GetDuration("within")
			n, err := rt.app.SendDeadlineWarnings(cmd.Context(), within)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d deadline warning(s) scheduled\n", n)
			return nil
		}),
	}

	cmd.Flags().Duration("within", 24*time.Hour, "Warn about todos due within this window")

	return cmd
}

func pendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List notifications waiting to fire",
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			w := cmd.OutOrStdout()
			pending := rt.app.Notify().Engine.Pending(cmd.Context())
			if len(pending) == 0 {
				fmt.Fprintln(w, theme.HelpStyle.Render("No pending notifications."))
				return nil
			}
			for _, p := range pending {
				when := "now"
				if !p.Trigger.IsImmediate() {
					when = p.Trigger.Time().Local().Format("Jan 2 15:04")
				}
				channel := string(p.Content.ChannelID)
				fmt.Fprintf(w, "%s %s %s %s\n",
					theme.DimmedStyle.Render(string(p.Handle)),
					theme.ChannelStyle(channel).Render(when),
					p.Content.Title,
					theme.DimmedStyle.Render(p.Content.Body),
				)
			}
			return nil
		}),
	}
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Cancel every scheduled notification",
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			if err := rt.app.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All notifications cancelled. Run resync to restore reminders.")
			return nil
		}),
	}
}

func resyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resync",
		Short: "Reschedule enabled reminders that have no notification",
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			n, err := rt.app.Resync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d reminder(s) restored\n", n)
			return nil
		}),
	}
}

func permissionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permission",
		Short: "Show or request notification permission",
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			ctx := cmd.Context()
			if reset, _ := cmd.Flags().GetBool("reset"); reset {
				if err := rt.platform.ResetPermission(ctx); err != nil {
					return err
				}
			}

			gate := rt.app.Notify().Permissions
			if request, _ := cmd.Flags().GetBool("request"); request {
				gate.RequestPermission(ctx)
			} else {
				gate.HasPermission(ctx)
			}

			state := gate.Cached()
			style := theme.HelpStyle
			switch state {
			case notify.PermissionGranted:
				style = theme.OKStyle
			case notify.PermissionDenied:
				style = theme.ErrorStyle
			}
			fmt.Fprintln(cmd.OutOrStdout(), style.Render("Notifications: "+string(state)))
			return nil
		}),
	}

	cmd.Flags().Bool("request", false, "Ask for permission if undetermined")
	cmd.Flags().Bool("reset", false, "Forget the recorded decision")

	return cmd
}

func channelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List declared notification channels",
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			w := cmd.OutOrStdout()
			if !rt.cfg.Platform.Channels {
				fmt.Fprintln(w, theme.HelpStyle.Render("Channels are disabled."))
				return nil
			}
			declared, err := rt.store.GetChannels(cmd.Context())
			if err != nil {
				return err
			}
			for _, ch := range declared {
				fmt.Fprintf(w, "%s %s %s\n",
					theme.ChannelStyle(ch.ID).Render(ch.ID),
					strings.ToUpper(ch.Importance),
					theme.DimmedStyle.Render(ch.Description),
				)
			}
			return nil
		}),
	}
}
