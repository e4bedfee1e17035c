package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/task-reminders/internal/app"
	"github.com/nhle/task-reminders/internal/model"
	"github.com/nhle/task-reminders/internal/store"
	"github.com/nhle/task-reminders/internal/theme"
)

func todoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage todos and their reminders",
	}
	cmd.AddCommand(todoAddCmd())
	cmd.AddCommand(todoRemindCmd())
	cmd.AddCommand(todoDueCmd())
	cmd.AddCommand(todoDoneCmd())
	cmd.AddCommand(todoRmCmd())
	cmd.AddCommand(todoListCmd())
	return cmd
}

func todoAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			now := time.Now()
			in := app.NewTodo{Title: strings.Join(args, " ")}
			in.Description, _ = cmd.Flags().GetString("description")
			in.Category, _ = cmd.Flags().GetString("category")
			in.Remind, _ = cmd.Flags().GetBool("remind")

			if due, _ := cmd.Flags().GetString("due"); due != "" {
				t, err := parseWhen(due, now)
				if err != nil {
					return err
				}
				in.DueDate = &t
			}
			if at, _ := cmd.Flags().GetString("remind-at"); at != "" {
				t, err := parseWhen(at, now)
				if err != nil {
					return err
				}
				in.Remind = true
				in.RemindAt = &t
			}

			todo, err := rt.app.AddTodo(cmd.Context(), in)
			if err != nil {
				return err
			}
			printTodo(cmd.OutOrStdout(), *todo)
			return nil
		}),
	}

	cmd.Flags().StringP("description", "d", "", "Description")
	cmd.Flags().StringP("category", "c", "", "Category")
	cmd.Flags().String("due", "", "Due date (e.g. 2h, 18:30, 2026-03-12 09:00)")
	cmd.Flags().BoolP("remind", "r", false, "Remind before the due date")
	cmd.Flags().String("remind-at", "", "Remind at an explicit time")

	return cmd
}

func todoRemindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind [id] [when]",
		Short: "Enable, move or disable a todo's reminder",
		Long: `Without a time the reminder follows the due date, firing the configured
lead time before it. With a time it fires exactly then. --off disables it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			ctx := cmd.Context()
			var (
				todo *model.Todo
				err  error
			)

			off, _ := cmd.Flags().GetBool("off")
			switch {
			case off:
				todo, err = rt.app.DisableReminder(ctx, args[0])
			case len(args) == 2:
				var at time.Time
				at, err = parseWhen(args[1], time.Now())
				if err != nil {
					return err
				}
				todo, err = rt.app.SetReminder(ctx, args[0], &at)
			default:
				todo, err = rt.app.SetReminder(ctx, args[0], nil)
			}
			if err != nil {
				return err
			}
			printTodo(cmd.OutOrStdout(), *todo)
			return nil
		}),
	}

	cmd.Flags().Bool("off", false, "Disable the reminder")

	return cmd
}

func todoDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due [id] [when|none]",
		Short: "Set or clear a todo's due date",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			due, err := parseOptionalWhen(args[1], time.Now())
			if err != nil {
				return err
			}
			todo, err := rt.app.SetDueDate(cmd.Context(), args[0], due)
			if err != nil {
				return err
			}
			printTodo(cmd.OutOrStdout(), *todo)
			return nil
		}),
	}
}

func todoDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [id]",
		Short: "Mark a todo complete",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			todo, err := rt.app.Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTodo(cmd.OutOrStdout(), *todo)
			return nil
		}),
	}
}

func todoRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			if err := rt.app.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		}),
	}
}

func todoListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			filter := store.TodoFilter{SortBy: "due_date", Now: time.Now()}
			filter.Overdue, _ = cmd.Flags().GetBool("overdue")
			if status, _ := cmd.Flags().GetString("status"); status != "" {
				filter.Status = &status
			}
			if q, _ := cmd.Flags().GetString("search"); q != "" {
				filter.Query = &q
			}
			if only, _ := cmd.Flags().GetBool("reminders"); only {
				filter.Reminder = &only
			}

			todos, err := rt.app.Todos(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(todos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), theme.HelpStyle.Render("No todos."))
				return nil
			}
			for _, todo := range todos {
				printTodo(cmd.OutOrStdout(), todo)
			}
			return nil
		}),
	}

	cmd.Flags().Bool("overdue", false, "Only overdue todos")
	cmd.Flags().String("status", "", "Filter by status (open, in_progress, complete)")
	cmd.Flags().StringP("search", "s", "", "Search title and description")
	cmd.Flags().Bool("reminders", false, "Only todos with a reminder")

	return cmd
}

func printTodo(w io.Writer, todo model.Todo) {
	line := fmt.Sprintf("%s %s %s", theme.DimmedStyle.Render(todo.ID),
		theme.StatusStyle(todo.Status).Render(todo.Status), todo.Title)

	if todo.DueDate != nil {
		due := "due " + todo.DueDate.Local().Format("Jan 2 15:04")
		if todo.IsOverdue(time.Now()) {
			line += " " + theme.ErrorStyle.Render(due+" OVERDUE")
		} else {
			line += " " + theme.DimmedStyle.Render(due)
		}
	}

	if r := todo.Reminder; r.Enabled && r.At != nil {
		bell := "⏰ " + r.At.Local().Format("Jan 2 15:04")
		if r.NotificationID == "" {
			line += " " + theme.ErrorStyle.Render(bell+" (not scheduled)")
		} else {
			line += " " + theme.OKStyle.Render(bell)
		}
	}
	fmt.Fprintln(w, line)
}
