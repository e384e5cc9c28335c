package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"campus/internal/cli/output"
	"campus/internal/tasks/models"
)

func (a *app) newTable(headers ...string) *output.Table {
	return output.NewTable(a.printer.Out(), headers)
}

func newTasksCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage your tasks",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.init(cmd); err != nil {
				return err
			}
			if err := a.requireServer(); err != nil {
				return err
			}
			_, err := a.enter("/tasks")
			return err
		},
	}
	cmd.AddCommand(
		newTasksListCommand(a),
		newTasksAddCommand(a),
		newTasksStatusCommand(a, "start", models.StatusInProgress, "Mark a task in progress"),
		newTasksStatusCommand(a, "done", models.StatusDone, "Mark a task done"),
		newTasksRemoveCommand(a),
	)
	return cmd
}

func newTasksListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.tasks.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				a.printer.Info("No tasks yet")
				return nil
			}
			t := a.newTable("ID", "STATUS", "TITLE", "DUE")
			for _, task := range list {
				due := ""
				if task.DueDate != nil {
					due = task.DueDate.Format("2006-01-02")
				}
				t.AddRow(task.ID.String(), a.printer.StatusBadge(string(task.Status)), task.Title, due)
			}
			return t.Render()
		},
	}
}

func newTasksAddCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.CreateTaskRequest{Title: args[0]}
			req.Description, _ = cmd.Flags().GetString("description")
			if due, _ := cmd.Flags().GetString("due"); due != "" {
				parsed, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("invalid --due %q: want YYYY-MM-DD", due)
				}
				req.DueDate = &parsed
			}
			task, err := a.tasks.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.printer.Success("Created %s", task.ID)
			return nil
		},
	}
	cmd.Flags().StringP("description", "d", "", "task description")
	cmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	return cmd
}

func newTasksStatusCommand(a *app, use string, status models.Status, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			task, err := a.tasks.Update(cmd.Context(), id, models.UpdateTaskRequest{Status: &status})
			if err != nil {
				return err
			}
			a.printer.Success("%s is now %s", task.Title, task.Status)
			return nil
		},
	}
}

func newTasksRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			if err := a.tasks.Delete(cmd.Context(), id); err != nil {
				return err
			}
			a.printer.Success("Deleted %s", id)
			return nil
		},
	}
}

func parseTaskID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}
