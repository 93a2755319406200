package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/club-duties/pkg/core/model"
	"github.com/jakechorley/club-duties/pkg/core/services"
	"github.com/jakechorley/club-duties/pkg/notify"
)

// ListTasksCmd creates the listTasks command
func ListTasksCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listTasks",
		Short: "List tasks sorted by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			typeName, _ := cmd.Flags().GetString("type")

			filter := services.TaskStatusFilter(status)
			switch filter {
			case services.TaskStatusAll, services.TaskStatusOpen, services.TaskStatusCompleted:
			default:
				return fmt.Errorf("status must be all, open or completed")
			}

			var taskType model.TaskType
			if typeName != "" {
				t, err := parseTaskType(typeName)
				if err != nil {
					return err
				}
				taskType = t
			}

			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}

			tasks := services.FilterTasks(doc, filter, taskType)
			if len(tasks) == 0 {
				fmt.Fprintln(app.Out, "No tasks found.")
				return nil
			}

			fmt.Fprintf(app.Out, "\n%d tasks:\n\n", len(tasks))
			return renderTasks(app.Out, doc, tasks)
		},
	}

	cmd.Flags().String("status", string(services.TaskStatusAll), "Filter by all, open or completed")
	cmd.Flags().String("type", "", "Filter by task type")

	return cmd
}

// AddTaskCmd creates the addTask command
func AddTaskCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addTask <type>",
		Short: "Add a task, e.g. addTask bar-duty --date 2025-05-02",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskType, err := parseTaskType(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			name, _ := flags.GetString("name")
			date, _ := flags.GetString("date")
			description, _ := flags.GetString("description")
			coordinatorRef, _ := flags.GetString("coordinator")

			input := services.TaskInput{
				Type:        taskType,
				Name:        name,
				Date:        date,
				Description: description,
			}
			if flags.Changed("max") {
				v, _ := flags.GetInt("max")
				input.MaxParticipants = &v
			}
			if coordinatorRef != "" {
				doc, err := app.Repo.Load(app.Ctx)
				if err != nil {
					return err
				}
				coordinator, err := resolveMember(doc, coordinatorRef)
				if err != nil {
					return err
				}
				input.Coordinator = coordinator.ID
			}

			task, err := services.CreateTask(app.Ctx, app.Repo, app.Logger, input)
			if err != nil {
				return err
			}

			app.Notifier.Notify(notify.Success, fmt.Sprintf("Added %s (%s)", task.DisplayName(), task.ID))
			return nil
		},
	}

	cmd.Flags().String("name", "", "Task name (defaults to the type label)")
	cmd.Flags().String("date", "", "Date as YYYY-MM-DD")
	cmd.Flags().Int("max", 0, "Maximum participants (defaults to the type capacity)")
	cmd.Flags().String("coordinator", "", "Coordinating member")
	cmd.Flags().String("description", "", "Description")

	return cmd
}

// UpdateTaskCmd creates the updateTask command. Only flags that are given change.
func UpdateTaskCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "updateTask <task>",
		Short: "Change a task; --max 0, --date \"\" and --coordinator \"\" clear the field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}
			task, err := resolveTask(doc, args[0])
			if err != nil {
				return err
			}

			var update services.TaskUpdate
			flags := cmd.Flags()
			if flags.Changed("type") {
				v, _ := flags.GetString("type")
				t, err := parseTaskType(v)
				if err != nil {
					return err
				}
				update.Type = &t
			}
			if flags.Changed("name") {
				v, _ := flags.GetString("name")
				update.Name = &v
			}
			if flags.Changed("date") {
				v, _ := flags.GetString("date")
				update.Date = &v
			}
			if flags.Changed("max") {
				v, _ := flags.GetInt("max")
				update.MaxParticipants = &v
			}
			if flags.Changed("coordinator") {
				v, _ := flags.GetString("coordinator")
				if v != "" {
					coordinator, err := resolveMember(doc, v)
					if err != nil {
						return err
					}
					v = coordinator.ID
				}
				update.Coordinator = &v
			}
			if flags.Changed("description") {
				v, _ := flags.GetString("description")
				update.Description = &v
			}

			updated, err := services.UpdateTask(app.Ctx, app.Repo, app.Logger, task.ID, update)
			if err != nil {
				return err
			}

			app.Notifier.Notify(notify.Success, fmt.Sprintf("Updated %s", updated.DisplayName()))
			return nil
		},
	}

	cmd.Flags().String("type", "", "New task type")
	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("date", "", "New date as YYYY-MM-DD")
	cmd.Flags().Int("max", 0, "New maximum participants")
	cmd.Flags().String("coordinator", "", "New coordinating member")
	cmd.Flags().String("description", "", "New description")

	return cmd
}

// DeleteTaskCmd creates the deleteTask command
func DeleteTaskCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteTask <task>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}
			task, err := resolveTask(doc, args[0])
			if err != nil {
				return err
			}

			prompt := fmt.Sprintf("Delete %s", task.DisplayName())
			if task.Date != "" {
				prompt += " on " + task.Date
			}
			if !app.Confirmer.Confirm(prompt + "?") {
				app.Notifier.Notify(notify.Info, "Nothing deleted")
				return nil
			}

			if err := services.DeleteTask(app.Ctx, app.Repo, app.Logger, task.ID); err != nil {
				return err
			}

			app.Notifier.Notify(notify.Success, fmt.Sprintf("Deleted %s", task.DisplayName()))
			return nil
		},
	}
}

// CompleteTaskCmd creates the completeTask command
func CompleteTaskCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completeTask <task>",
		Short: "Mark a task as done (--undo reopens it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			undo, _ := cmd.Flags().GetBool("undo")

			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}
			task, err := resolveTask(doc, args[0])
			if err != nil {
				return err
			}

			if err := services.SetTaskCompleted(app.Ctx, app.Repo, app.Logger, task.ID, !undo); err != nil {
				return err
			}

			if undo {
				app.Notifier.Notify(notify.Success, fmt.Sprintf("Reopened %s", task.DisplayName()))
			} else {
				app.Notifier.Notify(notify.Success, fmt.Sprintf("Completed %s", task.DisplayName()))
			}
			return nil
		},
	}

	cmd.Flags().Bool("undo", false, "Reopen a completed task")

	return cmd
}
