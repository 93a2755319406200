package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/club-duties/pkg/core/services"
	"github.com/jakechorley/club-duties/pkg/notify"
)

// SignupCmd creates the signup command
func SignupCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "signup <task> <member>",
		Short: "Sign a member up for a task if it has room",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}
			task, err := resolveTask(doc, args[0])
			if err != nil {
				return err
			}
			member, err := resolveMember(doc, args[1])
			if err != nil {
				return err
			}

			err = services.AddParticipant(app.Ctx, app.Repo, app.Logger, task.ID, member.ID)
			app.Metrics.ObserveSignup(err)
			if err != nil {
				return err
			}

			app.Notifier.Notify(notify.Success, fmt.Sprintf("%s signed up for %s", member.Name, task.DisplayName()))
			return nil
		},
	}
}

// WithdrawCmd creates the withdraw command
func WithdrawCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <task> <member>",
		Short: "Remove a member from a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}
			task, err := resolveTask(doc, args[0])
			if err != nil {
				return err
			}
			member, err := resolveMember(doc, args[1])
			if err != nil {
				return err
			}

			err = services.RemoveParticipant(app.Ctx, app.Repo, app.Logger, task.ID, member.ID)
			app.Metrics.ObserveWithdrawal(err)
			if err != nil {
				return err
			}

			app.Notifier.Notify(notify.Success, fmt.Sprintf("%s removed from %s", member.Name, task.DisplayName()))
			return nil
		},
	}
}

// PlanningCmd creates the planning command
func PlanningCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "planning",
		Short: "Show upcoming tasks grouped by date with free places",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			past, _ := cmd.Flags().GetBool("past")

			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}

			renderPlanning(app.Out, services.BuildPlanning(doc, time.Now(), past))
			return nil
		},
	}

	cmd.Flags().Bool("past", false, "Include tasks dated before today")

	return cmd
}

// SuggestCmd creates the suggest command
func SuggestCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <task> <query>",
		Short: "Suggest members to sign up for a task by name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}
			task, err := resolveTask(doc, args[0])
			if err != nil {
				return err
			}

			suggestions := services.SuggestMembers(doc, task.ID, args[1], limit)
			if len(suggestions) == 0 {
				fmt.Fprintln(app.Out, "No matching members.")
				return nil
			}
			for _, m := range suggestions {
				fmt.Fprintf(app.Out, "  %s  %s\n", m.ID, m.Name)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", services.DefaultSuggestionLimit, "Maximum number of suggestions")

	return cmd
}
