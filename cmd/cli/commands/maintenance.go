package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/club-duties/pkg/core/model"
	"github.com/jakechorley/club-duties/pkg/core/services"
	"github.com/jakechorley/club-duties/pkg/notify"
)

// PlanTasksCmd creates the planTasks command
func PlanTasksCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "planTasks <schedule> <from> <until>",
		Short: "Create tasks for a configured schedule between two dates (inclusive)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule, ok := app.Cfg.FindSchedule(args[0])
			if !ok {
				return fmt.Errorf("no schedule named %q in the configuration", args[0])
			}

			from, err := time.ParseInLocation(model.DateLayout, args[1], time.Local)
			if err != nil {
				return fmt.Errorf("invalid start date %q: %w", args[1], err)
			}
			until, err := time.ParseInLocation(model.DateLayout, args[2], time.Local)
			if err != nil {
				return fmt.Errorf("invalid end date %q: %w", args[2], err)
			}

			created, err := services.PlanRecurringTasks(app.Ctx, app.Repo, app.Logger, schedule, from, until)
			if err != nil {
				return err
			}

			if len(created) == 0 {
				app.Notifier.Notify(notify.Info, "All occurrences are already planned")
				return nil
			}
			for _, t := range created {
				fmt.Fprintf(app.Out, "  %s  %s  %s\n", t.Date, t.DisplayName(), t.ID)
			}
			app.Notifier.Notify(notify.Success, fmt.Sprintf("Planned %d tasks from %s", len(created), schedule.Name))
			return nil
		},
	}
}

// LoadDemoDataCmd creates the loadDemoData command
func LoadDemoDataCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "loadDemoData",
		Short: "Replace all data with a demo season",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}

			if len(doc.Members) > 0 || len(doc.Tasks) > 0 {
				prompt := fmt.Sprintf("Replace %d members and %d tasks with demo data?", len(doc.Members), len(doc.Tasks))
				if !app.Confirmer.Confirm(prompt) {
					app.Notifier.Notify(notify.Info, "Nothing loaded")
					return nil
				}
			}

			loaded, err := services.LoadSampleData(app.Ctx, app.Repo, app.Logger)
			if err != nil {
				return err
			}

			app.Notifier.Notify(notify.Success, fmt.Sprintf("Loaded %d members and %d tasks", len(loaded.Members), len(loaded.Tasks)))
			return nil
		},
	}
}
