package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/cmd/cli/commands"
	"github.com/jakechorley/club-duties/internal/config"
	"github.com/jakechorley/club-duties/pkg/metrics"
	"github.com/jakechorley/club-duties/pkg/notify"
	"github.com/jakechorley/club-duties/pkg/utils/logging"
)

var (
	env       string
	verbose   bool
	assumeYes bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in := bufio.NewReader(os.Stdin)
	console := notify.NewConsole(os.Stderr, in)
	app := &commands.AppContext{
		Notifier:  console,
		Confirmer: console,
		Out:       os.Stdout,
		In:        in,
		Ctx:       ctx,
	}

	rootCmd := &cobra.Command{
		Use:           "club-duties",
		Short:         "Club duties - track volunteer tasks, fees and bar duty payouts",
		Long:          `A CLI tool for managing club members, volunteer tasks and sign-ups, bar duty payouts and member reports.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			console.AssumeYes = assumeYes
			return initApp(app)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs on the console")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to every confirmation")
	rootCmd.MarkPersistentFlagRequired("env")

	// Members
	rootCmd.AddCommand(commands.ListMembersCmd(app))
	rootCmd.AddCommand(commands.AddMemberCmd(app))
	rootCmd.AddCommand(commands.UpdateMemberCmd(app))
	rootCmd.AddCommand(commands.DeleteMemberCmd(app))
	rootCmd.AddCommand(commands.ImportMembersCmd(app))

	// Tasks and sign-ups
	rootCmd.AddCommand(commands.ListTasksCmd(app))
	rootCmd.AddCommand(commands.AddTaskCmd(app))
	rootCmd.AddCommand(commands.UpdateTaskCmd(app))
	rootCmd.AddCommand(commands.DeleteTaskCmd(app))
	rootCmd.AddCommand(commands.CompleteTaskCmd(app))
	rootCmd.AddCommand(commands.PlanTasksCmd(app))
	rootCmd.AddCommand(commands.SignupCmd(app))
	rootCmd.AddCommand(commands.WithdrawCmd(app))
	rootCmd.AddCommand(commands.PlanningCmd(app))
	rootCmd.AddCommand(commands.SuggestCmd(app))
	rootCmd.AddCommand(commands.WatchCmd(app))

	// Reports
	rootCmd.AddCommand(commands.DashboardCmd(app))
	rootCmd.AddCommand(commands.BarDutyCmd(app))
	rootCmd.AddCommand(commands.ConfirmPayoutCmd(app))
	rootCmd.AddCommand(commands.MailingListCmd(app))
	rootCmd.AddCommand(commands.SendRemindersCmd(app))

	// Data exchange
	rootCmd.AddCommand(commands.ExportCmd(app))
	rootCmd.AddCommand(commands.CalendarCmd(app))
	rootCmd.AddCommand(commands.BackupCmd(app))
	rootCmd.AddCommand(commands.RestoreCmd(app))
	rootCmd.AddCommand(commands.LoadDemoDataCmd(app))

	rootCmd.AddCommand(commands.InteractiveCmd(app))

	err := rootCmd.Execute()
	if err != nil {
		if app.Metrics != nil {
			app.Metrics.ObserveError(err)
		}
		notify.Report(app.Notifier, err)
	}

	// Post-run hooks are skipped when a command fails, so clean up here
	app.Finish()
	app.Close()
	if app.Logger != nil {
		app.Logger.Sync()
	}

	if err != nil {
		os.Exit(1)
	}
}

// initApp loads config, then sets up logger, metrics and storage
func initApp(app *commands.AppContext) error {
	var err error
	app.Env = env

	// The log directory is configured, so config comes first
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.Logger, err = logging.InitLogger(env, app.Cfg.LogDir, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application",
		zap.String("environment", env),
		zap.String("club", app.Cfg.ClubName),
		zap.String("backend", app.Cfg.Storage.Backend))

	app.Metrics = metrics.New()

	app.Repo, err = commands.OpenRepository(app.Ctx, app.Cfg.Storage, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	app.Logger.Info("Storage opened successfully")

	return nil
}
