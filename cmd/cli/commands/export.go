package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/core/model"
	"github.com/jakechorley/club-duties/pkg/core/services"
	"github.com/jakechorley/club-duties/pkg/exchange"
	"github.com/jakechorley/club-duties/pkg/notify"
)

const defaultCalendarPrefix = "duty"

// ExportCmd creates the export command
func ExportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <members|tasks|mailing-list|bar-duty|all>",
		Short: "Write CSV reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir, _ := cmd.Flags().GetString("out")

			var reports []exchange.Report
			if args[0] == "all" {
				reports = exchange.AllReports()
			} else {
				report, err := exchange.ParseReport(args[0])
				if err != nil {
					return err
				}
				reports = []exchange.Report{report}
			}

			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}

			today := time.Now().Format(model.DateLayout)
			for _, report := range reports {
				rows, err := exchange.BuildReport(report, doc, app.Rates())
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, exchange.ReportFileName(report, today))
				if err := writeFile(path, func(f *os.File) error { return exchange.WriteCSV(f, rows) }); err != nil {
					return err
				}
				app.Logger.Debug("Report written", zap.String("report", string(report)), zap.String("path", path))
				app.Notifier.Notify(notify.Success, fmt.Sprintf("Wrote %s (%d rows)", path, len(rows)-1))
			}
			return nil
		},
	}

	cmd.Flags().String("out", ".", "Output directory")

	return cmd
}

// BackupCmd creates the backup command
func BackupCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write the whole club document to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				path = fmt.Sprintf("club-backup-%s.json", time.Now().Format(model.DateLayout))
			}

			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}
			data, err := exchange.EncodeBackup(doc)
			if err != nil {
				return err
			}
			if err := writeFile(path, func(f *os.File) error {
				_, err := f.Write(data)
				return err
			}); err != nil {
				return err
			}

			app.Notifier.Notify(notify.Success, fmt.Sprintf("Backed up %d members and %d tasks to %s", len(doc.Members), len(doc.Tasks), path))
			return nil
		},
	}

	cmd.Flags().String("file", "", "Backup file (defaults to club-backup-<date>.json)")

	return cmd
}

// RestoreCmd creates the restore command
func RestoreCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace all data with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read backup: %w", err)
			}
			// Reject a broken file before asking
			if _, err := exchange.DecodeBackup(data); err != nil {
				return err
			}

			if !app.Confirmer.Confirm("Replace all members and tasks with " + args[0] + "?") {
				app.Notifier.Notify(notify.Info, "Nothing restored")
				return nil
			}

			doc, err := services.RestoreBackup(app.Ctx, app.Repo, app.Logger, data)
			if err != nil {
				return err
			}

			app.Notifier.Notify(notify.Success, fmt.Sprintf("Restored %d members and %d tasks", len(doc.Members), len(doc.Tasks)))
			return nil
		},
	}
}

// CalendarCmd creates the calendar command
func CalendarCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar [task]",
		Short: "Write an iCalendar file for one task, or for every open task",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir, _ := cmd.Flags().GetString("out")

			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}

			prefix := app.Cfg.Calendar.FilePrefix
			if prefix == "" {
				prefix = defaultCalendarPrefix
			}

			var tasks []model.Task
			var name string
			if len(args) == 1 {
				task, err := resolveTask(doc, args[0])
				if err != nil {
					return err
				}
				tasks = []model.Task{*task}
				name = exchange.CalendarFileName(prefix, *task)
			} else {
				tasks = services.FilterTasks(doc, services.TaskStatusOpen, "")
				if len(tasks) == 0 {
					app.Notifier.Notify(notify.Info, "No open tasks to export")
					return nil
				}
				name = fmt.Sprintf("%s-all-%s.ics", prefix, time.Now().Format(model.DateLayout))
			}

			path := filepath.Join(outDir, name)
			opts := app.Cfg.CalendarOptions(time.Now())
			if err := writeFile(path, func(f *os.File) error { return exchange.WriteCalendar(f, tasks, opts) }); err != nil {
				return err
			}

			app.Notifier.Notify(notify.Success, fmt.Sprintf("Wrote %s (%d events)", path, len(tasks)))
			return nil
		},
	}

	cmd.Flags().String("out", ".", "Output directory")

	return cmd
}

// writeFile creates path, creating its directory, and closes it after write
func writeFile(path string, write func(f *os.File) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
