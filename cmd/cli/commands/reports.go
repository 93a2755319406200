package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/club-duties/pkg/core/duties"
	"github.com/jakechorley/club-duties/pkg/core/services"
	"github.com/jakechorley/club-duties/pkg/notify"
)

// DashboardCmd creates the dashboard command
func DashboardCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show member counts, fee revenue and payouts owed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}

			renderDashboard(app.Out, duties.ComputeDashboardStats(doc, app.Rates()), duties.BuildBarDutyRoster(doc))
			return nil
		},
	}
}

// BarDutyCmd creates the barDuty command
func BarDutyCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "barDuty",
		Short: "Show the bar duty ledger and roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}

			roster := duties.BuildBarDutyRoster(doc)
			fmt.Fprintf(app.Out, "\nBar duties: %d planned, %d completed\n\n", roster.Planned, roster.Completed)

			ledger := duties.BarDutyLedger(doc, app.Rates())
			if len(ledger) == 0 {
				fmt.Fprintln(app.Out, "Nobody has done a bar duty yet.")
			} else if err := renderLedger(app.Out, ledger); err != nil {
				return err
			}

			if len(roster.Tasks) > 0 {
				fmt.Fprintln(app.Out)
				if err := renderTasks(app.Out, doc, roster.Tasks); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// ConfirmPayoutCmd creates the confirmPayout command
func ConfirmPayoutCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirmPayout <member>",
		Short: "Record that the amount owed to a member has been paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}
			member, err := resolveMember(doc, args[0])
			if err != nil {
				return err
			}

			result, err := services.ConfirmPayout(app.Ctx, app.Repo, app.Logger, app.Rates(), member.ID)
			if err != nil {
				return err
			}
			app.Metrics.ObservePayout(result)

			if !result.Paid {
				app.Notifier.Notify(notify.Info, fmt.Sprintf("Nothing is owed to %s", member.Name))
				return nil
			}
			app.Notifier.Notify(notify.Success, fmt.Sprintf("Paid EUR %d to %s", result.Amount, member.Name))
			return nil
		},
	}
}

// MailingListCmd creates the mailingList command
func MailingListCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mailingList",
		Short: "List members who have neither done a task nor paid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}

			members := duties.MailingList(doc, app.Rates())
			if len(members) == 0 {
				fmt.Fprintln(app.Out, "Everybody has done a task or paid.")
				return nil
			}

			tw := newTable(app.Out)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE")
			var emails []string
			for _, m := range members {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name, orDash(m.Email), orDash(m.Phone))
				if m.Email != "" {
					emails = append(emails, m.Email)
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if len(emails) > 0 {
				fmt.Fprintf(app.Out, "\nEmail addresses:\n%s\n", strings.Join(emails, "; "))
			}
			return nil
		},
	}
}

// SendRemindersCmd creates the sendReminders command
func SendRemindersCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sendReminders",
		Short: "Email a reminder to everyone on the mailing list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			var gmail services.GmailClient
			if !dryRun {
				client, err := app.GmailClient()
				if err != nil {
					return err
				}
				gmail = client
			}

			result, err := services.SendReminders(
				app.Ctx,
				app.Repo,
				gmail,
				app.Logger,
				app.Rates(),
				app.Cfg.ReminderTemplate(),
				app.Cfg.ClubName,
				dryRun,
			)
			if err != nil {
				return err
			}
			app.Metrics.ObserveReminders(result)

			verb := "Sent"
			if result.DryRun {
				verb = "Would send"
			}
			for _, r := range result.Sent {
				fmt.Fprintf(app.Out, "  %s  %s <%s>\n", verb, r.Name, r.Email)
			}
			for _, r := range result.NoEmail {
				fmt.Fprintf(app.Out, "  No email address for %s\n", r.Name)
			}
			for _, f := range result.Failed {
				fmt.Fprintf(app.Out, "  Failed %s <%s>: %s\n", f.Name, f.Email, f.Error)
			}

			summary := fmt.Sprintf("%s %d reminders", verb, len(result.Sent))
			switch {
			case len(result.Failed) > 0:
				app.Notifier.Notify(notify.Warning, fmt.Sprintf("%s, %d failed", summary, len(result.Failed)))
			case len(result.Sent) == 0:
				app.Notifier.Notify(notify.Info, "Nobody to remind")
			default:
				app.Notifier.Notify(notify.Success, summary)
			}
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Show who would be emailed without sending")

	return cmd
}
