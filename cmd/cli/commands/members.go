package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/core/services"
	"github.com/jakechorley/club-duties/pkg/exchange"
	"github.com/jakechorley/club-duties/pkg/notify"
)

// ListMembersCmd creates the listMembers command
func ListMembersCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listMembers [query]",
		Short: "List members with their duty status, optionally filtered by name or email",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var query string
			if len(args) > 0 {
				query = args[0]
			}
			sortBy, _ := cmd.Flags().GetString("sort")
			if sortBy != string(services.SortByName) && sortBy != string(services.SortByStatus) {
				return fmt.Errorf("sort must be %q or %q", services.SortByName, services.SortByStatus)
			}

			doc, err := app.Repo.Load(app.Ctx)
			if err != nil {
				return err
			}

			entries := services.SearchMembers(doc, app.Rates(), query, services.MemberSort(sortBy))
			if len(entries) == 0 {
				fmt.Fprintln(app.Out, "No members found.")
				return nil
			}

			fmt.Fprintf(app.Out, "\n%d of %d members:\n\n", len(entries), len(doc.Members))
			return renderMembers(app.Out, entries)
		},
	}

	cmd.Flags().String("sort", string(services.SortByName), "Sort by name or status")

	return cmd
}

// AddMemberCmd creates the addMember command
func AddMemberCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addMember <name>",
		Short: "Add a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			phone, _ := cmd.Flags().GetString("phone")
			paid, _ := cmd.Flags().GetBool("paid")

			member, err := services.CreateMember(app.Ctx, app.Repo, app.Logger, services.MemberInput{
				Name:    args[0],
				Email:   email,
				Phone:   phone,
				HasPaid: paid,
			})
			if err != nil {
				return err
			}

			app.Notifier.Notify(notify.Success, fmt.Sprintf("Added %s (%s)", member.Name, member.ID))
			return nil
		},
	}

	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("phone", "", "Phone number")
	cmd.Flags().Bool("paid", false, "Member paid the participation fee")

	return cmd
}

// UpdateMemberCmd creates the updateMember command. Only flags that are given change.
func UpdateMemberCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "updateMember <member>",
		Short: "Change a member's details, fee or paid out bar duties",
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

			var update services.MemberUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				v, _ := flags.GetString("name")
				update.Name = &v
			}
			if flags.Changed("email") {
				v, _ := flags.GetString("email")
				update.Email = &v
			}
			if flags.Changed("phone") {
				v, _ := flags.GetString("phone")
				update.Phone = &v
			}
			if flags.Changed("paid") {
				v, _ := flags.GetBool("paid")
				update.HasPaid = &v
			}
			if flags.Changed("paid-out") {
				v, _ := flags.GetInt("paid-out")
				update.PaidOutBarDuties = &v
			}

			updated, err := services.UpdateMember(app.Ctx, app.Repo, app.Logger, member.ID, update)
			if err != nil {
				return err
			}

			app.Notifier.Notify(notify.Success, fmt.Sprintf("Updated %s", updated.Name))
			return nil
		},
	}

	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("email", "", "New email address (empty to clear)")
	cmd.Flags().String("phone", "", "New phone number (empty to clear)")
	cmd.Flags().Bool("paid", false, "Member paid the participation fee")
	cmd.Flags().Int("paid-out", 0, "Number of extra bar duties already paid out")

	return cmd
}

// DeleteMemberCmd creates the deleteMember command
func DeleteMemberCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteMember <member>",
		Short: "Delete a member and remove them from every task",
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

			if !app.Confirmer.Confirm(fmt.Sprintf("Delete %s and remove them from all tasks?", member.Name)) {
				app.Notifier.Notify(notify.Info, "Nothing deleted")
				return nil
			}

			if err := services.DeleteMember(app.Ctx, app.Repo, app.Logger, member.ID); err != nil {
				return err
			}

			app.Notifier.Notify(notify.Success, fmt.Sprintf("Deleted %s", member.Name))
			return nil
		},
	}
}

// ImportMembersCmd creates the importMembers command
func ImportMembersCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "importMembers [file.csv]",
		Short: "Import members from a CSV file or the configured member sheet",
		Long: `Import members from a comma or semicolon separated file with a header row.
Columns are matched by name (naam/name, email/e-mail, telefoon/phone, ...).
With --sheet the rows are read from the Google Sheet configured as memberSheetID.
Members that already exist (same name, and same email when one is given) are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromSheet, _ := cmd.Flags().GetBool("sheet")

			var result *services.ImportResult
			switch {
			case fromSheet:
				if app.Cfg.MemberSheetID == "" {
					return fmt.Errorf("memberSheetID is not configured")
				}
				sheets, err := app.SheetsClient()
				if err != nil {
					return err
				}
				result, err = services.ImportMembersFromSheet(app.Ctx, app.Repo, sheets, app.Logger, app.Cfg.MemberSheetID, app.Cfg.MemberSheetTab)
				if err != nil {
					return err
				}

			case len(args) == 1:
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", args[0], err)
				}
				candidates, err := exchange.ParseMemberCSV(string(data))
				if err != nil {
					return err
				}
				app.Logger.Debug("Parsed member file", zap.String("file", args[0]), zap.Int("rows", len(candidates)))
				result, err = services.ImportMembers(app.Ctx, app.Repo, app.Logger, candidates)
				if err != nil {
					return err
				}

			default:
				return fmt.Errorf("give a CSV file or --sheet")
			}

			app.Metrics.ObserveImport(result)

			if len(result.Added) > 0 {
				fmt.Fprintf(app.Out, "\nAdded %d members:\n", len(result.Added))
				for _, m := range result.Added {
					fmt.Fprintf(app.Out, "  ✓ %s\n", m.Name)
				}
			}
			if len(result.Skipped) > 0 {
				fmt.Fprintf(app.Out, "\nSkipped %d existing members:\n", len(result.Skipped))
				for _, c := range result.Skipped {
					fmt.Fprintf(app.Out, "  - %s\n", c.Name)
				}
			}
			fmt.Fprintln(app.Out)

			app.Notifier.Notify(notify.Success, fmt.Sprintf("%d imported, %d skipped", len(result.Added), len(result.Skipped)))
			return nil
		},
	}

	cmd.Flags().Bool("sheet", false, "Read members from the configured Google Sheet")

	return cmd
}
