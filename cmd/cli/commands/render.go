package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jakechorley/club-duties/pkg/core/duties"
	"github.com/jakechorley/club-duties/pkg/core/model"
	"github.com/jakechorley/club-duties/pkg/core/services"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderDashboard(w io.Writer, stats duties.DashboardStats, roster duties.BarDutyRoster) {
	fmt.Fprintf(w, "\nMembers:           %d\n", stats.Total)
	fmt.Fprintf(w, "  %-16s %d\n", duties.StatusTaskDone.Label()+":", stats.TaskDone)
	fmt.Fprintf(w, "  %-16s %d\n", duties.StatusPaid.Label()+":", stats.Paid)
	fmt.Fprintf(w, "  %-16s %d\n", duties.StatusNothingDone.Label()+":", stats.Nothing)
	fmt.Fprintf(w, "Fee revenue:       EUR %d\n", stats.Revenue)
	fmt.Fprintf(w, "Extra bar duties:  %d\n", stats.TotalExtraDuties)
	fmt.Fprintf(w, "Payouts owed:      EUR %d\n", stats.TotalOwed)
	fmt.Fprintf(w, "Bar duties:        %d planned, %d completed\n\n", roster.Planned, roster.Completed)
}

func renderMembers(w io.Writer, entries []duties.LedgerEntry) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tSTATUS\tBAR DUTIES\tOWED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\tEUR %d\n",
			e.Member.ID,
			e.Member.Name,
			orDash(e.Member.Email),
			orDash(e.Member.Phone),
			e.Status.Status.Label(),
			e.Status.BarDutyCount,
			e.Status.AmountOwed,
		)
	}
	return tw.Flush()
}

func renderTasks(w io.Writer, doc *model.Document, tasks []model.Task) error {
	names := doc.MemberNames()
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tTASK\tSLOTS\tCOORDINATOR\tDONE\tPARTICIPANTS")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\t%s\n",
			t.ID,
			orDash(t.Date),
			t.DisplayName(),
			len(t.Participants),
			duties.EffectiveCapacity(t),
			orDash(names[t.Coordinator]),
			yesNo(t.Completed),
			participantNames(names, t.Participants),
		)
	}
	return tw.Flush()
}

func participantNames(names map[string]string, ids []string) string {
	list := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			list = append(list, name)
		}
	}
	if len(list) == 0 {
		return "-"
	}
	return strings.Join(list, ", ")
}

func renderPlanning(w io.Writer, planning services.Planning) {
	fmt.Fprintf(w, "\n%d open places on %d tasks\n", planning.TotalOpenSlots, planning.TasksWithSpace)

	for _, group := range planning.Groups {
		heading := "No date yet"
		if group.Dated {
			heading = group.Day.Format("Monday 2 January 2006")
			switch {
			case group.Today:
				heading += " (today)"
			case group.Soon:
				heading += " (soon)"
			}
		}
		fmt.Fprintf(w, "\n%s\n", heading)

		for _, pt := range group.Tasks {
			state := fmt.Sprintf("%d of %d places free", pt.OpenSlots, pt.Capacity)
			if pt.Full {
				state = "full"
			}
			if pt.Task.Completed {
				state = "completed"
			}
			fmt.Fprintf(w, "  %s  [%s]  %s\n", pt.Task.DisplayName(), state, pt.Task.ID)
			if pt.Coordinator != nil {
				fmt.Fprintf(w, "      coordinator: %s\n", pt.Coordinator.Name)
			}
			for _, m := range pt.Participants {
				fmt.Fprintf(w, "      - %s\n", m.Name)
			}
			if pt.Task.Description != "" {
				fmt.Fprintf(w, "      %s\n", pt.Task.Description)
			}
		}
	}
	fmt.Fprintln(w)
}

func renderLedger(w io.Writer, ledger []duties.LedgerEntry) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tBAR DUTIES\tEXTRA\tPAID OUT\tOWED")
	for _, e := range ledger {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\tEUR %d\n",
			e.Member.ID,
			e.Member.Name,
			e.Status.BarDutyCount,
			e.Status.ExtraBarDuties,
			e.Member.PaidOutBarDuties,
			e.Status.AmountOwed,
		)
	}
	return tw.Flush()
}
