package exchange

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/jakechorley/club-duties/pkg/core/duties"
	"github.com/jakechorley/club-duties/pkg/core/model"
)

// byteOrderMark makes spreadsheet tools read the file as UTF-8
const byteOrderMark = "\uFEFF"

// Report identifies one of the CSV exports
type Report string

const (
	ReportMembers     Report = "members"
	ReportTasks       Report = "tasks"
	ReportMailingList Report = "mailing-list"
	ReportBarDuty     Report = "bar-duty"
)

// AllReports returns every report kind
func AllReports() []Report {
	return []Report{ReportMembers, ReportTasks, ReportMailingList, ReportBarDuty}
}

// ParseReport converts a report name to a Report
func ParseReport(name string) (Report, error) {
	for _, r := range AllReports() {
		if string(r) == name {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown report %q", name)
}

// BuildReport returns the rows, header first, of the given report
func BuildReport(report Report, doc *model.Document, rates duties.Rates) ([][]string, error) {
	switch report {
	case ReportMembers:
		return MembersReport(doc, rates), nil
	case ReportTasks:
		return TasksReport(doc), nil
	case ReportMailingList:
		return MailingListReport(doc, rates), nil
	case ReportBarDuty:
		return BarDutyReport(doc, rates), nil
	}
	return nil, fmt.Errorf("unknown report %q", report)
}

// ReportFileName returns the download name of a report for the given date
func ReportFileName(report Report, date string) string {
	return fmt.Sprintf("club-%s-%s.csv", report, date)
}

// WriteCSV writes rows as comma separated values preceded by a byte order mark.
// Fields containing a comma, quote or newline are quoted with internal quotes doubled.
func WriteCSV(w io.Writer, rows [][]string) error {
	if _, err := io.WriteString(w, byteOrderMark); err != nil {
		return fmt.Errorf("failed to write byte order mark: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// MembersReport lists every member with their derived status, sorted by name
func MembersReport(doc *model.Document, rates duties.Rates) [][]string {
	rows := [][]string{{
		"Name", "Email", "Phone", "Status", "Has paid", "Bar duties total",
		"Extra bar duties", "Paid out (EUR)", "Owed (EUR)",
	}}

	members := slices.Clone(doc.Members)
	duties.SortMembersByName(members)
	for _, m := range members {
		s := duties.MemberStatus(m, doc.Tasks, rates)
		rows = append(rows, []string{
			m.Name,
			m.Email,
			m.Phone,
			s.Status.Label(),
			yesNo(m.HasPaid),
			strconv.Itoa(s.BarDutyCount),
			strconv.Itoa(s.ExtraBarDuties),
			strconv.Itoa(m.PaidOutBarDuties * rates.BonusRate),
			strconv.Itoa(s.AmountOwed),
		})
	}
	return rows
}

// TasksReport lists every task sorted by date, participants resolved to names
func TasksReport(doc *model.Document) [][]string {
	rows := [][]string{{
		"Type", "Name", "Date", "Coordinator", "Participants", "Max participants", "Completed",
	}}

	names := doc.MemberNames()
	tasks := slices.Clone(doc.Tasks)
	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		return strings.Compare(a.Date, b.Date)
	})

	for _, t := range tasks {
		participants := make([]string, 0, len(t.Participants))
		for _, id := range t.Participants {
			if name, ok := names[id]; ok {
				participants = append(participants, name)
			} else {
				participants = append(participants, id)
			}
		}
		maxParticipants := ""
		if t.MaxParticipants != nil && *t.MaxParticipants > 0 {
			maxParticipants = strconv.Itoa(*t.MaxParticipants)
		}
		rows = append(rows, []string{
			t.Type.Info().Label,
			t.DisplayName(),
			t.Date,
			names[t.Coordinator],
			strings.Join(participants, "; "),
			maxParticipants,
			yesNo(t.Completed),
		})
	}
	return rows
}

// MailingListReport lists the members who still need to do a task or pay
func MailingListReport(doc *model.Document, rates duties.Rates) [][]string {
	rows := [][]string{{"Name", "Email", "Phone"}}
	for _, m := range duties.MailingList(doc, rates) {
		rows = append(rows, []string{m.Name, m.Email, m.Phone})
	}
	return rows
}

// BarDutyReport lists the bar-duty ledger with amounts owed and paid out
func BarDutyReport(doc *model.Document, rates duties.Rates) [][]string {
	rows := [][]string{{"Name", "Bar duties total", "Extra bar duties", "Owed (EUR)", "Paid out (EUR)"}}
	for _, entry := range duties.BarDutyLedger(doc, rates) {
		rows = append(rows, []string{
			entry.Member.Name,
			strconv.Itoa(entry.Status.BarDutyCount),
			strconv.Itoa(entry.Status.ExtraBarDuties),
			strconv.Itoa(entry.Status.AmountOwed),
			strconv.Itoa(entry.Member.PaidOutBarDuties * rates.BonusRate),
		})
	}
	return rows
}
