package exchange

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

const (
	icsDate      = "20060102"
	icsTimestamp = "20060102T150405Z"
	// Content lines longer than this many octets are folded
	icsLineLimit = 75
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// CalendarOptions controls the generated calendar
type CalendarOptions struct {
	ProdID        string
	Location      string
	UIDDomain     string
	SummaryPrefix string
	// Description is the first line of every event description
	Description string
	// Now is used for DTSTAMP and to schedule undated tasks tomorrow
	Now time.Time
}

// WriteCalendar writes an iCalendar file with one all-day event per task. The
// event covers [date, date+1). Undated tasks are placed on the day after
// opts.Now. Event UIDs are derived from the task ID so calendar clients
// recognise re-imported events.
func WriteCalendar(w io.Writer, tasks []model.Task, opts CalendarOptions) error {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + opts.ProdID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	for _, task := range tasks {
		lines = append(lines, eventLines(task, opts, now)...)
	}
	lines = append(lines, "END:VCALENDAR")

	for _, line := range lines {
		if _, err := io.WriteString(w, foldLine(line)+"\r\n"); err != nil {
			return fmt.Errorf("failed to write calendar: %w", err)
		}
	}
	return nil
}

func eventLines(task model.Task, opts CalendarOptions, now time.Time) []string {
	start, ok := task.ParsedDate()
	if !ok {
		tomorrow := now.AddDate(0, 0, 1)
		start = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC)
	}
	end := start.AddDate(0, 0, 1)

	name := task.DisplayName()
	description := []string{}
	if opts.Description != "" {
		description = append(description, opts.Description)
	}
	description = append(description, "Task: "+name, "Type: "+task.Type.Info().Label)
	if task.Description != "" {
		description = append(description, task.Description)
	}

	lines := []string{
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:%s@%s", task.ID, opts.UIDDomain),
		"DTSTAMP:" + now.UTC().Format(icsTimestamp),
		"DTSTART;VALUE=DATE:" + start.Format(icsDate),
		"DTEND;VALUE=DATE:" + end.Format(icsDate),
		"SUMMARY:" + escapeText(opts.SummaryPrefix+name),
		"DESCRIPTION:" + escapeText(strings.Join(description, "\n")),
	}
	if opts.Location != "" {
		lines = append(lines, "LOCATION:"+escapeText(opts.Location))
	}
	return append(lines, "END:VEVENT")
}

// escapeText escapes a TEXT value
func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\r\n", `\n`,
		"\n", `\n`,
	)
	return r.Replace(s)
}

// foldLine splits a content line into chunks of at most icsLineLimit octets,
// continuation lines starting with a space. Multi-byte characters are not split.
func foldLine(line string) string {
	if len(line) <= icsLineLimit {
		return line
	}
	var b strings.Builder
	width := 0
	limit := icsLineLimit
	for _, r := range line {
		size := len(string(r))
		if width+size > limit {
			b.WriteString("\r\n ")
			width = 0
			// The leading space counts towards the limit
			limit = icsLineLimit - 1
		}
		b.WriteRune(r)
		width += size
	}
	return b.String()
}

// CalendarFileName returns a file name for a single-task calendar export
func CalendarFileName(prefix string, task model.Task) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(task.DisplayName()), "-"), "-")
	date := task.Date
	if date == "" {
		date = "undated"
	}
	return fmt.Sprintf("%s-%s-%s.ics", prefix, slug, date)
}
