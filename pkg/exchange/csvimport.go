// Package exchange converts the club document to and from the file formats
// used outside the tool: member lists, CSV reports, JSON backups and calendars.
package exchange

import (
	"regexp"
	"slices"
	"strings"
)

// Header synonyms per logical field, compared after lower-casing and removing whitespace
var (
	nameHeaders  = []string{"naam", "name", "voornaam", "volledigenaam", "fullname"}
	emailHeaders = []string{"email", "e-mail", "emailadres", "mail"}
	phoneHeaders = []string{"telefoon", "tel", "phone", "mobiel", "gsm", "mobile"}
)

var (
	lineBreak  = regexp.MustCompile(`\r?\n`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Candidate is a member read from an import source, not yet deduplicated
type Candidate struct {
	Name  string
	Email string
	Phone string
}

// ParseMemberCSV reads members from delimited text. The delimiter is ';' when
// the header contains one and ',' otherwise. Both '"' and '\'' quote fields.
func ParseMemberCSV(text string) ([]Candidate, error) {
	// Spreadsheet tools, and WriteCSV, start the file with a byte order mark
	text = strings.TrimPrefix(text, byteOrderMark)

	var lines []string
	for _, line := range lineBreak.Split(strings.TrimSpace(text), -1) {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, &ImportFormatError{Reason: "expected a header row and at least one member row"}
	}

	sep := ','
	if strings.ContainsRune(lines[0], ';') {
		sep = ';'
	}

	rows := make([][]string, 0, len(lines))
	// The header is split without quote handling
	rows = append(rows, strings.Split(lines[0], string(sep)))
	for _, line := range lines[1:] {
		rows = append(rows, splitRecord(line, sep))
	}
	return MapMemberRows(rows), nil
}

// splitRecord splits one line on sep. A quote character of either kind toggles
// quoting and is dropped; separators inside quotes are kept.
func splitRecord(line string, sep rune) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false
	for _, c := range line {
		switch {
		case c == '"' || c == '\'':
			inQuotes = !inQuotes
		case c == sep && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(c)
		}
	}
	return append(fields, current.String())
}

// MapMemberRows turns a header row plus data rows into candidates. The name
// column falls back to the first column; email and phone are optional.
// Rows without a name are skipped.
func MapMemberRows(rows [][]string) []Candidate {
	if len(rows) == 0 {
		return nil
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = normalizeHeader(cell)
	}
	nameCol := findColumn(header, nameHeaders)
	if nameCol < 0 {
		nameCol = 0
	}
	emailCol := findColumn(header, emailHeaders)
	phoneCol := findColumn(header, phoneHeaders)

	var candidates []Candidate
	for _, row := range rows[1:] {
		name := cell(row, nameCol)
		if name == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Name:  name,
			Email: cell(row, emailCol),
			Phone: cell(row, phoneCol),
		})
	}
	return candidates
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = trimQuotes(h)
	return whitespace.ReplaceAllString(h, "")
}

func findColumn(header []string, synonyms []string) int {
	return slices.IndexFunc(header, func(h string) bool {
		return slices.Contains(synonyms, h)
	})
}

// cell returns the trimmed value at col, or "" when the column is absent
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return trimQuotes(strings.TrimSpace(row[col]))
}

// trimQuotes strips one leading and one trailing quote character
func trimQuotes(s string) string {
	if s != "" && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if s != "" && (s[len(s)-1] == '"' || s[len(s)-1] == '\'') {
		s = s[:len(s)-1]
	}
	return s
}
