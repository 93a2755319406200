package notify

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\033[0m"
	ansiBlue   = "\033[34m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
)

var (
	_ Notifier  = (*Console)(nil)
	_ Confirmer = (*Console)(nil)
)

// Console prints toasts as single lines and reads confirmations from a reader
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	in     *bufio.Reader
	colors bool
	// AssumeYes answers every confirmation with yes, e.g. for --yes
	AssumeYes bool
}

// NewConsole writes to out and reads answers from in. Colors are used when out is a terminal.
func NewConsole(out io.Writer, in io.Reader) *Console {
	colors := false
	if f, ok := out.(*os.File); ok {
		colors = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Console{
		out:    out,
		in:     bufio.NewReader(in),
		colors: colors,
	}
}

// Notify prints the message with a symbol for its severity
func (c *Console) Notify(severity Severity, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	symbol, color := decoration(severity)
	if c.colors {
		fmt.Fprintf(c.out, "%s%s%s %s\n", color, symbol, ansiReset, message)
		return
	}
	fmt.Fprintf(c.out, "%s %s\n", symbol, message)
}

// Confirm asks prompt and reports whether the answer starts with y or j.
// End of input counts as no.
func (c *Console) Confirm(prompt string) bool {
	if c.AssumeYes {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return strings.HasPrefix(answer, "y") || strings.HasPrefix(answer, "j")
}

func decoration(severity Severity) (string, string) {
	switch severity {
	case Success:
		return "✓", ansiGreen
	case Warning:
		return "⚠", ansiYellow
	case Error:
		return "✗", ansiRed
	}
	return "ℹ", ansiBlue
}
