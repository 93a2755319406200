package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jakechorley/club-duties/pkg/notify"
)

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (open storage once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands against the same storage.
The session will keep running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(app.Out, "\nStarting interactive session...")
			fmt.Fprintln(app.Out, "Type 'help' for available commands, 'exit' or 'quit' to leave")

			// Get all sibling commands (excluding interactive itself)
			rootCmd := cmd.Parent()
			commands := make(map[string]*cobra.Command)
			for _, subCmd := range rootCmd.Commands() {
				switch subCmd.Name() {
				case "interactive", "completion", "help", "watch":
					continue
				}
				commands[subCmd.Name()] = subCmd
			}

			in := app.In
			if in == nil {
				in = bufio.NewReader(cmd.InOrStdin())
			}

			for {
				fmt.Fprint(app.Out, "> ")

				line, err := in.ReadString('\n')
				if errors.Is(err, io.EOF) && line == "" {
					fmt.Fprintln(app.Out)
					return nil
				}
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("error reading input: %w", err)
				}

				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}

				// Parse command (respecting quotes)
				parts, err := parseCommandLine(line)
				if err != nil {
					app.Notifier.Notify(notify.Error, fmt.Sprintf("Error parsing command: %v", err))
					continue
				}
				if len(parts) == 0 {
					continue
				}
				cmdName := parts[0]
				cmdArgs := parts[1:]

				if cmdName == "exit" || cmdName == "quit" {
					fmt.Fprintln(app.Out, "Goodbye!")
					return nil
				}

				if cmdName == "help" {
					printInteractiveHelp(app.Out, commands)
					continue
				}

				targetCmd, exists := commands[cmdName]
				if !exists {
					app.Notifier.Notify(notify.Error, fmt.Sprintf("Unknown command: %s (type 'help' for available commands)", cmdName))
					continue
				}

				runInteractive(app, targetCmd, cmdArgs)
				app.Finish()

				if app.Ctx.Err() != nil {
					return nil
				}
			}
		},
	}

	return cmd
}

// runInteractive executes the command's RunE directly, bypassing Execute() so
// the persistent pre-run does not open storage again
func runInteractive(app *AppContext, targetCmd *cobra.Command, cmdArgs []string) {
	targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		flag.Value.Set(flag.DefValue)
	})

	if err := targetCmd.ParseFlags(cmdArgs); err != nil {
		app.Notifier.Notify(notify.Error, fmt.Sprintf("Error parsing flags: %v", err))
		return
	}
	cmdArgs = targetCmd.Flags().Args()

	if targetCmd.Args != nil {
		if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
			app.Notifier.Notify(notify.Error, err.Error())
			return
		}
	}

	if targetCmd.RunE != nil {
		if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
			if app.Metrics != nil {
				app.Metrics.ObserveError(err)
			}
			notify.Report(app.Notifier, err)
		}
	} else if targetCmd.Run != nil {
		targetCmd.Run(targetCmd, cmdArgs)
	}
}

func printInteractiveHelp(w io.Writer, commands map[string]*cobra.Command) {
	fmt.Fprintln(w, "\nAvailable commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(w, "  %-40s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Fprintln(w, "\n  help                                     Show this help message")
	fmt.Fprintln(w, "  exit, quit                               Exit the interactive session")
}

// parseCommandLine splits a command line into arguments, respecting quoted strings.
// Supports both single and double quotes; "" is an empty argument.
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var inQuote rune // 0 if not in quote, '"' or '\'' if in quote
	quoted := false

	for _, r := range line {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = r
			quoted = true
		case unicode.IsSpace(r):
			if current.Len() > 0 || quoted {
				args = append(args, current.String())
				current.Reset()
				quoted = false
			}
		default:
			current.WriteRune(r)
		}
	}

	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", inQuote)
	}
	if current.Len() > 0 || quoted {
		args = append(args, current.String())
	}

	return args, nil
}
