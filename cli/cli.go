// Package cli provides the kong command structure and shared terminal
// output helpers for the ledgerfile binary, grounded on the teacher's
// cli/cli.go (lipgloss-styled print helpers, huh confirm prompt) and
// cli/web.go (the serve command's create-file-if-missing flow).
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render(successSymbol), message)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render(errorSymbol), errorStyle.Render(message))
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, "%s %s\n", infoStyle.Render(infoSymbol), fmt.Sprintf(format, args...))
}

// promptYesNo prompts the user with a yes/no question, defaulting to false
// when stdin isn't a terminal (e.g. running under CI or a script).
func promptYesNo(question string) (bool, error) {
	if !isTerminal() {
		return false, nil
	}
	var confirm bool
	form := huh.NewConfirm().Title(question).WithButtonAlignment(lipgloss.Left).Value(&confirm)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	return confirm, nil
}

func isTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// Globals defines flags available to every command. Empty for now, kept as
// a distinct type (rather than folding its fields into Commands) because
// kong.Bind wires *Globals into every command's Run signature, matching the
// teacher's cli.Globals.
type Globals struct{}

// Commands is the root kong command struct for the ledgerfile binary.
type Commands struct {
	Globals

	Serve  ServeCmd  `cmd:"" help:"Run the watcher controller and the read/write HTTP API."`
	Export ExportCmd `cmd:"" help:"Dump the ledger snapshot as a normalized directive stream to stdout."`
}

// Exit codes per spec §6.
const (
	ExitSuccess       = 0
	ExitEvaluatorErr  = 1
	ExitIoErr         = 2
	ExitUsage         = 64
)

// Version and CommitSHA are set via ldflags at build time, matching the
// teacher's cmd/beancount/main.go convention.
var (
	Version   = ""
	CommitSHA = ""
)

// Fatalf prints an error and exits with code, the common tail of every
// command's error path.
func Fatalf(w io.Writer, code int, format string, args ...interface{}) {
	printError(w, fmt.Sprintf(format, args...))
	os.Exit(code)
}
