package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ledgerfile/ledgerfile/cli"
)

func runExport(t *testing.T, src string) (stdout, stderr string, exitCode int, runErr error) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ledger")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	var cliStruct struct {
		cli.Commands
	}
	outBuf, errBuf := &bytes.Buffer{}, &bytes.Buffer{}
	parser, err := kong.New(&cliStruct, kong.Writers(outBuf, errBuf), kong.Exit(func(code int) { exitCode = code }), kong.Bind(&cliStruct.Globals))
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	ctx, err := parser.Parse([]string{"export", path})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	runErr = ctx.Run()
	return outBuf.String(), errBuf.String(), exitCode, runErr
}

func TestExportRendersJournalAsCanonicalDirectives(t *testing.T) {
	src := "1970-01-01 open Assets:Cash USD\n" +
		"1970-01-01 open Expenses:Food USD\n" +
		"2023-01-02 * \"coffee\"\n" +
		"  Assets:Cash -3.50 USD\n" +
		"  Expenses:Food\n"

	stdout, _, _, err := runExport(t, src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(stdout, "open Assets:Cash") {
		t.Fatalf("expected an open directive in output, got: %q", stdout)
	}
	if !strings.Contains(stdout, "coffee") {
		t.Fatalf("expected the transaction narration in output, got: %q", stdout)
	}
	if !strings.Contains(stdout, "Expenses:Food 3.5 USD") && !strings.Contains(stdout, "Expenses:Food 3.50 USD") {
		t.Fatalf("expected the elided posting's inferred amount to be printed, got: %q", stdout)
	}
}

func TestExportExitsNonZeroOnEvaluatorErrors(t *testing.T) {
	src := "2023-01-02 * \"coffee\"\n" +
		"  Assets:Cash -3.50 USD\n" +
		"  Expenses:Food\n"

	_, stderr, code, _ := runExport(t, src)
	if code != cli.ExitEvaluatorErr {
		t.Fatalf("expected exit code %d, got %d", cli.ExitEvaluatorErr, code)
	}
	if !strings.Contains(stderr, "coffee") && stderr == "" {
		t.Fatalf("expected diagnostics about unopened accounts on stderr, got: %q", stderr)
	}
}
