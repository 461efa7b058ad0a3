package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/alecthomas/kong"

	"github.com/ledgerfile/ledgerfile/ast"
	"github.com/ledgerfile/ledgerfile/errorfmt"
	"github.com/ledgerfile/ledgerfile/ledger"
	"github.com/ledgerfile/ledgerfile/loader"
	"github.com/ledgerfile/ledgerfile/mutation"
)

// ExportCmd dumps the ledger's evaluated journal as a normalized directive
// stream to stdout, per spec §6's `export <ledger_path>`. Grounded on the
// teacher's cli/check.go (load, evaluate, report diagnostics, set an exit
// code), generalized from "report only" to "also print a canonical dump"
// using the mutation package's renderers.
type ExportCmd struct {
	LedgerPath  string `help:"Path to the root ledger file." arg:""`
	IncludeOpen bool   `help:"Include open directives for every known account." default:"true"`
}

func (cmd *ExportCmd) Run(ctx *kong.Context, globals *Globals) error {
	ldr := loader.New()
	result, err := ldr.Load(context.Background(), cmd.LedgerPath)
	if err != nil {
		printError(ctx.Stderr, fmt.Sprintf("failed to load %s: %s", cmd.LedgerPath, err))
		ctx.Exit(ExitIoErr)
		return err
	}

	snap := ledger.New().Evaluate(result.AST)
	snap.Diagnostics = append(append([]errorfmt.Diagnostic(nil), result.Diagnostics...), snap.Diagnostics...)

	for _, d := range snap.Diagnostics {
		if d.Severity == errorfmt.SeverityError {
			printError(ctx.Stderr, d.Error())
		} else {
			printInfof(ctx.Stderr, "%s", d.Error())
		}
	}
	if snap.HasErrors() {
		msg := fmt.Sprintf("%d error(s) found, aborting export", countErrors(snap.Diagnostics))
		printError(ctx.Stderr, msg)
		ctx.Exit(ExitEvaluatorErr)
		return fmt.Errorf("%s", msg)
	}

	if cmd.IncludeOpen {
		accounts := snap.Accounts.All()
		names := make([]ast.Account, 0, len(accounts))
		for name := range accounts {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
		for _, name := range names {
			st := accounts[name]
			if st.Status == ledger.StatusUnknown {
				continue
			}
			fmt.Fprintf(ctx.Stdout, "%s open %s\n", st.OpenDate.String(), st.Account)
		}
		fmt.Fprintln(ctx.Stdout)
	}

	for _, txn := range snap.Journal {
		fmt.Fprint(ctx.Stdout, mutation.RenderTransaction(txn))
		fmt.Fprintln(ctx.Stdout)
	}

	printSuccess(ctx.Stderr, fmt.Sprintf("exported %d transaction(s)", len(snap.Journal)))
	return nil
}

func countErrors(diags []errorfmt.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == errorfmt.SeverityError {
			n++
		}
	}
	return n
}
