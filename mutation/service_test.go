package mutation_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ledgerfile/ledgerfile/ast"
	"github.com/ledgerfile/ledgerfile/ledger"
	"github.com/ledgerfile/ledgerfile/mutation"
	"github.com/ledgerfile/ledgerfile/parser"
)

// S6 — mutation round-trip: appending a transaction leaves the file's
// pre-mutation bytes untouched and the new snapshot's journal tail equal to
// the appended transaction.
func TestAppendTransactionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ledger")

	original := "1970-01-01 open Assets:Cash USD\n1970-01-01 open Expenses:Food USD\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	svc := mutation.New(mutation.SingleFile(path), filepath.Join(dir, "documents"))

	amt := ast.Amount{Number: decimal.RequireFromString("-4.25"), Commodity: "USD"}
	txn := ast.Transaction{
		Base:      ast.Base{Date: ast.NewDayDate(2023, 1, 2)},
		Flag:      '*',
		Narration: "coffee",
		Postings: []ast.Posting{
			{Account: "Assets:Cash", Amount: &amt},
			{Account: "Expenses:Food"},
		},
	}

	if _, err := svc.AppendTransaction(txn); err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasPrefix(string(got), original) {
		t.Fatalf("pre-mutation bytes were not preserved:\n%s", got)
	}

	n := 0
	directives, diags := parser.Parse(got, path, 0, func() int { n++; return n })
	if len(diags) != 0 {
		t.Fatalf("appended text failed to reparse: %v", diags)
	}
	snap := ledger.New().Evaluate(&ast.AST{Directives: directives})
	if snap.HasErrors() {
		t.Fatalf("unexpected evaluator errors: %v", snap.Diagnostics)
	}
	if len(snap.Journal) != 1 {
		t.Fatalf("expected 1 transaction in rebuilt journal, got %d", len(snap.Journal))
	}
	if snap.Journal[0].Narration != "coffee" {
		t.Fatalf("expected appended transaction to round-trip, got %+v", snap.Journal[0])
	}
}

func TestSetBalancePadAppendsWithClause(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ledger")
	if err := os.WriteFile(path, []byte("1970-01-01 open Assets:Bank USD\n1970-01-01 open Equity:Opening USD\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	svc := mutation.New(mutation.SingleFile(path), filepath.Join(dir, "documents"))
	bal := ast.Balance{
		Base:       ast.Base{Date: ast.NewDayDate(2023, 1, 5)},
		Account:    "Assets:Bank",
		Amount:     ast.Amount{Number: decimal.RequireFromString("100.00"), Commodity: "USD"},
		PadAccount: "Equity:Opening",
	}
	if _, err := svc.SetBalancePad(bal); err != nil {
		t.Fatalf("SetBalancePad: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(got), "with pad Equity:Opening") {
		t.Fatalf("expected appended balance line to carry the pad clause, got:\n%s", got)
	}
}

func TestUploadDocumentWritesBlobAndDirective(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ledger")
	if err := os.WriteFile(path, []byte("1970-01-01 open Assets:Cash USD\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	svc := mutation.New(mutation.SingleFile(path), filepath.Join(dir, "documents"))
	blobPath, ledgerPath, err := svc.UploadDocument("Assets:Cash", ast.NewDayDate(2023, 3, 1), []byte("pdf bytes"), "pdf")
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	if ledgerPath != path {
		t.Fatalf("expected ledger path %s, got %s", path, ledgerPath)
	}

	blob, err := os.ReadFile(blobPath)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(blob) != "pdf bytes" {
		t.Fatalf("blob contents mismatch: %s", blob)
	}
	if !strings.Contains(filepath.Base(blobPath), "2023-03-01-") {
		t.Fatalf("expected blob name to start with date, got %s", blobPath)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read ledger back: %v", err)
	}
	if !strings.Contains(string(got), "document Assets:Cash") {
		t.Fatalf("expected document directive appended, got:\n%s", got)
	}
}
