package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ledgerfile/ledgerfile/ast"
	"github.com/ledgerfile/ledgerfile/ledger"
	"github.com/ledgerfile/ledgerfile/parser"
)

func evaluate(t *testing.T, src string) *ledger.Snapshot {
	t.Helper()
	n := 0
	directives, diags := parser.Parse([]byte(src), "test.ledger", 0, func() int { n++; return n })
	if len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	a := &ast.AST{Directives: directives}
	return ledger.New().Evaluate(a)
}

// S1 — elision: the elided posting is inferred to balance the transaction.
func TestElisionInfersAmount(t *testing.T) {
	src := "1970-01-01 open Assets:Cash USD\n" +
		"1970-01-01 open Expenses:Food USD\n" +
		"2023-01-02 * \"coffee\"\n" +
		"  Assets:Cash -3.50 USD\n" +
		"  Expenses:Food\n"
	snap := evaluate(t, src)
	if snap.HasErrors() {
		t.Fatalf("unexpected errors: %v", snap.Diagnostics)
	}
	if len(snap.Journal) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(snap.Journal))
	}
	txn := snap.Journal[0]
	var food *ast.Amount
	for _, p := range txn.Postings {
		if p.Account == "Expenses:Food" {
			food = p.Amount
		}
	}
	if food == nil {
		t.Fatalf("expected Expenses:Food posting to have an inferred amount")
	}
	want := decimal.RequireFromString("3.50")
	if !food.Number.Equal(want) {
		t.Fatalf("expected inferred amount 3.50, got %s", food.Number.String())
	}
}

// S2 — balance assertion with pad inserts a synthetic transaction and
// passes.
func TestBalanceWithPadInsertsSyntheticTransaction(t *testing.T) {
	src := "1970-01-01 open Assets:Bank USD\n" +
		"1970-01-01 open Equity:Opening USD\n" +
		"2023-01-05 balance Assets:Bank 100.00 USD Equity:Opening\n"
	snap := evaluate(t, src)
	for _, d := range snap.Diagnostics {
		if d.Kind == "balance_assertion_failed" {
			t.Fatalf("expected assertion to pass after padding, got: %v", d)
		}
	}
	if len(snap.Journal) != 1 {
		t.Fatalf("expected 1 synthetic padding transaction, got %d", len(snap.Journal))
	}
	bank := snap.Balance("Assets:Bank", "USD")
	if !bank.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected Assets:Bank balance 100.00, got %s", bank.String())
	}
	opening := snap.Balance("Equity:Opening", "USD")
	if !opening.Equal(decimal.RequireFromString("-100.00")) {
		t.Fatalf("expected Equity:Opening balance -100.00, got %s", opening.String())
	}
}

// S3 — a posting after close produces AccountClosed, the rest of the file
// still evaluates.
func TestPostingAfterCloseIsDiagnosed(t *testing.T) {
	src := "1970-01-01 open Assets:Cash USD\n" +
		"1970-01-01 open Expenses:Food USD\n" +
		"2023-01-01 close Assets:Cash\n" +
		"2023-02-01 * \"late\"\n" +
		"  Assets:Cash -1.00 USD\n" +
		"  Expenses:Food 1.00 USD\n"
	snap := evaluate(t, src)
	found := false
	for _, d := range snap.Diagnostics {
		if d.Kind == "account_closed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected account_closed diagnostic, got %v", snap.Diagnostics)
	}
	if len(snap.Journal) != 1 {
		t.Fatalf("expected the transaction to still be journaled, got %d entries", len(snap.Journal))
	}
}

// S5 — cross-commodity posting resolves via a price annotation and the
// price DB independently confirms the same rate.
func TestCrossCommodityPosting(t *testing.T) {
	src := "1970-01-01 open Assets:Cash USD\n" +
		"1970-01-01 open Expenses:Travel EUR\n" +
		"2023-01-01 price USD 0.90 EUR\n" +
		"2023-02-01 * \"trip\"\n" +
		"  Assets:Cash -10 USD @ 0.85 EUR\n" +
		"  Expenses:Travel\n"
	snap := evaluate(t, src)
	if snap.HasErrors() {
		t.Fatalf("unexpected errors: %v", snap.Diagnostics)
	}
	txn := snap.Journal[0]
	var travel *ast.Amount
	for _, p := range txn.Postings {
		if p.Account == "Expenses:Travel" {
			travel = p.Amount
		}
	}
	if travel == nil || !travel.Number.Equal(decimal.RequireFromString("8.50")) {
		t.Fatalf("expected Expenses:Travel inferred as 8.50 EUR, got %v", travel)
	}
	cash := snap.Balance("Assets:Cash", "USD")
	if !cash.Equal(decimal.RequireFromString("-10")) {
		t.Fatalf("expected Assets:Cash reduced by 10 USD, got %s", cash.String())
	}

	converted, err := snap.Prices.Convert(ast.Amount{Number: decimal.RequireFromString("1"), Commodity: "USD"}, "EUR", txn.Date)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !converted.Number.Equal(decimal.RequireFromString("0.90")) {
		t.Fatalf("expected price DB to report 0.90 EUR per USD, got %s", converted.Number.String())
	}
}

func TestMultipleElisionsDiagnosed(t *testing.T) {
	src := "1970-01-01 open Assets:Cash USD\n" +
		"1970-01-01 open Expenses:A USD\n" +
		"1970-01-01 open Expenses:B USD\n" +
		"2023-01-01 * \"bad\"\n" +
		"  Assets:Cash -10 USD\n" +
		"  Expenses:A\n" +
		"  Expenses:B\n"
	snap := evaluate(t, src)
	found := false
	for _, d := range snap.Diagnostics {
		if d.Kind == "multiple_elisions" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected multiple_elisions diagnostic, got %v", snap.Diagnostics)
	}
}

func TestPriceDBRoundTrip(t *testing.T) {
	db := ledger.NewPriceDB()
	db.Insert(ast.NewDayDate(2023, 1, 1), "USD", "EUR", decimal.RequireFromString("0.90"))

	toEUR, err := db.Convert(ast.Amount{Number: decimal.RequireFromString("10"), Commodity: "USD"}, "EUR", ast.NewDayDate(2023, 6, 1))
	if err != nil {
		t.Fatalf("Convert USD->EUR: %v", err)
	}
	back, err := db.Convert(toEUR, "USD", ast.NewDayDate(2023, 6, 1))
	if err != nil {
		t.Fatalf("Convert EUR->USD: %v", err)
	}
	diff := back.Number.Sub(decimal.RequireFromString("10")).Abs()
	if diff.GreaterThan(decimal.RequireFromString("0.01")) {
		t.Fatalf("round trip drifted: got %s", back.Number.String())
	}
}
