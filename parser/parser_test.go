package parser

import "testing"

func counter() func() int {
	n := 0
	return func() int {
		n++
		return n
	}
}

func TestParseOpenAndBalance(t *testing.T) {
	src := "2024-01-01 open Assets:Bank:Checking USD\n" +
		"2024-01-02 balance Assets:Bank:Checking 100.00 USD\n"
	directives, diags := Parse([]byte(src), "test.ledger", 0, counter())
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(directives) != 2 {
		t.Fatalf("expected 2 directives, got %d", len(directives))
	}
}

func TestParseTransactionWithPostings(t *testing.T) {
	src := "2024-01-01 txn \"Store\" \"Groceries\"\n" +
		"  Assets:Bank:Checking  -42.50 USD\n" +
		"  Expenses:Groceries\n"
	directives, diags := Parse([]byte(src), "test.ledger", 0, counter())
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(directives) != 1 {
		t.Fatalf("expected 1 directive, got %d", len(directives))
	}
}

func TestParseRecoversFromSyntaxError(t *testing.T) {
	src := "2024-01-01 bogus Assets:Bank:Checking\n" +
		"2024-01-02 open Assets:Bank:Checking USD\n"
	directives, diags := Parse([]byte(src), "test.ledger", 0, counter())
	if len(diags) == 0 {
		t.Fatalf("expected a diagnostic for the bogus directive")
	}
	found := false
	for _, d := range directives {
		if d.Kind() == "open" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected parser to recover and still parse the open directive that follows")
	}
}
