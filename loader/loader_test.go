package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadFollowsIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "accounts.ledger", "2024-01-01 open Assets:Bank:Checking USD\n")
	writeFile(t, dir, "prices.ledger", "2024-01-01 price USD 1.00 USD\n")
	root := writeFile(t, dir, "main.ledger",
		"include \"*.ledger\"\n2024-06-01 open Expenses:Groceries USD\n")

	result, err := New().Load(context.Background(), root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(result.Files) != 3 {
		t.Fatalf("expected 3 files loaded (main + 2 includes), got %d: %v", len(result.Files), result.Files)
	}
	if len(result.AST.Directives) != 3 {
		t.Fatalf("expected 3 directives, got %d", len(result.AST.Directives))
	}
}

func TestLoadReportsMissingInclude(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "main.ledger", "include \"nope-*.ledger\"\n")

	result, err := New().Load(context.Background(), root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic for missing include, got %d", len(result.Diagnostics))
	}
}

func TestLoadWarnsOnDuplicateInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shared.ledger", "2024-01-01 commodity USD\n")
	root := writeFile(t, dir, "main.ledger",
		"include \"shared.ledger\"\ninclude \"shared.ledger\"\n")

	result, err := New().Load(context.Background(), root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	found := false
	for _, d := range result.Diagnostics {
		if d.Kind == "duplicate_include" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a duplicate_include diagnostic, got %v", result.Diagnostics)
	}
}
