package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledgerfile/ledgerfile/mutation"
	"github.com/ledgerfile/ledgerfile/server"
	"github.com/ledgerfile/ledgerfile/watcher"
)

func newTestServer(t *testing.T, authToken string) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ledger")
	src := "1970-01-01 open Assets:Cash USD\n" +
		"1970-01-01 open Expenses:Food USD\n" +
		"2023-01-02 * \"coffee\"\n" +
		"  Assets:Cash -3.50 USD\n" +
		"  Expenses:Food\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	c := watcher.New(path, nil)
	if err := c.Start(context.Background(), false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	mut := mutation.New(mutation.SingleFile(path), filepath.Join(dir, "documents"))
	srv := server.New("", c, mut, authToken, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, path
}

func TestGetAccountsListsOpenedAccounts(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/api/accounts")
	if err != nil {
		t.Fatalf("GET /api/accounts: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body server.AccountsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d: %+v", len(body.Accounts), body.Accounts)
	}
}

func TestGetBalancesReflectsJournal(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/api/balances")
	if err != nil {
		t.Fatalf("GET /api/balances: %v", err)
	}
	defer resp.Body.Close()

	var body server.BalancesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, row := range body.Balances {
		if row.Account == "Assets:Cash" && row.Commodity == "USD" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an Assets:Cash USD row, got %+v", body.Balances)
	}
}

func TestWriteRoutesRequireAuthTokenWhenConfigured(t *testing.T) {
	ts, _ := newTestServer(t, "secret")

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/transactions", strings.NewReader(`{}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /api/transactions: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", resp.StatusCode)
	}

	req2, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/transactions", strings.NewReader(
		`{"date":"2023-02-01","narration":"lunch","postings":[{"account":"Assets:Cash","amount":-5,"commodity":"USD"},{"account":"Expenses:Food"}]}`))
	req2.Header.Set("Authorization", "Bearer secret")
	resp2, err := http.DefaultClient.Do(req2)
	if err != nil {
		t.Fatalf("POST with token: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d", resp2.StatusCode)
	}
}
