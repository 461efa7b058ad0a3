package server

import (
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerfile/ledgerfile/ast"
)

// SourceResponse mirrors the teacher's web.SourceResponse: the raw file
// bytes plus the diagnostics produced for them, so the editor frontend can
// annotate the text in place.
type SourceResponse struct {
	Filepath string   `json:"filepath"`
	Source   string   `json:"source"`
	Errors   []string `json:"errors"`
}

// handleGetSource serves the watched root ledger file's bytes and current
// diagnostics. Unlike the teacher's web.Server (which accepts a ?filepath=
// query param to read any file under the ledger directory), this server
// only ever serves the root file: every other source file reachable via
// include is exposed indirectly through /api/diagnostics.
func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	snap := s.controller.Snapshot()
	if snap == nil {
		http.Error(w, "ledger not yet loaded", http.StatusServiceUnavailable)
		return
	}
	if len(snap.Files) == 0 {
		http.Error(w, "no source files loaded", http.StatusNotFound)
		return
	}
	root := snap.Files[0]

	content, err := os.ReadFile(root)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	var errs []string
	for _, d := range snap.Diagnostics {
		if d.File == root {
			errs = append(errs, d.Error())
		}
	}

	writeJSONResponse(w, &SourceResponse{Filepath: root, Source: string(content), Errors: errs})
}

// AccountInfo mirrors the teacher's web.AccountInfo.
type AccountInfo struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// AccountsResponse mirrors the teacher's web.AccountsResponse.
type AccountsResponse struct {
	Accounts []AccountInfo `json:"accounts"`
}

func (s *Server) handleGetAccounts(w http.ResponseWriter, r *http.Request) {
	snap := s.controller.Snapshot()
	if snap == nil {
		http.Error(w, "ledger not yet loaded", http.StatusServiceUnavailable)
		return
	}

	all := snap.Accounts.All()
	accounts := make([]AccountInfo, 0, len(all))
	for name, st := range all {
		status := "unknown"
		switch st.Status {
		case 1:
			status = "open"
		case 2:
			status = "closed"
		}
		accounts = append(accounts, AccountInfo{Name: string(name), Type: string(name.Root()), Status: status})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })

	writeJSONResponse(w, &AccountsResponse{Accounts: accounts})
}

// BalancesResponse mirrors the teacher's web.BalancesResponse, flattened to
// one row per (account, commodity) rather than a tree, since this server's
// client is a thinner consumer than the teacher's full editor frontend.
type BalancesResponse struct {
	Balances []BalanceRow `json:"balances"`
}

type BalanceRow struct {
	Account   string          `json:"account"`
	Commodity string          `json:"commodity"`
	Amount    decimal.Decimal `json:"amount"`
}

func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	snap := s.controller.Snapshot()
	if snap == nil {
		http.Error(w, "ledger not yet loaded", http.StatusServiceUnavailable)
		return
	}

	var rootFilter ast.RootType
	if typesParam := r.URL.Query().Get("type"); typesParam != "" {
		rootFilter = ast.RootType(strings.TrimSpace(typesParam))
	}

	var rows []BalanceRow
	for account, st := range snap.Accounts.All() {
		if rootFilter != "" && account.Root() != rootFilter {
			continue
		}
		for commodity, amount := range st.Balances {
			rows = append(rows, BalanceRow{Account: string(account), Commodity: commodity, Amount: amount})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Account != rows[j].Account {
			return rows[i].Account < rows[j].Account
		}
		return rows[i].Commodity < rows[j].Commodity
	})

	writeJSONResponse(w, &BalancesResponse{Balances: rows})
}

// DiagnosticsResponse exposes the evaluator/parser/loader findings for the
// current snapshot, per spec §7's diagnostic table.
type DiagnosticsResponse struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
}

type DiagnosticJSON struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

func (s *Server) handleGetDiagnostics(w http.ResponseWriter, r *http.Request) {
	snap := s.controller.Snapshot()
	if snap == nil {
		http.Error(w, "ledger not yet loaded", http.StatusServiceUnavailable)
		return
	}

	out := make([]DiagnosticJSON, 0, len(snap.Diagnostics))
	for _, d := range snap.Diagnostics {
		out = append(out, DiagnosticJSON{
			Kind: string(d.Kind), Severity: string(d.Severity), Message: d.Message,
			File: d.File, Line: d.Span.Line, Column: d.Span.Column,
		})
	}
	writeJSONResponse(w, &DiagnosticsResponse{Diagnostics: out})
}

// PriceResponse answers a cross-commodity conversion query.
type PriceResponse struct {
	Amount decimal.Decimal `json:"amount"`
}

// handleGetPrice converts ?amount=&from=&to=[&asof=] using the snapshot's
// price graph (spec §4.5).
func (s *Server) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	snap := s.controller.Snapshot()
	if snap == nil {
		http.Error(w, "ledger not yet loaded", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	amountStr, from, to := q.Get("amount"), q.Get("from"), q.Get("to")
	if amountStr == "" || from == "" || to == "" {
		http.Error(w, "amount, from, and to are required", http.StatusBadRequest)
		return
	}
	number, err := decimal.NewFromString(amountStr)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	asof := ast.NewDayDate(9999, 12, 31)
	if asofParam := q.Get("asof"); asofParam != "" {
		d, err := ast.ParseDate(asofParam)
		if err != nil {
			http.Error(w, "invalid asof date", http.StatusBadRequest)
			return
		}
		asof = d
	}

	converted, err := snap.Prices.Convert(ast.Amount{Number: number, Commodity: from}, to, asof)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSONResponse(w, &PriceResponse{Amount: converted.Number})
}
