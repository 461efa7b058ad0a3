// Package server exposes the read/write HTTP API over a watcher.Controller,
// grounded on the teacher's web package (web/web.go's setupRouter,
// web/accounts.go, web/balances.go, web/source.go). Mutating routes are
// additions the teacher's read-only web server never had, wired to the
// mutation.Service, and gated by an optional bearer-token middleware
// (spec §6's ZHANG_AUTH_TOKEN).
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ledgerfile/ledgerfile/mutation"
	"github.com/ledgerfile/ledgerfile/watcher"
)

// Server binds a watcher.Controller (the read path) and a mutation.Service
// (the write path) to an HTTP mux. Unlike the teacher's web.Server, the
// ledger it reads is never held behind a server-owned mutex: the
// Controller's atomic.Pointer swap is the synchronization point.
type Server struct {
	Addr       string
	AuthToken  string // empty disables the bearer-token gate
	controller *watcher.Controller
	mutator    *mutation.Service
	log        *zap.Logger
}

// New builds a Server. log may be nil, in which case a no-op logger is used.
func New(addr string, controller *watcher.Controller, mutator *mutation.Service, authToken string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{Addr: addr, controller: controller, mutator: mutator, AuthToken: authToken, log: log}
}

// Handler builds the ServeMux, exported separately from ListenAndServe so
// tests can exercise routes with httptest.NewServer without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/source", s.handleGetSource)
	mux.HandleFunc("GET /api/accounts", s.handleGetAccounts)
	mux.HandleFunc("GET /api/balances", s.handleGetBalances)
	mux.HandleFunc("GET /api/diagnostics", s.handleGetDiagnostics)
	mux.HandleFunc("GET /api/price", s.handleGetPrice)

	mux.HandleFunc("POST /api/transactions", s.requireAuth(s.handlePostTransaction))
	mux.HandleFunc("POST /api/documents", s.requireAuth(s.handlePostDocument))
	mux.HandleFunc("POST /api/balance-pad", s.requireAuth(s.handlePostBalancePad))

	return mux
}

// ListenAndServe starts the HTTP server on Addr. It blocks until the server
// stops or errors.
func (s *Server) ListenAndServe() error {
	s.log.Info("starting server", zap.String("addr", s.Addr))
	return http.ListenAndServe(s.Addr, s.Handler())
}

// requireAuth gates a write route behind ZHANG_AUTH_TOKEN, matching spec
// §6: "opaque string required on mutation endpoints when set". When
// AuthToken is empty, the gate is a no-op — the same posture the teacher's
// web package documents ("SECURITY WARNING: no authentication ... bind to
// localhost only").
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AuthToken == "" {
			next(w, r)
			return
		}
		got := r.Header.Get("Authorization")
		want := "Bearer " + s.AuthToken
		if got != want {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// writeJSONResponse encodes v as the response body, matching the teacher's
// web package convention of a single small helper shared by every GET route.
func writeJSONResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
	}
}
