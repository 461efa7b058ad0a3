package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerfile/ledgerfile/ast"
)

// AccountStatus tracks whether an account has been opened, and if so
// whether it has since been closed, per spec invariant 1.
type AccountStatus int

const (
	StatusUnknown AccountStatus = iota
	StatusOpen
	StatusClosed
)

// AccountState is the evaluator's running view of a single account:
// its lifecycle, the commodities it accepts, and its current per-commodity
// balances and cost-basis lots.
type AccountState struct {
	Account     ast.Account
	Status      AccountStatus
	OpenDate    ast.Date
	CloseDate   ast.Date
	Restricted  bool // true when Open named an explicit commodity list
	Commodities map[string]bool
	Balances    map[string]decimal.Decimal
	Inventory   *Inventory
	Notes       []ast.Note
	Documents   []ast.Document
}

func newAccountState(account ast.Account) *AccountState {
	return &AccountState{
		Account:     account,
		Balances:    make(map[string]decimal.Decimal),
		Commodities: make(map[string]bool),
		Inventory:   NewInventory(),
	}
}

// AllowsCommodity reports whether commodity may be posted to this account:
// unrestricted unless Open named an explicit commodity set.
func (a *AccountState) AllowsCommodity(commodity string) bool {
	if !a.Restricted {
		return true
	}
	return a.Commodities[commodity]
}

// Registry is the evaluator's map of every account seen across open/close/
// posting directives, keyed by full account path.
type Registry struct {
	accounts map[ast.Account]*AccountState
}

func newRegistry() *Registry {
	return &Registry{accounts: make(map[ast.Account]*AccountState)}
}

// Get returns the account's state, creating an unopened placeholder entry
// if this is the first reference (used so UnknownAccount diagnostics can
// still report a balance of zero rather than nil-panicking callers).
func (r *Registry) Get(account ast.Account) *AccountState {
	st, ok := r.accounts[account]
	if !ok {
		st = newAccountState(account)
		r.accounts[account] = st
	}
	return st
}

// Lookup returns the account's state without creating it, and whether it
// exists.
func (r *Registry) Lookup(account ast.Account) (*AccountState, bool) {
	st, ok := r.accounts[account]
	return st, ok
}

// All returns every account state the registry has recorded.
func (r *Registry) All() map[ast.Account]*AccountState {
	return r.accounts
}
