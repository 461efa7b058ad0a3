package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerfile/ledgerfile/ast"
	"github.com/ledgerfile/ledgerfile/errorfmt"
)

// RoundingMode names the values of the `default_rounding` option. The
// evaluator records that option in Snapshot.Options but does not round
// any amount with it.
type RoundingMode string

const (
	RoundUp       RoundingMode = "up"
	RoundDown     RoundingMode = "down"
	RoundHalfUp   RoundingMode = "round_half_up"
	RoundHalfEven RoundingMode = "round_half_even"
)

// CommodityInfo is the per-commodity metadata recorded by a `commodity`
// directive: display precision and tolerance derive the balance-assertion
// tolerance of spec invariant 4.
type CommodityInfo struct {
	Precision int
	Tolerance decimal.Decimal
}

// MonthlyStat is one point in the evaluator's derived net-worth/income/
// expense series, keyed by calendar month.
type MonthlyStat struct {
	Month   string // "2006-01"
	Assets  decimal.Decimal
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Snapshot is the immutable output of one Evaluator run: the fully
// resolved account registry, the journal of transactions (with elided
// postings filled in), the price graph, and every diagnostic collected
// along the way. Readers only ever see a whole Snapshot, never a
// partially-built one (spec §5).
type Snapshot struct {
	Accounts    *Registry
	Journal     []ast.Transaction
	Prices      *PriceDB
	Diagnostics []errorfmt.Diagnostic
	Documents   []ast.Document
	Options     map[string]string
	Commodities map[string]CommodityInfo
	Stats       []MonthlyStat

	// Files is the set of absolute source paths this Snapshot was built
	// from (the Loader's file registry), used by the watcher to know what
	// to watch for changes.
	Files []string
}

// HasErrors reports whether any diagnostic reached error severity.
func (s *Snapshot) HasErrors() bool {
	for _, d := range s.Diagnostics {
		if d.Severity == errorfmt.SeverityError {
			return true
		}
	}
	return false
}

// Balance returns account's current balance in commodity, or zero if the
// account or commodity has never been posted to.
func (s *Snapshot) Balance(account ast.Account, commodity string) decimal.Decimal {
	st, ok := s.Accounts.Lookup(account)
	if !ok {
		return decimal.Zero
	}
	return st.Balances[commodity]
}
