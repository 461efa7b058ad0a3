package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerfile/ledgerfile/ast"
	"github.com/ledgerfile/ledgerfile/errorfmt"
)

// applyTransaction resolves elided postings (§4.4.1), checks bookkeeping
// invariants per posting (§4.4.2), updates running balances and cost-basis
// lots, and appends the resolved transaction to the journal. Generalized
// from the teacher's processTransaction/calculateBalance
// (ledger/validation.go) and CalculateWeights (ledger/weight.go).
func (e *Evaluator) applyTransaction(t ast.Transaction) {
	resolved, ok := e.resolvePostings(t)
	if !ok {
		// Still append the transaction with whatever amounts it has, so
		// downstream readers (the journal, balances-so-far) see it —
		// spec §7: evaluator never aborts on a recoverable diagnostic.
	}
	for i := range resolved.Postings {
		e.checkBookkeeping(resolved, &resolved.Postings[i])
	}
	e.applyBalances(resolved)
	e.journal = append(e.journal, resolved)
}

// resolvePostings fills in the single elided posting's amount, if any,
// per spec §4.4.1. The return value's Postings slice is a fresh copy so
// the caller can safely mutate amounts without aliasing the original AST.
func (e *Evaluator) resolvePostings(t ast.Transaction) (ast.Transaction, bool) {
	out := t
	out.Postings = append([]ast.Posting(nil), t.Postings...)

	weights := make(map[string]decimal.Decimal)
	var elidedIdx []int

	for i, p := range out.Postings {
		if p.Cost != nil && p.Price != nil && costDisagreement(p, e.toleranceFor(p.Cost.Amount.Commodity)) {
			e.warnAt(errorfmt.KindTransactionUnbalanced, p.Span,
				"posting on %s has a cost and price that disagree beyond tolerance", p.Account)
		}
		commodity, total, ok := PostingWeight(p)
		if !ok {
			elidedIdx = append(elidedIdx, i)
			continue
		}
		weights[commodity] = weights[commodity].Add(total)
	}

	if len(elidedIdx) >= 2 {
		e.errorAt(errorfmt.KindMultipleElisions, t.Span,
			"transaction has %d postings with no amount; at most one is allowed", len(elidedIdx))
		return out, false
	}

	if len(elidedIdx) == 1 {
		var residual []string
		for c, w := range weights {
			if w.Abs().GreaterThan(e.toleranceFor(c)) {
				residual = append(residual, c)
			}
		}
		if len(residual) != 1 {
			e.errorAt(errorfmt.KindUnresolvableElision, t.Span,
				"cannot infer the elided posting's amount: %d residual commodities", len(residual))
			return out, false
		}
		commodity := residual[0]
		idx := elidedIdx[0]
		inferred := ast.Amount{Number: weights[commodity].Neg(), Commodity: commodity}
		out.Postings[idx].Amount = &inferred
		weights[commodity] = decimal.Zero
		return out, true
	}

	for c, w := range weights {
		if w.Abs().GreaterThan(e.toleranceFor(c)) {
			e.errorAt(errorfmt.KindTransactionUnbalanced, t.Span,
				"transaction does not balance in %s: residual %s", c, w.String())
			return out, false
		}
	}
	return out, true
}

// checkBookkeeping validates a single resolved posting against its
// account's lifecycle and commodity restrictions (spec §4.4.2 / invariants
// 1-2), and draws down or acquires cost-basis lots.
func (e *Evaluator) checkBookkeeping(t ast.Transaction, p *ast.Posting) {
	st, exists := e.registry.Lookup(p.Account)
	if !exists || st.Status == StatusUnknown {
		e.errorAt(errorfmt.KindAccountNotOpen, p.Span,
			"posting to %s which was never opened", p.Account)
		return
	}
	if t.Date.Before(st.OpenDate) {
		e.errorAt(errorfmt.KindAccountNotOpen, p.Span,
			"posting to %s on %s before it opened on %s", p.Account, t.Date, st.OpenDate)
	}
	if st.Status == StatusClosed && t.Date.After(st.CloseDate) {
		e.errorAt(errorfmt.KindAccountClosed, p.Span,
			"posting to %s on %s after it closed on %s", p.Account, t.Date, st.CloseDate)
		return
	}
	if p.Amount == nil {
		return
	}
	if !st.AllowsCommodity(p.Amount.Commodity) {
		e.errorAt(errorfmt.KindCommodityMismatch, p.Span,
			"commodity %s not allowed on %s", p.Amount.Commodity, p.Account)
	}

	if p.Cost != nil {
		label := p.Cost.Label
		if p.Amount.Number.IsNegative() {
			st.Inventory.Reduce(p.Amount.Number.Abs(), p.Amount.Commodity, label)
		} else {
			st.Inventory.Acquire(p.Amount.Number, p.Amount.Commodity, p.Cost, t.Date)
		}
	}
}

// applyBalances folds every resolved posting's own amount into its
// account's running per-commodity balance (spec invariant 3: the running
// balance is the sum of literal posting amounts, not their cost- or
// price-converted weight).
func (e *Evaluator) applyBalances(t ast.Transaction) {
	for _, p := range t.Postings {
		if p.Amount == nil {
			continue
		}
		st := e.registry.Get(p.Account)
		st.Balances[p.Amount.Commodity] = st.Balances[p.Amount.Commodity].Add(p.Amount.Number)
	}
}

// applyBalance checks a balance assertion against the account's current
// running total (spec invariant 4). On mismatch beyond tolerance, it
// either inserts a synthetic padding transaction (when PadAccount is set)
// or emits an AssertionFailed diagnostic. Generalized from the teacher's
// createPaddingTransaction (ledger/validation.go).
func (e *Evaluator) applyBalance(b ast.Balance) {
	st := e.registry.Get(b.Account)
	actual := st.Balances[b.Amount.Commodity]
	diff := b.Amount.Number.Sub(actual)
	tol := e.toleranceFor(b.Amount.Commodity)

	if diff.Abs().LessThanOrEqual(tol) {
		return
	}

	if b.PadAccount == "" {
		e.errorAt(errorfmt.KindBalanceAssertionFailed, b.Span,
			"balance assertion failed for %s: expected %s %s, got %s",
			b.Account, b.Amount.Number.String(), b.Amount.Commodity, actual.String())
		return
	}

	// Resolution of spec §9 Open Question 2: the pad transaction is dated
	// one second before the assertion and inserted immediately before it,
	// not before the oldest same-day transaction.
	padDate := b.Date.AddSeconds(-1)
	pad := ast.Transaction{
		Base:      ast.Base{Date: padDate, Span: b.Span, Order: b.Order},
		Flag:      '*',
		Narration: "(Padding inserted for balance assertion)",
		Postings: []ast.Posting{
			{Account: b.Account, Amount: &ast.Amount{Number: diff, Commodity: b.Amount.Commodity}},
			{Account: b.PadAccount, Amount: &ast.Amount{Number: diff.Neg(), Commodity: b.Amount.Commodity}},
		},
	}
	for i := range pad.Postings {
		e.checkBookkeeping(pad, &pad.Postings[i])
	}
	e.applyBalances(pad)
	e.journal = append(e.journal, pad)

	actual = st.Balances[b.Amount.Commodity]
	if b.Amount.Number.Sub(actual).Abs().GreaterThan(tol) {
		e.errorAt(errorfmt.KindBalanceAssertionFailed, b.Span,
			"balance assertion failed for %s even after padding: expected %s %s, got %s",
			b.Account, b.Amount.Number.String(), b.Amount.Commodity, actual.String())
	}
}
