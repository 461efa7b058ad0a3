// Package ledger implements the deterministic evaluator described in spec
// §4.4: it replays a sorted directive stream to produce an immutable
// Snapshot — account registry, per-commodity balances, journal with
// elided postings resolved, price graph, and a diagnostics list. Parsing
// and evaluation never abort on a recoverable condition; they append a
// errorfmt.Diagnostic and continue, so one bad transaction doesn't hide
// every other finding in a large ledger.
package ledger

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ledgerfile/ledgerfile/ast"
	"github.com/ledgerfile/ledgerfile/errorfmt"
)

const defaultPrecision = 2

// Evaluator replays a sorted ast.AST into a Snapshot. Generalized from the
// teacher's Handler/*Delta pattern (ledger/handlers.go, ledger/validation.go):
// each directive kind is handled by its own method that both validates
// (appending diagnostics) and mutates the snapshot under construction.
type Evaluator struct {
	registry             *Registry
	prices               *PriceDB
	journal              []ast.Transaction
	diags                []errorfmt.Diagnostic
	documents            []ast.Document
	options              map[string]string
	commodities          map[string]CommodityInfo
	defaultTolerancePrec int
}

// New builds an Evaluator ready to Evaluate one ast.AST.
func New() *Evaluator {
	return &Evaluator{
		registry:             newRegistry(),
		prices:               NewPriceDB(),
		options:              make(map[string]string),
		commodities:          make(map[string]CommodityInfo),
		defaultTolerancePrec: defaultPrecision,
	}
}

// Evaluate runs the three passes of spec §4.4 over file and returns the
// resulting Snapshot. file is sorted in place if it isn't already.
func (e *Evaluator) Evaluate(file *ast.AST) *Snapshot {
	file.Sort()

	e.pass1Schema(file.Directives)
	e.pass3Replay(file.Directives)

	return &Snapshot{
		Accounts:    e.registry,
		Journal:     e.journal,
		Prices:      e.prices,
		Diagnostics: e.diags,
		Documents:   e.documents,
		Options:     e.options,
		Commodities: e.commodities,
		Stats:       e.computeStats(),
	}
}

// pass1Schema collects every `option` directive into the options map,
// unchanged, so callers can still see what was set. Only
// default_balance_tolerance_precision changes evaluation (it sets the
// default tolerance precision); every other key, including title,
// operating_currency, default_rounding and timezone, is only recorded.
func (e *Evaluator) pass1Schema(directives []ast.Directive) {
	for _, d := range directives {
		opt, ok := d.(ast.Option)
		if !ok {
			continue
		}
		e.options[opt.Key] = opt.Value
		switch opt.Key {
		case "default_balance_tolerance_precision":
			if n, err := strconv.Atoi(opt.Value); err == nil {
				e.defaultTolerancePrec = n
			}
		}
	}
}

// pass3Replay walks the sorted directive stream once, dispatching each
// directive to its handler. (Pass 2, the stable sort by (date, source
// order), already happened in Evaluate via file.Sort — ast.AST.Sort is the
// same sort the loader applies, repeated here defensively so Evaluate is
// correct even when called on an unsorted AST.)
func (e *Evaluator) pass3Replay(directives []ast.Directive) {
	for _, d := range directives {
		switch v := d.(type) {
		case ast.Open:
			e.applyOpen(v)
		case ast.Close:
			e.applyClose(v)
		case ast.Commodity:
			e.applyCommodity(v)
		case ast.Price:
			e.applyPrice(v)
		case ast.Transaction:
			e.applyTransaction(v)
		case ast.Balance:
			e.applyBalance(v)
		case ast.Document:
			e.applyDocument(v)
		case ast.Note:
			e.applyNote(v)
		case ast.Event:
			// Events carry no account-level state to project and are not
			// recorded in the Snapshot.
		case ast.Option, ast.Include, ast.Plugin, ast.Custom:
			// Handled in pass 1 (Option) or not semantically evaluated
			// (Include resolution is the loader's job; Plugin execution
			// and Custom interpretation are explicit Non-goals per spec §1).
		}
	}
}

func (e *Evaluator) applyOpen(o ast.Open) {
	st, exists := e.registry.Lookup(o.Account)
	if exists && st.Status == StatusOpen {
		e.errorAt(errorfmt.KindSyntaxError, o.Span, "account %s is already open", o.Account)
		return
	}
	if !exists {
		st = e.registry.Get(o.Account)
	}
	st.Status = StatusOpen
	st.OpenDate = o.Date
	if len(o.Commodities) > 0 {
		st.Restricted = true
		for _, c := range o.Commodities {
			st.Commodities[c] = true
		}
	}
}

func (e *Evaluator) applyClose(c ast.Close) {
	st, exists := e.registry.Lookup(c.Account)
	if !exists {
		e.errorAt(errorfmt.KindAccountNotOpen, c.Span, "close of unopened account %s", c.Account)
		return
	}
	st.Status = StatusClosed
	st.CloseDate = c.Date
}

func (e *Evaluator) applyCommodity(c ast.Commodity) {
	info := e.commodities[c.Symbol]
	if v, ok := c.Metadata.Get("precision"); ok && v.Kind == ast.MetaNumber {
		info.Precision = int(v.Number.Number.IntPart())
	}
	if info.Precision == 0 {
		info.Precision = e.defaultTolerancePrec
	}
	info.Tolerance = toleranceForPrecision(info.Precision)
	e.commodities[c.Symbol] = info
}

func (e *Evaluator) applyPrice(p ast.Price) {
	e.prices.Insert(p.Date, p.Commodity, p.Amount.Commodity, p.Amount.Number)
}

func (e *Evaluator) applyDocument(d ast.Document) {
	e.documents = append(e.documents, d)
	st := e.registry.Get(d.Account)
	st.Documents = append(st.Documents, d)
}

func (e *Evaluator) applyNote(n ast.Note) {
	st := e.registry.Get(n.Account)
	st.Notes = append(st.Notes, n)
}

// toleranceForPrecision returns half a unit at the given display
// precision, per spec invariant 4's default tolerance rule.
func toleranceForPrecision(precision int) decimal.Decimal {
	if precision < 0 {
		precision = 0
	}
	return decimal.New(5, -int32(precision)-1)
}

func (e *Evaluator) toleranceFor(commodity string) decimal.Decimal {
	if info, ok := e.commodities[commodity]; ok {
		return info.Tolerance
	}
	return toleranceForPrecision(e.defaultTolerancePrec)
}

func (e *Evaluator) errorAt(kind errorfmt.Kind, span ast.SourceSpan, format string, args ...any) {
	e.diags = append(e.diags, errorfmt.New(kind, "", span, format, args...))
}

func (e *Evaluator) warnAt(kind errorfmt.Kind, span ast.SourceSpan, format string, args ...any) {
	e.diags = append(e.diags, errorfmt.Warningf(kind, "", span, format, args...))
}
