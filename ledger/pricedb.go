package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerfile/ledgerfile/ast"
)

// rateEntry is one dated exchange rate on a commodity-pair edge.
type rateEntry struct {
	date ast.Date
	rate decimal.Decimal
}

// PriceDB is a directed graph of commodity pairs, each edge carrying a
// date-ordered list of rates. Generalized from the teacher's
// ledger/graph.go Graph/FindPath, narrowed to what spec §4.5 asks for:
// BFS-shortest-path conversion tie-broken by the most recent as-of date
// used along the path, and idempotent insertion of repeated price
// directives.
type PriceDB struct {
	edges map[string]map[string][]rateEntry
}

// NewPriceDB builds an empty price graph.
func NewPriceDB() *PriceDB {
	return &PriceDB{edges: make(map[string]map[string][]rateEntry)}
}

// Insert records date: 1 base = rate quote, and its inverse edge. Calling
// Insert twice with an identical (date, base, quote, rate) is a no-op, per
// spec §4.5 "idempotent".
func (db *PriceDB) Insert(date ast.Date, base, quote string, rate decimal.Decimal) {
	db.addEdge(base, quote, date, rate)
	if !rate.IsZero() {
		db.addEdge(quote, base, date, decimal.NewFromInt(1).DivRound(rate, 16))
	}
}

func (db *PriceDB) addEdge(from, to string, date ast.Date, rate decimal.Decimal) {
	if db.edges[from] == nil {
		db.edges[from] = make(map[string][]rateEntry)
	}
	list := db.edges[from][to]
	for _, e := range list {
		if e.date.Equal(date) && e.rate.Equal(rate) {
			return
		}
	}
	list = append(list, rateEntry{date: date, rate: rate})
	// keep sorted by date ascending so rateAsOf can scan backwards from the end
	for i := len(list) - 1; i > 0 && list[i-1].date.After(list[i].date); i-- {
		list[i-1], list[i] = list[i], list[i-1]
	}
	db.edges[from][to] = list
}

// rateAsOf returns the most recent rate on edge from->to with date <= asof.
func (db *PriceDB) rateAsOf(from, to string, asof ast.Date) (decimal.Decimal, ast.Date, bool) {
	list := db.edges[from][to]
	for i := len(list) - 1; i >= 0; i-- {
		if !list[i].date.After(asof) {
			return list[i].rate, list[i].date, true
		}
	}
	return decimal.Decimal{}, ast.Date{}, false
}

// Neighbors returns every commodity directly reachable from c.
func (db *PriceDB) Neighbors(c string) []string {
	var out []string
	for to := range db.edges[c] {
		out = append(out, to)
	}
	return out
}

// ErrNoPriceRoute reports that Convert found no path between two
// commodities as of the given date.
type ErrNoPriceRoute struct {
	From, To string
	AsOf     ast.Date
}

func (e *ErrNoPriceRoute) Error() string {
	return fmt.Sprintf("no price route from %s to %s as of %s", e.From, e.To, e.AsOf)
}

// path is one candidate route through the commodity graph.
type path struct {
	hops []string // commodity nodes, hops[0]==from, hops[len-1]==to
}

// Convert converts amount.Number units of amount.Commodity into to,
// returning an Amount denominated in to. Same-commodity conversions are
// the identity. Otherwise it finds the shortest path by edge count,
// tie-broken by the most recent as-of date used along the path (spec
// §4.5), and multiplies each hop's rate as of date.
func (db *PriceDB) Convert(amount ast.Amount, to string, asof ast.Date) (ast.Amount, error) {
	if amount.Commodity == to {
		return amount, nil
	}

	paths := db.shortestPaths(amount.Commodity, to)
	if len(paths) == 0 {
		return ast.Amount{}, &ErrNoPriceRoute{From: amount.Commodity, To: to, AsOf: asof}
	}

	var best decimal.Decimal
	var bestFreshness ast.Date
	found := false

	for _, p := range paths {
		product := decimal.NewFromInt(1)
		oldestUsed := asof
		ok := true
		for i := 0; i < len(p.hops)-1; i++ {
			rate, date, have := db.rateAsOf(p.hops[i], p.hops[i+1], asof)
			if !have {
				ok = false
				break
			}
			product = product.Mul(rate)
			if date.Before(oldestUsed) {
				oldestUsed = date
			}
		}
		if !ok {
			continue
		}
		if !found || oldestUsed.After(bestFreshness) {
			best = product
			bestFreshness = oldestUsed
			found = true
		}
	}

	if !found {
		return ast.Amount{}, &ErrNoPriceRoute{From: amount.Commodity, To: to, AsOf: asof}
	}
	return ast.Amount{Number: amount.Number.Mul(best), Commodity: to}, nil
}

// shortestPaths runs BFS from `from`, returning the paths of minimal hop
// count that reach `to` for the tie-break rule. Each intermediate
// commodity is expanded once, through the first route that reached it, so
// minimal paths that share an intermediate commodity collapse to one.
func (db *PriceDB) shortestPaths(from, to string) []path {
	if from == to {
		return []path{{hops: []string{from}}}
	}

	type frontierEntry struct {
		node string
		hops []string
	}

	visited := map[string]bool{from: true}
	frontier := []frontierEntry{{node: from, hops: []string{from}}}
	var results []path

	for len(frontier) > 0 && len(results) == 0 {
		var next []frontierEntry
		seenThisLevel := map[string]bool{}
		for _, cur := range frontier {
			for _, nb := range db.Neighbors(cur.node) {
				hops := append(append([]string{}, cur.hops...), nb)
				if nb == to {
					results = append(results, path{hops: hops})
					continue
				}
				if visited[nb] || seenThisLevel[nb] {
					continue
				}
				seenThisLevel[nb] = true
				next = append(next, frontierEntry{node: nb, hops: hops})
			}
		}
		for n := range seenThisLevel {
			visited[n] = true
		}
		frontier = next
	}
	return results
}
