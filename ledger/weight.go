package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerfile/ledgerfile/ast"
)

// PostingWeight computes the commodity a posting contributes to the
// transaction balance, and the signed total in that commodity, per spec
// §4.4.1: cost-total when a cost is given, else price-total when an `@`/
// `@@` annotation is given, else the posting's own amount. A false ok
// means the posting is elided and carries no weight of its own.
//
// Generalized from the teacher's ledger/weight.go CalculateWeights, which
// only ever produces one weight per posting in practice (the cost-vs-price
// branches are mutually exclusive here per spec's resolution of Open
// Question 1: cost is authoritative when both are present).
func PostingWeight(p ast.Posting) (commodity string, total decimal.Decimal, ok bool) {
	if p.Amount == nil {
		return "", decimal.Decimal{}, false
	}
	qty := p.Amount.Number

	if p.Cost != nil {
		costCommodity := p.Cost.Amount.Commodity
		var costTotal decimal.Decimal
		if p.Cost.Kind == ast.CostTotal {
			costTotal = p.Cost.Amount.Number
			if qty.IsNegative() {
				costTotal = costTotal.Neg()
			}
		} else {
			costTotal = qty.Mul(p.Cost.Amount.Number)
		}
		return costCommodity, costTotal, true
	}

	if p.Price != nil {
		priceCommodity := p.Price.Amount.Commodity
		var priceTotal decimal.Decimal
		if p.Price.Kind == ast.CostTotal {
			priceTotal = p.Price.Amount.Number
			if qty.IsNegative() {
				priceTotal = priceTotal.Neg()
			}
		} else {
			priceTotal = qty.Mul(p.Price.Amount.Number)
		}
		return priceCommodity, priceTotal, true
	}

	return p.Amount.Commodity, qty, true
}

// costDisagreement reports whether a posting's cost and price annotations
// imply conflicting per-unit values, per the resolution of spec §9 Open
// Question 1 (cost is authoritative for lot identity; price is
// informational, but a wide disagreement is worth flagging).
func costDisagreement(p ast.Posting, tolerance decimal.Decimal) bool {
	if p.Amount == nil || p.Cost == nil || p.Price == nil {
		return false
	}
	if p.Cost.Amount.Commodity != p.Price.Amount.Commodity {
		return false
	}
	qty := p.Amount.Number
	costPerUnit := p.Cost.PerUnit(qty).Number
	pricePerUnit := p.Price.PerUnit(qty).Number
	diff := costPerUnit.Sub(pricePerUnit).Abs()
	return diff.GreaterThan(tolerance)
}
