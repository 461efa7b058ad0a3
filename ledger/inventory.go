package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerfile/ledgerfile/ast"
)

// Lot is one acquisition of a commodity at a specific cost, used to compute
// cost basis when a later posting reduces the position. Grounded on the
// teacher's per-account lot multiset (ledger/inventory.go, ledger/lot.go),
// simplified to the two reduction strategies spec §4.4.1 actually asks for:
// FIFO by LotDate, or an explicit label match.
type Lot struct {
	Number        decimal.Decimal
	Commodity     string
	CostNumber    decimal.Decimal
	CostCommodity string
	LotDate       ast.Date
	Label         string
}

// Inventory is the ordered multiset of open lots for one account, one slice
// per commodity so FIFO reduction only has to scan same-commodity lots.
type Inventory struct {
	lots map[string][]*Lot
}

func NewInventory() *Inventory {
	return &Inventory{lots: make(map[string][]*Lot)}
}

// Lots returns the open lots for commodity, oldest first.
func (inv *Inventory) Lots(commodity string) []*Lot {
	return inv.lots[commodity]
}

// Acquire records a new lot (qty must be positive). Lots with identical
// cost and date are merged rather than kept as separate entries.
func (inv *Inventory) Acquire(qty decimal.Decimal, commodity string, cost *ast.Cost, lotDate ast.Date) {
	l := &Lot{Number: qty, Commodity: commodity, LotDate: lotDate}
	if cost != nil {
		l.CostNumber = cost.Amount.Number
		l.CostCommodity = cost.Amount.Commodity
		l.Label = cost.Label
		if cost.Date != nil {
			l.LotDate = *cost.Date
		}
	}
	for _, existing := range inv.lots[commodity] {
		if existing.CostNumber.Equal(l.CostNumber) && existing.CostCommodity == l.CostCommodity &&
			existing.LotDate.Equal(l.LotDate) && existing.Label == l.Label {
			existing.Number = existing.Number.Add(qty)
			return
		}
	}
	inv.lots[commodity] = append(inv.lots[commodity], l)
}

// Reduce draws down qty (a positive magnitude) of commodity from open
// lots. When label is non-empty, it names the specific lot to draw from
// (spec §4.4.1: "unless metadata names a specific lot key"); otherwise
// lots are drawn oldest-first (FIFO).
func (inv *Inventory) Reduce(qty decimal.Decimal, commodity string, label string) []*Lot {
	lots := inv.lots[commodity]
	var consumed []*Lot
	remaining := qty

	var reorder []*Lot
	if label != "" {
		for _, l := range lots {
			if l.Label == label {
				reorder = append(reorder, l)
			}
		}
		for _, l := range lots {
			if l.Label != label {
				reorder = append(reorder, l)
			}
		}
	} else {
		reorder = lots
	}

	var kept []*Lot
	for _, l := range reorder {
		if remaining.IsZero() {
			kept = append(kept, l)
			continue
		}
		if l.Number.LessThanOrEqual(remaining) {
			remaining = remaining.Sub(l.Number)
			consumed = append(consumed, &Lot{
				Number: l.Number, Commodity: l.Commodity, CostNumber: l.CostNumber,
				CostCommodity: l.CostCommodity, LotDate: l.LotDate, Label: l.Label,
			})
			continue
		}
		consumed = append(consumed, &Lot{
			Number: remaining, Commodity: l.Commodity, CostNumber: l.CostNumber,
			CostCommodity: l.CostCommodity, LotDate: l.LotDate, Label: l.Label,
		})
		l.Number = l.Number.Sub(remaining)
		remaining = decimal.Zero
		kept = append(kept, l)
	}
	inv.lots[commodity] = keepOrderedByOpenDate(kept)
	return consumed
}

// keepOrderedByOpenDate preserves FIFO ordering (oldest LotDate first)
// after a partial reduction leaves lots in an arbitrary relative order.
func keepOrderedByOpenDate(lots []*Lot) []*Lot {
	for i := 1; i < len(lots); i++ {
		j := i
		for j > 0 && lots[j-1].LotDate.After(lots[j].LotDate) {
			lots[j-1], lots[j] = lots[j], lots[j-1]
			j--
		}
	}
	return lots
}
