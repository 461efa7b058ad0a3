package ast

import "github.com/shopspring/decimal"

// Amount is a quantity of a commodity. Number is the parsed
// decimal.Decimal used for all arithmetic; the original text of the
// number is not kept.
type Amount struct {
	Number     decimal.Decimal
	Commodity  string
}

// Neg returns the additive inverse of a.
func (a Amount) Neg() Amount {
	return Amount{Number: a.Number.Neg(), Commodity: a.Commodity}
}

// IsZero reports whether a's number is exactly zero.
func (a Amount) IsZero() bool {
	return a.Number.IsZero()
}

func (a Amount) String() string {
	if a.Commodity == "" {
		return a.Number.String()
	}
	return a.Number.String() + " " + a.Commodity
}

// CostKind distinguishes a per-unit cost (`{N CCY}`) from a total cost
// (`{{N CCY}}`), per spec §3.
type CostKind int

const (
	CostPerUnit CostKind = iota
	CostTotal
)

// Cost is the optional cost-basis annotation on a posting, used to
// identify and reduce lots.
type Cost struct {
	Kind     CostKind
	Amount   Amount
	Date     *Date
	Label    string
}

// PerUnit returns the cost expressed as a per-unit Amount, dividing a total
// cost by the posting quantity when Kind is CostTotal.
func (c Cost) PerUnit(quantity decimal.Decimal) Amount {
	if c.Kind == CostPerUnit || quantity.IsZero() {
		return c.Amount
	}
	return Amount{Number: c.Amount.Number.Div(quantity), Commodity: c.Amount.Commodity}
}

// PriceAnnotation is the optional `@`/`@@` price annotation on a posting.
// Named distinctly from the Price directive, which records a standalone
// dated exchange rate rather than a per-posting annotation.
type PriceAnnotation struct {
	Kind   CostKind
	Amount Amount
}

func (p PriceAnnotation) PerUnit(quantity decimal.Decimal) Amount {
	if p.Kind == CostPerUnit || quantity.IsZero() {
		return p.Amount
	}
	return Amount{Number: p.Amount.Number.Div(quantity), Commodity: p.Amount.Commodity}
}
