package ledger

import (
	"sort"

	"github.com/ledgerfile/ledgerfile/ast"
)

// computeStats derives the monthly net-worth/income/expense series the
// Snapshot exposes (spec §3 "derived statistics ... by day/month"), summed
// across every commodity's posting amounts for accounts under the Assets,
// Income, and Expenses root types.
func (e *Evaluator) computeStats() []MonthlyStat {
	byMonth := make(map[string]*MonthlyStat)
	order := func(month string) *MonthlyStat {
		s, ok := byMonth[month]
		if !ok {
			s = &MonthlyStat{Month: month}
			byMonth[month] = s
		}
		return s
	}

	for _, t := range e.journal {
		month := t.Date.Time.Format("2006-01")
		s := order(month)
		for _, p := range t.Postings {
			if p.Amount == nil {
				continue
			}
			switch p.Account.Root() {
			case ast.Assets:
				s.Assets = s.Assets.Add(p.Amount.Number)
			case ast.Income:
				s.Income = s.Income.Add(p.Amount.Number)
			case ast.Expenses:
				s.Expense = s.Expense.Add(p.Amount.Number)
			}
		}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthlyStat, 0, len(months))
	running := MonthlyStat{}
	for _, m := range months {
		s := byMonth[m]
		running.Assets = running.Assets.Add(s.Assets)
		running.Income = running.Income.Add(s.Income)
		running.Expense = running.Expense.Add(s.Expense)
		out = append(out, MonthlyStat{
			Month:   m,
			Assets:  running.Assets,
			Income:  running.Income,
			Expense: running.Expense,
		})
	}
	return out
}
