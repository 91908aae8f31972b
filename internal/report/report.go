// Package report computes read-side aggregates over transactions and
// budget goals. Everything here is a pure function of its inputs: nothing
// mutates stored state, and all arithmetic stays in the exact decimal
// domain. Ignored transactions are excluded from every figure.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

const monthKeyLayout = "2006-01"

// CategoryTotals sums expense amounts by category over non-ignored
// transactions.
func CategoryTotals(txs []core.Transaction) map[string]core.Money {
	totals := make(map[string]core.Money)
	for _, t := range txs {
		if t.Ignored || !t.IsExpense() {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}
	return totals
}

// BudgetSummary contrasts configured monthly goals against actuals for one
// month. Goals are partitioned into income and expense buckets by each
// category's tags: an income-like tag puts the goal on the income side.
type BudgetSummary struct {
	BudgetIncome  core.Money
	BudgetExpense core.Money
	ActualIncome  core.Money
	ActualExpense core.Money
}

func (s BudgetSummary) BudgetBalance() core.Money {
	return s.BudgetIncome.Sub(s.BudgetExpense)
}

func (s BudgetSummary) ActualBalance() core.Money {
	return s.ActualIncome.Sub(s.ActualExpense)
}

// BudgetVsActual builds the month's summary from the configured goals,
// the category tags, and the month's transactions.
func BudgetVsActual(goals map[string]core.Money, tags map[string]string, monthTxs []core.Transaction) BudgetSummary {
	var s BudgetSummary
	for category, goal := range goals {
		if core.TagsContainIncome(tags[category]) {
			s.BudgetIncome = s.BudgetIncome.Add(goal)
		} else {
			s.BudgetExpense = s.BudgetExpense.Add(goal)
		}
	}
	for _, t := range monthTxs {
		if t.Ignored {
			continue
		}
		if t.IsIncome() {
			s.ActualIncome = s.ActualIncome.Add(t.Amount)
		} else if t.IsExpense() {
			s.ActualExpense = s.ActualExpense.Add(t.Amount)
		}
	}
	return s
}

// YearRow is one line of a year-over-year comparison. PercentChange is nil
// when the prior year's total is exactly zero; Percent renders that as
// "N/A" rather than dividing.
type YearRow struct {
	Category      string
	Previous      core.Money
	Current       core.Money
	Difference    core.Money
	PercentChange *decimal.Decimal
}

// Percent renders the change with a sign and one fraction digit, or "N/A"
// when the prior year total was zero.
func (r YearRow) Percent() string {
	if r.PercentChange == nil {
		return "N/A"
	}
	s := r.PercentChange.StringFixed(1)
	if !r.PercentChange.IsNegative() {
		s = "+" + s
	}
	return s + "%"
}

// YearOverYear compares expense totals between two consecutive years.
// When category is empty every category present in either year gets a row,
// sorted by name; otherwise only that category is compared. The returned
// total row aggregates the compared rows.
func YearOverYear(prevTxs, curTxs []core.Transaction, category string) (rows []YearRow, total YearRow) {
	prevTotals := CategoryTotals(prevTxs)
	curTotals := CategoryTotals(curTxs)

	names := make(map[string]struct{})
	if category != "" {
		names[category] = struct{}{}
	} else {
		for name := range prevTotals {
			names[name] = struct{}{}
		}
		for name := range curTotals {
			names[name] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	for _, name := range sorted {
		rows = append(rows, newYearRow(name, prevTotals[name], curTotals[name]))
		total.Previous = total.Previous.Add(prevTotals[name])
		total.Current = total.Current.Add(curTotals[name])
	}

	total = newYearRow("Total", total.Previous, total.Current)
	return rows, total
}

func newYearRow(name string, prev, cur core.Money) YearRow {
	row := YearRow{
		Category:   name,
		Previous:   prev,
		Current:    cur,
		Difference: cur.Sub(prev),
	}
	if pct, ok := core.PercentChange(prev, cur); ok {
		row.PercentChange = &pct
	}
	return row
}

// Projection is one step of a forward budget extrapolation.
type Projection struct {
	Month string // YYYY-MM
	Net   core.Money
}

// ProjectForward accumulates the constant per-month net implied by the
// configured goals (income goals minus expense goals) over months
// successive calendar months starting at from, from a zero baseline. It is
// a deterministic linear extrapolation, not a forecast.
func ProjectForward(goals map[string]core.Money, tags map[string]string, from time.Time, months int) []Projection {
	var net core.Money
	for category, goal := range goals {
		if core.TagsContainIncome(tags[category]) {
			net = net.Add(goal)
		} else {
			net = net.Sub(goal)
		}
	}

	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())
	var running core.Money
	projections := make([]Projection, 0, months)
	for i := 0; i < months; i++ {
		running = running.Add(net)
		projections = append(projections, Projection{
			Month: start.AddDate(0, i, 0).Format(monthKeyLayout),
			Net:   running,
		})
	}
	return projections
}

// MonthlyNet returns the net cash flow (income minus expenses) per
// calendar month, keyed YYYY-MM. An empty category means all categories.
func MonthlyNet(txs []core.Transaction, category string) map[string]core.Money {
	totals := make(map[string]core.Money)
	for _, t := range txs {
		if t.Ignored {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		key := t.Date.Format(monthKeyLayout)
		if t.IsExpense() {
			totals[key] = totals[key].Sub(t.Amount)
		} else {
			totals[key] = totals[key].Add(t.Amount)
		}
	}
	return totals
}
