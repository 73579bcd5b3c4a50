// Package stats derives read-only financial summaries from the full
// transaction set. Nothing here is maintained incrementally: every function
// recomputes from scratch against a caller-supplied reference time, so
// results are deterministic for a given transaction set and instant.
package stats

import (
	"math"
	"sort"
	"time"

	"kharcha/internal/core"
)

// Summary is the balance card: all-time balance plus the current calendar
// month's totals.
type Summary struct {
	Balance         float64 `json:"balance"`
	MonthlyIncome   float64 `json:"monthlyIncome"`
	MonthlyExpenses float64 `json:"monthlyExpenses"`
	Savings         float64 `json:"savings"`
	SavingsRate     float64 `json:"savingsRate"`
}

// CategoryShare is one category's slice of a spending total.
type CategoryShare struct {
	CategoryID int64   `json:"categoryId"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon"`
	Amount     float64 `json:"amount"`
	Percentage int     `json:"percentage"`
}

// MonthTotal is one bar of the month-over-month comparison.
type MonthTotal struct {
	Month        string  `json:"month"`
	Year         int     `json:"year"`
	Amount       float64 `json:"amount"`
	CurrentMonth bool    `json:"isCurrentMonth"`
}

const (
	RangeMonth Range = "month"
	RangeYear  Range = "year"
)

// Range selects the breakdown window: the current calendar month or the
// current calendar year. Not a rolling window.
type Range string

func (r Range) Valid() bool {
	return r == RangeMonth || r == RangeYear
}

// Balance is the signed sum over all transactions: income adds, expense
// subtracts. Insertion order does not matter.
func Balance(txs []core.Transaction) float64 {
	var sum float64
	for _, t := range txs {
		if t.Type == core.Income {
			sum += t.Amount
		} else {
			sum -= t.Amount
		}
	}
	return sum
}

// Summarize computes the balance and the calendar-month totals for the month
// containing now.
func Summarize(txs []core.Transaction, now time.Time) Summary {
	s := Summary{Balance: Balance(txs)}
	for _, t := range txs {
		if !sameMonth(t.Date, now) {
			continue
		}
		if t.Type == core.Income {
			s.MonthlyIncome += t.Amount
		} else {
			s.MonthlyExpenses += t.Amount
		}
	}
	s.Savings = s.MonthlyIncome - s.MonthlyExpenses
	if s.MonthlyIncome > 0 {
		s.SavingsRate = s.Savings / s.MonthlyIncome * 100
	}
	return s
}

// TopCategories returns the top 3 expense categories of the current calendar
// month, descending by spend, each with its share of the month's total
// expenses. Categories without spend are omitted; shares are 0 when the
// month's expenses are 0.
func TopCategories(txs []core.Transaction, cats []core.Category, now time.Time) []CategoryShare {
	totals := make(map[int64]float64)
	var monthTotal float64
	for _, t := range txs {
		if t.Type != core.Expense || !sameMonth(t.Date, now) {
			continue
		}
		totals[t.CategoryID] += t.Amount
		monthTotal += t.Amount
	}

	var shares []CategoryShare
	for _, c := range cats {
		if c.Type != core.Expense {
			continue
		}
		amount := totals[c.ID]
		if amount <= 0 {
			continue
		}
		shares = append(shares, CategoryShare{
			CategoryID: c.ID,
			Name:       c.Name,
			Icon:       c.Icon,
			Amount:     amount,
			Percentage: percentage(amount, monthTotal),
		})
	}
	sortShares(shares)
	if len(shares) > 3 {
		shares = shares[:3]
	}
	return shares
}

// Breakdown groups expense transactions of the selected range by category and
// expresses each group as a rounded percentage of the range total, descending
// by amount. Transactions whose category no longer exists are grouped under
// "Other" (categoryId 0).
func Breakdown(txs []core.Transaction, cats []core.Category, rng Range, now time.Time) []CategoryShare {
	inRange := func(d time.Time) bool {
		if rng == RangeYear {
			return d.Year() == now.Year()
		}
		return sameMonth(d, now)
	}

	totals := make(map[int64]float64)
	var rangeTotal float64
	for _, t := range txs {
		if t.Type != core.Expense || !inRange(t.Date) {
			continue
		}
		totals[t.CategoryID] += t.Amount
		rangeTotal += t.Amount
	}

	byID := make(map[int64]core.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	shares := make([]CategoryShare, 0, len(totals))
	for id, amount := range totals {
		share := CategoryShare{
			CategoryID: id,
			Name:       "Other",
			Amount:     amount,
			Percentage: percentage(amount, rangeTotal),
		}
		if c, ok := byID[id]; ok {
			share.Name = c.Name
			share.Icon = c.Icon
		} else {
			share.CategoryID = 0
		}
		shares = append(shares, share)
	}
	sortShares(shares)
	return shares
}

// MonthlyComparison sums expense transactions for the most recent 5 calendar
// months, current month included, in chronological order.
func MonthlyComparison(txs []core.Transaction, now time.Time) []MonthTotal {
	out := make([]MonthTotal, 0, 5)
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 4; i >= 0; i-- {
		start := thisMonth.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		var total float64
		for _, t := range txs {
			if t.Type == core.Expense && !t.Date.Before(start) && t.Date.Before(end) {
				total += t.Amount
			}
		}
		out = append(out, MonthTotal{
			Month:        start.Format("Jan"),
			Year:         start.Year(),
			Amount:       total,
			CurrentMonth: i == 0,
		})
	}
	return out
}

func sameMonth(d, now time.Time) bool {
	return d.Year() == now.Year() && d.Month() == now.Month()
}

// percentage rounds amount/total to the nearest whole percent; 0 when the
// total is 0, never NaN.
func percentage(amount, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(amount / total * 100))
}

// sortShares orders by amount descending, name ascending on ties so output
// is stable for equal spends.
func sortShares(shares []CategoryShare) {
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount != shares[j].Amount {
			return shares[i].Amount > shares[j].Amount
		}
		return shares[i].Name < shares[j].Name
	})
}
