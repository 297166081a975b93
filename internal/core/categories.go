package core

import "sort"

// DefaultTopCategories is the ranking length used by the dashboard.
const DefaultTopCategories = 5

// CategoryTotal is one entry of a category ranking.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// CategoryTotals holds per-category sums keyed by the literal category
// string found on each record, remembering first-encounter order so that
// equal totals rank deterministically.
type CategoryTotals struct {
	totals map[string]float64
	order  []string
}

// TotalsByCategory sums record amounts grouped by category. Categories
// are taken as-is, with no normalization against the fixed taxonomy.
// Records whose amount does not coerce are skipped.
func TotalsByCategory(records []ExpenseRecord) *CategoryTotals {
	ct := &CategoryTotals{totals: make(map[string]float64)}
	for _, r := range records {
		amount, err := r.Amount.Value()
		if err != nil {
			continue
		}
		if _, seen := ct.totals[r.Category]; !seen {
			ct.order = append(ct.order, r.Category)
		}
		ct.totals[r.Category] += amount
	}
	return ct
}

// Map returns the category→total mapping as a plain map.
func (ct *CategoryTotals) Map() map[string]float64 {
	m := make(map[string]float64, len(ct.totals))
	for k, v := range ct.totals {
		m[k] = v
	}
	return m
}

// Sum returns the grand total across all categories.
func (ct *CategoryTotals) Sum() float64 {
	var sum float64
	for _, v := range ct.totals {
		sum += v
	}
	return sum
}

// TopN ranks categories descending by total, ties broken by the order
// categories were first encountered (stable sort), truncated to n.
func (ct *CategoryTotals) TopN(n int) []CategoryTotal {
	ranked := make([]CategoryTotal, 0, len(ct.order))
	for _, c := range ct.order {
		ranked = append(ranked, CategoryTotal{Category: c, Total: ct.totals[c]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
