package core

import (
	"sort"
	"time"
)

const recentExpenseLimit = 5

// GranularitySeries pairs the unfiltered series with its per-category
// breakdown for one granularity.
type GranularitySeries struct {
	Total      TimeSeries     `json:"total"`
	ByCategory CategorySeries `json:"by_category"`
}

// TimeSeriesSet holds the three granularities of one dashboard, all
// computed from the same reference instant.
type TimeSeriesSet struct {
	Daily   GranularitySeries `json:"daily"`
	Weekly  GranularitySeries `json:"weekly"`
	Monthly GranularitySeries `json:"monthly"`
}

// DashboardSummary is the composed dashboard payload. The field names
// are a wire contract shared with the presentation layer and with
// persisted snapshots.
type DashboardSummary struct {
	Total             float64            `json:"total"`
	CategoryTotals    map[string]float64 `json:"category_totals"`
	TopCategories     []CategoryTotal    `json:"top_categories"`
	TimeSeries        TimeSeriesSet      `json:"time_series"`
	RecentExpenses    []ExpenseRecord    `json:"recent_expenses"`
	AvgDailyExpense   float64            `json:"avg_daily_expense"`
	CurrentMonthTotal float64            `json:"current_month_total"`
	MoMGrowth         float64            `json:"mom_growth"`
}

// RecordSkip names a record the composer could not fully use and why.
type RecordSkip struct {
	ID     string
	Reason string
}

// ComposeReport carries skip reasons out of a composition so the
// surrounding system can log them; the composer itself never logs.
type ComposeReport struct {
	Skipped []RecordSkip
}

// EmptySummary returns the canonical no-data dashboard: all totals zero,
// every series zero-filled to its fixed window length, all lists empty.
// Callers can destructure it without special-casing "no data".
func EmptySummary(ref time.Time) DashboardSummary {
	return DashboardSummary{
		CategoryTotals: map[string]float64{},
		TopCategories:  []CategoryTotal{},
		TimeSeries: TimeSeriesSet{
			Daily:   GranularitySeries{Total: zeroSeries(GenerateBuckets(ref, Daily)), ByCategory: CategorySeries{}},
			Weekly:  GranularitySeries{Total: zeroSeries(GenerateBuckets(ref, Weekly)), ByCategory: CategorySeries{}},
			Monthly: GranularitySeries{Total: zeroSeries(GenerateBuckets(ref, Monthly)), ByCategory: CategorySeries{}},
		},
		RecentExpenses: []ExpenseRecord{},
	}
}

// Compose builds the dashboard summary for records at the given
// reference instant. It never fails: empty or nil input yields the
// canonical empty summary, malformed records are skipped individually,
// and any unexpected internal failure degrades to the canonical empty
// summary as well.
func Compose(records []ExpenseRecord, ref time.Time) DashboardSummary {
	summary, _ := ComposeDetailed(records, ref)
	return summary
}

// ComposeDetailed is Compose plus a report of the records that were
// skipped during coercion, for the caller to log.
func ComposeDetailed(records []ExpenseRecord, ref time.Time) (summary DashboardSummary, report ComposeReport) {
	defer func() {
		if r := recover(); r != nil {
			summary = EmptySummary(ref)
			report = ComposeReport{}
		}
	}()

	if len(records) == 0 {
		return EmptySummary(ref), ComposeReport{}
	}

	report = auditRecords(records)

	totals := TotalsByCategory(records)

	summary = DashboardSummary{
		Total:          totals.Sum(),
		CategoryTotals: totals.Map(),
		TopCategories:  totals.TopN(DefaultTopCategories),
		RecentExpenses: recentRecords(records, recentExpenseLimit),
	}

	for _, g := range []Granularity{Daily, Weekly, Monthly} {
		keys := GenerateBuckets(ref, g)
		total, byCategory := AggregateSeries(records, keys, g)
		series := GranularitySeries{Total: total, ByCategory: byCategory}
		switch g {
		case Daily:
			summary.TimeSeries.Daily = series
		case Weekly:
			summary.TimeSeries.Weekly = series
		case Monthly:
			summary.TimeSeries.Monthly = series
		}
	}

	daily := summary.TimeSeries.Daily.Total
	if len(daily) > 0 {
		summary.AvgDailyExpense = daily.Sum() / float64(Daily.BucketCount())
	}

	monthly := summary.TimeSeries.Monthly.Total
	summary.CurrentMonthTotal = monthly.At(BucketKeyFor(ref, Monthly))
	summary.MoMGrowth = monthOverMonthGrowth(monthly)

	return summary, report
}

// monthOverMonthGrowth computes the percentage change between the two
// most recent monthly buckets. It is 0 when fewer than two buckets exist
// or the previous bucket total is 0; a genuinely empty prior month is
// indistinguishable from a zero-spend month here.
func monthOverMonthGrowth(monthly TimeSeries) float64 {
	if len(monthly) < 2 {
		return 0
	}
	latest := monthly[len(monthly)-1].Amount
	previous := monthly[len(monthly)-2].Amount
	if previous <= 0 {
		return 0
	}
	return (latest - previous) / previous * 100
}

// recentRecords sorts defensively by created_at descending and takes the
// first n. Record sources usually deliver newest-first already, but that
// ordering is not assumed. Records with unparseable timestamps sort last.
func recentRecords(records []ExpenseRecord, n int) []ExpenseRecord {
	type entry struct {
		rec ExpenseRecord
		at  time.Time
		ok  bool
	}
	entries := make([]entry, len(records))
	for i, r := range records {
		t, err := ParseCreatedAt(r.CreatedAt)
		entries[i] = entry{rec: r, at: t, ok: err == nil}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ok != entries[j].ok {
			return entries[i].ok
		}
		return entries[i].at.After(entries[j].at)
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	recent := make([]ExpenseRecord, len(entries))
	for i, e := range entries {
		recent[i] = e.rec
	}
	return recent
}

// auditRecords collects a skip reason for every field coercion that
// would exclude a record from some aggregate.
func auditRecords(records []ExpenseRecord) ComposeReport {
	var report ComposeReport
	for _, r := range records {
		if _, err := r.Amount.Value(); err != nil {
			report.Skipped = append(report.Skipped, RecordSkip{ID: r.ID, Reason: err.Error()})
			continue
		}
		if _, err := ParseCreatedAt(r.CreatedAt); err != nil {
			report.Skipped = append(report.Skipped, RecordSkip{ID: r.ID, Reason: err.Error()})
		}
	}
	return report
}
