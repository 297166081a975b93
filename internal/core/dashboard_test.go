package core

import (
	"math"
	"testing"
	"time"
)

var testRef = time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComposeEmptyIsCanonical(t *testing.T) {
	for _, records := range [][]ExpenseRecord{nil, {}} {
		s := Compose(records, testRef)

		if s.Total != 0 || s.AvgDailyExpense != 0 || s.CurrentMonthTotal != 0 || s.MoMGrowth != 0 {
			t.Fatalf("empty summary has non-zero scalars: %+v", s)
		}
		if s.CategoryTotals == nil || len(s.CategoryTotals) != 0 {
			t.Fatalf("category_totals = %v, want empty map", s.CategoryTotals)
		}
		if s.TopCategories == nil || len(s.TopCategories) != 0 {
			t.Fatalf("top_categories = %v, want empty list", s.TopCategories)
		}
		if s.RecentExpenses == nil || len(s.RecentExpenses) != 0 {
			t.Fatalf("recent_expenses = %v, want empty list", s.RecentExpenses)
		}
		if len(s.TimeSeries.Daily.Total) != 30 {
			t.Fatalf("daily series length = %d, want 30", len(s.TimeSeries.Daily.Total))
		}
		if len(s.TimeSeries.Weekly.Total) != 12 || len(s.TimeSeries.Monthly.Total) != 12 {
			t.Fatalf("weekly/monthly series lengths = %d/%d, want 12/12",
				len(s.TimeSeries.Weekly.Total), len(s.TimeSeries.Monthly.Total))
		}
		if s.TimeSeries.Daily.Total.Sum() != 0 {
			t.Fatalf("empty daily series not zero-filled")
		}
	}
}

// Scenario A: one record at the reference instant.
func TestComposeSingleRecord(t *testing.T) {
	records := []ExpenseRecord{
		record("1", "42.50", "Food & Dining", testRef.Format(time.RFC3339)),
	}

	s := Compose(records, testRef)

	if s.Total != 42.5 {
		t.Fatalf("total = %v, want 42.5", s.Total)
	}
	if got := s.CategoryTotals["Food & Dining"]; got != 42.5 {
		t.Fatalf("category total = %v, want 42.5", got)
	}
	if len(s.TopCategories) != 1 || s.TopCategories[0] != (CategoryTotal{Category: "Food & Dining", Total: 42.5}) {
		t.Fatalf("top_categories = %+v", s.TopCategories)
	}
	if s.CurrentMonthTotal != 42.5 {
		t.Fatalf("current_month_total = %v, want 42.5", s.CurrentMonthTotal)
	}
	if s.MoMGrowth != 0 {
		t.Fatalf("mom_growth = %v, want 0 (previous month empty)", s.MoMGrowth)
	}
	if !almostEqual(s.AvgDailyExpense, 42.5/30.0) {
		t.Fatalf("avg_daily_expense = %v, want %v", s.AvgDailyExpense, 42.5/30.0)
	}
	if len(s.RecentExpenses) != 1 || s.RecentExpenses[0].ID != "1" {
		t.Fatalf("recent_expenses = %+v", s.RecentExpenses)
	}
}

// Scenario B: consecutive months with totals 100 then 150.
func TestComposeMonthOverMonthGrowth(t *testing.T) {
	records := []ExpenseRecord{
		record("prev", "100", "Shopping", "2025-05-10T00:00:00Z"),
		record("latest", "150", "Shopping", "2025-06-10T00:00:00Z"),
	}

	s := Compose(records, testRef)

	if s.MoMGrowth != 50.0 {
		t.Fatalf("mom_growth = %v, want 50", s.MoMGrowth)
	}
	if s.CurrentMonthTotal != 150.0 {
		t.Fatalf("current_month_total = %v, want 150", s.CurrentMonthTotal)
	}
}

func TestComposeGrowthZeroWhenPreviousEmpty(t *testing.T) {
	records := []ExpenseRecord{
		record("only", "150", "Shopping", "2025-06-10T00:00:00Z"),
	}
	if s := Compose(records, testRef); s.MoMGrowth != 0 {
		t.Fatalf("mom_growth = %v, want 0 when previous bucket total is 0", s.MoMGrowth)
	}
}

func TestComposeNegativeGrowth(t *testing.T) {
	records := []ExpenseRecord{
		record("prev", "200", "Shopping", "2025-05-10T00:00:00Z"),
		record("latest", "150", "Shopping", "2025-06-10T00:00:00Z"),
	}
	if s := Compose(records, testRef); s.MoMGrowth != -25.0 {
		t.Fatalf("mom_growth = %v, want -25", s.MoMGrowth)
	}
}

// Scenario C: 40 days old — outside the daily window, inside the monthly one.
func TestComposeOldRecordWindows(t *testing.T) {
	old := testRef.AddDate(0, 0, -40)
	records := []ExpenseRecord{
		record("old", "33", "Transportation", old.Format(time.RFC3339)),
	}

	s := Compose(records, testRef)

	if s.Total != 33.0 {
		t.Fatalf("total = %v, want 33 (window exclusion must not affect totals)", s.Total)
	}
	if got := s.TimeSeries.Daily.Total.Sum(); got != 0 {
		t.Fatalf("daily sum = %v, want 0 (record is 40 days old)", got)
	}
	if got := s.TimeSeries.Monthly.Total.Sum(); got != 33.0 {
		t.Fatalf("monthly sum = %v, want 33", got)
	}
}

// Scenario D: a non-numeric amount alongside a valid record.
func TestComposeSkipsNonNumericAmount(t *testing.T) {
	records := []ExpenseRecord{
		record("bad", "abc", "Shopping", "2025-06-17T00:00:00Z"),
		record("ok", "10", "Shopping", "2025-06-16T00:00:00Z"),
	}

	s, rep := ComposeDetailed(records, testRef)

	if s.Total != 10.0 {
		t.Fatalf("total = %v, want 10", s.Total)
	}
	if len(rep.Skipped) != 1 || rep.Skipped[0].ID != "bad" {
		t.Fatalf("skip report = %+v, want one entry for record bad", rep.Skipped)
	}
}

func TestComposeGrandTotalEqualsCategorySum(t *testing.T) {
	records := []ExpenseRecord{
		record("1", "10.25", "Food & Dining", "2025-06-01T00:00:00Z"),
		record("2", "5.75", "Transportation", "2025-06-02T00:00:00Z"),
		record("3", "20", "Food & Dining", "2024-01-02T00:00:00Z"), // far outside every window
		record("4", "abc", "Shopping", "2025-06-03T00:00:00Z"),
	}

	s := Compose(records, testRef)

	var categorySum float64
	for _, v := range s.CategoryTotals {
		categorySum += v
	}
	if !almostEqual(s.Total, categorySum) {
		t.Fatalf("total %v != sum of category totals %v", s.Total, categorySum)
	}
	if !almostEqual(s.Total, 36.0) {
		t.Fatalf("total = %v, want 36", s.Total)
	}
}

func TestComposeRecentExpenses(t *testing.T) {
	// Delivered oldest-first to exercise the defensive resort.
	records := []ExpenseRecord{
		record("a", "1", "Shopping", "2025-06-10T00:00:00Z"),
		record("b", "1", "Shopping", "2025-06-11T00:00:00Z"),
		record("c", "1", "Shopping", "2025-06-12T00:00:00Z"),
		record("d", "1", "Shopping", "2025-06-13T00:00:00Z"),
		record("e", "1", "Shopping", "2025-06-14T00:00:00Z"),
		record("f", "1", "Shopping", "2025-06-15T00:00:00Z"),
		record("g", "1", "Shopping", "garbage"),
	}

	s := Compose(records, testRef)

	if len(s.RecentExpenses) != 5 {
		t.Fatalf("recent length = %d, want 5", len(s.RecentExpenses))
	}
	wantOrder := []string{"f", "e", "d", "c", "b"}
	for i, r := range s.RecentExpenses {
		if r.ID != wantOrder[i] {
			t.Fatalf("recent[%d] = %q, want %q", i, r.ID, wantOrder[i])
		}
	}
}

func TestComposeSharesReferenceAcrossGranularities(t *testing.T) {
	s := Compose([]ExpenseRecord{
		record("1", "5", "Shopping", testRef.Format(time.RFC3339)),
	}, testRef)

	daily := s.TimeSeries.Daily.Total
	weekly := s.TimeSeries.Weekly.Total
	monthly := s.TimeSeries.Monthly.Total

	if daily[len(daily)-1].Bucket != BucketKeyFor(testRef, Daily) {
		t.Fatalf("daily newest bucket = %q", daily[len(daily)-1].Bucket)
	}
	if weekly[len(weekly)-1].Bucket != BucketKeyFor(testRef, Weekly) {
		t.Fatalf("weekly newest bucket = %q", weekly[len(weekly)-1].Bucket)
	}
	if monthly[len(monthly)-1].Bucket != BucketKeyFor(testRef, Monthly) {
		t.Fatalf("monthly newest bucket = %q", monthly[len(monthly)-1].Bucket)
	}
	// The single record must land in the newest bucket of each series.
	for _, series := range []TimeSeries{daily, weekly, monthly} {
		if series[len(series)-1].Amount != 5.0 {
			t.Fatalf("record missing from newest bucket: %+v", series[len(series)-1])
		}
	}
}

func TestComposeCategorySeriesCoversObservedCategories(t *testing.T) {
	records := []ExpenseRecord{
		record("1", "5", "Food & Dining", "2025-06-10T00:00:00Z"),
		record("2", "5", "Misc", "2025-06-11T00:00:00Z"),
	}

	s := Compose(records, testRef)

	for _, g := range []GranularitySeries{s.TimeSeries.Daily, s.TimeSeries.Weekly, s.TimeSeries.Monthly} {
		if len(g.ByCategory) != 2 {
			t.Fatalf("by_category size = %d, want 2", len(g.ByCategory))
		}
		for name, series := range g.ByCategory {
			if len(series) != len(g.Total) {
				t.Fatalf("category %q series length %d != total length %d", name, len(series), len(g.Total))
			}
		}
	}
}
