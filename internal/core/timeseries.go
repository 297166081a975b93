package core

// SeriesPoint is one bucket of a time series.
type SeriesPoint struct {
	Bucket string  `json:"bucket"`
	Amount float64 `json:"amount"`
}

// TimeSeries is an ordered, zero-filled sequence of bucket totals,
// oldest bucket first.
type TimeSeries []SeriesPoint

// Sum returns the total amount across all buckets.
func (ts TimeSeries) Sum() float64 {
	var sum float64
	for _, p := range ts {
		sum += p.Amount
	}
	return sum
}

// At returns the amount of the bucket with the given key, or 0 if the
// key is not part of the series.
func (ts TimeSeries) At(bucket string) float64 {
	for _, p := range ts {
		if p.Bucket == bucket {
			return p.Amount
		}
	}
	return 0
}

// CategorySeries maps a category label to the time series restricted to
// that category's records. The key set is the set of categories observed
// in the aggregated records, not the fixed taxonomy.
type CategorySeries map[string]TimeSeries

func zeroSeries(keys []string) TimeSeries {
	series := make(TimeSeries, len(keys))
	for i, k := range keys {
		series[i] = SeriesPoint{Bucket: k}
	}
	return series
}

// AggregateSeries buckets records into keys at granularity g, returning
// the unfiltered totals and the per-category breakdown. Every key starts
// at zero in every series; key order is preserved exactly as given.
// Records whose bucket key is not among keys fall outside the lookback
// window and are silently excluded. Records whose timestamp or amount
// does not coerce are skipped individually; a malformed record never
// aborts the aggregation.
func AggregateSeries(records []ExpenseRecord, keys []string, g Granularity) (TimeSeries, CategorySeries) {
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}

	total := zeroSeries(keys)
	byCategory := make(CategorySeries)
	for _, r := range records {
		if _, ok := byCategory[r.Category]; !ok {
			byCategory[r.Category] = zeroSeries(keys)
		}
	}

	for _, r := range records {
		created, err := ParseCreatedAt(r.CreatedAt)
		if err != nil {
			continue
		}
		amount, err := r.Amount.Value()
		if err != nil {
			continue
		}
		i, ok := index[BucketKeyFor(created, g)]
		if !ok {
			continue
		}
		total[i].Amount += amount
		byCategory[r.Category][i].Amount += amount
	}

	return total, byCategory
}
