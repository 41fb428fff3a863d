package usecase

import (
	"sort"
	"time"
)

// Retention groups archives into day/week/month buckets and keeps the most
// recent N buckets of each granularity. Within a bucket the newest archive
// wins; the winner is chosen by an explicit ascending-order reduction so the
// result is deterministic for any input ordering.

type granularity int

const (
	granDay granularity = iota
	granWeek
	granMonth
)

// bucketKey identifies one retention period. period is day-of-year for day
// buckets, ISO week number for week buckets and month number for month
// buckets; year is the ISO year for week buckets.
type bucketKey struct {
	gran   granularity
	year   int
	period int
}

func dayKey(t time.Time) bucketKey {
	return bucketKey{gran: granDay, year: t.Year(), period: t.YearDay()}
}

func weekKey(t time.Time) bucketKey {
	year, week := t.ISOWeek()
	return bucketKey{gran: granWeek, year: year, period: week}
}

func monthKey(t time.Time) bucketKey {
	return bucketKey{gran: granMonth, year: t.Year(), period: int(t.Month())}
}

// PlanRetention computes the keep-set for the given catalog snapshot. The
// result maps archive names selected by at least one granularity. It is
// recomputed from scratch on every call and never persisted.
func PlanRetention(records []ArchiveRecord, policy RetentionPolicy) map[string]struct{} {
	sorted := make([]ArchiveRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	keep := make(map[string]struct{})
	selectBuckets(sorted, dayKey, policy.Daily, keep)
	selectBuckets(sorted, weekKey, policy.Weekly, keep)
	selectBuckets(sorted, monthKey, policy.Monthly, keep)
	return keep
}

// selectBuckets reduces records into per-bucket winners (later entries
// overwrite earlier ones for the same key), then keeps the winners of the n
// most recent bucket keys. Fewer available buckets than n keeps them all.
func selectBuckets(sorted []ArchiveRecord, keyFn func(time.Time) bucketKey, n int, keep map[string]struct{}) {
	if n <= 0 {
		return
	}

	winners := make(map[bucketKey]string)
	for _, rec := range sorted {
		winners[keyFn(rec.Timestamp)] = rec.Name
	}

	keys := make([]bucketKey, 0, len(winners))
	for k := range winners {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year > keys[j].year
		}
		return keys[i].period > keys[j].period
	})

	if len(keys) > n {
		keys = keys[:n]
	}
	for _, k := range keys {
		keep[winners[k]] = struct{}{}
	}
}
