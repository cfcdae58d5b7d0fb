package report

import (
	"sort"
	"time"

	"github.com/pool-reporter/internal/types"
)

// bucketStart truncates a timestamp to the canonical start of its bucket
// under the given granularity. All bucketing is calendar-aligned in UTC.
func bucketStart(t time.Time, g types.GroupBy) time.Time {
	t = t.UTC()
	switch g {
	case types.GroupByMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case types.GroupByQuarter:
		m := (int(t.Month())-1)/3*3 + 1
		return time.Date(t.Year(), time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	case types.GroupByYear:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// bucketGroup is one populated bucket with its records in chronological order.
type bucketGroup[T any] struct {
	start   time.Time
	records []T
}

// groupByBucket assigns records to buckets and returns the populated buckets
// in ascending chronological order. Buckets without records do not appear.
func groupByBucket[T any](records []T, timestamp func(T) time.Time, g types.GroupBy) []bucketGroup[T] {
	byStart := make(map[time.Time][]T)
	for _, r := range records {
		start := bucketStart(timestamp(r), g)
		byStart[start] = append(byStart[start], r)
	}

	groups := make([]bucketGroup[T], 0, len(byStart))
	for start, recs := range byStart {
		sort.SliceStable(recs, func(i, j int) bool {
			return timestamp(recs[i]).Before(timestamp(recs[j]))
		})
		groups = append(groups, bucketGroup[T]{start: start, records: recs})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].start.Before(groups[j].start)
	})
	return groups
}
