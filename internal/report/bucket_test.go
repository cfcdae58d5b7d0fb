package report

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/pool-reporter/internal/types"
)

func TestBucketStart(t *testing.T) {
	at := time.Date(2024, time.November, 14, 22, 11, 29, 776000000, time.UTC)

	tests := []struct {
		groupBy types.GroupBy
		want    time.Time
	}{
		{types.GroupByDay, time.Date(2024, time.November, 14, 0, 0, 0, 0, time.UTC)},
		{types.GroupByMonth, time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)},
		{types.GroupByQuarter, time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)},
		{types.GroupByYear, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(string(tt.groupBy), func(t *testing.T) {
			if got := bucketStart(at, tt.groupBy); !got.Equal(tt.want) {
				t.Errorf("bucketStart(%s) = %s, want %s", tt.groupBy, got, tt.want)
			}
		})
	}
}

func TestBucketStartNormalizesToUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	// 23:30 EST on Nov 14 is already Nov 15 in UTC; the bucket follows UTC.
	at := time.Date(2024, time.November, 14, 23, 30, 0, 0, est)
	want := time.Date(2024, time.November, 15, 0, 0, 0, 0, time.UTC)
	if got := bucketStart(at, types.GroupByDay); !got.Equal(want) {
		t.Errorf("bucketStart = %s, want %s", got, want)
	}
}

func TestGroupByBucketOrdering(t *testing.T) {
	// Out-of-order inputs across three days.
	times := []time.Time{
		time.Date(2024, time.November, 5, 10, 0, 0, 0, time.UTC),
		time.Date(2024, time.November, 3, 15, 0, 0, 0, time.UTC),
		time.Date(2024, time.November, 5, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.November, 4, 1, 0, 0, 0, time.UTC),
	}
	groups := groupByBucket(times, func(t time.Time) time.Time { return t }, types.GroupByDay)

	if len(groups) != 3 {
		t.Fatalf("got %d buckets, want 3", len(groups))
	}
	for i := 1; i < len(groups); i++ {
		if !groups[i-1].start.Before(groups[i].start) {
			t.Errorf("bucket %d start %s not before bucket %d start %s",
				i-1, groups[i-1].start, i, groups[i].start)
		}
	}
	// Records inside a bucket are chronological.
	nov5 := groups[2]
	if !nov5.records[0].Before(nov5.records[1]) {
		t.Error("records within bucket not in chronological order")
	}
}

func TestGroupByBucketProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genTimes := gen.SliceOf(gen.Int64Range(0, 4102444800).Map(func(s int64) time.Time {
		return time.Unix(s, 0).UTC()
	}))
	genGroupBy := gen.OneConstOf(
		types.GroupByDay, types.GroupByMonth, types.GroupByQuarter, types.GroupByYear)

	identity := func(t time.Time) time.Time { return t }

	properties.Property("every record lands in the bucket of its own start", prop.ForAll(
		func(times []time.Time, g types.GroupBy) bool {
			for _, group := range groupByBucket(times, identity, g) {
				for _, r := range group.records {
					if !bucketStart(r, g).Equal(group.start) {
						return false
					}
				}
			}
			return true
		}, genTimes, genGroupBy))

	properties.Property("no record is dropped or duplicated", prop.ForAll(
		func(times []time.Time, g types.GroupBy) bool {
			total := 0
			for _, group := range groupByBucket(times, identity, g) {
				total += len(group.records)
			}
			return total == len(times)
		}, genTimes, genGroupBy))

	properties.Property("bucketStart is idempotent", prop.ForAll(
		func(times []time.Time, g types.GroupBy) bool {
			for _, ts := range times {
				start := bucketStart(ts, g)
				if !bucketStart(start, g).Equal(start) {
					return false
				}
			}
			return true
		}, genTimes, genGroupBy))

	properties.TestingRun(t)
}
