package selectors

import (
	"fmt"
	"sort"
	"time"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

// HourBucket counts bales recorded within one hour of the day
type HourBucket struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TodayThroughput counts bales recorded since local midnight in now's location
func TodayThroughput(bales []entities.Bale, now time.Time) int {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	count := 0
	for _, b := range bales {
		if !b.Timestamp.Before(midnight) {
			count++
		}
	}
	return count
}

// ThroughputSeries buckets the last `hours` of bales by hour of day in now's
// location. Readings from different days that share an hour fall in one bucket.
func ThroughputSeries(bales []entities.Bale, hours int, now time.Time) []HourBucket {
	cutoff := now.Add(-time.Duration(hours) * time.Hour)
	counts := make(map[int]int)
	for _, b := range bales {
		if b.Timestamp.Before(cutoff) {
			continue
		}
		counts[b.Timestamp.In(now.Location()).Hour()]++
	}

	buckets := make([]HourBucket, 0, len(counts))
	for h, n := range counts {
		buckets = append(buckets, HourBucket{Hour: h, Label: fmt.Sprintf("%d:00", h), Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Hour < buckets[j].Hour })
	return buckets
}
