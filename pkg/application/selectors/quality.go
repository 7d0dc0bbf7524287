package selectors

import (
	"sort"
	"time"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

// MoisturePoint is one reading on the moisture trend chart
type MoisturePoint struct {
	BaleID      string            `json:"baleId"`
	Timestamp   time.Time         `json:"ts"`
	MoisturePct float64           `json:"moisturePct"`
	Decision    entities.Decision `json:"decision"`
}

// FailRate returns the percentage of failed bales recorded in the last windowHours
func FailRate(bales []entities.Bale, windowHours int, now time.Time) float64 {
	cutoff := now.Add(-time.Duration(windowHours) * time.Hour)
	total, failed := 0, 0
	for _, b := range bales {
		if b.Timestamp.Before(cutoff) {
			continue
		}
		total++
		if b.Decision == entities.DecisionFail {
			failed++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(failed) / float64(total) * 100
}

// MoistureSeries returns the last limit readings in insertion order, ordered by timestamp
func MoistureSeries(bales []entities.Bale, limit int) []MoisturePoint {
	if limit <= 0 {
		return []MoisturePoint{}
	}
	start := 0
	if len(bales) > limit {
		start = len(bales) - limit
	}

	points := make([]MoisturePoint, 0, len(bales)-start)
	for _, b := range bales[start:] {
		points = append(points, MoisturePoint{
			BaleID:      b.BaleID,
			Timestamp:   b.Timestamp,
			MoisturePct: b.MoisturePct,
			Decision:    b.Decision,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}
