package selectors

import (
	"sort"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

// SelectFEFO picks up to n bales of a grade available for processing, oldest
// first. Bales with equal timestamps keep their collection order.
func SelectFEFO(
	bales []entities.Bale,
	pyramids []entities.Pyramid,
	slots []entities.Slot,
	grade entities.Grade,
	n int,
) []entities.Bale {
	if n <= 0 {
		return []entities.Bale{}
	}
	grades := pyramidGrades(pyramids)

	var candidates []entities.Bale
	for _, b := range AvailableForProcessing(bales, slots) {
		if grades[b.PyramidID] == grade {
			candidates = append(candidates, b)
		}
	}

	// FEFO: first expired, first out
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Timestamp.Before(candidates[j].Timestamp)
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}
