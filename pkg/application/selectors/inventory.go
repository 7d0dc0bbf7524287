package selectors

import (
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/services"
)

func pyramidGrades(pyramids []entities.Pyramid) map[string]entities.Grade {
	grades := make(map[string]entities.Grade, len(pyramids))
	for _, p := range pyramids {
		grades[p.PyramidID] = p.QualityGrade
	}
	return grades
}

func slotIndex(slots []entities.Slot) map[string]entities.Slot {
	idx := make(map[string]entities.Slot, len(slots))
	for _, s := range slots {
		idx[s.SlotID] = s
	}
	return idx
}

func newGradeCounts() map[entities.Grade]int {
	counts := make(map[entities.Grade]int, len(entities.Grades))
	for _, g := range entities.Grades {
		counts[g] = 0
	}
	return counts
}

// OnHandIncludingConsumed counts passed bales with a pyramid assignment per
// pyramid grade. Consumed bales keep their assignment and are still counted.
func OnHandIncludingConsumed(bales []entities.Bale, pyramids []entities.Pyramid) map[entities.Grade]int {
	grades := pyramidGrades(pyramids)
	counts := newGradeCounts()
	for _, b := range bales {
		if b.Decision != entities.DecisionPass || !b.Stored() {
			continue
		}
		if g, ok := grades[b.PyramidID]; ok {
			counts[g]++
		}
	}
	return counts
}

// AvailableForProcessing returns passed, stored bales whose slot has not been emptied
func AvailableForProcessing(bales []entities.Bale, slots []entities.Slot) []entities.Bale {
	idx := slotIndex(slots)
	var out []entities.Bale
	for _, b := range bales {
		if b.Decision != entities.DecisionPass || !b.Stored() {
			continue
		}
		slot, ok := idx[b.SlotID()]
		if !ok || slot.EmptiedAt != nil || slot.BaleID != b.BaleID {
			continue
		}
		out = append(out, b)
	}
	return out
}

// AvailableByGrade counts bales available for processing per pyramid grade
func AvailableByGrade(bales []entities.Bale, pyramids []entities.Pyramid, slots []entities.Slot) map[entities.Grade]int {
	grades := pyramidGrades(pyramids)
	counts := newGradeCounts()
	for _, b := range AvailableForProcessing(bales, slots) {
		if g, ok := grades[b.PyramidID]; ok {
			counts[g]++
		}
	}
	return counts
}

// DaysCoverByGrade converts on-hand stock into days of consumption per grade
func DaysCoverByGrade(bales []entities.Bale, pyramids []entities.Pyramid, dailyUsage map[entities.Grade]int) map[entities.Grade]int {
	onHand := OnHandIncludingConsumed(bales, pyramids)
	cover := make(map[entities.Grade]int, len(onHand))
	for g, n := range onHand {
		cover[g] = services.ComputeDaysCover(n, dailyUsage[g])
	}
	return cover
}

// AvailableDaysCoverByGrade converts stock still available for processing
// into days of consumption per grade. Consumed bales do not count.
func AvailableDaysCoverByGrade(bales []entities.Bale, pyramids []entities.Pyramid, slots []entities.Slot, dailyUsage map[entities.Grade]int) map[entities.Grade]int {
	available := AvailableByGrade(bales, pyramids, slots)
	cover := make(map[entities.Grade]int, len(available))
	for g, n := range available {
		cover[g] = services.ComputeDaysCover(n, dailyUsage[g])
	}
	return cover
}
