package selectors

import "github.com/vsinha/baleyard/pkg/domain/entities"

// OccupiedCount counts the live slots of a pyramid
func OccupiedCount(pyramid entities.Pyramid, slots []entities.Slot) int {
	n := 0
	for _, s := range slots {
		if s.PyramidID == pyramid.PyramidID && s.Occupied() {
			n++
		}
	}
	return n
}

// PyramidOccupancy returns the occupied share of a pyramid as a percentage
func PyramidOccupancy(pyramid entities.Pyramid, slots []entities.Slot) float64 {
	if pyramid.Capacity <= 0 {
		return 0
	}
	return float64(OccupiedCount(pyramid, slots)) / float64(pyramid.Capacity) * 100
}
