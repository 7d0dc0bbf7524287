package services

import (
	"fmt"
	"time"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

// Placement is the pair of records produced by putting a bale into a slot
type Placement struct {
	Bale entities.Bale
	Slot entities.Slot
}

// occupiedCoords collects the coordinates of the pyramid's live slots
func occupiedCoords(pyramidID string, slots []entities.Slot) map[entities.Coord]bool {
	occupied := make(map[entities.Coord]bool)
	for _, s := range slots {
		if s.PyramidID == pyramidID && s.Occupied() {
			occupied[s.Coord()] = true
		}
	}
	return occupied
}

// FindAvailableSlot returns the first free coordinate scanning z, then y, then x ascending
func FindAvailableSlot(pyramid entities.Pyramid, slots []entities.Slot) (entities.Coord, bool) {
	occupied := occupiedCoords(pyramid.PyramidID, slots)

	for z := 0; z < pyramid.Shape.Z; z++ {
		for y := 0; y < pyramid.Shape.Y; y++ {
			for x := 0; x < pyramid.Shape.X; x++ {
				c := entities.Coord{X: x, Y: y, Z: z}
				if !occupied[c] {
					return c, true
				}
			}
		}
	}
	return entities.Coord{}, false
}

// CheckPlacementEligibility verifies the bale may go into the pyramid as the requested grade
func CheckPlacementEligibility(bale entities.Bale, pyramid entities.Pyramid, grade entities.Grade) error {
	if bale.Decision != entities.DecisionPass {
		return fmt.Errorf("bale %s: %w", bale.BaleID, ErrBaleNotPassed)
	}
	if bale.Stored() {
		return fmt.Errorf("bale %s in %s: %w", bale.BaleID, bale.SlotID(), ErrBaleAlreadyPlaced)
	}
	if pyramid.Status != entities.PyramidActive {
		return fmt.Errorf("pyramid %s: %w", pyramid.PyramidID, ErrPyramidLocked)
	}
	if pyramid.QualityGrade != grade {
		return fmt.Errorf("pyramid %s holds grade %s, requested %s: %w",
			pyramid.PyramidID, pyramid.QualityGrade, grade, ErrGradeMismatch)
	}
	return nil
}

// PlaceBaleToPyramid assigns the bale to coord in the pyramid.
// The returned slot reuses an existing emptied record for the coordinate when present.
func PlaceBaleToPyramid(
	bale entities.Bale,
	pyramid entities.Pyramid,
	grade entities.Grade,
	coord entities.Coord,
	slots []entities.Slot,
	now time.Time,
) (Placement, error) {
	if err := CheckPlacementEligibility(bale, pyramid, grade); err != nil {
		return Placement{}, err
	}
	if !pyramid.Shape.Contains(coord) {
		return Placement{}, fmt.Errorf("%s in pyramid %s: %w", coord, pyramid.PyramidID, ErrCoordOutOfRange)
	}

	key := entities.SlotKey(pyramid.PyramidID, coord)
	slot := entities.Slot{
		SlotID:    key,
		PyramidID: pyramid.PyramidID,
		X:         coord.X,
		Y:         coord.Y,
		Z:         coord.Z,
	}
	for _, s := range slots {
		if s.SlotID != key {
			continue
		}
		if s.Occupied() {
			return Placement{}, fmt.Errorf("slot %s holds bale %s: %w", key, s.BaleID, ErrSlotOccupied)
		}
		slot = s.Clone()
		break
	}

	placedAt := now
	slot.BaleID = bale.BaleID
	slot.PlacedAt = &placedAt
	slot.EmptiedAt = nil

	placed := bale.Clone()
	placed.PyramidID = pyramid.PyramidID
	c := coord
	placed.Slot = &c

	return Placement{Bale: placed, Slot: slot}, nil
}
