package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

func cube(id string, grade entities.Grade) entities.Pyramid {
	return entities.Pyramid{
		PyramidID:    id,
		QualityGrade: grade,
		Capacity:     8,
		Status:       entities.PyramidActive,
		Shape:        entities.Shape{X: 2, Y: 2, Z: 2},
	}
}

func passedBale(id string) entities.Bale {
	return entities.Bale{BaleID: id, TruckID: "T1", Decision: entities.DecisionPass}
}

func TestFindAvailableSlot_ScanOrder(t *testing.T) {
	pyramid := cube("P", entities.GradeA)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	expected := []entities.Coord{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1},
	}

	var slots []entities.Slot
	for i, want := range expected {
		got, ok := FindAvailableSlot(pyramid, slots)
		require.True(t, ok, "placement %d", i)
		assert.Equal(t, want, got, "placement %d", i)

		placement, err := PlaceBaleToPyramid(passedBale(string(rune('a'+i))), pyramid, entities.GradeA, got, slots, now)
		require.NoError(t, err)
		slots = append(slots, placement.Slot)
	}

	_, ok := FindAvailableSlot(pyramid, slots)
	assert.False(t, ok, "full pyramid")
}

func TestFindAvailableSlot_RefillsEmptiedSlot(t *testing.T) {
	pyramid := cube("P", entities.GradeA)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	var slots []entities.Slot
	for i := 0; i < 8; i++ {
		c, _ := FindAvailableSlot(pyramid, slots)
		p, err := PlaceBaleToPyramid(passedBale(string(rune('a'+i))), pyramid, entities.GradeA, c, slots, now)
		require.NoError(t, err)
		slots = append(slots, p.Slot)
	}

	emptied := now.Add(time.Hour)
	slots[5].EmptiedAt = &emptied

	c, ok := FindAvailableSlot(pyramid, slots)
	require.True(t, ok)
	assert.Equal(t, entities.Coord{X: 1, Y: 0, Z: 1}, c)

	p, err := PlaceBaleToPyramid(passedBale("z"), pyramid, entities.GradeA, c, slots, emptied)
	require.NoError(t, err)
	assert.Equal(t, slots[5].SlotID, p.Slot.SlotID)
	assert.Equal(t, "z", p.Slot.BaleID)
	assert.Nil(t, p.Slot.EmptiedAt)
	assert.True(t, p.Slot.Occupied())
	assert.NotNil(t, slots[5].EmptiedAt, "input slots are not mutated")
}

func TestFindAvailableSlot_IgnoresOtherPyramids(t *testing.T) {
	now := time.Now()
	other := []entities.Slot{{SlotID: "Q-0-0-0", PyramidID: "Q", BaleID: "x", PlacedAt: &now}}

	c, ok := FindAvailableSlot(cube("P", entities.GradeA), other)
	require.True(t, ok)
	assert.Equal(t, entities.Coord{}, c)
}

func TestPlaceBaleToPyramid_RoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	coord := entities.Coord{X: 1, Y: 0, Z: 1}

	p, err := PlaceBaleToPyramid(passedBale("B1"), cube("P", entities.GradeA), entities.GradeA, coord, nil, now)
	require.NoError(t, err)

	assert.Equal(t, "P", p.Bale.PyramidID)
	require.NotNil(t, p.Bale.Slot)
	assert.Equal(t, coord, *p.Bale.Slot)
	assert.Equal(t, "P-1-0-1", p.Slot.SlotID)
	assert.Equal(t, "B1", p.Slot.BaleID)
	assert.Equal(t, coord, p.Slot.Coord())
	require.NotNil(t, p.Slot.PlacedAt)
	assert.Equal(t, now, *p.Slot.PlacedAt)
	assert.Equal(t, p.Bale.SlotID(), p.Slot.SlotID)
}

func TestPlaceBaleToPyramid_Preconditions(t *testing.T) {
	now := time.Now()
	occupied := []entities.Slot{{SlotID: "P-0-0-0", PyramidID: "P", BaleID: "other", PlacedAt: &now}}

	locked := cube("P", entities.GradeA)
	locked.Status = entities.PyramidLocked

	failed := passedBale("B1")
	failed.Decision = entities.DecisionFail

	stored := passedBale("B1")
	stored.PyramidID = "P"
	stored.Slot = &entities.Coord{}

	tests := []struct {
		name    string
		bale    entities.Bale
		pyramid entities.Pyramid
		grade   entities.Grade
		coord   entities.Coord
		slots   []entities.Slot
		err     error
	}{
		{"failed_bale", failed, cube("P", entities.GradeA), entities.GradeA, entities.Coord{}, nil, ErrBaleNotPassed},
		{"already_stored", stored, cube("P", entities.GradeA), entities.GradeA, entities.Coord{X: 1}, nil, ErrBaleAlreadyPlaced},
		{"locked_pyramid", passedBale("B1"), locked, entities.GradeA, entities.Coord{}, nil, ErrPyramidLocked},
		{"grade_mismatch", passedBale("B1"), cube("P", entities.GradeB), entities.GradeA, entities.Coord{}, nil, ErrGradeMismatch},
		{"out_of_range", passedBale("B1"), cube("P", entities.GradeA), entities.GradeA, entities.Coord{X: 2}, nil, ErrCoordOutOfRange},
		{"occupied", passedBale("B1"), cube("P", entities.GradeA), entities.GradeA, entities.Coord{}, occupied, ErrSlotOccupied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlaceBaleToPyramid(tt.bale, tt.pyramid, tt.grade, tt.coord, tt.slots, now)
			if !errors.Is(err, tt.err) {
				t.Errorf("Expected %v, got %v", tt.err, err)
			}
		})
	}
}
