package entities

import (
	"fmt"
	"time"
)

// Grade is the quality class a pyramid stores
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
)

// Grades lists every grade in display order
var Grades = []Grade{GradeA, GradeB}

// Valid reports whether g is a known grade
func (g Grade) Valid() bool {
	return g == GradeA || g == GradeB
}

// PyramidStatus controls whether a pyramid accepts placements
type PyramidStatus string

const (
	PyramidActive PyramidStatus = "Active"
	PyramidLocked PyramidStatus = "Locked"
)

// Shape is the width x depth x height of a pyramid grid
type Shape struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Volume returns the number of cells in the grid
func (s Shape) Volume() int {
	return s.X * s.Y * s.Z
}

// Contains reports whether c lies inside the grid
func (s Shape) Contains(c Coord) bool {
	return c.X >= 0 && c.X < s.X &&
		c.Y >= 0 && c.Y < s.Y &&
		c.Z >= 0 && c.Z < s.Z
}

// Pyramid is a 3D storage stack for bales of a single grade
type Pyramid struct {
	PyramidID    string        `json:"pyramidId"`
	QualityGrade Grade         `json:"qualityGrade"`
	Zone         string        `json:"zone"`
	Origin       Coord         `json:"origin"`
	Capacity     int           `json:"capacity"`
	Status       PyramidStatus `json:"status"`
	Shape        Shape         `json:"shape"`
}

// NewPyramid creates a validated Pyramid whose capacity matches its shape
func NewPyramid(pyramidID string, grade Grade, zone string, origin Coord, shape Shape, status PyramidStatus) (*Pyramid, error) {
	if pyramidID == "" {
		return nil, fmt.Errorf("pyramid id cannot be empty")
	}
	if !grade.Valid() {
		return nil, fmt.Errorf("unknown quality grade %q", grade)
	}
	if shape.X <= 0 || shape.Y <= 0 || shape.Z <= 0 {
		return nil, fmt.Errorf("shape dimensions must be positive, got %dx%dx%d", shape.X, shape.Y, shape.Z)
	}
	if status != PyramidActive && status != PyramidLocked {
		return nil, fmt.Errorf("unknown pyramid status %q", status)
	}

	return &Pyramid{
		PyramidID:    pyramidID,
		QualityGrade: grade,
		Zone:         zone,
		Origin:       origin,
		Capacity:     shape.Volume(),
		Status:       status,
		Shape:        shape,
	}, nil
}

// Slot is one addressable cell of a pyramid. Slots are kept after the bale
// leaves so the placement history survives.
type Slot struct {
	SlotID    string     `json:"slotId"`
	PyramidID string     `json:"pyramidId"`
	X         int        `json:"x"`
	Y         int        `json:"y"`
	Z         int        `json:"z"`
	BaleID    string     `json:"baleId,omitempty"`
	PlacedAt  *time.Time `json:"placedTs,omitempty"`
	EmptiedAt *time.Time `json:"emptiedTs,omitempty"`
}

// SlotKey builds the identifier of the slot at c in the given pyramid
func SlotKey(pyramidID string, c Coord) string {
	return fmt.Sprintf("%s-%d-%d-%d", pyramidID, c.X, c.Y, c.Z)
}

// Coord returns the grid position of the slot
func (s Slot) Coord() Coord {
	return Coord{X: s.X, Y: s.Y, Z: s.Z}
}

// Occupied reports whether a bale currently sits in the slot
func (s Slot) Occupied() bool {
	return s.BaleID != "" && s.EmptiedAt == nil
}

// Clone returns a copy that shares no pointers with s
func (s Slot) Clone() Slot {
	s.PlacedAt = cloneTime(s.PlacedAt)
	s.EmptiedAt = cloneTime(s.EmptiedAt)
	return s
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
