package entities

import (
	"fmt"
	"math"
	"time"
)

// BaleType identifies the press format of a bale
type BaleType string

const (
	BaleTypeMidi      BaleType = "Midi"
	BaleTypeLegacy70  BaleType = "Legacy70"
	BaleTypeLegacy130 BaleType = "Legacy130"
)

// referenceVolumes holds the nominal volume in cubic metres per bale type
var referenceVolumes = map[BaleType]float64{
	BaleTypeMidi:      0.5,
	BaleTypeLegacy70:  0.7,
	BaleTypeLegacy130: 1.3,
}

// ReferenceVolume returns the nominal volume of the bale type.
// Unknown types fall back to a volume of 1.
func (t BaleType) ReferenceVolume() float64 {
	if v, ok := referenceVolumes[t]; ok {
		return v
	}
	return 1
}

// Known reports whether the bale type has a configured reference volume
func (t BaleType) Known() bool {
	_, ok := referenceVolumes[t]
	return ok
}

// Species is the crop a bale was pressed from
type Species string

const (
	SpeciesStraw Species = "Straw"
)

// Decision is the QA outcome of a bale
type Decision string

const (
	DecisionPass Decision = "Pass"
	DecisionFail Decision = "Fail"
)

// Coord addresses one cell of a pyramid grid
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// String renders the coordinate as (x,y,z)
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Bale is one physical unit of material that went through QA
type Bale struct {
	BaleID      string    `json:"baleId"`
	TruckID     string    `json:"truckId"`
	BaleType    BaleType  `json:"baleType"`
	Species     Species   `json:"species"`
	MoisturePct float64   `json:"moisturePct"`
	WeightKg    float64   `json:"weightKg"`
	Density     float64   `json:"density"`
	Decision    Decision  `json:"decision"`
	OperatorID  string    `json:"operatorId,omitempty"`
	Timestamp   time.Time `json:"ts"`
	PyramidID   string    `json:"pyramidId,omitempty"`
	Slot        *Coord    `json:"slot,omitempty"`
}

// NewBale creates a validated, unplaced Bale
func NewBale(
	baleID, truckID string,
	baleType BaleType,
	species Species,
	moisturePct, weightKg, density float64,
	decision Decision,
	operatorID string,
	ts time.Time,
) (*Bale, error) {
	if baleID == "" {
		return nil, fmt.Errorf("bale id cannot be empty")
	}
	if truckID == "" {
		return nil, fmt.Errorf("truck id cannot be empty")
	}
	if math.IsNaN(moisturePct) || moisturePct < 0 || moisturePct > 100 {
		return nil, fmt.Errorf("moisture must be within [0,100], got %v", moisturePct)
	}
	if math.IsNaN(weightKg) || weightKg <= 0 {
		return nil, fmt.Errorf("weight must be positive, got %v", weightKg)
	}
	if decision != DecisionPass && decision != DecisionFail {
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	return &Bale{
		BaleID:      baleID,
		TruckID:     truckID,
		BaleType:    baleType,
		Species:     species,
		MoisturePct: moisturePct,
		WeightKg:    weightKg,
		Density:     density,
		Decision:    decision,
		OperatorID:  operatorID,
		Timestamp:   ts,
	}, nil
}

// Stored reports whether the bale carries a storage assignment
func (b *Bale) Stored() bool {
	return b.PyramidID != "" && b.Slot != nil
}

// SlotID returns the key of the slot the bale is assigned to, or "" when unplaced
func (b *Bale) SlotID() string {
	if !b.Stored() {
		return ""
	}
	return SlotKey(b.PyramidID, *b.Slot)
}

// Clone returns a copy that shares no pointers with b
func (b Bale) Clone() Bale {
	if b.Slot != nil {
		c := *b.Slot
		b.Slot = &c
	}
	return b
}
