package entities

import (
	"fmt"
	"time"
)

// Tier ranks a supplier, 1 being the best
type Tier int

const (
	Tier1 Tier = 1
	Tier2 Tier = 2
	Tier3 Tier = 3
)

// Valid reports whether t is one of the three tiers
func (t Tier) Valid() bool {
	return t >= Tier1 && t <= Tier3
}

// String method for Tier
func (t Tier) String() string {
	switch t {
	case Tier1:
		return "Tier 1"
	case Tier2:
		return "Tier 2"
	case Tier3:
		return "Tier 3"
	default:
		return "Unknown"
	}
}

// SupplierStatus marks whether deliveries are expected from a supplier
type SupplierStatus string

const (
	SupplierActive   SupplierStatus = "active"
	SupplierInactive SupplierStatus = "inactive"
)

// SupplierKPI is the quality scorecard derived from a supplier's bales
type SupplierKPI struct {
	FailRatePct    float64 `json:"failRatePct"`
	AvgMoisturePct float64 `json:"avgMoisturePct"`
	Variance       float64 `json:"variance"`
}

// Supplier is a delivery source
type Supplier struct {
	SupplierID    string         `json:"supplierId"`
	Name          string         `json:"name"`
	ContactPerson string         `json:"contactPerson,omitempty"`
	Email         string         `json:"email,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	Address       string         `json:"address,omitempty"`
	Tier          Tier           `json:"tier"`
	Score         float64        `json:"score"`
	KPI           SupplierKPI    `json:"kpi"`
	TierOverride  *Tier          `json:"tierOverride,omitempty"`
	Status        SupplierStatus `json:"status,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// NewSupplier creates a validated active Supplier
func NewSupplier(supplierID, name string, tier Tier, createdAt time.Time) (*Supplier, error) {
	if supplierID == "" {
		return nil, fmt.Errorf("supplier id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("supplier name cannot be empty")
	}
	if !tier.Valid() {
		return nil, fmt.Errorf("tier must be 1, 2 or 3, got %d", tier)
	}

	return &Supplier{
		SupplierID: supplierID,
		Name:       name,
		Tier:       tier,
		Status:     SupplierActive,
		CreatedAt:  createdAt,
	}, nil
}

// EffectiveTier returns the manual override when present, otherwise the computed tier
func (s *Supplier) EffectiveTier() Tier {
	if s.TierOverride != nil {
		return *s.TierOverride
	}
	return s.Tier
}

// Clone returns a copy that shares no pointers with s
func (s Supplier) Clone() Supplier {
	if s.TierOverride != nil {
		t := *s.TierOverride
		s.TierOverride = &t
	}
	return s
}
