package dto

import (
	"time"

	"github.com/vsinha/baleyard/pkg/application/selectors"
	"github.com/vsinha/baleyard/pkg/domain/entities"
)

// Dashboard is the yard overview computed from one snapshot
type Dashboard struct {
	GeneratedAt      time.Time                 `json:"generatedAt"`
	OnHandByGrade    map[entities.Grade]int    `json:"onHandByGrade"`
	AvailableByGrade map[entities.Grade]int    `json:"availableByGrade"`
	DaysCoverByGrade map[entities.Grade]int    `json:"daysCoverByGrade"`
	FailRate24h      float64                   `json:"failRate24h"`
	TodayThroughput  int                       `json:"todayThroughput"`
	Throughput       []selectors.HourBucket    `json:"throughput"`
	Moisture         []selectors.MoisturePoint `json:"moisture"`
	Pyramids         []PyramidView             `json:"pyramids"`
	TrucksOnSite     []entities.TruckLoad      `json:"trucksOnSite"`
	ActiveAlerts     []entities.Alert          `json:"activeAlerts"`
	RecentEvents     []entities.Event          `json:"recentEvents"`
}

// PyramidView is a pyramid with its live occupancy
type PyramidView struct {
	entities.Pyramid
	Occupied     int     `json:"occupied"`
	OccupancyPct float64 `json:"occupancyPct"`
}

// TruckView is a truck with its derived weights and bales
type TruckView struct {
	entities.TruckLoad
	NetWeightKg *float64        `json:"netWeightKg,omitempty"`
	Bales       []entities.Bale `json:"bales,omitempty"`
}

// TraceResult links a searched record to everything related to it
type TraceResult struct {
	Kind      string                      `json:"kind"`
	Term      string                      `json:"term"`
	Bales     []entities.Bale             `json:"bales"`
	Trucks    []entities.TruckLoad        `json:"trucks"`
	Suppliers []entities.Supplier         `json:"suppliers"`
	Pyramids  []entities.Pyramid          `json:"pyramids"`
	Batches   []entities.ConsumptionBatch `json:"batches"`
}
