// Package seed generates a demonstration yard: three suppliers, three
// pyramids partly filled with historical bales, two trucks unloading and a
// few alerts and audit entries.
package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	domainsvc "github.com/vsinha/baleyard/pkg/domain/services"
)

var defaultShape = entities.Shape{X: 8, Y: 8, Z: 5}

// fill describes the block of historical bales stacked into one pyramid
type fill struct {
	truckID     string
	supplierID  string
	pyramidID   string
	layers      int
	rows        int
	cols        int
	minMoisture float64
	spread      float64
}

var fills = []fill{
	{"TRK-HIST-001", "SUP001", "PYR-A1", 3, 8, 5, 11, 2},
	{"TRK-HIST-002", "SUP002", "PYR-A2", 2, 8, 4, 12.5, 1.5},
	{"TRK-HIST-003", "SUP003", "PYR-B1", 2, 6, 6, 13, 1},
}

// Generate builds the demonstration state relative to now. The same seed
// always yields the same state.
func Generate(now time.Time, seed uint64) *entities.Snapshot {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	snap := entities.NewSnapshot()

	snap.Suppliers = []entities.Supplier{
		supplier("SUP001", "Agro Prime", "John Doe", "+91-9876543210", entities.Tier1, 95,
			entities.SupplierKPI{FailRatePct: 1.5, AvgMoisturePct: 12.5, Variance: 0.8}, now),
		supplier("SUP002", "HarvestCo", "Jane Smith", "+91-9876543211", entities.Tier2, 78,
			entities.SupplierKPI{FailRatePct: 4.2, AvgMoisturePct: 13.8, Variance: 1.5}, now),
		supplier("SUP003", "Strawlink", "Bob Wilson", "+91-9876543212", entities.Tier3, 62,
			entities.SupplierKPI{FailRatePct: 9.5, AvgMoisturePct: 14.5, Variance: 2.3}, now),
	}

	snap.Pyramids = []entities.Pyramid{
		pyramid("PYR-A1", entities.GradeA, "North", entities.Coord{}),
		pyramid("PYR-A2", entities.GradeA, "North", entities.Coord{X: 10}),
		pyramid("PYR-B1", entities.GradeB, "South", entities.Coord{Y: 10}),
	}

	week := 7 * 24 * time.Hour
	n := 1
	for _, f := range fills {
		hist := truck(f.truckID, f.supplierID, "LOT-HIST-"+f.truckID[len(f.truckID)-3:], "Historical intake",
			entities.BaleTypeMidi, now.Add(-week), entities.TruckClosed)
		out := now.Add(-week).Add(4 * time.Hour)
		gross, tare := 24000.0, 9000.0
		hist.OutTime, hist.GrossKg, hist.TareKg = &out, &gross, &tare
		hist.BatchDecision = entities.BatchAccepted

		for z := 0; z < f.layers; z++ {
			for y := 0; y < f.rows; y++ {
				for x := 0; x < f.cols; x++ {
					moisture := round2(f.minMoisture + rng.Float64()*f.spread)
					weight := math.Round(450 + rng.Float64()*100)
					ts := now.Add(-time.Duration(rng.Float64() * float64(week)))
					coord := entities.Coord{X: x, Y: y, Z: z}

					bale := entities.Bale{
						BaleID:      fmt.Sprintf("BALE%05d", n),
						TruckID:     f.truckID,
						BaleType:    entities.BaleTypeMidi,
						Species:     entities.SpeciesStraw,
						MoisturePct: moisture,
						WeightKg:    weight,
						Density:     round2(domainsvc.ComputeDensity(weight, entities.BaleTypeMidi)),
						Decision:    entities.DecisionPass,
						OperatorID:  "OP001",
						Timestamp:   ts,
						PyramidID:   f.pyramidID,
						Slot:        &coord,
					}
					placed := ts
					snap.Bales = append(snap.Bales, bale)
					snap.Slots = append(snap.Slots, entities.Slot{
						SlotID:    entities.SlotKey(f.pyramidID, coord),
						PyramidID: f.pyramidID,
						X:         x,
						Y:         y,
						Z:         z,
						BaleID:    bale.BaleID,
						PlacedAt:  &placed,
					})
					hist.BaleCount++
					n++
				}
			}
		}
		snap.Trucks = append(snap.Trucks, hist)
	}

	trk1 := truck("TRK001", "SUP001", "LOT-2024-001", "Farm A, District 1", entities.BaleTypeMidi,
		now.Add(-2*time.Hour), entities.TruckUnloadLoop)
	trk1.DriverCardID, trk1.Notes = "DRV12345", "Premium quality expected"
	trk2 := truck("TRK002", "SUP003", "LOT-2024-002", "Farm C, District 3", entities.BaleTypeLegacy70,
		now.Add(-time.Hour), entities.TruckUnloadLoop)
	trk2.DriverCardID, trk2.Notes = "DRV12346", "Quality concerns noted"
	g1, g2 := 14500.0, 11800.0
	trk1.GrossKg, trk2.GrossKg = &g1, &g2
	snap.Trucks = append(snap.Trucks, trk1, trk2)

	snap.Alerts = []entities.Alert{
		{
			AlertID:   "ALT001",
			Type:      entities.AlertReload,
			Severity:  entities.SeverityWarn,
			Message:   "Grade A inventory low - 2 days cover remaining",
			CreatedAt: now.Add(-6 * time.Hour),
			Meta:      map[string]string{"grade": "A", "daysCover": "2"},
		},
		{
			AlertID:   "ALT002",
			Type:      entities.AlertQuality,
			Severity:  entities.SeverityCritical,
			Message:   "High fail rate detected from Strawlink (SUP003)",
			CreatedAt: now.Add(-3 * time.Hour),
			Meta:      map[string]string{"supplierId": "SUP003", "failRate": "9.5"},
		},
	}

	snap.Events = []entities.Event{
		{EventID: "EVT001", Scope: entities.ScopeSystem, Actor: "SYSTEM", Change: "Reload alert generated for Grade A", Timestamp: now.Add(-6 * time.Hour)},
		{EventID: "EVT002", Scope: entities.ScopeTruck, Actor: "OP001", Change: "TRK001 transitioned CHECK_IN -> GROSS_IN", Timestamp: now.Add(-2 * time.Hour)},
		{EventID: "EVT003", Scope: entities.ScopeBale, Actor: "OP001", Change: "BALE00001 placed to PYR-A1 (0,0,0)", Timestamp: now.Add(-90 * time.Minute)},
	}
	return snap
}

// Load writes a generated state into an empty store in one transaction
func Load(ctx context.Context, store repositories.Store, snap *entities.Snapshot) error {
	if len(store.Pyramids()) > 0 || len(store.Trucks()) > 0 {
		return fmt.Errorf("store is not empty: %w", repositories.ErrAlreadyExists)
	}
	return store.Update(ctx, func(tx repositories.Tx) error {
		for _, s := range snap.Suppliers {
			if err := tx.AddSupplier(s); err != nil {
				return err
			}
		}
		for _, p := range snap.Pyramids {
			if err := tx.AddPyramid(p); err != nil {
				return err
			}
		}
		for _, t := range snap.Trucks {
			if err := tx.AddTruck(t); err != nil {
				return err
			}
		}
		for _, b := range snap.Bales {
			if err := tx.AddBale(b); err != nil {
				return err
			}
		}
		for _, sl := range snap.Slots {
			if err := tx.PutSlot(sl); err != nil {
				return err
			}
		}
		for _, a := range snap.Alerts {
			if err := tx.AddAlert(a); err != nil {
				return err
			}
		}
		for _, e := range snap.Events {
			if err := tx.AddEvent(e); err != nil {
				return err
			}
		}
		return nil
	})
}

func supplier(id, name, contact, phone string, tier entities.Tier, score float64, kpi entities.SupplierKPI, now time.Time) entities.Supplier {
	return entities.Supplier{
		SupplierID:    id,
		Name:          name,
		ContactPerson: contact,
		Phone:         phone,
		Tier:          tier,
		Score:         score,
		KPI:           kpi,
		Status:        entities.SupplierActive,
		CreatedAt:     now.Add(-90 * 24 * time.Hour),
	}
}

func pyramid(id string, grade entities.Grade, zone string, origin entities.Coord) entities.Pyramid {
	return entities.Pyramid{
		PyramidID:    id,
		QualityGrade: grade,
		Zone:         zone,
		Origin:       origin,
		Capacity:     defaultShape.Volume(),
		Status:       entities.PyramidActive,
		Shape:        defaultShape,
	}
}

func truck(id, supplierID, lot, source string, baleType entities.BaleType, inTime time.Time, status entities.TruckStatus) entities.TruckLoad {
	return entities.TruckLoad{
		TruckID:    id,
		SupplierID: supplierID,
		Lot:        lot,
		Source:     source,
		BaleType:   baleType,
		InTime:     inTime,
		Status:     status,
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
