package testing

import (
	"context"
	"time"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	"github.com/vsinha/baleyard/pkg/infrastructure/repositories/memory"
)

// FixedClock returns a clock frozen at t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// StepClock returns a clock that advances by step on every call
func StepClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(step)
		return t
	}
}

// mustCreateSupplier is a helper for tests - panics on validation error
func mustCreateSupplier(id, name string, tier entities.Tier, score float64, createdAt time.Time) entities.Supplier {
	s, err := entities.NewSupplier(id, name, tier, createdAt)
	if err != nil {
		panic(err)
	}
	s.Score = score
	return *s
}

// mustCreatePyramid is a helper for tests - panics on validation error
func mustCreatePyramid(id string, grade entities.Grade, zone string, shape entities.Shape) entities.Pyramid {
	p, err := entities.NewPyramid(id, grade, zone, entities.Coord{}, shape, entities.PyramidActive)
	if err != nil {
		panic(err)
	}
	return *p
}

// mustCreateTruck is a helper for tests - panics on validation error
func mustCreateTruck(id, supplierID, lot string, inTime time.Time, status entities.TruckStatus) entities.TruckLoad {
	t, err := entities.NewTruckLoad(id, supplierID, lot, "field", entities.BaleTypeMidi, inTime, entities.TruckCheckIn)
	if err != nil {
		panic(err)
	}
	t.Status = status
	if status == entities.TruckUnloadLoop {
		gross := 12000.0
		t.GrossKg = &gross
	}
	return *t
}

// BuildSimpleYard returns a store with two suppliers, one grade A pyramid of
// 2x2x2, one grade B pyramid of 8x8x5 and no trucks
func BuildSimpleYard(now time.Time) *memory.Store {
	store := memory.NewStore()
	err := store.Update(context.Background(), func(tx repositories.Tx) error {
		for _, s := range []entities.Supplier{
			mustCreateSupplier("SUP001", "Agro Prime", entities.Tier1, 95, now),
			mustCreateSupplier("SUP002", "HarvestCo", entities.Tier2, 78, now),
		} {
			if err := tx.AddSupplier(s); err != nil {
				return err
			}
		}
		for _, p := range []entities.Pyramid{
			mustCreatePyramid("PYR-A1", entities.GradeA, "North", entities.Shape{X: 2, Y: 2, Z: 2}),
			mustCreatePyramid("PYR-B1", entities.GradeB, "South", entities.Shape{X: 8, Y: 8, Z: 5}),
		} {
			if err := tx.AddPyramid(p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		panic(err)
	}
	return store
}

// BuildUnloadingYard extends BuildSimpleYard with truck TRK001 of SUP001 in
// UNLOAD_LOOP and truck TRK002 of SUP002 just checked in
func BuildUnloadingYard(now time.Time) *memory.Store {
	store := BuildSimpleYard(now)
	err := store.Update(context.Background(), func(tx repositories.Tx) error {
		if err := tx.AddTruck(mustCreateTruck("TRK001", "SUP001", "LOT-1", now, entities.TruckUnloadLoop)); err != nil {
			return err
		}
		return tx.AddTruck(mustCreateTruck("TRK002", "SUP002", "LOT-2", now, entities.TruckCheckIn))
	})
	if err != nil {
		panic(err)
	}
	return store
}
