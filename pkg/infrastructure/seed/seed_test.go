package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/baleyard/pkg/application/selectors"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	"github.com/vsinha/baleyard/pkg/infrastructure/repositories/memory"
)

var seedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestGenerate_Structure(t *testing.T) {
	snap := Generate(seedNow, 42)

	require.Len(t, snap.Suppliers, 3)
	assert.Equal(t, []string{"SUP001", "SUP002", "SUP003"},
		[]string{snap.Suppliers[0].SupplierID, snap.Suppliers[1].SupplierID, snap.Suppliers[2].SupplierID})

	require.Len(t, snap.Pyramids, 3)
	for _, p := range snap.Pyramids {
		assert.Equal(t, 320, p.Capacity, p.PyramidID)
	}

	assert.Len(t, snap.Bales, 3*8*5+2*8*4+2*6*6)
	assert.Len(t, snap.Slots, len(snap.Bales))
	for _, b := range snap.Bales {
		assert.Equal(t, entities.DecisionPass, b.Decision)
		assert.LessOrEqual(t, b.MoisturePct, 14.0)
	}

	unloading := 0
	for _, tr := range snap.Trucks {
		if tr.Status == entities.TruckUnloadLoop {
			unloading++
		}
	}
	assert.Equal(t, 2, unloading)
	assert.Len(t, snap.Alerts, 2)
	assert.Len(t, snap.Events, 3)
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(seedNow, 7)
	b := Generate(seedNow, 7)
	c := Generate(seedNow, 8)

	assert.Equal(t, a.Bales, b.Bales)
	assert.NotEqual(t, a.Bales[0].MoisturePct, c.Bales[0].MoisturePct)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, Load(ctx, store, Generate(seedNow, 1)))

	onHand := selectors.OnHandIncludingConsumed(store.Bales(), store.Pyramids())
	assert.Equal(t, 184, onHand[entities.GradeA])
	assert.Equal(t, 72, onHand[entities.GradeB])

	p, err := store.GetPyramid("PYR-A1")
	require.NoError(t, err)
	assert.Equal(t, 37.5, selectors.PyramidOccupancy(p, store.Slots()))

	err = Load(ctx, store, Generate(seedNow, 1))
	assert.ErrorIs(t, err, repositories.ErrAlreadyExists)
}
