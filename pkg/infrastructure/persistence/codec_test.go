package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
)

func TestSnapshotBuilder(t *testing.T) {
	b := NewSnapshotBuilder()
	assert.Nil(t, b.Snapshot())

	placed := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	slot := entities.Slot{SlotID: "P-0-0-0", PyramidID: "P", BaleID: "B1", PlacedAt: &placed}
	rec, err := Encode(repositories.Change{Collection: repositories.CollectionSlots, Key: slot.SlotID, Seq: 0, Value: slot})
	require.NoError(t, err)
	require.NoError(t, b.Add(rec.Collection, rec.Body))

	cfg := entities.DefaultProcessConfig()
	cfg.ReloadThresholdDays = 7
	rec, err = Encode(repositories.Change{Collection: repositories.CollectionConfig, Key: repositories.SingletonKey, Value: cfg})
	require.NoError(t, err)
	require.NoError(t, b.Add(rec.Collection, rec.Body))

	snap := b.Snapshot()
	require.NotNil(t, snap)
	require.Len(t, snap.Slots, 1)
	assert.Equal(t, "B1", snap.Slots[0].BaleID)
	assert.True(t, placed.Equal(*snap.Slots[0].PlacedAt))
	assert.Equal(t, 7, snap.Config.ReloadThresholdDays)
	assert.Equal(t, entities.DefaultSession(), snap.Session)
}

func TestSnapshotBuilder_Errors(t *testing.T) {
	b := NewSnapshotBuilder()
	assert.Error(t, b.Add("pallets", []byte(`{}`)))
	assert.Error(t, b.Add(repositories.CollectionBales, []byte(`{"baleId":`)))
	assert.Nil(t, b.Snapshot())
}
