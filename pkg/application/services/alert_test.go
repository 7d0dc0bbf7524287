package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testhelpers "github.com/vsinha/baleyard/pkg/application/services/testing"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
)

func TestAlerts_EvaluateReloadOncePerGrade(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.BuildSimpleYard(testNow)
	rt, _ := newTestRuntime(store)
	alerts := NewAlertService(rt)

	raised, err := alerts.EvaluateReload(ctx)
	require.NoError(t, err)
	require.Len(t, raised, 2)
	assert.Equal(t, "A", raised[0].Meta["grade"])
	assert.Equal(t, "0", raised[0].Meta["daysCover"])
	assert.Equal(t, entities.AlertReload, raised[0].Type)
	assert.Equal(t, entities.SeverityWarn, raised[0].Severity)

	raised, err = alerts.EvaluateReload(ctx)
	require.NoError(t, err)
	assert.Empty(t, raised)

	_, err = alerts.Clear(ctx, store.Alerts()[0].AlertID, "OP002")
	require.NoError(t, err)

	raised, err = alerts.EvaluateReload(ctx)
	require.NoError(t, err)
	require.Len(t, raised, 1)
	assert.Equal(t, "A", raised[0].Meta["grade"])
	assert.Len(t, alerts.Active(), 2)
}

func TestAlerts_NoReloadWhenStockCovers(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.BuildUnloadingYard(testNow)
	rt, _ := newTestRuntime(store)
	_, err := NewSettingsService(rt).UpdateProcessConfig(ctx, "", func(c *entities.ProcessConfig) error {
		c.DailyUsageByGrade = map[entities.Grade]int{entities.GradeA: 1, entities.GradeB: 0}
		return nil
	})
	require.NoError(t, err)

	intake := NewIntakeService(rt)
	for i := 0; i < 3; i++ {
		_, err := intake.RecordBale(ctx, QAInput{TruckID: "TRK001", MoisturePct: 10, WeightKg: 200, Grade: entities.GradeA})
		require.NoError(t, err)
	}

	// A: 3 bales at 1/day covers the threshold; B: no usage reports unlimited cover
	raised, err := NewAlertService(rt).EvaluateReload(ctx)
	require.NoError(t, err)
	assert.Empty(t, raised)
}

func TestAlerts_ReloadAfterConsumption(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.BuildUnloadingYard(testNow)
	rt, _ := newTestRuntime(store)
	_, err := NewSettingsService(rt).UpdateProcessConfig(ctx, "", func(c *entities.ProcessConfig) error {
		c.DailyUsageByGrade = map[entities.Grade]int{entities.GradeA: 1, entities.GradeB: 0}
		c.ReloadThresholdDays = 3
		return nil
	})
	require.NoError(t, err)

	intake := NewIntakeService(rt)
	for i := 0; i < 4; i++ {
		_, err := intake.RecordBale(ctx, QAInput{TruckID: "TRK001", MoisturePct: 10, WeightKg: 200, Grade: entities.GradeA})
		require.NoError(t, err)
	}

	alerts := NewAlertService(rt)
	raised, err := alerts.EvaluateReload(ctx)
	require.NoError(t, err)
	assert.Empty(t, raised)

	_, err = NewProcessingService(rt).CreateBatch(ctx, BatchInput{Line: "L1", Grade: entities.GradeA, Count: 4})
	require.NoError(t, err)

	// consumed bales still show on the dashboard but no longer cover usage
	raised, err = alerts.EvaluateReload(ctx)
	require.NoError(t, err)
	require.Len(t, raised, 1)
	assert.Equal(t, "A", raised[0].Meta["grade"])
	assert.Equal(t, "0", raised[0].Meta["daysCover"])
}

func TestAlerts_RaiseAndClear(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.BuildSimpleYard(testNow)
	rt, _ := newTestRuntime(store)
	alerts := NewAlertService(rt)

	a, err := alerts.Raise(ctx, RaiseInput{Type: entities.AlertEquipment, Severity: entities.SeverityInfo, Message: "Moisture probe 2 recalibrated"})
	require.NoError(t, err)
	assert.True(t, a.Active())

	_, err = alerts.Raise(ctx, RaiseInput{Type: "Fire", Severity: entities.SeverityInfo, Message: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	cleared, err := alerts.Clear(ctx, a.AlertID, "")
	require.NoError(t, err)
	assert.False(t, cleared.Active())
	assert.Equal(t, "OP001", cleared.ClearedBy)
	assert.Equal(t, testNow, *cleared.ClearedAt)

	_, err = alerts.Clear(ctx, a.AlertID, "OP002")
	assert.ErrorIs(t, err, ErrAlertCleared)
	_, err = alerts.Clear(ctx, "ALERT-404", "OP002")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	stored, err := store.GetAlert(a.AlertID)
	require.NoError(t, err)
	assert.Equal(t, "OP001", stored.ClearedBy)
}
