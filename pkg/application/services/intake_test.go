package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testhelpers "github.com/vsinha/baleyard/pkg/application/services/testing"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	domainsvc "github.com/vsinha/baleyard/pkg/domain/services"
	"github.com/vsinha/baleyard/pkg/infrastructure/events"
)

func weight(kg float64) *float64 { return &kg }

func TestIntake_EndToEndTruckScenario(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.BuildSimpleYard(testNow)
	rt, es := newTestRuntime(store)
	intake := NewIntakeService(rt)

	truck, err := intake.CheckIn(ctx, CheckInInput{
		TruckID:    "TRK100",
		SupplierID: "SUP001",
		Lot:        "LOT-7",
		BaleType:   entities.BaleTypeMidi,
		DriverName: "R. Kumar",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.TruckCheckIn, truck.Status)

	truck, err = intake.AdvanceTruck(ctx, "TRK100", AdvanceInput{})
	require.NoError(t, err)
	assert.Equal(t, entities.TruckGrossIn, truck.Status)

	truck, err = intake.AdvanceTruck(ctx, "TRK100", AdvanceInput{GrossKg: weight(14000)})
	require.NoError(t, err)
	assert.Equal(t, entities.TruckUnloadLoop, truck.Status)

	// Two passing bales fill the grade A pyramid in scan order
	first, err := intake.RecordBale(ctx, QAInput{TruckID: "TRK100", BaleID: "B1", MoisturePct: 12, WeightKg: 250, Grade: entities.GradeA})
	require.NoError(t, err)
	require.NotNil(t, first.Placement)
	assert.Equal(t, "PYR-A1-0-0-0", first.Placement.Slot.SlotID)
	assert.Equal(t, 500.0, first.Bale.Density)

	second, err := intake.RecordBale(ctx, QAInput{TruckID: "TRK100", BaleID: "B2", MoisturePct: 14, WeightKg: 250, Grade: entities.GradeA})
	require.NoError(t, err)
	assert.Equal(t, entities.DecisionPass, second.Bale.Decision)
	assert.Equal(t, "PYR-A1-1-0-0", second.Placement.Slot.SlotID)

	// A failed bale rejects the load
	failed, err := intake.RecordBale(ctx, QAInput{TruckID: "TRK100", BaleID: "B3", MoisturePct: 18.5, WeightKg: 240, Grade: entities.GradeA})
	require.NoError(t, err)
	assert.True(t, failed.BatchRejected)
	assert.Nil(t, failed.Placement)
	assert.Equal(t, entities.TruckBatchReject, failed.Truck.Status)
	assert.Equal(t, entities.BatchRejected, failed.Truck.BatchDecision)
	require.NotNil(t, failed.Alert)
	assert.Equal(t, entities.AlertQuality, failed.Alert.Type)
	assert.Equal(t, entities.SeverityCritical, failed.Alert.Severity)
	assert.Equal(t, "Truck TRK100 rejected - failed bale detected", failed.Alert.Message)

	// A second failure while rejected raises no new alert
	again, err := intake.RecordBale(ctx, QAInput{TruckID: "TRK100", BaleID: "B4", MoisturePct: 20, WeightKg: 240})
	require.NoError(t, err)
	assert.False(t, again.BatchRejected)
	assert.Nil(t, again.Alert)
	assert.Equal(t, 4, again.Truck.BaleCount)
	assert.Len(t, store.Alerts(), 1)

	truck, err = intake.AdvanceTruck(ctx, "TRK100", AdvanceInput{})
	require.NoError(t, err)
	assert.Equal(t, entities.TruckTareOut, truck.Status)

	truck, err = intake.AdvanceTruck(ctx, "TRK100", AdvanceInput{TareKg: weight(9000)})
	require.NoError(t, err)
	assert.Equal(t, entities.TruckClosed, truck.Status)
	assert.Equal(t, entities.BatchRejected, truck.BatchDecision)
	require.NotNil(t, truck.OutTime)
	net, ok := truck.NetWeightKg()
	require.True(t, ok)
	assert.Equal(t, 5000.0, net)

	// Closed records accept nothing further
	_, err = intake.RecordBale(ctx, QAInput{TruckID: "TRK100", MoisturePct: 10, WeightKg: 200})
	assert.ErrorIs(t, err, domainsvc.ErrTruckClosed)
	_, err = intake.AdvanceTruck(ctx, "TRK100", AdvanceInput{})
	assert.ErrorIs(t, err, domainsvc.ErrTruckClosed)

	b1, err := store.GetBale("B1")
	require.NoError(t, err)
	assert.Equal(t, "PYR-A1-0-0-0", b1.SlotID())
	b3, err := store.GetBale("B3")
	require.NoError(t, err)
	assert.False(t, b3.Stored())

	assert.Equal(t, []string{
		events.TruckCheckedInEvent,
		events.TruckStatusChangedEvent,
		events.TruckStatusChangedEvent,
		events.BaleRecordedEvent, events.BalePlacedEvent,
		events.BaleRecordedEvent, events.BalePlacedEvent,
		events.BaleRecordedEvent, events.TruckBatchRejectedEvent, events.TruckStatusChangedEvent, events.AlertRaisedEvent,
		events.BaleRecordedEvent,
		events.TruckStatusChangedEvent,
		events.TruckStatusChangedEvent,
	}, eventTypes(t, es))
	assert.Len(t, store.Events(), 9)
}

func TestIntake_CheckInAdmitsRegisteredTruck(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.BuildSimpleYard(testNow)
	rt, _ := newTestRuntime(store)
	intake := NewIntakeService(rt)

	registered, err := intake.RegisterTruck(ctx, CheckInInput{TruckID: "TRK200", SupplierID: "SUP002", Lot: "LOT-9", BaleType: entities.BaleTypeLegacy70})
	require.NoError(t, err)
	assert.Equal(t, entities.TruckWaiting, registered.Status)

	admitted, err := intake.CheckIn(ctx, CheckInInput{TruckID: "TRK200", VehicleRegistration: "MH12AB1234"})
	require.NoError(t, err)
	assert.Equal(t, entities.TruckCheckIn, admitted.Status)
	assert.Equal(t, "MH12AB1234", admitted.VehicleRegistration)
	assert.Equal(t, "SUP002", admitted.SupplierID)
	assert.Len(t, store.Trucks(), 1)

	// Checking in an id that is already on site is a duplicate
	_, err = intake.CheckIn(ctx, CheckInInput{TruckID: "TRK200", SupplierID: "SUP002", Lot: "LOT-9", BaleType: entities.BaleTypeMidi})
	assert.ErrorIs(t, err, repositories.ErrAlreadyExists)
}

func TestIntake_CheckInValidation(t *testing.T) {
	tests := []struct {
		name string
		in   CheckInInput
		want error
	}{
		{"unknown supplier", CheckInInput{SupplierID: "SUP999", Lot: "L", BaleType: entities.BaleTypeMidi}, repositories.ErrNotFound},
		{"missing lot", CheckInInput{SupplierID: "SUP001", BaleType: entities.BaleTypeMidi}, ErrInvalidInput},
		{"unknown bale type", CheckInInput{SupplierID: "SUP001", Lot: "L", BaleType: "Jumbo"}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testhelpers.BuildSimpleYard(testNow)
			rt, _ := newTestRuntime(store)
			_, err := NewIntakeService(rt).CheckIn(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, store.Trucks())
			assert.Empty(t, store.Events())
		})
	}
}

func TestIntake_CheckInRejectsInactiveSupplier(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.BuildSimpleYard(testNow)
	rt, _ := newTestRuntime(store)
	_, err := NewSupplierService(rt).UpdateSupplier(ctx, SupplierInput{SupplierID: "SUP002", Status: entities.SupplierInactive}, "")
	require.NoError(t, err)

	_, err = NewIntakeService(rt).CheckIn(ctx, CheckInInput{SupplierID: "SUP002", Lot: "L", BaleType: entities.BaleTypeMidi})
	assert.ErrorIs(t, err, ErrSupplierInactive)
}

func TestIntake_AdvanceGuards(t *testing.T) {
	tests := []struct {
		name   string
		truck  string
		in     AdvanceInput
		want   error
		status entities.TruckStatus
	}{
		{"gross outside GROSS_IN", "TRK002", AdvanceInput{GrossKg: weight(100)}, domainsvc.ErrInvalidState, entities.TruckCheckIn},
		{"tare outside TARE_OUT", "TRK001", AdvanceInput{TareKg: weight(100)}, domainsvc.ErrInvalidState, entities.TruckUnloadLoop},
		{"unknown truck", "TRK404", AdvanceInput{}, repositories.ErrNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testhelpers.BuildUnloadingYard(testNow)
			rt, _ := newTestRuntime(store)
			_, err := NewIntakeService(rt).AdvanceTruck(context.Background(), tt.truck, tt.in)
			assert.ErrorIs(t, err, tt.want)
			if tt.status != "" {
				truck, err := store.GetTruck(tt.truck)
				require.NoError(t, err)
				assert.Equal(t, tt.status, truck.Status)
			}
		})
	}
}

func TestIntake_AdvanceRequiresWeights(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.BuildUnloadingYard(testNow)
	rt, _ := newTestRuntime(store)
	intake := NewIntakeService(rt)

	_, err := intake.AdvanceTruck(ctx, "TRK002", AdvanceInput{})
	require.NoError(t, err)

	_, err = intake.AdvanceTruck(ctx, "TRK002", AdvanceInput{})
	assert.ErrorIs(t, err, domainsvc.ErrMissingWeight)

	_, err = intake.AdvanceTruck(ctx, "TRK002", AdvanceInput{GrossKg: weight(-5)})
	assert.ErrorIs(t, err, domainsvc.ErrMissingWeight)

	truck, err := store.GetTruck("TRK002")
	require.NoError(t, err)
	assert.Equal(t, entities.TruckGrossIn, truck.Status)
	assert.Nil(t, truck.GrossKg)

	// Unloading truck with a clean record closes as Accepted
	_, err = intake.AdvanceTruck(ctx, "TRK001", AdvanceInput{})
	require.NoError(t, err)
	_, err = intake.AdvanceTruck(ctx, "TRK001", AdvanceInput{})
	assert.ErrorIs(t, err, domainsvc.ErrMissingWeight)
	closed, err := intake.AdvanceTruck(ctx, "TRK001", AdvanceInput{TareKg: weight(4000)})
	require.NoError(t, err)
	assert.Equal(t, entities.BatchAccepted, closed.BatchDecision)
}

func TestIntake_RecordBaleGuards(t *testing.T) {
	tests := []struct {
		name string
		in   QAInput
		want error
	}{
		{"truck not unloading", QAInput{TruckID: "TRK002", MoisturePct: 10, WeightKg: 200}, domainsvc.ErrInvalidState},
		{"moisture out of range", QAInput{TruckID: "TRK001", MoisturePct: 120, WeightKg: 200}, domainsvc.ErrInvalidMeasurement},
		{"non-positive weight", QAInput{TruckID: "TRK001", MoisturePct: 10, WeightKg: 0}, domainsvc.ErrInvalidMeasurement},
		{"unknown truck", QAInput{TruckID: "TRK404", MoisturePct: 10, WeightKg: 200}, repositories.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testhelpers.BuildUnloadingYard(testNow)
			rt, _ := newTestRuntime(store)
			_, err := NewIntakeService(rt).RecordBale(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, store.Bales())
		})
	}
}

func TestIntake_UnknownSpeciesFails(t *testing.T) {
	store := testhelpers.BuildUnloadingYard(testNow)
	rt, _ := newTestRuntime(store)

	out, err := NewIntakeService(rt).RecordBale(context.Background(), QAInput{
		TruckID: "TRK001", Species: "Hay", MoisturePct: 5, WeightKg: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, entities.DecisionFail, out.Bale.Decision)
	assert.NotEmpty(t, out.Warnings)
	assert.True(t, out.BatchRejected)
}

func TestIntake_BatchRejectDisabled(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.BuildUnloadingYard(testNow)
	rt, _ := newTestRuntime(store)
	_, err := NewSettingsService(rt).UpdateProcessConfig(ctx, "", func(c *entities.ProcessConfig) error {
		c.BatchRejectEnabled = false
		return nil
	})
	require.NoError(t, err)

	out, err := NewIntakeService(rt).RecordBale(ctx, QAInput{TruckID: "TRK001", MoisturePct: 30, WeightKg: 200})
	require.NoError(t, err)
	assert.False(t, out.BatchRejected)
	assert.Nil(t, out.Alert)
	assert.Len(t, out.Warnings, 1)
	assert.Equal(t, entities.TruckUnloadLoop, out.Truck.Status)
	assert.Equal(t, 1, out.Truck.BaleCount)
	assert.Empty(t, store.Alerts())
}

func TestIntake_PlacementFailureKeepsBale(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.BuildUnloadingYard(testNow)
	rt, _ := newTestRuntime(store)
	intake := NewIntakeService(rt)

	// PYR-A1 is 2x2x2
	for i := 0; i < 8; i++ {
		out, err := intake.RecordBale(ctx, QAInput{TruckID: "TRK001", MoisturePct: 10, WeightKg: 200, PyramidID: "PYR-A1"})
		require.NoError(t, err)
		require.NotNil(t, out.Placement, "bale %d", i)
	}

	out, err := intake.RecordBale(ctx, QAInput{TruckID: "TRK001", BaleID: "OVERFLOW", MoisturePct: 10, WeightKg: 200, PyramidID: "PYR-A1"})
	require.NoError(t, err)
	assert.Nil(t, out.Placement)
	assert.ErrorIs(t, out.PlacementErr, domainsvc.ErrNoSlotAvailable)

	bale, err := store.GetBale("OVERFLOW")
	require.NoError(t, err)
	assert.False(t, bale.Stored())
	assert.Equal(t, 9, out.Truck.BaleCount)
}

func TestStorage_PlaceBaleAndLock(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.BuildUnloadingYard(testNow)
	rt, es := newTestRuntime(store)
	intake := NewIntakeService(rt)
	storage := NewStorageService(rt)

	out, err := intake.RecordBale(ctx, QAInput{TruckID: "TRK001", BaleID: "B1", MoisturePct: 11, WeightKg: 200})
	require.NoError(t, err)
	require.Nil(t, out.Placement)

	_, err = storage.SetPyramidStatus(ctx, "PYR-B1", entities.PyramidLocked, "OP002")
	require.NoError(t, err)
	_, err = storage.PlaceBale(ctx, "B1", PlaceInput{PyramidID: "PYR-B1"})
	assert.ErrorIs(t, err, domainsvc.ErrPyramidLocked)
	_, err = storage.PlaceBale(ctx, "B1", PlaceInput{Grade: entities.GradeB})
	assert.ErrorIs(t, err, domainsvc.ErrNoSlotAvailable)
	_, err = storage.PlaceBale(ctx, "B1", PlaceInput{PyramidID: "PYR-A1", Grade: entities.GradeB})
	assert.ErrorIs(t, err, domainsvc.ErrGradeMismatch)

	_, err = storage.SetPyramidStatus(ctx, "PYR-B1", entities.PyramidActive, "OP002")
	require.NoError(t, err)
	placement, err := storage.PlaceBale(ctx, "B1", PlaceInput{PyramidID: "PYR-B1"})
	require.NoError(t, err)
	assert.Equal(t, "PYR-B1-0-0-0", placement.Slot.SlotID)

	_, err = storage.PlaceBale(ctx, "B1", PlaceInput{Grade: entities.GradeA})
	assert.ErrorIs(t, err, domainsvc.ErrBaleAlreadyPlaced)

	types := eventTypes(t, es)
	assert.Equal(t, events.BalePlacedEvent, types[len(types)-1])
}

func TestStorage_AddPyramidUsesConfiguredShape(t *testing.T) {
	store := testhelpers.BuildSimpleYard(testNow)
	rt, _ := newTestRuntime(store)

	p, err := NewStorageService(rt).AddPyramid(context.Background(), "PYR-A2", entities.GradeA, "East", entities.Coord{X: 10}, entities.Shape{})
	require.NoError(t, err)
	assert.Equal(t, entities.Shape{X: 8, Y: 8, Z: 5}, p.Shape)
	assert.Equal(t, 320, p.Capacity)

	_, err = NewStorageService(rt).AddPyramid(context.Background(), "PYR-C1", "C", "East", entities.Coord{}, entities.Shape{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
