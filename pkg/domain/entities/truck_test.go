package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTruckLoad(t *testing.T) {
	in := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	truck, err := NewTruckLoad("TRK010", "SUP001", "LOT-77", "Field 4", BaleTypeLegacy70, in, TruckCheckIn)
	require.NoError(t, err)
	assert.Equal(t, TruckCheckIn, truck.Status)
	assert.Zero(t, truck.BaleCount)
	assert.False(t, truck.Closed())

	_, ok := truck.NetWeightKg()
	assert.False(t, ok, "net weight needs both weighings")

	gross, tare := 18000.0, 7000.0
	truck.GrossKg = &gross
	truck.TareKg = &tare
	net, ok := truck.NetWeightKg()
	require.True(t, ok)
	assert.Equal(t, 11000.0, net)

	clone := truck.Clone()
	*clone.GrossKg = 1
	assert.Equal(t, 18000.0, *truck.GrossKg)
}

func TestNewTruckLoad_Validation(t *testing.T) {
	in := time.Now()

	testCases := []struct {
		name        string
		truckID     string
		supplierID  string
		lot         string
		baleType    BaleType
		status      TruckStatus
		expectError string
	}{
		{"empty truck", "", "SUP001", "L1", BaleTypeMidi, TruckCheckIn, "truck id cannot be empty"},
		{"empty supplier", "T", "", "L1", BaleTypeMidi, TruckCheckIn, "supplier id cannot be empty"},
		{"empty lot", "T", "SUP001", "", BaleTypeMidi, TruckCheckIn, "lot cannot be empty"},
		{"unknown bale type", "T", "SUP001", "L1", BaleType("Round"), TruckCheckIn, `unknown bale type "Round"`},
		{"mid-protocol start", "T", "SUP001", "L1", BaleTypeMidi, TruckUnloadLoop, "truck must start in WAIT_TRUCK or CHECK_IN, got UNLOAD_LOOP"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTruckLoad(tc.truckID, tc.supplierID, tc.lot, "src", tc.baleType, in, tc.status)
			require.Error(t, err)
			assert.Equal(t, tc.expectError, err.Error())
		})
	}
}

func TestTruckStatus_Unloading(t *testing.T) {
	for _, s := range TruckStatuses {
		expected := s == TruckUnloadLoop || s == TruckBatchReject
		assert.Equal(t, expected, s.Unloading(), "status %s", s)
	}
}
