package services

import (
	"testing"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

func TestNextTruckStatus(t *testing.T) {
	tests := []struct {
		current  entities.TruckStatus
		expected entities.TruckStatus
		ok       bool
	}{
		{entities.TruckWaiting, entities.TruckCheckIn, true},
		{entities.TruckCheckIn, entities.TruckGrossIn, true},
		{entities.TruckGrossIn, entities.TruckUnloadLoop, true},
		{entities.TruckUnloadLoop, entities.TruckTareOut, true},
		{entities.TruckBatchReject, entities.TruckTareOut, true},
		{entities.TruckTareOut, entities.TruckClosed, true},
		{entities.TruckClosed, "", false},
		{entities.TruckStatus("PARKED"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.current), func(t *testing.T) {
			next, ok := NextTruckStatus(tt.current)
			if ok != tt.ok || next != tt.expected {
				t.Errorf("NextTruckStatus(%s) = (%s, %v), want (%s, %v)", tt.current, next, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestCanTransitionTruck_Totality(t *testing.T) {
	for _, from := range entities.TruckStatuses {
		for _, to := range entities.TruckStatuses {
			next, ok := NextTruckStatus(from)
			expected := ok && next == to
			if got := CanTransitionTruck(from, to); got != expected {
				t.Errorf("CanTransitionTruck(%s, %s) = %v, want %v", from, to, got, expected)
			}
		}
	}
}

func TestCanTransitionTruck_NoSkipsOrReversals(t *testing.T) {
	invalid := [][2]entities.TruckStatus{
		{entities.TruckCheckIn, entities.TruckUnloadLoop},
		{entities.TruckUnloadLoop, entities.TruckGrossIn},
		{entities.TruckUnloadLoop, entities.TruckBatchReject},
		{entities.TruckClosed, entities.TruckWaiting},
		{entities.TruckTareOut, entities.TruckTareOut},
	}

	for _, pair := range invalid {
		if CanTransitionTruck(pair[0], pair[1]) {
			t.Errorf("Expected %s -> %s to be rejected", pair[0], pair[1])
		}
	}
}
