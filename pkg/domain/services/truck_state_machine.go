package services

import "github.com/vsinha/baleyard/pkg/domain/entities"

// nextTruckStatus is the forward path of the intake protocol
var nextTruckStatus = map[entities.TruckStatus]entities.TruckStatus{
	entities.TruckWaiting:     entities.TruckCheckIn,
	entities.TruckCheckIn:     entities.TruckGrossIn,
	entities.TruckGrossIn:     entities.TruckUnloadLoop,
	entities.TruckUnloadLoop:  entities.TruckTareOut,
	entities.TruckBatchReject: entities.TruckTareOut,
	entities.TruckTareOut:     entities.TruckClosed,
}

// NextTruckStatus returns the status that follows current on the forward path.
// It reports false for the terminal state and for unknown values.
func NextTruckStatus(current entities.TruckStatus) (entities.TruckStatus, bool) {
	next, ok := nextTruckStatus[current]
	return next, ok
}

// CanTransitionTruck reports whether next is the forward successor of current.
// The UNLOAD_LOOP to BATCH_REJECT branch is taken only by a failed bale and is
// not an operator transition.
func CanTransitionTruck(current, next entities.TruckStatus) bool {
	expected, ok := nextTruckStatus[current]
	return ok && expected == next
}
