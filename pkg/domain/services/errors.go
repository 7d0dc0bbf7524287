package services

import "errors"

var (
	// ErrUnknownSpecies is returned when no threshold is configured for a species
	ErrUnknownSpecies = errors.New("unknown species")
	// ErrInvalidMeasurement is returned for NaN, negative or out-of-range readings
	ErrInvalidMeasurement = errors.New("invalid measurement")

	ErrInvalidTransition = errors.New("invalid truck status transition")
	ErrInvalidState      = errors.New("truck is not in a state that allows this operation")
	ErrTruckClosed       = errors.New("truck record is closed")
	ErrMissingWeight     = errors.New("weight must be positive")

	ErrBaleNotPassed     = errors.New("bale did not pass QA")
	ErrBaleAlreadyPlaced = errors.New("bale is already placed")
	ErrPyramidLocked     = errors.New("pyramid is locked")
	ErrGradeMismatch     = errors.New("pyramid grade does not match")
	ErrCoordOutOfRange   = errors.New("coordinate outside pyramid shape")
	ErrSlotOccupied      = errors.New("slot is occupied")
	ErrNoSlotAvailable   = errors.New("no slot available")
)
