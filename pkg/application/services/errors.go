package services

import "errors"

var (
	ErrForbidden        = errors.New("role is not permitted to perform this action")
	ErrNothingToConsume = errors.New("no bales available for consumption")
	ErrBaleUnavailable  = errors.New("bale is not available for processing")
	ErrBatchCompleted   = errors.New("consumption batch already completed")
	ErrAlertCleared     = errors.New("alert already cleared")
	ErrUnknownTraceKind = errors.New("unknown trace kind")
	ErrInvalidInput     = errors.New("invalid input")
	ErrSupplierInactive = errors.New("supplier is inactive")
)
