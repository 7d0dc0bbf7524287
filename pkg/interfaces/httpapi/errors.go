package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/application/services"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	domainsvc "github.com/vsinha/baleyard/pkg/domain/services"
)

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorMappings is checked in order; the first errors.Is match wins
var errorMappings = []errorMapping{
	{services.ErrForbidden, http.StatusForbidden, "forbidden"},
	{repositories.ErrNotFound, http.StatusNotFound, "not_found"},

	{services.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{services.ErrUnknownTraceKind, http.StatusBadRequest, "invalid_input"},
	{domainsvc.ErrInvalidMeasurement, http.StatusBadRequest, "invalid_measurement"},
	{domainsvc.ErrUnknownSpecies, http.StatusBadRequest, "unknown_species"},

	{repositories.ErrAlreadyExists, http.StatusConflict, "already_exists"},
	{repositories.ErrConsistencyViolation, http.StatusConflict, "consistency_violation"},
	{domainsvc.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{domainsvc.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{domainsvc.ErrTruckClosed, http.StatusConflict, "truck_closed"},
	{domainsvc.ErrMissingWeight, http.StatusConflict, "missing_weight"},
	{domainsvc.ErrNoSlotAvailable, http.StatusConflict, "no_slot"},
	{domainsvc.ErrBaleNotPassed, http.StatusConflict, "bale_not_passed"},
	{domainsvc.ErrBaleAlreadyPlaced, http.StatusConflict, "bale_already_placed"},
	{domainsvc.ErrPyramidLocked, http.StatusConflict, "pyramid_locked"},
	{domainsvc.ErrGradeMismatch, http.StatusConflict, "grade_mismatch"},
	{domainsvc.ErrSlotOccupied, http.StatusConflict, "slot_occupied"},
	{domainsvc.ErrCoordOutOfRange, http.StatusConflict, "coord_out_of_range"},
	{services.ErrSupplierInactive, http.StatusConflict, "supplier_inactive"},
	{services.ErrNothingToConsume, http.StatusConflict, "nothing_to_consume"},
	{services.ErrBaleUnavailable, http.StatusConflict, "bale_unavailable"},
	{services.ErrBatchCompleted, http.StatusConflict, "batch_completed"},
	{services.ErrAlertCleared, http.StatusConflict, "alert_cleared"},
}

// statusFor maps a service error to its HTTP status and error code
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

// abortWithError writes the mapped error response and stops the chain
func (s *Server) abortWithError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

// abortWithBindError reports a request body or query that failed binding
func abortWithBindError(c *gin.Context, err error) {
	msg := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, describeFieldError(fe))
		}
		msg = strings.Join(parts, "; ")
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "invalid_input"})
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "gt", "gte", "lt", "lte", "min", "max":
		return fmt.Sprintf("%s must be %s %s", fe.Field(), fe.Tag(), fe.Param())
	case "grade":
		return fmt.Sprintf("%s is not a known quality grade", fe.Field())
	case "baletype":
		return fmt.Sprintf("%s is not a known bale type", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
