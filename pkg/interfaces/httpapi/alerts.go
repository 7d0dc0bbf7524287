package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/baleyard/pkg/application/services"
	"github.com/vsinha/baleyard/pkg/domain/entities"
)

type raiseAlertRequest struct {
	Type     entities.AlertType `json:"type" binding:"required,oneof=Reload Quality Equipment"`
	Severity entities.Severity  `json:"severity" binding:"required,oneof=info warn critical"`
	Message  string             `json:"message" binding:"required"`
	Meta     map[string]string  `json:"meta"`
}

func (s *Server) listAlerts(c *gin.Context) {
	if c.Query("active") == "true" {
		c.JSON(http.StatusOK, s.alerts.Active())
		return
	}
	c.JSON(http.StatusOK, s.store.Alerts())
}

func (s *Server) raiseAlert(c *gin.Context) {
	var req raiseAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	alert, err := s.alerts.Raise(c.Request.Context(), services.RaiseInput{
		Type:     req.Type,
		Severity: req.Severity,
		Message:  req.Message,
		Meta:     req.Meta,
		Actor:    actorFrom(c).OperatorID,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

func (s *Server) clearAlert(c *gin.Context) {
	alert, err := s.alerts.Clear(c.Request.Context(), c.Param("id"), actorFrom(c).OperatorID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (s *Server) evaluateAlerts(c *gin.Context) {
	raised, err := s.alerts.EvaluateReload(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if raised == nil {
		raised = []entities.Alert{}
	}
	c.JSON(http.StatusOK, raised)
}
