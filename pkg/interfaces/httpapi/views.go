package httpapi

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/interfaces/cli/output"
)

// getDashboard returns the yard overview as JSON, or as an HTML page with
// ?format=html
func (s *Server) getDashboard(c *gin.Context) {
	d := s.dashboard.Dashboard()
	if c.Query("format") != output.FormatHTML {
		c.JSON(http.StatusOK, d)
		return
	}
	var buf bytes.Buffer
	if err := output.RenderDashboardHTML(&buf, d, s.store.Trucks()); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// listEvents returns the audit log newest first, limited by ?limit
func (s *Server) listEvents(c *gin.Context) {
	evs := s.store.Events()
	limit := len(evs)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer", Code: "invalid_input"})
			return
		}
		if n < limit {
			limit = n
		}
	}
	out := make([]entities.Event, 0, limit)
	for i := len(evs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, evs[i])
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) traceRecords(c *gin.Context) {
	res, err := s.trace.Trace(c.Param("kind"), c.Param("term"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Config())
}

// configPatch holds the settings a PATCH may change; absent fields are kept
type configPatch struct {
	Species             map[entities.Species]entities.SpeciesThreshold `json:"species"`
	BatchRejectEnabled  *bool                                          `json:"batchRejectEnabled"`
	ReloadThresholdDays *int                                           `json:"reloadThresholdDays" binding:"omitempty,gte=0"`
	DailyUsageByGrade   map[entities.Grade]int                         `json:"dailyUsageByGrade"`
	PyramidShape        *entities.Shape                                `json:"pyramidShape"`
	Timezone            *string                                        `json:"timezone"`
}

func (p configPatch) apply(cfg *entities.ProcessConfig) error {
	for species, t := range p.Species {
		cfg.Species[species] = t
	}
	if p.BatchRejectEnabled != nil {
		cfg.BatchRejectEnabled = *p.BatchRejectEnabled
	}
	if p.ReloadThresholdDays != nil {
		cfg.ReloadThresholdDays = *p.ReloadThresholdDays
	}
	for grade, usage := range p.DailyUsageByGrade {
		cfg.DailyUsageByGrade[grade] = usage
	}
	if p.PyramidShape != nil {
		cfg.PyramidShape = *p.PyramidShape
	}
	if p.Timezone != nil {
		cfg.Timezone = *p.Timezone
	}
	return nil
}

func (s *Server) patchConfig(c *gin.Context) {
	var patch configPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithBindError(c, err)
		return
	}
	cfg, err := s.settings.UpdateProcessConfig(c.Request.Context(), actorFrom(c).OperatorID, patch.apply)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Session())
}

type sessionRequest struct {
	Role       entities.Role `json:"currentRole" binding:"required,oneof=Admin Supervisor Operator Viewer"`
	OperatorID string        `json:"operatorId"`
}

func (s *Server) putSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	session, err := s.settings.SetSession(c.Request.Context(), req.Role, req.OperatorID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
