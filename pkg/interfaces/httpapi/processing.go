package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/baleyard/pkg/application/services"
	"github.com/vsinha/baleyard/pkg/domain/entities"
)

const defaultFEFOCount = 10

type fefoQuery struct {
	Grade entities.Grade `form:"grade" binding:"required,grade"`
	N     int            `form:"n" binding:"omitempty,gte=1,lte=1000"`
}

type createBatchRequest struct {
	Line    string         `json:"line" binding:"required"`
	BaleIDs []string       `json:"baleIds"`
	Grade   entities.Grade `json:"grade" binding:"omitempty,grade"`
	Count   int            `json:"count" binding:"gte=0"`
}

func (s *Server) suggestFEFO(c *gin.Context) {
	var q fefoQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithBindError(c, err)
		return
	}
	if q.N == 0 {
		q.N = defaultFEFOCount
	}
	c.JSON(http.StatusOK, s.processing.SuggestFEFO(q.Grade, q.N))
}

func (s *Server) listBatches(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Batches())
}

func (s *Server) createBatch(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	batch, err := s.processing.CreateBatch(c.Request.Context(), services.BatchInput{
		Line:       req.Line,
		BaleIDs:    req.BaleIDs,
		Grade:      req.Grade,
		Count:      req.Count,
		OperatorID: actorFrom(c).OperatorID,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

func (s *Server) completeBatch(c *gin.Context) {
	batch, err := s.processing.CompleteBatch(c.Request.Context(), c.Param("id"), actorFrom(c).OperatorID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}
