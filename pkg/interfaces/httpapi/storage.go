package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/baleyard/pkg/application/dto"
	"github.com/vsinha/baleyard/pkg/application/services"
	"github.com/vsinha/baleyard/pkg/domain/entities"
)

type placeRequest struct {
	PyramidID string         `json:"pyramidId"`
	Grade     entities.Grade `json:"grade" binding:"omitempty,grade"`
}

type placeResponse struct {
	Bale entities.Bale `json:"bale"`
	Slot entities.Slot `json:"slot"`
}

func (s *Server) placeBale(c *gin.Context) {
	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	placement, err := s.storage.PlaceBale(c.Request.Context(), c.Param("id"), services.PlaceInput{
		PyramidID:  req.PyramidID,
		Grade:      req.Grade,
		OperatorID: actorFrom(c).OperatorID,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, placeResponse{Bale: placement.Bale, Slot: placement.Slot})
}

func (s *Server) listPyramids(c *gin.Context) {
	c.JSON(http.StatusOK, services.PyramidViews(s.store.Pyramids(), s.store.Slots()))
}

type pyramidDetail struct {
	dto.PyramidView
	Slots []entities.Slot `json:"slots"`
}

func (s *Server) getPyramid(c *gin.Context) {
	p, err := s.store.GetPyramid(c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	all := s.store.Slots()
	slots := make([]entities.Slot, 0)
	for _, sl := range all {
		if sl.PyramidID == p.PyramidID && sl.Occupied() {
			slots = append(slots, sl)
		}
	}
	c.JSON(http.StatusOK, pyramidDetail{
		PyramidView: services.PyramidViews([]entities.Pyramid{p}, all)[0],
		Slots:       slots,
	})
}

type addPyramidRequest struct {
	PyramidID string         `json:"pyramidId" binding:"required"`
	Grade     entities.Grade `json:"qualityGrade" binding:"required,grade"`
	Zone      string         `json:"zone"`
	Origin    entities.Coord `json:"origin"`
	Shape     entities.Shape `json:"shape"`
}

func (s *Server) addPyramid(c *gin.Context) {
	var req addPyramidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	p, err := s.storage.AddPyramid(c.Request.Context(), req.PyramidID, req.Grade, req.Zone, req.Origin, req.Shape)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type pyramidStatusRequest struct {
	Status entities.PyramidStatus `json:"status" binding:"required,oneof=Active Locked"`
}

func (s *Server) setPyramidStatus(c *gin.Context) {
	var req pyramidStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	p, err := s.storage.SetPyramidStatus(c.Request.Context(), c.Param("id"), req.Status, actorFrom(c).OperatorID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
