package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/baleyard/pkg/application/services"
	"github.com/vsinha/baleyard/pkg/domain/entities"
)

type supplierRequest struct {
	SupplierID    string                  `json:"supplierId"`
	Name          string                  `json:"name"`
	ContactPerson string                  `json:"contactPerson"`
	Email         string                  `json:"email" binding:"omitempty,email"`
	Phone         string                  `json:"phone"`
	Address       string                  `json:"address"`
	Tier          entities.Tier           `json:"tier" binding:"omitempty,min=1,max=3"`
	Status        entities.SupplierStatus `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r supplierRequest) input() services.SupplierInput {
	return services.SupplierInput{
		SupplierID:    r.SupplierID,
		Name:          r.Name,
		ContactPerson: r.ContactPerson,
		Email:         r.Email,
		Phone:         r.Phone,
		Address:       r.Address,
		Tier:          r.Tier,
		Status:        r.Status,
	}
}

type tierOverrideRequest struct {
	// Tier clears the override when null
	Tier *entities.Tier `json:"tier" binding:"omitempty,min=1,max=3"`
}

func (s *Server) listSuppliers(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Suppliers())
}

func (s *Server) getSupplier(c *gin.Context) {
	sup, err := s.store.GetSupplier(c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sup)
}

func (s *Server) addSupplier(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	sup, err := s.suppliers.AddSupplier(c.Request.Context(), req.input(), actorFrom(c).OperatorID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sup)
}

func (s *Server) updateSupplier(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	in := req.input()
	in.SupplierID = c.Param("id")
	sup, err := s.suppliers.UpdateSupplier(c.Request.Context(), in, actorFrom(c).OperatorID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sup)
}

func (s *Server) recompute(c *gin.Context) {
	sup, err := s.suppliers.Recompute(c.Request.Context(), c.Param("id"), actorFrom(c).OperatorID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sup)
}

func (s *Server) recomputeAll(c *gin.Context) {
	sups, err := s.suppliers.RecomputeAll(c.Request.Context(), actorFrom(c).OperatorID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sups)
}

func (s *Server) setTierOverride(c *gin.Context) {
	var req tierOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	sup, err := s.suppliers.SetTierOverride(c.Request.Context(), c.Param("id"), req.Tier, actorFrom(c).OperatorID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sup)
}
