package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/baleyard/pkg/application/services"
	"github.com/vsinha/baleyard/pkg/domain/entities"
)

type checkInRequest struct {
	TruckID             string            `json:"truckId"`
	SupplierID          string            `json:"supplierId"`
	Lot                 string            `json:"lot"`
	Source              string            `json:"source"`
	BaleType            entities.BaleType `json:"baleType" binding:"omitempty,baletype"`
	DriverName          string            `json:"driverName"`
	DriverCardID        string            `json:"driverCardId"`
	DriverPhone         string            `json:"driverPhone"`
	DriverLicense       string            `json:"driverLicense"`
	VehicleRegistration string            `json:"vehicleRegistration"`
	VehicleType         string            `json:"vehicleType"`
	ExpectedBaleCount   int               `json:"expectedBaleCount" binding:"gte=0"`
	Notes               string            `json:"notes"`
}

func (r checkInRequest) input(operatorID string) services.CheckInInput {
	return services.CheckInInput{
		TruckID:             r.TruckID,
		SupplierID:          r.SupplierID,
		Lot:                 r.Lot,
		Source:              r.Source,
		BaleType:            r.BaleType,
		DriverName:          r.DriverName,
		DriverCardID:        r.DriverCardID,
		DriverPhone:         r.DriverPhone,
		DriverLicense:       r.DriverLicense,
		VehicleRegistration: r.VehicleRegistration,
		VehicleType:         r.VehicleType,
		ExpectedBaleCount:   r.ExpectedBaleCount,
		Notes:               r.Notes,
		OperatorID:          operatorID,
	}
}

type advanceRequest struct {
	GrossKg *float64 `json:"grossKg" binding:"omitempty,gt=0"`
	TareKg  *float64 `json:"tareKg" binding:"omitempty,gt=0"`
}

type recordBaleRequest struct {
	BaleID      string           `json:"baleId"`
	Species     entities.Species `json:"species"`
	MoisturePct *float64         `json:"moisturePct" binding:"required,gte=0,lte=100"`
	WeightKg    *float64         `json:"weightKg" binding:"required,gt=0"`
	Grade       entities.Grade   `json:"grade" binding:"omitempty,grade"`
	PyramidID   string           `json:"pyramidId"`
}

type recordBaleResponse struct {
	Bale           entities.Bale      `json:"bale"`
	Truck          entities.TruckLoad `json:"truck"`
	BatchRejected  bool               `json:"batchRejected"`
	Alert          *entities.Alert    `json:"alert,omitempty"`
	Warnings       []string           `json:"warnings,omitempty"`
	Slot           *entities.Slot     `json:"slot,omitempty"`
	PlacementError string             `json:"placementError,omitempty"`
}

func (s *Server) listTrucks(c *gin.Context) {
	status := entities.TruckStatus(c.Query("status"))
	trucks := s.store.Trucks()
	out := make([]entities.TruckLoad, 0, len(trucks))
	for _, t := range trucks {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getTruck(c *gin.Context) {
	truck, err := s.store.GetTruck(c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.TruckView(truck, s.store.Bales()))
}

func (s *Server) checkIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	truck, err := s.intake.CheckIn(c.Request.Context(), req.input(actorFrom(c).OperatorID))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, truck)
}

func (s *Server) registerTruck(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	truck, err := s.intake.RegisterTruck(c.Request.Context(), req.input(actorFrom(c).OperatorID))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, truck)
}

func (s *Server) advanceTruck(c *gin.Context) {
	var req advanceRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithBindError(c, err)
			return
		}
	}
	truck, err := s.intake.AdvanceTruck(c.Request.Context(), c.Param("id"), services.AdvanceInput{
		GrossKg:    req.GrossKg,
		TareKg:     req.TareKg,
		OperatorID: actorFrom(c).OperatorID,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, truck)
}

func (s *Server) recordBale(c *gin.Context) {
	var req recordBaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	out, err := s.intake.RecordBale(c.Request.Context(), services.QAInput{
		TruckID:     c.Param("id"),
		BaleID:      req.BaleID,
		Species:     req.Species,
		MoisturePct: *req.MoisturePct,
		WeightKg:    *req.WeightKg,
		OperatorID:  actorFrom(c).OperatorID,
		Grade:       req.Grade,
		PyramidID:   req.PyramidID,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	resp := recordBaleResponse{
		Bale:          out.Bale,
		Truck:         out.Truck,
		BatchRejected: out.BatchRejected,
		Alert:         out.Alert,
		Warnings:      out.Warnings,
	}
	if out.Placement != nil {
		resp.Bale = out.Placement.Bale
		resp.Slot = &out.Placement.Slot
	}
	if out.PlacementErr != nil {
		resp.PlacementError = out.PlacementErr.Error()
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) listBales(c *gin.Context) {
	bales := s.store.Bales()
	truckID := c.Query("truckId")
	decision := entities.Decision(c.Query("decision"))
	out := make([]entities.Bale, 0, len(bales))
	for _, b := range bales {
		if truckID != "" && b.TruckID != truckID {
			continue
		}
		if decision != "" && b.Decision != decision {
			continue
		}
		out = append(out, b)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getBale(c *gin.Context) {
	bale, err := s.store.GetBale(c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bale)
}
