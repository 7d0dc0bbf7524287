package entities

import (
	"fmt"
	"time"
)

// TruckStatus is a state of the truck intake protocol
type TruckStatus string

const (
	TruckWaiting     TruckStatus = "WAIT_TRUCK"
	TruckCheckIn     TruckStatus = "CHECK_IN"
	TruckGrossIn     TruckStatus = "GROSS_IN"
	TruckUnloadLoop  TruckStatus = "UNLOAD_LOOP"
	TruckBatchReject TruckStatus = "BATCH_REJECT"
	TruckTareOut     TruckStatus = "TARE_OUT"
	TruckClosed      TruckStatus = "CLOSE_TRUCK_RECORD"
)

// TruckStatuses lists every status in protocol order
var TruckStatuses = []TruckStatus{
	TruckWaiting,
	TruckCheckIn,
	TruckGrossIn,
	TruckUnloadLoop,
	TruckBatchReject,
	TruckTareOut,
	TruckClosed,
}

// Unloading reports whether bales may be recorded against the truck
func (s TruckStatus) Unloading() bool {
	return s == TruckUnloadLoop || s == TruckBatchReject
}

// BatchDecision is the verdict on a whole truck load
type BatchDecision string

const (
	BatchAccepted BatchDecision = "Accepted"
	BatchRejected BatchDecision = "Rejected"
)

// TruckLoad is one delivery visit
type TruckLoad struct {
	TruckID             string        `json:"truckId"`
	SupplierID          string        `json:"supplierId"`
	Lot                 string        `json:"lot"`
	Source              string        `json:"source"`
	BaleType            BaleType      `json:"baleType"`
	DriverName          string        `json:"driverName,omitempty"`
	DriverCardID        string        `json:"driverCardId,omitempty"`
	DriverPhone         string        `json:"driverPhone,omitempty"`
	DriverLicense       string        `json:"driverLicense,omitempty"`
	VehicleRegistration string        `json:"vehicleRegistration,omitempty"`
	VehicleType         string        `json:"vehicleType,omitempty"`
	ExpectedBaleCount   int           `json:"expectedBaleCount,omitempty"`
	InTime              time.Time     `json:"inTime"`
	OutTime             *time.Time    `json:"outTime,omitempty"`
	GrossKg             *float64      `json:"gross,omitempty"`
	TareKg              *float64      `json:"tare,omitempty"`
	BaleCount           int           `json:"baleCount"`
	Status              TruckStatus   `json:"status"`
	BatchDecision       BatchDecision `json:"batchDecision,omitempty"`
	Notes               string        `json:"notes,omitempty"`
}

// NewTruckLoad creates a validated TruckLoad in the given initial status
func NewTruckLoad(truckID, supplierID, lot, source string, baleType BaleType, inTime time.Time, status TruckStatus) (*TruckLoad, error) {
	if truckID == "" {
		return nil, fmt.Errorf("truck id cannot be empty")
	}
	if supplierID == "" {
		return nil, fmt.Errorf("supplier id cannot be empty")
	}
	if lot == "" {
		return nil, fmt.Errorf("lot cannot be empty")
	}
	if !baleType.Known() {
		return nil, fmt.Errorf("unknown bale type %q", baleType)
	}
	if status != TruckWaiting && status != TruckCheckIn {
		return nil, fmt.Errorf("truck must start in %s or %s, got %s", TruckWaiting, TruckCheckIn, status)
	}

	return &TruckLoad{
		TruckID:    truckID,
		SupplierID: supplierID,
		Lot:        lot,
		Source:     source,
		BaleType:   baleType,
		InTime:     inTime,
		Status:     status,
	}, nil
}

// Closed reports whether the record reached its terminal state
func (t *TruckLoad) Closed() bool {
	return t.Status == TruckClosed
}

// NetWeightKg returns gross minus tare once both weights are recorded
func (t *TruckLoad) NetWeightKg() (float64, bool) {
	if t.GrossKg == nil || t.TareKg == nil {
		return 0, false
	}
	return *t.GrossKg - *t.TareKg, true
}

// Clone returns a copy that shares no pointers with t
func (t TruckLoad) Clone() TruckLoad {
	t.OutTime = cloneTime(t.OutTime)
	if t.GrossKg != nil {
		g := *t.GrossKg
		t.GrossKg = &g
	}
	if t.TareKg != nil {
		w := *t.TareKg
		t.TareKg = &w
	}
	return t
}
