package events

import (
	"time"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

const (
	TruckCheckedInEvent     = "truck.checked_in"
	TruckStatusChangedEvent = "truck.status_changed"
	TruckBatchRejectedEvent = "truck.batch_rejected"

	BaleRecordedEvent = "bale.recorded"
	BalePlacedEvent   = "bale.placed"

	PyramidStatusChangedEvent = "pyramid.status_changed"

	BatchCreatedEvent   = "batch.created"
	BatchCompletedEvent = "batch.completed"

	AlertRaisedEvent  = "alert.raised"
	AlertClearedEvent = "alert.cleared"

	SupplierUpdatedEvent = "supplier.updated"
	ConfigUpdatedEvent   = "config.updated"
)

// AllEventTypes lists every event the yard publishes
var AllEventTypes = []string{
	TruckCheckedInEvent,
	TruckStatusChangedEvent,
	TruckBatchRejectedEvent,
	BaleRecordedEvent,
	BalePlacedEvent,
	PyramidStatusChangedEvent,
	BatchCreatedEvent,
	BatchCompletedEvent,
	AlertRaisedEvent,
	AlertClearedEvent,
	SupplierUpdatedEvent,
	ConfigUpdatedEvent,
}

type TruckCheckedIn struct {
	Truck entities.TruckLoad `json:"truck"`
}

type TruckStatusChanged struct {
	TruckID string               `json:"truck_id"`
	From    entities.TruckStatus `json:"from"`
	To      entities.TruckStatus `json:"to"`
}

type TruckBatchRejected struct {
	TruckID string `json:"truck_id"`
	BaleID  string `json:"bale_id"`
}

type BaleRecorded struct {
	Bale     entities.Bale     `json:"bale"`
	Supplier string            `json:"supplier_id"`
	Decision entities.Decision `json:"decision"`
}

type BalePlaced struct {
	BaleID    string         `json:"bale_id"`
	PyramidID string         `json:"pyramid_id"`
	Grade     entities.Grade `json:"grade"`
	Slot      entities.Slot  `json:"slot"`
}

type PyramidStatusChanged struct {
	PyramidID string                 `json:"pyramid_id"`
	Status    entities.PyramidStatus `json:"status"`
}

type BatchCreated struct {
	Batch entities.ConsumptionBatch `json:"batch"`
}

type BatchCompleted struct {
	BatchID string    `json:"batch_id"`
	EndTs   time.Time `json:"end_ts"`
}

type AlertRaised struct {
	Alert entities.Alert `json:"alert"`
}

type AlertCleared struct {
	AlertID   string `json:"alert_id"`
	ClearedBy string `json:"cleared_by"`
}

type SupplierUpdated struct {
	Supplier entities.Supplier `json:"supplier"`
}

type ConfigUpdated struct {
	Config entities.ProcessConfig `json:"config"`
}

func NewTruckCheckedInEvent(truck entities.TruckLoad, at time.Time) Event {
	return NewEvent(TruckCheckedInEvent, truck.TruckID, TruckCheckedIn{Truck: truck}, at)
}

func NewTruckStatusChangedEvent(truckID string, from, to entities.TruckStatus, at time.Time) Event {
	return NewEvent(TruckStatusChangedEvent, truckID, TruckStatusChanged{TruckID: truckID, From: from, To: to}, at)
}

func NewTruckBatchRejectedEvent(truckID, baleID string, at time.Time) Event {
	return NewEvent(TruckBatchRejectedEvent, truckID, TruckBatchRejected{TruckID: truckID, BaleID: baleID}, at)
}

func NewBaleRecordedEvent(bale entities.Bale, supplierID string, at time.Time) Event {
	return NewEvent(BaleRecordedEvent, bale.TruckID, BaleRecorded{Bale: bale, Supplier: supplierID, Decision: bale.Decision}, at)
}

func NewBalePlacedEvent(bale entities.Bale, grade entities.Grade, slot entities.Slot, at time.Time) Event {
	return NewEvent(BalePlacedEvent, bale.PyramidID, BalePlaced{
		BaleID:    bale.BaleID,
		PyramidID: bale.PyramidID,
		Grade:     grade,
		Slot:      slot,
	}, at)
}

func NewPyramidStatusChangedEvent(pyramidID string, status entities.PyramidStatus, at time.Time) Event {
	return NewEvent(PyramidStatusChangedEvent, pyramidID, PyramidStatusChanged{PyramidID: pyramidID, Status: status}, at)
}

func NewBatchCreatedEvent(batch entities.ConsumptionBatch, at time.Time) Event {
	return NewEvent(BatchCreatedEvent, batch.Line, BatchCreated{Batch: batch}, at)
}

func NewBatchCompletedEvent(batch entities.ConsumptionBatch, at time.Time) Event {
	return NewEvent(BatchCompletedEvent, batch.Line, BatchCompleted{BatchID: batch.BatchID, EndTs: at}, at)
}

func NewAlertRaisedEvent(alert entities.Alert) Event {
	return NewEvent(AlertRaisedEvent, string(alert.Type), AlertRaised{Alert: alert}, alert.CreatedAt)
}

func NewAlertClearedEvent(alert entities.Alert, clearedBy string, at time.Time) Event {
	return NewEvent(AlertClearedEvent, string(alert.Type), AlertCleared{AlertID: alert.AlertID, ClearedBy: clearedBy}, at)
}

func NewSupplierUpdatedEvent(supplier entities.Supplier, at time.Time) Event {
	return NewEvent(SupplierUpdatedEvent, supplier.SupplierID, SupplierUpdated{Supplier: supplier}, at)
}

func NewConfigUpdatedEvent(cfg entities.ProcessConfig, at time.Time) Event {
	return NewEvent(ConfigUpdatedEvent, "config", ConfigUpdated{Config: cfg}, at)
}
