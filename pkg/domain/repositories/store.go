package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

var (
	// ErrNotFound is returned by point lookups and mutators for unknown ids
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when adding a record whose id is taken
	ErrAlreadyExists = errors.New("already exists")
	// ErrConsistencyViolation is returned when a transaction would break a
	// bale/slot/pyramid invariant; nothing is applied
	ErrConsistencyViolation = errors.New("consistency violation")
)

// Reader provides point lookups and ordered collection reads. Returned values
// are copies; mutating them has no effect on the store.
type Reader interface {
	GetTruck(truckID string) (entities.TruckLoad, error)
	GetBale(baleID string) (entities.Bale, error)
	GetPyramid(pyramidID string) (entities.Pyramid, error)
	GetSlot(slotID string) (entities.Slot, error)
	GetSupplier(supplierID string) (entities.Supplier, error)
	GetAlert(alertID string) (entities.Alert, error)
	GetConsumptionBatch(batchID string) (entities.ConsumptionBatch, error)

	Trucks() []entities.TruckLoad
	Bales() []entities.Bale
	Pyramids() []entities.Pyramid
	Slots() []entities.Slot
	Suppliers() []entities.Supplier
	Alerts() []entities.Alert
	Batches() []entities.ConsumptionBatch
	Events() []entities.Event
	Config() entities.ProcessConfig
	Session() entities.Session
}

// Tx is the mutation surface handed to Store.Update. Partial updates are
// expressed as mutator functions; an error from a mutator aborts the transaction.
type Tx interface {
	Reader

	AddTruck(truck entities.TruckLoad) error
	UpdateTruck(truckID string, fn func(*entities.TruckLoad) error) error

	AddBale(bale entities.Bale) error
	UpdateBale(baleID string, fn func(*entities.Bale) error) error

	AddPyramid(pyramid entities.Pyramid) error
	UpdatePyramid(pyramidID string, fn func(*entities.Pyramid) error) error

	// PutSlot inserts the slot or replaces the record with the same SlotID
	PutSlot(slot entities.Slot) error
	UpdateSlot(slotID string, fn func(*entities.Slot) error) error

	AddSupplier(supplier entities.Supplier) error
	UpdateSupplier(supplierID string, fn func(*entities.Supplier) error) error

	AddAlert(alert entities.Alert) error
	ClearAlert(alertID, clearedBy string, at time.Time) error

	AddEvent(event entities.Event) error

	AddConsumptionBatch(batch entities.ConsumptionBatch) error
	UpdateConsumptionBatch(batchID string, fn func(*entities.ConsumptionBatch) error) error

	UpdateConfig(fn func(*entities.ProcessConfig) error) error
	UpdateSession(fn func(*entities.Session) error) error
}

// Store is the single-writer state container
type Store interface {
	Reader

	// Snapshot returns a deep copy of the whole state
	Snapshot() *entities.Snapshot

	// Update runs fn against a private copy of the state and applies it only
	// if fn succeeds, the consistency check passes and the persister commits
	Update(ctx context.Context, fn func(tx Tx) error) error
}
