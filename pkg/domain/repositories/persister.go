package repositories

import (
	"context"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

// Collection names used as persistence namespaces
const (
	CollectionTrucks    = "trucks"
	CollectionBales     = "bales"
	CollectionPyramids  = "pyramids"
	CollectionSlots     = "slots"
	CollectionSuppliers = "suppliers"
	CollectionBatches   = "batches"
	CollectionAlerts    = "alerts"
	CollectionEvents    = "events"
	CollectionConfig    = "config"
	CollectionSession   = "session"
)

// SingletonKey is the key of the config and session records
const SingletonKey = "current"

// Change is one record written by a transaction. Seq is the record's position
// in its collection and stays fixed across updates.
type Change struct {
	Collection string
	Key        string
	Seq        int
	Value      interface{}
}

// Persister stores committed changes durably
type Persister interface {
	// Load returns the persisted state, or nil when nothing has been stored yet
	Load(ctx context.Context) (*entities.Snapshot, error)
	// Commit writes all changes atomically
	Commit(ctx context.Context, changes []Change) error
	Close() error
}
