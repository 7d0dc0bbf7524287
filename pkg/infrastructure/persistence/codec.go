// Package persistence holds the record codec shared by the durable store backends.
package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
)

// Record is one persisted row: a collection member at a fixed position
type Record struct {
	Collection string
	Seq        int
	Key        string
	Body       []byte
}

// Encode marshals a committed change into a record
func Encode(c repositories.Change) (Record, error) {
	body, err := json.Marshal(c.Value)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s %s: %w", c.Collection, c.Key, err)
	}
	return Record{Collection: c.Collection, Seq: c.Seq, Key: c.Key, Body: body}, nil
}

// SnapshotBuilder reassembles a snapshot from records. Records of one
// collection must be added in sequence order.
type SnapshotBuilder struct {
	snap  *entities.Snapshot
	count int
}

// NewSnapshotBuilder starts from default config and session
func NewSnapshotBuilder() *SnapshotBuilder {
	return &SnapshotBuilder{snap: entities.NewSnapshot()}
}

// Add decodes body into the named collection
func (b *SnapshotBuilder) Add(collection string, body []byte) error {
	var err error
	switch collection {
	case repositories.CollectionTrucks:
		b.snap.Trucks, err = appendDecoded(b.snap.Trucks, body)
	case repositories.CollectionBales:
		b.snap.Bales, err = appendDecoded(b.snap.Bales, body)
	case repositories.CollectionPyramids:
		b.snap.Pyramids, err = appendDecoded(b.snap.Pyramids, body)
	case repositories.CollectionSlots:
		b.snap.Slots, err = appendDecoded(b.snap.Slots, body)
	case repositories.CollectionSuppliers:
		b.snap.Suppliers, err = appendDecoded(b.snap.Suppliers, body)
	case repositories.CollectionBatches:
		b.snap.Batches, err = appendDecoded(b.snap.Batches, body)
	case repositories.CollectionAlerts:
		b.snap.Alerts, err = appendDecoded(b.snap.Alerts, body)
	case repositories.CollectionEvents:
		b.snap.Events, err = appendDecoded(b.snap.Events, body)
	case repositories.CollectionConfig:
		err = json.Unmarshal(body, &b.snap.Config)
	case repositories.CollectionSession:
		err = json.Unmarshal(body, &b.snap.Session)
	default:
		return fmt.Errorf("unknown collection %q", collection)
	}
	if err != nil {
		return fmt.Errorf("decode %s record: %w", collection, err)
	}
	b.count++
	return nil
}

// Snapshot returns the assembled state, or nil when no record was added
func (b *SnapshotBuilder) Snapshot() *entities.Snapshot {
	if b.count == 0 {
		return nil
	}
	return b.snap
}

func appendDecoded[T any](dst []T, body []byte) ([]T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return dst, err
	}
	return append(dst, v), nil
}
