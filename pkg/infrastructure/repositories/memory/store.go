package memory

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
)

// CommitHook is called after a transaction is applied, outside the write lock
type CommitHook func(changes []repositories.Change)

// Store is the in-memory single-writer state container. Mutations are
// serialised; an optional Persister receives every committed change set.
type Store struct {
	mu        sync.RWMutex
	state     *state
	persister repositories.Persister
	hooks     []CommitHook
	logger    *zap.Logger
}

// Option configures a Store
type Option func(*Store)

// WithPersister makes the store load from and commit to p
func WithPersister(p repositories.Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithLogger sets the store logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithCommitHook registers fn to observe committed changes
func WithCommitHook(fn CommitHook) Option {
	return func(s *Store) { s.hooks = append(s.hooks, fn) }
}

// NewStore creates an empty store with default config and session
func NewStore(opts ...Option) *Store {
	s := &Store{state: newState(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a store and loads the persister's state into it
func Open(ctx context.Context, opts ...Option) (*Store, error) {
	s := NewStore(opts...)
	if s.persister == nil {
		return s, nil
	}

	snap, err := s.persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	if snap == nil {
		return s, nil
	}

	st, err := stateFromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	s.state = st
	s.logger.Info("store loaded",
		zap.Int("trucks", len(snap.Trucks)),
		zap.Int("bales", len(snap.Bales)),
		zap.Int("pyramids", len(snap.Pyramids)))
	return s, nil
}

// Verify interface compliance
var _ repositories.Store = (*Store)(nil)

// Update runs fn in a transaction. Nothing is applied if fn fails, the
// consistency check fails, or the persister cannot commit.
func (s *Store) Update(ctx context.Context, fn func(tx repositories.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	changes, err := s.commit(ctx, fn)
	if err != nil {
		return err
	}

	for _, hook := range s.hooks {
		hook(changes)
	}
	return nil
}

// commit applies fn to a working copy under the write lock and swaps it in.
// The lock is released even when fn panics.
func (s *Store) commit(ctx context.Context, fn func(tx repositories.Tx) error) ([]repositories.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.copy()
	t := newTx(working)
	if err := fn(t); err != nil {
		return nil, err
	}
	if err := working.check(t.keys(repositories.CollectionBales), t.keys(repositories.CollectionSlots)); err != nil {
		s.logger.Warn("transaction rolled back", zap.Error(err))
		return nil, err
	}

	changes := t.changes()
	if s.persister != nil && len(changes) > 0 {
		if err := s.persister.Commit(ctx, changes); err != nil {
			return nil, fmt.Errorf("failed to persist transaction: %w", err)
		}
	}
	s.state = working
	return changes, nil
}

// Snapshot returns a deep copy of the state
func (s *Store) Snapshot() *entities.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.snapshot()
}

func (s *Store) read() reader {
	return reader{s: s.state}
}

// GetTruck returns the truck with the given id
func (s *Store) GetTruck(truckID string) (entities.TruckLoad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetTruck(truckID)
}

// GetBale returns the bale with the given id
func (s *Store) GetBale(baleID string) (entities.Bale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetBale(baleID)
}

// GetPyramid returns the pyramid with the given id
func (s *Store) GetPyramid(pyramidID string) (entities.Pyramid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetPyramid(pyramidID)
}

// GetSlot returns the slot with the given key
func (s *Store) GetSlot(slotID string) (entities.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetSlot(slotID)
}

// GetSupplier returns the supplier with the given id
func (s *Store) GetSupplier(supplierID string) (entities.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetSupplier(supplierID)
}

// GetAlert returns the alert with the given id
func (s *Store) GetAlert(alertID string) (entities.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetAlert(alertID)
}

// GetConsumptionBatch returns the batch with the given id
func (s *Store) GetConsumptionBatch(batchID string) (entities.ConsumptionBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetConsumptionBatch(batchID)
}

func (s *Store) Trucks() []entities.TruckLoad {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Trucks()
}

func (s *Store) Bales() []entities.Bale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Bales()
}

func (s *Store) Pyramids() []entities.Pyramid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Pyramids()
}

func (s *Store) Slots() []entities.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Slots()
}

func (s *Store) Suppliers() []entities.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Suppliers()
}

func (s *Store) Alerts() []entities.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Alerts()
}

func (s *Store) Batches() []entities.ConsumptionBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Batches()
}

func (s *Store) Events() []entities.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Events()
}

func (s *Store) Config() entities.ProcessConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Config()
}

func (s *Store) Session() entities.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Session()
}
