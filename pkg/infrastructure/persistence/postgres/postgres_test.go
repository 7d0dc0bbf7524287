package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	"github.com/vsinha/baleyard/pkg/infrastructure/repositories/memory"
)

// openTestPersister connects to BALEYARD_TEST_POSTGRES_DSN and empties the table
func openTestPersister(t *testing.T) *Persister {
	t.Helper()
	dsn := os.Getenv("BALEYARD_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("BALEYARD_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	p, err := Open(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	_, err = p.db.ExecContext(ctx, `TRUNCATE baleyard_records`)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestPersister_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := openTestPersister(t)

	snap, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	store, err := memory.Open(ctx, memory.WithPersister(p))
	require.NoError(t, err)

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	err = store.Update(ctx, func(tx repositories.Tx) error {
		sup, err := entities.NewSupplier("SUP001", "Agro Prime", entities.Tier1, now)
		if err != nil {
			return err
		}
		if err := tx.AddSupplier(*sup); err != nil {
			return err
		}
		return tx.UpdateSession(func(s *entities.Session) error {
			s.CurrentRole = entities.RoleSupervisor
			return nil
		})
	})
	require.NoError(t, err)

	err = store.Update(ctx, func(tx repositories.Tx) error {
		return tx.UpdateSupplier("SUP001", func(s *entities.Supplier) error {
			s.Score = 91.5
			return nil
		})
	})
	require.NoError(t, err)

	reopened, err := memory.Open(ctx, memory.WithPersister(p))
	require.NoError(t, err)
	sup, err := reopened.GetSupplier("SUP001")
	require.NoError(t, err)
	assert.Equal(t, 91.5, sup.Score)
	assert.Len(t, reopened.Suppliers(), 1)
	assert.Equal(t, entities.RoleSupervisor, reopened.Session().CurrentRole)
}

func TestPersister_CommitIsAtomic(t *testing.T) {
	ctx := context.Background()
	p := openTestPersister(t)

	err := p.Commit(ctx, []repositories.Change{
		{Collection: repositories.CollectionEvents, Key: "EVT-1", Seq: 0, Value: entities.Event{EventID: "EVT-1"}},
		{Collection: repositories.CollectionEvents, Key: "EVT-2", Seq: 1, Value: func() {}},
	})
	assert.Error(t, err)

	snap, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)
}
