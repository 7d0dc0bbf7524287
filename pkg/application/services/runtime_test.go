package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	testhelpers "github.com/vsinha/baleyard/pkg/application/services/testing"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/infrastructure/events"
	"github.com/vsinha/baleyard/pkg/infrastructure/repositories/memory"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// newTestRuntime wires a runtime with deterministic ids and a frozen clock
func newTestRuntime(store *memory.Store) (Runtime, *events.InMemoryEventStore) {
	eventStore := events.NewInMemoryEventStore(zap.NewNop())
	return Runtime{
		Store:  store,
		Events: eventStore,
		Clock:  testhelpers.FixedClock(testNow),
		IDs:    &SequenceGenerator{},
		Logger: zap.NewNop(),
	}, eventStore
}

func eventTypes(t *testing.T, es *events.InMemoryEventStore) []string {
	t.Helper()
	es.Wait()
	all, err := es.ReadAllEvents(0)
	require.NoError(t, err)
	types := make([]string, 0, len(all))
	for _, e := range all {
		types = append(types, e.Type())
	}
	return types
}

func TestSequenceGenerator(t *testing.T) {
	g := &SequenceGenerator{}
	assert.Equal(t, "BALE-000001", g.NewID("BALE"))
	assert.Equal(t, "TRK-000002", g.NewID("TRK"))
}

func TestUUIDGenerator(t *testing.T) {
	id := UUIDGenerator{}.NewID("BALE")
	assert.Regexp(t, `^BALE-[0-9A-F]{8}$`, id)
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		role    entities.Role
		perm    entities.Permission
		allowed bool
	}{
		{entities.RoleAdmin, entities.PermModifySettings, true},
		{entities.RoleOperator, entities.PermModifySettings, false},
		{entities.RoleOperator, entities.PermPerformQA, true},
		{entities.RoleViewer, entities.PermPerformQA, false},
		{entities.RoleSupervisor, entities.PermExportReports, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.perm), func(t *testing.T) {
			err := Authorize(tt.role, tt.perm)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}
