package services

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	"github.com/vsinha/baleyard/pkg/infrastructure/events"
)

// Clock supplies the current time
type Clock func() time.Time

// IDGenerator produces record identifiers with a readable prefix
type IDGenerator interface {
	NewID(prefix string) string
}

// UUIDGenerator issues random identifiers such as "BALE-1f0c9e2a"
type UUIDGenerator struct{}

// NewID returns prefix followed by the first block of a random UUID
func (UUIDGenerator) NewID(prefix string) string {
	id := strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
	return prefix + "-" + id
}

// SequenceGenerator issues increasing identifiers such as "BALE-000001"
type SequenceGenerator struct {
	n atomic.Int64
}

// NewID returns prefix followed by the next sequence number
func (g *SequenceGenerator) NewID(prefix string) string {
	return fmt.Sprintf("%s-%06d", prefix, g.n.Add(1))
}

// Runtime bundles the collaborators shared by every workflow
type Runtime struct {
	Store  repositories.Store
	Events events.EventStore
	Clock  Clock
	IDs    IDGenerator
	Logger *zap.Logger
}

// withDefaults fills unset collaborators
func (r Runtime) withDefaults() Runtime {
	if r.Clock == nil {
		r.Clock = time.Now
	}
	if r.IDs == nil {
		r.IDs = UUIDGenerator{}
	}
	if r.Logger == nil {
		r.Logger = zap.NewNop()
	}
	return r
}

// publish forwards events after a committed transaction. Failures are logged;
// the committed state is authoritative.
func (r Runtime) publish(evs ...events.Event) {
	if r.Events == nil {
		return
	}
	for _, e := range evs {
		if err := r.Events.AppendEvent(e.StreamID(), e); err != nil {
			r.Logger.Warn("failed to publish event", zap.String("event_type", e.Type()), zap.Error(err))
		}
	}
}

// audit appends an audit log entry inside a transaction
func (r Runtime) audit(tx repositories.Tx, scope entities.EventScope, actor, change string, at time.Time) error {
	if actor == "" {
		actor = tx.Session().OperatorID
	}
	return tx.AddEvent(entities.Event{
		EventID:   r.IDs.NewID("EVT"),
		Scope:     scope,
		Actor:     actor,
		Change:    change,
		Timestamp: at,
	})
}

// Authorize returns ErrForbidden unless role holds the permission
func Authorize(role entities.Role, perm entities.Permission) error {
	if !role.Can(perm) {
		return fmt.Errorf("%s cannot %s: %w", role, perm, ErrForbidden)
	}
	return nil
}
