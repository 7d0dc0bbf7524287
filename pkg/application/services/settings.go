package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	"github.com/vsinha/baleyard/pkg/infrastructure/events"
)

// SettingsService changes process configuration and the operator session
type SettingsService struct {
	rt Runtime
}

// NewSettingsService creates a settings service
func NewSettingsService(rt Runtime) *SettingsService {
	return &SettingsService{rt: rt.withDefaults()}
}

// UpdateProcessConfig applies fn to the process configuration. The store
// rejects the change when the result does not validate.
func (s *SettingsService) UpdateProcessConfig(ctx context.Context, actor string, fn func(*entities.ProcessConfig) error) (entities.ProcessConfig, error) {
	now := s.rt.Clock()
	var updated entities.ProcessConfig

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		if err := tx.UpdateConfig(func(c *entities.ProcessConfig) error {
			if err := fn(c); err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return nil
		}); err != nil {
			return err
		}
		updated = tx.Config()
		return s.rt.audit(tx, entities.ScopeSystem, actor, "Process configuration updated", now)
	})
	if err != nil {
		return entities.ProcessConfig{}, err
	}

	s.rt.Logger.Info("process configuration updated",
		zap.Bool("batch_reject_enabled", updated.BatchRejectEnabled),
		zap.Int("reload_threshold_days", updated.ReloadThresholdDays))
	s.rt.publish(events.NewConfigUpdatedEvent(updated, now))
	return updated, nil
}

// ReplaceProcessConfig swaps in cfg wholesale
func (s *SettingsService) ReplaceProcessConfig(ctx context.Context, actor string, cfg entities.ProcessConfig) (entities.ProcessConfig, error) {
	return s.UpdateProcessConfig(ctx, actor, func(c *entities.ProcessConfig) error {
		*c = cfg.Clone()
		return nil
	})
}

// SetSession selects the active role and operator
func (s *SettingsService) SetSession(ctx context.Context, role entities.Role, operatorID string) (entities.Session, error) {
	if !role.Valid() {
		return entities.Session{}, fmt.Errorf("role %q: %w", role, ErrInvalidInput)
	}
	now := s.rt.Clock()
	var session entities.Session

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		if err := tx.UpdateSession(func(sess *entities.Session) error {
			sess.CurrentRole = role
			if operatorID != "" {
				sess.OperatorID = operatorID
			}
			session = *sess
			return nil
		}); err != nil {
			return err
		}
		return s.rt.audit(tx, entities.ScopeSystem, session.OperatorID, fmt.Sprintf("Session switched to %s", role), now)
	})
	return session, err
}
