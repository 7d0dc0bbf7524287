package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/application/selectors"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	domainsvc "github.com/vsinha/baleyard/pkg/domain/services"
	"github.com/vsinha/baleyard/pkg/infrastructure/events"
)

// SupplierService maintains suppliers and their scorecards
type SupplierService struct {
	rt Runtime
}

// NewSupplierService creates a supplier service
func NewSupplierService(rt Runtime) *SupplierService {
	return &SupplierService{rt: rt.withDefaults()}
}

// SupplierInput carries the editable supplier fields
type SupplierInput struct {
	SupplierID    string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	Tier          entities.Tier
	Status        entities.SupplierStatus
}

func (in SupplierInput) apply(s *entities.Supplier) {
	if in.Name != "" {
		s.Name = in.Name
	}
	if in.ContactPerson != "" {
		s.ContactPerson = in.ContactPerson
	}
	if in.Email != "" {
		s.Email = in.Email
	}
	if in.Phone != "" {
		s.Phone = in.Phone
	}
	if in.Address != "" {
		s.Address = in.Address
	}
	if in.Status != "" {
		s.Status = in.Status
	}
}

// AddSupplier registers a supplier. Tier defaults to 2 until a scorecard exists.
func (s *SupplierService) AddSupplier(ctx context.Context, in SupplierInput, actor string) (entities.Supplier, error) {
	if in.Tier == 0 {
		in.Tier = entities.Tier2
	}
	if in.Status != "" && in.Status != entities.SupplierActive && in.Status != entities.SupplierInactive {
		return entities.Supplier{}, fmt.Errorf("supplier status %q: %w", in.Status, ErrInvalidInput)
	}
	now := s.rt.Clock()
	var created entities.Supplier

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		id := in.SupplierID
		if id == "" {
			id = s.rt.IDs.NewID("SUP")
		}
		supplier, err := entities.NewSupplier(id, in.Name, in.Tier, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		in.apply(supplier)
		if err := tx.AddSupplier(*supplier); err != nil {
			return err
		}
		created = supplier.Clone()
		return s.rt.audit(tx, entities.ScopeSystem, actor, fmt.Sprintf("Supplier %s added", id), now)
	})
	if err != nil {
		return entities.Supplier{}, err
	}

	s.rt.publish(events.NewSupplierUpdatedEvent(created, now))
	return created, nil
}

// UpdateSupplier edits contact data and status; tier and KPI are left alone
func (s *SupplierService) UpdateSupplier(ctx context.Context, in SupplierInput, actor string) (entities.Supplier, error) {
	if in.Status != "" && in.Status != entities.SupplierActive && in.Status != entities.SupplierInactive {
		return entities.Supplier{}, fmt.Errorf("supplier status %q: %w", in.Status, ErrInvalidInput)
	}
	return s.mutate(ctx, in.SupplierID, actor, "updated", func(_ repositories.Reader, sup *entities.Supplier) error {
		in.apply(sup)
		return nil
	})
}

// SetTierOverride pins the displayed tier; nil removes the override
func (s *SupplierService) SetTierOverride(ctx context.Context, supplierID string, tier *entities.Tier, actor string) (entities.Supplier, error) {
	if tier != nil && !tier.Valid() {
		return entities.Supplier{}, fmt.Errorf("tier %d: %w", *tier, ErrInvalidInput)
	}
	what := "tier override cleared"
	if tier != nil {
		what = fmt.Sprintf("tier overridden to %d", *tier)
	}
	return s.mutate(ctx, supplierID, actor, what, func(_ repositories.Reader, sup *entities.Supplier) error {
		if tier == nil {
			sup.TierOverride = nil
			return nil
		}
		t := *tier
		sup.TierOverride = &t
		return nil
	})
}

// Recompute refreshes a supplier's KPI, tier and score from its bales
func (s *SupplierService) Recompute(ctx context.Context, supplierID, actor string) (entities.Supplier, error) {
	return s.mutate(ctx, supplierID, actor, "scorecard recomputed", func(r repositories.Reader, sup *entities.Supplier) error {
		applyScorecard(sup, r.Bales(), r.Trucks(), r.Config())
		return nil
	})
}

// RecomputeAll refreshes every supplier scorecard in one transaction
func (s *SupplierService) RecomputeAll(ctx context.Context, actor string) ([]entities.Supplier, error) {
	now := s.rt.Clock()
	var updated []entities.Supplier

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		updated = updated[:0]
		bales := tx.Bales()
		trucks := tx.Trucks()
		cfg := tx.Config()
		for _, sup := range tx.Suppliers() {
			if err := tx.UpdateSupplier(sup.SupplierID, func(x *entities.Supplier) error {
				applyScorecard(x, bales, trucks, cfg)
				updated = append(updated, x.Clone())
				return nil
			}); err != nil {
				return err
			}
		}
		return s.rt.audit(tx, entities.ScopeSystem, actor,
			fmt.Sprintf("Scorecards recomputed for %d suppliers", len(updated)), now)
	})
	if err != nil {
		return nil, err
	}

	evs := make([]events.Event, 0, len(updated))
	for _, sup := range updated {
		evs = append(evs, events.NewSupplierUpdatedEvent(sup, now))
	}
	s.rt.publish(evs...)
	return updated, nil
}

// applyScorecard sets KPI, computed tier and score. A supplier without
// delivered bales keeps its tier and score.
func applyScorecard(sup *entities.Supplier, bales []entities.Bale, trucks []entities.TruckLoad, cfg entities.ProcessConfig) {
	kpi := domainsvc.CalculateSupplierKPI(sup.SupplierID, bales, trucks)
	sup.KPI = kpi
	if len(selectors.SupplierBales(sup.SupplierID, bales, trucks)) == 0 {
		return
	}
	acceptPct := cfg.Species[entities.SpeciesStraw].AcceptPct
	sup.Tier = domainsvc.SupplierTiering(kpi.FailRatePct, kpi.AvgMoisturePct, acceptPct)
	sup.Score = domainsvc.SupplierScore(kpi, acceptPct)
}

func (s *SupplierService) mutate(ctx context.Context, supplierID, actor, what string, fn func(repositories.Reader, *entities.Supplier) error) (entities.Supplier, error) {
	now := s.rt.Clock()
	var updated entities.Supplier

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		if err := tx.UpdateSupplier(supplierID, func(sup *entities.Supplier) error {
			if err := fn(tx, sup); err != nil {
				return err
			}
			updated = sup.Clone()
			return nil
		}); err != nil {
			return err
		}
		return s.rt.audit(tx, entities.ScopeSystem, actor, fmt.Sprintf("Supplier %s %s", supplierID, what), now)
	})
	if err != nil {
		return entities.Supplier{}, err
	}

	s.rt.Logger.Info("supplier updated",
		zap.String("supplier_id", supplierID),
		zap.String("change", what))
	s.rt.publish(events.NewSupplierUpdatedEvent(updated, now))
	return updated, nil
}
