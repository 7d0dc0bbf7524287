package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	domainsvc "github.com/vsinha/baleyard/pkg/domain/services"
	"github.com/vsinha/baleyard/pkg/infrastructure/events"
)

// placeInTx stores a recorded bale in the first free slot of pyramidID, or of
// the first active pyramid of the grade when pyramidID is empty
func placeInTx(tx repositories.Tx, bale entities.Bale, pyramidID string, grade entities.Grade, now time.Time) (domainsvc.Placement, error) {
	if !grade.Valid() {
		return domainsvc.Placement{}, fmt.Errorf("grade %q: %w", grade, ErrInvalidInput)
	}
	if bale.Decision != entities.DecisionPass {
		return domainsvc.Placement{}, fmt.Errorf("bale %s: %w", bale.BaleID, domainsvc.ErrBaleNotPassed)
	}
	if bale.Stored() {
		return domainsvc.Placement{}, fmt.Errorf("bale %s in %s: %w", bale.BaleID, bale.SlotID(), domainsvc.ErrBaleAlreadyPlaced)
	}

	var candidates []entities.Pyramid
	if pyramidID != "" {
		p, err := tx.GetPyramid(pyramidID)
		if err != nil {
			return domainsvc.Placement{}, err
		}
		if err := domainsvc.CheckPlacementEligibility(bale, p, grade); err != nil {
			return domainsvc.Placement{}, err
		}
		candidates = append(candidates, p)
	} else {
		for _, p := range tx.Pyramids() {
			if p.Status == entities.PyramidActive && p.QualityGrade == grade {
				candidates = append(candidates, p)
			}
		}
	}

	slots := tx.Slots()
	for _, p := range candidates {
		coord, ok := domainsvc.FindAvailableSlot(p, slots)
		if !ok {
			continue
		}
		placement, err := domainsvc.PlaceBaleToPyramid(bale, p, grade, coord, slots, now)
		if err != nil {
			return domainsvc.Placement{}, err
		}
		if err := tx.UpdateBale(bale.BaleID, func(b *entities.Bale) error {
			b.PyramidID = placement.Bale.PyramidID
			b.Slot = placement.Bale.Slot
			return nil
		}); err != nil {
			return domainsvc.Placement{}, err
		}
		if err := tx.PutSlot(placement.Slot); err != nil {
			return domainsvc.Placement{}, err
		}
		return placement, nil
	}

	if pyramidID != "" {
		return domainsvc.Placement{}, fmt.Errorf("pyramid %s is full: %w", pyramidID, domainsvc.ErrNoSlotAvailable)
	}
	return domainsvc.Placement{}, fmt.Errorf("no active grade %s pyramid has room: %w", grade, domainsvc.ErrNoSlotAvailable)
}

// StorageService manages pyramids and bale placement
type StorageService struct {
	rt Runtime
}

// NewStorageService creates a storage service
func NewStorageService(rt Runtime) *StorageService {
	return &StorageService{rt: rt.withDefaults()}
}

// PlaceInput selects where a recorded bale goes
type PlaceInput struct {
	PyramidID  string
	Grade      entities.Grade
	OperatorID string
}

// PlaceBale stores an already recorded, passed bale
func (s *StorageService) PlaceBale(ctx context.Context, baleID string, in PlaceInput) (domainsvc.Placement, error) {
	now := s.rt.Clock()
	var placement domainsvc.Placement
	grade := in.Grade

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		bale, err := tx.GetBale(baleID)
		if err != nil {
			return err
		}
		if grade == "" && in.PyramidID != "" {
			p, err := tx.GetPyramid(in.PyramidID)
			if err != nil {
				return err
			}
			grade = p.QualityGrade
		}
		placement, err = placeInTx(tx, bale, in.PyramidID, grade, now)
		if err != nil {
			return err
		}
		return s.rt.audit(tx, entities.ScopeBale, in.OperatorID,
			fmt.Sprintf("Bale %s placed in %s", baleID, placement.Slot.SlotID), now)
	})
	if err != nil {
		return domainsvc.Placement{}, err
	}

	s.rt.Logger.Info("bale placed",
		zap.String("bale_id", baleID),
		zap.String("slot_id", placement.Slot.SlotID))
	s.rt.publish(events.NewBalePlacedEvent(placement.Bale, grade, placement.Slot, now))
	return placement, nil
}

// AddPyramid creates a pyramid. A zero shape falls back to the configured default.
func (s *StorageService) AddPyramid(ctx context.Context, pyramidID string, grade entities.Grade, zone string, origin entities.Coord, shape entities.Shape) (entities.Pyramid, error) {
	now := s.rt.Clock()
	var created entities.Pyramid

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		if shape == (entities.Shape{}) {
			shape = tx.Config().PyramidShape
		}
		p, err := entities.NewPyramid(pyramidID, grade, zone, origin, shape, entities.PyramidActive)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := tx.AddPyramid(*p); err != nil {
			return err
		}
		created = *p
		return s.rt.audit(tx, entities.ScopeSystem, "", fmt.Sprintf("Pyramid %s created", pyramidID), now)
	})
	return created, err
}

// SetPyramidStatus locks or unlocks a pyramid for placement
func (s *StorageService) SetPyramidStatus(ctx context.Context, pyramidID string, status entities.PyramidStatus, actor string) (entities.Pyramid, error) {
	if status != entities.PyramidActive && status != entities.PyramidLocked {
		return entities.Pyramid{}, fmt.Errorf("pyramid status %q: %w", status, ErrInvalidInput)
	}
	now := s.rt.Clock()
	var updated entities.Pyramid

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		if err := tx.UpdatePyramid(pyramidID, func(p *entities.Pyramid) error {
			p.Status = status
			updated = *p
			return nil
		}); err != nil {
			return err
		}
		return s.rt.audit(tx, entities.ScopeSystem, actor, fmt.Sprintf("Pyramid %s set to %s", pyramidID, status), now)
	})
	if err != nil {
		return entities.Pyramid{}, err
	}

	s.rt.publish(events.NewPyramidStatusChangedEvent(pyramidID, status, now))
	return updated, nil
}
