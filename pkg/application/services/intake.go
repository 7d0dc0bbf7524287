package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	domainsvc "github.com/vsinha/baleyard/pkg/domain/services"
	"github.com/vsinha/baleyard/pkg/infrastructure/events"
)

// IntakeService runs the truck protocol and bale QA
type IntakeService struct {
	rt Runtime
}

// NewIntakeService creates an intake service
func NewIntakeService(rt Runtime) *IntakeService {
	return &IntakeService{rt: rt.withDefaults()}
}

// CheckInInput describes an arriving truck
type CheckInInput struct {
	TruckID             string
	SupplierID          string
	Lot                 string
	Source              string
	BaleType            entities.BaleType
	DriverName          string
	DriverCardID        string
	DriverPhone         string
	DriverLicense       string
	VehicleRegistration string
	VehicleType         string
	ExpectedBaleCount   int
	Notes               string
	OperatorID          string
}

func (in CheckInInput) applyDetails(t *entities.TruckLoad) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&t.Source, in.Source)
	set(&t.DriverName, in.DriverName)
	set(&t.DriverCardID, in.DriverCardID)
	set(&t.DriverPhone, in.DriverPhone)
	set(&t.DriverLicense, in.DriverLicense)
	set(&t.VehicleRegistration, in.VehicleRegistration)
	set(&t.VehicleType, in.VehicleType)
	set(&t.Notes, in.Notes)
	if in.ExpectedBaleCount > 0 {
		t.ExpectedBaleCount = in.ExpectedBaleCount
	}
}

// RegisterTruck pre-registers an expected truck in WAIT_TRUCK
func (s *IntakeService) RegisterTruck(ctx context.Context, in CheckInInput) (entities.TruckLoad, error) {
	return s.createTruck(ctx, in, entities.TruckWaiting)
}

// CheckIn admits a truck. A pre-registered truck moves from WAIT_TRUCK to
// CHECK_IN; otherwise a new record is created in CHECK_IN.
func (s *IntakeService) CheckIn(ctx context.Context, in CheckInInput) (entities.TruckLoad, error) {
	if in.TruckID != "" {
		if existing, err := s.rt.Store.GetTruck(in.TruckID); err == nil && existing.Status == entities.TruckWaiting {
			return s.admitRegistered(ctx, in)
		}
	}
	return s.createTruck(ctx, in, entities.TruckCheckIn)
}

func (s *IntakeService) createTruck(ctx context.Context, in CheckInInput, status entities.TruckStatus) (entities.TruckLoad, error) {
	now := s.rt.Clock()
	var created entities.TruckLoad

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		supplier, err := tx.GetSupplier(in.SupplierID)
		if err != nil {
			return err
		}
		if supplier.Status == entities.SupplierInactive {
			return fmt.Errorf("supplier %s: %w", supplier.SupplierID, ErrSupplierInactive)
		}

		truckID := in.TruckID
		if truckID == "" {
			truckID = s.rt.IDs.NewID("TRK")
		}
		truck, err := entities.NewTruckLoad(truckID, in.SupplierID, in.Lot, in.Source, in.BaleType, now, status)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		in.applyDetails(truck)

		if err := tx.AddTruck(*truck); err != nil {
			return err
		}
		created = *truck

		change := fmt.Sprintf("Truck %s checked in for %s", truckID, supplier.Name)
		if status == entities.TruckWaiting {
			change = fmt.Sprintf("Truck %s registered for %s", truckID, supplier.Name)
		}
		return s.rt.audit(tx, entities.ScopeTruck, in.OperatorID, change, now)
	})
	if err != nil {
		return entities.TruckLoad{}, err
	}

	s.rt.Logger.Info("truck created",
		zap.String("truck_id", created.TruckID),
		zap.String("supplier_id", created.SupplierID),
		zap.String("status", string(created.Status)))
	s.rt.publish(events.NewTruckCheckedInEvent(created, now))
	return created, nil
}

func (s *IntakeService) admitRegistered(ctx context.Context, in CheckInInput) (entities.TruckLoad, error) {
	now := s.rt.Clock()
	var admitted entities.TruckLoad

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		if err := tx.UpdateTruck(in.TruckID, func(t *entities.TruckLoad) error {
			if !domainsvc.CanTransitionTruck(t.Status, entities.TruckCheckIn) {
				return fmt.Errorf("truck %s %s -> %s: %w", t.TruckID, t.Status, entities.TruckCheckIn, domainsvc.ErrInvalidTransition)
			}
			t.Status = entities.TruckCheckIn
			t.InTime = now
			in.applyDetails(t)
			admitted = *t
			return nil
		}); err != nil {
			return err
		}
		return s.rt.audit(tx, entities.ScopeTruck, in.OperatorID, fmt.Sprintf("Truck %s checked in", in.TruckID), now)
	})
	if err != nil {
		return entities.TruckLoad{}, err
	}

	s.rt.publish(
		events.NewTruckCheckedInEvent(admitted, now),
		events.NewTruckStatusChangedEvent(admitted.TruckID, entities.TruckWaiting, entities.TruckCheckIn, now),
	)
	return admitted, nil
}

// AdvanceInput carries the weighbridge readings for the current step
type AdvanceInput struct {
	GrossKg    *float64
	TareKg     *float64
	OperatorID string
}

// AdvanceTruck moves a truck one step along the protocol. Leaving GROSS_IN
// needs a positive gross weight and leaving TARE_OUT a positive tare; both
// may be supplied with the call that advances past them.
func (s *IntakeService) AdvanceTruck(ctx context.Context, truckID string, in AdvanceInput) (entities.TruckLoad, error) {
	now := s.rt.Clock()
	var from entities.TruckStatus
	var updated entities.TruckLoad

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		if err := tx.UpdateTruck(truckID, func(t *entities.TruckLoad) error {
			if t.Closed() {
				return fmt.Errorf("truck %s: %w", truckID, domainsvc.ErrTruckClosed)
			}
			next, ok := domainsvc.NextTruckStatus(t.Status)
			if !ok {
				return fmt.Errorf("truck %s in %s: %w", truckID, t.Status, domainsvc.ErrInvalidTransition)
			}
			if in.GrossKg != nil && t.Status != entities.TruckGrossIn {
				return fmt.Errorf("gross weight is taken in %s, truck %s is in %s: %w",
					entities.TruckGrossIn, truckID, t.Status, domainsvc.ErrInvalidState)
			}
			if in.TareKg != nil && t.Status != entities.TruckTareOut {
				return fmt.Errorf("tare weight is taken in %s, truck %s is in %s: %w",
					entities.TruckTareOut, truckID, t.Status, domainsvc.ErrInvalidState)
			}

			switch t.Status {
			case entities.TruckGrossIn:
				if err := recordWeight(&t.GrossKg, in.GrossKg, "gross"); err != nil {
					return err
				}
			case entities.TruckTareOut:
				if err := recordWeight(&t.TareKg, in.TareKg, "tare"); err != nil {
					return err
				}
				out := now
				t.OutTime = &out
				if t.BatchDecision == "" {
					t.BatchDecision = entities.BatchAccepted
				}
			}

			from = t.Status
			t.Status = next
			updated = *t
			return nil
		}); err != nil {
			return err
		}
		return s.rt.audit(tx, entities.ScopeTruck, in.OperatorID,
			fmt.Sprintf("Truck %s moved %s -> %s", truckID, from, updated.Status), now)
	})
	if err != nil {
		return entities.TruckLoad{}, err
	}

	s.rt.Logger.Info("truck advanced",
		zap.String("truck_id", truckID),
		zap.String("from", string(from)),
		zap.String("to", string(updated.Status)))
	s.rt.publish(events.NewTruckStatusChangedEvent(truckID, from, updated.Status, now))
	return updated.Clone(), nil
}

// recordWeight sets a weighbridge reading once and requires it to be positive
func recordWeight(field **float64, reading *float64, name string) error {
	if reading != nil && *field == nil {
		w := *reading
		*field = &w
	}
	if *field == nil || !(**field > 0) {
		return fmt.Errorf("%s weight: %w", name, domainsvc.ErrMissingWeight)
	}
	return nil
}

// QAInput is one bale measured at the unloading bay
type QAInput struct {
	TruckID     string
	BaleID      string
	Species     entities.Species
	MoisturePct float64
	WeightKg    float64
	OperatorID  string
	// Grade requests immediate placement; PyramidID pins the target pyramid
	Grade     entities.Grade
	PyramidID string
}

// QAOutcome reports what recording a bale did
type QAOutcome struct {
	Bale          entities.Bale
	Truck         entities.TruckLoad
	BatchRejected bool
	Alert         *entities.Alert
	Warnings      []string
	Placement     *domainsvc.Placement
	PlacementErr  error
}

// RecordBale classifies and records a bale against an unloading truck. A
// failed bale rejects the whole load when batch reject is enabled. When
// placement is requested and fails, the bale stays recorded and unplaced.
func (s *IntakeService) RecordBale(ctx context.Context, in QAInput) (QAOutcome, error) {
	if math.IsNaN(in.WeightKg) || in.WeightKg <= 0 {
		return QAOutcome{}, fmt.Errorf("weight %v: %w", in.WeightKg, domainsvc.ErrInvalidMeasurement)
	}
	if in.Species == "" {
		in.Species = entities.SpeciesStraw
	}

	now := s.rt.Clock()
	var out QAOutcome
	var supplierID string

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		out = QAOutcome{}

		truck, err := tx.GetTruck(in.TruckID)
		if err != nil {
			return err
		}
		if truck.Closed() {
			return fmt.Errorf("truck %s: %w", truck.TruckID, domainsvc.ErrTruckClosed)
		}
		if !truck.Status.Unloading() {
			return fmt.Errorf("truck %s is in %s: %w", truck.TruckID, truck.Status, domainsvc.ErrInvalidState)
		}
		supplierID = truck.SupplierID

		cfg := tx.Config()
		decision, err := domainsvc.ClassifyBale(in.MoisturePct, in.Species, cfg)
		switch {
		case errors.Is(err, domainsvc.ErrInvalidMeasurement):
			return err
		case errors.Is(err, domainsvc.ErrUnknownSpecies):
			s.rt.Logger.Warn("unknown species classified as fail",
				zap.String("truck_id", truck.TruckID),
				zap.String("species", string(in.Species)))
			out.Warnings = append(out.Warnings, fmt.Sprintf("unknown species %q, bale failed", in.Species))
		}

		baleID := in.BaleID
		if baleID == "" {
			baleID = s.rt.IDs.NewID("BALE")
		}
		operator := in.OperatorID
		if operator == "" {
			operator = tx.Session().OperatorID
		}
		density := domainsvc.ComputeDensity(in.WeightKg, truck.BaleType)
		bale, err := entities.NewBale(baleID, truck.TruckID, truck.BaleType, in.Species,
			in.MoisturePct, in.WeightKg, density, decision, operator, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := tx.AddBale(*bale); err != nil {
			return err
		}
		out.Bale = *bale

		if err := tx.UpdateTruck(truck.TruckID, func(t *entities.TruckLoad) error {
			t.BaleCount++
			if decision != entities.DecisionFail || t.Status != entities.TruckUnloadLoop {
				return nil
			}
			if !cfg.BatchRejectEnabled {
				msg := fmt.Sprintf("bale %s failed QA; batch reject disabled, truck %s continues unloading", baleID, t.TruckID)
				out.Warnings = append(out.Warnings, msg)
				s.rt.Logger.Warn("failed bale without batch reject",
					zap.String("truck_id", t.TruckID),
					zap.String("bale_id", baleID))
				return nil
			}
			t.Status = entities.TruckBatchReject
			t.BatchDecision = entities.BatchRejected
			out.BatchRejected = true
			return nil
		}); err != nil {
			return err
		}

		if out.BatchRejected {
			alert, err := entities.NewAlert(s.rt.IDs.NewID("ALERT"), entities.AlertQuality, entities.SeverityCritical,
				fmt.Sprintf("Truck %s rejected - failed bale detected", truck.TruckID), now)
			if err != nil {
				return err
			}
			alert.Meta = map[string]string{"truckId": truck.TruckID, "baleId": baleID}
			if err := tx.AddAlert(*alert); err != nil {
				return err
			}
			out.Alert = alert
		}

		if decision == entities.DecisionPass && (in.Grade != "" || in.PyramidID != "") {
			grade := in.Grade
			if grade == "" {
				if p, err := tx.GetPyramid(in.PyramidID); err == nil {
					grade = p.QualityGrade
				}
			}
			placement, err := placeInTx(tx, *bale, in.PyramidID, grade, now)
			if err != nil {
				out.PlacementErr = err
				s.rt.Logger.Warn("bale recorded without placement",
					zap.String("bale_id", baleID),
					zap.Error(err))
			} else {
				out.Placement = &placement
				out.Bale = placement.Bale
			}
		}

		if out.Truck, err = tx.GetTruck(truck.TruckID); err != nil {
			return err
		}

		change := fmt.Sprintf("Bale %s recorded: %s at %.1f%% moisture", baleID, decision, in.MoisturePct)
		if out.Placement != nil {
			change += fmt.Sprintf(", placed in %s", out.Placement.Slot.SlotID)
		}
		return s.rt.audit(tx, entities.ScopeBale, operator, change, now)
	})
	if err != nil {
		return QAOutcome{}, err
	}

	s.rt.Logger.Info("bale recorded",
		zap.String("bale_id", out.Bale.BaleID),
		zap.String("truck_id", out.Bale.TruckID),
		zap.String("decision", string(out.Bale.Decision)),
		zap.Bool("batch_rejected", out.BatchRejected))

	evs := []events.Event{events.NewBaleRecordedEvent(out.Bale, supplierID, now)}
	if out.BatchRejected {
		evs = append(evs,
			events.NewTruckBatchRejectedEvent(out.Truck.TruckID, out.Bale.BaleID, now),
			events.NewTruckStatusChangedEvent(out.Truck.TruckID, entities.TruckUnloadLoop, entities.TruckBatchReject, now),
			events.NewAlertRaisedEvent(*out.Alert))
	}
	if out.Placement != nil {
		grade := in.Grade
		if grade == "" {
			grade = pyramidGrade(s.rt.Store, out.Placement.Bale.PyramidID)
		}
		evs = append(evs, events.NewBalePlacedEvent(out.Placement.Bale, grade, out.Placement.Slot, now))
	}
	s.rt.publish(evs...)
	return out, nil
}

func pyramidGrade(r repositories.Reader, pyramidID string) entities.Grade {
	p, err := r.GetPyramid(pyramidID)
	if err != nil {
		return ""
	}
	return p.QualityGrade
}
