package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/application/selectors"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	"github.com/vsinha/baleyard/pkg/infrastructure/events"
)

// ProcessingService withdraws stored bales into consumption batches
type ProcessingService struct {
	rt Runtime
}

// NewProcessingService creates a processing service
func NewProcessingService(rt Runtime) *ProcessingService {
	return &ProcessingService{rt: rt.withDefaults()}
}

// SuggestFEFO lists the n oldest bales of a grade available for processing
func (s *ProcessingService) SuggestFEFO(grade entities.Grade, n int) []entities.Bale {
	snap := s.rt.Store.Snapshot()
	return selectors.SelectFEFO(snap.Bales, snap.Pyramids, snap.Slots, grade, n)
}

// BatchInput describes a consumption batch. Explicit BaleIDs take precedence;
// otherwise Count bales of Grade are picked FEFO.
type BatchInput struct {
	Line       string
	BaleIDs    []string
	Grade      entities.Grade
	Count      int
	OperatorID string
}

// CreateBatch records a consumption batch and empties every slot it draws
// from in the same transaction
func (s *ProcessingService) CreateBatch(ctx context.Context, in BatchInput) (entities.ConsumptionBatch, error) {
	if in.Line == "" {
		return entities.ConsumptionBatch{}, fmt.Errorf("line: %w", ErrInvalidInput)
	}
	now := s.rt.Clock()
	var created entities.ConsumptionBatch

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		bales := tx.Bales()
		slots := tx.Slots()

		ids := in.BaleIDs
		if len(ids) == 0 {
			if !in.Grade.Valid() {
				return fmt.Errorf("grade %q: %w", in.Grade, ErrInvalidInput)
			}
			for _, b := range selectors.SelectFEFO(bales, tx.Pyramids(), slots, in.Grade, in.Count) {
				ids = append(ids, b.BaleID)
			}
			if len(ids) == 0 {
				return fmt.Errorf("grade %s: %w", in.Grade, ErrNothingToConsume)
			}
		}

		available := make(map[string]entities.Bale)
		for _, b := range selectors.AvailableForProcessing(bales, slots) {
			available[b.BaleID] = b
		}

		moisture := decimal.Zero
		weight := decimal.Zero
		for _, id := range ids {
			b, ok := available[id]
			if !ok {
				return fmt.Errorf("bale %s: %w", id, ErrBaleUnavailable)
			}
			moisture = moisture.Add(decimal.NewFromFloat(b.MoisturePct))
			weight = weight.Add(decimal.NewFromFloat(b.WeightKg))

			if err := tx.UpdateSlot(b.SlotID(), func(sl *entities.Slot) error {
				emptied := now
				sl.EmptiedAt = &emptied
				return nil
			}); err != nil {
				return err
			}
		}

		batch, err := entities.NewConsumptionBatch(s.rt.IDs.NewID("BATCH"), in.Line, ids, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		count := decimal.NewFromInt(int64(len(ids)))
		batch.AverageMoisture = moisture.Div(count).Round(2).InexactFloat64()
		batch.AvgWeightKg = weight.Div(count).Round(2).InexactFloat64()

		if err := tx.AddConsumptionBatch(*batch); err != nil {
			return err
		}
		created = *batch

		return s.rt.audit(tx, entities.ScopeSystem, in.OperatorID,
			fmt.Sprintf("Batch %s started on %s with %d bales", batch.BatchID, in.Line, len(ids)), now)
	})
	if err != nil {
		return entities.ConsumptionBatch{}, err
	}

	s.rt.Logger.Info("consumption batch created",
		zap.String("batch_id", created.BatchID),
		zap.String("line", created.Line),
		zap.Int("bales", len(created.BaleIDs)))
	s.rt.publish(events.NewBatchCreatedEvent(created, now))
	return created.Clone(), nil
}

// CompleteBatch stamps the end of a batch
func (s *ProcessingService) CompleteBatch(ctx context.Context, batchID, operatorID string) (entities.ConsumptionBatch, error) {
	now := s.rt.Clock()
	var completed entities.ConsumptionBatch

	err := s.rt.Store.Update(ctx, func(tx repositories.Tx) error {
		if err := tx.UpdateConsumptionBatch(batchID, func(b *entities.ConsumptionBatch) error {
			if b.Completed() {
				return fmt.Errorf("batch %s: %w", batchID, ErrBatchCompleted)
			}
			end := now
			b.EndTs = &end
			completed = b.Clone()
			return nil
		}); err != nil {
			return err
		}
		return s.rt.audit(tx, entities.ScopeSystem, operatorID, fmt.Sprintf("Batch %s completed", batchID), now)
	})
	if err != nil {
		return entities.ConsumptionBatch{}, err
	}

	s.rt.publish(events.NewBatchCompletedEvent(completed, now))
	return completed, nil
}
