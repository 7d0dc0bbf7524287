package entities

import (
	"fmt"
	"time"
)

// ConsumptionBatch is a set of stored bales withdrawn together for a production line
type ConsumptionBatch struct {
	BatchID         string     `json:"batchId"`
	Line            string     `json:"line"`
	StartTs         time.Time  `json:"startTs"`
	EndTs           *time.Time `json:"endTs,omitempty"`
	BaleIDs         []string   `json:"baleIds"`
	AverageMoisture float64    `json:"averageMoisture"`
	AvgWeightKg     float64    `json:"avgWeightKg"`
}

// NewConsumptionBatch creates a validated batch over the given bales
func NewConsumptionBatch(batchID, line string, baleIDs []string, startTs time.Time) (*ConsumptionBatch, error) {
	if batchID == "" {
		return nil, fmt.Errorf("batch id cannot be empty")
	}
	if line == "" {
		return nil, fmt.Errorf("line cannot be empty")
	}
	if len(baleIDs) == 0 {
		return nil, fmt.Errorf("batch must reference at least one bale")
	}

	seen := make(map[string]bool, len(baleIDs))
	for _, id := range baleIDs {
		if seen[id] {
			return nil, fmt.Errorf("bale %s listed twice in batch", id)
		}
		seen[id] = true
	}

	ids := make([]string, len(baleIDs))
	copy(ids, baleIDs)

	return &ConsumptionBatch{
		BatchID: batchID,
		Line:    line,
		StartTs: startTs,
		BaleIDs: ids,
	}, nil
}

// Completed reports whether the batch has an end timestamp
func (b *ConsumptionBatch) Completed() bool {
	return b.EndTs != nil
}

// Clone returns a copy that shares no pointers with b
func (b ConsumptionBatch) Clone() ConsumptionBatch {
	b.EndTs = cloneTime(b.EndTs)
	b.BaleIDs = append([]string(nil), b.BaleIDs...)
	return b
}
