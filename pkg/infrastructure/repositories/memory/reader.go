package memory

import (
	"github.com/vsinha/baleyard/pkg/domain/entities"
)

// reader implements repositories.Reader over a state
type reader struct {
	s *state
}

func (r reader) GetTruck(truckID string) (entities.TruckLoad, error) {
	t, err := r.s.trucks.mustGet(truckID)
	return t.Clone(), err
}

func (r reader) GetBale(baleID string) (entities.Bale, error) {
	b, err := r.s.bales.mustGet(baleID)
	return b.Clone(), err
}

func (r reader) GetPyramid(pyramidID string) (entities.Pyramid, error) {
	return r.s.pyramids.mustGet(pyramidID)
}

func (r reader) GetSlot(slotID string) (entities.Slot, error) {
	sl, err := r.s.slots.mustGet(slotID)
	return sl.Clone(), err
}

func (r reader) GetSupplier(supplierID string) (entities.Supplier, error) {
	sup, err := r.s.suppliers.mustGet(supplierID)
	return sup.Clone(), err
}

func (r reader) GetAlert(alertID string) (entities.Alert, error) {
	a, err := r.s.alerts.mustGet(alertID)
	return a.Clone(), err
}

func (r reader) GetConsumptionBatch(batchID string) (entities.ConsumptionBatch, error) {
	b, err := r.s.batches.mustGet(batchID)
	return b.Clone(), err
}

func (r reader) Trucks() []entities.TruckLoad { return r.s.trucks.list(cloneTruck) }
func (r reader) Bales() []entities.Bale { return r.s.bales.list(cloneBale) }
func (r reader) Pyramids() []entities.Pyramid { return r.s.pyramids.list(clonePyramid) }
func (r reader) Slots() []entities.Slot { return r.s.slots.list(cloneSlot) }
func (r reader) Suppliers() []entities.Supplier { return r.s.suppliers.list(cloneSupplier) }
func (r reader) Alerts() []entities.Alert { return r.s.alerts.list(cloneAlert) }
func (r reader) Batches() []entities.ConsumptionBatch { return r.s.batches.list(cloneBatch) }
func (r reader) Events() []entities.Event { return r.s.events.list(cloneEvent) }
func (r reader) Config() entities.ProcessConfig { return r.s.config.Clone() }
func (r reader) Session() entities.Session { return r.s.session }
