package memory

import (
	"fmt"
	"sort"
	"time"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
)

// tx is a transaction over a private copy of the store state
type tx struct {
	reader
	dirty map[string]map[string]bool
}

func newTx(s *state) *tx {
	return &tx{reader: reader{s: s}, dirty: make(map[string]map[string]bool)}
}

// Verify interface compliance
var _ repositories.Tx = (*tx)(nil)

func (t *tx) touch(collection, key string) {
	if t.dirty[collection] == nil {
		t.dirty[collection] = make(map[string]bool)
	}
	t.dirty[collection][key] = true
}

func (t *tx) AddTruck(truck entities.TruckLoad) error {
	if _, err := t.s.trucks.add(truck.TruckID, truck.Clone()); err != nil {
		return err
	}
	t.touch(repositories.CollectionTrucks, truck.TruckID)
	return nil
}

func (t *tx) UpdateTruck(truckID string, fn func(*entities.TruckLoad) error) error {
	old, err := t.s.trucks.mustGet(truckID)
	if err != nil {
		return err
	}
	updated := old.Clone()
	if err := fn(&updated); err != nil {
		return err
	}
	if updated.TruckID != truckID {
		return violation("truck id %s cannot change", truckID)
	}
	if old.GrossKg != nil && (updated.GrossKg == nil || *updated.GrossKg != *old.GrossKg) {
		return violation("gross weight of truck %s is already recorded", truckID)
	}
	if old.TareKg != nil && (updated.TareKg == nil || *updated.TareKg != *old.TareKg) {
		return violation("tare weight of truck %s is already recorded", truckID)
	}
	t.s.trucks.put(truckID, updated)
	t.touch(repositories.CollectionTrucks, truckID)
	return nil
}

func (t *tx) AddBale(bale entities.Bale) error {
	if _, err := t.s.bales.add(bale.BaleID, bale.Clone()); err != nil {
		return err
	}
	t.touch(repositories.CollectionBales, bale.BaleID)
	return nil
}

func (t *tx) UpdateBale(baleID string, fn func(*entities.Bale) error) error {
	old, err := t.s.bales.mustGet(baleID)
	if err != nil {
		return err
	}
	updated := old.Clone()
	if err := fn(&updated); err != nil {
		return err
	}
	if updated.BaleID != baleID {
		return violation("bale id %s cannot change", baleID)
	}
	if updated.Decision != old.Decision {
		return violation("decision of bale %s is immutable", baleID)
	}
	t.s.bales.put(baleID, updated)
	t.touch(repositories.CollectionBales, baleID)
	return nil
}

func (t *tx) AddPyramid(pyramid entities.Pyramid) error {
	if pyramid.Capacity != pyramid.Shape.Volume() {
		return violation("pyramid %s capacity %d does not match shape volume %d",
			pyramid.PyramidID, pyramid.Capacity, pyramid.Shape.Volume())
	}
	if _, err := t.s.pyramids.add(pyramid.PyramidID, pyramid); err != nil {
		return err
	}
	t.touch(repositories.CollectionPyramids, pyramid.PyramidID)
	return nil
}

func (t *tx) UpdatePyramid(pyramidID string, fn func(*entities.Pyramid) error) error {
	old, err := t.s.pyramids.mustGet(pyramidID)
	if err != nil {
		return err
	}
	updated := old
	if err := fn(&updated); err != nil {
		return err
	}
	if updated.PyramidID != pyramidID || updated.Capacity != old.Capacity || updated.Shape != old.Shape {
		return violation("identity, shape and capacity of pyramid %s are immutable", pyramidID)
	}
	if updated.QualityGrade != old.QualityGrade {
		return violation("grade of pyramid %s is immutable", pyramidID)
	}
	t.s.pyramids.put(pyramidID, updated)
	t.touch(repositories.CollectionPyramids, pyramidID)
	return nil
}

func (t *tx) PutSlot(slot entities.Slot) error {
	if slot.SlotID == "" {
		return fmt.Errorf("slots: id cannot be empty")
	}
	t.s.slots.put(slot.SlotID, slot.Clone())
	t.touch(repositories.CollectionSlots, slot.SlotID)
	return nil
}

func (t *tx) UpdateSlot(slotID string, fn func(*entities.Slot) error) error {
	old, err := t.s.slots.mustGet(slotID)
	if err != nil {
		return err
	}
	updated := old.Clone()
	if err := fn(&updated); err != nil {
		return err
	}
	if updated.SlotID != slotID {
		return violation("slot id %s cannot change", slotID)
	}
	t.s.slots.put(slotID, updated)
	t.touch(repositories.CollectionSlots, slotID)
	return nil
}

func (t *tx) AddSupplier(supplier entities.Supplier) error {
	if _, err := t.s.suppliers.add(supplier.SupplierID, supplier.Clone()); err != nil {
		return err
	}
	t.touch(repositories.CollectionSuppliers, supplier.SupplierID)
	return nil
}

func (t *tx) UpdateSupplier(supplierID string, fn func(*entities.Supplier) error) error {
	old, err := t.s.suppliers.mustGet(supplierID)
	if err != nil {
		return err
	}
	updated := old.Clone()
	if err := fn(&updated); err != nil {
		return err
	}
	if updated.SupplierID != supplierID {
		return violation("supplier id %s cannot change", supplierID)
	}
	t.s.suppliers.put(supplierID, updated)
	t.touch(repositories.CollectionSuppliers, supplierID)
	return nil
}

func (t *tx) AddAlert(alert entities.Alert) error {
	if _, err := t.s.alerts.add(alert.AlertID, alert.Clone()); err != nil {
		return err
	}
	t.touch(repositories.CollectionAlerts, alert.AlertID)
	return nil
}

func (t *tx) ClearAlert(alertID, clearedBy string, at time.Time) error {
	alert, err := t.s.alerts.mustGet(alertID)
	if err != nil {
		return err
	}
	if !alert.Active() {
		return nil
	}
	alert = alert.Clone()
	clearedAt := at
	alert.ClearedAt = &clearedAt
	alert.ClearedBy = clearedBy
	t.s.alerts.put(alertID, alert)
	t.touch(repositories.CollectionAlerts, alertID)
	return nil
}

func (t *tx) AddEvent(event entities.Event) error {
	if _, err := t.s.events.add(event.EventID, event); err != nil {
		return err
	}
	t.touch(repositories.CollectionEvents, event.EventID)
	return nil
}

func (t *tx) AddConsumptionBatch(batch entities.ConsumptionBatch) error {
	if _, err := t.s.batches.add(batch.BatchID, batch.Clone()); err != nil {
		return err
	}
	t.touch(repositories.CollectionBatches, batch.BatchID)
	return nil
}

func (t *tx) UpdateConsumptionBatch(batchID string, fn func(*entities.ConsumptionBatch) error) error {
	old, err := t.s.batches.mustGet(batchID)
	if err != nil {
		return err
	}
	updated := old.Clone()
	if err := fn(&updated); err != nil {
		return err
	}
	if updated.BatchID != batchID {
		return violation("batch id %s cannot change", batchID)
	}
	t.s.batches.put(batchID, updated)
	t.touch(repositories.CollectionBatches, batchID)
	return nil
}

func (t *tx) UpdateConfig(fn func(*entities.ProcessConfig) error) error {
	updated := t.s.config.Clone()
	if err := fn(&updated); err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	t.s.config = updated
	t.touch(repositories.CollectionConfig, repositories.SingletonKey)
	return nil
}

func (t *tx) UpdateSession(fn func(*entities.Session) error) error {
	updated := t.s.session
	if err := fn(&updated); err != nil {
		return err
	}
	if !updated.CurrentRole.Valid() {
		return fmt.Errorf("session: unknown role %q", updated.CurrentRole)
	}
	t.s.session = updated
	t.touch(repositories.CollectionSession, repositories.SingletonKey)
	return nil
}

// keys returns a copy of the dirty key set for a collection
func (t *tx) keys(collection string) map[string]bool {
	out := make(map[string]bool, len(t.dirty[collection]))
	for k := range t.dirty[collection] {
		out[k] = true
	}
	return out
}

// changes lists the dirty records in collection then sequence order
func (t *tx) changes() []repositories.Change {
	s := t.s
	var out []repositories.Change
	out = appendChanges(out, t.dirty, s.pyramids, clonePyramid)
	out = appendChanges(out, t.dirty, s.suppliers, cloneSupplier)
	out = appendChanges(out, t.dirty, s.trucks, cloneTruck)
	out = appendChanges(out, t.dirty, s.bales, cloneBale)
	out = appendChanges(out, t.dirty, s.slots, cloneSlot)
	out = appendChanges(out, t.dirty, s.batches, cloneBatch)
	out = appendChanges(out, t.dirty, s.alerts, cloneAlert)
	out = appendChanges(out, t.dirty, s.events, cloneEvent)
	if t.dirty[repositories.CollectionConfig] != nil {
		out = append(out, repositories.Change{
			Collection: repositories.CollectionConfig,
			Key:        repositories.SingletonKey,
			Value:      s.config.Clone(),
		})
	}
	if t.dirty[repositories.CollectionSession] != nil {
		out = append(out, repositories.Change{
			Collection: repositories.CollectionSession,
			Key:        repositories.SingletonKey,
			Value:      s.session,
		})
	}
	return out
}

func appendChanges[T any](out []repositories.Change, dirty map[string]map[string]bool, c *collection[T], clone func(T) T) []repositories.Change {
	keys := make([]string, 0, len(dirty[c.name]))
	for k := range dirty[c.name] {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return c.seq(keys[i]) < c.seq(keys[j]) })
	for _, k := range keys {
		v, _ := c.get(k)
		out = append(out, repositories.Change{
			Collection: c.name,
			Key:        k,
			Seq:        c.seq(k),
			Value:      clone(v),
		})
	}
	return out
}
