package memory

import (
	"fmt"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
)

// state holds every collection of the plant
type state struct {
	trucks    *collection[entities.TruckLoad]
	bales     *collection[entities.Bale]
	pyramids  *collection[entities.Pyramid]
	slots     *collection[entities.Slot]
	suppliers *collection[entities.Supplier]
	batches   *collection[entities.ConsumptionBatch]
	alerts    *collection[entities.Alert]
	events    *collection[entities.Event]
	config    entities.ProcessConfig
	session   entities.Session
}

func newState() *state {
	return &state{
		trucks:    newCollection[entities.TruckLoad](repositories.CollectionTrucks),
		bales:     newCollection[entities.Bale](repositories.CollectionBales),
		pyramids:  newCollection[entities.Pyramid](repositories.CollectionPyramids),
		slots:     newCollection[entities.Slot](repositories.CollectionSlots),
		suppliers: newCollection[entities.Supplier](repositories.CollectionSuppliers),
		batches:   newCollection[entities.ConsumptionBatch](repositories.CollectionBatches),
		alerts:    newCollection[entities.Alert](repositories.CollectionAlerts),
		events:    newCollection[entities.Event](repositories.CollectionEvents),
		config:    entities.DefaultProcessConfig(),
		session:   entities.DefaultSession(),
	}
}

func cloneTruck(t entities.TruckLoad) entities.TruckLoad { return t.Clone() }
func cloneBale(b entities.Bale) entities.Bale { return b.Clone() }
func clonePyramid(p entities.Pyramid) entities.Pyramid { return p }
func cloneSlot(s entities.Slot) entities.Slot { return s.Clone() }
func cloneSupplier(s entities.Supplier) entities.Supplier { return s.Clone() }
func cloneBatch(b entities.ConsumptionBatch) entities.ConsumptionBatch { return b.Clone() }
func cloneAlert(a entities.Alert) entities.Alert { return a.Clone() }
func cloneEvent(e entities.Event) entities.Event { return e }

func (s *state) copy() *state {
	return &state{
		trucks:    s.trucks.copy(cloneTruck),
		bales:     s.bales.copy(cloneBale),
		pyramids:  s.pyramids.copy(clonePyramid),
		slots:     s.slots.copy(cloneSlot),
		suppliers: s.suppliers.copy(cloneSupplier),
		batches:   s.batches.copy(cloneBatch),
		alerts:    s.alerts.copy(cloneAlert),
		events:    s.events.copy(cloneEvent),
		config:    s.config.Clone(),
		session:   s.session,
	}
}

func (s *state) snapshot() *entities.Snapshot {
	return &entities.Snapshot{
		Trucks:    s.trucks.list(cloneTruck),
		Bales:     s.bales.list(cloneBale),
		Pyramids:  s.pyramids.list(clonePyramid),
		Slots:     s.slots.list(cloneSlot),
		Suppliers: s.suppliers.list(cloneSupplier),
		Batches:   s.batches.list(cloneBatch),
		Alerts:    s.alerts.list(cloneAlert),
		Events:    s.events.list(cloneEvent),
		Config:    s.config.Clone(),
		Session:   s.session,
	}
}

// stateFromSnapshot rebuilds indexed collections from a persisted snapshot
func stateFromSnapshot(snap *entities.Snapshot) (*state, error) {
	s := newState()
	for _, t := range snap.Trucks {
		if _, err := s.trucks.add(t.TruckID, t.Clone()); err != nil {
			return nil, err
		}
	}
	for _, b := range snap.Bales {
		if _, err := s.bales.add(b.BaleID, b.Clone()); err != nil {
			return nil, err
		}
	}
	for _, p := range snap.Pyramids {
		if _, err := s.pyramids.add(p.PyramidID, p); err != nil {
			return nil, err
		}
	}
	for _, sl := range snap.Slots {
		if _, err := s.slots.add(sl.SlotID, sl.Clone()); err != nil {
			return nil, err
		}
	}
	for _, sup := range snap.Suppliers {
		if _, err := s.suppliers.add(sup.SupplierID, sup.Clone()); err != nil {
			return nil, err
		}
	}
	for _, b := range snap.Batches {
		if _, err := s.batches.add(b.BatchID, b.Clone()); err != nil {
			return nil, err
		}
	}
	for _, a := range snap.Alerts {
		if _, err := s.alerts.add(a.AlertID, a.Clone()); err != nil {
			return nil, err
		}
	}
	for _, e := range snap.Events {
		if _, err := s.events.add(e.EventID, e); err != nil {
			return nil, err
		}
	}
	if snap.Config.Species != nil {
		s.config = snap.Config.Clone()
	}
	if snap.Session.CurrentRole != "" {
		s.session = snap.Session
	}

	if err := s.checkAll(); err != nil {
		return nil, fmt.Errorf("loaded state: %w", err)
	}
	return s, nil
}
