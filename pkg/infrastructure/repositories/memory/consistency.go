package memory

import (
	"fmt"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
)

func violation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", repositories.ErrConsistencyViolation, fmt.Sprintf(format, args...))
}

// checkSlot verifies a slot against its pyramid and, when occupied, its bale
func (s *state) checkSlot(slot entities.Slot) error {
	pyramid, ok := s.pyramids.get(slot.PyramidID)
	if !ok {
		return violation("slot %s references unknown pyramid %s", slot.SlotID, slot.PyramidID)
	}
	if slot.SlotID != entities.SlotKey(slot.PyramidID, slot.Coord()) {
		return violation("slot %s does not match its coordinates %s", slot.SlotID, slot.Coord())
	}
	if !pyramid.Shape.Contains(slot.Coord()) {
		return violation("slot %s lies outside pyramid %s", slot.SlotID, pyramid.PyramidID)
	}
	if !slot.Occupied() {
		return nil
	}

	bale, ok := s.bales.get(slot.BaleID)
	if !ok {
		return violation("slot %s holds unknown bale %s", slot.SlotID, slot.BaleID)
	}
	if bale.Decision != entities.DecisionPass {
		return violation("slot %s holds failed bale %s", slot.SlotID, bale.BaleID)
	}
	if bale.SlotID() != slot.SlotID {
		return violation("slot %s holds bale %s assigned to %q", slot.SlotID, bale.BaleID, bale.SlotID())
	}
	return nil
}

// checkBale verifies a bale's storage assignment
func (s *state) checkBale(bale entities.Bale) error {
	if !bale.Stored() {
		if bale.PyramidID != "" || bale.Slot != nil {
			return violation("bale %s has a partial storage assignment", bale.BaleID)
		}
		return nil
	}
	if bale.Decision != entities.DecisionPass {
		return violation("failed bale %s is assigned to storage", bale.BaleID)
	}
	if _, ok := s.pyramids.get(bale.PyramidID); !ok {
		return violation("bale %s assigned to unknown pyramid %s", bale.BaleID, bale.PyramidID)
	}
	if _, ok := s.slots.get(bale.SlotID()); !ok {
		return violation("bale %s assigned to missing slot %s", bale.BaleID, bale.SlotID())
	}
	return nil
}

// check verifies the records touched by a transaction
func (s *state) check(bales, slots map[string]bool) error {
	for id := range bales {
		bale, ok := s.bales.get(id)
		if !ok {
			continue
		}
		if err := s.checkBale(bale); err != nil {
			return err
		}
		if bale.Stored() {
			slots[bale.SlotID()] = true
		}
	}
	for id := range slots {
		slot, ok := s.slots.get(id)
		if !ok {
			continue
		}
		if err := s.checkSlot(slot); err != nil {
			return err
		}
	}
	return nil
}

// checkAll verifies every bale and slot
func (s *state) checkAll() error {
	for _, b := range s.bales.items {
		if err := s.checkBale(b); err != nil {
			return err
		}
	}
	for _, sl := range s.slots.items {
		if err := s.checkSlot(sl); err != nil {
			return err
		}
	}
	return nil
}
