package services

import (
	"fmt"

	"github.com/vsinha/baleyard/pkg/application/dto"
	"github.com/vsinha/baleyard/pkg/application/selectors"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
)

// Trace kinds
const (
	TraceBale     = "bale"
	TraceTruck    = "truck"
	TraceSupplier = "supplier"
	TraceLot      = "lot"
)

// TraceService answers traceability searches over one snapshot
type TraceService struct {
	store repositories.Store
}

// NewTraceService creates a trace service
func NewTraceService(store repositories.Store) *TraceService {
	return &TraceService{store: store}
}

// Trace follows the links from the record named by term
func (s *TraceService) Trace(kind, term string) (dto.TraceResult, error) {
	snap := s.store.Snapshot()
	t := newTracer(snap)

	switch kind {
	case TraceBale:
		return t.bale(term)
	case TraceTruck:
		return t.truck(term)
	case TraceSupplier:
		return t.supplier(term)
	case TraceLot:
		return t.lot(term)
	default:
		return dto.TraceResult{}, fmt.Errorf("%q: %w", kind, ErrUnknownTraceKind)
	}
}

type tracer struct {
	snap      *entities.Snapshot
	trucks    map[string]entities.TruckLoad
	suppliers map[string]entities.Supplier
	pyramids  map[string]entities.Pyramid
}

func newTracer(snap *entities.Snapshot) *tracer {
	t := &tracer{
		snap:      snap,
		trucks:    make(map[string]entities.TruckLoad, len(snap.Trucks)),
		suppliers: make(map[string]entities.Supplier, len(snap.Suppliers)),
		pyramids:  make(map[string]entities.Pyramid, len(snap.Pyramids)),
	}
	for _, tr := range snap.Trucks {
		t.trucks[tr.TruckID] = tr
	}
	for _, s := range snap.Suppliers {
		t.suppliers[s.SupplierID] = s
	}
	for _, p := range snap.Pyramids {
		t.pyramids[p.PyramidID] = p
	}
	return t
}

func (t *tracer) bale(id string) (dto.TraceResult, error) {
	res := newTraceResult(TraceBale, id)
	for _, b := range t.snap.Bales {
		if b.BaleID != id {
			continue
		}
		res.Bales = append(res.Bales, b)
		if truck, ok := t.trucks[b.TruckID]; ok {
			res.Trucks = append(res.Trucks, truck)
			if s, ok := t.suppliers[truck.SupplierID]; ok {
				res.Suppliers = append(res.Suppliers, s)
			}
		}
		t.complete(&res)
		return res, nil
	}
	return dto.TraceResult{}, fmt.Errorf("bale %s: %w", id, repositories.ErrNotFound)
}

func (t *tracer) truck(id string) (dto.TraceResult, error) {
	truck, ok := t.trucks[id]
	if !ok {
		return dto.TraceResult{}, fmt.Errorf("truck %s: %w", id, repositories.ErrNotFound)
	}
	res := newTraceResult(TraceTruck, id)
	res.Trucks = append(res.Trucks, truck)
	if s, ok := t.suppliers[truck.SupplierID]; ok {
		res.Suppliers = append(res.Suppliers, s)
	}
	res.Bales = append(res.Bales, selectors.TruckBales(id, t.snap.Bales)...)
	t.complete(&res)
	return res, nil
}

func (t *tracer) supplier(id string) (dto.TraceResult, error) {
	s, ok := t.suppliers[id]
	if !ok {
		return dto.TraceResult{}, fmt.Errorf("supplier %s: %w", id, repositories.ErrNotFound)
	}
	res := newTraceResult(TraceSupplier, id)
	res.Suppliers = append(res.Suppliers, s)
	res.Trucks = append(res.Trucks, selectors.SupplierTrucks(id, t.snap.Trucks)...)
	res.Bales = append(res.Bales, selectors.SupplierBales(id, t.snap.Bales, t.snap.Trucks)...)
	t.complete(&res)
	return res, nil
}

func (t *tracer) lot(lot string) (dto.TraceResult, error) {
	res := newTraceResult(TraceLot, lot)
	seen := make(map[string]bool)
	for _, truck := range t.snap.Trucks {
		if truck.Lot != lot {
			continue
		}
		res.Trucks = append(res.Trucks, truck)
		res.Bales = append(res.Bales, selectors.TruckBales(truck.TruckID, t.snap.Bales)...)
		if s, ok := t.suppliers[truck.SupplierID]; ok && !seen[s.SupplierID] {
			seen[s.SupplierID] = true
			res.Suppliers = append(res.Suppliers, s)
		}
	}
	if len(res.Trucks) == 0 {
		return dto.TraceResult{}, fmt.Errorf("lot %s: %w", lot, repositories.ErrNotFound)
	}
	t.complete(&res)
	return res, nil
}

// complete adds the pyramids and consumption batches the traced bales went through
func (t *tracer) complete(res *dto.TraceResult) {
	bales := make(map[string]bool, len(res.Bales))
	seenPyramid := make(map[string]bool)
	for _, b := range res.Bales {
		bales[b.BaleID] = true
		if b.PyramidID == "" || seenPyramid[b.PyramidID] {
			continue
		}
		if p, ok := t.pyramids[b.PyramidID]; ok {
			seenPyramid[b.PyramidID] = true
			res.Pyramids = append(res.Pyramids, p)
		}
	}
	for _, batch := range t.snap.Batches {
		for _, id := range batch.BaleIDs {
			if bales[id] {
				res.Batches = append(res.Batches, batch)
				break
			}
		}
	}
}

func newTraceResult(kind, term string) dto.TraceResult {
	return dto.TraceResult{
		Kind:      kind,
		Term:      term,
		Bales:     []entities.Bale{},
		Trucks:    []entities.TruckLoad{},
		Suppliers: []entities.Supplier{},
		Pyramids:  []entities.Pyramid{},
		Batches:   []entities.ConsumptionBatch{},
	}
}
