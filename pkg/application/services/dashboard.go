package services

import (
	"time"

	"github.com/vsinha/baleyard/pkg/application/dto"
	"github.com/vsinha/baleyard/pkg/application/selectors"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
)

const (
	failRateWindowHours  = 24
	throughputHours      = 12
	moistureSeriesLength = 50
	recentEventCount     = 20
)

// DashboardService builds the yard overview
type DashboardService struct {
	store repositories.Store
	clock Clock
}

// NewDashboardService creates a dashboard service; a nil clock uses time.Now
func NewDashboardService(store repositories.Store, clock Clock) *DashboardService {
	if clock == nil {
		clock = time.Now
	}
	return &DashboardService{store: store, clock: clock}
}

// Dashboard computes every panel from one consistent snapshot. Times are
// bucketed in the configured plant timezone.
func (s *DashboardService) Dashboard() dto.Dashboard {
	snap := s.store.Snapshot()
	now := s.clock().In(snap.Config.Location())

	d := dto.Dashboard{
		GeneratedAt:      now,
		OnHandByGrade:    selectors.OnHandIncludingConsumed(snap.Bales, snap.Pyramids),
		AvailableByGrade: selectors.AvailableByGrade(snap.Bales, snap.Pyramids, snap.Slots),
		DaysCoverByGrade: selectors.DaysCoverByGrade(snap.Bales, snap.Pyramids, snap.Config.DailyUsageByGrade),
		FailRate24h:      selectors.FailRate(snap.Bales, failRateWindowHours, now),
		TodayThroughput:  selectors.TodayThroughput(snap.Bales, now),
		Throughput:       selectors.ThroughputSeries(snap.Bales, throughputHours, now),
		Moisture:         selectors.MoistureSeries(snap.Bales, moistureSeriesLength),
		Pyramids:         PyramidViews(snap.Pyramids, snap.Slots),
		TrucksOnSite:     []entities.TruckLoad{},
		ActiveAlerts:     selectors.ActiveAlerts(snap.Alerts),
	}

	for _, t := range snap.Trucks {
		if !t.Closed() && t.Status != entities.TruckWaiting {
			d.TrucksOnSite = append(d.TrucksOnSite, t)
		}
	}

	evs := snap.Events
	if len(evs) > recentEventCount {
		evs = evs[len(evs)-recentEventCount:]
	}
	d.RecentEvents = make([]entities.Event, 0, len(evs))
	for i := len(evs) - 1; i >= 0; i-- {
		d.RecentEvents = append(d.RecentEvents, evs[i])
	}
	return d
}

// PyramidViews pairs each pyramid with its occupancy
func PyramidViews(pyramids []entities.Pyramid, slots []entities.Slot) []dto.PyramidView {
	views := make([]dto.PyramidView, 0, len(pyramids))
	for _, p := range pyramids {
		views = append(views, dto.PyramidView{
			Pyramid:      p,
			Occupied:     selectors.OccupiedCount(p, slots),
			OccupancyPct: selectors.PyramidOccupancy(p, slots),
		})
	}
	return views
}

// TruckView adds net weight and bales to a truck
func TruckView(truck entities.TruckLoad, bales []entities.Bale) dto.TruckView {
	v := dto.TruckView{TruckLoad: truck, Bales: selectors.TruckBales(truck.TruckID, bales)}
	if net, ok := truck.NetWeightKg(); ok {
		v.NetWeightKg = &net
	}
	return v
}
