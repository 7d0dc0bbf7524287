package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vsinha/baleyard/pkg/application/selectors"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	"github.com/vsinha/baleyard/pkg/infrastructure/events"
)

// Recorder exports yard activity and stock levels to Prometheus
type Recorder struct {
	balesRecorded    *prometheus.CounterVec
	balesPlaced      *prometheus.CounterVec
	truckTransitions *prometheus.CounterVec
	batchRejects     prometheus.Counter
	alertsRaised     *prometheus.CounterVec
	batchesCreated   prometheus.Counter
	storeCommits     prometheus.Counter
	storeChanges     prometheus.Histogram

	onHand           *prometheus.GaugeVec
	daysCover        *prometheus.GaugeVec
	pyramidOccupancy *prometheus.GaugeVec
	activeAlerts     prometheus.Gauge
}

// NewRecorder registers the yard metrics with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		balesRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "baleyard_bales_recorded_total",
			Help: "Bales recorded at QA by decision",
		}, []string{"decision"}),
		balesPlaced: f.NewCounterVec(prometheus.CounterOpts{
			Name: "baleyard_bales_placed_total",
			Help: "Bales placed into pyramids by grade",
		}, []string{"grade"}),
		truckTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "baleyard_truck_transitions_total",
			Help: "Truck status transitions by target status",
		}, []string{"status"}),
		batchRejects: f.NewCounter(prometheus.CounterOpts{
			Name: "baleyard_truck_batch_rejects_total",
			Help: "Truck loads rejected after a failed bale",
		}),
		alertsRaised: f.NewCounterVec(prometheus.CounterOpts{
			Name: "baleyard_alerts_raised_total",
			Help: "Alerts raised by type and severity",
		}, []string{"type", "severity"}),
		batchesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "baleyard_consumption_batches_total",
			Help: "Consumption batches created",
		}),
		storeCommits: f.NewCounter(prometheus.CounterOpts{
			Name: "baleyard_store_commits_total",
			Help: "Committed store transactions",
		}),
		storeChanges: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "baleyard_store_changes_per_commit",
			Help:    "Records written per committed transaction",
			Buckets: []float64{1, 2, 5, 10, 50, 100, 500},
		}),
		onHand: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "baleyard_on_hand_bales",
			Help: "Bales available for processing by grade",
		}, []string{"grade"}),
		daysCover: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "baleyard_days_cover",
			Help: "Days of consumption covered by stock, by grade",
		}, []string{"grade"}),
		pyramidOccupancy: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "baleyard_pyramid_occupancy_percent",
			Help: "Occupied share of each pyramid",
		}, []string{"pyramid"}),
		activeAlerts: f.NewGauge(prometheus.GaugeOpts{
			Name: "baleyard_active_alerts",
			Help: "Uncleared alerts",
		}),
	}
}

// Verify interface compliance
var _ events.EventHandler = (*Recorder)(nil)

// CanHandle accepts every yard event
func (r *Recorder) CanHandle(eventType string) bool {
	return true
}

// Handle updates the counters for one event
func (r *Recorder) Handle(event events.Event) error {
	switch data := event.Data().(type) {
	case events.BaleRecorded:
		r.balesRecorded.WithLabelValues(string(data.Decision)).Inc()
	case events.BalePlaced:
		r.balesPlaced.WithLabelValues(string(data.Grade)).Inc()
	case events.TruckStatusChanged:
		r.truckTransitions.WithLabelValues(string(data.To)).Inc()
	case events.TruckBatchRejected:
		r.batchRejects.Inc()
	case events.AlertRaised:
		r.alertsRaised.WithLabelValues(string(data.Alert.Type), string(data.Alert.Severity)).Inc()
	case events.BatchCreated:
		r.batchesCreated.Inc()
	}
	return nil
}

// ObserveCommit records a committed store transaction
func (r *Recorder) ObserveCommit(changes []repositories.Change) {
	r.storeCommits.Inc()
	r.storeChanges.Observe(float64(len(changes)))
}

// UpdateGauges recomputes the stock gauges from a snapshot
func (r *Recorder) UpdateGauges(snap *entities.Snapshot) {
	available := selectors.AvailableByGrade(snap.Bales, snap.Pyramids, snap.Slots)
	for grade, n := range available {
		r.onHand.WithLabelValues(string(grade)).Set(float64(n))
	}
	cover := selectors.DaysCoverByGrade(snap.Bales, snap.Pyramids, snap.Config.DailyUsageByGrade)
	for grade, d := range cover {
		r.daysCover.WithLabelValues(string(grade)).Set(float64(d))
	}
	for _, p := range snap.Pyramids {
		r.pyramidOccupancy.WithLabelValues(p.PyramidID).Set(selectors.PyramidOccupancy(p, snap.Slots))
	}
	r.activeAlerts.Set(float64(len(selectors.ActiveAlerts(snap.Alerts))))
}
