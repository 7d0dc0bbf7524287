package selectors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/services"
)

var base = time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	bales    []entities.Bale
	pyramids []entities.Pyramid
	slots    []entities.Slot
}

func (f *fixture) place(id, pyramidID string, c entities.Coord, ts time.Time, emptied bool) {
	cc := c
	f.bales = append(f.bales, entities.Bale{
		BaleID: id, TruckID: "T1", Decision: entities.DecisionPass, MoisturePct: 10,
		Timestamp: ts, PyramidID: pyramidID, Slot: &cc,
	})
	placed := ts
	slot := entities.Slot{SlotID: entities.SlotKey(pyramidID, c), PyramidID: pyramidID, X: c.X, Y: c.Y, Z: c.Z, BaleID: id, PlacedAt: &placed}
	if emptied {
		e := ts.Add(time.Hour)
		slot.EmptiedAt = &e
	}
	f.slots = append(f.slots, slot)
}

func newFixture() *fixture {
	return &fixture{pyramids: []entities.Pyramid{
		{PyramidID: "PA", QualityGrade: entities.GradeA, Capacity: 8, Status: entities.PyramidActive, Shape: entities.Shape{X: 2, Y: 2, Z: 2}},
		{PyramidID: "PB", QualityGrade: entities.GradeB, Capacity: 8, Status: entities.PyramidActive, Shape: entities.Shape{X: 2, Y: 2, Z: 2}},
	}}
}

func TestInventoryCounts(t *testing.T) {
	f := newFixture()
	f.place("A1", "PA", entities.Coord{}, base, false)
	f.place("A2", "PA", entities.Coord{X: 1}, base, true)
	f.place("B1", "PB", entities.Coord{}, base, false)
	f.bales = append(f.bales,
		entities.Bale{BaleID: "F1", Decision: entities.DecisionFail, Timestamp: base},
		entities.Bale{BaleID: "U1", Decision: entities.DecisionPass, Timestamp: base},
	)

	onHand := OnHandIncludingConsumed(f.bales, f.pyramids)
	assert.Equal(t, map[entities.Grade]int{entities.GradeA: 2, entities.GradeB: 1}, onHand)

	available := AvailableByGrade(f.bales, f.pyramids, f.slots)
	assert.Equal(t, map[entities.Grade]int{entities.GradeA: 1, entities.GradeB: 1}, available)

	ids := []string{}
	for _, b := range AvailableForProcessing(f.bales, f.slots) {
		ids = append(ids, b.BaleID)
	}
	assert.Equal(t, []string{"A1", "B1"}, ids)
}

func TestDaysCoverByGrade(t *testing.T) {
	f := newFixture()
	for i := 0; i < 8; i++ {
		f.place(string(rune('a'+i)), "PA", entities.Coord{X: i % 2, Y: (i / 2) % 2, Z: i / 4}, base, false)
	}

	cover := DaysCoverByGrade(f.bales, f.pyramids, map[entities.Grade]int{entities.GradeA: 3, entities.GradeB: 0})
	assert.Equal(t, 2, cover[entities.GradeA])
	assert.Equal(t, services.DaysCoverUnlimited, cover[entities.GradeB])
}

func TestAvailableDaysCoverByGrade_IgnoresConsumed(t *testing.T) {
	f := newFixture()
	for i := 0; i < 6; i++ {
		f.place(string(rune('a'+i)), "PA", entities.Coord{X: i % 2, Y: (i / 2) % 2, Z: i / 4}, base, i >= 2)
	}
	usage := map[entities.Grade]int{entities.GradeA: 1, entities.GradeB: 0}

	assert.Equal(t, 6, DaysCoverByGrade(f.bales, f.pyramids, usage)[entities.GradeA])

	cover := AvailableDaysCoverByGrade(f.bales, f.pyramids, f.slots, usage)
	assert.Equal(t, 2, cover[entities.GradeA])
	assert.Equal(t, services.DaysCoverUnlimited, cover[entities.GradeB])
}

func TestFailRate(t *testing.T) {
	bales := []entities.Bale{
		{Decision: entities.DecisionFail, Timestamp: base.Add(-30 * time.Hour)},
		{Decision: entities.DecisionFail, Timestamp: base.Add(-2 * time.Hour)},
		{Decision: entities.DecisionPass, Timestamp: base.Add(-time.Hour)},
		{Decision: entities.DecisionPass, Timestamp: base.Add(-time.Hour)},
		{Decision: entities.DecisionPass, Timestamp: base},
	}

	assert.Equal(t, 25.0, FailRate(bales, 24, base))
	assert.Equal(t, 40.0, FailRate(bales, 48, base))
	assert.Equal(t, 0.0, FailRate(bales, 24, base.Add(100*time.Hour)), "empty window")
	assert.Equal(t, 0.0, FailRate(nil, 24, base))
}

func TestTodayThroughput_UsesNowLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 7, 15, 1, 0, 0, 0, ist)
	bales := []entities.Bale{
		{Timestamp: time.Date(2024, 7, 14, 23, 59, 0, 0, ist)},
		{Timestamp: time.Date(2024, 7, 15, 0, 0, 0, 0, ist)},
		{Timestamp: time.Date(2024, 7, 14, 19, 0, 0, 0, time.UTC)},
	}

	assert.Equal(t, 2, TodayThroughput(bales, now))
}

func TestThroughputSeries(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 30, 0, 0, time.UTC)
	bales := []entities.Bale{
		{Timestamp: time.Date(2024, 7, 15, 11, 5, 0, 0, time.UTC)},
		{Timestamp: time.Date(2024, 7, 15, 9, 10, 0, 0, time.UTC)},
		{Timestamp: time.Date(2024, 7, 15, 11, 55, 0, 0, time.UTC)},
		{Timestamp: time.Date(2024, 7, 14, 11, 30, 0, 0, time.UTC)},
		{Timestamp: time.Date(2024, 7, 13, 11, 30, 0, 0, time.UTC)},
	}

	series := ThroughputSeries(bales, 48, now)
	require.Len(t, series, 2)
	assert.Equal(t, HourBucket{Hour: 9, Label: "9:00", Count: 1}, series[0])
	assert.Equal(t, HourBucket{Hour: 11, Label: "11:00", Count: 3}, series[1], "same hour on different days collapses")
}

func TestMoistureSeries(t *testing.T) {
	bales := []entities.Bale{
		{BaleID: "1", Timestamp: base.Add(3 * time.Minute)},
		{BaleID: "2", Timestamp: base.Add(1 * time.Minute)},
		{BaleID: "3", Timestamp: base.Add(2 * time.Minute)},
		{BaleID: "4", Timestamp: base.Add(2 * time.Minute)},
	}

	series := MoistureSeries(bales, 3)
	ids := []string{}
	for _, p := range series {
		ids = append(ids, p.BaleID)
	}
	assert.Equal(t, []string{"2", "3", "4"}, ids)
	assert.Empty(t, MoistureSeries(bales, 0))
}

func TestPyramidOccupancy(t *testing.T) {
	f := newFixture()
	f.place("A1", "PA", entities.Coord{}, base, false)
	f.place("A2", "PA", entities.Coord{X: 1}, base, false)
	f.place("A3", "PA", entities.Coord{Y: 1}, base, true)

	assert.Equal(t, 25.0, PyramidOccupancy(f.pyramids[0], f.slots))
	assert.Equal(t, 0.0, PyramidOccupancy(f.pyramids[1], f.slots))
	assert.Equal(t, 0.0, PyramidOccupancy(entities.Pyramid{PyramidID: "X"}, f.slots))
}

func TestSelectFEFO_StableOldestFirst(t *testing.T) {
	f := newFixture()
	f.place("late", "PA", entities.Coord{}, base.Add(2*time.Hour), false)
	f.place("tie1", "PA", entities.Coord{X: 1}, base, false)
	f.place("gone", "PA", entities.Coord{Y: 1}, base.Add(-time.Hour), true)
	f.place("tie2", "PA", entities.Coord{X: 1, Y: 1}, base, false)
	f.place("otherGrade", "PB", entities.Coord{}, base.Add(-5*time.Hour), false)

	picked := SelectFEFO(f.bales, f.pyramids, f.slots, entities.GradeA, 10)
	ids := []string{}
	for _, b := range picked {
		ids = append(ids, b.BaleID)
	}
	assert.Equal(t, []string{"tie1", "tie2", "late"}, ids)

	assert.Len(t, SelectFEFO(f.bales, f.pyramids, f.slots, entities.GradeA, 2), 2)
	assert.Empty(t, SelectFEFO(f.bales, f.pyramids, f.slots, entities.GradeA, 0))
}

func TestRelations(t *testing.T) {
	trucks := []entities.TruckLoad{{TruckID: "T1", SupplierID: "S1"}, {TruckID: "T2", SupplierID: "S2"}}
	bales := []entities.Bale{{BaleID: "a", TruckID: "T1"}, {BaleID: "b", TruckID: "T2"}, {BaleID: "c", TruckID: "T1"}}

	assert.Len(t, SupplierBales("S1", bales, trucks), 2)
	assert.Len(t, TruckBales("T2", bales), 1)
	assert.Len(t, SupplierTrucks("S2", trucks), 1)

	cleared := base
	alerts := []entities.Alert{{AlertID: "1"}, {AlertID: "2", ClearedAt: &cleared}}
	active := ActiveAlerts(alerts)
	require.Len(t, active, 1)
	assert.Equal(t, "1", active[0].AlertID)
}
