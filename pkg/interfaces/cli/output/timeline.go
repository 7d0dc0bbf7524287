package output

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

// TruckTimeline is an SVG Gantt chart of truck visits, one row per truck
type TruckTimeline struct {
	Width       int
	MarginLeft  int
	MarginTop   int
	MarginRight int
	RowHeight   int
	StartTime   time.Time
	EndTime     time.Time
}

// TimelineBar is one truck visit placed on the chart
type TimelineBar struct {
	TruckID string
	Status  entities.TruckStatus
	Start   time.Time
	End     time.Time
	Open    bool
	Color   string
}

// NewTruckTimeline creates a chart covering the window hours up to now
func NewTruckTimeline(now time.Time, window time.Duration) *TruckTimeline {
	return &TruckTimeline{
		Width:       960,
		MarginLeft:  140,
		MarginTop:   40,
		MarginRight: 20,
		RowHeight:   24,
		StartTime:   now.Add(-window),
		EndTime:     now,
	}
}

// Bars returns the visits overlapping the window, ordered by arrival. Visits
// still on site run to the end of the window.
func (tl *TruckTimeline) Bars(trucks []entities.TruckLoad) []TimelineBar {
	var bars []TimelineBar
	for _, t := range trucks {
		end := tl.EndTime
		open := t.OutTime == nil
		if !open {
			end = *t.OutTime
		}
		if end.Before(tl.StartTime) || t.InTime.After(tl.EndTime) {
			continue
		}
		start := t.InTime
		if start.Before(tl.StartTime) {
			start = tl.StartTime
		}
		bars = append(bars, TimelineBar{
			TruckID: t.TruckID,
			Status:  t.Status,
			Start:   start,
			End:     end,
			Open:    open,
			Color:   barColor(t),
		})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Start.Before(bars[j].Start) })
	return bars
}

// GenerateSVG draws the visits with an hourly grid
func (tl *TruckTimeline) GenerateSVG(trucks []entities.TruckLoad) string {
	bars := tl.Bars(trucks)
	height := tl.MarginTop + max(len(bars), 1)*tl.RowHeight + 20

	var svg strings.Builder
	fmt.Fprintf(&svg, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, tl.Width, height)
	svg.WriteString(`<style>`)
	svg.WriteString(`.truck-label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.time-label { font-family: Arial, sans-serif; font-size: 10px; fill: #666; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`</style>`)
	fmt.Fprintf(&svg, `<rect width="%d" height="%d" fill="white"/>`, tl.Width, height)

	tl.drawTimeGrid(&svg, height)

	if len(bars) == 0 {
		fmt.Fprintf(&svg, `<text x="%d" y="%d" class="time-label">No truck visits in this window</text>`,
			tl.MarginLeft, tl.MarginTop+tl.RowHeight/2)
	}
	for i, b := range bars {
		y := tl.MarginTop + i*tl.RowHeight
		x1, x2 := tl.timeToX(b.Start), tl.timeToX(b.End)
		width := max(x2-x1, 2)
		fmt.Fprintf(&svg, `<text x="%d" y="%d" class="truck-label">%s</text>`,
			10, y+tl.RowHeight/2+4, html.EscapeString(b.TruckID))
		fmt.Fprintf(&svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" rx="3">`,
			x1, y+4, width, tl.RowHeight-8, b.Color)
		fmt.Fprintf(&svg, `<title>%s %s %s to %s</title></rect>`,
			html.EscapeString(b.TruckID), b.Status, b.Start.Format("15:04"), b.End.Format("15:04"))
	}

	svg.WriteString(`</svg>`)
	return svg.String()
}

func (tl *TruckTimeline) drawTimeGrid(svg *strings.Builder, height int) {
	first := tl.StartTime.Truncate(time.Hour)
	if first.Before(tl.StartTime) {
		first = first.Add(time.Hour)
	}
	step := time.Hour
	if tl.EndTime.Sub(tl.StartTime) > 12*time.Hour {
		step = 3 * time.Hour
	}
	for t := first; !t.After(tl.EndTime); t = t.Add(step) {
		x := tl.timeToX(t)
		fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`, x, tl.MarginTop-10, x, height-10)
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="time-label" text-anchor="middle">%s</text>`,
			x, tl.MarginTop-16, t.Format("15:04"))
	}
}

// timeToX maps a time inside the window to a pixel column
func (tl *TruckTimeline) timeToX(t time.Time) int {
	span := tl.EndTime.Sub(tl.StartTime)
	plot := tl.Width - tl.MarginLeft - tl.MarginRight
	if span <= 0 {
		return tl.MarginLeft
	}
	return tl.MarginLeft + int(float64(t.Sub(tl.StartTime))/float64(span)*float64(plot))
}

func barColor(t entities.TruckLoad) string {
	switch {
	case t.Status == entities.TruckBatchReject || t.BatchDecision == entities.BatchRejected:
		return "#C73E1D"
	case t.Closed():
		return "#9E9E9E"
	default:
		return "#3BB273"
	}
}
