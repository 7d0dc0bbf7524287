package output

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/vsinha/baleyard/pkg/application/dto"
	"github.com/vsinha/baleyard/pkg/domain/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

// TimelineWindow is how far back the HTML dashboard charts truck visits
const TimelineWindow = 24 * time.Hour

var dashboardTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"daysCover": func(cover map[entities.Grade]int, g entities.Grade) string {
		return daysCover(cover, g)
	},
	"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"clock": func(t time.Time) string { return t.Format("15:04") },
}).ParseFS(templateFS, "templates/dashboard.html"))

// htmlDashboard is the data the dashboard template renders
type htmlDashboard struct {
	dto.Dashboard
	Grades      []entities.Grade
	Timeline    template.HTML
	GeneratedAt string
}

// RenderDashboardHTML writes a standalone HTML page with the dashboard and
// an SVG timeline of the truck visits in the last TimelineWindow
func RenderDashboardHTML(w io.Writer, d dto.Dashboard, trucks []entities.TruckLoad) error {
	timeline := NewTruckTimeline(d.GeneratedAt, TimelineWindow)
	data := htmlDashboard{
		Dashboard:   d,
		Grades:      []entities.Grade{entities.GradeA, entities.GradeB},
		Timeline:    template.HTML(timeline.GenerateSVG(trucks)),
		GeneratedAt: d.GeneratedAt.Format("2006-01-02 15:04:05 MST"),
	}
	if err := dashboardTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}
