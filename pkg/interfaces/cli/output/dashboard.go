package output

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vsinha/baleyard/pkg/application/dto"
	"github.com/vsinha/baleyard/pkg/application/selectors"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	domainsvc "github.com/vsinha/baleyard/pkg/domain/services"
)

var (
	accent  = lipgloss.Color("#2E86AB")
	muted   = lipgloss.Color("#666666")
	warn    = lipgloss.Color("#F18F01")
	danger  = lipgloss.Color("#C73E1D")
	success = lipgloss.Color("#3BB273")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headingStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 2).Width(22)
)

var severityStyles = map[entities.Severity]lipgloss.Style{
	entities.SeverityInfo:     lipgloss.NewStyle().Foreground(accent),
	entities.SeverityWarn:     lipgloss.NewStyle().Foreground(warn).Bold(true),
	entities.SeverityCritical: lipgloss.NewStyle().Foreground(danger).Bold(true),
}

const barWidth = 30

// RenderDashboard writes the yard overview as styled terminal text
func RenderDashboard(w io.Writer, d dto.Dashboard) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("BALE YARD"))
	b.WriteString(mutedStyle.Render("  " + d.GeneratedAt.Format("2006-01-02 15:04 MST")))
	b.WriteString("\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("On hand A / B", fmt.Sprintf("%d / %d", d.OnHandByGrade[entities.GradeA], d.OnHandByGrade[entities.GradeB])),
		card("Available A / B", fmt.Sprintf("%d / %d", d.AvailableByGrade[entities.GradeA], d.AvailableByGrade[entities.GradeB])),
		card("Days cover A / B", fmt.Sprintf("%s / %s", daysCover(d.DaysCoverByGrade, entities.GradeA), daysCover(d.DaysCoverByGrade, entities.GradeB))),
		card("Fail rate 24h", failRate(d.FailRate24h)),
		card("Bales today", fmt.Sprintf("%d", d.TodayThroughput)),
	))
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Pyramids"))
	b.WriteString("\n")
	for _, p := range d.Pyramids {
		status := ""
		if p.Status == entities.PyramidLocked {
			status = severityStyles[entities.SeverityWarn].Render(" locked")
		}
		fmt.Fprintf(&b, "  %-8s %s  %s %3d/%-3d %5.1f%%%s\n",
			p.PyramidID, p.QualityGrade, bar(p.OccupancyPct/100), p.Occupied, p.Capacity, p.OccupancyPct, status)
	}

	b.WriteString(headingStyle.Render("Throughput (last 12h)"))
	b.WriteString("\n")
	b.WriteString(throughputChart(d.Throughput))

	b.WriteString(headingStyle.Render(fmt.Sprintf("Trucks on site (%d)", len(d.TrucksOnSite))))
	b.WriteString("\n")
	if len(d.TrucksOnSite) == 0 {
		b.WriteString(mutedStyle.Render("  none"))
		b.WriteString("\n")
	}
	for _, t := range d.TrucksOnSite {
		fmt.Fprintf(&b, "  %-12s %-8s %-12s %-14s %d bales\n", t.TruckID, t.SupplierID, t.Lot, t.Status, t.BaleCount)
	}

	b.WriteString(headingStyle.Render(fmt.Sprintf("Active alerts (%d)", len(d.ActiveAlerts))))
	b.WriteString("\n")
	if len(d.ActiveAlerts) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(success).Render("  all clear"))
		b.WriteString("\n")
	}
	for _, a := range d.ActiveAlerts {
		style, ok := severityStyles[a.Severity]
		if !ok {
			style = mutedStyle
		}
		fmt.Fprintf(&b, "  %s %s\n", style.Render(fmt.Sprintf("[%-8s]", a.Severity)), a.Message)
	}

	if len(d.RecentEvents) > 0 {
		b.WriteString(headingStyle.Render("Recent activity"))
		b.WriteString("\n")
		for _, e := range d.RecentEvents {
			fmt.Fprintf(&b, "  %s %-8s %s\n", mutedStyle.Render(e.Timestamp.Format("15:04")), e.Actor, e.Change)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func card(label, value string) string {
	return cardStyle.Render(mutedStyle.Render(label) + "\n" + lipgloss.NewStyle().Bold(true).Render(value))
}

func daysCover(cover map[entities.Grade]int, g entities.Grade) string {
	days, ok := cover[g]
	if !ok {
		return "-"
	}
	if days == domainsvc.DaysCoverUnlimited {
		return "∞"
	}
	return fmt.Sprintf("%d", days)
}

func failRate(pct float64) string {
	s := fmt.Sprintf("%.1f%%", pct)
	switch {
	case pct >= 10:
		return severityStyles[entities.SeverityCritical].Render(s)
	case pct >= 5:
		return severityStyles[entities.SeverityWarn].Render(s)
	default:
		return s
	}
}

// bar renders a fraction in [0,1] as a fixed-width block bar
func bar(fraction float64) string {
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(math.Round(fraction * barWidth))
	return lipgloss.NewStyle().Foreground(accent).Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", barWidth-filled))
}

// throughputChart draws one row per hour scaled to the busiest hour
func throughputChart(buckets []selectors.HourBucket) string {
	peak := 0
	for _, h := range buckets {
		if h.Count > peak {
			peak = h.Count
		}
	}
	var b strings.Builder
	for _, h := range buckets {
		fraction := 0.0
		if peak > 0 {
			fraction = float64(h.Count) / float64(peak)
		}
		fmt.Fprintf(&b, "  %5s %s %d\n", h.Label, bar(fraction), h.Count)
	}
	return b.String()
}
