package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/baleyard/pkg/application/selectors"
	"github.com/vsinha/baleyard/pkg/domain/entities"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
)

// Config holds configuration for output generation
type Config struct {
	Format string
	// OutputFile receives the report instead of the writer when set.
	// Required for xlsx.
	OutputFile string
	Verbose    bool
}

// Report is a tabular export. Records is the typed data behind Rows and is
// what the JSON format encodes.
type Report struct {
	Title   string
	Sheet   string
	Headers []string
	Rows    [][]string
	Records any
}

// Generate writes the report in the configured format
func Generate(w io.Writer, report Report, config Config) error {
	switch config.Format {
	case FormatText, "":
		return withOutput(w, config, func(out io.Writer) error { return generateTextOutput(out, report) })
	case FormatJSON:
		return withOutput(w, config, func(out io.Writer) error { return generateJSONOutput(out, report.Records) })
	case FormatCSV:
		return withOutput(w, config, func(out io.Writer) error { return generateCSVOutput(out, report) })
	case FormatXLSX:
		if config.OutputFile == "" {
			return fmt.Errorf("output file required for xlsx format")
		}
		if err := generateXLSXOutput(report, config.OutputFile); err != nil {
			return err
		}
		if config.Verbose {
			fmt.Fprintf(w, "💾 %s saved to: %s\n", report.Title, config.OutputFile)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// withOutput runs fn against w, or against config.OutputFile when set
func withOutput(w io.Writer, config Config, fn func(io.Writer) error) error {
	if config.OutputFile == "" {
		return fn(w)
	}
	if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", config.OutputFile, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(w, "💾 Results saved to: %s\n", config.OutputFile)
	}
	return nil
}

// generateTextOutput prints an aligned table
func generateTextOutput(w io.Writer, report Report) error {
	fmt.Fprintf(w, "📋 %s (%d)\n", report.Title, len(report.Rows))
	fmt.Fprintln(w, strings.Repeat("=", len(report.Title)+8))

	widths := make([]int, len(report.Headers))
	for i, h := range report.Headers {
		widths[i] = len(h)
	}
	for _, row := range report.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	writeRow(report.Headers)
	dashes := make([]string, len(widths))
	for i, n := range widths {
		dashes[i] = strings.Repeat("-", n)
	}
	writeRow(dashes)
	for _, row := range report.Rows {
		writeRow(row)
	}
	return nil
}

// generateJSONOutput writes the typed records as indented JSON
func generateJSONOutput(w io.Writer, v any) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func generateCSVOutput(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(report.Headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(report.Rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return cw.Error()
}

// generateXLSXOutput writes the report to a single-sheet workbook with a
// bold, frozen header row
func generateXLSXOutput(report Report, filename string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := report.Sheet
	if sheet == "" {
		sheet = "Report"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(report.Headers))
	for i, h := range report.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(report.Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	for r, row := range report.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// cellValue stores numeric text as a number so spreadsheets can sum it
func cellValue(s string) interface{} {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}

// BalesReport lists every bale with its QA result and storage position
func BalesReport(bales []entities.Bale, trucks []entities.TruckLoad) Report {
	supplierOf := make(map[string]string, len(trucks))
	for _, t := range trucks {
		supplierOf[t.TruckID] = t.SupplierID
	}

	rows := make([][]string, 0, len(bales))
	for _, b := range bales {
		slot := ""
		if b.Slot != nil {
			slot = b.Slot.String()
		}
		rows = append(rows, []string{
			b.BaleID,
			b.TruckID,
			supplierOf[b.TruckID],
			string(b.BaleType),
			string(b.Species),
			formatFloat(b.MoisturePct),
			formatFloat(b.WeightKg),
			formatFloat(b.Density),
			string(b.Decision),
			b.PyramidID,
			slot,
			b.OperatorID,
			formatTime(b.Timestamp),
		})
	}
	return Report{
		Title: "Bales",
		Sheet: "Bales",
		Headers: []string{"Bale ID", "Truck ID", "Supplier ID", "Bale Type", "Species", "Moisture %",
			"Weight kg", "Density", "Decision", "Pyramid", "Slot", "Operator", "Timestamp"},
		Rows:    rows,
		Records: bales,
	}
}

// TrucksReport lists every truck visit with weights and bale counts
func TrucksReport(trucks []entities.TruckLoad) Report {
	rows := make([][]string, 0, len(trucks))
	for _, t := range trucks {
		net := ""
		if n, ok := t.NetWeightKg(); ok {
			net = formatFloat(n)
		}
		out := ""
		if t.OutTime != nil {
			out = formatTime(*t.OutTime)
		}
		rows = append(rows, []string{
			t.TruckID,
			t.SupplierID,
			t.Lot,
			string(t.BaleType),
			string(t.Status),
			string(t.BatchDecision),
			formatOptional(t.GrossKg),
			formatOptional(t.TareKg),
			net,
			strconv.Itoa(t.BaleCount),
			t.VehicleRegistration,
			t.DriverName,
			formatTime(t.InTime),
			out,
		})
	}
	return Report{
		Title: "Trucks",
		Sheet: "Trucks",
		Headers: []string{"Truck ID", "Supplier ID", "Lot", "Bale Type", "Status", "Batch Decision",
			"Gross kg", "Tare kg", "Net kg", "Bales", "Vehicle", "Driver", "In", "Out"},
		Rows:    rows,
		Records: trucks,
	}
}

// SuppliersReport lists every supplier with its scorecard
func SuppliersReport(suppliers []entities.Supplier, bales []entities.Bale, trucks []entities.TruckLoad) Report {
	rows := make([][]string, 0, len(suppliers))
	for _, s := range suppliers {
		override := ""
		if s.TierOverride != nil {
			override = strconv.Itoa(int(*s.TierOverride))
		}
		rows = append(rows, []string{
			s.SupplierID,
			s.Name,
			string(s.Status),
			strconv.Itoa(int(s.Tier)),
			override,
			formatFloat(s.Score),
			formatFloat(s.KPI.FailRatePct),
			formatFloat(s.KPI.AvgMoisturePct),
			formatFloat(s.KPI.Variance),
			strconv.Itoa(len(selectors.SupplierTrucks(s.SupplierID, trucks))),
			strconv.Itoa(len(selectors.SupplierBales(s.SupplierID, bales, trucks))),
		})
	}
	return Report{
		Title: "Suppliers",
		Sheet: "Suppliers",
		Headers: []string{"Supplier ID", "Name", "Status", "Tier", "Tier Override", "Score",
			"Fail Rate %", "Avg Moisture %", "Variance", "Trucks", "Bales"},
		Rows:    rows,
		Records: suppliers,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
