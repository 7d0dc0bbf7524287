package output

import (
	"fmt"
	"io"

	"github.com/vsinha/baleyard/pkg/application/dto"
)

// WriteTrace prints a traceability result as text or JSON
func WriteTrace(w io.Writer, res dto.TraceResult, format string) error {
	switch format {
	case FormatJSON:
		return generateJSONOutput(w, res)
	case FormatText, "":
	default:
		return fmt.Errorf("unsupported trace format: %s", format)
	}

	fmt.Fprintf(w, "🔍 Trace %s %q\n\n", res.Kind, res.Term)

	fmt.Fprintf(w, "Suppliers (%d)\n", len(res.Suppliers))
	for _, s := range res.Suppliers {
		fmt.Fprintf(w, "  %-10s %-24s tier %d  score %.1f\n", s.SupplierID, s.Name, s.EffectiveTier(), s.Score)
	}

	fmt.Fprintf(w, "\nTrucks (%d)\n", len(res.Trucks))
	for _, t := range res.Trucks {
		fmt.Fprintf(w, "  %-14s %-8s %-12s %-20s %s\n", t.TruckID, t.SupplierID, t.Lot, t.Status, t.InTime.Format("2006-01-02 15:04"))
	}

	fmt.Fprintf(w, "\nBales (%d)\n", len(res.Bales))
	for _, b := range res.Bales {
		where := "unplaced"
		if b.Stored() {
			where = b.SlotID()
		}
		fmt.Fprintf(w, "  %-14s %-14s %5.1f%%  %-4s %s\n", b.BaleID, b.TruckID, b.MoisturePct, b.Decision, where)
	}

	fmt.Fprintf(w, "\nPyramids (%d)\n", len(res.Pyramids))
	for _, p := range res.Pyramids {
		fmt.Fprintf(w, "  %-10s grade %s  %s\n", p.PyramidID, p.QualityGrade, p.Zone)
	}

	fmt.Fprintf(w, "\nConsumption batches (%d)\n", len(res.Batches))
	for _, b := range res.Batches {
		fmt.Fprintf(w, "  %-14s line %-6s %d bales\n", b.BatchID, b.Line, len(b.BaleIDs))
	}
	return nil
}
