package services

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

// CalculateSupplierKPI computes the scorecard over bales delivered on the supplier's trucks
func CalculateSupplierKPI(supplierID string, bales []entities.Bale, trucks []entities.TruckLoad) entities.SupplierKPI {
	own := make(map[string]bool)
	for _, t := range trucks {
		if t.SupplierID == supplierID {
			own[t.TruckID] = true
		}
	}

	var moistures []decimal.Decimal
	fails := 0
	for _, b := range bales {
		if !own[b.TruckID] {
			continue
		}
		moistures = append(moistures, decimal.NewFromFloat(b.MoisturePct))
		if b.Decision == entities.DecisionFail {
			fails++
		}
	}

	if len(moistures) == 0 {
		return entities.SupplierKPI{}
	}

	n := decimal.NewFromInt(int64(len(moistures)))
	mean := decimal.Sum(decimal.Zero, moistures...).Div(n)

	variance := decimal.Zero
	for _, m := range moistures {
		d := m.Sub(mean)
		variance = variance.Add(d.Mul(d))
	}
	variance = variance.Div(n)

	failRate := decimal.NewFromInt(int64(fails)).Div(n).Mul(decimal.NewFromInt(100))

	return entities.SupplierKPI{
		FailRatePct:    round2(failRate),
		AvgMoisturePct: round2(mean),
		Variance:       round2(variance),
	}
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// SupplierScore rates a scorecard out of 100: the fail rate and five points
// per percent of mean moisture above acceptPct are deducted, floored at 0
func SupplierScore(kpi entities.SupplierKPI, acceptPct float64) float64 {
	score := decimal.NewFromInt(100).Sub(decimal.NewFromFloat(kpi.FailRatePct))
	excess := decimal.NewFromFloat(kpi.AvgMoisturePct).Sub(decimal.NewFromFloat(acceptPct))
	if excess.IsPositive() {
		score = score.Sub(excess.Mul(decimal.NewFromInt(5)))
	}
	if score.IsNegative() {
		return 0
	}
	return round2(score)
}
