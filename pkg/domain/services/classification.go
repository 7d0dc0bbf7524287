package services

import (
	"fmt"
	"math"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

// DaysCoverUnlimited is reported when there is no consumption to cover
const DaysCoverUnlimited = 999

// ClassifyBale decides Pass or Fail for a moisture reading.
// A bale passes iff its moisture is at or below the species reject threshold.
// Unknown species and invalid readings fail and also return an error.
func ClassifyBale(moisturePct float64, species entities.Species, cfg entities.ProcessConfig) (entities.Decision, error) {
	if math.IsNaN(moisturePct) || moisturePct < 0 || moisturePct > 100 {
		return entities.DecisionFail, fmt.Errorf("%w: moisture %v", ErrInvalidMeasurement, moisturePct)
	}

	threshold, ok := cfg.Species[species]
	if !ok {
		return entities.DecisionFail, fmt.Errorf("%w: %q", ErrUnknownSpecies, species)
	}

	if moisturePct <= threshold.RejectPct {
		return entities.DecisionPass, nil
	}
	return entities.DecisionFail, nil
}

// ComputeDensity returns weight per reference volume of the bale type
func ComputeDensity(weightKg float64, baleType entities.BaleType) float64 {
	if math.IsNaN(weightKg) || weightKg <= 0 {
		return 0
	}
	return weightKg / baleType.ReferenceVolume()
}

// SupplierTiering ranks a supplier from its fail rate and mean moisture.
// Tier 1 is checked before tier 3.
func SupplierTiering(failRatePct, avgMoisturePct, acceptPct float64) entities.Tier {
	if failRatePct < 2 && avgMoisturePct <= acceptPct {
		return entities.Tier1
	}
	if failRatePct > 8 {
		return entities.Tier3
	}
	return entities.Tier2
}

// ComputeDaysCover returns how many whole days onHand bales last at dailyUsage
func ComputeDaysCover(onHand, dailyUsage int) int {
	if dailyUsage <= 0 {
		return DaysCoverUnlimited
	}
	if onHand <= 0 {
		return 0
	}
	return onHand / dailyUsage
}
