package entities

import (
	"fmt"
	"time"
	// plant timezones must resolve on hosts without a zoneinfo database
	_ "time/tzdata"
)

// SpeciesThreshold holds the moisture limits for one species
type SpeciesThreshold struct {
	AcceptPct float64 `json:"acceptPct" yaml:"accept_pct"`
	RejectPct float64 `json:"rejectPct" yaml:"reject_pct"`
}

// ProcessConfig carries the plant's quality and storage parameters
type ProcessConfig struct {
	Species             map[Species]SpeciesThreshold `json:"species" yaml:"species"`
	BatchRejectEnabled  bool                         `json:"batchRejectEnabled" yaml:"batch_reject_enabled"`
	ReloadThresholdDays int                          `json:"reloadThresholdDays" yaml:"reload_threshold_days"`
	DailyUsageByGrade   map[Grade]int                `json:"dailyUsageByGrade" yaml:"daily_usage_by_grade"`
	PyramidShape        Shape                        `json:"pyramidShape" yaml:"pyramid_shape"`
	Timezone            string                       `json:"timezone" yaml:"timezone"`
}

// DefaultProcessConfig returns the settings a fresh plant starts with
func DefaultProcessConfig() ProcessConfig {
	return ProcessConfig{
		Species: map[Species]SpeciesThreshold{
			SpeciesStraw: {AcceptPct: 14, RejectPct: 14},
		},
		BatchRejectEnabled:  true,
		ReloadThresholdDays: 3,
		DailyUsageByGrade: map[Grade]int{
			GradeA: 80,
			GradeB: 40,
		},
		PyramidShape: Shape{X: 8, Y: 8, Z: 5},
		Timezone:     "Asia/Kolkata",
	}
}

// Validate checks the configuration for values the engines cannot work with
func (c ProcessConfig) Validate() error {
	if len(c.Species) == 0 {
		return fmt.Errorf("at least one species threshold is required")
	}
	for species, t := range c.Species {
		if t.RejectPct < 0 || t.RejectPct > 100 || t.AcceptPct < 0 || t.AcceptPct > 100 {
			return fmt.Errorf("thresholds for %s must be within [0,100]", species)
		}
	}
	if c.ReloadThresholdDays < 0 {
		return fmt.Errorf("reload threshold cannot be negative, got %d", c.ReloadThresholdDays)
	}
	for grade, usage := range c.DailyUsageByGrade {
		if usage < 0 {
			return fmt.Errorf("daily usage for grade %s cannot be negative", grade)
		}
	}
	if c.PyramidShape.X <= 0 || c.PyramidShape.Y <= 0 || c.PyramidShape.Z <= 0 {
		return fmt.Errorf("pyramid shape dimensions must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC
func (c ProcessConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Clone returns a copy that shares no maps with c
func (c ProcessConfig) Clone() ProcessConfig {
	species := make(map[Species]SpeciesThreshold, len(c.Species))
	for k, v := range c.Species {
		species[k] = v
	}
	usage := make(map[Grade]int, len(c.DailyUsageByGrade))
	for k, v := range c.DailyUsageByGrade {
		usage[k] = v
	}
	c.Species = species
	c.DailyUsageByGrade = usage
	return c
}
