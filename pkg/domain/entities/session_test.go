package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Can(t *testing.T) {
	testCases := []struct {
		role       Role
		permission Permission
		allowed    bool
	}{
		{RoleAdmin, PermModifySettings, true},
		{RoleSupervisor, PermModifySettings, true},
		{RoleOperator, PermModifySettings, false},
		{RoleOperator, PermPerformQA, true},
		{RoleOperator, PermClearAlerts, true},
		{RoleOperator, PermManageSuppliers, false},
		{RoleViewer, PermPerformQA, false},
		{RoleViewer, PermCheckIn, false},
		{RoleSupervisor, PermExportReports, true},
	}

	for _, tc := range testCases {
		t.Run(string(tc.role)+"/"+string(tc.permission), func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.role.Can(tc.permission))
		})
	}
}

func TestDefaultProcessConfig(t *testing.T) {
	cfg := DefaultProcessConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, SpeciesThreshold{AcceptPct: 14, RejectPct: 14}, cfg.Species[SpeciesStraw])
	assert.True(t, cfg.BatchRejectEnabled)
	assert.Equal(t, 3, cfg.ReloadThresholdDays)
	assert.Equal(t, 80, cfg.DailyUsageByGrade[GradeA])
	assert.Equal(t, 40, cfg.DailyUsageByGrade[GradeB])
	assert.Equal(t, Shape{X: 8, Y: 8, Z: 5}, cfg.PyramidShape)
	assert.Equal(t, "Asia/Kolkata", cfg.Timezone)

	clone := cfg.Clone()
	clone.DailyUsageByGrade[GradeA] = 1
	assert.Equal(t, 80, cfg.DailyUsageByGrade[GradeA])
}

func TestProcessConfig_ValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultProcessConfig()
	cfg.Timezone = "Mars/Olympus"
	assert.Error(t, cfg.Validate())

	cfg = DefaultProcessConfig()
	cfg.DailyUsageByGrade[GradeB] = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultProcessConfig()
	cfg.Species[SpeciesStraw] = SpeciesThreshold{AcceptPct: 14, RejectPct: 140}
	assert.Error(t, cfg.Validate())
}
