package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/config"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// baseConfig runs commands against a fresh in-memory store
func baseConfig(t *testing.T, out *bytes.Buffer) Config {
	t.Helper()
	t.Setenv("BALEYARD_STORAGE_DRIVER", config.DriverMemory)
	t.Setenv("BALEYARD_LOG_LEVEL", "error")
	return Config{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		Out:        out,
		Now:        func() time.Time { return testNow },
	}
}

func TestOpenApp_SeedOnEmpty(t *testing.T) {
	tests := []struct {
		name        string
		seedOnEmpty bool
		wantTrucks  bool
	}{
		{"seeds demo yard", true, true},
		{"stays empty", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Storage.SeedOnEmpty = tt.seedOnEmpty
			cfg.Process.DailyUsageByGrade[entities.GradeA] = 42

			app, err := OpenApp(context.Background(), cfg, zap.NewNop(), func() time.Time { return testNow })
			require.NoError(t, err)
			defer app.Close()

			assert.Equal(t, tt.wantTrucks, len(app.Store.Trucks()) > 0)
			assert.Equal(t, 42, app.Store.Config().DailyUsageByGrade[entities.GradeA])
		})
	}
}

func TestApplyProcessConfig_SkipsUnchanged(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.SeedOnEmpty = false
	app, err := OpenApp(context.Background(), cfg, zap.NewNop(), func() time.Time { return testNow })
	require.NoError(t, err)
	defer app.Close()

	before := len(app.Store.Events())
	require.NoError(t, app.ApplyProcessConfig(context.Background(), app.Store.Config()))
	assert.Len(t, app.Store.Events(), before)

	updated := app.Store.Config()
	updated.ReloadThresholdDays = before + 9
	require.NoError(t, app.ApplyProcessConfig(context.Background(), updated))
	assert.Len(t, app.Store.Events(), before+1)
	assert.Equal(t, updated.ReloadThresholdDays, app.Store.Config().ReloadThresholdDays)
}

func TestSeedCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewSeedCommand(SeedConfig{Config: baseConfig(t, &out), Seed: 7})
	require.NoError(t, cmd.Execute(context.Background()))

	assert.Contains(t, out.String(), "Seeded memory store (seed 7)")
	assert.Contains(t, out.String(), "Pyramids: 3")
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	suppliers := filepath.Join(dir, "suppliers.csv")
	pyramids := filepath.Join(dir, "pyramids.csv")
	require.NoError(t, os.WriteFile(suppliers, []byte(`supplier_id,name,contact_person,email,phone,address,tier
SUP101,Field Fresh,,,,,1
SUP102,Dry Acres,,,,,3
`), 0o600))
	require.NoError(t, os.WriteFile(pyramids, []byte(`pyramid_id,quality_grade,zone,origin_x,origin_y,origin_z,shape_x,shape_y,shape_z,status
PYR-X1,A,East,0,0,0,4,4,3,Active
PYR-X2,B,East,10,0,0,4,4,3,Locked
`), 0o600))

	var out bytes.Buffer
	cmd := NewImportCommand(ImportConfig{Config: baseConfig(t, &out), SuppliersFile: suppliers, PyramidsFile: pyramids})
	require.NoError(t, cmd.Execute(context.Background()))

	assert.Contains(t, out.String(), "Suppliers: 2")
	assert.Contains(t, out.String(), "Pyramids: 2")
}

func TestImportCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("id,name\nSUP1,A\n"), 0o600))

	tests := []struct {
		name string
		cfg  func(Config) ImportConfig
		want string
	}{
		{"no files", func(c Config) ImportConfig { return ImportConfig{Config: c} }, "at least one of"},
		{"bad header", func(c Config) ImportConfig { return ImportConfig{Config: c, SuppliersFile: bad} }, "header mismatch"},
		{"missing file", func(c Config) ImportConfig {
			return ImportConfig{Config: c, PyramidsFile: filepath.Join(dir, "nope.csv")}
		}, "error loading pyramids"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := NewImportCommand(tt.cfg(baseConfig(t, &out))).Execute(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReportCommand(t *testing.T) {
	tests := []struct {
		kind string
		want []string
	}{
		{ReportBales, []string{"📋 Bales", "BALE00001", "PYR-A1"}},
		{ReportTrucks, []string{"📋 Trucks", "TRK001", "LOT-2024-001"}},
		{ReportSuppliers, []string{"📋 Suppliers", "Agro Prime", "Strawlink"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			var out bytes.Buffer
			cmd := NewReportCommand(ReportConfig{Config: baseConfig(t, &out), Kind: tt.kind, Format: "text"})
			require.NoError(t, cmd.Execute(context.Background()))
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}

func TestReportCommand_XLSX(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "suppliers.xlsx")
	cmd := NewReportCommand(ReportConfig{Config: baseConfig(t, &out), Kind: ReportSuppliers, Format: "xlsx", OutputFile: path})
	require.NoError(t, cmd.Execute(context.Background()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Suppliers")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestReportCommand_UnknownKind(t *testing.T) {
	var out bytes.Buffer
	err := NewReportCommand(ReportConfig{Config: baseConfig(t, &out), Kind: "pallets"}).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown report "pallets"`)
}

func TestDashboardCommand(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"text", "PYR-A1"},
		{"json", `"trucksOnSite"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var out bytes.Buffer
			cmd := NewDashboardCommand(DashboardConfig{Config: baseConfig(t, &out), Format: tt.format})
			require.NoError(t, cmd.Execute(context.Background()))
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestTraceCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewTraceCommand(TraceConfig{Config: baseConfig(t, &out), Kind: "supplier", Term: "SUP003"})
	require.NoError(t, cmd.Execute(context.Background()))
	assert.Contains(t, out.String(), "Strawlink")
	assert.Contains(t, out.String(), "TRK002")

	out.Reset()
	err := NewTraceCommand(TraceConfig{Config: baseConfig(t, &out), Kind: "bale", Term: "NOPE"}).Execute(context.Background())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
