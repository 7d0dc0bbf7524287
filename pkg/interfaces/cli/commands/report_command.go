package commands

import (
	"context"
	"fmt"

	"github.com/vsinha/baleyard/pkg/application/services"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/interfaces/cli/output"
)

// Report kinds
const (
	ReportBales     = "bales"
	ReportTrucks    = "trucks"
	ReportSuppliers = "suppliers"
)

// ReportConfig holds the options of the report command
type ReportConfig struct {
	Config
	Kind       string
	Format     string
	OutputFile string
}

// ReportCommand exports yard records as text, JSON, CSV or XLSX
type ReportCommand struct {
	config ReportConfig
}

// NewReportCommand creates a report command with the given configuration
func NewReportCommand(config ReportConfig) *ReportCommand {
	return &ReportCommand{config: config}
}

// Execute builds the requested report. The session role must hold the
// export permission.
func (c *ReportCommand) Execute(ctx context.Context) error {
	switch c.config.Kind {
	case ReportBales, ReportTrucks, ReportSuppliers:
	default:
		return fmt.Errorf("validation error: unknown report %q, expected bales, trucks or suppliers", c.config.Kind)
	}

	cfg, logger, err := c.config.loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	app, err := OpenApp(ctx, cfg, logger, c.config.clock())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer app.Close()

	if err := services.Authorize(app.Store.Session().CurrentRole, entities.PermExportReports); err != nil {
		return err
	}

	snap := app.Store.Snapshot()
	var report output.Report
	switch c.config.Kind {
	case ReportBales:
		report = output.BalesReport(snap.Bales, snap.Trucks)
	case ReportTrucks:
		report = output.TrucksReport(snap.Trucks)
	case ReportSuppliers:
		report = output.SuppliersReport(snap.Suppliers, snap.Bales, snap.Trucks)
	}

	return output.Generate(c.config.out(), report, output.Config{
		Format:     c.config.Format,
		OutputFile: c.config.OutputFile,
		Verbose:    true,
	})
}

// DashboardConfig holds the options of the dashboard command
type DashboardConfig struct {
	Config
	Format string
}

// DashboardCommand prints the yard overview
type DashboardCommand struct {
	config DashboardConfig
}

// NewDashboardCommand creates a dashboard command with the given configuration
func NewDashboardCommand(config DashboardConfig) *DashboardCommand {
	return &DashboardCommand{config: config}
}

// Execute renders the dashboard as styled text, JSON or an HTML page
func (c *DashboardCommand) Execute(ctx context.Context) error {
	cfg, logger, err := c.config.loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	app, err := OpenApp(ctx, cfg, logger, c.config.clock())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer app.Close()

	d := services.NewDashboardService(app.Store, c.config.clock()).Dashboard()
	switch c.config.Format {
	case output.FormatText, "":
		return output.RenderDashboard(c.config.out(), d)
	case output.FormatJSON:
		return output.Generate(c.config.out(), output.Report{Records: d}, output.Config{Format: output.FormatJSON})
	case output.FormatHTML:
		return output.RenderDashboardHTML(c.config.out(), d, app.Store.Trucks())
	default:
		return fmt.Errorf("unsupported dashboard format: %s", c.config.Format)
	}
}

// TraceConfig holds the options of the trace command
type TraceConfig struct {
	Config
	Kind   string
	Term   string
	Format string
}

// TraceCommand follows a bale, truck, supplier or lot through the yard
type TraceCommand struct {
	config TraceConfig
}

// NewTraceCommand creates a trace command with the given configuration
func NewTraceCommand(config TraceConfig) *TraceCommand {
	return &TraceCommand{config: config}
}

// Execute runs the trace and prints the linked records
func (c *TraceCommand) Execute(ctx context.Context) error {
	cfg, logger, err := c.config.loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	app, err := OpenApp(ctx, cfg, logger, c.config.clock())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer app.Close()

	res, err := services.NewTraceService(app.Store).Trace(c.config.Kind, c.config.Term)
	if err != nil {
		return err
	}
	return output.WriteTrace(c.config.out(), res, c.config.Format)
}
