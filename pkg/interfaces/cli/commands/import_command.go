package commands

import (
	"context"
	"fmt"

	"github.com/vsinha/baleyard/pkg/application/services"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/infrastructure/repositories/csv"
)

// ImportConfig holds the options of the import command
type ImportConfig struct {
	Config
	SuppliersFile string
	PyramidsFile  string
}

// ImportCommand loads supplier and pyramid master data from CSV files
type ImportCommand struct {
	config ImportConfig
}

// NewImportCommand creates an import command with the given configuration
func NewImportCommand(config ImportConfig) *ImportCommand {
	return &ImportCommand{config: config}
}

// Execute parses every file before writing anything, then adds the records
// through the services so each one is audited
func (c *ImportCommand) Execute(ctx context.Context) error {
	if c.config.SuppliersFile == "" && c.config.PyramidsFile == "" {
		return fmt.Errorf("validation error: at least one of --suppliers or --pyramids is required")
	}

	loader := csv.NewLoader()
	var (
		suppliers []entities.Supplier
		pyramids  []entities.Pyramid
		err       error
	)
	if c.config.SuppliersFile != "" {
		if suppliers, err = loader.LoadSuppliers(c.config.SuppliersFile); err != nil {
			return fmt.Errorf("error loading suppliers: %w", err)
		}
	}
	if c.config.PyramidsFile != "" {
		if pyramids, err = loader.LoadPyramids(c.config.PyramidsFile); err != nil {
			return fmt.Errorf("error loading pyramids: %w", err)
		}
	}

	cfg, logger, err := c.config.loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()
	cfg.Storage.SeedOnEmpty = false

	app, err := OpenApp(ctx, cfg, logger, c.config.clock())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer app.Close()

	supplierSvc := services.NewSupplierService(app.Runtime)
	for _, s := range suppliers {
		if _, err := supplierSvc.AddSupplier(ctx, services.SupplierInput{
			SupplierID:    s.SupplierID,
			Name:          s.Name,
			ContactPerson: s.ContactPerson,
			Email:         s.Email,
			Phone:         s.Phone,
			Address:       s.Address,
			Tier:          s.Tier,
		}, "import"); err != nil {
			return fmt.Errorf("failed to import supplier %s: %w", s.SupplierID, err)
		}
	}

	storage := services.NewStorageService(app.Runtime)
	for _, p := range pyramids {
		if _, err := storage.AddPyramid(ctx, p.PyramidID, p.QualityGrade, p.Zone, p.Origin, p.Shape); err != nil {
			return fmt.Errorf("failed to import pyramid %s: %w", p.PyramidID, err)
		}
		if p.Status != entities.PyramidActive {
			if _, err := storage.SetPyramidStatus(ctx, p.PyramidID, p.Status, "import"); err != nil {
				return fmt.Errorf("failed to set status of pyramid %s: %w", p.PyramidID, err)
			}
		}
	}

	out := c.config.out()
	fmt.Fprintf(out, "✅ Data imported successfully:\n")
	fmt.Fprintf(out, "  Suppliers: %d\n", len(suppliers))
	fmt.Fprintf(out, "  Pyramids: %d\n", len(pyramids))
	return nil
}
