package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/baleyard/pkg/interfaces/cli/commands"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func newRootCommand() *cobra.Command {
	var base commands.Config

	root := &cobra.Command{
		Use:           "baleyard",
		Short:         "Bale yard management: truck intake, moisture QA, pyramid storage and FEFO consumption",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			base.Out = cmd.OutOrStdout()
		},
	}
	root.PersistentFlags().StringVarP(&base.ConfigPath, "config", "c", "", "Path to the YAML configuration file")
	root.PersistentFlags().BoolVarP(&base.Verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		serveCommand(&base),
		seedCommand(&base),
		importCommand(&base),
		dashboardCommand(&base),
		reportCommand(&base),
		traceCommand(&base),
		versionCommand(),
	)
	return root
}

func serveCommand(base *commands.Config) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewServeCommand(commands.ServeConfig{Config: *base, Addr: addr}).Execute(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides http.addr")
	return cmd
}

func seedCommand(base *commands.Config) *cobra.Command {
	var seed uint64
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo yard into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewSeedCommand(commands.SeedConfig{Config: *base, Seed: seed}).Execute(cmd.Context())
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 42, "Random seed for generated moisture readings")
	return cmd
}

func importCommand(base *commands.Config) *cobra.Command {
	var suppliers, pyramids string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import suppliers and pyramids from CSV files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewImportCommand(commands.ImportConfig{
				Config:        *base,
				SuppliersFile: suppliers,
				PyramidsFile:  pyramids,
			}).Execute(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&suppliers, "suppliers", "", "Path to suppliers CSV file")
	cmd.Flags().StringVar(&pyramids, "pyramids", "", "Path to pyramids CSV file")
	return cmd
}

func dashboardCommand(base *commands.Config) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show KPIs, occupancy, throughput and active alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewDashboardCommand(commands.DashboardConfig{Config: *base, Format: format}).Execute(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, html")
	return cmd
}

func reportCommand(base *commands.Config) *cobra.Command {
	var format, outputFile string
	cmd := &cobra.Command{
		Use:       "report <bales|trucks|suppliers>",
		Short:     "Export yard records",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{commands.ReportBales, commands.ReportTrucks, commands.ReportSuppliers},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewReportCommand(commands.ReportConfig{
				Config:     *base,
				Kind:       args[0],
				Format:     format,
				OutputFile: outputFile,
			}).Execute(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, csv, xlsx")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the report to this file")
	return cmd
}

func traceCommand(base *commands.Config) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "trace <bale|truck|supplier|lot> <term>",
		Short: "Follow a record through the yard",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewTraceCommand(commands.TraceConfig{
				Config: *base,
				Kind:   args[0],
				Term:   args[1],
				Format: format,
			}).Execute(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "baleyard %s\n", version)
		},
	}
}
