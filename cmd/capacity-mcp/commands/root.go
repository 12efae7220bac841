package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"capacity-mcp/internal/backend"
	"capacity-mcp/internal/capacity"
	"capacity-mcp/internal/config"
	"capacity-mcp/internal/logging"
	"capacity-mcp/internal/mcp"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose     bool
	productFile string
	sizeFile    string

	cfg    *config.AppConfig
	loader *backend.Loader
)

var rootCmd = &cobra.Command{
	Use:   "capacity-mcp",
	Short: "capacity-mcp serves daily production capacity as an MCP server",
	Long: `An MCP server over the product and product+size capacity tables of the backend.
It turns daily capacity changes into running totals, enforces the limit of five
selected combinations and ranks the selected series per date.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		if productFile != "" {
			cfg.ProductCapacityFile = productFile
		}
		if sizeFile != "" {
			cfg.SizeCapacityFile = sizeFile
		}

		loader = backend.NewLoader(newSource(cfg), capacity.NewEngine())

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Bool("localFiles", cfg.UseFiles()).
			Msg("capacity-mcp starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return mcp.NewServer(cfg, loader).Start(ctx, Version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&productFile, "product-file", "", "read the product-only dataset from a .json, .csv or .xlsx file")
	rootCmd.PersistentFlags().StringVar(&sizeFile, "size-file", "", "read the product+size dataset from a .json, .csv or .xlsx file")
}

func newSource(cfg *config.AppConfig) backend.Source {
	if cfg.UseFiles() {
		return backend.NewFileSource(cfg.ProductCapacityFile, cfg.SizeCapacityFile)
	}
	if cfg.ProductCapacityFile != "" || cfg.SizeCapacityFile != "" {
		log.Warn().Msg("Only one dataset file configured, falling back to the backend")
	}
	return backend.NewHTTPSource(cfg.Backend)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
