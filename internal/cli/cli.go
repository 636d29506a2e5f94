package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ski-spot/internal/config"
	"github.com/pfrederiksen/ski-spot/internal/logger"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// options holds the persistent flags shared by every subcommand
type options struct {
	store   string
	dataDir string
	format  string
	debug   bool
	verbose bool

	cfg *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "skispot",
		Short: "Find the best ski conditions within driving distance",
		Long: `A tool that scrapes ski resort conditions and ranks resorts near a
location by snow quality and driving distance.`,
		SilenceUsage:      true,
		PersistentPreRunE: opts.load,
	}

	cmd.PersistentFlags().StringVar(&opts.store, "store", "", "Storage backend: sqlite or file (env: SKISPOT_STORE)")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Data directory (env: SKISPOT_DATA_DIR)")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging (env: SKISPOT_DEBUG)")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Show extra detail in text output")

	cmd.AddCommand(
		newServeCmd(opts),
		newScrapeCmd(opts),
		newSearchCmd(opts),
		newSeedCmd(opts),
		newResortsCmd(opts),
	)

	return cmd
}

// load reads the config and applies flag overrides
func (o *options) load(cmd *cobra.Command, _ []string) error {
	format := OutputFormat(strings.ToLower(o.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", o.format)
	}
	o.format = string(format)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store = o.store
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = o.dataDir
		if os.Getenv("SKISPOT_DB_PATH") == "" {
			cfg.DBPath = config.DefaultDBPath(cfg.DataDir)
		}
	}
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.SetDefault(logger.NewDefault(cfg.Debug))
	o.cfg = cfg
	return nil
}

func (o *options) outputFormat() OutputFormat {
	return OutputFormat(o.format)
}

// Execute runs the CLI, cancelling in-flight work on SIGINT or SIGTERM
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	_ = logger.Default().Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
