// Command fairvalue values companies with a blended DCF and comparables fair value model.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/fairvalue/internal/config"
	"github.com/seenimoa/fairvalue/internal/logging"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger
var (
	cfg *config.Config
	log *zap.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fairvalue",
	Short: "fairvalue — DCF and comparables fair value engine",
	Long: `fairvalue values a company from a handful of financial inputs.
It blends a 10-year discounted cash flow with EV/EBITDA and P/E
comparables, then reports key ratios, an Altman Z-score proxy, a
sensitivity grid and a Monte Carlo range around the fair value.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		log, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(valueCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(sensitivityCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(peersCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "fairvalue %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show effective configuration and where each setting came from",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════")
		fmt.Fprintln(out, "  fairvalue — Status")
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		configFile := cfg.File
		if configFile == "" {
			configFile = "(none, defaults + environment)"
		}
		fmt.Fprintf(out, "  Config file:   %s\n", configFile)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Settings:")
		for _, s := range config.CheckSettings(cfg) {
			source := string(s.Source)
			if s.Source == config.SourceEnv {
				source = s.EnvVar
			}
			fmt.Fprintf(out, "    %-30s %-28s [%s]\n", s.Key, s.Value, source)
		}
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════")
		return nil
	},
}
