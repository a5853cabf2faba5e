package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/edakit/internal/config"
	"github.com/KaramelBytes/edakit/internal/logger"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	verbose   bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "edakit",
	Short: "edakit: exploratory data analysis helpers for tabular files",
	Long: `edakit reads CSV, TSV and XLSX datasets and runs the routine steps of a
notebook analysis from the shell: shrink column storage, count top values,
summarize and correlate columns, evaluate binary classifiers and keep
numbered model outputs.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.edakit/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "report memory and progress details")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: auto | json | console (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if f.Changed("log-format") && logFormat != "" {
		cfg.LogFormat = logFormat
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	if err := logger.Init(logger.Config{Level: level, Format: cfg.LogFormat}); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		return
	}
	logger.Debug("config loaded", zap.String("models_dir", cfg.ModelsDir), zap.Int("top_n", cfg.TopN), zap.Float64("threshold", cfg.Threshold))
}
