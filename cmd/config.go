package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/edakit/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set edakit configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "models_dir: %s\n", cfg.ModelsDir)
		fmt.Fprintf(out, "top_n: %d\n", cfg.TopN)
		fmt.Fprintf(out, "threshold: %.3f\n", cfg.Threshold)
		fmt.Fprintf(out, "corr_fields: %d\n", cfg.CorrFields)
		fmt.Fprintf(out, "digits: %d\n", cfg.Digits)
		fmt.Fprintf(out, "verbose: %t\n", cfg.Verbose)
		fmt.Fprintf(out, "unsigned_ints: %t\n", cfg.UnsignedInts)
		fmt.Fprintf(out, "exact_floats: %t\n", cfg.ExactFloats)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "models_dir":
			next.ModelsDir = val
		case "top_n":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for top_n: %w", err)
			}
			next.TopN = i
		case "threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for threshold: %w", err)
			}
			next.Threshold = f
		case "corr_fields":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for corr_fields: %w", err)
			}
			next.CorrFields = i
		case "digits":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for digits: %w", err)
			}
			next.Digits = i
		case "verbose", "unsigned_ints", "exact_floats":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for %s: %w", key, err)
			}
			switch key {
			case "verbose":
				next.Verbose = b
			case "unsigned_ints":
				next.UnsignedInts = b
			default:
				next.ExactFloats = b
			}
		case "log_level":
			switch l := strings.ToLower(val); l {
			case "debug", "info", "warn", "error":
				next.LogLevel = l
			default:
				return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
			}
		case "log_format":
			switch f := strings.ToLower(val); f {
			case "auto", "json", "console":
				next.LogFormat = f
			default:
				return fmt.Errorf("invalid log_format: %s (use auto|json|console)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
