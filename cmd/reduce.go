package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/edakit/internal/dataprep"
	"github.com/KaramelBytes/edakit/internal/logger"
	"github.com/KaramelBytes/edakit/internal/utils"
)

var (
	redData        datasetFlags
	redCategorical []string
	redUnsigned    bool
	redExactFloats bool
	redOutputPath  string
)

var reduceCmd = &cobra.Command{
	Use:   "reduce <file>",
	Short: "Downcast numeric columns and convert named columns to categorical",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := redData.load(args[0])
		if err != nil {
			return err
		}
		defer t.Release()

		opt := dataprep.Options{
			CategoricalColumns: redCategorical,
			Unsigned:           cfg.UnsignedInts,
			ExactFloats:        cfg.ExactFloats,
			Verbose:            cfg.Verbose,
			Logger:             logger.Get(),
		}
		if cmd.Flags().Changed("unsigned") {
			opt.Unsigned = redUnsigned
		}
		if cmd.Flags().Changed("exact-floats") {
			opt.ExactFloats = redExactFloats
		}
		before := t.MemoryUsage(true)
		out, err := dataprep.Reduce(t, opt)
		if err != nil {
			return err
		}
		defer out.Release()
		after := out.MemoryUsage(true)

		if redOutputPath != "" {
			var buf bytes.Buffer
			if err := out.WriteCSV(&buf); err != nil {
				return err
			}
			if err := utils.EnsureDir(filepath.Dir(redOutputPath)); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(redOutputPath, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", redOutputPath)
		}

		var sb strings.Builder
		sb.WriteString("[SCHEMA]\n")
		for _, line := range out.Schema() {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "\nmemory: %.4f MB -> %.4f MB", utils.MegaBytes(before), utils.MegaBytes(after))
		if pct, ok := utils.PercentDecrease(before, after); ok {
			fmt.Fprintf(&sb, " (%.1f%% decrease)", pct)
		}
		fmt.Fprintln(cmd.OutOrStdout(), sb.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reduceCmd)
	redData.register(reduceCmd.Flags())
	reduceCmd.Flags().StringSliceVarP(&redCategorical, "categorical", "c", nil, "columns to convert to categorical (repeatable)")
	reduceCmd.Flags().BoolVar(&redUnsigned, "unsigned", false, "use unsigned types for integer columns without negatives (overrides config)")
	reduceCmd.Flags().BoolVar(&redExactFloats, "exact-floats", false, "only narrow floats that survive float32 exactly (overrides config)")
	reduceCmd.Flags().StringVarP(&redOutputPath, "output", "o", "", "optional path to write the reduced table as CSV")
}
