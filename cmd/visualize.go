package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/edakit/internal/visualize"
)

var (
	corrData       datasetFlags
	corrLabel      string
	corrFields     int
	corrOutputPath string

	lhData       datasetFlags
	lhColumn     string
	lhBinFactor  int
	lhMinExp     int
	lhOutputPath string
)

var corrCmd = &cobra.Command{
	Use:   "corr <file>",
	Short: "Correlation grid of the numeric columns most correlated with a label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := corrData.load(args[0])
		if err != nil {
			return err
		}
		defer t.Release()
		n := cfg.CorrFields
		if cmd.Flags().Changed("fields") {
			n = corrFields
		}
		hm, err := visualize.CorrelationHeatMap(t, corrLabel, n)
		if err != nil {
			return err
		}
		return emit(cmd, corrOutputPath, hm.Markdown())
	},
}

var logHistCmd = &cobra.Command{
	Use:   "loghist <file>",
	Short: "Log-scaled histograms of the positive and negative values of a column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := lhData.load(args[0])
		if err != nil {
			return err
		}
		defer t.Release()
		vals, err := t.Float64s(lhColumn)
		if err != nil {
			return err
		}
		opt := visualize.LogHistOptions{BinFactor: lhBinFactor}
		if cmd.Flags().Changed("min-exp") {
			minExp := lhMinExp
			opt.MinExp = &minExp
		}
		h, err := visualize.LogHistogram(vals, opt)
		if err != nil {
			return err
		}
		return emit(cmd, lhOutputPath, h.String())
	},
}

func init() {
	rootCmd.AddCommand(corrCmd)
	corrData.register(corrCmd.Flags())
	corrCmd.Flags().StringVar(&corrLabel, "label", "", "numeric label column placed first")
	corrCmd.Flags().IntVar(&corrFields, "fields", 10, "number of columns kept, label included (overrides config corr_fields)")
	corrCmd.Flags().StringVarP(&corrOutputPath, "output", "o", "", "optional path to write the grid (Markdown)")
	_ = corrCmd.MarkFlagRequired("label")

	rootCmd.AddCommand(logHistCmd)
	lhData.register(logHistCmd.Flags())
	logHistCmd.Flags().StringVar(&lhColumn, "column", "", "numeric column to bin")
	logHistCmd.Flags().IntVar(&lhBinFactor, "bin-factor", 1, "bin edges per order of magnitude")
	logHistCmd.Flags().IntVar(&lhMinExp, "min-exp", 0, "smallest power of ten shown (chosen from the data if omitted)")
	logHistCmd.Flags().StringVarP(&lhOutputPath, "output", "o", "", "optional path to write the chart")
	_ = logHistCmd.MarkFlagRequired("column")
}
