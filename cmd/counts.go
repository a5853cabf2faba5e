package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/edakit/internal/analysis"
)

var (
	vcData       datasetFlags
	vcTopN       int
	vcAll        bool
	vcInclude    []string
	vcExclude    []string
	vcOutputPath string
)

var valueCountsCmd = &cobra.Command{
	Use:   "value-counts <file>",
	Short: "Show the most frequent values of each categorical column side by side",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := vcData.load(args[0])
		if err != nil {
			return err
		}
		defer t.Release()

		opt := analysis.DefaultCountOptions()
		opt.N = cfg.TopN
		if cmd.Flags().Changed("top") {
			opt.N = vcTopN
		}
		opt.OnlyCategories = !vcAll
		opt.Include = vcInclude
		opt.Exclude = vcExclude
		vc, err := analysis.TopValueCounts(t, opt)
		if err != nil {
			return err
		}
		return emit(cmd, vcOutputPath, vc.Markdown())
	},
}

func init() {
	rootCmd.AddCommand(valueCountsCmd)
	vcData.register(valueCountsCmd.Flags())
	valueCountsCmd.Flags().IntVarP(&vcTopN, "top", "n", 5, "values listed per column (overrides config top_n)")
	valueCountsCmd.Flags().BoolVar(&vcAll, "all", false, "include numeric columns, not just text and categorical ones")
	valueCountsCmd.Flags().StringSliceVar(&vcInclude, "include", nil, "only count these columns (repeatable)")
	valueCountsCmd.Flags().StringSliceVar(&vcExclude, "exclude", nil, "skip these columns (repeatable)")
	valueCountsCmd.Flags().StringVarP(&vcOutputPath, "output", "o", "", "optional path to write the table (Markdown)")
}
