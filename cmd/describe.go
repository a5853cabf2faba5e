package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/edakit/internal/analysis"
	"github.com/KaramelBytes/edakit/internal/utils"
)

var (
	descData       datasetFlags
	descOutputPath string
	descOutputDir  string
	descSampleRows int
	descTopValues  int
	descGroupBy    []string
	descCorr       bool
	descOutliers   bool
	descOutlierThr float64
	descQuiet      bool
)

var describeCmd = &cobra.Command{
	Use:   "describe <files...>",
	Short: "Summarize the columns of one or more CSV/TSV/XLSX files as Markdown",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		if descOutputPath != "" && len(files) > 1 {
			return fmt.Errorf("--output takes a single input; use --output-dir for %d files", len(files))
		}

		opt := analysis.DefaultOptions()
		opt.SampleRows = descSampleRows
		if descTopValues > 0 {
			opt.TopValues = descTopValues
		}
		opt.GroupBy = descGroupBy
		opt.Correlations = descCorr
		opt.Outliers = descOutliers
		if descOutlierThr > 0 {
			opt.OutlierThreshold = descOutlierThr
		}

		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if total > 1 && !descQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := descData.load(path)
			if err != nil {
				return err
			}
			opt.Name = filepath.Base(path)
			rep, err := analysis.Describe(t, opt)
			t.Release()
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			md := rep.Markdown()

			switch {
			case descOutputDir != "":
				if err := utils.EnsureDir(descOutputDir); err != nil {
					return err
				}
				outFile := summaryPath(descOutputDir, path)
				if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
					return fmt.Errorf("write summary: %w", err)
				}
				if !descQuiet {
					fmt.Fprintf(out, "✓ Wrote summary to %s\n", outFile)
				}
			case descOutputPath != "":
				if err := emit(cmd, descOutputPath, md); err != nil {
					return err
				}
			default:
				fmt.Fprintln(out, md)
			}
		}
		return nil
	},
}

// summaryPath returns <dir>/<base>.summary.md, adding __2, __3, ... when a
// summary with that name already exists.
func summaryPath(dir, input string) string {
	base := filepath.Base(input)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	if descData.sheetName != "" {
		safe += "__sheet-" + slug(descData.sheetName)
	}
	outFile := filepath.Join(dir, safe+".summary.md")
	if _, err := os.Stat(outFile); err != nil {
		return outFile
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d.summary.md", safe, idx))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '_' {
			b.WriteRune('-')
		}
	}
	if ss := strings.Trim(b.String(), "-"); ss != "" {
		return ss
	}
	return "sheet"
}

func init() {
	rootCmd.AddCommand(describeCmd)
	descData.register(describeCmd.Flags())
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	describeCmd.Flags().StringVar(&descOutputDir, "output-dir", "", "directory for <name>.summary.md files (one per input)")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of sample rows to include")
	describeCmd.Flags().IntVar(&descTopValues, "top-values", 8, "top values listed per categorical column")
	describeCmd.Flags().StringSliceVar(&descGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	describeCmd.Flags().BoolVar(&descCorr, "correlations", true, "compute Pearson correlations among numeric columns")
	describeCmd.Flags().BoolVar(&descOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	describeCmd.Flags().Float64Var(&descOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	describeCmd.Flags().BoolVarP(&descQuiet, "quiet", "q", false, "suppress progress lines")
}
