package cmd

import (
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/edakit/internal/experiment"
	"github.com/KaramelBytes/edakit/internal/logger"
)

var (
	omData     datasetFlags
	omDir      string
	omNotebook string
	omNote     string

	runsDir string
)

var outputModelCmd = &cobra.Command{
	Use:   "output-model <model.json> <predictions>",
	Short: "Save a model, its predictions and the notebook under the next free number",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read model: %w", err)
		}
		var model any
		if err := json.Unmarshal(raw, &model); err != nil {
			return fmt.Errorf("parse model: %w", err)
		}
		preds, err := omData.load(args[1])
		if err != nil {
			return err
		}
		defer preds.Release()

		run, err := experiment.OutputModel(modelsDir(omDir), model, preds, experiment.Options{
			NotebookPath: omNotebook,
			Note:         omNote,
			Logger:       logger.Get(),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved run %03d (%s): %s\n", run.Index, run.ID, strings.Join(run.Files(), ", "))
		return nil
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved model outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := modelsDir(runsDir)
		runs, err := experiment.ListRuns(dir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintf(out, "No runs in %s\n", dir)
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(out, "%03d  %s  %s  %s", r.Index, r.CreatedAt.Format("2006-01-02 15:04"), r.ID, strings.Join(r.Files(), ", "))
			if r.Note != "" {
				fmt.Fprintf(out, "  (%s)", r.Note)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

// modelsDir prefers the flag value over the configured models_dir.
func modelsDir(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.ModelsDir
}

func init() {
	rootCmd.AddCommand(outputModelCmd)
	omData.register(outputModelCmd.Flags())
	outputModelCmd.Flags().StringVar(&omDir, "dir", "", "output directory (default: config models_dir)")
	outputModelCmd.Flags().StringVar(&omNotebook, "notebook", "", "notebook file to copy next to the model")
	outputModelCmd.Flags().StringVar(&omNote, "note", "", "note stored with the run")

	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().StringVar(&runsDir, "dir", "", "models directory (default: config models_dir)")
}
