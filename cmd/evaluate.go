package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/edakit/internal/evaluate"
	"github.com/KaramelBytes/edakit/internal/frame"
)

var (
	cmData       datasetFlags
	cmActual     string
	cmPredicted  string
	cmReport     bool
	cmOutputPath string

	evData         datasetFlags
	evLabel        string
	evScore        string
	evSplit        string
	evThreshold    float64
	evIncludeTrain bool
	evDigits       int
	evOutputPath   string
)

var confusionCmd = &cobra.Command{
	Use:   "confusion <file>",
	Short: "Confusion matrix of an actual and a predicted label column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := cmData.load(args[0])
		if err != nil {
			return err
		}
		defer t.Release()
		actual, err := t.Ints(cmActual)
		if err != nil {
			return err
		}
		predicted, err := t.Ints(cmPredicted)
		if err != nil {
			return err
		}
		m, err := evaluate.ConfusionMatrix(actual, predicted)
		if err != nil {
			return err
		}
		text := m.String()
		if cmReport {
			text += "\n" + m.Report().Format(cfg.Digits)
		}
		return emit(cmd, cmOutputPath, text)
	},
}

// scoreColumn is a Classifier whose probabilities are already stored in a column.
type scoreColumn string

func (s scoreColumn) PredictProba(x *frame.Table) ([]float64, error) {
	return x.Float64s(string(s))
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <file>",
	Short: "Evaluate positive-class scores against binary labels at a threshold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := evData.load(args[0])
		if err != nil {
			return err
		}
		defer t.Release()

		opt := evaluate.DefaultOptions()
		opt.Threshold = cfg.Threshold
		if cmd.Flags().Changed("threshold") {
			opt.Threshold = evThreshold
		}
		opt.Digits = cfg.Digits
		if cmd.Flags().Changed("digits") {
			opt.Digits = evDigits
		}
		opt.IncludeTrain = evIncludeTrain

		splits, err := splitScores(t)
		if err != nil {
			return err
		}
		if opt.IncludeTrain && splits.XTrain == nil {
			return fmt.Errorf("--include-train needs --split with rows marked \"train\"")
		}
		reps, err := evaluate.Evaluate(scoreColumn(evScore), splits, opt)
		if err != nil {
			return err
		}
		var sb strings.Builder
		for i, r := range reps {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(r.String())
		}
		return emit(cmd, evOutputPath, sb.String())
	},
}

// splitScores separates labels and scores into train and test sets by the
// --split column ("train" rows are training data). Without --split every
// row is test data.
func splitScores(t *frame.Table) (evaluate.Splits, error) {
	var s evaluate.Splits
	labels, err := t.Ints(evLabel)
	if err != nil {
		return s, err
	}
	scores, err := t.Float64s(evScore)
	if err != nil {
		return s, err
	}
	var split []string
	if evSplit != "" {
		if split, err = t.Strings(evSplit); err != nil {
			return s, err
		}
	}

	var trainScores, testScores []float64
	for i := range labels {
		if split != nil && strings.EqualFold(strings.TrimSpace(split[i]), "train") {
			trainScores = append(trainScores, scores[i])
			s.YTrain = append(s.YTrain, labels[i])
			continue
		}
		testScores = append(testScores, scores[i])
		s.YTest = append(s.YTest, labels[i])
	}
	if len(trainScores) > 0 {
		if s.XTrain, err = frame.New(frame.NewFloat64Column(evScore, trainScores, nil)); err != nil {
			return s, err
		}
	}
	if s.XTest, err = frame.New(frame.NewFloat64Column(evScore, testScores, nil)); err != nil {
		return s, err
	}
	return s, nil
}

func init() {
	rootCmd.AddCommand(confusionCmd)
	cmData.register(confusionCmd.Flags())
	confusionCmd.Flags().StringVar(&cmActual, "actual", "", "column with the actual labels")
	confusionCmd.Flags().StringVar(&cmPredicted, "predicted", "", "column with the predicted labels")
	confusionCmd.Flags().BoolVar(&cmReport, "report", false, "append the classification report")
	confusionCmd.Flags().StringVarP(&cmOutputPath, "output", "o", "", "optional path to write the matrix")
	_ = confusionCmd.MarkFlagRequired("actual")
	_ = confusionCmd.MarkFlagRequired("predicted")

	rootCmd.AddCommand(evaluateCmd)
	evData.register(evaluateCmd.Flags())
	evaluateCmd.Flags().StringVar(&evLabel, "label", "", "column with binary labels (1 is positive)")
	evaluateCmd.Flags().StringVar(&evScore, "score", "", "column with positive-class probabilities")
	evaluateCmd.Flags().StringVar(&evSplit, "split", "", "optional column marking rows as train or test")
	evaluateCmd.Flags().Float64Var(&evThreshold, "threshold", 0.5, "decision threshold in [0,1] (overrides config)")
	evaluateCmd.Flags().BoolVar(&evIncludeTrain, "include-train", false, "also report metrics for the train rows")
	evaluateCmd.Flags().IntVar(&evDigits, "digits", 3, "decimal places in the classification report (overrides config)")
	evaluateCmd.Flags().StringVarP(&evOutputPath, "output", "o", "", "optional path to write the report")
	_ = evaluateCmd.MarkFlagRequired("label")
	_ = evaluateCmd.MarkFlagRequired("score")
}
