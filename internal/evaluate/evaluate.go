package evaluate

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/edakit/internal/frame"
)

// Classifier scores feature rows with the probability of the positive class.
type Classifier interface {
	PredictProba(x *frame.Table) ([]float64, error)
}

// Splits holds the train and test features and labels.
type Splits struct {
	XTrain, XTest *frame.Table
	YTrain, YTest []int
}

// Options controls Evaluate.
type Options struct {
	// Threshold in [0,1]; scores at or above it predict the positive class.
	Threshold float64
	// IncludeTrain evaluates the train split before the test split.
	IncludeTrain bool
	// Digits used by the classification report text.
	Digits int
}

// DefaultOptions returns threshold 0.5, test split only, 3 digits.
func DefaultOptions() Options {
	return Options{Threshold: 0.5, Digits: 3}
}

// Report is the evaluation of one split at one threshold.
type Report struct {
	Split          string
	Threshold      float64
	Digits         int
	Confusion      *Matrix
	Classification *ClassReport
	ROC            *ROC
	ROCAUC         float64
	PR             *PR
	// ROC point whose threshold is nearest to Threshold.
	TPR, FPR float64
	// Precision-recall point whose threshold is nearest to Threshold.
	Precision, Recall float64
}

// Evaluate scores each split with model and reports metrics at opt.Threshold.
func Evaluate(model Classifier, s Splits, opt Options) ([]*Report, error) {
	if model == nil {
		return nil, fmt.Errorf("evaluate: nil model")
	}
	type split struct {
		name string
		x    *frame.Table
		y    []int
	}
	var splits []split
	if opt.IncludeTrain {
		splits = append(splits, split{"Train", s.XTrain, s.YTrain})
	}
	splits = append(splits, split{"Test", s.XTest, s.YTest})

	out := make([]*Report, 0, len(splits))
	for _, sp := range splits {
		if sp.x == nil {
			return nil, fmt.Errorf("evaluate %s: missing features", strings.ToLower(sp.name))
		}
		proba, err := model.PredictProba(sp.x)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: predict: %w", strings.ToLower(sp.name), err)
		}
		rep, err := EvaluateScores(sp.name, sp.y, proba, opt)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, nil
}

// EvaluateScores builds a Report from precomputed positive-class scores.
func EvaluateScores(name string, yTrue []int, scores []float64, opt Options) (*Report, error) {
	if opt.Threshold < 0 || opt.Threshold > 1 {
		return nil, fmt.Errorf("threshold %v outside [0,1]", opt.Threshold)
	}
	wrap := func(err error) error { return fmt.Errorf("evaluate %s: %w", strings.ToLower(name), err) }
	if err := checkLengths("scores", len(yTrue), len(scores)); err != nil {
		return nil, wrap(err)
	}
	pred := make([]int, len(scores))
	for i, p := range scores {
		if p >= opt.Threshold {
			pred[i] = 1
		}
	}

	rep := &Report{Split: name, Threshold: opt.Threshold, Digits: opt.Digits}
	var err error
	if rep.Confusion, err = ConfusionMatrix(yTrue, pred); err != nil {
		return nil, wrap(err)
	}
	rep.Classification = rep.Confusion.Report()
	if rep.ROC, err = ROCCurve(yTrue, scores); err != nil {
		return nil, wrap(err)
	}
	rep.ROCAUC = rep.ROC.AUC()
	if rep.PR, err = PrecisionRecallCurve(yTrue, scores); err != nil {
		return nil, wrap(err)
	}

	i := nearest(rep.ROC.Thresholds, opt.Threshold)
	rep.TPR, rep.FPR = rep.ROC.TPR[i], rep.ROC.FPR[i]

	// The final (1, 0) point is matched against a threshold of 1.
	prThr := append(append([]float64(nil), rep.PR.Thresholds...), 1)
	j := nearest(prThr, opt.Threshold)
	rep.Precision, rep.Recall = rep.PR.Precision[j], rep.PR.Recall[j]
	return rep, nil
}

const rule = "******************************************************"

// String renders the report as plain text sections.
func (r *Report) String() string {
	digits := r.Digits
	if digits <= 0 {
		digits = 3
	}
	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%s Metrics, threshold = %v\n", r.Split, r.Threshold)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Confusion Matrix")
	b.WriteString(r.Confusion.String())
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Classification report")
	b.WriteString(r.Classification.Format(digits))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "ROC Curve, roc_auc = %.4f\n", r.ROCAUC)
	fmt.Fprintf(&b, "At threshold = %v\n", r.Threshold)
	fmt.Fprintf(&b, "tpr = %.4f, fpr = %.4f\n", r.TPR, r.FPR)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Precision-Recall Curve")
	fmt.Fprintf(&b, "At threshold = %v\n", r.Threshold)
	fmt.Fprintf(&b, "precision = %.4f, recall = %.4f\n", r.Precision, r.Recall)
	fmt.Fprintln(&b, rule)
	return b.String()
}
