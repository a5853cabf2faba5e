package evaluate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ROC is a receiver operating characteristic curve. Thresholds decrease;
// the first threshold is +Inf so the curve starts at (0, 0).
type ROC struct {
	FPR        []float64
	TPR        []float64
	Thresholds []float64
}

// PR is a precision-recall curve. Thresholds increase and have one entry
// fewer than Precision and Recall, whose last point is (1, 0).
type PR struct {
	Precision  []float64
	Recall     []float64
	Thresholds []float64
}

// binaryCurve returns cumulative false and true positive counts at each
// distinct score, from the highest score down. Label 1 is the positive
// class; tied scores share one point.
func binaryCurve(yTrue []int, scores []float64) (fps, tps, thresholds []float64, err error) {
	if err := checkLengths("scores", len(yTrue), len(scores)); err != nil {
		return nil, nil, nil, err
	}
	y := make([]float64, len(scores))
	classes := make([]bool, len(scores))
	var nPos, nNeg float64
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, nil, nil, fmt.Errorf("score %d is not finite", i)
		}
		y[i] = s
		classes[i] = yTrue[i] == 1
		if classes[i] {
			nPos++
		} else {
			nNeg++
		}
	}
	stat.SortWeightedLabeled(y, classes, nil)
	// cut ascends over the distinct scores and ends with +Inf; rates are for
	// scores >= cut[i].
	tpr, fpr, cut := stat.ROC(nil, y, classes, nil)
	for i := len(cut) - 2; i >= 0; i-- {
		tps = append(tps, rateCount(tpr[i], nPos))
		fps = append(fps, rateCount(fpr[i], nNeg))
		thresholds = append(thresholds, cut[i])
	}
	return fps, tps, thresholds, nil
}

// rateCount turns a rate over n samples back into a whole count.
func rateCount(rate, n float64) float64 {
	if n == 0 {
		return 0
	}
	return math.Round(rate * n)
}

// ROCCurve computes the ROC curve for binary labels (1 is positive). Points
// that are collinear with their neighbours are dropped. Both classes must
// be present.
func ROCCurve(yTrue []int, scores []float64) (*ROC, error) {
	fps, tps, thr, err := binaryCurve(yTrue, scores)
	if err != nil {
		return nil, err
	}
	if tps[len(tps)-1] == 0 || fps[len(fps)-1] == 0 {
		return nil, ErrSingleClass
	}

	// Keep the end points and every point where the slope changes.
	if len(fps) > 2 {
		keep := []int{0}
		for i := 1; i < len(fps)-1; i++ {
			d2f := fps[i+1] - 2*fps[i] + fps[i-1]
			d2t := tps[i+1] - 2*tps[i] + tps[i-1]
			if d2f != 0 || d2t != 0 {
				keep = append(keep, i)
			}
		}
		keep = append(keep, len(fps)-1)
		fps, tps, thr = pick(fps, keep), pick(tps, keep), pick(thr, keep)
	}

	fps = append([]float64{0}, fps...)
	tps = append([]float64{0}, tps...)
	thr = append([]float64{math.Inf(1)}, thr...)

	roc := &ROC{FPR: make([]float64, len(fps)), TPR: make([]float64, len(tps)), Thresholds: thr}
	fmax, tmax := fps[len(fps)-1], tps[len(tps)-1]
	for i := range fps {
		roc.FPR[i] = fps[i] / fmax
		roc.TPR[i] = tps[i] / tmax
	}
	return roc, nil
}

func pick(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}

// AUC integrates the curve with the trapezoidal rule. FPR never decreases
// along the curve, and vertical steps add no area.
func (r *ROC) AUC() float64 {
	if len(r.FPR) < 2 {
		return 0
	}
	return integrate.Trapezoidal(r.FPR, r.TPR)
}

// ROCAUC is the area under the ROC curve of scores against binary labels.
func ROCAUC(yTrue []int, scores []float64) (float64, error) {
	roc, err := ROCCurve(yTrue, scores)
	if err != nil {
		return 0, err
	}
	return roc.AUC(), nil
}

// PrecisionRecallCurve computes precision and recall at every distinct
// score. At least one positive label (1) is required.
func PrecisionRecallCurve(yTrue []int, scores []float64) (*PR, error) {
	fps, tps, thr, err := binaryCurve(yTrue, scores)
	if err != nil {
		return nil, err
	}
	total := tps[len(tps)-1]
	if total == 0 {
		return nil, fmt.Errorf("precision-recall curve: no positive samples: %w", ErrSingleClass)
	}
	n := len(tps)
	pr := &PR{
		Precision:  make([]float64, 0, n+1),
		Recall:     make([]float64, 0, n+1),
		Thresholds: make([]float64, 0, n),
	}
	for i := n - 1; i >= 0; i-- {
		var p float64
		if d := tps[i] + fps[i]; d > 0 {
			p = tps[i] / d
		}
		pr.Precision = append(pr.Precision, p)
		pr.Recall = append(pr.Recall, tps[i]/total)
		pr.Thresholds = append(pr.Thresholds, thr[i])
	}
	pr.Precision = append(pr.Precision, 1)
	pr.Recall = append(pr.Recall, 0)
	return pr, nil
}

// nearest returns the index of the first value closest to target.
func nearest(vals []float64, target float64) int {
	best, bestD := 0, math.Inf(1)
	for i, v := range vals {
		if d := math.Abs(v - target); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}
