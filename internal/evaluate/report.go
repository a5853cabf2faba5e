package evaluate

import (
	"fmt"
	"strconv"
	"strings"
)

// ClassMetrics holds precision, recall, F1 and support for one label.
type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// ClassReport is a per-class breakdown plus accuracy and averages.
type ClassReport struct {
	Classes     []ClassMetrics
	Accuracy    float64
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	Total       int
}

// ClassificationReport computes precision, recall and F1 per label of the
// sorted label union. Divisions by zero yield 0.
func ClassificationReport(yTrue, yPred []int) (*ClassReport, error) {
	m, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	return m.Report(), nil
}

// Report derives the classification report from the matrix.
func (m *Matrix) Report() *ClassReport {
	n := len(m.Labels)
	rep := &ClassReport{Classes: make([]ClassMetrics, n)}
	correct := 0
	for i := 0; i < n; i++ {
		var support, predicted int
		for j := 0; j < n; j++ {
			support += m.Counts[i][j]
			predicted += m.Counts[j][i]
		}
		tp := m.Counts[i][i]
		correct += tp
		rep.Total += support

		c := ClassMetrics{Label: strconv.Itoa(m.Labels[i]), Support: support}
		c.Precision = ratio(tp, predicted)
		c.Recall = ratio(tp, support)
		if s := c.Precision + c.Recall; s > 0 {
			c.F1 = 2 * c.Precision * c.Recall / s
		}
		rep.Classes[i] = c
	}
	rep.Accuracy = ratio(correct, rep.Total)

	rep.MacroAvg = ClassMetrics{Label: "macro avg", Support: rep.Total}
	rep.WeightedAvg = ClassMetrics{Label: "weighted avg", Support: rep.Total}
	for _, c := range rep.Classes {
		rep.MacroAvg.Precision += c.Precision / float64(n)
		rep.MacroAvg.Recall += c.Recall / float64(n)
		rep.MacroAvg.F1 += c.F1 / float64(n)
		if rep.Total > 0 {
			w := float64(c.Support) / float64(rep.Total)
			rep.WeightedAvg.Precision += c.Precision * w
			rep.WeightedAvg.Recall += c.Recall * w
			rep.WeightedAvg.F1 += c.F1 * w
		}
	}
	return rep
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Format renders the report as an aligned text table with values rounded
// to digits decimal places (3 when digits < 0).
func (r *ClassReport) Format(digits int) string {
	if digits < 0 {
		digits = 3
	}
	width := len("weighted avg")
	for _, c := range r.Classes {
		if len(c.Label) > width {
			width = len(c.Label)
		}
	}
	if digits > width {
		width = digits
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s  %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	row := func(c ClassMetrics) {
		fmt.Fprintf(&b, "%*s  %9.*f %9.*f %9.*f %9d\n", width, c.Label, digits, c.Precision, digits, c.Recall, digits, c.F1, c.Support)
	}
	for _, c := range r.Classes {
		row(c)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s  %9s %9s %9.*f %9d\n", width, "accuracy", "", "", digits, r.Accuracy, r.Total)
	row(r.MacroAvg)
	row(r.WeightedAvg)
	return b.String()
}

// String renders the report with three decimal places.
func (r *ClassReport) String() string { return r.Format(3) }
