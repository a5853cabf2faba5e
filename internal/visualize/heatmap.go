// Package visualize computes chart data for exploratory plots and renders
// it as text: a correlation heat map ordered by a label column, and
// log-scaled histograms of positive and negative values.
package visualize

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/edakit/internal/analysis"
	"github.com/KaramelBytes/edakit/internal/frame"
)

// DefaultQtyFields is the number of columns shown when qtyFields <= 0.
const DefaultQtyFields = 10

// HeatMap is a square correlation grid whose first row and column is the
// label, followed by the columns most correlated with it.
type HeatMap struct {
	Label   string
	Columns []string
	Values  [][]float64
}

// CorrelationHeatMap correlates every numeric column with label and keeps
// the qtyFields columns with the highest correlation, label first.
// Undefined correlations sort last.
func CorrelationHeatMap(t *frame.Table, label string, qtyFields int) (*HeatMap, error) {
	if qtyFields <= 0 {
		qtyFields = DefaultQtyFields
	}
	c, err := t.Column(label)
	if err != nil {
		return nil, err
	}
	if k := c.Kind(); !k.IsNumeric() && k != frame.KindBool {
		return nil, &frame.InvalidColumnKindError{Column: label, Kinds: []frame.Kind{k}, Reason: "label must be numeric"}
	}

	names := []string{label}
	for _, n := range analysis.NumericColumns(t) {
		if n != label {
			names = append(names, n)
		}
	}
	corr, err := analysis.Correlation(t, names...)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	byLabel := corr.Values[0]
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := byLabel[order[a]], byLabel[order[b]]
		if math.IsNaN(rb) {
			return !math.IsNaN(ra)
		}
		return ra > rb
	})
	if len(order) > qtyFields {
		order = order[:qtyFields]
	}

	hm := &HeatMap{Label: label, Columns: make([]string, len(order)), Values: make([][]float64, len(order))}
	for i, oi := range order {
		hm.Columns[i] = names[oi]
		hm.Values[i] = make([]float64, len(order))
		for j, oj := range order {
			hm.Values[i][j] = corr.Values[oi][oj]
		}
	}
	return hm, nil
}

// Markdown renders the grid with two decimals per cell.
func (h *HeatMap) Markdown() string {
	var b strings.Builder
	b.WriteString("| |")
	for _, c := range h.Columns {
		fmt.Fprintf(&b, " %s |", escape(c))
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---:|", len(h.Columns)))
	b.WriteString("\n")
	for i, row := range h.Values {
		fmt.Fprintf(&b, "| %s |", escape(h.Columns[i]))
		for _, v := range row {
			if math.IsNaN(v) {
				b.WriteString(" nan |")
				continue
			}
			fmt.Fprintf(&b, " %.2f |", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func escape(s string) string { return strings.ReplaceAll(s, "|", "\\|") }
