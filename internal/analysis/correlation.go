package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/edakit/internal/frame"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// Pearson computes the correlation of x and y over the rows where both are
// non-NaN. The result is NaN when fewer than two rows remain or either side
// is constant.
func Pearson(x, y []float64) float64 {
	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 || floats.Min(xs) == floats.Max(xs) || floats.Min(ys) == floats.Max(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return r
	}
	return math.Max(-1, math.Min(1, r))
}

// NumericColumns returns the names of integer, unsigned, float and bool columns in table order.
func NumericColumns(t *frame.Table) []string {
	var out []string
	for _, c := range t.Columns() {
		if k := c.Kind(); k.IsNumeric() || k == frame.KindBool {
			out = append(out, c.Name())
		}
	}
	return out
}

// Correlation computes pairwise-complete Pearson correlations between the
// named columns, or every numeric column when names is empty. The diagonal
// is 1 for columns with at least two distinct values.
func Correlation(t *frame.Table, names ...string) (*CorrMatrix, error) {
	if len(names) == 0 {
		names = NumericColumns(t)
	}
	vals := make([][]float64, len(names))
	for i, name := range names {
		v, err := t.Float64s(name)
		if err != nil {
			return nil, fmt.Errorf("correlation: %w", err)
		}
		vals[i] = v
	}
	n := len(names)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			r := Pearson(vals[a], vals[b])
			if a == b && !math.IsNaN(r) {
				r = 1
			}
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return &CorrMatrix{Columns: append([]string(nil), names...), Values: mat}, nil
}

// At returns the coefficient for a pair of column names.
func (m *CorrMatrix) At(a, b string) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return m.Values[i][j], true
}

func (m *CorrMatrix) index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Pairs lists the upper triangle, skipping undefined coefficients.
func (m *CorrMatrix) Pairs() []PairCorr {
	var out []PairCorr
	for i := 0; i < len(m.Columns); i++ {
		for j := i + 1; j < len(m.Columns); j++ {
			if r := m.Values[i][j]; !math.IsNaN(r) {
				out = append(out, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
			}
		}
	}
	return out
}
