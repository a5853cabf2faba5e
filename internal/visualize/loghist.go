package visualize

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrInvalidBinFactor is returned for a bin factor below 1.
var ErrInvalidBinFactor = errors.New("bin factor must be at least 1")

// fallbackMinExp is used when more than a tenth of the positives sit below
// every candidate exponent.
const fallbackMinExp = -9

// LogHistOptions controls LogHistogram.
type LogHistOptions struct {
	// BinFactor scales the number of bin edges; 1 gives one per order of magnitude.
	BinFactor int
	// MinExp fixes the smallest exponent. Nil selects it from the data.
	MinExp *int
}

// LogHist holds two histograms over the same log-spaced edges: one for
// non-negative values and one for the magnitudes of negative values.
type LogHist struct {
	MinExp   int
	MaxExp   int
	Edges    []float64
	Positive []int
	Negative []int
}

// LogHistogram bins values on a log10 scale. Values are split into
// non-negative and absolute negative parts; an empty part holds a single 1.
// Both parts are clipped below at 10^MinExp so zeros land in the first bin.
// NaN values are ignored.
func LogHistogram(values []float64, opt LogHistOptions) (*LogHist, error) {
	factor := opt.BinFactor
	if factor == 0 {
		factor = 1
	}
	if factor < 1 {
		return nil, ErrInvalidBinFactor
	}

	var pos, neg []float64
	for _, v := range values {
		switch {
		case math.IsNaN(v):
		case v >= 0:
			pos = append(pos, v)
		default:
			neg = append(neg, -v)
		}
	}
	if len(neg) == 0 {
		neg = []float64{1}
	}
	if len(pos) == 0 {
		pos = []float64{1}
	}

	var minExp int
	if opt.MinExp != nil {
		minExp = *opt.MinExp
	} else {
		minExp = selectMinExp(pos)
	}
	floor := math.Pow(10, float64(minExp))
	clip(pos, floor)
	clip(neg, floor)

	maxExp := max(ceilLog10(floats.Max(pos)), ceilLog10(floats.Max(neg)))
	n := (maxExp + 1) * factor
	if n < 2 {
		n = 2
	}
	h := &LogHist{MinExp: minExp, MaxExp: maxExp, Edges: logspace(float64(minExp), float64(maxExp), n)}
	h.Positive = histogram(pos, h.Edges)
	h.Negative = histogram(neg, h.Edges)
	return h, nil
}

// selectMinExp returns -i for the first i in 0..9 where at most a tenth of
// the non-zero values lie in (0, 10^-i].
func selectMinExp(pos []float64) int {
	var nonZero int
	for _, v := range pos {
		if v != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		return 0
	}
	for i := 0; i < 10; i++ {
		limit := math.Pow(10, -float64(i))
		var between int
		for _, v := range pos {
			if v != 0 && v <= limit {
				between++
			}
		}
		if float64(between)/float64(nonZero) <= 0.1 {
			return -i
		}
	}
	return fallbackMinExp
}

func clip(vals []float64, floor float64) {
	for i, v := range vals {
		if v < floor {
			vals[i] = floor
		}
	}
}

func ceilLog10(v float64) int { return int(math.Ceil(math.Log10(v))) }

// logspace returns n points evenly spaced between 10^start and 10^stop.
// Exponents are spaced linearly and raised to base 10 so integral
// exponents give exact powers.
func logspace(start, stop float64, n int) []float64 {
	out := floats.Span(make([]float64, n), start, stop)
	for i, e := range out {
		out[i] = math.Pow(10, e)
	}
	return out
}

// histogram counts values in half-open bins; the last bin is closed.
// Values outside the edges are not counted.
func histogram(vals, edges []float64) []int {
	last := edges[len(edges)-1]
	in := make([]float64, 0, len(vals))
	var top int
	for _, v := range vals {
		switch {
		case v < edges[0] || v > last:
		case v == last:
			top++
		default:
			in = append(in, v)
		}
	}
	sort.Float64s(in)
	weights := stat.Histogram(nil, edges, in, nil)
	counts := make([]int, len(weights))
	for i, w := range weights {
		counts[i] = int(w)
	}
	counts[len(counts)-1] += top
	return counts
}

const barWidth = 40

// String renders both histograms as horizontal bar charts. The negative
// side lists its bins from the largest magnitude down.
func (h *LogHist) String() string {
	peak := 1
	for i := range h.Positive {
		peak = max(peak, h.Positive[i], h.Negative[i])
	}
	var b strings.Builder
	fmt.Fprintln(&b, "Distribution of Negative Values")
	for i := len(h.Negative) - 1; i >= 0; i-- {
		h.bar(&b, "-", i, h.Negative[i], peak)
	}
	b.WriteString("\n")
	fmt.Fprintln(&b, "Distribution of Positive Values")
	for i := range h.Positive {
		h.bar(&b, "", i, h.Positive[i], peak)
	}
	return b.String()
}

func (h *LogHist) bar(b *strings.Builder, sign string, i, count, peak int) {
	label := fmt.Sprintf("%s[%.3g, %.3g)", sign, h.Edges[i], h.Edges[i+1])
	n := int(math.Round(float64(count) * barWidth / float64(peak)))
	fmt.Fprintf(b, "%-24s %6d %s\n", label, count, strings.Repeat("#", n))
}
