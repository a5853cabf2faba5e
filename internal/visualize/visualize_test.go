package visualize

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/edakit/internal/frame"
)

func heatTable() *frame.Table {
	return frame.MustNew(
		frame.NewInt64Column("y", []int64{1, 2, 3, 4, 5}, nil),
		frame.NewFloat64Column("a", []float64{2, 4, 6, 8, 10}, nil),
		frame.NewFloat64Column("b", []float64{5, 4, 3, 2, 1}, nil),
		frame.NewInt64Column("c", []int64{1, 3, 2, 5, 4}, nil),
		frame.NewStringColumn("s", []string{"p", "q", "r", "s", "t"}, nil),
		frame.NewInt64Column("k", []int64{1, 1, 1, 1, 1}, nil),
	)
}

func TestCorrelationHeatMapOrder(t *testing.T) {
	hm, err := CorrelationHeatMap(heatTable(), "y", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "a", "c", "b", "k"}, hm.Columns)
	assert.InDelta(t, 1.0, hm.Values[0][0], 1e-12)
	assert.InDelta(t, 0.8, hm.Values[0][2], 1e-9)
	assert.InDelta(t, -1.0, hm.Values[0][3], 1e-9)
	assert.True(t, math.IsNaN(hm.Values[0][4]))
	assert.InDelta(t, hm.Values[2][3], hm.Values[3][2], 1e-12)
}

func TestCorrelationHeatMapTruncates(t *testing.T) {
	hm, err := CorrelationHeatMap(heatTable(), "y", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "a", "c"}, hm.Columns)
	require.Len(t, hm.Values, 3)
	assert.Len(t, hm.Values[0], 3)

	md := hm.Markdown()
	lines := strings.Split(strings.TrimSpace(md), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "| | y | a | c |", lines[0])
	assert.Equal(t, "|---|---:|---:|---:|", lines[1])
	assert.Contains(t, lines[2], "| y | 1.00 |")
	assert.Contains(t, lines[4], "0.80")
}

func TestCorrelationHeatMapNaNRendering(t *testing.T) {
	hm, err := CorrelationHeatMap(heatTable(), "y", 10)
	require.NoError(t, err)
	assert.Contains(t, hm.Markdown(), " nan |")
}

func TestCorrelationHeatMapErrors(t *testing.T) {
	_, err := CorrelationHeatMap(heatTable(), "missing", 0)
	assert.ErrorIs(t, err, frame.ErrUnknownColumn)

	_, err = CorrelationHeatMap(heatTable(), "s", 0)
	assert.ErrorIs(t, err, frame.ErrInvalidColumnKind)
}

func TestLogHistogramAutoMinExp(t *testing.T) {
	h, err := LogHistogram([]float64{0.5, 5, 50, -3, -30, 0, math.NaN()}, LogHistOptions{})
	require.NoError(t, err)
	assert.Equal(t, -1, h.MinExp)
	assert.Equal(t, 2, h.MaxExp)
	require.Len(t, h.Edges, 3)
	assert.InDelta(t, 0.1, h.Edges[0], 1e-12)
	assert.InDelta(t, math.Sqrt(10), h.Edges[1], 1e-9)
	assert.InDelta(t, 100, h.Edges[2], 1e-9)
	assert.Equal(t, []int{2, 2}, h.Positive)
	assert.Equal(t, []int{1, 1}, h.Negative)
}

func TestLogHistogramBinFactor(t *testing.T) {
	h, err := LogHistogram([]float64{0.5, 5, 50, -3, -30, 0}, LogHistOptions{BinFactor: 2})
	require.NoError(t, err)
	assert.Len(t, h.Edges, 6)
	assert.Len(t, h.Positive, 5)
	assert.Equal(t, 4, sum(h.Positive))
	assert.Equal(t, 2, sum(h.Negative))
}

func TestLogHistogramFixedMinExp(t *testing.T) {
	zero := 0
	h, err := LogHistogram([]float64{0.5, 5, 50, -3, -30, 0}, LogHistOptions{MinExp: &zero})
	require.NoError(t, err)
	assert.Equal(t, 0, h.MinExp)
	assert.Equal(t, []float64{1, 10, 100}, h.Edges)
	assert.Equal(t, []int{3, 1}, h.Positive)
	assert.Equal(t, []int{1, 1}, h.Negative)
}

func TestLogHistogramValuesOnEdges(t *testing.T) {
	zero := 0
	h, err := LogHistogram([]float64{1, 10, 100, 100}, LogHistOptions{MinExp: &zero})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 10, 100}, h.Edges)
	// Interior edges open a bin; the top edge closes the last one.
	assert.Equal(t, []int{1, 3}, h.Positive)
}

func TestLogHistogramOneSided(t *testing.T) {
	h, err := LogHistogram([]float64{20, 50}, LogHistOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, h.MinExp)
	assert.Equal(t, []int{0, 2}, h.Positive)
	assert.Equal(t, []int{1, 0}, h.Negative)

	h, err = LogHistogram([]float64{0, 0, -2}, LogHistOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, h.MinExp)
	assert.Equal(t, 1, h.MaxExp)
	assert.Equal(t, []int{2}, h.Positive)
	assert.Equal(t, []int{1}, h.Negative)
}

func TestLogHistogramTinyValues(t *testing.T) {
	h, err := LogHistogram([]float64{1e-12, 2e-12}, LogHistOptions{})
	require.NoError(t, err)
	assert.Equal(t, fallbackMinExp, h.MinExp)
}

func TestLogHistogramInvalidFactor(t *testing.T) {
	_, err := LogHistogram([]float64{1}, LogHistOptions{BinFactor: -1})
	assert.ErrorIs(t, err, ErrInvalidBinFactor)
}

func TestLogHistogramString(t *testing.T) {
	h, err := LogHistogram([]float64{0.5, 5, 50, -3, -30, 0}, LogHistOptions{})
	require.NoError(t, err)
	s := h.String()
	assert.Contains(t, s, "Distribution of Negative Values")
	assert.Contains(t, s, "Distribution of Positive Values")
	assert.Contains(t, s, strings.Repeat("#", barWidth))
	assert.Less(t, strings.Index(s, "Negative"), strings.Index(s, "Positive"))
}

func sum(v []int) int {
	var n int
	for _, x := range v {
		n += x
	}
	return n
}
