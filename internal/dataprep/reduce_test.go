package dataprep

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KaramelBytes/edakit/internal/frame"
)

func sampleTable() *frame.Table {
	return frame.MustNew(
		frame.NewInt64Column("ints", []int64{1, 2, 3, 4}, nil),
		frame.NewFloat64Column("floats", []float64{.1, .2, .3, .4}, nil),
		frame.NewStringColumn("strings", []string{"a", "b", "c", "d"}, nil),
	)
}

func typeOf(t *testing.T, tbl *frame.Table, name string) arrow.DataType {
	t.Helper()
	c, err := tbl.Column(name)
	require.NoError(t, err)
	return c.DataType()
}

func TestReduceDefaultLeavesStrings(t *testing.T) {
	out, err := Reduce(sampleTable(), Options{})
	require.NoError(t, err)

	assert.Equal(t, arrow.INT8, typeOf(t, out, "ints").ID())
	assert.Equal(t, arrow.FLOAT32, typeOf(t, out, "floats").ID())
	assert.Equal(t, arrow.STRING, typeOf(t, out, "strings").ID())
	assert.Equal(t, []string{"ints", "floats", "strings"}, out.Names())
	assert.Equal(t, 4, out.Len())
}

func TestReduceCategorical(t *testing.T) {
	out, err := Reduce(sampleTable(), Options{CategoricalColumns: []string{"strings"}})
	require.NoError(t, err)

	assert.Equal(t, arrow.INT8, typeOf(t, out, "ints").ID())
	assert.Equal(t, arrow.FLOAT32, typeOf(t, out, "floats").ID())
	c, err := out.Column("strings")
	require.NoError(t, err)
	assert.Equal(t, frame.KindCategorical, c.Kind())
	assert.Len(t, c.Categories(), 4)
	for i, want := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, want, c.StringAt(i))
	}
}

func TestReduceStringifiesNumericCategoricals(t *testing.T) {
	tbl := frame.MustNew(
		frame.NewInt64Column("zip", []int64{10001, 94105, 10001}, nil),
		frame.NewFloat64Column("score", []float64{1, 2.5, 1}, nil),
	)
	out, err := Reduce(tbl, Options{CategoricalColumns: []string{"zip", "score"}})
	require.NoError(t, err)

	zip, _ := out.Column("zip")
	assert.Equal(t, []string{"10001", "94105"}, zip.Categories())
	assert.Equal(t, []int{0, 1, 0}, zip.Codes())

	score, _ := out.Column("score")
	assert.Equal(t, []string{"1.0", "2.5"}, score.Categories())
}

func TestReduceEmptyTable(t *testing.T) {
	tbl := frame.MustNew(frame.NewInt64Column("n", nil, nil))
	out, err := Reduce(tbl, Options{Verbose: true})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, arrow.INT8, typeOf(t, out, "n").ID())
}

func TestReduceUnknownColumn(t *testing.T) {
	out, err := Reduce(sampleTable(), Options{CategoricalColumns: []string{"missing"}})
	require.ErrorIs(t, err, ErrUnknownColumn)
	assert.Nil(t, out)

	var uc *frame.UnknownColumnError
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, "missing", uc.Name)
}

func TestReduceIntegerLadder(t *testing.T) {
	cases := []struct {
		name     string
		vals     []int64
		unsigned bool
		want     arrow.Type
	}{
		{"int8 bounds", []int64{-128, 127}, false, arrow.INT8},
		{"int16", []int64{-129, 5}, false, arrow.INT16},
		{"int32", []int64{0, math.MaxInt16 + 1}, false, arrow.INT32},
		{"int64", []int64{math.MinInt32 - 1, 0}, false, arrow.INT64},
		{"uint8 when unsigned", []int64{0, 255}, true, arrow.UINT8},
		{"uint16 when unsigned", []int64{0, 256}, true, arrow.UINT16},
		{"negatives stay signed", []int64{-1, 200}, true, arrow.INT16},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tbl := frame.MustNew(frame.NewInt64Column("x", c.vals, nil))
			out, err := Reduce(tbl, Options{Unsigned: c.unsigned})
			require.NoError(t, err)
			col, _ := out.Column("x")
			assert.Equal(t, c.want, col.DataType().ID())
			for i, want := range c.vals {
				got, ok := col.Float64At(i)
				require.True(t, ok)
				assert.Equal(t, float64(want), got)
			}
		})
	}
}

func TestReducePreservesNulls(t *testing.T) {
	tbl := frame.MustNew(
		frame.NewInt64Column("i", []int64{7, 0, -3}, []bool{true, false, true}),
		frame.NewFloat64Column("f", []float64{1.5, 0, math.NaN()}, []bool{true, false, true}),
	)
	out, err := Reduce(tbl, Options{})
	require.NoError(t, err)

	i, _ := out.Column("i")
	assert.Equal(t, arrow.INT8, i.DataType().ID())
	assert.True(t, i.IsNull(1))
	assert.Equal(t, int8(-3), i.Value(2))

	f, _ := out.Column("f")
	assert.Equal(t, arrow.FLOAT32, f.DataType().ID())
	assert.True(t, f.IsNull(1))
	v, ok := f.Float64At(2)
	assert.True(t, ok)
	assert.True(t, math.IsNaN(v))
}

func TestReduceFloatPrecision(t *testing.T) {
	wide := frame.MustNew(frame.NewFloat64Column("f", []float64{1e300, 1}, nil))
	out, err := Reduce(wide, Options{})
	require.NoError(t, err)
	assert.Equal(t, arrow.FLOAT64, typeOf(t, out, "f").ID())

	tbl := sampleTable()
	out, err = Reduce(tbl, Options{ExactFloats: true})
	require.NoError(t, err)
	assert.Equal(t, arrow.FLOAT64, typeOf(t, out, "floats").ID())

	halves := frame.MustNew(frame.NewFloat64Column("f", []float64{0.5, 0.25, -2}, nil))
	out, err = Reduce(halves, Options{ExactFloats: true})
	require.NoError(t, err)
	assert.Equal(t, arrow.FLOAT32, typeOf(t, out, "f").ID())
}

func TestFitsFloat32(t *testing.T) {
	assert.True(t, FitsFloat32(0.1, false))
	assert.False(t, FitsFloat32(0.1, true))
	assert.True(t, FitsFloat32(math.Inf(-1), true))
	assert.True(t, FitsFloat32(math.NaN(), false))
	assert.False(t, FitsFloat32(1e39, false))
	assert.True(t, FitsFloat32(1e-45, false))
	assert.False(t, FitsFloat32(1e-45, true))
	assert.True(t, FitsFloat32(0, false))
	assert.False(t, FitsFloat32(16777217, false))
	assert.True(t, FitsFloat32(16777216, false))
	assert.False(t, FitsFloat32(123456789.123, false))
}

func TestReduceKeepsLargeFloatsWide(t *testing.T) {
	tbl := frame.MustNew(frame.NewFloat64Column("f", []float64{16777217, 123456789.123, 1}, nil))
	out, err := Reduce(tbl, Options{})
	require.NoError(t, err)
	assert.Equal(t, arrow.FLOAT64, typeOf(t, out, "f").ID())

	col, err := out.Column("f")
	require.NoError(t, err)
	for i, want := range []float64{16777217, 123456789.123, 1} {
		got, ok := col.Float64At(i)
		require.True(t, ok)
		assert.Equal(t, want, got, "row %d", i)
	}
}

func TestReduceFloatRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		vals []float64
		want arrow.Type
	}{
		{"small decimals", []float64{0.1, 0.2, 0.3, -0.7}, arrow.FLOAT32},
		{"prices", []float64{19.99, 1234.5, 99999.75}, arrow.FLOAT32},
		{"below 2^24", []float64{16777215, -16777215, 8388607.5}, arrow.FLOAT32},
		{"amounts above 2^24", []float64{16777217, 2.5}, arrow.FLOAT64},
		{"high precision", []float64{3.14159265358979, 2.718281828459045}, arrow.FLOAT32},
		{"large with fraction", []float64{1e9 + 0.123, 7}, arrow.FLOAT64},
		{"ids", []float64{123456789, 4}, arrow.FLOAT64},
		{"special", []float64{math.Inf(1), math.Inf(-1), 42}, arrow.FLOAT32},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tbl := frame.MustNew(frame.NewFloat64Column("f", tc.vals, nil))
			out, err := Reduce(tbl, Options{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, typeOf(t, out, "f").ID())

			col, err := out.Column("f")
			require.NoError(t, err)
			for i, orig := range tc.vals {
				got, ok := col.Float64At(i)
				require.True(t, ok)
				if math.IsInf(orig, 0) {
					assert.Equal(t, orig, got, "row %d", i)
					continue
				}
				assert.LessOrEqual(t, math.Abs(got-orig), Float32Tolerance, "row %d", i)
			}
		})
	}
}

func TestReduceIdempotent(t *testing.T) {
	opt := Options{CategoricalColumns: []string{"strings"}}
	once, err := Reduce(sampleTable(), opt)
	require.NoError(t, err)
	twice, err := Reduce(once, opt)
	require.NoError(t, err)

	assert.Equal(t, once.Schema(), twice.Schema())
	for _, name := range once.Names() {
		a, _ := once.Strings(name)
		b, _ := twice.Strings(name)
		assert.Equal(t, a, b, name)
	}
}

func TestReduceLeavesOtherKinds(t *testing.T) {
	tbl := frame.MustNew(frame.NewBoolColumn("flag", []bool{true, false}, nil))
	out, err := Reduce(tbl, Options{})
	require.NoError(t, err)
	assert.Equal(t, arrow.BOOL, typeOf(t, out, "flag").ID())
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	tbl := sampleTable()
	_, err := Reduce(tbl, Options{CategoricalColumns: []string{"strings"}})
	require.NoError(t, err)
	assert.Equal(t, arrow.INT64, typeOf(t, tbl, "ints").ID())
	assert.Equal(t, arrow.STRING, typeOf(t, tbl, "strings").ID())
}

func TestReduceVerboseLogsFootprint(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	_, err := Reduce(sampleTable(), Options{Verbose: true, Logger: zap.New(core)})
	require.NoError(t, err)

	msgs := make([]string, 0, logs.Len())
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{"memory before reduction", "memory after reduction", "memory decreased"}, msgs)
}
