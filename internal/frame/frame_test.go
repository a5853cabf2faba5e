package frame

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsRaggedAndDuplicateColumns(t *testing.T) {
	_, err := New(
		NewInt64Column("a", []int64{1, 2}, nil),
		NewInt64Column("b", []int64{1}, nil),
	)
	require.Error(t, err)

	_, err = New(
		NewInt64Column("a", []int64{1}, nil),
		NewInt64Column("a", []int64{2}, nil),
	)
	require.Error(t, err)
}

func TestColumnLookupUnknown(t *testing.T) {
	tbl := MustNew(NewInt64Column("a", []int64{1}, nil))
	_, err := tbl.Column("zzz")
	require.ErrorIs(t, err, ErrUnknownColumn)

	var uc *UnknownColumnError
	require.True(t, errors.As(err, &uc))
	assert.Equal(t, "zzz", uc.Name)
}

func TestColumnFromValues(t *testing.T) {
	c, err := ColumnFromValues("n", []any{1, 2.5, nil})
	require.NoError(t, err)
	assert.Equal(t, KindFloat, c.Kind())
	assert.True(t, c.IsNull(2))
	assert.Equal(t, 2.5, c.Value(1))

	c, err = ColumnFromValues("i", []any{int8(1), int64(-3)})
	require.NoError(t, err)
	assert.Equal(t, arrow.INT64, c.DataType().ID())

	_, err = ColumnFromValues("bad", []any{1, "x"})
	require.ErrorIs(t, err, ErrInvalidColumnKind)

	_, err = ColumnFromValues("bad", []any{struct{}{}})
	require.ErrorIs(t, err, ErrInvalidColumnKind)

	c, err = ColumnFromValues("empty", nil)
	require.NoError(t, err)
	assert.Equal(t, KindText, c.Kind())
}

func TestCategoricalColumnRoundTrip(t *testing.T) {
	vals := []string{"b", "a", "b", "c"}
	c := NewCategoricalColumn("s", vals, nil)
	assert.Equal(t, KindCategorical, c.Kind())
	assert.Equal(t, []string{"a", "b", "c"}, c.Categories())
	assert.Equal(t, []int{1, 0, 1, 2}, c.Codes())
	for i, want := range vals {
		assert.Equal(t, want, c.Value(i))
	}
	dt := c.DataType().(*arrow.DictionaryType)
	assert.Equal(t, arrow.INT8, dt.IndexType.ID())
}

func TestCodeType(t *testing.T) {
	assert.Equal(t, arrow.INT8, CodeType(0).ID())
	assert.Equal(t, arrow.INT8, CodeType(128).ID())
	assert.Equal(t, arrow.INT16, CodeType(129).ID())
	assert.Equal(t, arrow.INT32, CodeType(1<<16).ID())
}

func TestStringAtFormatting(t *testing.T) {
	tbl := MustNew(
		NewFloat64Column("f", []float64{1, 0.1, math.NaN(), 1e-7}, []bool{true, true, true, false}),
		NewBoolColumn("b", []bool{true, false, true, true}, nil),
	)
	got, err := tbl.Strings("f")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0", "0.1", "nan", "nan"}, got)

	got, err = tbl.Strings("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"True", "False", "True", "True"}, got)

	assert.Equal(t, "1e-07", FormatFloat(1e-7, 64))
	assert.Equal(t, "0.1", FormatFloat(float64(float32(0.1)), 32))
}

func TestSelectDropAndFloat64s(t *testing.T) {
	tbl := MustNew(
		NewInt64Column("a", []int64{1, 2, 3}, []bool{true, false, true}),
		NewStringColumn("s", []string{"x", "y", "z"}, nil),
	)
	sub, err := tbl.Drop("s")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, sub.Names())
	assert.Equal(t, 3, sub.Len())

	vals, err := sub.Float64s("a")
	require.NoError(t, err)
	assert.Equal(t, 1.0, vals[0])
	assert.True(t, math.IsNaN(vals[1]))

	_, err = tbl.Float64s("s")
	require.ErrorIs(t, err, ErrInvalidColumnKind)

	_, err = tbl.Drop("nope")
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestMemoryUsage(t *testing.T) {
	tbl := MustNew(
		NewInt64Column("i", []int64{1, 2, 3, 4}, nil),
		NewStringColumn("s", []string{"ab", "cd", "ef", "gh"}, nil),
	)
	i, _ := tbl.Column("i")
	assert.EqualValues(t, 32, i.MemoryUsage(true))
	s, _ := tbl.Column("s")
	assert.EqualValues(t, 20, s.MemoryUsage(false))
	assert.EqualValues(t, 28, s.MemoryUsage(true))
	assert.EqualValues(t, 60, tbl.MemoryUsage(true))
}

func TestWriteCSV(t *testing.T) {
	tbl := MustNew(
		NewInt64Column("i", []int64{1, 2}, []bool{true, false}),
		NewCategoricalColumn("c", []string{"x", "y"}, nil),
	)
	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))
	assert.Equal(t, "i,c\n1,x\n,y\n", buf.String())
}
