package frame

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Column is a named arrow array. A Column owns one reference to its array.
type Column struct {
	name string
	arr  arrow.Array
}

// NewColumn wraps arr without retaining it; the column takes over the caller's reference.
func NewColumn(name string, arr arrow.Array) *Column {
	return &Column{name: name, arr: arr}
}

func (c *Column) Name() string             { return c.name }
func (c *Column) Array() arrow.Array       { return c.arr }
func (c *Column) DataType() arrow.DataType { return c.arr.DataType() }
func (c *Column) Kind() Kind               { return KindOf(c.arr.DataType()) }
func (c *Column) Len() int                 { return c.arr.Len() }
func (c *Column) NullN() int               { return c.arr.NullN() }
func (c *Column) IsNull(i int) bool        { return c.arr.IsNull(i) }

// Rename returns a column sharing the same array under a new name.
func (c *Column) Rename(name string) *Column {
	c.arr.Retain()
	return &Column{name: name, arr: c.arr}
}

// Release drops the column's reference to its array.
func (c *Column) Release() {
	if c.arr != nil {
		c.arr.Release()
	}
}

// Value returns row i as a Go value, or nil for a null.
// Categorical rows decode to their text value.
func (c *Column) Value(i int) any {
	if c.arr.IsNull(i) {
		return nil
	}
	switch a := c.arr.(type) {
	case *array.Int8:
		return a.Value(i)
	case *array.Int16:
		return a.Value(i)
	case *array.Int32:
		return a.Value(i)
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return a.Value(i)
	case *array.Uint16:
		return a.Value(i)
	case *array.Uint32:
		return a.Value(i)
	case *array.Uint64:
		return a.Value(i)
	case *array.Float32:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Dictionary:
		return dictValue(a, i)
	case *array.Timestamp:
		return a.Value(i).ToTime(a.DataType().(*arrow.TimestampType).Unit)
	default:
		return c.arr.GetOneForMarshal(i)
	}
}

func dictValue(a *array.Dictionary, i int) string {
	idx := a.GetValueIndex(i)
	switch d := a.Dictionary().(type) {
	case *array.String:
		return d.Value(idx)
	case *array.LargeString:
		return d.Value(idx)
	default:
		return d.ValueStr(idx)
	}
}

// Float64At returns row i as a float64. ok is false for nulls and for
// non-numeric columns.
func (c *Column) Float64At(i int) (v float64, ok bool) {
	if c.arr.IsNull(i) {
		return math.NaN(), false
	}
	switch a := c.arr.(type) {
	case *array.Int8:
		return float64(a.Value(i)), true
	case *array.Int16:
		return float64(a.Value(i)), true
	case *array.Int32:
		return float64(a.Value(i)), true
	case *array.Int64:
		return float64(a.Value(i)), true
	case *array.Uint8:
		return float64(a.Value(i)), true
	case *array.Uint16:
		return float64(a.Value(i)), true
	case *array.Uint32:
		return float64(a.Value(i)), true
	case *array.Uint64:
		return float64(a.Value(i)), true
	case *array.Float16:
		return float64(a.Value(i).Float32()), true
	case *array.Float32:
		return float64(a.Value(i)), true
	case *array.Float64:
		return a.Value(i), true
	case *array.Boolean:
		if a.Value(i) {
			return 1, true
		}
		return 0, true
	}
	return math.NaN(), false
}

// StringAt renders row i as text. Nulls render as "nan"; floats keep a
// decimal point ("1.0"); booleans render as "True"/"False".
func (c *Column) StringAt(i int) string {
	if c.arr.IsNull(i) {
		return "nan"
	}
	switch a := c.arr.(type) {
	case *array.Float32:
		return FormatFloat(float64(a.Value(i)), 32)
	case *array.Float64:
		return FormatFloat(a.Value(i), 64)
	case *array.Boolean:
		if a.Value(i) {
			return "True"
		}
		return "False"
	case *array.Timestamp:
		t := a.Value(i).ToTime(a.DataType().(*arrow.TimestampType).Unit)
		return t.UTC().Format(time.RFC3339Nano)
	}
	switch v := c.Value(i).(type) {
	case string:
		return v
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	}
	return c.arr.ValueStr(i)
}

// FormatFloat renders v with the shortest representation that round-trips at
// bitSize precision, always keeping a decimal point or exponent.
func FormatFloat(v float64, bitSize int) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, bitSize)
	}
	s := strconv.FormatFloat(v, 'f', -1, bitSize)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Categories returns the lookup of a categorical column, or nil.
func (c *Column) Categories() []string {
	d, ok := c.arr.(*array.Dictionary)
	if !ok {
		return nil
	}
	dict := d.Dictionary()
	out := make([]string, dict.Len())
	for i := range out {
		if s, ok := dict.(*array.String); ok {
			out[i] = s.Value(i)
		} else {
			out[i] = dict.ValueStr(i)
		}
	}
	return out
}

// Codes returns the per-row codes of a categorical column (-1 for nulls), or nil.
func (c *Column) Codes() []int {
	d, ok := c.arr.(*array.Dictionary)
	if !ok {
		return nil
	}
	out := make([]int, d.Len())
	for i := range out {
		if d.IsNull(i) {
			out[i] = -1
			continue
		}
		out[i] = d.GetValueIndex(i)
	}
	return out
}
