package frame

import (
	"fmt"
	"math"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// mem backs every array built by this package.
var mem memory.Allocator = memory.NewGoAllocator()

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

type number interface {
	integer | ~float32 | ~float64
}

type valueBuilder[T any] interface {
	Append(T)
	AppendNull()
	NewArray() arrow.Array
	Release()
}

func build[T, S number](b valueBuilder[T], vals []S, valid []bool) arrow.Array {
	defer b.Release()
	for i, v := range vals {
		if valid != nil && !valid[i] {
			b.AppendNull()
			continue
		}
		b.Append(T(v))
	}
	return b.NewArray()
}

// IntArray builds a signed or unsigned integer array of type dt from int64 values.
// The caller is responsible for the values fitting dt.
func IntArray(dt arrow.DataType, vals []int64, valid []bool) (arrow.Array, error) {
	switch dt.ID() {
	case arrow.INT8:
		return build[int8](array.NewInt8Builder(mem), vals, valid), nil
	case arrow.INT16:
		return build[int16](array.NewInt16Builder(mem), vals, valid), nil
	case arrow.INT32:
		return build[int32](array.NewInt32Builder(mem), vals, valid), nil
	case arrow.INT64:
		return build[int64](array.NewInt64Builder(mem), vals, valid), nil
	case arrow.UINT8:
		return build[uint8](array.NewUint8Builder(mem), vals, valid), nil
	case arrow.UINT16:
		return build[uint16](array.NewUint16Builder(mem), vals, valid), nil
	case arrow.UINT32:
		return build[uint32](array.NewUint32Builder(mem), vals, valid), nil
	case arrow.UINT64:
		return build[uint64](array.NewUint64Builder(mem), vals, valid), nil
	}
	return nil, fmt.Errorf("not an integer type: %s", dt)
}

// UintArray builds an unsigned integer array of type dt from uint64 values.
func UintArray(dt arrow.DataType, vals []uint64, valid []bool) (arrow.Array, error) {
	switch dt.ID() {
	case arrow.UINT8:
		return build[uint8](array.NewUint8Builder(mem), vals, valid), nil
	case arrow.UINT16:
		return build[uint16](array.NewUint16Builder(mem), vals, valid), nil
	case arrow.UINT32:
		return build[uint32](array.NewUint32Builder(mem), vals, valid), nil
	case arrow.UINT64:
		return build[uint64](array.NewUint64Builder(mem), vals, valid), nil
	case arrow.INT64:
		return build[int64](array.NewInt64Builder(mem), vals, valid), nil
	}
	return nil, fmt.Errorf("not an unsigned integer type: %s", dt)
}

// FloatArray builds a float32 or float64 array from float64 values.
func FloatArray(dt arrow.DataType, vals []float64, valid []bool) (arrow.Array, error) {
	switch dt.ID() {
	case arrow.FLOAT32:
		return build[float32](array.NewFloat32Builder(mem), vals, valid), nil
	case arrow.FLOAT64:
		return build[float64](array.NewFloat64Builder(mem), vals, valid), nil
	}
	return nil, fmt.Errorf("not a float type: %s", dt)
}

func stringArray(vals []string, valid []bool) arrow.Array {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	for i, v := range vals {
		if valid != nil && !valid[i] {
			b.AppendNull()
			continue
		}
		b.Append(v)
	}
	return b.NewArray()
}

func boolArray(vals []bool, valid []bool) arrow.Array {
	b := array.NewBooleanBuilder(mem)
	defer b.Release()
	for i, v := range vals {
		if valid != nil && !valid[i] {
			b.AppendNull()
			continue
		}
		b.Append(v)
	}
	return b.NewArray()
}

// NewInt64Column builds an int64 column. A nil valid slice means no nulls.
func NewInt64Column(name string, vals []int64, valid []bool) *Column {
	arr, _ := IntArray(arrow.PrimitiveTypes.Int64, vals, valid)
	return NewColumn(name, arr)
}

// NewFloat64Column builds a float64 column.
func NewFloat64Column(name string, vals []float64, valid []bool) *Column {
	arr, _ := FloatArray(arrow.PrimitiveTypes.Float64, vals, valid)
	return NewColumn(name, arr)
}

// NewStringColumn builds a text column.
func NewStringColumn(name string, vals []string, valid []bool) *Column {
	return NewColumn(name, stringArray(vals, valid))
}

// NewBoolColumn builds a boolean column.
func NewBoolColumn(name string, vals []bool, valid []bool) *Column {
	return NewColumn(name, boolArray(vals, valid))
}

// CodeType returns the narrowest signed integer type able to index n categories.
func CodeType(n int) arrow.DataType {
	switch {
	case n <= math.MaxInt8+1:
		return arrow.PrimitiveTypes.Int8
	case n <= math.MaxInt16+1:
		return arrow.PrimitiveTypes.Int16
	case n <= math.MaxInt32+1:
		return arrow.PrimitiveTypes.Int32
	default:
		return arrow.PrimitiveTypes.Int64
	}
}

// NewCategoricalColumn dictionary-encodes vals. Categories are the sorted
// distinct values; codes use the narrowest signed type that fits.
func NewCategoricalColumn(name string, vals []string, valid []bool) *Column {
	seen := make(map[string]struct{}, 16)
	for i, v := range vals {
		if valid != nil && !valid[i] {
			continue
		}
		seen[v] = struct{}{}
	}
	cats := make([]string, 0, len(seen))
	for v := range seen {
		cats = append(cats, v)
	}
	sort.Strings(cats)
	lookup := make(map[string]int64, len(cats))
	for i, v := range cats {
		lookup[v] = int64(i)
	}
	codes := make([]int64, len(vals))
	for i, v := range vals {
		if valid != nil && !valid[i] {
			continue
		}
		codes[i] = lookup[v]
	}

	codeType := CodeType(len(cats))
	indices, _ := IntArray(codeType, codes, valid)
	defer indices.Release()
	dict := stringArray(cats, nil)
	defer dict.Release()
	dt := &arrow.DictionaryType{IndexType: codeType, ValueType: arrow.BinaryTypes.String}
	return NewColumn(name, array.NewDictionaryArray(dt, indices, dict))
}
