package frame

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// MemoryUsage estimates the bytes held by the column: validity bitmap (when
// nulls are present) plus values. Text columns count their offsets, and with
// deep set also the string bytes. Categorical columns count their codes and
// the full lookup.
func (c *Column) MemoryUsage(deep bool) int64 {
	return arrayUsage(c.arr, deep)
}

func arrayUsage(arr arrow.Array, deep bool) int64 {
	n := int64(arr.Len())
	var size int64
	if arr.NullN() > 0 {
		size += (n + 7) / 8
	}
	switch a := arr.(type) {
	case *array.Boolean:
		return size + (n+7)/8
	case *array.String:
		size += 4 * (n + 1)
		if deep {
			for i := 0; i < a.Len(); i++ {
				if !a.IsNull(i) {
					size += int64(len(a.Value(i)))
				}
			}
		}
		return size
	case *array.LargeString:
		size += 8 * (n + 1)
		if deep {
			for i := 0; i < a.Len(); i++ {
				if !a.IsNull(i) {
					size += int64(len(a.Value(i)))
				}
			}
		}
		return size
	case *array.Dictionary:
		return arrayUsage(a.Indices(), deep) + arrayUsage(a.Dictionary(), true)
	}
	if fw, ok := arr.DataType().(arrow.FixedWidthDataType); ok {
		return size + n*int64(fw.BitWidth())/8
	}
	// Nested or exotic types: fall back to the raw buffer sizes.
	var raw int64
	for _, buf := range arr.Data().Buffers() {
		if buf != nil {
			raw += int64(buf.Len())
		}
	}
	return raw
}

// MemoryUsage sums the column estimates of the table.
func (t *Table) MemoryUsage(deep bool) int64 {
	var total int64
	for _, c := range t.cols {
		total += c.MemoryUsage(deep)
	}
	return total
}
