package frame

import (
	"sort"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

func kindOfValue(v any) (Kind, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64:
		return KindInt, true
	case uint, uint8, uint16, uint32, uint64:
		return KindUint, true
	case float32, float64:
		return KindFloat, true
	case bool:
		return KindBool, true
	case string:
		return KindText, true
	case time.Time:
		return KindTime, true
	}
	return KindOther, false
}

// ColumnFromValues builds a column from loosely typed Go values. nil is a
// null. Integers mixed with floats promote to float64; any other mix of
// kinds, or an unsupported Go type, fails with InvalidColumnKindError.
func ColumnFromValues(name string, vals []any) (*Column, error) {
	seen := map[Kind]bool{}
	valid := make([]bool, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		k, ok := kindOfValue(v)
		if !ok {
			return nil, &InvalidColumnKindError{Column: name, Reason: "unsupported value type"}
		}
		seen[k] = true
		valid[i] = true
	}
	kind, err := resolveKind(name, seen)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindInt:
		out := make([]int64, len(vals))
		for i, v := range vals {
			out[i] = asInt64(v)
		}
		return NewInt64Column(name, out, valid), nil
	case KindUint:
		out := make([]uint64, len(vals))
		for i, v := range vals {
			out[i] = asUint64(v)
		}
		arr, err := UintArray(arrow.PrimitiveTypes.Uint64, out, valid)
		if err != nil {
			return nil, err
		}
		return NewColumn(name, arr), nil
	case KindFloat:
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = asFloat64(v)
		}
		return NewFloat64Column(name, out, valid), nil
	case KindBool:
		out := make([]bool, len(vals))
		for i, v := range vals {
			out[i], _ = v.(bool)
		}
		return NewBoolColumn(name, out, valid), nil
	case KindTime:
		dt := &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"}
		b := array.NewTimestampBuilder(mem, dt)
		defer b.Release()
		for i, v := range vals {
			if !valid[i] {
				b.AppendNull()
				continue
			}
			b.Append(arrow.Timestamp(v.(time.Time).UnixNano()))
		}
		return NewColumn(name, b.NewArray()), nil
	default:
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i], _ = v.(string)
		}
		return NewStringColumn(name, out, valid), nil
	}
}

func resolveKind(name string, seen map[Kind]bool) (Kind, error) {
	if len(seen) == 0 {
		return KindText, nil
	}
	if len(seen) == 1 {
		for k := range seen {
			return k, nil
		}
	}
	numeric := true
	for k := range seen {
		if !k.IsNumeric() {
			numeric = false
			break
		}
	}
	if numeric && seen[KindFloat] {
		return KindFloat, nil
	}
	if numeric {
		// signed and unsigned integers together
		return KindInt, nil
	}
	kinds := make([]Kind, 0, len(seen))
	for k := range seen {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return KindOther, &InvalidColumnKindError{Column: name, Kinds: kinds, Reason: "mixed value kinds"}
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	}
	return 0
}

func asUint64(v any) uint64 {
	switch x := v.(type) {
	case uint:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	}
	return 0
}

func asFloat64(v any) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	}
	return float64(asInt64(v))
}
