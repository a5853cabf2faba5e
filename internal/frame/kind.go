package frame

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// Kind is the semantic class of a column, independent of its storage width.
type Kind uint8

const (
	KindOther Kind = iota
	KindInt
	KindUint
	KindFloat
	KindBool
	KindText
	KindCategorical
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	case KindCategorical:
		return "category"
	case KindTime:
		return "datetime"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// IsNumeric reports whether the kind holds integer or floating-point values.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindUint || k == KindFloat
}

// KindOf maps an arrow data type to its Kind.
func KindOf(dt arrow.DataType) Kind {
	if dt == nil {
		return KindOther
	}
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		return KindInt
	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return KindUint
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return KindFloat
	case arrow.BOOL:
		return KindBool
	case arrow.STRING, arrow.LARGE_STRING:
		return KindText
	case arrow.DICTIONARY:
		return KindCategorical
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return KindTime
	default:
		return KindOther
	}
}

// TypeName returns a short dtype label such as "int8", "float32" or "category".
func TypeName(dt arrow.DataType) string {
	if dt == nil {
		return "null"
	}
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		return "object"
	case arrow.DICTIONARY:
		return "category"
	case arrow.FLOAT16:
		return "float16"
	case arrow.FLOAT32:
		return "float32"
	case arrow.FLOAT64:
		return "float64"
	case arrow.TIMESTAMP:
		return "datetime64"
	default:
		return dt.Name()
	}
}
