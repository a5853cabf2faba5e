package frame

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownColumn is matched by UnknownColumnError via errors.Is.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrInvalidColumnKind is matched by InvalidColumnKindError via errors.Is.
	ErrInvalidColumnKind = errors.New("invalid column kind")
)

// UnknownColumnError indicates a column name that is not present in a table.
type UnknownColumnError struct {
	Name string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q", e.Name)
}

func (e *UnknownColumnError) Unwrap() error { return ErrUnknownColumn }

// InvalidColumnKindError indicates values that cannot share one column
// representation, or a column whose kind does not fit the operation.
type InvalidColumnKindError struct {
	Column string
	Kinds  []Kind
	Reason string
}

func (e *InvalidColumnKindError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid column kind for %q", e.Column)
	if len(e.Kinds) > 0 {
		names := make([]string, len(e.Kinds))
		for i, k := range e.Kinds {
			names[i] = k.String()
		}
		fmt.Fprintf(&b, " (found %s)", strings.Join(names, ", "))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *InvalidColumnKindError) Unwrap() error { return ErrInvalidColumnKind }
