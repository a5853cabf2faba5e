package evaluate

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch is matched by LengthMismatchError via errors.Is.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrSingleClass means a metric needs both classes and only one is present.
	ErrSingleClass = errors.New("only one class present in y_true")
	// ErrEmpty means there are no samples to score.
	ErrEmpty = errors.New("no samples")
)

// LengthMismatchError reports two sequences that should pair up element by element.
type LengthMismatchError struct {
	What       string
	Left, Right int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s: lengths differ (%d vs %d)", e.What, e.Left, e.Right)
}

func (e *LengthMismatchError) Unwrap() error { return ErrLengthMismatch }

func checkLengths(what string, a, b int) error {
	if a != b {
		return &LengthMismatchError{What: what, Left: a, Right: b}
	}
	if a == 0 {
		return fmt.Errorf("%s: %w", what, ErrEmpty)
	}
	return nil
}
