// Package dataprep shrinks the memory footprint of a table: named columns
// become categorical, and the remaining numeric columns are downcast to the
// narrowest storage that keeps every value.
package dataprep

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"go.uber.org/zap"

	"github.com/KaramelBytes/edakit/internal/frame"
	"github.com/KaramelBytes/edakit/internal/utils"
)

// Re-exported so callers of Reduce need not import frame to match errors.
var (
	ErrUnknownColumn     = frame.ErrUnknownColumn
	ErrInvalidColumnKind = frame.ErrInvalidColumnKind
)

// Options controls Reduce.
type Options struct {
	// CategoricalColumns are converted to categorical. Each must exist.
	CategoricalColumns []string
	// Unsigned allows the unsigned ladder for integer columns without negatives.
	Unsigned bool
	// ExactFloats only narrows float columns whose values survive float32 bit for bit.
	ExactFloats bool
	// Verbose logs the before/after memory footprint.
	Verbose bool
	// Logger receives the Verbose diagnostics; nil discards them.
	Logger *zap.Logger
}

var (
	signedLadder   = []arrow.DataType{arrow.PrimitiveTypes.Int8, arrow.PrimitiveTypes.Int16, arrow.PrimitiveTypes.Int32, arrow.PrimitiveTypes.Int64}
	unsignedLadder = []arrow.DataType{arrow.PrimitiveTypes.Uint8, arrow.PrimitiveTypes.Uint16, arrow.PrimitiveTypes.Uint32, arrow.PrimitiveTypes.Uint64}
)

// Reduce returns a new table in which opt.CategoricalColumns are categorical
// and every other integer or float column uses its narrowest safe width.
// Columns of any other kind are carried over untouched. The input table is
// not modified. On error no table is returned.
func Reduce(t *frame.Table, opt Options) (*frame.Table, error) {
	if t == nil {
		return nil, fmt.Errorf("reduce: nil table")
	}
	cat := make(map[string]struct{}, len(opt.CategoricalColumns))
	for _, name := range opt.CategoricalColumns {
		if !t.Has(name) {
			return nil, &frame.UnknownColumnError{Name: name}
		}
		cat[name] = struct{}{}
	}

	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var before int64
	if opt.Verbose {
		before = footprint(t, log)
		log.Info("memory before reduction", zap.String("mb", fmt.Sprintf("%.1f", utils.MegaBytes(before))))
	}

	out := make([]*frame.Column, 0, t.NumColumns())
	release := func() {
		for _, c := range out {
			c.Release()
		}
	}
	for _, c := range t.Columns() {
		var (
			nc  *frame.Column
			err error
		)
		if _, ok := cat[c.Name()]; ok {
			nc = toCategorical(c)
		} else {
			nc, err = downcast(c, opt)
		}
		if err != nil {
			release()
			return nil, err
		}
		out = append(out, nc)
	}
	res, err := frame.New(out...)
	if err != nil {
		release()
		return nil, err
	}

	if opt.Verbose {
		after := footprint(res, log)
		log.Info("memory after reduction", zap.String("mb", fmt.Sprintf("%.1f", utils.MegaBytes(after))))
		if pct, ok := utils.PercentDecrease(before, after); ok {
			log.Info("memory decreased", zap.String("percent", fmt.Sprintf("%.1f", pct)))
		}
	}
	return res, nil
}

// footprint never fails the caller: a panic while estimating is logged and
// reported as zero.
func footprint(t *frame.Table, log *zap.Logger) (n int64) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug("memory estimate unavailable", zap.Any("reason", r))
			n = 0
		}
	}()
	return t.MemoryUsage(true)
}

func toCategorical(c *frame.Column) *frame.Column {
	vals := make([]string, c.Len())
	for i := range vals {
		vals[i] = c.StringAt(i)
	}
	return frame.NewCategoricalColumn(c.Name(), vals, nil)
}

func downcast(c *frame.Column, opt Options) (*frame.Column, error) {
	switch c.Kind() {
	case frame.KindInt:
		return downcastSigned(c, opt.Unsigned)
	case frame.KindUint:
		return downcastUnsigned(c, opt.Unsigned)
	case frame.KindFloat:
		return downcastFloat(c, opt.ExactFloats)
	}
	return c.Rename(c.Name()), nil
}

func downcastSigned(c *frame.Column, unsigned bool) (*frame.Column, error) {
	vals, valid := int64Values(c.Array())
	lo, hi := int64(0), int64(0)
	first := true
	for i, v := range vals {
		if valid != nil && !valid[i] {
			continue
		}
		if first || v < lo {
			lo = v
		}
		if first || v > hi {
			hi = v
		}
		first = false
	}
	var dt arrow.DataType
	if unsigned && lo >= 0 {
		dt = unsignedFor(uint64(hi))
	} else {
		dt = signedFor(lo, hi)
	}
	return rebuildInts(c, dt, vals, valid)
}

func downcastUnsigned(c *frame.Column, unsigned bool) (*frame.Column, error) {
	vals, valid := uint64Values(c.Array())
	var hi uint64
	for i, v := range vals {
		if valid != nil && !valid[i] {
			continue
		}
		if v > hi {
			hi = v
		}
	}
	if unsigned || hi > math.MaxInt64 {
		dt := unsignedFor(hi)
		if dt.ID() == c.DataType().ID() {
			return c.Rename(c.Name()), nil
		}
		arr, err := frame.UintArray(dt, vals, valid)
		if err != nil {
			return nil, invalidKind(c, err)
		}
		return frame.NewColumn(c.Name(), arr), nil
	}
	signed := make([]int64, len(vals))
	for i, v := range vals {
		signed[i] = int64(v)
	}
	return rebuildInts(c, signedFor(0, int64(hi)), signed, valid)
}

func rebuildInts(c *frame.Column, dt arrow.DataType, vals []int64, valid []bool) (*frame.Column, error) {
	if dt.ID() == c.DataType().ID() {
		return c.Rename(c.Name()), nil
	}
	arr, err := frame.IntArray(dt, vals, valid)
	if err != nil {
		return nil, invalidKind(c, err)
	}
	return frame.NewColumn(c.Name(), arr), nil
}

func signedFor(lo, hi int64) arrow.DataType {
	switch {
	case lo >= math.MinInt8 && hi <= math.MaxInt8:
		return signedLadder[0]
	case lo >= math.MinInt16 && hi <= math.MaxInt16:
		return signedLadder[1]
	case lo >= math.MinInt32 && hi <= math.MaxInt32:
		return signedLadder[2]
	}
	return signedLadder[3]
}

func unsignedFor(hi uint64) arrow.DataType {
	switch {
	case hi <= math.MaxUint8:
		return unsignedLadder[0]
	case hi <= math.MaxUint16:
		return unsignedLadder[1]
	case hi <= math.MaxUint32:
		return unsignedLadder[2]
	}
	return unsignedLadder[3]
}

func downcastFloat(c *frame.Column, exact bool) (*frame.Column, error) {
	if id := c.DataType().ID(); id == arrow.FLOAT32 || id == arrow.FLOAT16 {
		return c.Rename(c.Name()), nil
	}
	n := c.Len()
	vals := make([]float64, n)
	var valid []bool
	if c.NullN() > 0 {
		valid = make([]bool, n)
	}
	fits := true
	for i := 0; i < n; i++ {
		v, ok := c.Float64At(i)
		if !ok {
			continue
		}
		vals[i] = v
		if valid != nil {
			valid[i] = true
		}
		if fits && !FitsFloat32(v, exact) {
			fits = false
		}
	}
	dt := arrow.DataType(arrow.PrimitiveTypes.Float32)
	if !fits {
		dt = arrow.PrimitiveTypes.Float64
	}
	if dt.ID() == c.DataType().ID() {
		return c.Rename(c.Name()), nil
	}
	arr, err := frame.FloatArray(dt, vals, valid)
	if err != nil {
		return nil, invalidKind(c, err)
	}
	return frame.NewColumn(c.Name(), arr), nil
}

// Float32Tolerance is the largest absolute change a value may take when it
// is narrowed to float32.
const Float32Tolerance = 5e-4

// FitsFloat32 reports whether v keeps its value when stored as float32:
// NaN and infinities are preserved, finite values must stay finite and move
// by at most Float32Tolerance. With exact set the round trip must be bit for bit.
func FitsFloat32(v float64, exact bool) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return true
	}
	back := float64(float32(v))
	if math.IsInf(back, 0) {
		return false
	}
	if exact {
		return back == v
	}
	return math.Abs(back-v) <= Float32Tolerance
}

func int64Values(arr arrow.Array) ([]int64, []bool) {
	n := arr.Len()
	vals := make([]int64, n)
	var valid []bool
	if arr.NullN() > 0 {
		valid = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		if arr.IsNull(i) {
			continue
		}
		if valid != nil {
			valid[i] = true
		}
		switch a := arr.(type) {
		case *array.Int8:
			vals[i] = int64(a.Value(i))
		case *array.Int16:
			vals[i] = int64(a.Value(i))
		case *array.Int32:
			vals[i] = int64(a.Value(i))
		case *array.Int64:
			vals[i] = a.Value(i)
		}
	}
	return vals, valid
}

func uint64Values(arr arrow.Array) ([]uint64, []bool) {
	n := arr.Len()
	vals := make([]uint64, n)
	var valid []bool
	if arr.NullN() > 0 {
		valid = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		if arr.IsNull(i) {
			continue
		}
		if valid != nil {
			valid[i] = true
		}
		switch a := arr.(type) {
		case *array.Uint8:
			vals[i] = uint64(a.Value(i))
		case *array.Uint16:
			vals[i] = uint64(a.Value(i))
		case *array.Uint32:
			vals[i] = uint64(a.Value(i))
		case *array.Uint64:
			vals[i] = a.Value(i)
		}
	}
	return vals, valid
}

func invalidKind(c *frame.Column, err error) error {
	return &frame.InvalidColumnKindError{Column: c.Name(), Kinds: []frame.Kind{c.Kind()}, Reason: err.Error()}
}
