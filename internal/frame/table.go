// Package frame holds the in-memory tabular dataset used throughout edakit:
// ordered, named, equal-length columns backed by Apache Arrow arrays.
package frame

import (
	"fmt"
	"math"
)

// Table is an ordered collection of named columns sharing one row count.
// Tables are treated as immutable; operations return new tables.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a table from columns. Names must be unique and lengths equal.
// The table takes over the columns' references.
func New(cols ...*Column) (*Table, error) {
	t := &Table{cols: make([]*Column, 0, len(cols)), index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := t.index[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name())
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name(), c.Len(), t.rows)
		}
		t.index[c.Name()] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// MustNew is New for fixtures and literals; it panics on error.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Len() int        { return t.rows }
func (t *Table) NumColumns() int { return len(t.cols) }

// Columns returns the table's columns in order. The slice must not be modified.
func (t *Table) Columns() []*Column { return t.cols }

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name()
	}
	return out
}

// Has reports whether a column named name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &UnknownColumnError{Name: name}
	}
	return t.cols[i], nil
}

// Select returns a table with only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c.Rename(n))
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		out.rows = t.rows
	}
	return out, nil
}

// Drop returns a table without the named columns. Unknown names are an error.
func (t *Table) Drop(names ...string) (*Table, error) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		if !t.Has(n) {
			return nil, &UnknownColumnError{Name: n}
		}
		drop[n] = struct{}{}
	}
	keep := make([]string, 0, len(t.cols))
	for _, c := range t.cols {
		if _, ok := drop[c.Name()]; !ok {
			keep = append(keep, c.Name())
		}
	}
	return t.Select(keep...)
}

// Release drops the table's references to its arrays.
func (t *Table) Release() {
	for _, c := range t.cols {
		c.Release()
	}
}

// Float64s returns a numeric column as float64 values with NaN for nulls.
func (t *Table) Float64s(name string) ([]float64, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if k := c.Kind(); !k.IsNumeric() && k != KindBool {
		return nil, &InvalidColumnKindError{Column: name, Kinds: []Kind{k}, Reason: "not numeric"}
	}
	out := make([]float64, c.Len())
	for i := range out {
		v, ok := c.Float64At(i)
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out, nil
}

// Strings returns every row of a column rendered as text.
func (t *Table) Strings(name string) ([]string, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.StringAt(i)
	}
	return out, nil
}

// Ints returns an integer or boolean column as ints. Nulls are an error.
func (t *Table) Ints(name string) ([]int, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	k := c.Kind()
	if k != KindInt && k != KindUint && k != KindBool {
		return nil, &InvalidColumnKindError{Column: name, Kinds: []Kind{k}, Reason: "not integer"}
	}
	out := make([]int, c.Len())
	for i := range out {
		v, ok := c.Float64At(i)
		if !ok {
			return nil, fmt.Errorf("column %q: null at row %d", name, i)
		}
		out[i] = int(v)
	}
	return out, nil
}
