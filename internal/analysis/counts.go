package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/edakit/internal/frame"
)

// CountOptions controls TopValueCounts.
type CountOptions struct {
	// N is the number of top values kept per column; 0 means 5.
	N int
	// OnlyCategories restricts the summary to text and categorical columns.
	OnlyCategories bool
	// Include limits the columns considered, in this order. Empty means all.
	Include []string
	// Exclude drops columns after Include is applied.
	Exclude []string
}

// DefaultCountOptions returns the defaults used by the value-counts command.
func DefaultCountOptions() CountOptions {
	return CountOptions{N: 5, OnlyCategories: true}
}

// ValueCount is one (value, frequency) pair. Padding entries fill the table
// up to N when a column has fewer distinct values.
type ValueCount struct {
	Value   string
	Freq    int
	Padding bool
}

// FieldCounts summarizes one column.
type FieldCounts struct {
	Field  string
	Unique int
	Top    []ValueCount
}

// ValueCounts is the result of TopValueCounts.
type ValueCounts struct {
	N        int
	Fields   []FieldCounts
	Excluded []string
	Warnings []string
}

// nullLabel is how missing values are counted.
const nullLabel = "NaN"

// TopValueCounts lists, for each selected column, its number of distinct
// non-null values and its N most frequent values (nulls included as "NaN").
// Values are ordered by frequency, ties by first appearance. Float columns
// are never summarized and are reported in Excluded.
func TopValueCounts(t *frame.Table, opt CountOptions) (*ValueCounts, error) {
	if t == nil {
		return nil, fmt.Errorf("value counts: nil table")
	}
	n := opt.N
	if n <= 0 {
		n = 5
	}

	names := t.Names()
	if len(opt.Include) > 0 {
		names = opt.Include
	}
	drop := make(map[string]struct{}, len(opt.Exclude))
	for _, name := range opt.Exclude {
		if !t.Has(name) {
			return nil, &frame.UnknownColumnError{Name: name}
		}
		drop[name] = struct{}{}
	}

	out := &ValueCounts{N: n}
	for _, name := range names {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		if _, ok := drop[name]; ok {
			continue
		}
		k := c.Kind()
		if k == frame.KindFloat {
			out.Excluded = append(out.Excluded, name)
			continue
		}
		if opt.OnlyCategories && k != frame.KindText && k != frame.KindCategorical {
			continue
		}
		out.Fields = append(out.Fields, countColumn(c, n))
	}
	if len(out.Excluded) > 0 {
		out.Warnings = append(out.Warnings, fmt.Sprintf("column(s) with float dtype excluded: %s", strings.Join(out.Excluded, ", ")))
	}
	return out, nil
}

func countColumn(c *frame.Column, n int) FieldCounts {
	counts := make(map[string]int)
	var order []string
	unique := 0
	for i := 0; i < c.Len(); i++ {
		v := nullLabel
		null := c.IsNull(i)
		if !null {
			v = c.StringAt(i)
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
			if !null {
				unique++
			}
		}
		counts[v]++
	}

	top := make([]ValueCount, len(order))
	for i, v := range order {
		top[i] = ValueCount{Value: v, Freq: counts[v]}
	}
	// Insertion sort keeps ties in first-appearance order.
	for i := 1; i < len(top); i++ {
		for j := i; j > 0 && top[j].Freq > top[j-1].Freq; j-- {
			top[j], top[j-1] = top[j-1], top[j]
		}
	}
	if len(top) > n {
		top = top[:n]
	}
	for len(top) < n {
		top = append(top, ValueCount{Value: "-", Padding: true})
	}
	return FieldCounts{Field: c.Name(), Unique: unique, Top: top}
}

// Markdown renders one Cat/Freq column pair per field, with n_unique as the first row.
func (v *ValueCounts) Markdown() string {
	var b strings.Builder
	if len(v.Fields) == 0 {
		b.WriteString("(no columns to summarize)\n")
	} else {
		b.WriteString("| |")
		for _, f := range v.Fields {
			fmt.Fprintf(&b, " %s Cat | %s Freq |", safeVal(f.Field), safeVal(f.Field))
		}
		b.WriteString("\n|---|")
		for range v.Fields {
			b.WriteString("---|---:|")
		}
		b.WriteString("\n| n_unique |")
		for _, f := range v.Fields {
			fmt.Fprintf(&b, " n_unique | %d |", f.Unique)
		}
		b.WriteString("\n")
		for i := 0; i < v.N; i++ {
			fmt.Fprintf(&b, "| %d |", i+1)
			for _, f := range v.Fields {
				vc := f.Top[i]
				freq := "-"
				if !vc.Padding {
					freq = strconv.Itoa(vc.Freq)
				}
				fmt.Fprintf(&b, " %s | %s |", safeVal(vc.Value), freq)
			}
			b.WriteString("\n")
		}
	}
	if len(v.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range v.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}
