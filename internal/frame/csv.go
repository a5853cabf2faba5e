package frame

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes a header row followed by every row. Nulls are written as
// empty cells and categorical columns are decoded to their text values.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.cols))
	for i := 0; i < t.rows; i++ {
		for j, c := range t.cols {
			if c.IsNull(i) {
				rec[j] = ""
				continue
			}
			rec[j] = c.StringAt(i)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Schema renders "name: dtype" lines, one per column.
func (t *Table) Schema() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = fmt.Sprintf("%s: %s", c.Name(), TypeName(c.DataType()))
	}
	return out
}
