package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/edakit/internal/frame"
)

// tableBuilder collects raw cells column by column and infers each column's
// kind once all rows are in.
type tableBuilder struct {
	names []string
	cells [][]string
	rows  int
	opt   Options
}

func newTableBuilder(header []string, opt Options) *tableBuilder {
	return &tableBuilder{names: columnNames(header), cells: make([][]string, len(header)), opt: opt}
}

func (b *tableBuilder) full() bool {
	return b.opt.MaxRows > 0 && b.rows >= b.opt.MaxRows
}

// add appends one record; short records are padded with empty cells and
// extra trailing cells are dropped.
func (b *tableBuilder) add(rec []string) {
	for j := range b.cells {
		v := ""
		if j < len(rec) {
			v = strings.TrimSpace(rec[j])
		}
		b.cells[j] = append(b.cells[j], v)
	}
	b.rows++
}

func (b *tableBuilder) table() (*frame.Table, error) {
	cols := make([]*frame.Column, len(b.names))
	for j, name := range b.names {
		cols[j] = inferColumn(name, b.cells[j], b.opt)
	}
	return frame.New(cols...)
}

// columnNames fills blank headers and suffixes duplicates (a, a.1, a.2).
func columnNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for n := seen[base]; ; n++ {
			if _, dup := seen[name]; !dup {
				break
			}
			name = fmt.Sprintf("%s.%d", base, n)
		}
		seen[base]++
		seen[name] = 1
		out[i] = name
	}
	return out
}

// inferColumn picks int64, then float64, then bool, then text. Empty cells
// are nulls and do not take part in the decision.
func inferColumn(name string, cells []string, opt Options) *frame.Column {
	valid := make([]bool, len(cells))
	nonEmpty := 0
	for i, v := range cells {
		if v != "" {
			valid[i] = true
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return frame.NewStringColumn(name, make([]string, len(cells)), valid)
	}
	if ints, ok := parseInts(cells, opt); ok {
		return frame.NewInt64Column(name, ints, valid)
	}
	if floats, ok := parseFloats(cells, opt); ok {
		return frame.NewFloat64Column(name, floats, valid)
	}
	if bools, ok := parseBools(cells); ok {
		return frame.NewBoolColumn(name, bools, valid)
	}
	return frame.NewStringColumn(name, cells, valid)
}

func parseInts(cells []string, opt Options) ([]int64, bool) {
	out := make([]int64, len(cells))
	for i, v := range cells {
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(stripThousands(v, opt), 10, 64)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func parseFloats(cells []string, opt Options) ([]float64, bool) {
	out := make([]float64, len(cells))
	for i, v := range cells {
		if v == "" {
			continue
		}
		x, ok := parseNumeric(v, opt)
		if !ok {
			return nil, false
		}
		out[i] = x
	}
	return out, true
}

func parseBools(cells []string) ([]bool, bool) {
	out := make([]bool, len(cells))
	for i, v := range cells {
		if v == "" {
			continue
		}
		switch strings.ToLower(v) {
		case "true":
			out[i] = true
		case "false":
		default:
			return nil, false
		}
	}
	return out, true
}

func stripThousands(s string, opt Options) string {
	if opt.ThousandsSeparator == 0 || opt.ThousandsSeparator == opt.DecimalSeparator {
		return s
	}
	return strings.ReplaceAll(s, string(opt.ThousandsSeparator), "")
}

// parseNumeric parses s honoring the configured decimal and thousands separators.
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.ReplaceAll(s, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	raw = stripThousands(raw, opt)
	if dec := opt.DecimalSeparator; dec != 0 && dec != '.' {
		if strings.ContainsRune(raw, '.') {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
