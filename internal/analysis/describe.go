package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/edakit/internal/frame"
	"github.com/KaramelBytes/edakit/internal/utils"
)

// Options controls Describe.
type Options struct {
	// Name labels the report, typically the source file name.
	Name string
	// Rows is the row count of the source before any MaxRows limit; 0 means the table length.
	Rows int
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// TopValues caps the top values listed for categorical columns.
	TopValues int
	// GroupBy computes per-group summaries for the given column names.
	GroupBy []string
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for dataset description.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		TopValues:        8,
		Correlations:     true,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly description of a table.
type Report struct {
	Name      string
	Rows      int
	Processed int
	Memory    int64 // deep bytes of the described table
	Cols      []ColumnSummary
	Samples   [][]string
	Warnings  []string
	Groups    []GroupResult
	Corr      *CorrMatrix
}

// ColumnSummary captures kind and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|datetime|categorical|text|unknown
	DType   string
	NonNull int
	Missing int
	Unique  int
	Memory  int64
	// Categorical dtype: code width and lookup size
	CodeDType  string
	Categories int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues    []CategoryCount
	ExampleTexts []string
}

type CategoryCount struct {
	Value string
	Count int
}

// GroupResult captures aggregated metrics per group key.
type GroupResult struct {
	Key     string
	Size    int
	Metrics map[string]NumSummary // by column name
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
}

// Describe summarizes every column of t.
func Describe(t *frame.Table, opt Options) (*Report, error) {
	if t == nil {
		return nil, fmt.Errorf("describe: nil table")
	}
	for _, g := range opt.GroupBy {
		if !t.Has(g) {
			return nil, &frame.UnknownColumnError{Name: g}
		}
	}
	rep := &Report{Name: opt.Name, Rows: t.Len(), Processed: t.Len(), Memory: t.MemoryUsage(true)}
	if opt.Rows > t.Len() {
		rep.Rows = opt.Rows
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", rep.Processed, rep.Rows))
	}

	var numCols []string
	for _, c := range t.Columns() {
		s := summarize(c, opt)
		if s.Kind == "numeric" {
			numCols = append(numCols, c.Name())
		}
		rep.Cols = append(rep.Cols, s)
	}

	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 0
	}
	for i := 0; i < t.Len() && i < sampleRows; i++ {
		row := make([]string, t.NumColumns())
		for j, c := range t.Columns() {
			if !c.IsNull(i) {
				row[j] = c.StringAt(i)
			}
		}
		rep.Samples = append(rep.Samples, row)
	}

	if len(opt.GroupBy) > 0 {
		rep.Groups = groupBy(t, opt.GroupBy, numCols)
	}
	if opt.Correlations && len(numCols) >= 2 {
		m, err := Correlation(t, numCols...)
		if err != nil {
			return nil, err
		}
		rep.Corr = m
	}
	return rep, nil
}

func summarize(c *frame.Column, opt Options) ColumnSummary {
	s := ColumnSummary{Name: c.Name(), DType: frame.TypeName(c.DataType()), NonNull: c.Len() - c.NullN(), Missing: c.NullN(), Memory: c.MemoryUsage(true)}
	if dt, ok := c.DataType().(*arrow.DictionaryType); ok {
		s.CodeDType = frame.TypeName(dt.IndexType)
		s.Categories = len(c.Categories())
	}
	switch k := c.Kind(); {
	case k.IsNumeric():
		s.Kind = "numeric"
		numericStats(c, &s, opt)
	case k == frame.KindTime:
		s.Kind = "datetime"
	case k == frame.KindBool || k == frame.KindCategorical || k == frame.KindText:
		cats, order := tally(c)
		s.Unique = len(cats)
		// Text where every value is distinct reads better as examples.
		if k == frame.KindText && s.Unique == s.NonNull && s.NonNull > 1 {
			s.Kind = "text"
			for i := 0; i < len(order) && i < 3; i++ {
				s.ExampleTexts = append(s.ExampleTexts, order[i])
			}
			break
		}
		s.Kind = "categorical"
		s.TopValues = topCategories(cats, opt.TopValues)
	default:
		s.Kind = "unknown"
	}
	return s
}

// numericStats fills min/max/mean/std (sample std) and MAD outliers.
func numericStats(c *frame.Column, s *ColumnSummary, opt Options) {
	vals := make([]float64, 0, c.Len()-c.NullN())
	for i := 0; i < c.Len(); i++ {
		if x, ok := c.Float64At(i); ok && !math.IsNaN(x) {
			vals = append(vals, x)
		}
	}
	if len(vals) == 0 {
		s.Min, s.Max = math.NaN(), math.NaN()
		s.Mean, s.Std = math.NaN(), math.NaN()
		return
	}
	s.Min, s.Max = floats.Min(vals), floats.Max(vals)
	if len(vals) > 1 {
		s.Mean, s.Std = stat.MeanStdDev(vals, nil)
	} else {
		s.Mean = vals[0]
	}
	s.Unique = countDistinct(vals)
	if !opt.Outliers || len(vals) < 8 {
		return
	}
	thr := opt.OutlierThreshold
	if thr <= 0 {
		thr = 3.5
	}
	s.OutlierThreshold = thr
	median, err := stats.Median(vals)
	if err != nil {
		return
	}
	mad, err := stats.MedianAbsoluteDeviation(vals)
	if err != nil || mad == 0 {
		return
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			s.OutliersCount++
		}
		if az > s.OutliersMaxAbsZ {
			s.OutliersMaxAbsZ = az
		}
	}
}

func countDistinct(vals []float64) int {
	seen := make(map[float64]struct{}, len(vals))
	for _, v := range vals {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// tally counts non-null values, returning the counts and first-appearance order.
func tally(c *frame.Column) (map[string]int, []string) {
	cats := make(map[string]int)
	var order []string
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := c.StringAt(i)
		if _, ok := cats[v]; !ok {
			order = append(order, v)
		}
		cats[v]++
	}
	return cats, order
}

func topCategories(cats map[string]int, limit int) []CategoryCount {
	if limit <= 0 {
		limit = 8
	}
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

func groupBy(t *frame.Table, keys []string, numCols []string) []GroupResult {
	type gAcc struct {
		size int
		sum  map[string]float64
		cnt  map[string]int
		min  map[string]float64
		max  map[string]float64
	}
	keyCols := make([]*frame.Column, len(keys))
	for i, k := range keys {
		keyCols[i], _ = t.Column(k)
	}
	numVals := make(map[string][]float64, len(numCols))
	for _, name := range numCols {
		numVals[name], _ = t.Float64s(name)
	}

	groups := map[string]*gAcc{}
	for i := 0; i < t.Len(); i++ {
		parts := make([]string, len(keyCols))
		for j, c := range keyCols {
			parts[j] = fmt.Sprintf("%s=%s", c.Name(), safeVal(c.StringAt(i)))
		}
		gkey := strings.Join(parts, " | ")
		ga := groups[gkey]
		if ga == nil {
			ga = &gAcc{sum: map[string]float64{}, cnt: map[string]int{}, min: map[string]float64{}, max: map[string]float64{}}
			groups[gkey] = ga
		}
		ga.size++
		for _, name := range numCols {
			x := numVals[name][i]
			if math.IsNaN(x) {
				continue
			}
			ga.sum[name] += x
			ga.cnt[name]++
			if _, ok := ga.min[name]; !ok || x < ga.min[name] {
				ga.min[name] = x
			}
			if _, ok := ga.max[name]; !ok || x > ga.max[name] {
				ga.max[name] = x
			}
		}
	}

	out := make([]GroupResult, 0, len(groups))
	for k, ga := range groups {
		gr := GroupResult{Key: k, Size: ga.size, Metrics: map[string]NumSummary{}}
		for _, name := range numCols {
			if ga.cnt[name] == 0 {
				continue
			}
			gr.Metrics[name] = NumSummary{Count: ga.cnt[name], Min: ga.min[name], Max: ga.max[name], Mean: ga.sum[name] / float64(ga.cnt[name])}
		}
		out = append(out, gr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size == out[j].Size {
			return out[i].Key < out[j].Key
		}
		return out[i].Size > out[j].Size
	})
	if len(out) > 20 {
		out = out[:20]
	}
	return out
}

// Markdown renders the report as sections of markdown tables, one table per
// column kind, so dtypes and categorical code widths line up for comparison.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", r.Name)
	}
	if r.Processed > 0 && r.Processed < r.Rows {
		fmt.Fprintf(&b, "Rows: ~%d (processed %d)\n", r.Rows, r.Processed)
	} else {
		fmt.Fprintf(&b, "Rows: %d\n", r.Rows)
	}
	fmt.Fprintf(&b, "Columns: %d\n", len(r.Cols))
	fmt.Fprintf(&b, "Memory: %.4f MB\n", utils.MegaBytes(r.Memory))

	rows := make([][]string, 0, len(r.Cols))
	var numeric, categorical, text []ColumnSummary
	for _, c := range r.Cols {
		rows = append(rows, []string{safeName(c.Name), c.DType, c.Kind, strconv.Itoa(c.NonNull), fmt.Sprintf("%.1f%%", missingPct(c)), strconv.FormatInt(c.Memory, 10)})
		switch c.Kind {
		case "numeric":
			numeric = append(numeric, c)
		case "categorical":
			categorical = append(categorical, c)
		case "text":
			text = append(text, c)
		}
	}
	b.WriteString("\n[SCHEMA]\n")
	writeTable(&b, []string{"column", "dtype", "kind", "non-null", "missing", "bytes"}, rows)

	if len(numeric) > 0 {
		rows = rows[:0]
		for _, c := range numeric {
			if c.NonNull == 0 {
				rows = append(rows, []string{safeName(c.Name), "-", "-", "-", "-", "-"})
				continue
			}
			out := "-"
			if c.OutlierThreshold > 0 {
				out = fmt.Sprintf("%d over z %.1f", c.OutliersCount, c.OutlierThreshold)
				if c.OutliersMaxAbsZ > 0 {
					out += fmt.Sprintf(" (max %.2f)", c.OutliersMaxAbsZ)
				}
			}
			rows = append(rows, []string{safeName(c.Name), num(c.Min), num(c.Max), num(c.Mean), num(c.Std), out})
		}
		b.WriteString("\n[NUMERIC COLUMNS]\n")
		writeTable(&b, []string{"column", "min", "max", "mean", "std", "robust outliers"}, rows)
	}

	if len(categorical) > 0 {
		b.WriteString("\n[CATEGORICAL COLUMNS]\n")
		for _, c := range categorical {
			fmt.Fprintf(&b, "- %s: %d unique", safeName(c.Name), c.Unique)
			if c.CodeDType != "" {
				fmt.Fprintf(&b, ", %s codes over %d categories", c.CodeDType, c.Categories)
			}
			for i, kv := range c.TopValues {
				sep := "; "
				if i > 0 {
					sep = ", "
				}
				fmt.Fprintf(&b, "%s%s=%d", sep, safeVal(kv.Value), kv.Count)
			}
			b.WriteString("\n")
		}
	}
	if len(text) > 0 {
		b.WriteString("\n[TEXT COLUMNS]\n")
		for _, c := range text {
			ex := make([]string, len(c.ExampleTexts))
			for i, e := range c.ExampleTexts {
				ex[i] = strconv.Quote(safeVal(e))
			}
			fmt.Fprintf(&b, "- %s: %s\n", safeName(c.Name), strings.Join(ex, ", "))
		}
	}

	if len(r.Groups) > 0 {
		var metrics []string
		for _, c := range numeric {
			metrics = append(metrics, c.Name)
		}
		if len(metrics) > 6 {
			metrics = metrics[:6]
		}
		header := append([]string{"group", "n"}, metrics...)
		rows = rows[:0]
		for _, g := range r.Groups {
			row := []string{safeVal(g.Key), strconv.Itoa(g.Size)}
			for _, name := range metrics {
				if m, ok := g.Metrics[name]; ok {
					row = append(row, fmt.Sprintf("%s [%s, %s]", num(m.Mean), num(m.Min), num(m.Max)))
				} else {
					row = append(row, "-")
				}
			}
			rows = append(rows, row)
		}
		b.WriteString("\n[GROUP-BY SUMMARY]\n")
		b.WriteString("mean [min, max] per group\n")
		writeTable(&b, header, rows)
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		pairs := r.Corr.Pairs()
		sort.SliceStable(pairs, func(i, j int) bool { return math.Abs(pairs[i].R) > math.Abs(pairs[j].R) })
		if len(pairs) > 10 {
			pairs = pairs[:10]
		}
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range pairs {
			fmt.Fprintf(&b, "- %s ~ %s: r=%.3f\n", p.A, p.B, p.R)
		}
	}

	if len(r.Samples) > 0 {
		header := make([]string, len(r.Cols))
		for i, c := range r.Cols {
			header[i] = safeName(c.Name)
		}
		rows = rows[:0]
		for _, sample := range r.Samples {
			row := make([]string, len(r.Cols))
			for i := range row {
				if i < len(sample) {
					row[i] = clip(sample[i], 80)
				}
			}
			rows = append(rows, row)
		}
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		writeTable(&b, header, rows)
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

// writeTable emits a markdown table; cells are escaped for pipes and newlines.
func writeTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n|")
	b.WriteString(strings.Repeat("---|", len(header)))
	b.WriteString("\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = safeVal(v)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

func missingPct(c ColumnSummary) float64 {
	total := c.NonNull + c.Missing
	if total == 0 {
		return 0
	}
	return float64(c.Missing) * 100 / float64(total)
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', 4, 64) }

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
