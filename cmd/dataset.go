package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/KaramelBytes/edakit/internal/frame"
	"github.com/KaramelBytes/edakit/internal/logger"
	"github.com/KaramelBytes/edakit/internal/parser"
	"github.com/KaramelBytes/edakit/internal/utils"
)

// datasetFlags are the reader flags shared by every command that loads a file.
type datasetFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	maxRows    int
	sheetName  string
	sheetIndex int
}

func (d *datasetFlags) register(f *pflag.FlagSet) {
	f.StringVar(&d.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (from extension if omitted)")
	f.StringVar(&d.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	f.StringVar(&d.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	f.IntVar(&d.maxRows, "max-rows", 0, "maximum rows to load (0 = unlimited)")
	f.StringVar(&d.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	f.IntVar(&d.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (d *datasetFlags) options() (parser.Options, error) {
	opt := parser.Options{MaxRows: d.maxRows, Sheet: d.sheetName, SheetIndex: d.sheetIndex}
	switch d.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", d.delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(d.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", d.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(d.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", d.thousands)
	}
	return opt, nil
}

// load reads one dataset with the flag options.
func (d *datasetFlags) load(path string) (*frame.Table, error) {
	opt, err := d.options()
	if err != nil {
		return nil, err
	}
	t, err := parser.ReadFile(path, opt)
	if err != nil {
		return nil, err
	}
	if opt.MaxRows > 0 && t.Len() >= opt.MaxRows {
		logger.Warn("row limit reached, remaining rows ignored", zap.String("file", filepath.Base(path)), zap.Int("max_rows", opt.MaxRows))
	}
	return t, nil
}

// expandInputs resolves glob patterns and literal paths, dropping duplicates.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// emit writes text to path, or to the command output when path is empty.
func emit(cmd *cobra.Command, path, text string) error {
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
	return nil
}
