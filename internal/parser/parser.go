// Package parser loads tabular files into frame tables.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/edakit/internal/frame"
)

// ErrUnsupported indicates a format is not supported yet.
var ErrUnsupported = errors.New("unsupported dataset format")

// Options controls how files are read.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the extension (tab for .tsv, comma otherwise).
	Delimiter rune
	// Numeric parsing locale. If both are 0, cells are parsed as plain Go numbers.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// Sheet selects an xlsx sheet by name; SheetIndex (1-based) is used when empty.
	Sheet      string
	SheetIndex int
}

// Reader defines a dataset reader implementation.
type Reader interface {
	CanRead(filename string) bool
	Read(path string, opt Options) (*frame.Table, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ReadFile selects a reader based on filename and loads the table.
func ReadFile(path string, opt Options) (*frame.Table, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			t, err := r.Read(path, opt)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			return t, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
}

// Extensions lists the file extensions handled by the registered readers.
func Extensions() []string {
	var out []string
	for _, r := range registry {
		if e, ok := r.(interface{ extensions() []string }); ok {
			out = append(out, e.extensions()...)
		}
	}
	return out
}

func hasExt(filename string, exts ...string) bool {
	name := strings.ToLower(filename)
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}
