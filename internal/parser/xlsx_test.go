package parser

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
)

const (
	workbookXML = `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Summary" sheetId="1" r:id="rId1"/><sheet name="Data" sheetId="2" r:id="rId2"/></sheets>
</workbook>`
	relsXML = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="worksheet" Target="/xl/worksheets/sheet2.xml"/>
</Relationships>`
	sharedXML = `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<si><t>plot</t></si><si><t>yield</t></si><si><t>A1</t></si><si><r><t>B</t></r><r><t>3</t></r></si><si><t>ok</t></si>
</sst>`
	sheet1XML = `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>total</t></is></c></row>
<row r="2"><c r="A2"><v>42</v></c></row>
</sheetData></worksheet>`
	sheet2XML = `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="s"><v>4</v></c></row>
<row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>12.5</v></c><c r="C2" t="b"><v>1</v></c></row>
<row r="3"><c r="A3" t="s"><v>3</v></c><c r="C3" t="b"><v>0</v></c></row>
</sheetData></worksheet>`
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := map[string]string{
		"xl/workbook.xml":            workbookXML,
		"xl/_rels/workbook.xml.rels": relsXML,
		"xl/sharedStrings.xml":       sharedXML,
		"xl/worksheets/sheet1.xml":   sheet1XML,
		"xl/worksheets/sheet2.xml":   sheet2XML,
	}
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestReadXLSXSheetSelection(t *testing.T) {
	data := buildWorkbook(t)

	first, err := ReadXLSX(data, Options{})
	if err != nil {
		t.Fatalf("read first sheet: %v", err)
	}
	if strings.Join(first.Names(), ",") != "total" || first.Len() != 1 {
		t.Fatalf("first sheet = %v rows=%d", first.Names(), first.Len())
	}

	byName, err := ReadXLSX(data, Options{Sheet: "data"})
	if err != nil {
		t.Fatalf("read named sheet: %v", err)
	}
	byIndex, err := ReadXLSX(data, Options{SheetIndex: 2})
	if err != nil {
		t.Fatalf("read indexed sheet: %v", err)
	}
	for _, tbl := range []interface{ Names() []string }{byName, byIndex} {
		if got := strings.Join(tbl.Names(), ","); got != "plot,yield,ok" {
			t.Fatalf("names = %s", got)
		}
	}

	plots, _ := byName.Strings("plot")
	if strings.Join(plots, ",") != "A1,B3" {
		t.Fatalf("plots = %v", plots)
	}
	y, _ := byName.Column("yield")
	if y.DataType().ID() != arrow.FLOAT64 || !y.IsNull(1) {
		t.Fatalf("yield type %s null=%v", y.DataType(), y.IsNull(1))
	}
	ok, _ := byName.Column("ok")
	if ok.DataType().ID() != arrow.BOOL {
		t.Fatalf("ok type = %s", ok.DataType())
	}
}

func TestReadXLSXMissingSheet(t *testing.T) {
	_, err := ReadXLSX(buildWorkbook(t), Options{Sheet: "Nope"})
	if err == nil || !strings.Contains(err.Error(), "Summary, Data") {
		t.Fatalf("expected sheet list in error, got %v", err)
	}
}

func TestReadFileXLSX(t *testing.T) {
	p := filepath.Join(t.TempDir(), "book.xlsx")
	if err := os.WriteFile(p, buildWorkbook(t), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := ReadFile(p, Options{Sheet: "Data"})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d", tbl.Len())
	}
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"styles.xml", "xl/styles.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.input); got != tt.expected {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestColIndexFromRef(t *testing.T) {
	for ref, want := range map[string]int{"A1": 0, "C12": 2, "Z3": 25, "AA7": 26, "ab2": 27, "": -1} {
		if got := colIndexFromRef(ref); got != want {
			t.Errorf("colIndexFromRef(%q) = %d, want %d", ref, got, want)
		}
	}
}
