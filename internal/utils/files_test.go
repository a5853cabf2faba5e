package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/edakit/internal/utils"
)

func TestSafeWriteFileAndExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "runs.json")
	ok, err := utils.FileExists(p)
	if err != nil || ok {
		t.Fatalf("expected missing file, got ok=%v err=%v", ok, err)
	}
	if err := utils.SafeWriteFile(p, []byte("[]")); err != nil {
		t.Fatalf("write: %v", err)
	}
	ok, err = utils.FileExists(p)
	if err != nil || !ok {
		t.Fatalf("expected file to exist, got ok=%v err=%v", ok, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "analysis.ipynb")
	if err := os.WriteFile(src, []byte(`{"cells": []}`), 0o600); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "out", "notebook_001.ipynb")
	if err := utils.CopyFile(src, dst); err != nil {
		t.Fatalf("copy: %v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"cells": []}` {
		t.Fatalf("unexpected copy content: %q", b)
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "{\n  \"a\": 1\n}" {
		t.Fatalf("unexpected json: %q", b)
	}
}
