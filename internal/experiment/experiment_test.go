package experiment_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KaramelBytes/edakit/internal/experiment"
	"github.com/KaramelBytes/edakit/internal/frame"
)

type linearModel struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

func predictions() *frame.Table {
	return frame.MustNew(
		frame.NewInt64Column("id", []int64{1, 2}, nil),
		frame.NewFloat64Column("proba", []float64{0.25, 0.75}, nil),
	)
}

func TestOutputModelWritesNumberedFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	nb := filepath.Join(t.TempDir(), "analysis.ipynb")
	if err := os.WriteFile(nb, []byte(`{"cells": []}`), 0o644); err != nil {
		t.Fatal(err)
	}

	run, err := experiment.OutputModel(dir, linearModel{Weights: []float64{1, 2}, Bias: 0.5}, predictions(), experiment.Options{NotebookPath: nb, Note: "baseline"})
	if err != nil {
		t.Fatalf("output model: %v", err)
	}
	if run.Index != 1 || run.Model != "model_001.json" || run.Predictions != "predictions_001.csv" || run.Notebook != "notebook_001.ipynb" {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.ID == "" {
		t.Fatalf("expected run id")
	}
	if got := len(run.Files()); got != 3 {
		t.Fatalf("expected 3 files, got %d", got)
	}

	model, err := os.ReadFile(filepath.Join(dir, "model_001.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(model), `"bias": 0.5`) {
		t.Fatalf("model json missing bias: %s", model)
	}
	preds, err := os.ReadFile(filepath.Join(dir, "predictions_001.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(preds), "id,proba\n") {
		t.Fatalf("unexpected predictions csv: %q", preds)
	}
	copied, err := os.ReadFile(filepath.Join(dir, "notebook_001.ipynb"))
	if err != nil {
		t.Fatal(err)
	}
	if string(copied) != `{"cells": []}` {
		t.Fatalf("notebook not copied verbatim: %q", copied)
	}
}

func TestOutputModelTakesFirstFreeIndex(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"model_001.json", "model_003.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	run, err := experiment.OutputModel(dir, map[string]int{"k": 1}, predictions(), experiment.Options{})
	if err != nil {
		t.Fatalf("output model: %v", err)
	}
	if run.Index != 2 {
		t.Fatalf("expected index 2, got %d", run.Index)
	}
	run, err = experiment.OutputModel(dir, map[string]int{"k": 2}, predictions(), experiment.Options{})
	if err != nil {
		t.Fatalf("output model: %v", err)
	}
	if run.Index != 4 {
		t.Fatalf("expected index 4, got %d", run.Index)
	}

	runs, err := experiment.ListRuns(dir)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].Index != 2 || runs[1].Index != 4 {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestOutputModelWarnsWithoutNotebook(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	dir := t.TempDir()

	run, err := experiment.OutputModel(dir, 1, predictions(), experiment.Options{Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("output model: %v", err)
	}
	if run.Notebook != "" {
		t.Fatalf("expected no notebook, got %q", run.Notebook)
	}
	_, err = experiment.OutputModel(dir, 2, predictions(), experiment.Options{NotebookPath: filepath.Join(dir, "gone.ipynb"), Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("output model: %v", err)
	}
	if logs.Len() != 2 {
		t.Fatalf("expected 2 warnings, got %d", logs.Len())
	}
	if _, err := os.Stat(filepath.Join(dir, "notebook_002.ipynb")); !os.IsNotExist(err) {
		t.Fatalf("expected no notebook copy, stat err=%v", err)
	}
}

func TestOutputModelRemovesPartialOutputOnFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory passes the existence check but cannot be copied.
	nbDir := filepath.Join(t.TempDir(), "notebook.ipynb")
	if err := os.Mkdir(nbDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := experiment.OutputModel(dir, 1, predictions(), experiment.Options{NotebookPath: nbDir}); err == nil {
		t.Fatalf("expected notebook copy error")
	}
	for _, name := range []string{"model_001.json", "predictions_001.csv", "notebook_001.ipynb", "runs.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("%s left behind, stat err=%v", name, err)
		}
	}

	run, err := experiment.OutputModel(dir, 1, predictions(), experiment.Options{})
	if err != nil {
		t.Fatalf("output model: %v", err)
	}
	if run.Index != 1 {
		t.Fatalf("expected index 1 after failed attempt, got %d", run.Index)
	}
}

func TestOutputModelRemovesModelWhenIndexUnreadable(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "runs.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := experiment.OutputModel(dir, 1, predictions(), experiment.Options{}); err == nil {
		t.Fatalf("expected runs index error")
	}
	for _, name := range []string{"model_001.json", "predictions_001.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("%s left behind, stat err=%v", name, err)
		}
	}
}

func TestOutputModelTooManyModels(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 999; i++ {
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("model_%03d.json", i)), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	_, err := experiment.OutputModel(dir, 1, predictions(), experiment.Options{})
	if !errors.Is(err, experiment.ErrTooManyModels) {
		t.Fatalf("expected ErrTooManyModels, got %v", err)
	}
}

func TestOutputModelNilPredictions(t *testing.T) {
	if _, err := experiment.OutputModel(t.TempDir(), 1, nil, experiment.Options{}); err == nil {
		t.Fatalf("expected error for nil predictions")
	}
}

func TestListRunsEmptyAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	runs, err := experiment.ListRuns(dir)
	if err != nil || len(runs) != 0 {
		t.Fatalf("expected no runs, got %v, %v", runs, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "runs.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := experiment.ListRuns(dir); err == nil {
		t.Fatalf("expected parse error")
	}
}
