// Package experiment saves numbered model outputs: the serialized model,
// its predictions and a copy of the notebook that produced them, plus a
// runs.json index of every output in the directory.
package experiment

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/edakit/internal/frame"
	"github.com/KaramelBytes/edakit/internal/utils"
)

const (
	runsFileName = "runs.json"
	maxIndex     = 999
)

// ErrTooManyModels is returned when model_001 through model_999 all exist.
var ErrTooManyModels = errors.New("more than 999 models in folder")

// Options controls OutputModel.
type Options struct {
	// NotebookPath is copied next to the model. Empty skips the copy.
	NotebookPath string
	// Note is stored with the run.
	Note string
	// Logger receives warnings; nil discards them.
	Logger *zap.Logger
}

// index is the on-disk runs.json layout.
type index struct {
	Runs []*Run `json:"runs"`
}

// OutputModel writes model_NNN.json, predictions_NNN.csv and
// notebook_NNN<ext> for the first NNN in 001..999 without a model file.
func OutputModel(dir string, model any, predictions *frame.Table, opt Options) (*Run, error) {
	if predictions == nil {
		return nil, errors.New("predictions table is nil")
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}

	idx, err := nextIndex(dir)
	if err != nil {
		return nil, err
	}
	run := &Run{
		ID:          uuid.NewString(),
		Index:       idx,
		Model:       fmt.Sprintf("model_%03d.json", idx),
		Predictions: fmt.Sprintf("predictions_%03d.csv", idx),
		Note:        opt.Note,
		CreatedAt:   time.Now(),
	}

	data, err := utils.PrettyJSON(model)
	if err != nil {
		return nil, fmt.Errorf("serialize model: %w", err)
	}

	// The model file claims the index, so it is written after its companions
	// and everything written is removed again when a later step fails.
	var written []string
	fail := func(err error) (*Run, error) {
		for _, name := range written {
			if rmErr := os.Remove(filepath.Join(dir, name)); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				log.Warn("could not remove partial output", zap.String("file", name), zap.Error(rmErr))
			}
		}
		return nil, err
	}

	var buf bytes.Buffer
	if err := predictions.WriteCSV(&buf); err != nil {
		return nil, fmt.Errorf("write predictions: %w", err)
	}
	written = append(written, run.Predictions)
	if err := utils.SafeWriteFile(filepath.Join(dir, run.Predictions), buf.Bytes()); err != nil {
		return fail(fmt.Errorf("write predictions: %w", err))
	}

	switch nb := opt.NotebookPath; {
	case nb == "":
		log.Warn("notebook path not given, skipping notebook copy", zap.Int("index", idx))
	default:
		ok, err := utils.FileExists(nb)
		if err != nil {
			return fail(fmt.Errorf("stat notebook: %w", err))
		}
		if !ok {
			log.Warn("notebook not found, skipping notebook copy", zap.String("path", nb), zap.Int("index", idx))
			break
		}
		name := fmt.Sprintf("notebook_%03d%s", idx, filepath.Ext(nb))
		written = append(written, name)
		if err := utils.CopyFile(nb, filepath.Join(dir, name)); err != nil {
			return fail(fmt.Errorf("copy notebook: %w", err))
		}
		run.Notebook = name
	}

	written = append(written, run.Model)
	if err := utils.SafeWriteFile(filepath.Join(dir, run.Model), data); err != nil {
		return fail(fmt.Errorf("write model: %w", err))
	}
	if err := appendRun(dir, run); err != nil {
		return fail(err)
	}
	log.Info("model output written", zap.String("dir", dir), zap.Int("index", idx), zap.String("id", run.ID))
	return run, nil
}

func nextIndex(dir string) (int, error) {
	for i := 1; i <= maxIndex; i++ {
		ok, err := utils.FileExists(filepath.Join(dir, fmt.Sprintf("model_%03d.json", i)))
		if err != nil {
			return 0, fmt.Errorf("stat model: %w", err)
		}
		if !ok {
			return i, nil
		}
	}
	return 0, ErrTooManyModels
}

// ListRuns reads the runs recorded in dir. A directory without runs.json
// has no runs.
func ListRuns(dir string) ([]*Run, error) {
	idx, err := loadIndex(dir)
	if err != nil {
		return nil, err
	}
	return idx.Runs, nil
}

func loadIndex(dir string) (*index, error) {
	b, err := os.ReadFile(filepath.Join(dir, runsFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &index{}, nil
		}
		return nil, fmt.Errorf("read runs: %w", err)
	}
	var idx index
	if err := json.Unmarshal(b, &idx); err != nil {
		return nil, fmt.Errorf("parse runs: %w", err)
	}
	return &idx, nil
}

func appendRun(dir string, run *Run) error {
	idx, err := loadIndex(dir)
	if err != nil {
		return err
	}
	idx.Runs = append(idx.Runs, run)
	data, err := utils.PrettyJSON(idx)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(dir, runsFileName), data)
}
