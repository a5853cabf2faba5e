package experiment

import "time"

// Run records one OutputModel call.
type Run struct {
	ID          string    `json:"id"`
	Index       int       `json:"index"`
	Model       string    `json:"model"`
	Predictions string    `json:"predictions"`
	Notebook    string    `json:"notebook,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Files lists the paths written for the run, relative to the model directory.
func (r *Run) Files() []string {
	files := []string{r.Model, r.Predictions}
	if r.Notebook != "" {
		files = append(files, r.Notebook)
	}
	return files
}
