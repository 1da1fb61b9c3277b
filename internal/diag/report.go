package diag

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"lane-finder/internal/lane"
	"lane-finder/internal/pipeline"
)

// Report is the JSON summary of one lane-finder run.
type Report struct {
	RunID    string             `json:"run_id"`
	Input    string             `json:"input"`
	Config   string             `json:"config,omitempty"`
	Started  time.Time          `json:"started"`
	Finished time.Time          `json:"finished"`
	Stats    pipeline.Stats     `json:"stats"`
	Fallback int                `json:"window_fallbacks"` // Frames that needed a window search after the first
	Frames   []lane.FrameResult `json:"frames"`
}

// NewReport starts a report with a fresh run id.
func NewReport(input, configPath string) *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Input:   input,
		Config:  configPath,
		Started: time.Now().UTC(),
	}
}

// Add appends one frame result.
func (r *Report) Add(res lane.FrameResult) {
	if res.Index > 0 && (res.Left.Mode == lane.ModeWindow || res.Right.Mode == lane.ModeWindow) {
		r.Fallback++
	}
	r.Frames = append(r.Frames, res)
}

// Measured returns how many frames produced a measurement.
func (r *Report) Measured() int {
	n := 0
	for _, f := range r.Frames {
		if f.Measurement != nil {
			n++
		}
	}
	return n
}

// Finish stamps the end time and the pipeline counters.
func (r *Report) Finish(stats pipeline.Stats) {
	r.Finished = time.Now().UTC()
	r.Stats = stats
}

// Save writes the report as indented JSON.
func (r *Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
