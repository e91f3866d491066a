package pkg

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hansbonini/psiotools/pkg/common"
)

// Report summarises one batch run. It is exported as YAML.
type Report struct {
	RunID     string          `yaml:"run_id"`
	Source    string          `yaml:"source"`
	OutputDir string          `yaml:"output_dir"`
	Started   time.Time       `yaml:"started"`
	Finished  time.Time       `yaml:"finished"`
	Processed int             `yaml:"processed"`
	Skipped   int             `yaml:"skipped"`
	Failed    int             `yaml:"failed"`
	Games     []GameResult    `yaml:"games"`
	MultiDisc []MultiDiscList `yaml:"multidisc,omitempty"`
}

// NewReport starts a report for a run over source.
func NewReport(source, outputDir string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Source:    source,
		OutputDir: outputDir,
		Started:   time.Now().UTC(),
	}
}

// Add records the outcome of one game.
func (r *Report) Add(result *GameResult) {
	switch result.Status {
	case StatusProcessed:
		r.Processed++
	case StatusSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
	r.Games = append(r.Games, *result)
}

// Finish stamps the end time of the run.
func (r *Report) Finish() {
	r.Finished = time.Now().UTC()
}

// Write exports the report into dir as run-<time>-<id>.yaml and returns the
// file path.
func (r *Report) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", common.WrapError(common.ErrFailedToWriteReport, err)
	}

	name := fmt.Sprintf("run-%s-%s.yaml", r.Started.Format("20060102-150405"), r.RunID[:8])
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", common.WrapError(common.ErrFailedToWriteReport, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return "", common.WrapError(common.ErrFailedToWriteReport, err)
	}
	if err := encoder.Close(); err != nil {
		return "", common.WrapError(common.ErrFailedToWriteReport, err)
	}

	common.LogInfo(common.InfoReportWritten, path)
	return path, nil
}
