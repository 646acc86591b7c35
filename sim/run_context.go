package sim

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RunContext is the state scoped to one coupled run: its identity, where it
// writes, and the logger every component reports through. It is created once
// per run and passed explicitly; nothing in the core keeps global run state.
type RunContext struct {
	RunID     string
	OutputDir string
	StartedAt time.Time
	Log       *logrus.Entry
}

// NewRunContext creates a context with a fresh run id whose logger tags
// every entry with that id.
func NewRunContext(outputDir string) *RunContext {
	id := uuid.NewString()
	return &RunContext{
		RunID:     id,
		OutputDir: outputDir,
		StartedAt: time.Now(),
		Log:       logrus.WithField("run_id", id),
	}
}

// OutputPath joins name onto the run's output directory.
func (rc *RunContext) OutputPath(name string) string {
	return filepath.Join(rc.OutputDir, name)
}

// Elapsed is the wall time since the run started.
func (rc *RunContext) Elapsed() time.Duration { return time.Since(rc.StartedAt) }
