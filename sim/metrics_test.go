package sim

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordStep_Accumulates(t *testing.T) {
	m := &Metrics{}

	m.recordStep(1000, 10, 2*time.Millisecond, 3)
	m.recordStep(1000, 10, 3*time.Millisecond, 4)

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.Iterations)
	assert.Equal(t, int64(20), s.EngineSteps)
	assert.Equal(t, int64(2000), s.SiteUpdates)
	assert.Equal(t, 5*time.Millisecond, s.ComputeTime)
	assert.Equal(t, 4, s.Particles, "particles reflect the last pull")
	assert.InDelta(t, 0.4, s.MLUPS(), 1e-12)
}

func TestMetrics_RecordOutput_SplitsFailures(t *testing.T) {
	m := &Metrics{}

	m.recordOutput(nil)
	m.recordOutput(errors.New("disk full"))
	m.recordOutput(nil)

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.Outputs)
	assert.Equal(t, int64(1), s.OutputFailures)
}

func TestMetricsSnapshot_MLUPS_ZeroTime(t *testing.T) {
	assert.Equal(t, 0.0, MetricsSnapshot{SiteUpdates: 100}.MLUPS())
}

func TestMetrics_ConcurrentReadersAndWriter(t *testing.T) {
	m := &Metrics{}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			m.recordStep(10, 1, time.Microsecond, 1)
			m.recordCoverage(int64(i))
			m.recordThroughput(float64(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s := m.Snapshot()
			assert.Equal(t, s.Iterations, s.EngineSteps)
		}
	}()
	wg.Wait()

	s := m.Snapshot()
	assert.Equal(t, int64(500), s.Iterations)
	assert.Equal(t, int64(499), s.CoveredSites)
	assert.Equal(t, 499.0, s.LastMLUPS)
}

func TestMetrics_Print_ReportsCounters(t *testing.T) {
	m := &Metrics{}
	m.recordStep(100, 5, time.Millisecond, 2)
	m.recordOutput(errors.New("x"))

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	m.Print()
	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "=== Simulation Metrics ==="))
	assert.Contains(t, text, "Engine Substeps      : 5")
	assert.Contains(t, text, "Output Failures      : 1")
}
