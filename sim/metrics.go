// Tracks run-wide counters of a coupled simulation: iterations, engine
// substeps, lattice throughput and output failures.

package sim

import (
	"fmt"
	"sync"
	"time"
)

// Metrics aggregates statistics about a coupled run for live exposition and
// final reporting. It is safe for concurrent use: the clock writes it while
// a metrics endpoint may read it.
type Metrics struct {
	mu sync.Mutex

	iterations     int64         // completed lattice iterations
	engineSteps    int64         // engine substeps requested through Advance
	siteUpdates    int64         // collide-and-stream site updates
	computeTime    time.Duration // wall time spent inside Step
	outputFailures int64         // writer errors, never fatal
	outputs        int64         // successful writer calls
	particles      int           // particles in the last pull
	coveredSites   int64         // sites claimed by a particle in the last immerse
	lastMLUPS      float64
}

// MetricsSnapshot is a consistent copy of Metrics.
type MetricsSnapshot struct {
	Iterations     int64
	EngineSteps    int64
	SiteUpdates    int64
	ComputeTime    time.Duration
	OutputFailures int64
	Outputs        int64
	Particles      int
	CoveredSites   int64
	LastMLUPS      float64
}

func (m *Metrics) recordStep(sites int64, substeps int, d time.Duration, particles int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.iterations++
	m.engineSteps += int64(substeps)
	m.siteUpdates += sites
	m.computeTime += d
	m.particles = particles
}

func (m *Metrics) recordOutput(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.outputFailures++
		return
	}
	m.outputs++
}

func (m *Metrics) recordCoverage(sites int64) {
	m.mu.Lock()
	m.coveredSites = sites
	m.mu.Unlock()
}

func (m *Metrics) recordThroughput(mlups float64) {
	m.mu.Lock()
	m.lastMLUPS = mlups
	m.mu.Unlock()
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		Iterations:     m.iterations,
		EngineSteps:    m.engineSteps,
		SiteUpdates:    m.siteUpdates,
		ComputeTime:    m.computeTime,
		OutputFailures: m.outputFailures,
		Outputs:        m.outputs,
		Particles:      m.particles,
		CoveredSites:   m.coveredSites,
		LastMLUPS:      m.lastMLUPS,
	}
}

// MLUPS returns the mean throughput in million lattice updates per second.
func (s MetricsSnapshot) MLUPS() float64 {
	if s.ComputeTime <= 0 {
		return 0
	}
	return float64(s.SiteUpdates) / s.ComputeTime.Seconds() / 1e6
}

// Print displays aggregated metrics at the end of the run.
func (m *Metrics) Print() {
	s := m.Snapshot()
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Lattice Iterations   : %d\n", s.Iterations)
	fmt.Printf("Engine Substeps      : %d\n", s.EngineSteps)
	fmt.Printf("Particles            : %d\n", s.Particles)
	if s.Iterations > 0 {
		fmt.Printf("Compute Time         : %s\n", s.ComputeTime.Round(time.Millisecond))
		fmt.Printf("Mean Throughput      : %.2f MLU/s\n", s.MLUPS())
	}
	fmt.Printf("Outputs Written      : %d\n", s.Outputs)
	fmt.Printf("Output Failures      : %d\n", s.OutputFailures)
}
