// Package trace records the fluid/particle exchange of a coupled run for
// offline analysis. It stores pure data types and does not depend on sim/.
package trace

// LoadRecord is the hydrodynamic load pushed to one particle in one iteration,
// in physical units.
type LoadRecord struct {
	Iteration  int64
	ParticleID int64
	Force      [3]float64
	Torque     [3]float64
}

// StepRecord captures coupling bookkeeping for one lattice iteration.
type StepRecord struct {
	Iteration    int64
	Particles    int
	CoveredSites int64
	EngineSteps  int64 // cumulative engine substeps after this iteration
}
