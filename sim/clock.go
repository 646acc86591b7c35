package sim

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim/trace"
)

// Phase is one stage of a coupled iteration, in execution order.
type Phase int

const (
	PhasePull Phase = iota
	PhaseImmerse
	PhaseOutput
	PhasePreBoundary
	PhaseCollideStream
	PhasePostBoundary
	PhaseExtractForces
	PhasePush
	PhaseAdvance
)

var phaseNames = [...]string{
	PhasePull:          "pull particle state",
	PhaseImmerse:       "immerse",
	PhaseOutput:        "output",
	PhasePreBoundary:   "pre-collision boundary",
	PhaseCollideStream: "collide and stream",
	PhasePostBoundary:  "post-collision boundary",
	PhaseExtractForces: "extract forces",
	PhasePush:          "push forces",
	PhaseAdvance:       "advance engine",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// ClockConfig holds the cadences of a coupled run, all in lattice steps.
// A cadence below 1 disables that output.
type ClockConfig struct {
	MaxSteps         int64
	DEMSubsteps      int // engine steps per lattice step
	SnapshotEvery    int64
	ImageEvery       int64
	DumpEvery        int64
	LogEvery         int64
	ImageResolution  int
	InitWithVelocity bool
	DumpPopulations  []int      // population indices dumped on the mid-x plane
	DumpFields       []AuxField // auxiliary fields dumped on the mid-x plane
}

// Validate checks the scalar settings.
func (c ClockConfig) Validate() error {
	if c.MaxSteps < 0 {
		return configErrorf("max steps must be non-negative, got %d", c.MaxSteps)
	}
	if c.DEMSubsteps < 1 {
		return configErrorf("dem substeps must be at least 1, got %d", c.DEMSubsteps)
	}
	for _, i := range c.DumpPopulations {
		if i < 0 || i >= Q {
			return configErrorf("dump population index %d outside [0,%d)", i, Q)
		}
	}
	for _, f := range c.DumpFields {
		if _, ok := f.value(&SiteAux{}); !ok {
			return configErrorf("unknown dump field %q", f)
		}
	}
	return nil
}

// Clock drives the lockstep exchange between the lattice and the particle
// engine. One lattice step always corresponds to DEMSubsteps engine steps;
// the two sides only meet at iteration boundaries.
type Clock struct {
	cfg      ClockConfig
	lattice  *Lattice
	boundary *PeriodicPressureBoundary // nil runs without a pressure drop
	coupler  *Coupler
	engine   ParticleEngine
	outputs  Outputs
	rc       *RunContext

	metrics *Metrics
	trace   *trace.SimulationTrace

	pulled      bool
	prevIDs     []int64
	engineSteps int64
}

// NewClock wires the components of a run. boundary may be nil.
func NewClock(cfg ClockConfig, l *Lattice, boundary *PeriodicPressureBoundary, coupler *Coupler,
	engine ParticleEngine, outputs Outputs, rc *RunContext) (*Clock, error) {
	if l == nil || coupler == nil || engine == nil || rc == nil {
		panic("NewClock: lattice, coupler, engine and run context must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Clock{
		cfg:      cfg,
		lattice:  l,
		boundary: boundary,
		coupler:  coupler,
		engine:   engine,
		outputs:  outputs,
		rc:       rc,
		metrics:  &Metrics{},
	}, nil
}

// SetTrace attaches a coupling trace; nil disables tracing.
func (c *Clock) SetTrace(st *trace.SimulationTrace) { c.trace = st }

// Metrics returns the live run counters.
func (c *Clock) Metrics() *Metrics { return c.metrics }

// EngineSteps is the number of engine substeps requested so far.
func (c *Clock) EngineSteps() int64 { return c.engineSteps }

func phaseError(iter int64, p Phase, err error) error {
	return fmt.Errorf("iteration %d: %s: %w", iter, p, err)
}

// Step runs one coupled iteration.
func (c *Clock) Step(iter int64) error {
	particles, err := c.engine.Pull()
	if err != nil {
		return phaseError(iter, PhasePull, fmt.Errorf("%w: %v", ErrCouplingProtocol, err))
	}
	if err := c.checkPull(particles); err != nil {
		return phaseError(iter, PhasePull, err)
	}

	if err := c.coupler.Immerse(particles, c.cfg.InitWithVelocity); err != nil {
		return phaseError(iter, PhaseImmerse, err)
	}
	covered := c.coveredSites()
	c.metrics.recordCoverage(covered)

	c.writeOutputs(iter)

	if c.boundary != nil {
		if err := c.boundary.PreColl(c.lattice); err != nil {
			return phaseError(iter, PhasePreBoundary, err)
		}
	}
	if err := c.lattice.CollideAndStream(); err != nil {
		return phaseError(iter, PhaseCollideStream, err)
	}
	if c.boundary != nil {
		if err := c.boundary.PostColl(c.lattice); err != nil {
			return phaseError(iter, PhasePostBoundary, err)
		}
	}

	loads, err := c.coupler.ExtractForces(particles)
	if err != nil {
		return phaseError(iter, PhaseExtractForces, err)
	}
	for _, ld := range loads {
		if err := c.engine.Push(ld.ID, ld.Force, ld.Torque); err != nil {
			return phaseError(iter, PhasePush, fmt.Errorf("%w: particle %d: %v", ErrCouplingProtocol, ld.ID, err))
		}
		if c.trace != nil {
			c.trace.RecordLoad(trace.LoadRecord{Iteration: iter, ParticleID: ld.ID, Force: ld.Force, Torque: ld.Torque})
		}
	}

	if err := c.engine.Advance(c.cfg.DEMSubsteps); err != nil {
		return phaseError(iter, PhaseAdvance, fmt.Errorf("%w: %v", ErrCouplingProtocol, err))
	}
	c.engineSteps += int64(c.cfg.DEMSubsteps)
	if c.trace != nil {
		c.trace.RecordStep(trace.StepRecord{Iteration: iter, Particles: len(particles), CoveredSites: covered, EngineSteps: c.engineSteps})
	}
	return nil
}

// Run executes MaxSteps iterations. The first error ends the run; there is
// no cancellation.
func (c *Clock) Run() error {
	nx, ny, nz := c.lattice.Dims()
	sites := int64(nx) * int64(ny) * int64(nz)
	c.rc.Log.WithFields(logrus.Fields{
		"steps":     c.cfg.MaxSteps,
		"substeps":  c.cfg.DEMSubsteps,
		"lattice":   fmt.Sprintf("%dx%dx%d", nx, ny, nz),
		"blocks":    c.lattice.NumBlocks(),
		"dynamics":  c.lattice.Dynamics().Kind(),
		"snapshots": c.cfg.SnapshotEvery,
	}).Info("starting coupled run")

	var windowSteps int64
	var windowTime time.Duration
	for iter := int64(0); iter < c.cfg.MaxSteps; iter++ {
		start := time.Now()
		if err := c.Step(iter); err != nil {
			return err
		}
		d := time.Since(start)
		c.metrics.recordStep(sites, c.cfg.DEMSubsteps, d, len(c.prevIDs))
		windowSteps++
		windowTime += d
		if c.cfg.LogEvery > 0 && (iter+1)%c.cfg.LogEvery == 0 {
			mlups := 0.0
			if windowTime > 0 {
				mlups = float64(windowSteps*sites) / windowTime.Seconds() / 1e6
			}
			c.metrics.recordThroughput(mlups)
			c.rc.Log.WithFields(logrus.Fields{
				"iteration": iter + 1,
				"mlups":     fmt.Sprintf("%.2f", mlups),
				"mass":      c.lattice.TotalMass(),
			}).Info("progress")
			windowSteps, windowTime = 0, 0
		}
	}
	c.rc.Log.WithField("elapsed", c.rc.Elapsed().Round(time.Millisecond)).Info("coupled run finished")
	return nil
}

// checkPull enforces that the engine reports the same distinct particles, in
// the same order, on every iteration.
func (c *Clock) checkPull(particles []Particle) error {
	if c.pulled {
		if len(particles) != len(c.prevIDs) {
			return couplingErrorf("particle count changed from %d to %d", len(c.prevIDs), len(particles))
		}
		for i, p := range particles {
			if p.ID != c.prevIDs[i] {
				return couplingErrorf("particle %d at position %d, previously %d", p.ID, i, c.prevIDs[i])
			}
		}
		return nil
	}
	if err := checkUniqueIDs(particles); err != nil {
		return err
	}
	c.pulled = true
	c.prevIDs = make([]int64, len(particles))
	for i, p := range particles {
		c.prevIDs[i] = p.ID
	}
	return nil
}

func (c *Clock) coveredSites() int64 {
	var n int64
	for _, b := range c.lattice.blocks {
		b.eachOwned(func(_, _, _, idx int) {
			if b.aux[idx].ParticleID != NoParticle {
				n++
			}
		})
	}
	return n
}

func due(iter, every int64) bool { return every > 0 && iter%every == 0 }

// writeOutputs runs the scheduled sinks. Failures are logged and counted but
// never stop the run.
func (c *Clock) writeOutputs(iter int64) {
	if c.outputs.Snapshot != nil && iter > 0 && due(iter, c.cfg.SnapshotEvery) {
		c.report(iter, "snapshot", c.outputs.Snapshot.WriteSnapshot(c.rc, c.snapshot(iter)))
	}
	if c.outputs.Image != nil && due(iter, c.cfg.ImageEvery) {
		c.report(iter, "slice image", c.outputs.Image.WriteSliceImage(c.rc, c.sliceImage(iter)))
	}
	if c.outputs.Dump != nil && due(iter, c.cfg.DumpEvery) {
		for _, d := range c.dumps(iter) {
			c.report(iter, "field dump "+d.Name, c.outputs.Dump.WriteFieldDump(c.rc, d))
		}
	}
}

func (c *Clock) report(iter int64, what string, err error) {
	c.metrics.recordOutput(err)
	if err != nil {
		c.rc.Log.WithFields(logrus.Fields{"iteration": iter, "output": what}).Warnf("output failed: %v", err)
	}
}

func (c *Clock) snapshot(iter int64) *FieldSnapshot {
	nx, ny, nz := c.lattice.Dims()
	box := c.lattice.BoundingBox()
	s := &FieldSnapshot{
		Iteration:     iter,
		Nx:            nx,
		Ny:            ny,
		Nz:            nz,
		Density:       make([]float64, 0, box.Volume()),
		Velocity:      make([]Vec3, 0, box.Volume()),
		SolidFraction: make([]float64, 0, box.Volume()),
		Force:         make([]Vec3, 0, box.Volume()),
		Scales:        ScalesFrom(c.coupler.units),
	}
	_ = c.lattice.gather(box, func(b *block, idx int) {
		rho, u := Moments(b.pop(idx))
		s.Density = append(s.Density, rho)
		s.Velocity = append(s.Velocity, u)
		s.SolidFraction = append(s.SolidFraction, b.aux[idx].SolidFraction)
		s.Force = append(s.Force, b.aux[idx].Force)
	})
	return s
}

func (c *Clock) sliceImage(iter int64) *SliceImage {
	nx, ny, nz := c.lattice.Dims()
	y := (ny - 1) / 2
	img := &SliceImage{Iteration: iter, Width: nx, Height: nz, Resolution: c.cfg.ImageResolution}
	img.Magnitude = make([]float64, nx*nz)
	for z := 0; z < nz; z++ {
		for x := 0; x < nx; x++ {
			b, idx, _ := c.lattice.locate(x, y, z)
			_, u := Moments(b.pop(idx))
			img.Magnitude[z*nx+x] = u.Norm()
		}
	}
	return img
}

func (c *Clock) dumps(iter int64) []*FieldDump {
	nx, ny, nz := c.lattice.Dims()
	slice := NewBox(nx/2, nx/2, 0, ny-1, 0, nz-1)
	var out []*FieldDump
	for _, i := range c.cfg.DumpPopulations {
		v, err := c.lattice.Population(i, slice)
		if err == nil {
			out = append(out, &FieldDump{Iteration: iter, Name: fmt.Sprintf("f%d", i), Slice: slice, Values: v})
		}
	}
	for _, f := range c.cfg.DumpFields {
		v, err := c.lattice.AuxField(f, slice)
		if err == nil {
			out = append(out, &FieldDump{Iteration: iter, Name: string(f), Slice: slice, Values: v})
		}
	}
	return out
}
