// Package dem provides a rigid-sphere particle engine for the coupled run.
// Particles fly freely under gravity and the hydrodynamic loads pushed by the
// lattice; contacts between particles are not resolved.
package dem

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim"
)

type sphere struct {
	id      int64
	pos     sim.Vec3
	vel     sim.Vec3
	omega   sim.Vec3
	radius  float64
	mass    float64
	inertia float64
	force   sim.Vec3
	torque  sim.Vec3
}

// Engine integrates sphere motion with semi-implicit Euler steps.
type Engine struct {
	cfg       *Config
	spheres   []*sphere
	byID      map[int64]*sphere
	timestep  float64
	dumpSteps int
	dumpDir   string
	steps     int64
	log       *logrus.Entry
}

var _ sim.ParticleEngine = (*Engine)(nil)

// New returns an engine with no particles loaded. log may be nil.
func New(log *logrus.Entry) *Engine {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{log: log.WithField("component", "dem"), byID: map[int64]*sphere{}}
}

// LoadConfiguration reads the particle setup at path and resets the engine.
func (e *Engine) LoadConfiguration(path string) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return fmt.Errorf("%w: %v", sim.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: particle config %s: %v", sim.ErrConfiguration, path, err)
	}
	e.cfg = cfg
	e.spheres = make([]*sphere, 0, len(cfg.Particles))
	e.byID = make(map[int64]*sphere, len(cfg.Particles))
	e.steps = 0
	for _, p := range cfg.Particles {
		mass := cfg.Density * 4.0 / 3.0 * math.Pi * p.Radius * p.Radius * p.Radius
		s := &sphere{
			id:      p.ID,
			pos:     p.Position,
			vel:     p.Velocity,
			omega:   p.AngularVelocity,
			radius:  p.Radius,
			mass:    mass,
			inertia: 0.4 * mass * p.Radius * p.Radius,
		}
		e.spheres = append(e.spheres, s)
		e.byID[s.id] = s
	}
	e.log.WithFields(logrus.Fields{"path": path, "particles": len(e.spheres)}).Info("particle configuration loaded")
	return nil
}

// SetVariable sets one of the well-known engine variables.
func (e *Engine) SetVariable(name string, value any) error {
	switch name {
	case sim.EngineVarTimestep:
		dt, ok := value.(float64)
		if !ok || !(dt > 0) || math.IsInf(dt, 0) {
			return fmt.Errorf("%s must be a positive float64, got %v", name, value)
		}
		e.timestep = dt
	case sim.EngineVarDumpSteps:
		var n int
		switch v := value.(type) {
		case int:
			n = v
		case int64:
			n = int(v)
		default:
			return fmt.Errorf("%s must be an integer, got %T", name, value)
		}
		if n < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", name, n)
		}
		e.dumpSteps = n
	case sim.EngineVarDumpDir:
		dir, ok := value.(string)
		if !ok || dir == "" {
			return fmt.Errorf("%s must be a non-empty string, got %v", name, value)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", name, err)
		}
		e.dumpDir = dir
	default:
		return fmt.Errorf("unknown engine variable %q", name)
	}
	return nil
}

// Pull reports every particle in configuration order.
func (e *Engine) Pull() ([]sim.Particle, error) {
	if e.cfg == nil {
		return nil, fmt.Errorf("no particle configuration loaded")
	}
	out := make([]sim.Particle, len(e.spheres))
	for i, s := range e.spheres {
		out[i] = sim.Particle{ID: s.id, Position: s.pos, Velocity: s.vel, AngularVelocity: s.omega, Radius: s.radius}
	}
	return out, nil
}

// Push replaces the external load on particle id.
func (e *Engine) Push(id int64, force, torque sim.Vec3) error {
	s, ok := e.byID[id]
	if !ok {
		return fmt.Errorf("unknown particle %d", id)
	}
	if !force.IsFinite() || !torque.IsFinite() {
		return fmt.Errorf("non-finite load on particle %d", id)
	}
	s.force, s.torque = force, torque
	return nil
}

// Advance runs n integration steps.
func (e *Engine) Advance(n int) error {
	if e.cfg == nil {
		return fmt.Errorf("no particle configuration loaded")
	}
	if !(e.timestep > 0) {
		return fmt.Errorf("%s not set", sim.EngineVarTimestep)
	}
	if n < 0 {
		return fmt.Errorf("negative step count %d", n)
	}
	g := sim.Vec3(e.cfg.Gravity)
	for i := 0; i < n; i++ {
		for _, s := range e.spheres {
			s.vel = s.vel.Add(s.force.Scale(1 / s.mass).Add(g).Scale(e.timestep))
			s.omega = s.omega.Add(s.torque.Scale(e.timestep / s.inertia))
			s.pos = s.pos.Add(s.vel.Scale(e.timestep))
			e.confine(s)
		}
		e.steps++
		if e.dumpSteps > 0 && e.dumpDir != "" && e.steps%int64(e.dumpSteps) == 0 {
			if err := e.dump(); err != nil {
				e.log.Warnf("particle dump at step %d failed: %v", e.steps, err)
			}
		}
	}
	return nil
}

// Steps is the number of integration steps taken since the last load.
func (e *Engine) Steps() int64 { return e.steps }

// confine wraps s across periodic faces and reflects it off the others.
func (e *Engine) confine(s *sphere) {
	d := e.cfg.Domain
	for a := 0; a < 3; a++ {
		lo, hi := d.Min[a], d.Max[a]
		if d.Periodic[a] {
			l := hi - lo
			s.pos[a] = lo + math.Mod(math.Mod(s.pos[a]-lo, l)+l, l)
			continue
		}
		switch {
		case s.pos[a] < lo:
			s.pos[a] = 2*lo - s.pos[a]
			s.vel[a] = -s.vel[a]
		case s.pos[a] > hi:
			s.pos[a] = 2*hi - s.pos[a]
			s.vel[a] = -s.vel[a]
		}
	}
}

var dumpColumns = []string{"id", "x", "y", "z", "vx", "vy", "vz", "radius", "fx", "fy", "fz"}

func (e *Engine) dump() error {
	path := filepath.Join(e.dumpDir, fmt.Sprintf("particles_%09d.csv", e.steps))
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(dumpColumns); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, s := range e.spheres {
		row := []string{
			strconv.FormatInt(s.id, 10),
			f(s.pos[0]), f(s.pos[1]), f(s.pos[2]),
			f(s.vel[0]), f(s.vel[1]), f(s.vel[2]),
			f(s.radius),
			f(s.force[0]), f(s.force[1]), f(s.force[2]),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
