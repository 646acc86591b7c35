package sim

// Particle is the state of one rigid sphere as reported by the particle
// engine, in physical units. The engine owns it; the lattice only mirrors
// occupancy derived from it.
type Particle struct {
	ID              int64
	Position        Vec3
	Velocity        Vec3
	AngularVelocity Vec3
	Radius          float64
}

// ParticleLoad is the hydrodynamic load on one particle in physical units.
type ParticleLoad struct {
	ID     int64
	Force  Vec3
	Torque Vec3
}

// Variables every ParticleEngine understands through SetVariable.
const (
	EngineVarTimestep  = "t_step"  // float64, engine timestep in seconds
	EngineVarDumpSteps = "dmp_stp" // int, engine steps between particle dumps
	EngineVarDumpDir   = "dmp_dir" // string, directory for particle dumps
)

//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks ParticleEngine

// ParticleEngine is the discrete-particle side of the coupling. Every call is
// synchronous; an error from any of them ends the coupled run.
//
// Pull must report particles in the same order on every call. Push applies a
// load that stays in effect for the following Advance.
type ParticleEngine interface {
	LoadConfiguration(path string) error
	SetVariable(name string, value any) error
	Pull() ([]Particle, error)
	Push(id int64, force, torque Vec3) error
	Advance(n int) error
}
