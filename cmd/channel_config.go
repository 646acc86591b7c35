package cmd

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim"
	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim/units"
)

// ChannelConfig is the YAML description of a pressure-driven rectangular
// channel run. Lengths are in metres, times in seconds, pressure in Pa.
type ChannelConfig struct {
	Resolution         int             `yaml:"resolution"`    // lattice spacings across the channel height lz
	DeltaP             float64         `yaml:"delta_p"`       // imposed pressure drop over lx
	CharVelocity       float64         `yaml:"char_velocity"` // overrides the Poiseuille estimate when > 0
	MaxLatticeVelocity float64         `yaml:"max_lattice_velocity"`
	Channel            ChannelGeometry `yaml:"channel"`
	Fluid              FluidConfig     `yaml:"fluid"`
	Dynamics           string          `yaml:"dynamics"`
	Workers            int             `yaml:"workers"`
	Times              TimesConfig     `yaml:"times"`
	DEM                DEMConfig       `yaml:"dem"`
	Output             OutputConfig    `yaml:"output"`
	InitWithVelocity   bool            `yaml:"init_with_velocity"`
}

// ChannelGeometry is the channel extent; x is the flow direction.
type ChannelGeometry struct {
	Lx float64 `yaml:"lx"`
	Ly float64 `yaml:"ly"`
	Lz float64 `yaml:"lz"`
}

type FluidConfig struct {
	Density   float64 `yaml:"density"`   // kg/m³
	Viscosity float64 `yaml:"viscosity"` // kinematic, m²/s
}

// TimesConfig holds the run length and output intervals in physical time.
// A zero interval disables that output.
type TimesConfig struct {
	Max      float64 `yaml:"max"`
	Snapshot float64 `yaml:"snapshot"`
	Image    float64 `yaml:"image"`
	Dump     float64 `yaml:"dump"`
	Log      float64 `yaml:"log"`
}

type DEMConfig struct {
	Config   string `yaml:"config"`   // particle setup file
	Substeps int    `yaml:"substeps"` // engine steps per lattice step
}

type OutputConfig struct {
	Dir             string   `yaml:"dir"`
	ImageResolution int      `yaml:"image_resolution"`
	DumpPopulations []int    `yaml:"dump_populations"`
	DumpFields      []string `yaml:"dump_fields"`
}

// DefaultChannelConfig returns the rectangular channel showcase: a
// 0.8×0.2×0.2 m water channel resolved with 20 cells across its height.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		Resolution:         20,
		DeltaP:             0.01,
		MaxLatticeVelocity: 0.02,
		Channel:            ChannelGeometry{Lx: 0.8, Ly: 0.2, Lz: 0.2},
		Fluid:              FluidConfig{Density: 1000, Viscosity: 1e-3},
		Dynamics:           sim.DynamicsImmersedBGK,
		Times:              TimesConfig{Max: 5000, Snapshot: 1, Image: 100, Log: 0.02},
		DEM:                DEMConfig{Substeps: 10},
		Output:             OutputConfig{Dir: "out", ImageResolution: 600},
	}
}

// LoadChannelConfig reads path over the defaults.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadChannelConfig(path string) (ChannelConfig, error) {
	cfg := DefaultChannelConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading channel config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing channel config: %w", err)
	}
	return cfg, nil
}

func finitePositive(v float64) bool { return v > 0 && !math.IsInf(v, 0) }

// Validate checks that all fields are usable.
func (c ChannelConfig) Validate() error {
	if c.Resolution < 1 {
		return fmt.Errorf("resolution must be at least 1, got %d", c.Resolution)
	}
	if math.IsNaN(c.DeltaP) || math.IsInf(c.DeltaP, 0) || c.DeltaP < 0 {
		return fmt.Errorf("delta_p must be a non-negative number, got %g", c.DeltaP)
	}
	if c.DeltaP == 0 && !finitePositive(c.CharVelocity) {
		return fmt.Errorf("char_velocity must be positive when delta_p is 0")
	}
	for name, v := range map[string]float64{
		"channel.lx": c.Channel.Lx, "channel.ly": c.Channel.Ly, "channel.lz": c.Channel.Lz,
		"fluid.density": c.Fluid.Density, "fluid.viscosity": c.Fluid.Viscosity,
		"max_lattice_velocity": c.MaxLatticeVelocity, "times.max": c.Times.Max,
	} {
		if !finitePositive(v) {
			return fmt.Errorf("%s must be a positive number, got %g", name, v)
		}
	}
	for name, v := range map[string]float64{
		"times.snapshot": c.Times.Snapshot, "times.image": c.Times.Image,
		"times.dump": c.Times.Dump, "times.log": c.Times.Log,
	} {
		if math.IsNaN(v) || v < 0 {
			return fmt.Errorf("%s must be non-negative, got %g", name, v)
		}
	}
	if c.DEM.Config == "" {
		return fmt.Errorf("dem.config must name a particle setup file")
	}
	if c.DEM.Substeps < 1 {
		return fmt.Errorf("dem.substeps must be at least 1, got %d", c.DEM.Substeps)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	return nil
}

// RunSetup is a ChannelConfig converted to lattice units.
type RunSetup struct {
	Units       *units.PhysUnits
	Lattice     sim.LatticeConfig
	Boundary    sim.PressureBoundaryConfig
	Clock       sim.ClockConfig
	DeltaRho    float64
	DEMTimestep float64 // seconds per engine step
	DumpSteps   int     // engine steps between particle dumps
}

// stepsFor converts a physical output interval to lattice steps; 0 disables.
func stepsFor(u *units.PhysUnits, seconds float64) int64 {
	if seconds == 0 {
		return 0
	}
	return u.LatticeSteps(seconds)
}

// Derive converts the physical description into the scalars the core needs.
func (c ChannelConfig) Derive() (*RunSetup, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrConfiguration, err)
	}
	charU := c.CharVelocity
	if !(charU > 0) {
		// showcase estimate: gradient taken over lz, parabola width lx
		charU = units.ChannelVelocity(c.DeltaP, c.Channel.Lz, c.Channel.Lx, c.Fluid.Density, c.Fluid.Viscosity)
	}
	u, err := units.New(units.Config{
		CharLength:         c.Channel.Lz,
		CharVelocity:       charU,
		Viscosity:          c.Fluid.Viscosity,
		Density:            c.Fluid.Density,
		Resolution:         c.Resolution,
		MaxLatticeVelocity: c.MaxLatticeVelocity,
	})
	if err != nil {
		return nil, err
	}
	nx, ny, nz := u.GridSize(c.Channel.Lx), u.GridSize(c.Channel.Ly), u.GridSize(c.Channel.Lz)
	if nx < 3 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("%w: channel resolves to a degenerate %dx%dx%d lattice", sim.ErrConfiguration, nx, ny, nz)
	}

	deltaRho := u.PressureDropToDensity(c.DeltaP)
	rhoHi, rhoLo := 1.0, 1.0-deltaRho
	if !(rhoLo > 0) {
		return nil, fmt.Errorf("%w: delta_p %g Pa gives a non-positive outlet density %g", sim.ErrConfiguration, c.DeltaP, rhoLo)
	}

	fields := make([]sim.AuxField, len(c.Output.DumpFields))
	for i, f := range c.Output.DumpFields {
		fields[i] = sim.AuxField(f)
	}
	snapshotSteps := stepsFor(u, c.Times.Snapshot)
	setup := &RunSetup{
		Units: u,
		Lattice: sim.LatticeConfig{
			Nx: nx, Ny: ny, Nz: nz,
			Periodic: [3]bool{true, false, false},
			Omega:    u.Omega(),
			Dynamics: c.Dynamics,
			Workers:  c.Workers,
		},
		Boundary: sim.PressureBoundaryConfig{
			RhoHi:  rhoHi,
			RhoLo:  rhoLo,
			Inlet:  sim.NewBox(0, 0, 0, ny-1, 0, nz-1),
			Outlet: sim.NewBox(nx-1, nx-1, 0, ny-1, 0, nz-1),
			Axis:   0,
			Sign:   1,
		},
		Clock: sim.ClockConfig{
			MaxSteps:         u.LatticeSteps(c.Times.Max),
			DEMSubsteps:      c.DEM.Substeps,
			SnapshotEvery:    snapshotSteps,
			ImageEvery:       stepsFor(u, c.Times.Image),
			DumpEvery:        stepsFor(u, c.Times.Dump),
			LogEvery:         stepsFor(u, c.Times.Log),
			ImageResolution:  c.Output.ImageResolution,
			InitWithVelocity: c.InitWithVelocity,
			DumpPopulations:  c.Output.DumpPopulations,
			DumpFields:       fields,
		},
		DeltaRho:    deltaRho,
		DEMTimestep: u.Dt() / float64(c.DEM.Substeps),
		DumpSteps:   int(snapshotSteps) * c.DEM.Substeps,
	}
	if err := setup.Clock.Validate(); err != nil {
		return nil, err
	}
	return setup, nil
}

// ConfigureEngine loads the particle setup and sets the coupling variables.
func (s *RunSetup) ConfigureEngine(engine sim.ParticleEngine, configPath, dumpDir string) error {
	if err := engine.LoadConfiguration(configPath); err != nil {
		return err
	}
	vars := []struct {
		name  string
		value any
	}{
		{sim.EngineVarTimestep, s.DEMTimestep},
		{sim.EngineVarDumpSteps, s.DumpSteps},
		{sim.EngineVarDumpDir, dumpDir},
	}
	for _, v := range vars {
		if err := engine.SetVariable(v.name, v.value); err != nil {
			return fmt.Errorf("%w: setting %s: %v", sim.ErrConfiguration, v.name, err)
		}
	}
	return nil
}
