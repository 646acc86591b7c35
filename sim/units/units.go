// Package units converts between physical and lattice units for a flow with
// a characteristic length resolved by a fixed number of lattice spacings.
//
// The lattice spacing is dx = L/N and the time step dt = uMax·dx/U, so that
// the characteristic velocity U maps to the lattice velocity uMax.
package units

import (
	"fmt"
	"math"

	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim"
)

// Config describes the physical problem and its resolution.
type Config struct {
	CharLength         float64 `yaml:"char_length"`          // m
	CharVelocity       float64 `yaml:"char_velocity"`        // m/s
	Viscosity          float64 `yaml:"viscosity"`            // kinematic, m²/s
	Density            float64 `yaml:"density"`              // kg/m³
	Resolution         int     `yaml:"resolution"`           // lattice spacings per CharLength
	MaxLatticeVelocity float64 `yaml:"max_lattice_velocity"` // lattice velocity of CharVelocity
}

// Validate returns an error naming the first invalid field.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"char_length", c.CharLength},
		{"char_velocity", c.CharVelocity},
		{"viscosity", c.Viscosity},
		{"density", c.Density},
		{"max_lattice_velocity", c.MaxLatticeVelocity},
	}
	for _, p := range positive {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) || p.v <= 0 {
			return fmt.Errorf("units: %s must be a positive finite number, got %g", p.name, p.v)
		}
	}
	if c.Resolution < 1 {
		return fmt.Errorf("units: resolution must be at least 1, got %d", c.Resolution)
	}
	return nil
}

// PhysUnits implements sim.UnitConverter.
type PhysUnits struct {
	cfg  Config
	dx   float64
	dt   float64
	nuLB float64
}

var _ sim.UnitConverter = (*PhysUnits)(nil)

// New derives the lattice scales from cfg.
func New(cfg Config) (*PhysUnits, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrConfiguration, err)
	}
	dx := cfg.CharLength / float64(cfg.Resolution)
	dt := cfg.MaxLatticeVelocity * dx / cfg.CharVelocity
	return &PhysUnits{
		cfg:  cfg,
		dx:   dx,
		dt:   dt,
		nuLB: cfg.Viscosity * dt / (dx * dx),
	}, nil
}

func (u *PhysUnits) Config() Config { return u.cfg }

// Dx is the lattice spacing in metres.
func (u *PhysUnits) Dx() float64 { return u.dx }

// Dt is the lattice time step in seconds.
func (u *PhysUnits) Dt() float64 { return u.dt }

// LatticeViscosity is the kinematic viscosity in lattice units.
func (u *PhysUnits) LatticeViscosity() float64 { return u.nuLB }

// Tau is the BGK relaxation time 3ν + 1/2.
func (u *PhysUnits) Tau() float64 { return 3*u.nuLB + 0.5 }

// Omega is the relaxation frequency 1/Tau.
func (u *PhysUnits) Omega() float64 { return 1 / u.Tau() }

// Reynolds is U·L/ν.
func (u *PhysUnits) Reynolds() float64 {
	return u.cfg.CharVelocity * u.cfg.CharLength / u.cfg.Viscosity
}

// GridSize is the number of lattice sites spanning physical length l.
func (u *PhysUnits) GridSize(l float64) int { return int(math.Round(l / u.dx)) }

// LatticeSteps converts a physical duration to a step count, at least 1.
func (u *PhysUnits) LatticeSteps(seconds float64) int64 { return sim.StepsForInterval(u, seconds) }

// PressureToLattice converts a physical pressure (Pa) to lattice units.
func (u *PhysUnits) PressureToLattice(p float64) float64 {
	v := u.dx / u.dt
	return p / (u.cfg.Density * v * v)
}

// PressureDropToDensity is the lattice density difference producing the
// physical pressure drop dp, through p = cs² ρ.
func (u *PhysUnits) PressureDropToDensity(dp float64) float64 {
	return u.PressureToLattice(dp) / sim.CsSqr
}

func (u *PhysUnits) ToLatticeLength(l float64) float64   { return l / u.dx }
func (u *PhysUnits) ToLatticeTime(t float64) float64     { return t / u.dt }
func (u *PhysUnits) ToLatticeVelocity(v float64) float64 { return v * u.dt / u.dx }
func (u *PhysUnits) ToLatticeDensity(r float64) float64  { return r / u.cfg.Density }
func (u *PhysUnits) ToLatticeForce(f float64) float64    { return f / u.forceScale() }

func (u *PhysUnits) ToPhysLength(l float64) float64   { return l * u.dx }
func (u *PhysUnits) ToPhysTime(t float64) float64     { return t * u.dt }
func (u *PhysUnits) ToPhysVelocity(v float64) float64 { return v * u.dx / u.dt }
func (u *PhysUnits) ToPhysDensity(r float64) float64  { return r * u.cfg.Density }
func (u *PhysUnits) ToPhysForce(f float64) float64    { return f * u.forceScale() }

// forceScale is ρ·dx⁴/dt², the physical force of one lattice force unit.
func (u *PhysUnits) forceScale() float64 {
	dx2 := u.dx * u.dx
	return u.cfg.Density * dx2 * dx2 / (u.dt * u.dt)
}

// ChannelVelocity is the centreline velocity G·h²/(8μ) of plane Poiseuille
// flow of width h under the gradient G = dp/l.
func ChannelVelocity(dp, l, h, density, viscosity float64) float64 {
	return dp / l * h * h / (8 * density * viscosity)
}
