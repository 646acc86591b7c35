package sim

import (
	"fmt"
	"runtime"

	"gonum.org/v1/gonum/floats"
)

// NoParticle is the ParticleID of a site not covered by any particle.
const NoParticle int64 = -1

// SiteAux is the per-site auxiliary record mirrored from the particle side.
// It is rewritten every iteration by the coupler and the collision step.
type SiteAux struct {
	SolidFraction    float64 // in [0,1]
	ParticleID       int64   // NoParticle when uncovered
	Force            Vec3    // hydrodynamic force on the owning particle (lattice units)
	BoundaryVelocity Vec3    // particle surface velocity at the site (lattice units)
}

func emptyAux() SiteAux { return SiteAux{ParticleID: NoParticle} }

// LatticeSite is a read-only copy of one site.
type LatticeSite struct {
	X, Y, Z     int
	Populations [Q]float64
	Aux         SiteAux
}

// LatticeConfig holds the already-validated scalars the lattice is built from.
type LatticeConfig struct {
	Nx, Ny, Nz int
	Periodic   [3]bool // per-axis periodicity
	Omega      float64 // relaxation frequency 1/tau
	Dynamics   string  // collision model kind, see DynamicsBGK / DynamicsImmersedBGK
	Workers    int     // number of x-slab partitions; <= 0 means GOMAXPROCS
}

// Validate rejects degenerate domains and unstable relaxation parameters.
func (c LatticeConfig) Validate() error {
	if c.Nx < 1 || c.Ny < 1 || c.Nz < 1 {
		return configErrorf("lattice extent must be positive, got %dx%dx%d", c.Nx, c.Ny, c.Nz)
	}
	if !(c.Omega > 0 && c.Omega < 2) {
		return configErrorf("omega must be in (0,2), got %g", c.Omega)
	}
	return nil
}

// Lattice is the discretised fluid state: D3Q19 populations and auxiliary
// records over an nx×ny×nz box, split into contiguous x-slab blocks that are
// processed by parallel workers.
type Lattice struct {
	nx, ny, nz int
	periodic   [3]bool
	dynamics   Dynamics
	blocks     []*block
	owner      []int // global x -> block index
	time       int64
}

// NewLattice allocates a lattice at rest with unit density. The collision
// model is resolved once here and kept for the lifetime of the lattice.
func NewLattice(cfg LatticeConfig) (*Lattice, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dyn, err := newDynamics(cfg.Dynamics, cfg.Omega)
	if err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, cfg.Nx)

	l := &Lattice{
		nx:       cfg.Nx,
		ny:       cfg.Ny,
		nz:       cfg.Nz,
		periodic: cfg.Periodic,
		dynamics: dyn,
		owner:    make([]int, cfg.Nx),
	}
	base, rem := cfg.Nx/workers, cfg.Nx%workers
	x0 := 0
	for id := 0; id < workers; id++ {
		width := base
		if id < rem {
			width++
		}
		l.blocks = append(l.blocks, newBlock(id, x0, width, cfg.Ny, cfg.Nz))
		for x := x0; x < x0+width; x++ {
			l.owner[x] = id
		}
		x0 += width
	}
	l.InitializeEquilibrium(func(x, y, z int) (float64, Vec3) { return 1, Vec3{} })
	return l, nil
}

func (l *Lattice) Dims() (nx, ny, nz int) { return l.nx, l.ny, l.nz }
func (l *Lattice) Periodic() [3]bool      { return l.periodic }
func (l *Lattice) Dynamics() Dynamics     { return l.dynamics }
func (l *Lattice) NumBlocks() int         { return len(l.blocks) }

// Time returns the number of completed collide-and-stream steps.
func (l *Lattice) Time() int64 { return l.time }

// Extent returns the lattice size along axis.
func (l *Lattice) Extent(axis int) int {
	return [3]int{l.nx, l.ny, l.nz}[axis]
}

// BoundingBox returns the box of valid site indices.
func (l *Lattice) BoundingBox() Box {
	return NewBox(0, l.nx-1, 0, l.ny-1, 0, l.nz-1)
}

// Profile gives the density and velocity to initialise a site with.
type Profile func(x, y, z int) (rho float64, u Vec3)

// InitializeEquilibrium sets every site to the equilibrium of profile.
func (l *Lattice) InitializeEquilibrium(profile Profile) {
	for _, b := range l.blocks {
		b.owned().Each(func(x, y, z int) {
			rho, u := profile(x, y, z)
			EquilibriumSet(b.pop(b.index(b.localX(x), y, z)), rho, u)
		})
	}
}

// PressureGradientProfile returns a resting profile whose density falls
// linearly from rhoHi at index 0 to rhoLo at index n-1 along axis.
func PressureGradientProfile(rhoHi, rhoLo float64, n, axis int) Profile {
	return func(x, y, z int) (float64, Vec3) {
		if n <= 1 {
			return rhoHi, Vec3{}
		}
		pos := [3]int{x, y, z}[axis]
		return rhoHi + (rhoLo-rhoHi)*float64(pos)/float64(n-1), Vec3{}
	}
}

// locate returns the block and local index owning global site (x,y,z).
func (l *Lattice) locate(x, y, z int) (*block, int, error) {
	if x < 0 || x >= l.nx || y < 0 || y >= l.ny || z < 0 || z >= l.nz {
		return nil, 0, fmt.Errorf("%w: site (%d,%d,%d) outside %dx%dx%d", ErrOutOfBounds, x, y, z, l.nx, l.ny, l.nz)
	}
	b := l.blocks[l.owner[x]]
	return b, b.index(b.localX(x), y, z), nil
}

func (l *Lattice) checkBox(box Box) error {
	if box.Empty() || !l.BoundingBox().ContainsBox(box) {
		return fmt.Errorf("%w: box %v not inside %v", ErrOutOfBounds, box, l.BoundingBox())
	}
	return nil
}

// Site returns a copy of the state of site (x,y,z).
func (l *Lattice) Site(x, y, z int) (LatticeSite, error) {
	b, idx, err := l.locate(x, y, z)
	if err != nil {
		return LatticeSite{}, err
	}
	s := LatticeSite{X: x, Y: y, Z: z, Aux: b.aux[idx]}
	copy(s.Populations[:], b.pop(idx))
	return s, nil
}

// gather applies read to every site of box, in Box.Each order.
func (l *Lattice) gather(box Box, read func(b *block, idx int)) error {
	if err := l.checkBox(box); err != nil {
		return err
	}
	box.Each(func(x, y, z int) {
		b := l.blocks[l.owner[x]]
		read(b, b.index(b.localX(x), y, z))
	})
	return nil
}

// Density returns the site densities over box.
func (l *Lattice) Density(box Box) ([]float64, error) {
	out := make([]float64, 0, box.Volume())
	err := l.gather(box, func(b *block, idx int) {
		rho, _ := Moments(b.pop(idx))
		out = append(out, rho)
	})
	return out, err
}

// Velocity returns the site velocities over box.
func (l *Lattice) Velocity(box Box) ([]Vec3, error) {
	out := make([]Vec3, 0, box.Volume())
	err := l.gather(box, func(b *block, idx int) {
		_, u := Moments(b.pop(idx))
		out = append(out, u)
	})
	return out, err
}

// Population returns population i over box.
func (l *Lattice) Population(i int, box Box) ([]float64, error) {
	if i < 0 || i >= Q {
		return nil, fmt.Errorf("%w: population index %d", ErrOutOfBounds, i)
	}
	out := make([]float64, 0, box.Volume())
	err := l.gather(box, func(b *block, idx int) {
		out = append(out, b.f[idx*Q+i])
	})
	return out, err
}

// AuxField names a scalar view of the auxiliary record.
type AuxField string

const (
	AuxSolidFraction AuxField = "solid_fraction"
	AuxParticleID    AuxField = "particle_id"
	AuxForceX        AuxField = "force_x"
	AuxForceY        AuxField = "force_y"
	AuxForceZ        AuxField = "force_z"
)

func (f AuxField) value(a *SiteAux) (float64, bool) {
	switch f {
	case AuxSolidFraction:
		return a.SolidFraction, true
	case AuxParticleID:
		return float64(a.ParticleID), true
	case AuxForceX:
		return a.Force[0], true
	case AuxForceY:
		return a.Force[1], true
	case AuxForceZ:
		return a.Force[2], true
	}
	return 0, false
}

// AuxField returns the named auxiliary scalar over box.
func (l *Lattice) AuxField(name AuxField, box Box) ([]float64, error) {
	if _, ok := name.value(&SiteAux{}); !ok {
		return nil, fmt.Errorf("unknown auxiliary field %q", name)
	}
	out := make([]float64, 0, box.Volume())
	err := l.gather(box, func(b *block, idx int) {
		v, _ := name.value(&b.aux[idx])
		out = append(out, v)
	})
	return out, err
}

// TotalMass returns the sum of all populations over the domain.
func (l *Lattice) TotalMass() float64 {
	partial := make([]float64, len(l.blocks))
	for i, b := range l.blocks {
		partial[i] = floats.Sum(b.ownedPopulations())
	}
	return floats.Sum(partial)
}
