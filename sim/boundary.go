package sim

import (
	"fmt"
	"math"
)

// PressureBoundaryConfig describes an imposed density drop along a periodic
// flow axis.
type PressureBoundaryConfig struct {
	RhoHi  float64 // density pinned in the inlet layer
	RhoLo  float64 // density pinned in the outlet layer
	Inlet  Box
	Outlet Box
	Axis   int // flow axis: 0, 1 or 2
	Sign   int // +1 when the flow runs towards increasing index along Axis
}

type boundaryPhase int

const (
	phaseIdle boundaryPhase = iota
	phasePreCorrected
	phaseCollided
	phasePostCorrected
)

func (p boundaryPhase) String() string {
	switch p {
	case phasePreCorrected:
		return "pre-corrected"
	case phaseCollided:
		return "collided"
	case phasePostCorrected:
		return "post-corrected"
	}
	return "idle"
}

// PeriodicPressureBoundary emulates an open channel with a prescribed density
// drop inside a domain that stays periodic for streaming. Before collision
// the inlet and outlet layers are rebuilt from the adjacent interior plane
// around the target densities; after streaming they are re-centred so their
// densities equal RhoHi and RhoLo exactly.
type PeriodicPressureBoundary struct {
	cfg          PressureBoundaryConfig
	inletSample  int // plane index along Axis sampled for the inlet layer
	outletSample int
	phase        boundaryPhase
	preTime      int64
}

// NewPeriodicPressureBoundary validates cfg against the lattice geometry.
func NewPeriodicPressureBoundary(l *Lattice, cfg PressureBoundaryConfig) (*PeriodicPressureBoundary, error) {
	if cfg.Axis < 0 || cfg.Axis > 2 {
		return nil, configErrorf("pressure boundary: flow axis must be 0, 1 or 2, got %d", cfg.Axis)
	}
	if cfg.Sign != 1 && cfg.Sign != -1 {
		return nil, configErrorf("pressure boundary: flow sign must be +1 or -1, got %d", cfg.Sign)
	}
	for name, rho := range map[string]float64{"rho_hi": cfg.RhoHi, "rho_lo": cfg.RhoLo} {
		if math.IsNaN(rho) || math.IsInf(rho, 0) || rho <= 0 {
			return nil, configErrorf("pressure boundary: %s must be a positive finite density, got %g", name, rho)
		}
	}
	bounds := l.BoundingBox()
	for name, box := range map[string]Box{"inlet": cfg.Inlet, "outlet": cfg.Outlet} {
		if box.Empty() || !bounds.ContainsBox(box) {
			return nil, configErrorf("pressure boundary: %s box %v must be non-empty and inside %v", name, box, bounds)
		}
	}
	if !cfg.Inlet.Intersect(cfg.Outlet).Empty() {
		return nil, configErrorf("pressure boundary: inlet %v and outlet %v overlap", cfg.Inlet, cfg.Outlet)
	}

	a := cfg.Axis
	p := &PeriodicPressureBoundary{cfg: cfg}
	if cfg.Sign > 0 {
		if cfg.Inlet.Max[a] >= cfg.Outlet.Min[a] {
			return nil, configErrorf("pressure boundary: inlet must lie upstream of outlet along axis %d", a)
		}
		p.inletSample, p.outletSample = cfg.Inlet.Max[a]+1, cfg.Outlet.Min[a]-1
	} else {
		if cfg.Inlet.Min[a] <= cfg.Outlet.Max[a] {
			return nil, configErrorf("pressure boundary: inlet must lie upstream of outlet along axis %d", a)
		}
		p.inletSample, p.outletSample = cfg.Inlet.Min[a]-1, cfg.Outlet.Max[a]+1
	}
	for name, s := range map[string]struct {
		box   Box
		plane int
	}{"inlet": {cfg.Inlet, p.inletSample}, "outlet": {cfg.Outlet, p.outletSample}} {
		sample := s.box
		sample.Min[a], sample.Max[a] = s.plane, s.plane
		if !bounds.ContainsBox(sample) || !sample.Intersect(cfg.Inlet).Empty() || !sample.Intersect(cfg.Outlet).Empty() {
			return nil, configErrorf("pressure boundary: %s layer leaves no interior sample plane (plane %d)", name, s.plane)
		}
	}
	return p, nil
}

// Config returns the boundary configuration.
func (p *PeriodicPressureBoundary) Config() PressureBoundaryConfig { return p.cfg }

// Phase reports the position in the Idle → PreCorrected → Collided →
// PostCorrected cycle.
func (p *PeriodicPressureBoundary) Phase() string { return p.phase.String() }

// DeltaRho returns RhoHi - RhoLo.
func (p *PeriodicPressureBoundary) DeltaRho() float64 { return p.cfg.RhoHi - p.cfg.RhoLo }

func (p *PeriodicPressureBoundary) noop() bool { return p.cfg.RhoHi == p.cfg.RhoLo }

// PreColl rebuilds the boundary layers before collision. Each layer site takes
// the non-equilibrium part of its interior neighbour on top of the equilibrium
// at the target density and the neighbour's velocity.
func (p *PeriodicPressureBoundary) PreColl(l *Lattice) error {
	if p.phase != phaseIdle && p.phase != phasePostCorrected {
		return fmt.Errorf("%w: PreColl in phase %s", ErrBoundaryOrder, p.phase)
	}
	if !p.noop() {
		if err := p.apply(l, func(b *block) {
			p.extrapolate(l, b, p.cfg.Inlet, p.inletSample, p.cfg.RhoHi)
			p.extrapolate(l, b, p.cfg.Outlet, p.outletSample, p.cfg.RhoLo)
		}); err != nil {
			return err
		}
	}
	p.phase = phasePreCorrected
	p.preTime = l.Time()
	return nil
}

// PostColl pins the boundary layer densities after collide-and-stream.
// Calling it again before the next PreColl leaves the lattice unchanged.
func (p *PeriodicPressureBoundary) PostColl(l *Lattice) error {
	switch p.phase {
	case phasePreCorrected:
		if l.Time() == p.preTime {
			return fmt.Errorf("%w: PostColl before collide-and-stream", ErrBoundaryOrder)
		}
		p.phase = phaseCollided
	case phasePostCorrected:
	default:
		return fmt.Errorf("%w: PostColl in phase %s", ErrBoundaryOrder, p.phase)
	}
	if !p.noop() {
		if err := p.apply(l, func(b *block) {
			p.pin(b, p.cfg.Inlet, p.cfg.RhoHi)
			p.pin(b, p.cfg.Outlet, p.cfg.RhoLo)
		}); err != nil {
			return err
		}
	}
	p.phase = phasePostCorrected
	return nil
}

// apply runs fn on the blocks that own part of the inlet or outlet box; the
// others have nothing to do for this phase.
func (p *PeriodicPressureBoundary) apply(l *Lattice, fn func(b *block)) error {
	return l.forEachBlock(func(b *block) error {
		own := b.owned()
		if own.Intersect(p.cfg.Inlet).Empty() && own.Intersect(p.cfg.Outlet).Empty() {
			return nil
		}
		fn(b)
		return nil
	})
}

func (p *PeriodicPressureBoundary) extrapolate(l *Lattice, b *block, box Box, plane int, rho float64) {
	var feqSample, feqTarget [Q]float64
	b.owned().Intersect(box).Each(func(x, y, z int) {
		s := [3]int{x, y, z}
		s[p.cfg.Axis] = plane
		sb, sidx, err := l.locate(s[0], s[1], s[2])
		if err != nil {
			return
		}
		fs := sb.pop(sidx)
		rhoS, uS := Moments(fs)
		EquilibriumSet(feqSample[:], rhoS, uS)
		EquilibriumSet(feqTarget[:], rho, uS)
		dst := b.pop(b.index(b.localX(x), y, z))
		for i := 0; i < Q; i++ {
			dst[i] = feqTarget[i] + fs[i] - feqSample[i]
		}
	})
}

func (p *PeriodicPressureBoundary) pin(b *block, box Box, rho float64) {
	var feq, feqTarget [Q]float64
	b.owned().Intersect(box).Each(func(x, y, z int) {
		f := b.pop(b.index(b.localX(x), y, z))
		rhoS, u := Moments(f)
		EquilibriumSet(feq[:], rhoS, u)
		EquilibriumSet(feqTarget[:], rho, u)
		for i := 0; i < Q; i++ {
			f[i] += feqTarget[i] - feq[i]
		}
	})
}
