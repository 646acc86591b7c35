package sim

import (
	"math"
)

// halfDiagonal is the distance from a lattice cell centre to its corners.
var halfDiagonal = math.Sqrt(3) / 2

// subSamples is the per-axis sub-cell count used to integrate the solid
// fraction of cells cut by a particle surface.
const subSamples = 8

// Coupler mirrors particle geometry onto the lattice and collects the
// hydrodynamic loads the collision step leaves in the auxiliary records.
type Coupler struct {
	lattice *Lattice
	units   UnitConverter
	covered [][]bool // per block, whether a site was covered before the current Immerse
}

// NewCoupler panics on nil collaborators.
func NewCoupler(l *Lattice, units UnitConverter) *Coupler {
	if l == nil || units == nil {
		panic("NewCoupler: lattice and unit converter must not be nil")
	}
	c := &Coupler{lattice: l, units: units, covered: make([][]bool, len(l.blocks))}
	for i, b := range l.blocks {
		c.covered[i] = make([]bool, len(b.aux))
	}
	return c
}

// latticeParticle is a Particle converted to lattice units.
type latticeParticle struct {
	id       int64
	center   Vec3
	radius   float64
	velocity Vec3
	omega    Vec3 // angular velocity, radians per lattice time step
}

func (c *Coupler) toLattice(p Particle) (latticeParticle, error) {
	lp := latticeParticle{
		id:     p.ID,
		radius: c.units.ToLatticeLength(p.Radius),
		omega:  p.AngularVelocity.Scale(c.units.ToPhysTime(1)),
	}
	for a := 0; a < 3; a++ {
		lp.center[a] = c.units.ToLatticeLength(p.Position[a])
		lp.velocity[a] = c.units.ToLatticeVelocity(p.Velocity[a])
	}
	if p.ID == NoParticle {
		return lp, couplingErrorf("particle id %d is reserved", p.ID)
	}
	if !(lp.radius > 0) || math.IsInf(lp.radius, 0) || !lp.center.IsFinite() || !lp.velocity.IsFinite() || !lp.omega.IsFinite() {
		return lp, couplingErrorf("particle %d has non-finite or degenerate state", p.ID)
	}
	return lp, nil
}

// Immerse rewrites the occupancy of every owned site from particles. All
// occupancy from the previous call is cleared first, then each site within a
// particle's influence radius is claimed by the particle covering the largest
// fraction of it. The boundary velocity of a claimed site is the particle's
// surface velocity there. With initWithVelocity, sites that were uncovered
// before this call are reset to equilibrium moving with that velocity.
func (c *Coupler) Immerse(particles []Particle, initWithVelocity bool) error {
	if err := checkUniqueIDs(particles); err != nil {
		return err
	}
	lps := make([]latticeParticle, len(particles))
	for i, p := range particles {
		lp, err := c.toLattice(p)
		if err != nil {
			return err
		}
		lps[i] = lp
	}
	return c.lattice.forEachBlock(func(b *block) error {
		prev := c.covered[b.id]
		for idx := range b.aux {
			prev[idx] = b.aux[idx].ParticleID != NoParticle
			if prev[idx] {
				b.aux[idx] = emptyAux()
			}
		}
		for _, p := range lps {
			c.rasterize(b, p, prev, initWithVelocity)
		}
		return nil
	})
}

// checkUniqueIDs rejects a particle list in which two entries share an id,
// since forces are mapped back to particles by id.
func checkUniqueIDs(particles []Particle) error {
	seen := make(map[int64]struct{}, len(particles))
	for _, p := range particles {
		if _, dup := seen[p.ID]; dup {
			return couplingErrorf("duplicate particle id %d", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func (c *Coupler) rasterize(b *block, p latticeParticle, prev []bool, initWithVelocity bool) {
	l := c.lattice
	reach := p.radius + halfDiagonal
	own := b.owned()
	var shifts [3][]float64
	for a := 0; a < 3; a++ {
		shifts[a] = []float64{0}
		if l.periodic[a] {
			n := float64(l.Extent(a))
			shifts[a] = []float64{-n, 0, n}
		}
	}
	for _, sx := range shifts[0] {
		for _, sy := range shifts[1] {
			for _, sz := range shifts[2] {
				center := p.center.Add(Vec3{sx, sy, sz})
				var reachBox Box
				for a := 0; a < 3; a++ {
					reachBox.Min[a] = int(math.Floor(center[a] - reach))
					reachBox.Max[a] = int(math.Ceil(center[a] + reach))
				}
				reachBox.Intersect(own).Each(func(x, y, z int) {
					r := Vec3{float64(x), float64(y), float64(z)}.Sub(center)
					sf := cellSolidFraction(r, p.radius)
					idx := b.index(b.localX(x), y, z)
					a := &b.aux[idx]
					if sf <= 0 || sf <= a.SolidFraction {
						return
					}
					a.SolidFraction = sf
					a.ParticleID = p.id
					a.BoundaryVelocity = p.velocity.Add(p.omega.Cross(r))
					if initWithVelocity && !prev[idx] {
						f := b.pop(idx)
						rho, _ := Moments(f)
						EquilibriumSet(f, rho, a.BoundaryVelocity)
					}
				})
			}
		}
	}
}

// cellSolidFraction returns the fraction of the unit cell centred at offset r
// from a sphere's centre that lies inside the sphere.
func cellSolidFraction(r Vec3, radius float64) float64 {
	d := r.Norm()
	switch {
	case d+halfDiagonal <= radius:
		return 1
	case d-halfDiagonal >= radius:
		return 0
	}
	r2 := radius * radius
	step := 1.0 / subSamples
	inside := 0
	for i := 0; i < subSamples; i++ {
		px := r[0] - 0.5 + (float64(i)+0.5)*step
		for j := 0; j < subSamples; j++ {
			py := r[1] - 0.5 + (float64(j)+0.5)*step
			for k := 0; k < subSamples; k++ {
				pz := r[2] - 0.5 + (float64(k)+0.5)*step
				if px*px+py*py+pz*pz <= r2 {
					inside++
				}
			}
		}
	}
	return float64(inside) / (subSamples * subSamples * subSamples)
}

// loadSum is a force/torque pair in lattice units.
type loadSum struct {
	force, torque Vec3
}

// ExtractForces sums the site forces of every covered site into per-particle
// force and torque. Each block accumulates its own partial sums; the partials
// are then combined across all blocks before conversion to physical units, so
// the result does not depend on how the lattice is partitioned.
func (c *Coupler) ExtractForces(particles []Particle) ([]ParticleLoad, error) {
	index := make(map[int64]int, len(particles))
	centers := make([]Vec3, len(particles))
	for i, p := range particles {
		if _, dup := index[p.ID]; dup {
			return nil, couplingErrorf("duplicate particle id %d", p.ID)
		}
		index[p.ID] = i
		for a := 0; a < 3; a++ {
			centers[i][a] = c.units.ToLatticeLength(p.Position[a])
		}
	}
	l := c.lattice
	partials := make([][]loadSum, len(l.blocks))
	err := l.forEachBlock(func(b *block) error {
		part := make([]loadSum, len(particles))
		var unknown int64 = NoParticle
		b.eachOwned(func(x, y, z, idx int) {
			a := &b.aux[idx]
			if a.ParticleID == NoParticle {
				return
			}
			k, ok := index[a.ParticleID]
			if !ok {
				unknown = a.ParticleID
				return
			}
			r := l.minimumImage(Vec3{float64(x), float64(y), float64(z)}.Sub(centers[k]))
			part[k].force = part[k].force.Add(a.Force)
			part[k].torque = part[k].torque.Add(r.Cross(a.Force))
		})
		partials[b.id] = part
		if unknown != NoParticle {
			return couplingErrorf("site owned by particle %d which the engine did not report", unknown)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	totals := allReduceLoads(partials, len(particles))
	lengthScale := c.units.ToPhysLength(1)
	loads := make([]ParticleLoad, len(particles))
	for i, p := range particles {
		loads[i].ID = p.ID
		for a := 0; a < 3; a++ {
			loads[i].Force[a] = c.units.ToPhysForce(totals[i].force[a])
			loads[i].Torque[a] = c.units.ToPhysForce(totals[i].torque[a]) * lengthScale
		}
	}
	return loads, nil
}

// allReduceLoads sums per-block partial loads in block order.
func allReduceLoads(partials [][]loadSum, n int) []loadSum {
	totals := make([]loadSum, n)
	for _, part := range partials {
		for i := range part {
			totals[i].force = totals[i].force.Add(part[i].force)
			totals[i].torque = totals[i].torque.Add(part[i].torque)
		}
	}
	return totals
}

// minimumImage wraps r onto the nearest periodic image along periodic axes.
func (l *Lattice) minimumImage(r Vec3) Vec3 {
	for a := 0; a < 3; a++ {
		if !l.periodic[a] {
			continue
		}
		n := float64(l.Extent(a))
		switch {
		case r[a] > n/2:
			r[a] -= n
		case r[a] < -n/2:
			r[a] += n
		}
	}
	return r
}
