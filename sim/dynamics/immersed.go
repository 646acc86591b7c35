package dynamics

import "github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim"

// ImmersedBGK is the partially-saturated BGK of Noble and Torczynski. A site
// with solid fraction eps blends fluid relaxation with a bounce-back of the
// non-equilibrium part towards the particle surface velocity, weighted by
//
//	B = eps (tau - 1/2) / ((1 - eps) + (tau - 1/2)).
//
// The momentum removed from the fluid by the solid term is stored as the
// hydrodynamic force acting on the covering particle.
type ImmersedBGK struct {
	omega float64
}

func (d *ImmersedBGK) Kind() string   { return sim.DynamicsImmersedBGK }
func (d *ImmersedBGK) Omega() float64 { return d.omega }

// weight returns B for solid fraction eps.
func (d *ImmersedBGK) weight(eps float64) float64 {
	tauShift := 1/d.omega - 0.5
	return eps * tauShift / ((1 - eps) + tauShift)
}

func (d *ImmersedBGK) Collide(f []float64, aux *sim.SiteAux) float64 {
	rho, u := sim.Moments(f)
	if aux.SolidFraction <= 0 {
		relax(f, rho, u, d.omega)
		aux.Force = sim.Vec3{}
		return rho
	}

	b := d.weight(aux.SolidFraction)
	var feq, feqSolid, solid [sim.Q]float64
	sim.EquilibriumSet(feq[:], rho, u)
	sim.EquilibriumSet(feqSolid[:], rho, aux.BoundaryVelocity)
	for i := 0; i < sim.Q; i++ {
		o := sim.Opposite(i)
		solid[i] = f[o] - feq[o] + feqSolid[i] - f[i]
	}

	var force sim.Vec3
	for i := 0; i < sim.Q; i++ {
		f[i] += -(1-b)*d.omega*(f[i]-feq[i]) + b*solid[i]
		c := sim.Velocity(i)
		force[0] -= float64(c[0]) * b * solid[i]
		force[1] -= float64(c[1]) * b * solid[i]
		force[2] -= float64(c[2]) * b * solid[i]
	}
	aux.Force = force
	return rho
}
