package dynamics

import "github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim"

// BGK is the single relaxation-time collision. It ignores the auxiliary
// record apart from clearing the force, since it exerts none.
type BGK struct {
	omega float64
}

func (d *BGK) Kind() string   { return sim.DynamicsBGK }
func (d *BGK) Omega() float64 { return d.omega }

func (d *BGK) Collide(f []float64, aux *sim.SiteAux) float64 {
	rho, u := sim.Moments(f)
	relax(f, rho, u, d.omega)
	aux.Force = sim.Vec3{}
	return rho
}

func relax(f []float64, rho float64, u sim.Vec3, omega float64) {
	var feq [sim.Q]float64
	sim.EquilibriumSet(feq[:], rho, u)
	for i := range feq {
		f[i] += omega * (feq[i] - f[i])
	}
}
