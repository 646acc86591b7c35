package sim

import "math"

// UnitConverter maps between physical and lattice units. Implementations are
// pure: the same input always yields the same output and nothing is mutated.
type UnitConverter interface {
	ToLatticeLength(l float64) float64
	ToLatticeTime(t float64) float64
	ToLatticeVelocity(u float64) float64
	ToLatticeDensity(rho float64) float64
	ToLatticeForce(f float64) float64

	ToPhysLength(l float64) float64
	ToPhysTime(t float64) float64
	ToPhysVelocity(u float64) float64
	ToPhysDensity(rho float64) float64
	ToPhysForce(f float64) float64
}

// StepsForInterval converts a physical time interval to a lattice step count,
// never less than 1 so it can be used as a cadence modulus.
func StepsForInterval(conv UnitConverter, seconds float64) int64 {
	n := math.Round(conv.ToLatticeTime(seconds))
	if !(n >= 1) {
		return 1
	}
	return int64(n)
}
