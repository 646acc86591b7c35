package sim

// D3Q19 lattice descriptor.
//
// Directions 1..9 point towards negative components and 10..18 are their
// opposites, so Opposite(i) = i±9 for i > 0.

// Q is the number of discrete velocities.
const Q = 19

// CsSqr is the squared lattice speed of sound.
const CsSqr = 1.0 / 3.0

var latticeVelocities = [Q][3]int{
	{0, 0, 0},
	{-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
	{-1, -1, 0}, {-1, 1, 0}, {-1, 0, -1}, {-1, 0, 1}, {0, -1, -1}, {0, -1, 1},
	{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	{1, 1, 0}, {1, -1, 0}, {1, 0, 1}, {1, 0, -1}, {0, 1, 1}, {0, 1, -1},
}

var latticeWeights = [Q]float64{
	1. / 3.,
	1. / 18., 1. / 18., 1. / 18.,
	1. / 36., 1. / 36., 1. / 36., 1. / 36., 1. / 36., 1. / 36.,
	1. / 18., 1. / 18., 1. / 18.,
	1. / 36., 1. / 36., 1. / 36., 1. / 36., 1. / 36., 1. / 36.,
}

// Velocity returns the discrete velocity of direction i.
func Velocity(i int) [3]int { return latticeVelocities[i] }

// Weight returns the quadrature weight of direction i.
func Weight(i int) float64 { return latticeWeights[i] }

// Opposite returns the direction pointing against direction i.
func Opposite(i int) int {
	switch {
	case i == 0:
		return 0
	case i <= Q/2:
		return i + Q/2
	default:
		return i - Q/2
	}
}

// Equilibrium returns the second-order BGK equilibrium population of
// direction i for density rho and velocity u.
func Equilibrium(i int, rho float64, u Vec3) float64 {
	c := latticeVelocities[i]
	cu := float64(c[0])*u[0] + float64(c[1])*u[1] + float64(c[2])*u[2]
	return latticeWeights[i] * rho * (1 + 3*cu + 4.5*cu*cu - 1.5*u.Dot(u))
}

// EquilibriumSet fills feq with all equilibrium populations.
func EquilibriumSet(feq []float64, rho float64, u Vec3) {
	usqr := 1.5 * u.Dot(u)
	for i := 0; i < Q; i++ {
		c := latticeVelocities[i]
		cu := float64(c[0])*u[0] + float64(c[1])*u[1] + float64(c[2])*u[2]
		feq[i] = latticeWeights[i] * rho * (1 + 3*cu + 4.5*cu*cu - usqr)
	}
}

// Moments returns the density and velocity carried by populations f.
// A non-positive density yields a zero velocity.
func Moments(f []float64) (rho float64, u Vec3) {
	var j Vec3
	for i := 0; i < Q; i++ {
		rho += f[i]
		c := latticeVelocities[i]
		j[0] += float64(c[0]) * f[i]
		j[1] += float64(c[1]) * f[i]
		j[2] += float64(c[2]) * f[i]
	}
	if rho <= 0 {
		return rho, Vec3{}
	}
	return rho, j.Scale(1 / rho)
}
