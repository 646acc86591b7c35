package sim

import "math"

// LatticePressureGradient returns -dp/dx in lattice units for densities
// pinned at the first and last plane of a length-n channel.
func LatticePressureGradient(rhoHi, rhoLo float64, n int) float64 {
	if n <= 1 {
		return 0
	}
	return (rhoHi - rhoLo) * CsSqr / float64(n-1)
}

// ChannelVelocity is the steady streamwise velocity between plane walls at
// -0.5 and ny-0.5 (lattice units) for pressure gradient g = -dp/dx and
// dynamic viscosity mu.
func ChannelVelocity(g, mu float64, ny int, y float64) float64 {
	return g / (2 * mu) * (y + 0.5) * (float64(ny) - 0.5 - y)
}

// ductTerms is the number of odd Fourier modes summed by DuctVelocity.
const ductTerms = 50

// DuctVelocity is the steady streamwise velocity in a rectangular duct whose
// walls sit half a spacing outside sites 0 and n-1 along y and z.
func DuctVelocity(g, mu float64, ny, nz int, y, z float64) float64 {
	a, b := float64(ny), float64(nz)
	yc := y + 0.5 - a/2
	zc := z + 0.5 - b/2
	sum := 0.0
	for k := 0; k < ductTerms; k++ {
		n := float64(2*k + 1)
		sign := 1.0
		if k%2 == 1 {
			sign = -1
		}
		// cosh ratio written with exponentials so large n*b/a does not overflow
		ratio := math.Exp(n*math.Pi*(math.Abs(zc)-b/2)/a) *
			(1 + math.Exp(-2*n*math.Pi*math.Abs(zc)/a)) / (1 + math.Exp(-n*math.Pi*b/a))
		sum += sign / (n * n * n) * (1 - ratio) * math.Cos(n*math.Pi*yc/a)
	}
	return 4 * g * a * a / (mu * math.Pi * math.Pi * math.Pi) * sum
}
