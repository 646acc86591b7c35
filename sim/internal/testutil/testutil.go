// Package testutil provides shared test infrastructure for the lattice core
// and its sub-packages: float assertions, scratch files, and a linear unit
// converter. It does not import sim so that sim's own tests can use it.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// RelativeL2 returns ||got - want|| / ||want||.
func RelativeL2(want, got []float64) float64 {
	norm := floats.Norm(want, 2)
	if norm == 0 {
		return floats.Norm(got, 2)
	}
	return floats.Distance(want, got, 2) / norm
}

// WriteFile writes content to name inside a test temp directory and returns
// its path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// LinearUnits converts by fixed scale factors: physical = lattice × scale.
// Force scales as Density·Length⁴/Time², like a real lattice conversion.
type LinearUnits struct {
	Length, Time, Density float64
}

// IdentityUnits leaves every value unchanged.
var IdentityUnits = LinearUnits{Length: 1, Time: 1, Density: 1}

func (u LinearUnits) force() float64 {
	l2 := u.Length * u.Length
	return u.Density * l2 * l2 / (u.Time * u.Time)
}

func (u LinearUnits) ToLatticeLength(l float64) float64   { return l / u.Length }
func (u LinearUnits) ToLatticeTime(t float64) float64     { return t / u.Time }
func (u LinearUnits) ToLatticeVelocity(v float64) float64 { return v * u.Time / u.Length }
func (u LinearUnits) ToLatticeDensity(r float64) float64  { return r / u.Density }
func (u LinearUnits) ToLatticeForce(f float64) float64    { return f / u.force() }
func (u LinearUnits) ToPhysLength(l float64) float64      { return l * u.Length }
func (u LinearUnits) ToPhysTime(t float64) float64        { return t * u.Time }
func (u LinearUnits) ToPhysVelocity(v float64) float64    { return v * u.Length / u.Time }
func (u LinearUnits) ToPhysDensity(r float64) float64     { return r * u.Density }
func (u LinearUnits) ToPhysForce(f float64) float64       { return f * u.force() }
