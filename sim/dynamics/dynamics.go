// Package dynamics implements the site-local collision models used by the
// lattice: plain BGK and the partially-saturated immersed-boundary BGK.
package dynamics

import (
	"fmt"
	"sort"

	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim"
)

var constructors = map[string]func(omega float64) sim.Dynamics{
	sim.DynamicsBGK:         func(omega float64) sim.Dynamics { return &BGK{omega: omega} },
	sim.DynamicsImmersedBGK: func(omega float64) sim.Dynamics { return &ImmersedBGK{omega: omega} },
}

// New returns the collision model registered under kind.
func New(kind string, omega float64) (sim.Dynamics, error) {
	ctor, ok := constructors[kind]
	if !ok {
		return nil, fmt.Errorf("unknown dynamics %q (available: %v)", kind, Kinds())
	}
	if !(omega > 0 && omega < 2) {
		return nil, fmt.Errorf("dynamics %q: omega must be in (0,2), got %g", kind, omega)
	}
	return ctor(omega), nil
}

// Kinds lists the registered collision models in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(constructors))
	for k := range constructors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
