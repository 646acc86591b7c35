package sim

import "fmt"

// Dynamics kinds understood by NewDynamicsFunc.
const (
	DynamicsBGK         = "bgk"
	DynamicsImmersedBGK = "ib-bgk"
)

// Dynamics relaxes the populations of a single site. Implementations must be
// site-local and safe for concurrent use on distinct sites.
type Dynamics interface {
	// Kind returns the registered name of the collision model.
	Kind() string
	// Omega returns the relaxation frequency 1/tau.
	Omega() float64
	// Collide relaxes f in place, reading and updating the site's auxiliary
	// record, and returns the pre-collision density.
	Collide(f []float64, aux *SiteAux) float64
}

// NewDynamicsFunc builds a collision model by kind. It is registered by
// sim/dynamics in its init(); production code imports that package for its
// side effect.
var NewDynamicsFunc func(kind string, omega float64) (Dynamics, error)

func newDynamics(kind string, omega float64) (Dynamics, error) {
	if NewDynamicsFunc == nil {
		panic("NewDynamicsFunc not registered: import github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim/dynamics")
	}
	d, err := NewDynamicsFunc(kind, omega)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return d, nil
}
