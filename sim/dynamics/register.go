// register.go wires the collision models into the sim package's factory
// variable (NewDynamicsFunc). The init() runs when any package imports
// sim/dynamics, which keeps sim free of an import on its implementations.
package dynamics

import "github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim"

func init() {
	sim.NewDynamicsFunc = New
}
