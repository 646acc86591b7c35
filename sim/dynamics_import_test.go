package sim_test

// Blank import triggers sim/dynamics' init(), which registers NewDynamicsFunc.
// This lets package sim's internal test files build lattices without importing
// sim/dynamics directly (which would create an import cycle).
import _ "github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim/dynamics"
