// Package sim provides the lattice-Boltzmann fluid core and its coupling to a
// discrete particle engine.
//
// # Reading Guide
//
// Start with these three files to understand the coupled step:
//   - lattice.go: the D3Q19 lattice, its x-slab partitioning and per-site records
//   - coupling.go: particle immersion (solid fraction, ownership) and force extraction
//   - clock.go: the fixed-ratio loop Pull → Immerse → collide/stream → Push → Advance
//
// # Architecture
//
// The sim package defines interfaces and bridge types; implementations live in
// sub-packages:
//   - sim/dynamics/: collision models (plain BGK, partially saturated immersed BGK)
//   - sim/units/: physical ↔ lattice unit conversion
//   - sim/dem/: rigid-sphere particle engine
//   - sim/output/: CSV snapshot, slice and field-dump writers
//   - sim/trace/: coupling trace recording
//
// Sub-packages register their implementations via init() functions that set
// package-level factory variables (NewDynamicsFunc).
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - Dynamics: per-site collision with access to the site's auxiliary record
//   - ParticleEngine: load, configure, pull state, push loads, advance
//   - UnitConverter: scale lengths, times, velocities, densities and forces
//   - SnapshotWriter, SliceImageWriter, FieldDumpWriter: periodic output sinks
package sim
