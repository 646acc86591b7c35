package sim

// PhysicalScales converts lattice values in a snapshot to physical units.
// Pressure is the factor applied to (rho - 1).
type PhysicalScales struct {
	Length   float64
	Time     float64
	Velocity float64
	Density  float64
	Force    float64
	Pressure float64
}

// ScalesFrom evaluates the scale factors of conv at one lattice unit.
func ScalesFrom(conv UnitConverter) PhysicalScales {
	dx := conv.ToPhysLength(1)
	force := conv.ToPhysForce(1)
	return PhysicalScales{
		Length:   dx,
		Time:     conv.ToPhysTime(1),
		Velocity: conv.ToPhysVelocity(1),
		Density:  conv.ToPhysDensity(1),
		Force:    force,
		Pressure: force / (dx * dx) * CsSqr,
	}
}

// FieldSnapshot is a full-domain copy of the macroscopic fields in lattice
// units, ordered x-major with z fastest.
type FieldSnapshot struct {
	Iteration     int64
	Nx, Ny, Nz    int
	Density       []float64
	Velocity      []Vec3
	SolidFraction []float64
	Force         []Vec3
	Scales        PhysicalScales
}

// SliceImage is the velocity magnitude on the mid-y plane y = (ny-1)/2,
// Width along x and Height along z, row-major with x fastest, to be rendered
// at Resolution pixels along x.
type SliceImage struct {
	Iteration     int64
	Width, Height int
	Magnitude     []float64
	Resolution    int
}

// FieldDump is one raw field over a fixed slice: either a population
// ("f3") or an auxiliary field ("solid_fraction").
type FieldDump struct {
	Iteration int64
	Name      string
	Slice     Box
	Values    []float64
}

// SnapshotWriter persists full-field snapshots.
type SnapshotWriter interface {
	WriteSnapshot(rc *RunContext, s *FieldSnapshot) error
}

// SliceImageWriter renders a velocity-magnitude slice.
type SliceImageWriter interface {
	WriteSliceImage(rc *RunContext, img *SliceImage) error
}

// FieldDumpWriter persists raw slices of populations or auxiliary fields.
type FieldDumpWriter interface {
	WriteFieldDump(rc *RunContext, d *FieldDump) error
}

// Outputs groups the optional sinks of a run; nil members are skipped.
type Outputs struct {
	Snapshot SnapshotWriter
	Image    SliceImageWriter
	Dump     FieldDumpWriter
}
