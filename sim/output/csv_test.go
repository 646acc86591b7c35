package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestSnapshotCSV_PhysicalUnits(t *testing.T) {
	// GIVEN a 2x1x1 snapshot with known scales
	rc := sim.NewRunContext(filepath.Join(t.TempDir(), "tmp"))
	s := &sim.FieldSnapshot{
		Iteration: 12,
		Nx:        2, Ny: 1, Nz: 1,
		Density:       []float64{1.5, 1},
		Velocity:      []sim.Vec3{{0.01, 0, 0}, {0, 0.03, 0.04}},
		SolidFraction: []float64{0.25, 0},
		Force:         []sim.Vec3{{1, 0, 0}, {0, 0, 0}},
		Scales:        sim.PhysicalScales{Length: 0.5, Velocity: 10, Density: 1000, Force: 2, Pressure: 100},
	}

	// WHEN it is written
	require.NoError(t, SnapshotCSV{}.WriteSnapshot(rc, s))

	// THEN each site becomes one row in physical units
	rows := readCSV(t, filepath.Join(rc.OutputDir, "snapshot_000000012.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, snapshotColumns, rows[0])
	assert.Equal(t, []string{"0", "0", "0", "1500", "50", "0.1", "0", "0", "0.1", "0.25", "2", "0", "0"}, rows[1])
	assert.Equal(t, "0.5", rows[2][0])
	assert.Equal(t, "0.5", rows[2][8], "|(0, .3, .4)| = .5")
}

func TestSnapshotCSV_MismatchedFields(t *testing.T) {
	rc := sim.NewRunContext(t.TempDir())
	s := &sim.FieldSnapshot{Nx: 2, Ny: 1, Nz: 1, Density: []float64{1}}

	assert.Error(t, SnapshotCSV{}.WriteSnapshot(rc, s))
}

func TestSliceCSV_ResamplesNearestNeighbour(t *testing.T) {
	rc := sim.NewRunContext(t.TempDir())
	img := &sim.SliceImage{
		Iteration:  3,
		Width:      2,
		Height:     1,
		Magnitude:  []float64{1, 2},
		Resolution: 4,
	}

	require.NoError(t, SliceCSV{}.WriteSliceImage(rc, img))

	rows := readCSV(t, filepath.Join(rc.OutputDir, "slice_000000003.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"c0", "c1", "c2", "c3"}, rows[0])
	assert.Equal(t, []string{"1", "1", "2", "2"}, rows[1])
	assert.Equal(t, rows[1], rows[2])
}

func TestResample(t *testing.T) {
	w, h := Resample(40, 20, 600)
	assert.Equal(t, 600, w)
	assert.Equal(t, 300, h)

	w, h = Resample(40, 20, 0)
	assert.Equal(t, 40, w)
	assert.Equal(t, 20, h)

	_, h = Resample(1000, 1, 10)
	assert.Equal(t, 1, h)
}

func TestDumpCSV_WritesSliceCoordinates(t *testing.T) {
	rc := sim.NewRunContext(t.TempDir())
	d := &sim.FieldDump{Iteration: 5, Name: "f3", Slice: sim.NewBox(2, 2, 0, 1, 0, 0), Values: []float64{0.1, 0.2}}

	require.NoError(t, DumpCSV{}.WriteFieldDump(rc, d))

	rows := readCSV(t, filepath.Join(rc.OutputDir, "f3_000000005.csv"))
	assert.Equal(t, [][]string{{"x", "y", "z", "value"}, {"2", "0", "0", "0.1"}, {"2", "1", "0", "0.2"}}, rows)
}

func TestDumpCSV_WrongLength(t *testing.T) {
	rc := sim.NewRunContext(t.TempDir())
	d := &sim.FieldDump{Name: "rho", Slice: sim.NewBox(0, 1, 0, 0, 0, 0), Values: []float64{1}}

	assert.Error(t, DumpCSV{}.WriteFieldDump(rc, d))
}

func TestWriteCSV_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	rc := sim.NewRunContext(filepath.Join(blocker, "tmp"))
	d := &sim.FieldDump{Name: "f0", Slice: sim.NewBox(0, 0, 0, 0, 0, 0), Values: []float64{1}}

	assert.Error(t, DumpCSV{}.WriteFieldDump(rc, d))
}
