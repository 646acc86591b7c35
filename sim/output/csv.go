// Package output provides file sinks for the periodic outputs of a coupled
// run. Every writer places its files under the run's output directory.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim"
)

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', 8, 64) }

// writeCSV creates rc's output directory if needed and writes rows to name.
func writeCSV(rc *sim.RunContext, name string, header []string, rows func(w *csv.Writer) error) error {
	path := rc.OutputPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := rows(writer); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

var snapshotColumns = []string{
	"x", "y", "z", "density", "pressure", "vx", "vy", "vz", "velocity_norm",
	"solid_fraction", "fx", "fy", "fz",
}

// SnapshotCSV writes full-field snapshots in physical units, one row per
// site, to snapshot_<iteration>.csv.
type SnapshotCSV struct{}

var _ sim.SnapshotWriter = SnapshotCSV{}

func (SnapshotCSV) WriteSnapshot(rc *sim.RunContext, s *sim.FieldSnapshot) error {
	n := s.Nx * s.Ny * s.Nz
	if len(s.Density) != n || len(s.Velocity) != n || len(s.SolidFraction) != n || len(s.Force) != n {
		return fmt.Errorf("snapshot %d: field lengths do not match %dx%dx%d", s.Iteration, s.Nx, s.Ny, s.Nz)
	}
	sc := s.Scales
	name := fmt.Sprintf("snapshot_%09d.csv", s.Iteration)
	return writeCSV(rc, name, snapshotColumns, func(w *csv.Writer) error {
		i := 0
		for x := 0; x < s.Nx; x++ {
			for y := 0; y < s.Ny; y++ {
				for z := 0; z < s.Nz; z++ {
					u := s.Velocity[i].Scale(sc.Velocity)
					f := s.Force[i].Scale(sc.Force)
					row := []string{
						ftoa(float64(x) * sc.Length), ftoa(float64(y) * sc.Length), ftoa(float64(z) * sc.Length),
						ftoa(s.Density[i] * sc.Density),
						ftoa((s.Density[i] - 1) * sc.Pressure),
						ftoa(u[0]), ftoa(u[1]), ftoa(u[2]), ftoa(u.Norm()),
						ftoa(s.SolidFraction[i]),
						ftoa(f[0]), ftoa(f[1]), ftoa(f[2]),
					}
					if err := w.Write(row); err != nil {
						return err
					}
					i++
				}
			}
		}
		return nil
	})
}

// SliceCSV writes the velocity-magnitude slice resampled to the requested
// resolution as a plain numeric grid, one row per image line.
type SliceCSV struct{}

var _ sim.SliceImageWriter = SliceCSV{}

func (SliceCSV) WriteSliceImage(rc *sim.RunContext, img *sim.SliceImage) error {
	if img.Width < 1 || img.Height < 1 || len(img.Magnitude) != img.Width*img.Height {
		return fmt.Errorf("slice image %d: %d values for %dx%d", img.Iteration, len(img.Magnitude), img.Width, img.Height)
	}
	w, h := Resample(img.Width, img.Height, img.Resolution)
	header := make([]string, w)
	for i := range header {
		header[i] = "c" + strconv.Itoa(i)
	}
	name := fmt.Sprintf("slice_%09d.csv", img.Iteration)
	return writeCSV(rc, name, header, func(cw *csv.Writer) error {
		row := make([]string, w)
		for py := 0; py < h; py++ {
			sy := py * img.Height / h
			for px := 0; px < w; px++ {
				sx := px * img.Width / w
				row[px] = ftoa(img.Magnitude[sy*img.Width+sx])
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// Resample returns the output size for a width×height field rendered with
// resolution columns, keeping the aspect ratio. A resolution below 1 keeps
// the native size.
func Resample(width, height, resolution int) (w, h int) {
	if resolution < 1 {
		return width, height
	}
	h = resolution * height / width
	return resolution, max(h, 1)
}

// DumpCSV writes raw field slices as x,y,z,value rows to
// <name>_<iteration>.csv.
type DumpCSV struct{}

var _ sim.FieldDumpWriter = DumpCSV{}

func (DumpCSV) WriteFieldDump(rc *sim.RunContext, d *sim.FieldDump) error {
	if len(d.Values) != d.Slice.Volume() {
		return fmt.Errorf("dump %s: %d values for slice %v", d.Name, len(d.Values), d.Slice)
	}
	name := fmt.Sprintf("%s_%09d.csv", d.Name, d.Iteration)
	return writeCSV(rc, name, []string{"x", "y", "z", "value"}, func(w *csv.Writer) error {
		i := 0
		var err error
		d.Slice.Each(func(x, y, z int) {
			if err != nil {
				return
			}
			err = w.Write([]string{strconv.Itoa(x), strconv.Itoa(y), strconv.Itoa(z), ftoa(d.Values[i])})
			i++
		})
		return err
	})
}
