package sim

import "math"

// Vec3 is a Cartesian 3-vector used for velocities, forces and positions.
type Vec3 [3]float64

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a[0] * s, a[1] * s, a[2] * s}
}
func (a Vec3) Dot(b Vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

// Cross returns a × b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (a Vec3) Norm() float64 { return math.Sqrt(a.Dot(a)) }

// IsFinite reports whether no component is NaN or ±Inf.
func (a Vec3) IsFinite() bool {
	for _, v := range a {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Box is an inclusive, axis-aligned box of lattice indices.
type Box struct {
	Min, Max [3]int
}

// NewBox builds a box from inclusive bounds x0..x1, y0..y1, z0..z1.
func NewBox(x0, x1, y0, y1, z0, z1 int) Box {
	return Box{Min: [3]int{x0, y0, z0}, Max: [3]int{x1, y1, z1}}
}

// Empty reports whether the box contains no index along some axis.
func (b Box) Empty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Extent returns the number of indices covered along axis.
func (b Box) Extent(axis int) int {
	if b.Max[axis] < b.Min[axis] {
		return 0
	}
	return b.Max[axis] - b.Min[axis] + 1
}

// Volume returns the number of sites in the box.
func (b Box) Volume() int {
	return b.Extent(0) * b.Extent(1) * b.Extent(2)
}

func (b Box) Contains(x, y, z int) bool {
	return x >= b.Min[0] && x <= b.Max[0] &&
		y >= b.Min[1] && y <= b.Max[1] &&
		z >= b.Min[2] && z <= b.Max[2]
}

// ContainsBox reports whether o lies entirely inside b.
func (b Box) ContainsBox(o Box) bool {
	return !o.Empty() && b.Contains(o.Min[0], o.Min[1], o.Min[2]) && b.Contains(o.Max[0], o.Max[1], o.Max[2])
}

// Intersect returns the overlap of two boxes; the result may be Empty.
func (b Box) Intersect(o Box) Box {
	var r Box
	for a := 0; a < 3; a++ {
		r.Min[a] = max(b.Min[a], o.Min[a])
		r.Max[a] = min(b.Max[a], o.Max[a])
	}
	return r
}

// Each calls fn for every site of the box in x-major, z-fastest order.
func (b Box) Each(fn func(x, y, z int)) {
	for x := b.Min[0]; x <= b.Max[0]; x++ {
		for y := b.Min[1]; y <= b.Max[1]; y++ {
			for z := b.Min[2]; z <= b.Max[2]; z++ {
				fn(x, y, z)
			}
		}
	}
}
