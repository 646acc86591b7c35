package sim

// block is one worker's partition: the owned x-slab [x0, x0+nx) plus one halo
// plane on each side (local x = 0 and local x = nx+1) holding copies of the
// neighbouring blocks' boundary planes.
type block struct {
	id     int
	x0     int
	nx     int
	ny, nz int

	f    []float64 // current populations, site-major
	ftmp []float64 // streaming target, swapped with f after every step
	aux  []SiteAux
}

func newBlock(id, x0, nx, ny, nz int) *block {
	sites := (nx + 2) * ny * nz
	b := &block{
		id:   id,
		x0:   x0,
		nx:   nx,
		ny:   ny,
		nz:   nz,
		f:    make([]float64, sites*Q),
		ftmp: make([]float64, sites*Q),
		aux:  make([]SiteAux, sites),
	}
	for i := range b.aux {
		b.aux[i] = emptyAux()
	}
	return b
}

func (b *block) index(lx, y, z int) int { return (lx*b.ny+y)*b.nz + z }

// localX maps a global x owned by this block to its local plane.
func (b *block) localX(x int) int { return x - b.x0 + 1 }

func (b *block) pop(idx int) []float64 { return b.f[idx*Q : (idx+1)*Q : (idx+1)*Q] }

// owned returns the global box of sites this block is responsible for.
func (b *block) owned() Box {
	return NewBox(b.x0, b.x0+b.nx-1, 0, b.ny-1, 0, b.nz-1)
}

func (b *block) planeLen() int { return b.ny * b.nz * Q }

func (b *block) ownedPopulations() []float64 {
	return b.f[b.index(1, 0, 0)*Q : b.index(b.nx+1, 0, 0)*Q]
}

// eachOwned calls fn with the global coordinates and local index of every
// owned site.
func (b *block) eachOwned(fn func(x, y, z, idx int)) {
	for lx := 1; lx <= b.nx; lx++ {
		x := b.x0 + lx - 1
		for y := 0; y < b.ny; y++ {
			for z := 0; z < b.nz; z++ {
				fn(x, y, z, b.index(lx, y, z))
			}
		}
	}
}
