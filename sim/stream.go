package sim

import (
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
)

// forEachBlock runs fn on every block concurrently and waits for all of them.
// The first error is returned once every worker has stopped.
func (l *Lattice) forEachBlock(fn func(b *block) error) error {
	var g errgroup.Group
	for _, b := range l.blocks {
		g.Go(func() error { return fn(b) })
	}
	return g.Wait()
}

// eachBlock runs fn concurrently on every block for phases that cannot fail.
func (l *Lattice) eachBlock(fn func(b *block)) {
	var wg sync.WaitGroup
	for _, b := range l.blocks {
		wg.Go(func() { fn(b) })
	}
	wg.Wait()
}

// CollideAndStream advances the lattice by one time step.
//
// Collision runs site-locally on every block, then every block refreshes its
// halo planes from its neighbours, and only after all exchanges are done the
// blocks stream by pulling post-collision values into the second buffer.
func (l *Lattice) CollideAndStream() error {
	iteration := l.time
	if err := l.forEachBlock(func(b *block) error {
		return b.collide(l.dynamics, iteration)
	}); err != nil {
		return err
	}
	l.eachBlock(l.exchangeHalo)
	l.eachBlock(func(b *block) { b.stream(l) })
	for _, b := range l.blocks {
		b.f, b.ftmp = b.ftmp, b.f
	}
	l.time++
	return nil
}

func (b *block) collide(d Dynamics, iteration int64) error {
	var failure *InstabilityError
	b.eachOwned(func(x, y, z, idx int) {
		if failure != nil {
			return
		}
		f := b.pop(idx)
		rho := d.Collide(f, &b.aux[idx])
		reason := ""
		switch {
		case math.IsNaN(rho) || math.IsInf(rho, 0):
			reason = "non-finite density"
		case rho <= 0:
			reason = "non-positive density"
		default:
			for _, v := range f {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					reason = "non-finite population after collision"
					break
				}
			}
		}
		if reason != "" {
			failure = &InstabilityError{X: x, Y: y, Z: z, Iteration: iteration, Density: rho, Reason: reason}
		}
	})
	if failure != nil {
		return failure
	}
	return nil
}

// neighbor returns the block owning the plane adjacent to b in direction dir
// (-1 or +1), or nil at a non-periodic domain edge.
func (l *Lattice) neighbor(b *block, dir int) *block {
	x := b.x0 - 1
	if dir > 0 {
		x = b.x0 + b.nx
	}
	if x < 0 || x >= l.nx {
		if !l.periodic[0] {
			return nil
		}
		x = (x + l.nx) % l.nx
	}
	return l.blocks[l.owner[x]]
}

// exchangeHalo copies the neighbours' post-collision boundary planes into b's
// halo planes. It only reads owned planes of other blocks, so all blocks can
// exchange concurrently.
func (l *Lattice) exchangeHalo(b *block) {
	n := b.planeLen()
	if left := l.neighbor(b, -1); left != nil {
		src := left.index(left.nx, 0, 0) * Q
		copy(b.f[:n], left.f[src:src+n])
	}
	if right := l.neighbor(b, +1); right != nil {
		src := right.index(1, 0, 0) * Q
		dst := b.index(b.nx+1, 0, 0) * Q
		copy(b.f[dst:dst+n], right.f[src:src+n])
	}
}

// stream pulls every population from its upstream site. Periodic axes wrap;
// a population whose upstream site lies beyond a non-periodic edge is the
// site's own reflected population.
func (b *block) stream(l *Lattice) {
	b.eachOwned(func(x, y, z, dst int) {
		lx := b.localX(x)
		for i := 0; i < Q; i++ {
			c := latticeVelocities[i]
			sx, sy, sz := x-c[0], y-c[1], z-c[2]
			wall := false
			if sx < 0 || sx >= l.nx {
				wall = wall || !l.periodic[0]
			}
			if sy < 0 || sy >= l.ny {
				if l.periodic[1] {
					sy = (sy + l.ny) % l.ny
				} else {
					wall = true
				}
			}
			if sz < 0 || sz >= l.nz {
				if l.periodic[2] {
					sz = (sz + l.nz) % l.nz
				} else {
					wall = true
				}
			}
			if wall {
				b.ftmp[dst*Q+i] = b.f[dst*Q+Opposite(i)]
				continue
			}
			src := b.index(lx-c[0], sy, sz)
			b.ftmp[dst*Q+i] = b.f[src*Q+i]
		}
	})
}
