package world

import (
	"math"

	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
)

// BoxKind classifies level geometry.
type BoxKind uint8

const (
	// BoxWall blocks line of sight and movement.
	BoxWall BoxKind = iota
	// BoxFloor is walkable surface; it still occludes sight lines
	// passing through it.
	BoxFloor
	// BoxFurniture blocks sight like a wall but is placed inside rooms.
	BoxFurniture
	// BoxVolume is a non-blocking region marker, e.g. a room interior.
	BoxVolume
)

// Box is an axis-aligned block of level geometry.
type Box struct {
	ID   string
	Kind BoxKind
	Min  nav.Vec3
	Max  nav.Vec3
}

// Blocks reports whether the box occludes a sight line.
func (b Box) Blocks() bool {
	return b.Kind != BoxVolume
}

// Contains reports whether the point lies inside the box, boundaries
// included.
func (b Box) Contains(p nav.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectSegment tests the segment between from and to against the
// box using the slab method and returns the parametric distance of
// entry in [0, 1].
func (b Box) IntersectSegment(from, to nav.Vec3) (float64, bool) {
	dir := to.Sub(from)
	tMin, tMax := 0.0, 1.0

	for axis := 0; axis < 3; axis++ {
		var origin, delta, lo, hi float64
		switch axis {
		case 0:
			origin, delta, lo, hi = from.X, dir.X, b.Min.X, b.Max.X
		case 1:
			origin, delta, lo, hi = from.Y, dir.Y, b.Min.Y, b.Max.Y
		default:
			origin, delta, lo, hi = from.Z, dir.Z, b.Min.Z, b.Max.Z
		}
		if math.Abs(delta) < 1e-12 {
			if origin < lo || origin > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - origin) / delta
		t2 := (hi - origin) / delta
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}
