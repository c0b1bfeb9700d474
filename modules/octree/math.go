package octree

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/roidfield/roidfield/models"
)

// Bounds is an axis-aligned box.
type Bounds struct {
	Min mgl64.Vec3 `json:"min"`
	Max mgl64.Vec3 `json:"max"`
}

// CubeBounds returns the cube that extends radius from center on each axis.
func CubeBounds(center mgl64.Vec3, radius float64) Bounds {
	r := mgl64.Vec3{radius, radius, radius}
	return Bounds{
		Min: center.Sub(r),
		Max: center.Add(r),
	}
}

// EntityBounds returns the box enclosing the entity bounding sphere.
func EntityBounds(e *models.Entity) Bounds {
	return CubeBounds(e.Position(), e.Radius())
}

// Contains reports whether o lies entirely within b. Touching faces count as
// contained.
func (b Bounds) Contains(o Bounds) bool {
	return o.Max.X() <= b.Max.X() &&
		o.Max.Y() <= b.Max.Y() &&
		o.Max.Z() <= b.Max.Z() &&
		o.Min.X() >= b.Min.X() &&
		o.Min.Y() >= b.Min.Y() &&
		o.Min.Z() >= b.Min.Z()
}

// Overlaps reports whether b and o overlap on all three axes. Touching faces
// count as overlapping.
func (b Bounds) Overlaps(o Bounds) bool {
	return o.Min.X() <= b.Max.X() && o.Max.X() >= b.Min.X() &&
		o.Min.Y() <= b.Max.Y() && o.Max.Y() >= b.Min.Y() &&
		o.Min.Z() <= b.Max.Z() && o.Max.Z() >= b.Min.Z()
}

// Octant offsets in canonical order. Think of each index as a 3-bit value
// with x the left-most bit and 0 meaning negative:
//
//	idx  bits  xyz
//	[0]  000   ---
//	[1]  001   --+
//	[2]  010   -+-
//	[3]  011   -++
//	[4]  100   +--
//	[5]  101   +-+
//	[6]  110   ++-
//	[7]  111   +++
var octantSigns = [8]mgl64.Vec3{
	{-1, -1, -1},
	{-1, -1, 1},
	{-1, 1, -1},
	{-1, 1, 1},
	{1, -1, -1},
	{1, -1, 1},
	{1, 1, -1},
	{1, 1, 1},
}

// octantCenters returns the centers of the 8 octants of a cube, in canonical
// order.
func octantCenters(center mgl64.Vec3, radius float64) [8]mgl64.Vec3 {
	half := radius / 2

	var centers [8]mgl64.Vec3
	for i, sign := range octantSigns {
		centers[i] = center.Add(sign.Mul(half))
	}
	return centers
}
