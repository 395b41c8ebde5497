package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyAABB returns an inverted box that any Extend call will replace.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// AABBOf returns the bounding box of points, or EmptyAABB for none.
func AABBOf(points []mgl64.Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.Extend(p)
	}
	return box
}

// IsEmpty reports whether the box contains no point at all.
func (a AABB) IsEmpty() bool {
	return a.Min.X() > a.Max.X() || a.Min.Y() > a.Max.Y() || a.Min.Z() > a.Max.Z()
}

// Extend returns the smallest box holding both a and point.
func (a AABB) Extend(point mgl64.Vec3) AABB {
	for i := 0; i < 3; i++ {
		a.Min[i] = math.Min(a.Min[i], point[i])
		a.Max[i] = math.Max(a.Max[i], point[i])
	}
	return a
}

// Merge returns the smallest box holding both a and other.
func (a AABB) Merge(other AABB) AABB {
	if other.IsEmpty() {
		return a
	}
	return a.Extend(other.Min).Extend(other.Max)
}

// Size returns the box lengths along each axis.
func (a AABB) Size() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

// Center returns the middle point of the box.
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Size().Mul(0.5))
}

// ContainsPoint reports whether point lies in the box, faces included.
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	for k := 0; k < 3; k++ {
		if point[k] < a.Min[k] || point[k] > a.Max[k] {
			return false
		}
	}
	return true
}

// ContainsPointTolerance is ContainsPoint with the box grown by tolerance on
// every side.
func (a AABB) ContainsPointTolerance(point mgl64.Vec3, tolerance float64) bool {
	grow := mgl64.Vec3{tolerance, tolerance, tolerance}
	return AABB{Min: a.Min.Sub(grow), Max: a.Max.Add(grow)}.ContainsPoint(point)
}

// Intersect returns the box shared by a and other. ok is false when they
// are disjoint on any axis; touching faces give a flat box.
func (a AABB) Intersect(other AABB) (box AABB, ok bool) {
	for k := 0; k < 3; k++ {
		box.Min[k] = max(a.Min[k], other.Min[k])
		box.Max[k] = min(a.Max[k], other.Max[k])
		if box.Min[k] > box.Max[k] {
			return AABB{}, false
		}
	}
	return box, true
}
