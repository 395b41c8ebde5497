package mesh

import (
	"math"

	"github.com/akmonengine/volint/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Corner addresses one vertex slot of one polygon.
type Corner struct {
	Polygon int
	Slot    int
}

// CornerPosition returns the vertex position at c.
func (m *Mesh) CornerPosition(c Corner) mgl64.Vec3 {
	return m.Vertices[m.Polygons[c.Polygon].Verts[c.Slot]]
}

// RefPoints are three mesh corners used to recover the placement of a
// marker mesh (weapon slots, attachment points).
type RefPoints struct {
	One, Two, Three Corner

	TwoRelOne   mgl64.Vec3
	ThreeRelOne mgl64.Vec3

	// Angle is the rotation about y of TwoRelOne, atan2(x, z).
	Angle float64
}

// FindReferencePoints picks three non-collinear corners.
//
// The first two are the first pair in scan order whose separation exceeds
// geom.DistinctDistance on y and on x or z. The third is the first corner
// that is not collinear with them. It reports false when no such triple
// exists.
func (m *Mesh) FindReferencePoints() (RefPoints, bool) {
	corners := m.corners()

	for _, one := range corners {
		pOne := m.CornerPosition(one)
		for _, two := range corners {
			rel2 := m.CornerPosition(two).Sub(pOne)
			if !((math.Abs(rel2.X()) > geom.DistinctDistance || math.Abs(rel2.Z()) > geom.DistinctDistance) &&
				math.Abs(rel2.Y()) > geom.DistinctDistance) {
				continue
			}

			for _, three := range corners {
				rel3 := m.CornerPosition(three).Sub(pOne)
				if collinear(rel2, rel3) {
					continue
				}
				return RefPoints{
					One:         one,
					Two:         two,
					Three:       three,
					TwoRelOne:   rel2,
					ThreeRelOne: rel3,
					Angle:       math.Atan2(rel2.X(), rel2.Z()),
				}, true
			}
		}
	}
	return RefPoints{}, false
}

func (m *Mesh) corners() []Corner {
	out := make([]Corner, 0, m.CornerCount())
	for pi, p := range m.Polygons {
		for slot := range p.Verts {
			out = append(out, Corner{Polygon: pi, Slot: slot})
		}
	}
	return out
}

// collinear reports whether a and b, both relative to a common origin, are
// parallel within geom.SqrDistinctDistance on every cross product term.
func collinear(a, b mgl64.Vec3) bool {
	return math.Abs(a.X()*b.Y()-b.X()*a.Y()) < geom.SqrDistinctDistance &&
		math.Abs(a.X()*b.Z()-b.X()*a.Z()) < geom.SqrDistinctDistance &&
		math.Abs(a.Y()*b.Z()-b.Y()*a.Z()) < geom.SqrDistinctDistance
}
