// Package normals regenerates smooth shading normals for a mesh.
//
// Every polygon corner gets a normal averaged from the faces around its
// vertex whose dihedral angle with the corner's own face is under a
// smoothing threshold. Faces are weighted by area and by their interior
// angle at the vertex. Equal normals are then merged so the mesh stores
// each direction once.
package normals

import (
	"math"

	"github.com/akmonengine/volint/geom"
	"github.com/akmonengine/volint/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// corner is one vertex slot of one polygon.
type corner struct {
	polygon int
	slot    int
}

// pairKey identifies an unordered polygon pair.
type pairKey struct {
	lo, hi int
}

func makePairKey(a, b int) pairKey {
	if a < b {
		return pairKey{lo: a, hi: b}
	}
	return pairKey{lo: b, hi: a}
}

// Recalculate replaces the vertex normals of m. Polygons whose face normals
// differ by less than maxSmoothAngle radians (inclusive, within
// geom.DistinctDistance) are smoothed across the vertices they share.
// Face parameters must be current. It returns the number of normals kept
// after deduplication.
func Recalculate(m *mesh.Mesh, maxSmoothAngle float64) int {
	raw := faceNormals(m)
	angles := cornerAngles(m)
	around := vertexCorners(m)
	smooth := smoothPairs(m, around, maxSmoothAngle)

	accumulated := accumulate(m, raw, angles, around, smooth)
	for i, n := range accumulated {
		accumulated[i] = geom.ScaleTo(1, n)
	}

	return dedup(m, accumulated)
}

// RecalculateDegrees is Recalculate with the threshold in degrees.
func RecalculateDegrees(m *mesh.Mesh, maxSmoothDegrees float64) int {
	return Recalculate(m, mgl64.DegToRad(maxSmoothDegrees))
}

// faceNormals returns the Newell normal of each polygon. Its length is
// proportional to the polygon area, which is the area weight.
func faceNormals(m *mesh.Mesh) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(m.Polygons))
	for i := range m.Polygons {
		out[i] = m.FaceNormal(i)
	}
	return out
}

// cornerAngles returns the interior angle of each polygon corner.
func cornerAngles(m *mesh.Mesh) [][]float64 {
	out := make([][]float64, len(m.Polygons))
	for pi, p := range m.Polygons {
		n := len(p.Verts)
		out[pi] = make([]float64, n)
		for slot := range p.Verts {
			prev := m.Vertices[p.Verts[(slot-1+n)%n]]
			cur := m.Vertices[p.Verts[slot]]
			next := m.Vertices[p.Verts[(slot+1)%n]]
			out[pi][slot] = geom.Angle(cur.Sub(prev), cur.Sub(next))
		}
	}
	return out
}

// vertexCorners lists, for each vertex, the polygons using it and the slot
// they use it at, in polygon order. A polygon using a vertex twice is
// listed once with its first slot.
func vertexCorners(m *mesh.Mesh) [][]corner {
	out := make([][]corner, len(m.Vertices))
	for pi, p := range m.Polygons {
		for slot, v := range p.Verts {
			if containsPolygon(out[v], pi) {
				continue
			}
			out[v] = append(out[v], corner{polygon: pi, slot: slot})
		}
	}
	return out
}

func containsPolygon(list []corner, polygon int) bool {
	for _, c := range list {
		if c.polygon == polygon {
			return true
		}
	}
	return false
}

// smoothPairs decides, for every polygon pair sharing a vertex, whether
// their shared corners are smoothed. The dihedral angle is taken between
// the unit face normals and computed once per pair.
func smoothPairs(m *mesh.Mesh, around [][]corner, maxSmoothAngle float64) map[pairKey]bool {
	smooth := make(map[pairKey]bool)
	for _, list := range around {
		for i, a := range list {
			for _, b := range list[i+1:] {
				key := makePairKey(a.polygon, b.polygon)
				if _, ok := smooth[key]; ok {
					continue
				}
				angle := geom.Angle(m.Polygons[a.polygon].Normal, m.Polygons[b.polygon].Normal)
				smooth[key] = angle-maxSmoothAngle < geom.DistinctDistance
			}
		}
	}
	return smooth
}

// accumulate returns one unnormalized normal per corner, flattened in
// polygon then slot order.
func accumulate(m *mesh.Mesh, raw []mgl64.Vec3, angles [][]float64, around [][]corner, smooth map[pairKey]bool) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, 0, m.CornerCount())
	for pi, p := range m.Polygons {
		for slot, v := range p.Verts {
			n := raw[pi].Mul(angles[pi][slot])
			for _, other := range around[v] {
				if other.polygon == pi {
					continue
				}
				if !smooth[makePairKey(pi, other.polygon)] {
					continue
				}
				geom.Accumulate(&n, raw[other.polygon].Mul(angles[other.polygon][other.slot]))
			}
			out = append(out, n)
		}
	}
	return out
}

// =============================================================================
// Lattice deduplication
// =============================================================================

// LatticeScale is the number of lattice steps per unit. Normal components
// equal after rounding to 1/LatticeScale are merged.
const LatticeScale = 1e5

const (
	latticeBits = 18
	latticeMax  = 2 * LatticeScale
)

type latticeKey uint64

func quantize(x float64) uint64 {
	q := math.Round(x*LatticeScale) + LatticeScale
	q = math.Max(0, math.Min(latticeMax, q))
	return uint64(q)
}

func dequantize(q uint64) float64 {
	return (float64(q) - LatticeScale) / LatticeScale
}

func keyOf(n mgl64.Vec3) latticeKey {
	return latticeKey(quantize(n[0])<<(2*latticeBits) | quantize(n[1])<<latticeBits | quantize(n[2]))
}

func (k latticeKey) vec() mgl64.Vec3 {
	const mask = 1<<latticeBits - 1
	return mgl64.Vec3{
		dequantize(uint64(k) >> (2 * latticeBits) & mask),
		dequantize(uint64(k) >> latticeBits & mask),
		dequantize(uint64(k) & mask),
	}
}

// dedup stores the unique lattice points of perCorner, rescaled to unit
// length, as the mesh normals in first seen order, and points every polygon
// corner at its entry.
func dedup(m *mesh.Mesh, perCorner []mgl64.Vec3) int {
	index := make(map[latticeKey]int, len(perCorner))
	normals := make([]mgl64.Vec3, 0, len(perCorner))

	c := 0
	for pi := range m.Polygons {
		p := &m.Polygons[pi]
		for slot := range p.VertNorms {
			key := keyOf(perCorner[c])
			c++

			id, ok := index[key]
			if !ok {
				id = len(normals)
				index[key] = id
				normals = append(normals, geom.ScaleTo(1, key.vec()))
			}
			p.VertNorms[slot] = id
		}
	}

	m.Normals = normals
	return len(normals)
}
