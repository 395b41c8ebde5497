package mesh

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// PolygonsByColor returns the indices of polygons with the given color id.
func (m *Mesh) PolygonsByColor(color uint32) []int {
	var out []int
	for i, p := range m.Polygons {
		if p.ColorID == color {
			out = append(out, i)
		}
	}
	return out
}

// PolygonsByTags returns the indices of polygons with the given color id and
// wheel/weapon id.
func (m *Mesh) PolygonsByTags(color uint32, wheelWeaponID int) []int {
	var out []int
	for i, p := range m.Polygons {
		if p.ColorID == color && p.WheelWeaponID == wheelWeaponID {
			out = append(out, i)
		}
	}
	return out
}

// VerticesOf returns the sorted, unique vertex indices used by polygons.
func (m *Mesh) VerticesOf(polygons []int) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, pi := range polygons {
		for _, v := range m.Polygons[pi].Verts {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// BoundsOf returns the bounding box of the vertices used by polygons.
func (m *Mesh) BoundsOf(polygons []int) AABB {
	box := EmptyAABB()
	for _, v := range m.VerticesOf(polygons) {
		box = box.Extend(m.Vertices[v])
	}
	return box
}

// WheelBounds returns the bounding box of each wheel, keyed by WheelID.
// Polygons without a wheel id are ignored.
func (m *Mesh) WheelBounds() map[int]AABB {
	out := make(map[int]AABB)
	for _, p := range m.Polygons {
		if p.WheelID == NoTag {
			continue
		}
		box, ok := out[p.WheelID]
		if !ok {
			box = EmptyAABB()
		}
		for _, v := range p.Verts {
			box = box.Extend(m.Vertices[v])
		}
		out[p.WheelID] = box
	}
	return out
}

// Edge is an undirected mesh edge between two vertex indices, A < B.
type Edge struct {
	A, B int
}

// NewEdge returns the edge between a and b in normalized order.
func NewEdge(a, b int) Edge {
	if a < b {
		return Edge{A: a, B: b}
	}
	return Edge{A: b, B: a}
}

// Endpoints returns the positions of the edge vertices.
func (m *Mesh) Endpoints(e Edge) (mgl64.Vec3, mgl64.Vec3) {
	return m.Vertices[e.A], m.Vertices[e.B]
}

// Edges returns each edge of the mesh once, in order of first appearance
// walking polygons and their corners.
func (m *Mesh) Edges() []Edge {
	seen := make(map[Edge]struct{}, m.CornerCount())
	edges := make([]Edge, 0, m.CornerCount()/2+1)
	for _, p := range m.Polygons {
		for k, cur := range p.Verts {
			next := p.Verts[(k+1)%len(p.Verts)]
			if cur == next {
				continue
			}
			e := NewEdge(cur, next)
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			edges = append(edges, e)
		}
	}
	return edges
}
