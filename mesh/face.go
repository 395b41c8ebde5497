package mesh

import (
	"github.com/akmonengine/volint/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// FaceNormalLength is the length face normals are scaled to.
const FaceNormalLength = 1.0

// FaceNormal returns the Newell normal of polygon i, unnormalized.
// Its length is twice the polygon area; it is zero for a degenerate polygon.
func (m *Mesh) FaceNormal(i int) mgl64.Vec3 {
	verts := m.Polygons[i].Verts
	var n mgl64.Vec3
	for k, cur := range verts {
		a := m.Vertices[cur]
		b := m.Vertices[verts[(k+1)%len(verts)]]
		n[0] += (a[1] - b[1]) * (a[2] + b[2])
		n[1] += (a[2] - b[2]) * (a[0] + b[0])
		n[2] += (a[0] - b[0]) * (a[1] + b[1])
	}
	return n
}

// ComputeFaceParams sets Normal and Offset of every polygon from its
// vertices, without removing anything.
func (m *Mesh) ComputeFaceParams() {
	for i := range m.Polygons {
		p := &m.Polygons[i]
		p.Normal = geom.ScaleTo(FaceNormalLength, m.FaceNormal(i))
		p.Offset = -p.Normal.Dot(m.Vertices[p.Verts[0]])
	}
}

// UpdateFaceParams recomputes every face plane and removes the polygons
// whose normal came out zero. It returns how many were removed.
func (m *Mesh) UpdateFaceParams() int {
	m.ComputeFaceParams()
	return m.DropDegenerate()
}

// DropDegenerate removes polygons with a zero length Normal, keeping the
// order of the others. It returns how many were removed.
func (m *Mesh) DropDegenerate() int {
	kept := m.Polygons[:0]
	for _, p := range m.Polygons {
		if p.Normal.Len() == 0 {
			continue
		}
		kept = append(kept, p)
	}
	removed := len(m.Polygons) - len(kept)
	// Clear the tail so dropped slices can be collected.
	for i := len(kept); i < len(m.Polygons); i++ {
		m.Polygons[i] = Polygon{}
	}
	m.Polygons = kept
	return removed
}

// InvertNormals negates every vertex normal.
func (m *Mesh) InvertNormals() {
	for i, n := range m.Normals {
		m.Normals[i] = n.Mul(-1)
	}
}

// ReverseWinding reverses the corner order of every polygon.
func (m *Mesh) ReverseWinding() {
	for i := range m.Polygons {
		p := &m.Polygons[i]
		for a, b := 0, len(p.Verts)-1; a < b; a, b = a+1, b-1 {
			p.Verts[a], p.Verts[b] = p.Verts[b], p.Verts[a]
			p.VertNorms[a], p.VertNorms[b] = p.VertNorms[b], p.VertNorms[a]
		}
	}
}

// FlipOrientation turns the mesh inside out: vertex normals, winding and
// face planes are all reversed.
func (m *Mesh) FlipOrientation() {
	m.InvertNormals()
	m.ReverseWinding()
	for i := range m.Polygons {
		p := &m.Polygons[i]
		p.Normal = p.Normal.Mul(-1)
		p.Offset = -p.Offset
	}
}
