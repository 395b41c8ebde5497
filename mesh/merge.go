package mesh

import "fmt"

// Merge appends the geometry of others to m, shifting the vertex and normal
// indices of the appended polygons. Derived mass properties are left as
// they were; bounds are recomputed if m had any.
func (m *Mesh) Merge(others ...*Mesh) error {
	for _, o := range others {
		if o.VertsPerPoly != m.VertsPerPoly {
			return fmt.Errorf("merging %s into %s: %w: %d vs %d",
				o.Describe(), m.Describe(), ErrVertsPerPoly, o.VertsPerPoly, m.VertsPerPoly)
		}
	}

	for _, o := range others {
		vertOffset, normOffset := len(m.Vertices), len(m.Normals)
		m.Vertices = append(m.Vertices, o.Vertices...)
		m.Normals = append(m.Normals, o.Normals...)

		for _, p := range o.Polygons {
			p.Verts = append([]int(nil), p.Verts...)
			p.VertNorms = append([]int(nil), p.VertNorms...)
			for i := range p.Verts {
				p.Verts[i] += vertOffset
				if p.VertNorms[i] != NoTag {
					p.VertNorms[i] += normOffset
				}
			}
			m.Polygons = append(m.Polygons, p)
		}
	}

	if !m.Bounds.IsEmpty() {
		m.ComputeBounds()
	}
	return nil
}
