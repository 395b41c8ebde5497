package mesh

import "github.com/go-gl/mathgl/mgl64"

// boxFaces lists the corners of each box face, counter-clockwise seen from
// outside. Corner i sits at x = bit 0, y = bit 1, z = bit 2 (0 = min, 1 = max).
var boxFaces = [6][4]int{
	{1, 3, 7, 5}, // +X
	{0, 4, 6, 2}, // -X
	{2, 6, 7, 3}, // +Y
	{0, 1, 5, 4}, // -Y
	{4, 5, 7, 6}, // +Z
	{0, 2, 3, 1}, // -Z
}

var boxNormals = [6]mgl64.Vec3{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// NewBox returns the closed quad mesh of the box spanning lo and hi, with
// outward face planes and one flat normal per face.
func NewBox(lo, hi mgl64.Vec3) *Mesh {
	m := &Mesh{
		Name:         "box",
		Role:         RoleOther,
		Index:        NoTag,
		Vertices:     make([]mgl64.Vec3, 8),
		Normals:      append([]mgl64.Vec3(nil), boxNormals[:]...),
		Polygons:     make([]Polygon, 0, len(boxFaces)),
		VertsPerPoly: 4,
	}

	for i := range m.Vertices {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				m.Vertices[i][axis] = hi[axis]
			} else {
				m.Vertices[i][axis] = lo[axis]
			}
		}
	}

	for f, corners := range boxFaces {
		p := NewPolygon(4)
		p.ColorID = ColorBody
		for k, c := range corners {
			p.Verts[k] = c
			p.VertNorms[k] = f
		}
		m.Polygons = append(m.Polygons, p)
	}

	m.ComputeFaceParams()
	m.ComputeBounds()
	return m
}
