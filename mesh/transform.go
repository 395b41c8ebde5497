package mesh

import (
	"math"

	"github.com/akmonengine/volint/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// ComputeBounds recomputes Bounds from every vertex of the mesh.
func (m *Mesh) ComputeBounds() AABB {
	m.Bounds = AABBOf(m.Vertices)
	return m.Bounds
}

// Center returns the center of the vertex bounding box.
func (m *Mesh) Center() mgl64.Vec3 {
	return m.ComputeBounds().Center()
}

// ComputeRadius sets Radius to the largest vertex distance from the origin.
func (m *Mesh) ComputeRadius() float64 {
	var r2 float64
	for _, v := range m.Vertices {
		r2 = math.Max(r2, v.Dot(v))
	}
	m.Radius = math.Sqrt(r2)
	return m.Radius
}

// Translate moves every vertex and the face planes by v.
// Bounds and center of mass follow when they are set.
func (m *Mesh) Translate(v mgl64.Vec3) {
	for i := range m.Vertices {
		m.Vertices[i] = m.Vertices[i].Add(v)
	}
	for i := range m.Polygons {
		p := &m.Polygons[i]
		p.Offset -= p.Normal.Dot(v)
	}
	if !m.Bounds.IsEmpty() {
		m.Bounds = AABB{Min: m.Bounds.Min.Add(v), Max: m.Bounds.Max.Add(v)}
	}
	m.CenterOfMass = m.CenterOfMass.Add(v)
}

// TranslateCoords moves the coordinate system origin to p.
func (m *Mesh) TranslateCoords(p mgl64.Vec3) {
	m.Translate(p.Mul(-1))
}

// CenterAtBounds moves the origin to the center of the vertex bounding box
// and returns the offset that was applied to the old coordinates.
func (m *Mesh) CenterAtBounds() mgl64.Vec3 {
	c := m.Center()
	m.TranslateCoords(c)
	return c
}

// Rotate rotates the mesh by angle radians about axis. Vertices, vertex
// normals and face normals turn together; offsets are unchanged since the
// rotation keeps the origin. The center of mass and the inertia tensor,
// computed or overridden, are carried into the new frame.
func (m *Mesh) Rotate(angle float64, axis geom.Axis) {
	if angle == 0 {
		return
	}
	sin, cos := math.Sincos(angle)
	for i, v := range m.Vertices {
		m.Vertices[i] = geom.RotateAxis(v, sin, cos, axis)
	}
	for i, n := range m.Normals {
		m.Normals[i] = geom.RotateAxis(n, sin, cos, axis)
	}
	for i := range m.Polygons {
		p := &m.Polygons[i]
		p.Normal = geom.RotateAxis(p.Normal, sin, cos, axis)
	}
	m.CenterOfMass = geom.RotateAxis(m.CenterOfMass, sin, cos, axis)

	// I' = R * I * R^T
	R := mgl64.Mat3FromCols(
		geom.RotateAxis(mgl64.Vec3{1, 0, 0}, sin, cos, axis),
		geom.RotateAxis(mgl64.Vec3{0, 1, 0}, sin, cos, axis),
		geom.RotateAxis(mgl64.Vec3{0, 0, 1}, sin, cos, axis),
	)
	m.Inertia = R.Mul3(m.Inertia).Mul3(R.Transpose())
	if !m.Bounds.IsEmpty() {
		m.ComputeBounds()
	}
}
