package bound

import (
	"math"

	"github.com/akmonengine/volint/geom"
	"github.com/akmonengine/volint/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

const ringSize = 8

// ring is a horizontal loop of corner and edge-midpoint points, clockwise
// seen from +z: c0, m01, c1, m12, c2, m23, c3, m30.
type ring [ringSize]mgl64.Vec3

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// zRing builds the ring of z layer i. Midpoints are the candidate points
// nearest to the middle of each pair of consecutive corners. Every point is
// clamped into the x and y boundary layer ranges.
func zRing(a *Analysis, i int) ring {
	z := &a.Axes[geom.Z]
	s := &z.Sections[i]

	var r ring
	for j := 0; j < 4; j++ {
		c := s.Corners[j]
		mid := c.Add(s.Corners[(j+1)%4]).Mul(0.5)
		p, ok := nearest(s.Points, mid, z.U, z.V)
		if !ok {
			p = mid
		}
		r[2*j] = c
		r[2*j+1] = p
	}

	xlo, xhi := a.Axes[geom.X].Range()
	ylo, yhi := a.Axes[geom.Y].Range()
	for j := range r {
		r[j][0] = clamp(r[j][0], xlo, xhi)
		r[j][1] = clamp(r[j][1], ylo, yhi)
		r[j][2] = s.Position
	}
	return r
}

func (r ring) center() mgl64.Vec3 {
	var c mgl64.Vec3
	for _, p := range r {
		c = c.Add(p)
	}
	return c.Mul(1.0 / ringSize)
}

// flatRing is the vehicle bottom ring: the bottom ring pressed down to the
// wheel bottom and narrowed to the wheel extents.
func flatRing(a *Analysis, bottom ring, wheels *mesh.AABB) ring {
	bounds := a.Bounds
	flat := bottom

	if wheels == nil || wheels.IsEmpty() {
		for j := range flat {
			flat[j][2] = bounds.Min.Z()
		}
		return flat
	}

	// Wheels clear of the mesh keep the bottom ring footprint.
	foot, ok := wheels.Intersect(bounds)
	if !ok {
		foot = bounds
	}
	z := clamp(wheels.Min.Z(), bounds.Min.Z(), bottom[0].Z())

	for j := range flat {
		flat[j][0] = clamp(flat[j][0], foot.Min.X(), foot.Max.X())
		flat[j][1] = clamp(flat[j][1], foot.Min.Y(), foot.Max.Y())
		flat[j][2] = z
	}
	return flat
}

// =============================================================================
// Template assembly
// =============================================================================

type triangle struct {
	verts [3]int
	color uint32
}

type builder struct {
	verts []mgl64.Vec3
	tris  []triangle
}

func (b *builder) addPoint(p mgl64.Vec3) int {
	b.verts = append(b.verts, p)
	return len(b.verts) - 1
}

func (b *builder) addRing(r ring) int {
	base := len(b.verts)
	b.verts = append(b.verts, r[:]...)
	return base
}

// cap fans a ring around its center. up selects a +z facing cap.
func (b *builder) cap(center, base int, up bool, color uint32) {
	for i := 0; i < ringSize; i++ {
		cur := base + i
		next := base + (i+1)%ringSize
		if up {
			b.tris = append(b.tris, triangle{verts: [3]int{center, next, cur}, color: color})
		} else {
			b.tris = append(b.tris, triangle{verts: [3]int{center, cur, next}, color: color})
		}
	}
}

// band joins a lower ring to an upper one with outward facing triangles.
func (b *builder) band(lower, upper int, color uint32) {
	for i := 0; i < ringSize; i++ {
		bi, bn := lower+i, lower+(i+1)%ringSize
		ti, tn := upper+i, upper+(i+1)%ringSize
		b.tris = append(b.tris,
			triangle{verts: [3]int{bi, ti, tn}, color: color},
			triangle{verts: [3]int{bi, tn, bn}, color: color},
		)
	}
}

// build turns the template into a bound mesh. Degenerate triangles, from
// rings sharing a layer or repeated ring points, are dropped.
func (b *builder) build() *mesh.Mesh {
	m := &mesh.Mesh{
		Role:         mesh.RoleBound,
		Index:        mesh.NoTag,
		Vertices:     b.verts,
		Polygons:     make([]mesh.Polygon, len(b.tris)),
		VertsPerPoly: 3,
	}
	for i, t := range b.tris {
		p := mesh.NewPolygon(3)
		copy(p.Verts, t.verts[:])
		p.ColorID = t.color
		m.Polygons[i] = p
	}

	m.UpdateFaceParams()

	m.Normals = make([]mgl64.Vec3, len(m.Polygons))
	for i := range m.Polygons {
		p := &m.Polygons[i]
		m.Normals[i] = p.Normal
		for k := range p.VertNorms {
			p.VertNorms[k] = i
		}
	}
	m.ComputeBounds()
	return m
}

func otherTemplate(a *Analysis, opts Options) *builder {
	z := &a.Axes[geom.Z]
	bottom := zRing(a, z.Low)
	top := zRing(a, z.High)

	b := &builder{}
	lo := b.addRing(bottom)
	hi := b.addRing(top)
	loCenter := b.addPoint(bottom.center())
	hiCenter := b.addPoint(top.center())

	b.cap(loCenter, lo, false, opts.Color)
	b.band(lo, hi, opts.Color)
	b.cap(hiCenter, hi, true, opts.Color)
	return b
}

func vehicleTemplate(a *Analysis, opts Options) *builder {
	z := &a.Axes[geom.Z]
	bottom := zRing(a, z.Low)
	widest := zRing(a, z.MaxIdx)
	top := zRing(a, z.High)
	flat := flatRing(a, bottom, opts.WheelBounds)

	b := &builder{}
	f := b.addRing(flat)
	lo := b.addRing(bottom)
	mid := b.addRing(widest)
	hi := b.addRing(top)
	fCenter := b.addPoint(flat.center())
	hiCenter := b.addPoint(top.center())

	b.cap(fCenter, f, false, opts.ReservedColor)
	b.band(f, lo, opts.Color)
	b.band(lo, mid, opts.Color)
	b.band(mid, hi, opts.Color)
	b.cap(hiCenter, hi, true, opts.Color)
	return b
}
