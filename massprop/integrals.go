package massprop

import (
	"github.com/akmonengine/volint/geom"
	"github.com/akmonengine/volint/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// Integrals are the whole-solid volume integrals of a mesh.
//
//	T0 = ∫ 1 dV           (volume)
//	T1 = ∫ (x, y, z) dV   (first moments)
//	T2 = ∫ (x², y², z²) dV
//	TP = ∫ (xy, yz, zx) dV
type Integrals struct {
	T0 float64
	T1 mgl64.Vec3
	T2 mgl64.Vec3
	TP mgl64.Vec3
}

// projection holds the integrals over a polygon projected onto the (a, b)
// plane.
type projection struct {
	p1, pa, pb, paa, pab, pbb, paaa, paab, pabb, pbbb float64
}

// face holds the integrals over the polygon surface itself.
type face struct {
	fa, fb, fc       float64
	faa, fbb, fcc    float64
	faaa, fbbb, fccc float64
	faab, fbbc, fcca float64
}

// projectionIntegrals walks the polygon boundary, edge by edge, in the
// projection plane spanned by axes a and b.
func projectionIntegrals(m *mesh.Mesh, poly *mesh.Polygon, a, b geom.Axis) projection {
	var pr projection

	n := len(poly.Verts)
	for k := 0; k < n; k++ {
		v0 := m.Vertices[poly.Verts[k]]
		v1 := m.Vertices[poly.Verts[(k+1)%n]]

		a0, b0 := v0[a], v0[b]
		a1, b1 := v1[a], v1[b]
		da, db := a1-a0, b1-b0

		a0_2 := a0 * a0
		a0_3 := a0_2 * a0
		a0_4 := a0_3 * a0
		b0_2 := b0 * b0
		b0_3 := b0_2 * b0
		b0_4 := b0_3 * b0
		a1_2 := a1 * a1
		a1_3 := a1_2 * a1
		b1_2 := b1 * b1
		b1_3 := b1_2 * b1

		c1 := a1 + a0
		ca := a1*c1 + a0_2
		caa := a1*ca + a0_3
		caaa := a1*caa + a0_4
		cb := b1*(b1+b0) + b0_2
		cbb := b1*cb + b0_3
		cbbb := b1*cbb + b0_4
		cab := 3*a1_2 + 2*a1*a0 + a0_2
		kab := a1_2 + 2*a1*a0 + 3*a0_2
		caab := a0*cab + 4*a1_3
		kaab := a1*kab + 4*a0_3
		cabb := 4*b1_3 + 3*b1_2*b0 + 2*b1*b0_2 + b0_3
		kabb := b1_3 + 2*b1_2*b0 + 3*b1*b0_2 + 4*b0_3

		pr.p1 += db * c1
		pr.pa += db * ca
		pr.paa += db * caa
		pr.paaa += db * caaa
		pr.pb += da * cb
		pr.pbb += da * cbb
		pr.pbbb += da * cbbb
		pr.pab += db * (b1*cab + b0*kab)
		pr.paab += db * (b1*caab + b0*kaab)
		pr.pabb += da * (a1*cabb + a0*kabb)
	}

	pr.p1 /= 2.0
	pr.pa /= 6.0
	pr.paa /= 12.0
	pr.paaa /= 20.0
	pr.pb /= -6.0
	pr.pbb /= -12.0
	pr.pbbb /= -20.0
	pr.pab /= 24.0
	pr.paab /= 60.0
	pr.pabb /= -60.0

	return pr
}

// faceIntegrals lifts the projection integrals back onto the polygon plane.
// c is the dominant normal axis, so n[c] is never zero.
func faceIntegrals(m *mesh.Mesh, poly *mesh.Polygon, a, b, c geom.Axis) face {
	pr := projectionIntegrals(m, poly, a, b)

	n := poly.Normal
	w := poly.Offset
	na, nb := n[a], n[b]

	k1 := 1 / n[c]
	k2 := k1 * k1
	k3 := k2 * k1
	k4 := k3 * k1

	var f face
	f.fa = k1 * pr.pa
	f.fb = k1 * pr.pb
	f.fc = -k2 * (na*pr.pa + nb*pr.pb + w*pr.p1)

	f.faa = k1 * pr.paa
	f.fbb = k1 * pr.pbb
	f.fcc = k3 * (na*na*pr.paa + 2*na*nb*pr.pab + nb*nb*pr.pbb +
		w*(2*(na*pr.pa+nb*pr.pb)+w*pr.p1))

	f.faaa = k1 * pr.paaa
	f.fbbb = k1 * pr.pbbb
	f.fccc = -k4 * (na*na*na*pr.paaa + 3*na*na*nb*pr.paab +
		3*na*nb*nb*pr.pabb + nb*nb*nb*pr.pbbb +
		3*w*(na*na*pr.paa+2*na*nb*pr.pab+nb*nb*pr.pbb) +
		w*w*(3*(na*pr.pa+nb*pr.pb)+w*pr.p1))

	f.faab = k1 * pr.paab
	f.fbbc = -k2 * (na*pr.pabb + nb*pr.pbbb + w*pr.pbb)
	f.fcca = k3 * (na*na*pr.paaa + 2*na*nb*pr.paab + nb*nb*pr.pabb +
		w*(2*(na*pr.paa+nb*pr.pab)+w*pr.pa))

	return f
}

// Integrate computes the volume integrals of m from its face planes.
// Face parameters must be current; polygons with a zero normal contribute
// nothing.
func Integrate(m *mesh.Mesh) Integrals {
	var in Integrals

	for i := range m.Polygons {
		poly := &m.Polygons[i]
		n := poly.Normal
		if n == (mgl64.Vec3{}) {
			continue
		}

		c := geom.DominantAxis(n)
		a := c.Next()
		b := a.Next()

		f := faceIntegrals(m, poly, a, b, c)

		switch geom.X {
		case a:
			in.T0 += n[geom.X] * f.fa
		case b:
			in.T0 += n[geom.X] * f.fb
		default:
			in.T0 += n[geom.X] * f.fc
		}

		in.T1[a] += n[a] * f.faa
		in.T1[b] += n[b] * f.fbb
		in.T1[c] += n[c] * f.fcc
		in.T2[a] += n[a] * f.faaa
		in.T2[b] += n[b] * f.fbbb
		in.T2[c] += n[c] * f.fccc
		in.TP[a] += n[a] * f.faab
		in.TP[b] += n[b] * f.fbbc
		in.TP[c] += n[c] * f.fcca
	}

	in.T1 = in.T1.Mul(1.0 / 2)
	in.T2 = in.T2.Mul(1.0 / 3)
	in.TP = in.TP.Mul(1.0 / 2)

	return in
}
