// Package geom holds the small vector kernel shared by the mesh, mass
// properties, normals and bound packages. Vectors are mgl64.Vec3 values:
// every operation returns a new vector, in-place updates are reassignments.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DistinctDistance is the distance under which two coordinates are
	// considered equal.
	DistinctDistance = 1e-5
	// SqrDistinctDistance is used for tolerances on products of two
	// coordinates (cross products, areas).
	SqrDistinctDistance = DistinctDistance * DistinctDistance
)

// Axis identifies one of the three coordinate axes.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	default:
		return "unknown"
	}
}

// Next returns the following axis in cyclic order (x -> y -> z -> x).
func (a Axis) Next() Axis {
	return (a + 1) % 3
}

// ScaleTo returns v rescaled to the given length.
// A zero vector stays zero.
func ScaleTo(length float64, v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(length / l)
}

// Angle returns the angle in radians between a and b, in [0, π].
// Rounding that pushes the cosine out of [-1, 1] snaps to 0 or π.
// The angle with a zero vector is 0.
func Angle(a, b mgl64.Vec3) float64 {
	length := a.Len() * b.Len()
	if length == 0 {
		return 0
	}
	dot := a.Dot(b)
	cosine := dot / length
	if math.Abs(cosine) >= 1.0 {
		if dot >= 0 {
			return 0
		}
		return math.Pi
	}
	return math.Acos(cosine)
}

// ApproxEqual reports whether a and b differ by less than tolerance on
// every component.
func ApproxEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a[0]-b[0]) < tolerance &&
		math.Abs(a[1]-b[1]) < tolerance &&
		math.Abs(a[2]-b[2]) < tolerance
}

// Distinct reports whether a and b are further apart than DistinctDistance
// on at least one component.
func Distinct(a, b mgl64.Vec3) bool {
	return !ApproxEqual(a, b, DistinctDistance)
}

// DominantAxis returns the axis along which n has the largest absolute
// component. Ties go to the later axis.
func DominantAxis(n mgl64.Vec3) Axis {
	nx := math.Abs(n[0])
	ny := math.Abs(n[1])
	nz := math.Abs(n[2])
	if nx > ny && nx > nz {
		return X
	}
	if ny > nz {
		return Y
	}
	return Z
}

// Accumulate adds v to *dst.
func Accumulate(dst *mgl64.Vec3, v mgl64.Vec3) {
	dst[0] += v[0]
	dst[1] += v[1]
	dst[2] += v[2]
}

// Distance2D returns the squared distance between a and b using only the
// u and v coordinates.
func Distance2D(a, b mgl64.Vec3, u, v Axis) float64 {
	du := a[u] - b[u]
	dv := a[v] - b[v]
	return du*du + dv*dv
}
