// Package massprop derives volume, center of mass and inertia tensor of a
// closed polygon mesh with Mirtich's polyhedral mass properties algorithm.
package massprop

import (
	"errors"
	"fmt"

	"github.com/akmonengine/volint/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNegativeVolume = errors.New("negative volume")
	ErrZeroVolume     = errors.New("zero volume")
)

// VolumeError reports a mesh whose volume makes it unusable in the game.
type VolumeError struct {
	Name   string
	Role   mesh.Role
	Index  int
	Volume float64
	Err    error
}

func (e *VolumeError) Error() string {
	return fmt.Sprintf("%s has %v: %g", mesh.Label(e.Name, e.Role, e.Index), e.Err, e.Volume)
}

func (e *VolumeError) Unwrap() error {
	return e.Err
}

func volumeError(m *mesh.Mesh, volume float64, err error) *VolumeError {
	return &VolumeError{
		Name:   m.Name,
		Role:   m.Role,
		Index:  m.Index,
		Volume: volume,
		Err:    err,
	}
}

// Properties are the mass properties derived for a mesh.
type Properties struct {
	Volume       float64
	Mass         float64
	CenterOfMass mgl64.Vec3
	Inertia      mgl64.Mat3 // about the center of mass
	Bounds       mesh.AABB
	Radius       float64
}

// InverseInertia returns the inverse inertia tensor, or the zero matrix for
// a singular one.
func (p Properties) InverseInertia() mgl64.Mat3 {
	return p.Inertia.Inv()
}

// RotatedInertia returns the inertia tensor of the solid rotated by q.
func (p Properties) RotatedInertia(q mgl64.Quat) mgl64.Mat3 {
	// I_world = R * I_local * R^T
	R := q.Mat4().Mat3()
	return R.Mul3(p.Inertia).Mul3(R.Transpose())
}

// Orient recomputes the face parameters of m and integrates it. A negative
// volume means the winding is inside out: the orientation is flipped once
// and the integration re-run. A volume still negative after that is an
// ErrNegativeVolume.
func Orient(m *mesh.Mesh) (Integrals, error) {
	m.UpdateFaceParams()
	in := Integrate(m)
	if in.T0 >= 0 {
		return in, nil
	}

	m.FlipOrientation()
	m.ComputeFaceParams()
	in = Integrate(m)
	if in.T0 < 0 {
		return in, volumeError(m, in.T0, ErrNegativeVolume)
	}
	return in, nil
}

// TranslateOriented moves m by v, refreshes the face planes and makes sure
// the winding still yields a non-negative volume.
func TranslateOriented(m *mesh.Mesh, v mgl64.Vec3) error {
	m.Translate(v)
	_, err := Orient(m)
	return err
}

// Compute derives the mass properties of m with the given density and
// stores them on the mesh. Values marked in m.Overrides are kept as they
// are and used in place of derived ones.
//
// Zero volume is an ErrZeroVolume for every role that needs a solid. A
// zero volume wheel gets its bounds center as center of mass and a zero
// inertia tensor.
func Compute(m *mesh.Mesh, density float64) (Properties, error) {
	m.ComputeBounds()
	m.ComputeRadius()

	in, err := Orient(m)
	if err != nil {
		return Properties{}, err
	}
	if in.T0 == 0 && m.Role.RequiresVolume() {
		return Properties{}, volumeError(m, in.T0, ErrZeroVolume)
	}

	if !m.Overrides.Volume {
		m.Volume = in.T0
	}
	mass := density * m.Volume

	if !m.Overrides.CenterOfMass {
		if m.Volume != 0 {
			m.CenterOfMass = in.T1.Mul(1 / m.Volume)
		} else {
			m.CenterOfMass = m.Bounds.Center()
		}
	}

	if !m.Overrides.Inertia {
		if m.Volume != 0 {
			m.Inertia = inertia(in, density, mass, m.CenterOfMass)
		} else {
			m.Inertia = mgl64.Mat3{}
		}
	}

	return Properties{
		Volume:       m.Volume,
		Mass:         mass,
		CenterOfMass: m.CenterOfMass,
		Inertia:      m.Inertia,
		Bounds:       m.Bounds,
		Radius:       m.Radius,
	}, nil
}

// inertia builds the tensor about the origin from the integrals and moves
// it to rcm with the parallel axis theorem.
func inertia(in Integrals, density, mass float64, rcm mgl64.Vec3) mgl64.Mat3 {
	x, y, z := rcm[0], rcm[1], rcm[2]

	xx := density*(in.T2[1]+in.T2[2]) - mass*(y*y+z*z)
	yy := density*(in.T2[2]+in.T2[0]) - mass*(z*z+x*x)
	zz := density*(in.T2[0]+in.T2[1]) - mass*(x*x+y*y)
	xy := -density*in.TP[0] + mass*x*y
	yz := -density*in.TP[1] + mass*y*z
	zx := -density*in.TP[2] + mass*z*x

	var J mgl64.Mat3
	J.Set(0, 0, xx)
	J.Set(1, 1, yy)
	J.Set(2, 2, zz)
	J.Set(0, 1, xy)
	J.Set(1, 0, xy)
	J.Set(1, 2, yz)
	J.Set(2, 1, yz)
	J.Set(2, 0, zx)
	J.Set(0, 2, zx)
	return J
}
