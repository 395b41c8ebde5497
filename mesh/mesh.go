// Package mesh holds the polygon mesh model shared by the mass properties,
// normal smoothing and bound synthesis packages.
//
// Polygons reference vertices and normals by index. Indices stay valid across
// every operation of this package: anything that removes or merges entries
// rewrites the indices that point at them.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// NoTag marks an absent wheel/weapon association or an unassigned normal.
const NoTag = -1

// Reserved color ids understood by the game.
const (
	ColorZeroReserved uint32 = 0
	ColorBody         uint32 = 1
)

var (
	ErrVertsPerPoly     = errors.New("polygon vertex count does not match vertices per polygon")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrInvalidDimension = errors.New("invalid mesh dimension")
)

// Role tells which part of a game model a mesh is. It only matters for
// validation rules and error messages.
type Role int

const (
	RoleMain Role = iota
	RoleWheel
	RoleDebris
	RoleBound
	RoleWeapon
	RoleOther
)

func (r Role) String() string {
	switch r {
	case RoleMain:
		return "main"
	case RoleWheel:
		return "wheel"
	case RoleDebris:
		return "debris"
	case RoleBound:
		return "bound"
	case RoleWeapon:
		return "weapon"
	case RoleOther:
		return "other"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// RequiresVolume reports whether a zero volume is fatal for this role.
// The game freezes while loading any solid with no volume; wheels are only
// used for their extents.
func (r Role) RequiresVolume() bool {
	return r != RoleWheel
}

// Polygon is one face of a mesh.
type Polygon struct {
	Verts     []int // Indices into Mesh.Vertices
	VertNorms []int // Indices into Mesh.Normals, one per vertex

	// Face plane: Normal · x + Offset = 0
	Normal mgl64.Vec3
	Offset float64

	ColorID       uint32
	WheelWeaponID int // NoTag when not part of a wheel or weapon slot
	WheelID       int // NoTag when not part of a wheel
}

// NewPolygon returns a polygon with n unassigned corners.
func NewPolygon(n int) Polygon {
	p := Polygon{
		Verts:         make([]int, n),
		VertNorms:     make([]int, n),
		WheelWeaponID: NoTag,
		WheelID:       NoTag,
	}
	for i := range p.Verts {
		p.Verts[i] = NoTag
		p.VertNorms[i] = NoTag
	}
	return p
}

// Overrides marks mass properties supplied from outside. Overridden values
// are never replaced by derived ones.
type Overrides struct {
	Volume       bool
	CenterOfMass bool
	Inertia      bool
}

// Mesh is a polygon surface model plus the properties derived from it.
type Mesh struct {
	Name  string
	Role  Role
	Index int // wheel or debris number, NoTag otherwise

	Vertices     []mgl64.Vec3
	Normals      []mgl64.Vec3
	Polygons     []Polygon
	VertsPerPoly int

	Bounds       AABB
	Radius       float64 // max vertex distance from origin
	Volume       float64
	CenterOfMass mgl64.Vec3
	Inertia      mgl64.Mat3

	Overrides Overrides
}

// New creates a mesh with pre-sized vertex, normal and polygon lists for a
// reader to fill in.
func New(numVerts, numNormals, numPolygons, vertsPerPoly int) (*Mesh, error) {
	if numVerts < 0 || numNormals < 0 || numPolygons < 0 {
		return nil, fmt.Errorf("%w: negative count (%d vertices, %d normals, %d polygons)",
			ErrInvalidDimension, numVerts, numNormals, numPolygons)
	}
	if vertsPerPoly < 3 {
		return nil, fmt.Errorf("%w: %d vertices per polygon", ErrVertsPerPoly, vertsPerPoly)
	}

	m := &Mesh{
		Index:        NoTag,
		Vertices:     make([]mgl64.Vec3, numVerts),
		Normals:      make([]mgl64.Vec3, numNormals),
		Polygons:     make([]Polygon, numPolygons),
		VertsPerPoly: vertsPerPoly,
		Bounds:       EmptyAABB(),
	}
	for i := range m.Polygons {
		m.Polygons[i] = NewPolygon(vertsPerPoly)
	}
	return m, nil
}

// FromData builds a mesh from already populated lists and validates it.
// The slices are owned by the mesh afterwards.
func FromData(vertices, normals []mgl64.Vec3, polygons []Polygon, vertsPerPoly int) (*Mesh, error) {
	m := &Mesh{
		Index:        NoTag,
		Vertices:     vertices,
		Normals:      normals,
		Polygons:     polygons,
		VertsPerPoly: vertsPerPoly,
		Bounds:       EmptyAABB(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the construction contract: every polygon has
// VertsPerPoly corners, vertex indices are in range and normal indices are
// either in range or NoTag.
func (m *Mesh) Validate() error {
	if m.VertsPerPoly < 3 {
		return fmt.Errorf("%w: %d vertices per polygon", ErrVertsPerPoly, m.VertsPerPoly)
	}

	for i, p := range m.Polygons {
		if len(p.Verts) != m.VertsPerPoly {
			return fmt.Errorf("polygon %d: %w: has %d, expected %d",
				i, ErrVertsPerPoly, len(p.Verts), m.VertsPerPoly)
		}
		if len(p.VertNorms) != len(p.Verts) {
			return fmt.Errorf("polygon %d: %w: has %d normal indices for %d vertices",
				i, ErrVertsPerPoly, len(p.VertNorms), len(p.Verts))
		}
		for _, v := range p.Verts {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("polygon %d: vertex %d: %w (%d vertices)",
					i, v, ErrIndexOutOfRange, len(m.Vertices))
			}
		}
		for _, n := range p.VertNorms {
			if n == NoTag {
				continue
			}
			if n < 0 || n >= len(m.Normals) {
				return fmt.Errorf("polygon %d: normal %d: %w (%d normals)",
					i, n, ErrIndexOutOfRange, len(m.Normals))
			}
		}
	}
	return nil
}

// Describe names the mesh for error messages.
func (m *Mesh) Describe() string {
	return Label(m.Name, m.Role, m.Index)
}

// Label formats a mesh identity, e.g. `wheel 2 of model "m1"`.
// Wheel and debris numbers are printed one-based.
func Label(name string, role Role, index int) string {
	if name == "" {
		name = "<unnamed>"
	}
	switch role {
	case RoleWheel, RoleDebris:
		if index >= 0 {
			return fmt.Sprintf("%s %d of model %q", role, index+1, name)
		}
	}
	return fmt.Sprintf("%s model %q", role, name)
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Vertices = append([]mgl64.Vec3(nil), m.Vertices...)
	c.Normals = append([]mgl64.Vec3(nil), m.Normals...)
	c.Polygons = make([]Polygon, len(m.Polygons))
	for i, p := range m.Polygons {
		p.Verts = append([]int(nil), p.Verts...)
		p.VertNorms = append([]int(nil), p.VertNorms...)
		c.Polygons[i] = p
	}
	return &c
}

// CornerCount returns the number of (polygon, vertex) slots in the mesh.
func (m *Mesh) CornerCount() int {
	return len(m.Polygons) * m.VertsPerPoly
}
