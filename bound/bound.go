// Package bound synthesizes low polygon proxy meshes used by the game as
// collision bounds.
//
// The source mesh is cut into evenly spaced layers along each axis. Layer
// cross-sections are approximated by their extreme points, thin layers at
// both ends are folded into the outermost substantial ones, and a fixed
// triangle template is stretched over a few horizontal rings taken from
// the z layers.
package bound

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/volint/geom"
	"github.com/akmonengine/volint/mesh"
)

var (
	ErrInvalidLayers    = errors.New("bound layer count must be at least 2")
	ErrInvalidThreshold = errors.New("bound area threshold must be in (0, 1]")
	ErrEmptyMesh        = errors.New("mesh has no geometry")
	ErrFlatMesh         = errors.New("mesh is flat")
)

func flatError(axis geom.Axis, reason string) error {
	return fmt.Errorf("%w along %s: %s", ErrFlatMesh, axis, reason)
}

// Kind selects the proxy template.
type Kind int

const (
	// Other is a two ring hull for any solid.
	Other Kind = iota
	// Vehicle adds a ring at the widest layer and a flattened bottom ring
	// standing on the wheels.
	Vehicle
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "other"
	case Vehicle:
		return "vehicle"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// ParseKind maps a template name to its Kind. The empty name is Other.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "", "other":
		return Other, nil
	case "vehicle":
		return Vehicle, nil
	default:
		return Other, fmt.Errorf("unknown bound kind %q", name)
	}
}

// Options controls bound synthesis.
type Options struct {
	Kind          Kind
	Layers        int     // number of cutting planes per axis, ends included
	AreaThreshold float64 // fraction of the largest section a boundary layer needs

	// WheelBounds limits the flattened bottom ring of a vehicle. When nil
	// the ring is placed at the mesh bottom with the bottom ring extents.
	WheelBounds *mesh.AABB

	Color         uint32 // color id of the proxy polygons
	ReservedColor uint32 // color id of the vehicle bottom cap
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Kind:          Other,
		Layers:        10,
		AreaThreshold: 0.5,
		Color:         mesh.ColorBody,
		ReservedColor: mesh.ColorZeroReserved,
	}
}

// Validate checks the layer count and area threshold.
func (o Options) Validate() error {
	if o.Layers < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidLayers, o.Layers)
	}
	if math.IsNaN(o.AreaThreshold) || o.AreaThreshold <= 0 || o.AreaThreshold > 1 {
		return fmt.Errorf("%w: got %g", ErrInvalidThreshold, o.AreaThreshold)
	}
	return nil
}

// Generate builds the proxy mesh of m. The result is a triangle mesh with
// role mesh.RoleBound, current face planes and one flat normal per polygon.
// ErrFlatMesh is returned when the low and high boundary layers of an axis
// coincide, which would give a proxy without volume. m is not modified.
func Generate(m *mesh.Mesh, opts Options) (*mesh.Mesh, error) {
	a, err := Analyze(m, opts)
	if err != nil {
		return nil, err
	}
	// The rings are spread between the boundary layers of every axis.
	for _, ax := range a.Axes {
		if ax.Low == ax.High {
			return nil, flatError(ax.Axis, fmt.Sprintf("single boundary layer %d", ax.Low))
		}
	}

	var b *builder
	switch opts.Kind {
	case Vehicle:
		b = vehicleTemplate(a, opts)
	default:
		b = otherTemplate(a, opts)
	}

	out := b.build()
	out.Name = m.Name
	out.Index = m.Index
	return out, nil
}
