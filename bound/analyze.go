package bound

import (
	"math"

	"github.com/akmonengine/volint/geom"
	"github.com/akmonengine/volint/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// planeTolerance is how far an edge endpoint may sit from a layer plane and
// still touch it.
const planeTolerance = geom.DistinctDistance

// Section is the cut of a mesh by one layer plane.
type Section struct {
	Position float64      // plane coordinate along the axis
	Points   []mgl64.Vec3 // candidate boundary points, in edge order
	Corners  [4]mgl64.Vec3
	Found    bool    // false when no edge touches the plane
	Area     float64 // area spanned by the corners before thin layers are folded
}

// AxisAnalysis holds the layered cuts of a mesh along one axis.
//
// Corners are the candidate points nearest to the global extreme
// combinations of the two other axes U and V, in the order (max,max),
// (max,min), (min,min), (min,max). Low and High are the outermost layers
// whose area reaches the threshold fraction of the largest one; the points
// of layers beyond them are folded into them.
type AxisAnalysis struct {
	Axis     geom.Axis
	U, V     geom.Axis
	Sections []Section
	MaxIdx   int
	Low      int
	High     int
	MaxArea  float64
}

// Range returns the plane coordinates of the Low and High layers.
func (a *AxisAnalysis) Range() (float64, float64) {
	return a.Sections[a.Low].Position, a.Sections[a.High].Position
}

// Analysis is the layered decomposition a bound mesh is built from.
type Analysis struct {
	Bounds mesh.AABB
	Axes   [3]AxisAnalysis
}

// Analyze cuts m into layers along each axis and selects the bounding
// layers. m is not modified.
func Analyze(m *mesh.Mesh, opts Options) (*Analysis, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(m.Vertices) == 0 || len(m.Polygons) == 0 {
		return nil, ErrEmptyMesh
	}

	bounds := mesh.AABBOf(m.Vertices)
	size := bounds.Size()
	for axis := geom.X; axis <= geom.Z; axis++ {
		if size[axis] <= 0 {
			return nil, flatError(axis, "zero extent")
		}
	}

	edges := m.Edges()
	a := &Analysis{Bounds: bounds}
	for axis := geom.X; axis <= geom.Z; axis++ {
		ax := analyzeAxis(m, edges, bounds, axis, opts)
		if ax.MaxArea <= 0 {
			return nil, flatError(axis, "no cross-section area")
		}
		a.Axes[axis] = ax
	}
	return a, nil
}

func analyzeAxis(m *mesh.Mesh, edges []mesh.Edge, bounds mesh.AABB, axis geom.Axis, opts Options) AxisAnalysis {
	ax := AxisAnalysis{
		Axis:     axis,
		U:        axis.Next(),
		V:        axis.Next().Next(),
		Sections: layerPlanes(bounds, axis, opts.Layers),
	}

	collectPoints(m, edges, axis, ax.Sections)

	targets := extremeTargets(bounds, ax.U, ax.V)
	for i := range ax.Sections {
		s := &ax.Sections[i]
		s.Corners, s.Found = nearestPoints(s.Points, targets, ax.U, ax.V)
		if s.Found {
			s.Area = quadArea(s.Corners, ax.U, ax.V)
		}
	}

	ax.selectLayers(opts.AreaThreshold)
	ax.foldThinLayers(targets)
	return ax
}

// layerPlanes places count planes evenly from the bounds minimum to the
// maximum, both included.
func layerPlanes(bounds mesh.AABB, axis geom.Axis, count int) []Section {
	lo, hi := bounds.Min[axis], bounds.Max[axis]
	step := (hi - lo) / float64(count-1)

	sections := make([]Section, count)
	for i := range sections {
		sections[i].Position = lo + float64(i)*step
	}
	sections[count-1].Position = hi
	return sections
}

// collectPoints intersects every edge with every layer plane of the axis.
// An edge lying in a plane adds both endpoints; an edge crossing a plane
// adds the crossing point, its axis coordinate snapped to the plane.
func collectPoints(m *mesh.Mesh, edges []mesh.Edge, axis geom.Axis, sections []Section) {
	for _, e := range edges {
		p, q := m.Endpoints(e)
		dp := q[axis] - p[axis]

		if math.Abs(dp) <= planeTolerance {
			for i := range sections {
				s := &sections[i]
				if math.Abs(p[axis]-s.Position) <= planeTolerance {
					a, b := p, q
					a[axis] = s.Position
					b[axis] = s.Position
					s.Points = append(s.Points, a, b)
				}
			}
			continue
		}

		lo := math.Min(p[axis], q[axis]) - planeTolerance
		hi := math.Max(p[axis], q[axis]) + planeTolerance
		for i := range sections {
			s := &sections[i]
			if s.Position < lo || s.Position > hi {
				continue
			}
			t := (s.Position - p[axis]) / dp
			t = math.Max(0, math.Min(1, t))
			point := p.Add(q.Sub(p).Mul(t))
			point[axis] = s.Position
			s.Points = append(s.Points, point)
		}
	}
}

// extremeTargets returns the (max,max), (max,min), (min,min), (min,max)
// combinations of the bounds on axes u and v.
func extremeTargets(bounds mesh.AABB, u, v geom.Axis) [4]mgl64.Vec3 {
	var t [4]mgl64.Vec3
	t[0][u], t[0][v] = bounds.Max[u], bounds.Max[v]
	t[1][u], t[1][v] = bounds.Max[u], bounds.Min[v]
	t[2][u], t[2][v] = bounds.Min[u], bounds.Min[v]
	t[3][u], t[3][v] = bounds.Min[u], bounds.Max[v]
	return t
}

// nearest returns the point closest to target in the (u, v) plane. Ties
// keep the earliest point.
func nearest(points []mgl64.Vec3, target mgl64.Vec3, u, v geom.Axis) (mgl64.Vec3, bool) {
	if len(points) == 0 {
		return mgl64.Vec3{}, false
	}
	best := points[0]
	bestDist := geom.Distance2D(best, target, u, v)
	for _, p := range points[1:] {
		if d := geom.Distance2D(p, target, u, v); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, true
}

func nearestPoints(points []mgl64.Vec3, targets [4]mgl64.Vec3, u, v geom.Axis) ([4]mgl64.Vec3, bool) {
	var out [4]mgl64.Vec3
	for j, target := range targets {
		p, ok := nearest(points, target, u, v)
		if !ok {
			return out, false
		}
		out[j] = p
	}
	return out, true
}

// polygonArea is the unsigned shoelace area of points in the (u, v) plane.
func polygonArea(points []mgl64.Vec3, u, v geom.Axis) float64 {
	var sum float64
	for i, p := range points {
		q := points[(i+1)%len(points)]
		sum += p[u]*q[v] - q[u]*p[v]
	}
	return math.Abs(sum) / 2
}

func quadArea(corners [4]mgl64.Vec3, u, v geom.Axis) float64 {
	return polygonArea(corners[:], u, v)
}

// selectLayers picks the largest section, first one on ties, and the
// outermost sections from each end reaching threshold times its area.
func (a *AxisAnalysis) selectLayers(threshold float64) {
	a.MaxIdx = 0
	a.MaxArea = a.Sections[0].Area
	for i, s := range a.Sections {
		if s.Area > a.MaxArea {
			a.MaxIdx, a.MaxArea = i, s.Area
		}
	}

	limit := threshold * a.MaxArea
	a.Low = a.MaxIdx
	for i := 0; i < a.MaxIdx; i++ {
		if a.Sections[i].Area >= limit {
			a.Low = i
			break
		}
	}
	a.High = a.MaxIdx
	for i := len(a.Sections) - 1; i > a.MaxIdx; i-- {
		if a.Sections[i].Area >= limit {
			a.High = i
			break
		}
	}
}

// foldThinLayers projects the points of the layers outside [Low, High] onto
// the nearest of the two and recomputes its corners.
func (a *AxisAnalysis) foldThinLayers(targets [4]mgl64.Vec3) {
	fold := func(into int, from []int) {
		dst := &a.Sections[into]
		for _, i := range from {
			for _, p := range a.Sections[i].Points {
				p[a.Axis] = dst.Position
				dst.Points = append(dst.Points, p)
			}
		}
		if len(from) > 0 {
			dst.Corners, dst.Found = nearestPoints(dst.Points, targets, a.U, a.V)
		}
	}

	var below, above []int
	for i := 0; i < a.Low; i++ {
		below = append(below, i)
	}
	for i := len(a.Sections) - 1; i > a.High; i-- {
		above = append(above, i)
	}
	fold(a.Low, below)
	fold(a.High, above)
}
