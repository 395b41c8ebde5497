package bound

import (
	"errors"
	"math"
	"testing"

	"github.com/akmonengine/volint/geom"
	"github.com/akmonengine/volint/massprop"
	"github.com/akmonengine/volint/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

const tolerance = 1e-9

func floatEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

// meshBuilder assembles test meshes out of quads, sharing equal vertices.
type meshBuilder struct {
	verts []mgl64.Vec3
	index map[mgl64.Vec3]int
	polys []mesh.Polygon
}

func newMeshBuilder() *meshBuilder {
	return &meshBuilder{index: make(map[mgl64.Vec3]int)}
}

func (b *meshBuilder) vertex(p mgl64.Vec3) int {
	if i, ok := b.index[p]; ok {
		return i
	}
	b.verts = append(b.verts, p)
	b.index[p] = len(b.verts) - 1
	return len(b.verts) - 1
}

func (b *meshBuilder) quad(a, c, d, e mgl64.Vec3) {
	p := mesh.NewPolygon(4)
	copy(p.Verts, []int{b.vertex(a), b.vertex(c), b.vertex(d), b.vertex(e)})
	p.ColorID = mesh.ColorBody
	b.polys = append(b.polys, p)
}

// box adds the axis-aligned box [lo, hi] with every face split into n x n
// quads, so edge midpoints exist as vertices.
func (b *meshBuilder) box(lo, hi mgl64.Vec3, n int) {
	s := hi.Sub(lo)
	x := mgl64.Vec3{s.X(), 0, 0}
	y := mgl64.Vec3{0, s.Y(), 0}
	z := mgl64.Vec3{0, 0, s.Z()}

	// origin, du, dv with du x dv pointing outward
	faces := [6][3]mgl64.Vec3{
		{lo, y, x},        // -Z
		{lo.Add(z), x, y}, // +Z
		{lo, x, z},        // -Y
		{lo.Add(y), z, x}, // +Y
		{lo, z, y},        // -X
		{lo.Add(x), y, z}, // +X
	}

	at := func(o, du, dv mgl64.Vec3, i, j int) mgl64.Vec3 {
		fi := float64(i) / float64(n)
		fj := float64(j) / float64(n)
		return o.Add(du.Mul(fi)).Add(dv.Mul(fj))
	}

	for _, f := range faces {
		o, du, dv := f[0], f[1], f[2]
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				b.quad(at(o, du, dv, i, j), at(o, du, dv, i+1, j), at(o, du, dv, i+1, j+1), at(o, du, dv, i, j+1))
			}
		}
	}
}

func (b *meshBuilder) build(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.FromData(b.verts, nil, b.polys, 4)
	if err != nil {
		t.Fatalf("FromData() error = %v", err)
	}
	m.UpdateFaceParams()
	return m
}

// frustum has a 4x4 square base at z = 0 and a 2x2 square top at z = 2.
func frustum(t *testing.T) *mesh.Mesh {
	t.Helper()
	b := newMeshBuilder()
	b0 := [4]mgl64.Vec3{{-2, -2, 0}, {2, -2, 0}, {2, 2, 0}, {-2, 2, 0}}
	t0 := [4]mgl64.Vec3{{-1, -1, 2}, {1, -1, 2}, {1, 1, 2}, {-1, 1, 2}}
	b.quad(b0[0], b0[3], b0[2], b0[1]) // base, facing -z
	b.quad(t0[0], t0[1], t0[2], t0[3]) // top, facing +z
	for i := 0; i < 4; i++ {
		n := (i + 1) % 4
		b.quad(b0[i], b0[n], t0[n], t0[i])
	}
	return b.build(t)
}

// vehicle stacks three body boxes over a narrow block standing in for the
// wheels. Section areas along z: 1 below z = 1, 6 up to z = 2, 8 up to
// z = 3 and 6 up to the roof.
func vehicle(t *testing.T) (*mesh.Mesh, mesh.AABB) {
	t.Helper()
	b := newMeshBuilder()
	wheels := mesh.AABB{Min: mgl64.Vec3{-0.5, -0.5, 0}, Max: mgl64.Vec3{0.5, 0.5, 1}}
	b.box(wheels.Min, wheels.Max, 2)
	b.box(mgl64.Vec3{-1.5, -1, 1}, mgl64.Vec3{1.5, 1, 2}, 2)
	b.box(mgl64.Vec3{-2, -1, 2}, mgl64.Vec3{2, 1, 3}, 2)
	b.box(mgl64.Vec3{-1.5, -1, 3}, mgl64.Vec3{1.5, 1, 4}, 2)
	return b.build(t), wheels
}

func checkContainment(t *testing.T, source, proxy *mesh.Mesh) {
	t.Helper()
	bounds := mesh.AABBOf(source.Vertices)
	for i, v := range proxy.Vertices {
		if !bounds.ContainsPointTolerance(v, tolerance) {
			t.Errorf("proxy vertex %d = %v outside source bounds %v", i, v, bounds)
		}
	}
}

// =============================================================================
// Options Tests
// =============================================================================

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{"defaults", DefaultOptions(), nil},
		{"one layer", Options{Layers: 1, AreaThreshold: 0.5}, ErrInvalidLayers},
		{"zero threshold", Options{Layers: 4, AreaThreshold: 0}, ErrInvalidThreshold},
		{"threshold above one", Options{Layers: 4, AreaThreshold: 1.5}, ErrInvalidThreshold},
		{"NaN threshold", Options{Layers: 4, AreaThreshold: math.NaN()}, ErrInvalidThreshold},
		{"threshold of one", Options{Layers: 2, AreaThreshold: 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		want    Kind
		wantErr bool
	}{
		{"", Other, false},
		{"other", Other, false},
		{"vehicle", Vehicle, false},
		{"mechos", Other, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseKind(%q) = %v, %v", tt.name, got, err)
		}
		if err == nil && tt.name != "" && got.String() != tt.name {
			t.Errorf("%v.String() = %q", got, got.String())
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	empty := &mesh.Mesh{VertsPerPoly: 3}
	if _, err := Generate(empty, DefaultOptions()); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("Generate(empty) error = %v, want ErrEmptyMesh", err)
	}

	verts := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	tri := mesh.NewPolygon(3)
	copy(tri.Verts, []int{0, 1, 2})
	flat, err := mesh.FromData(verts, nil, []mesh.Polygon{tri}, 3)
	if err != nil {
		t.Fatalf("FromData() error = %v", err)
	}
	if _, err := Generate(flat, DefaultOptions()); !errors.Is(err, ErrFlatMesh) {
		t.Errorf("Generate(flat) error = %v, want ErrFlatMesh", err)
	}

	box := mesh.NewBox(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})
	if _, err := Generate(box, Options{Layers: 1, AreaThreshold: 0.5}); !errors.Is(err, ErrInvalidLayers) {
		t.Errorf("Generate() error = %v, want ErrInvalidLayers", err)
	}
}

func TestGenerateSingleBoundaryLayer(t *testing.T) {
	// The frustum base is the only layer reaching the full area.
	m := frustum(t)
	opts := Options{Kind: Other, Layers: 5, AreaThreshold: 1}

	a, err := Analyze(m, opts)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if z := a.Axes[geom.Z]; z.Low != z.High {
		t.Fatalf("Low, High = %d, %d, want a single layer", z.Low, z.High)
	}

	proxy, err := Generate(m, opts)
	if !errors.Is(err, ErrFlatMesh) {
		t.Fatalf("Generate() = %v, %v, want ErrFlatMesh", proxy, err)
	}

	opts.Kind = Vehicle
	if _, err := Generate(m, opts); !errors.Is(err, ErrFlatMesh) {
		t.Errorf("Generate(vehicle) error = %v, want ErrFlatMesh", err)
	}
}

// =============================================================================
// Analysis Tests
// =============================================================================

func TestAnalyzeFrustum(t *testing.T) {
	m := frustum(t)
	a, err := Analyze(m, Options{Layers: 5, AreaThreshold: 0.5})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	z := a.Axes[geom.Z]
	wantAreas := []float64{16, 12.25, 9, 6.25, 4}
	for i, s := range z.Sections {
		if !floatEqual(s.Position, float64(i)*0.5, tolerance) {
			t.Errorf("layer %d at %v, want %v", i, s.Position, float64(i)*0.5)
		}
		if !floatEqual(s.Area, wantAreas[i], tolerance) {
			t.Errorf("layer %d area = %v, want %v", i, s.Area, wantAreas[i])
		}
	}
	if z.MaxIdx != 0 || z.Low != 0 || z.High != 2 {
		t.Errorf("MaxIdx, Low, High = %d, %d, %d, want 0, 0, 2", z.MaxIdx, z.Low, z.High)
	}

	// Folded points sit on the High plane and leave its corners alone.
	top := z.Sections[z.High]
	for _, p := range top.Points {
		if !floatEqual(p.Z(), 1, tolerance) {
			t.Fatalf("point %v not on the High plane", p)
		}
	}
	want := [4]mgl64.Vec3{{1.5, 1.5, 1}, {1.5, -1.5, 1}, {-1.5, -1.5, 1}, {-1.5, 1.5, 1}}
	for j := range want {
		if top.Corners[j] != want[j] {
			t.Errorf("High corner %d = %v, want %v", j, top.Corners[j], want[j])
		}
	}
}

func TestLayerSelectionMonotonic(t *testing.T) {
	m, _ := vehicle(t)
	for _, threshold := range []float64{0.1, 0.5, 0.8, 1} {
		a, err := Analyze(m, Options{Layers: 9, AreaThreshold: threshold})
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		for _, ax := range a.Axes {
			limit := threshold * ax.MaxArea
			for i, s := range ax.Sections {
				if s.Area > ax.MaxArea {
					t.Errorf("axis %s layer %d area %v above max %v", ax.Axis, i, s.Area, ax.MaxArea)
				}
				if (i < ax.Low || i > ax.High) && s.Area >= limit {
					t.Errorf("axis %s layer %d meets the threshold outside [%d, %d]", ax.Axis, i, ax.Low, ax.High)
				}
			}
			if ax.Sections[ax.Low].Area < limit || ax.Sections[ax.High].Area < limit {
				t.Errorf("axis %s boundary layers below threshold", ax.Axis)
			}
			if !(ax.Low <= ax.MaxIdx && ax.MaxIdx <= ax.High) {
				t.Errorf("axis %s: max layer %d outside [%d, %d]", ax.Axis, ax.MaxIdx, ax.Low, ax.High)
			}
		}
	}
}

func TestNearestTieKeepsFirst(t *testing.T) {
	points := []mgl64.Vec3{{1, 1, 0}, {1, -1, 0}, {0, 0, 0}}
	p, ok := nearest(points, mgl64.Vec3{1, 0, 0}, geom.X, geom.Y)
	if !ok || p != points[0] {
		t.Errorf("nearest() = %v, want the first of the tied points %v", p, points[0])
	}
	if _, ok := nearest(nil, mgl64.Vec3{}, geom.X, geom.Y); ok {
		t.Error("nearest() of no points reported a result")
	}
}

// =============================================================================
// Generate Tests
// =============================================================================

func TestGenerateOther(t *testing.T) {
	b := newMeshBuilder()
	b.box(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 1, 3}, 2)
	m := b.build(t)
	m.Name = "crate"

	opts := DefaultOptions()
	opts.Layers = 5
	proxy, err := Generate(m, opts)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(proxy.Vertices) != 18 || len(proxy.Polygons) != 32 {
		t.Errorf("proxy has %d vertices and %d polygons, want 18 and 32",
			len(proxy.Vertices), len(proxy.Polygons))
	}
	if proxy.Role != mesh.RoleBound || proxy.VertsPerPoly != 3 || proxy.Name != "crate" {
		t.Errorf("proxy identity = %q %v %d", proxy.Name, proxy.Role, proxy.VertsPerPoly)
	}
	if err := proxy.Validate(); err != nil {
		t.Fatalf("proxy invalid: %v", err)
	}
	for i, p := range proxy.Polygons {
		if p.ColorID != opts.Color {
			t.Errorf("polygon %d color = %d", i, p.ColorID)
		}
		if n := proxy.Normals[p.VertNorms[0]]; n != p.Normal {
			t.Errorf("polygon %d normal %v differs from its flat normal %v", i, n, p.Normal)
		}
	}
	checkContainment(t, m, proxy)

	// The proxy of a box is the box itself.
	props, err := massprop.Compute(proxy, 1)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !floatEqual(props.Volume, 6, 1e-9) {
		t.Errorf("proxy volume = %v, want 6", props.Volume)
	}

	// Source untouched.
	if len(m.Polygons) != 6*4 {
		t.Errorf("source mesh modified: %d polygons", len(m.Polygons))
	}
}

func TestGenerateFrustumClamped(t *testing.T) {
	m := frustum(t)
	proxy, err := Generate(m, Options{Kind: Other, Layers: 5, AreaThreshold: 0.5, Color: 3})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	checkContainment(t, m, proxy)

	a, err := Analyze(m, Options{Layers: 5, AreaThreshold: 0.5})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	xlo, xhi := a.Axes[geom.X].Range()
	ylo, yhi := a.Axes[geom.Y].Range()
	zlo, zhi := a.Axes[geom.Z].Range()
	for i, v := range proxy.Vertices {
		if v.X() < xlo-tolerance || v.X() > xhi+tolerance ||
			v.Y() < ylo-tolerance || v.Y() > yhi+tolerance ||
			v.Z() < zlo-tolerance || v.Z() > zhi+tolerance {
			t.Errorf("vertex %d = %v beyond the boundary layers", i, v)
		}
	}

	props, err := massprop.Compute(proxy, 1)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if props.Volume <= 0 {
		t.Errorf("proxy volume = %v", props.Volume)
	}
}

func TestGenerateVehicle(t *testing.T) {
	m, wheels := vehicle(t)
	opts := Options{
		Kind:          Vehicle,
		Layers:        9,
		AreaThreshold: 0.5,
		WheelBounds:   &wheels,
		Color:         mesh.ColorBody,
		ReservedColor: mesh.ColorZeroReserved,
	}

	a, err := Analyze(m, opts)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	z := a.Axes[geom.Z]
	if z.MaxIdx != 4 || z.Low != 2 || z.High != 8 {
		t.Fatalf("MaxIdx, Low, High = %d, %d, %d, want 4, 2, 8", z.MaxIdx, z.Low, z.High)
	}

	proxy, err := Generate(m, opts)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(proxy.Vertices) != 34 || len(proxy.Polygons) != 64 {
		t.Errorf("proxy has %d vertices and %d polygons, want 34 and 64",
			len(proxy.Vertices), len(proxy.Polygons))
	}
	checkContainment(t, m, proxy)

	reserved := proxy.PolygonsByColor(opts.ReservedColor)
	if len(reserved) != ringSize {
		t.Fatalf("%d reserved polygons, want %d", len(reserved), ringSize)
	}
	for _, pi := range reserved {
		p := proxy.Polygons[pi]
		if !floatEqual(p.Normal.Z(), -1, tolerance) {
			t.Errorf("reserved polygon %d normal = %v, want -z", pi, p.Normal)
		}
		for _, v := range p.Verts {
			pos := proxy.Vertices[v]
			if !floatEqual(pos.Z(), wheels.Min.Z(), tolerance) {
				t.Errorf("flat ring vertex %v not at wheel bottom", pos)
			}
			if !wheels.ContainsPointTolerance(pos, tolerance) {
				t.Errorf("flat ring vertex %v outside wheel extents", pos)
			}
		}
	}

	props, err := massprop.Compute(proxy, 1)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if props.Volume <= 0 {
		t.Errorf("proxy volume = %v", props.Volume)
	}
}

func TestFlatRingWheelsOutsideMesh(t *testing.T) {
	m, _ := vehicle(t)
	a, err := Analyze(m, Options{Kind: Vehicle, Layers: 9, AreaThreshold: 0.5})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	bottom := zRing(a, a.Axes[geom.Z].Low)

	away := mesh.AABB{Min: mgl64.Vec3{10, 10, 0}, Max: mgl64.Vec3{11, 11, 1}}
	flat := flatRing(a, bottom, &away)
	for j := range flat {
		if flat[j].X() != bottom[j].X() || flat[j].Y() != bottom[j].Y() {
			t.Errorf("flat ring point %d = %v, want the bottom ring footprint %v", j, flat[j], bottom[j])
		}
		if flat[j].Z() != 0 {
			t.Errorf("flat ring point %d at z = %v, want 0", j, flat[j].Z())
		}
	}
}

func TestGenerateVehicleWithoutWheels(t *testing.T) {
	m, _ := vehicle(t)
	proxy, err := Generate(m, Options{Kind: Vehicle, Layers: 9, AreaThreshold: 0.5, ReservedColor: 9})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	checkContainment(t, m, proxy)
	for _, pi := range proxy.PolygonsByColor(9) {
		for _, v := range proxy.Polygons[pi].Verts {
			if z := proxy.Vertices[v].Z(); !floatEqual(z, 0, tolerance) {
				t.Errorf("flat ring vertex at z = %v, want mesh bottom 0", z)
			}
		}
	}
}
