package meshfile

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akmonengine/volint/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

const tetrahedron = `
name: spike
kind: other
main:
  verts_per_poly: 3
  vertices:
    - [0, 0, 0]
    - [1, 0, 0]
    - [0, 1, 0]
    - [0, 0, 1]
  polygons:
    - {verts: [0, 2, 1], color: 1}
    - {verts: [0, 1, 3], color: 1}
    - {verts: [0, 3, 2], color: 1, wheel_weapon: 4}
    - {verts: [1, 2, 3], color: 2, wheel: 0}
  volume: 2.5
  inertia: [1, 2, 3, 4, 5, 6, 7, 8, 9]
`

func TestReadAndBuild(t *testing.T) {
	model, err := Read(strings.NewReader(tetrahedron))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if model.Name != "spike" || model.Kind != "other" || len(model.Wheels) != 0 {
		t.Errorf("unexpected model header %q %q %d", model.Name, model.Kind, len(model.Wheels))
	}

	m, err := model.Main.Build(model.Name, mesh.RoleMain, mesh.NoTag)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if m.Name != "spike" || m.Role != mesh.RoleMain || len(m.Vertices) != 4 || len(m.Polygons) != 4 {
		t.Fatalf("unexpected mesh %q %v with %d vertices, %d polygons",
			m.Name, m.Role, len(m.Vertices), len(m.Polygons))
	}

	p := m.Polygons[2]
	if p.WheelWeaponID != 4 || p.WheelID != mesh.NoTag || p.VertNorms[0] != mesh.NoTag {
		t.Errorf("polygon 2 tags = %+v", p)
	}
	if m.Polygons[3].WheelID != 0 || m.Polygons[3].ColorID != 2 {
		t.Errorf("polygon 3 tags = %+v", m.Polygons[3])
	}

	if !m.Overrides.Volume || m.Volume != 2.5 {
		t.Errorf("volume override = %v %v", m.Overrides.Volume, m.Volume)
	}
	if m.Overrides.CenterOfMass {
		t.Error("center of mass marked as overridden")
	}
	// Row-major in the file.
	if !m.Overrides.Inertia || m.Inertia.At(0, 1) != 2 || m.Inertia.At(1, 0) != 4 || m.Inertia.At(2, 2) != 9 {
		t.Errorf("inertia = %v", m.Inertia)
	}
}

func TestReadRejectsUnknownKeys(t *testing.T) {
	if _, err := Read(strings.NewReader("name: x\nmain:\n  verts_per_poly: 3\n  colour: 2\n")); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestBuildInvalid(t *testing.T) {
	tests := []struct {
		name    string
		mesh    Mesh
		wantErr error
	}{
		{
			name: "vertex out of range",
			mesh: Mesh{
				VertsPerPoly: 3,
				Vertices:     []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
				Polygons:     []Polygon{{Verts: []int{0, 1, 5}}},
			},
			wantErr: mesh.ErrIndexOutOfRange,
		},
		{
			name: "corner count",
			mesh: Mesh{
				VertsPerPoly: 4,
				Vertices:     []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
				Polygons:     []Polygon{{Verts: []int{0, 1, 2}}},
			},
			wantErr: mesh.ErrVertsPerPoly,
		},
		{
			name: "normal count",
			mesh: Mesh{
				VertsPerPoly: 3,
				Vertices:     []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
				Normals:      []mgl64.Vec3{{0, 0, 1}},
				Polygons:     []Polygon{{Verts: []int{0, 1, 2}, Normals: []int{0, 0}}},
			},
			wantErr: mesh.ErrVertsPerPoly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.mesh.Build("bad", mesh.RoleDebris, 1)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Build() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), `debris 2 of model "bad"`) {
				t.Errorf("error %q does not name the mesh", err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	box := mesh.NewBox(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 2, 0.5})
	box.Polygons[1].WheelID = 3
	box.Volume = 2
	box.CenterOfMass = mgl64.Vec3{0, 1, 0.25}
	box.Inertia = mgl64.Mat3{1, 0.5, 0, 0.5, 2, 0, 0, 0, 3}
	box.ComputeRadius()

	model := &Model{Name: "crate", Main: FromMesh(box)}
	model.Debris = append(model.Debris, FromMesh(box))

	var buf bytes.Buffer
	if err := model.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	back, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v\n%s", err, buf.String())
	}
	if len(back.Debris) != 1 {
		t.Fatalf("read %d debris meshes, want 1", len(back.Debris))
	}

	m, err := back.Main.Build("crate", mesh.RoleMain, mesh.NoTag)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(m.Vertices) != 8 || len(m.Normals) != 6 || len(m.Polygons) != 6 {
		t.Fatalf("round trip sizes: %d vertices, %d normals, %d polygons",
			len(m.Vertices), len(m.Normals), len(m.Polygons))
	}
	for i := range box.Vertices {
		if m.Vertices[i] != box.Vertices[i] {
			t.Errorf("vertex %d = %v, want %v", i, m.Vertices[i], box.Vertices[i])
		}
	}
	for i := range box.Polygons {
		got, want := m.Polygons[i], box.Polygons[i]
		for k := range want.Verts {
			if got.Verts[k] != want.Verts[k] || got.VertNorms[k] != want.VertNorms[k] {
				t.Errorf("polygon %d corner %d differs", i, k)
			}
		}
		if got.WheelID != want.WheelID || got.ColorID != want.ColorID {
			t.Errorf("polygon %d tags = %+v, want %+v", i, got, want)
		}
	}
	if m.Volume != box.Volume || m.CenterOfMass != box.CenterOfMass || m.Inertia != box.Inertia {
		t.Errorf("mass properties = %v %v %v", m.Volume, m.CenterOfMass, m.Inertia)
	}
	if back.Main.Radius != box.Radius {
		t.Errorf("radius = %v, want %v", back.Main.Radius, box.Radius)
	}
}

func TestSaveLoad(t *testing.T) {
	model, err := Read(strings.NewReader(tetrahedron))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "out", "spike.yaml")
	if err := model.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Name != model.Name || len(loaded.Main.Polygons) != len(model.Main.Polygons) {
		t.Errorf("loaded %q with %d polygons", loaded.Name, len(loaded.Main.Polygons))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error loading a missing file")
	}
}
