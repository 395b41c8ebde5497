// Package meshfile reads and writes models as YAML documents.
//
// A model is a main mesh plus optional wheel and debris meshes. Mass
// properties present on a mesh when it is read are treated as overrides;
// written meshes always carry the computed ones, so reading a written file
// back reproduces the same values.
package meshfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/akmonengine/volint/mesh"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Model is the document root.
type Model struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind,omitempty"` // bound template: "vehicle" or "other"
	Main   Mesh   `yaml:"main"`
	Wheels []Mesh `yaml:"wheels,omitempty"`
	Debris []Mesh `yaml:"debris,omitempty"`

	// Written by the converter.
	Bound        *Mesh  `yaml:"bound,omitempty"`
	DebrisBounds []Mesh `yaml:"debris_bounds,omitempty"`
}

// Mesh is the YAML form of mesh.Mesh.
type Mesh struct {
	VertsPerPoly int          `yaml:"verts_per_poly"`
	Vertices     []mgl64.Vec3 `yaml:"vertices"`
	Normals      []mgl64.Vec3 `yaml:"normals,omitempty"`
	Polygons     []Polygon    `yaml:"polygons"`

	Volume       *float64    `yaml:"volume,omitempty"`
	CenterOfMass *mgl64.Vec3 `yaml:"center_of_mass,omitempty,flow"`
	Inertia      *[9]float64 `yaml:"inertia,omitempty,flow"` // row-major
	Radius       float64     `yaml:"radius,omitempty"`
}

// Polygon is the YAML form of mesh.Polygon. Missing normals and tags are
// unassigned.
type Polygon struct {
	Verts       []int  `yaml:"verts,flow"`
	Normals     []int  `yaml:"normals,omitempty,flow"`
	Color       uint32 `yaml:"color"`
	WheelWeapon *int   `yaml:"wheel_weapon,omitempty"`
	Wheel       *int   `yaml:"wheel,omitempty"`
}

// Read decodes a model. Unknown keys are rejected.
func Read(r io.Reader) (*Model, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Model
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads the model stored at path.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return m, nil
}

// Write encodes the model.
func (m *Model) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}

// Save writes the model to path, creating parent directories.
func (m *Model) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Build converts the YAML mesh into a validated mesh.Mesh.
func (d *Mesh) Build(name string, role mesh.Role, index int) (*mesh.Mesh, error) {
	polys := make([]mesh.Polygon, len(d.Polygons))
	for i, src := range d.Polygons {
		p := mesh.NewPolygon(len(src.Verts))
		copy(p.Verts, src.Verts)
		if src.Normals != nil {
			p.VertNorms = append([]int(nil), src.Normals...)
		}
		p.ColorID = src.Color
		if src.WheelWeapon != nil {
			p.WheelWeaponID = *src.WheelWeapon
		}
		if src.Wheel != nil {
			p.WheelID = *src.Wheel
		}
		polys[i] = p
	}

	m, err := mesh.FromData(
		append([]mgl64.Vec3(nil), d.Vertices...),
		append([]mgl64.Vec3(nil), d.Normals...),
		polys, d.VertsPerPoly)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mesh.Label(name, role, index), err)
	}
	m.Name, m.Role, m.Index = name, role, index

	if d.Volume != nil {
		m.Volume = *d.Volume
		m.Overrides.Volume = true
	}
	if d.CenterOfMass != nil {
		m.CenterOfMass = *d.CenterOfMass
		m.Overrides.CenterOfMass = true
	}
	if d.Inertia != nil {
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				m.Inertia.Set(r, c, d.Inertia[r*3+c])
			}
		}
		m.Overrides.Inertia = true
	}
	return m, nil
}

// FromMesh converts m, including its mass properties, to the YAML form.
func FromMesh(m *mesh.Mesh) Mesh {
	d := Mesh{
		VertsPerPoly: m.VertsPerPoly,
		Vertices:     append([]mgl64.Vec3(nil), m.Vertices...),
		Normals:      append([]mgl64.Vec3(nil), m.Normals...),
		Polygons:     make([]Polygon, len(m.Polygons)),
		Radius:       m.Radius,
	}

	for i, p := range m.Polygons {
		dp := Polygon{
			Verts: append([]int(nil), p.Verts...),
			Color: p.ColorID,
		}
		for _, n := range p.VertNorms {
			if n != mesh.NoTag {
				dp.Normals = append([]int(nil), p.VertNorms...)
				break
			}
		}
		if p.WheelWeaponID != mesh.NoTag {
			id := p.WheelWeaponID
			dp.WheelWeapon = &id
		}
		if p.WheelID != mesh.NoTag {
			id := p.WheelID
			dp.Wheel = &id
		}
		d.Polygons[i] = dp
	}

	volume := m.Volume
	com := m.CenterOfMass
	var inertia [9]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			inertia[r*3+c] = m.Inertia.At(r, c)
		}
	}
	d.Volume, d.CenterOfMass, d.Inertia = &volume, &com, &inertia
	return d
}
