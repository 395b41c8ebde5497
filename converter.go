// Package volint prepares game models for serialization: it derives the
// mass properties of every mesh, regenerates vertex normals and synthesizes
// the collision bound proxies, processing independent models in parallel.
package volint

import (
	"fmt"

	"github.com/akmonengine/volint/bound"
	"github.com/akmonengine/volint/config"
	"github.com/akmonengine/volint/internal/logger"
	"github.com/akmonengine/volint/massprop"
	"github.com/akmonengine/volint/mesh"
	"github.com/akmonengine/volint/normals"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const DEFAULT_WORKERS = 1

// Job is one game model: a main mesh with the wheels and debris that
// belong to it. A job exclusively owns its meshes while it is processed.
type Job struct {
	Name   string
	Kind   bound.Kind
	Main   *mesh.Mesh
	Wheels []*mesh.Mesh
	Debris []*mesh.Mesh
}

// Result holds what was derived for a job. Wheel and debris entries follow
// the order of the job's meshes.
type Result struct {
	Main   massprop.Properties
	Wheels []massprop.Properties
	Debris []massprop.Properties

	// Set when bound generation is enabled.
	Bound            *mesh.Mesh
	BoundProps       massprop.Properties
	DebrisBounds     []*mesh.Mesh
	DebrisBoundProps []massprop.Properties
}

type Converter struct {
	// Mass per unit volume
	Density float64

	Normals        bool
	MaxSmoothAngle float64 // radians

	Bounds bool
	// Template settings; Kind and WheelBounds are chosen per job.
	Bound bound.Options

	Workers int
	Logger  *zap.Logger
}

// FromConfig returns a converter using the settings of cfg.
func FromConfig(cfg *config.Config, log *zap.Logger) *Converter {
	opts := bound.DefaultOptions()
	opts.Layers = cfg.Bound.Layers
	opts.AreaThreshold = cfg.Bound.AreaThreshold

	return &Converter{
		Density:        cfg.Mass.Density,
		Normals:        cfg.Normals.Enabled,
		MaxSmoothAngle: mgl64.DegToRad(cfg.Normals.MaxSmoothAngle),
		Bounds:         cfg.Bound.Enabled,
		Bound:          opts,
		Workers:        cfg.Workers,
		Logger:         log,
	}
}

func (c *Converter) log() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger.Log
}

type run struct {
	job    *Job
	result *Result
	err    error
}

// Process converts every job. Results are index aligned with jobs; a failed
// job leaves a nil result and its error is combined into the returned one.
func (c *Converter) Process(jobs []*Job) ([]*Result, error) {
	workers := max(DEFAULT_WORKERS, c.Workers)

	runs := make([]*run, len(jobs))
	for i, job := range jobs {
		runs[i] = &run{job: job}
	}

	task(workers, runs, func(r *run) {
		r.result, r.err = c.Convert(r.job)
	})

	results := make([]*Result, len(jobs))
	var err error
	for i, r := range runs {
		results[i] = r.result
		if r.err != nil {
			c.log().Error("conversion failed", zap.String("model", r.job.Name), zap.Error(r.err))
			err = multierr.Append(err, r.err)
		}
	}
	return results, err
}

// Convert processes a single job. The job's meshes are updated in place:
// degenerate polygons are dropped, orientation is repaired, mass
// properties are stored and normals are regenerated when enabled.
func (c *Converter) Convert(job *Job) (*Result, error) {
	if job.Main == nil {
		return nil, fmt.Errorf("model %q has no main mesh", job.Name)
	}
	job.label()

	res := &Result{
		Wheels: make([]massprop.Properties, len(job.Wheels)),
		Debris: make([]massprop.Properties, len(job.Debris)),
	}

	var err error
	if res.Main, err = c.measure(job.Main); err != nil {
		return nil, err
	}
	for i, w := range job.Wheels {
		if res.Wheels[i], err = c.measure(w); err != nil {
			return nil, err
		}
	}
	for i, d := range job.Debris {
		if res.Debris[i], err = c.measure(d); err != nil {
			return nil, err
		}
	}

	if c.Bounds {
		if err := c.generateBounds(job, res); err != nil {
			return nil, err
		}
	}

	if c.Normals {
		for _, m := range job.meshes(res) {
			c.smooth(m)
		}
	}

	c.log().Info("model converted",
		zap.String("model", job.Name),
		zap.Float64("volume", res.Main.Volume),
		zap.Int("wheels", len(job.Wheels)),
		zap.Int("debris", len(job.Debris)),
		zap.Bool("bound", res.Bound != nil))
	return res, nil
}

func (c *Converter) measure(m *mesh.Mesh) (massprop.Properties, error) {
	dropped := m.UpdateFaceParams()
	props, err := massprop.Compute(m, c.Density)
	if err != nil {
		return props, err
	}
	if dropped > 0 {
		c.log().Warn("degenerate polygons dropped", zap.String("mesh", m.Describe()), zap.Int("dropped", dropped))
	}
	c.log().Debug("mass properties",
		zap.String("mesh", m.Describe()),
		zap.Stringer("role", m.Role),
		zap.Float64("volume", props.Volume),
		zap.Float64("mass", props.Mass),
		zap.Float64("radius", props.Radius),
		zap.Int("dropped", dropped))
	return props, nil
}

func (c *Converter) smooth(m *mesh.Mesh) {
	n := normals.Recalculate(m, c.MaxSmoothAngle)
	c.log().Debug("normals recalculated", zap.String("mesh", m.Describe()), zap.Int("normals", n))
}

// generateBounds builds the main bound from the main mesh, merged with the
// wheels for vehicles, and one bound per debris.
func (c *Converter) generateBounds(job *Job, res *Result) error {
	source := job.Main
	opts := c.Bound
	opts.Kind = job.Kind

	if job.Kind == bound.Vehicle {
		source = job.Main.Clone()
		if err := source.Merge(job.Wheels...); err != nil {
			return err
		}
		opts.WheelBounds = job.wheelBounds()
	}

	var err error
	if res.Bound, err = bound.Generate(source, opts); err != nil {
		return fmt.Errorf("generating bound of %s: %w", job.Main.Describe(), err)
	}
	if res.BoundProps, err = c.measure(res.Bound); err != nil {
		return err
	}

	opts = c.Bound
	opts.Kind = bound.Other
	res.DebrisBounds = make([]*mesh.Mesh, len(job.Debris))
	res.DebrisBoundProps = make([]massprop.Properties, len(job.Debris))
	for i, d := range job.Debris {
		if res.DebrisBounds[i], err = bound.Generate(d, opts); err != nil {
			return fmt.Errorf("generating bound of %s: %w", d.Describe(), err)
		}
		if res.DebrisBoundProps[i], err = c.measure(res.DebrisBounds[i]); err != nil {
			return err
		}
	}
	return nil
}

// label fills in the name, role and index of the job's meshes for error
// messages.
func (j *Job) label() {
	j.Main.Name, j.Main.Role, j.Main.Index = j.Name, mesh.RoleMain, mesh.NoTag
	for i, w := range j.Wheels {
		w.Name, w.Role, w.Index = j.Name, mesh.RoleWheel, i
	}
	for i, d := range j.Debris {
		d.Name, d.Role, d.Index = j.Name, mesh.RoleDebris, i
	}
}

// wheelBounds is the extent of the wheel meshes, or of the wheel tagged
// polygons of the main mesh when there are none. Nil when neither exists.
func (j *Job) wheelBounds() *mesh.AABB {
	box := mesh.EmptyAABB()
	for _, w := range j.Wheels {
		box = box.Merge(mesh.AABBOf(w.Vertices))
	}
	if len(j.Wheels) == 0 {
		for _, b := range j.Main.WheelBounds() {
			box = box.Merge(b)
		}
	}
	if box.IsEmpty() {
		return nil
	}
	return &box
}

func (j *Job) meshes(res *Result) []*mesh.Mesh {
	out := []*mesh.Mesh{j.Main}
	out = append(out, j.Wheels...)
	out = append(out, j.Debris...)
	if res.Bound != nil {
		out = append(out, res.Bound)
	}
	return append(out, res.DebrisBounds...)
}
