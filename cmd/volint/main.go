// Command volint computes the mass properties, vertex normals and bound
// models of YAML model files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akmonengine/volint"
	"github.com/akmonengine/volint/bound"
	"github.com/akmonengine/volint/config"
	"github.com/akmonengine/volint/internal/logger"
	"github.com/akmonengine/volint/internal/meshfile"
	"github.com/akmonengine/volint/massprop"
	"github.com/akmonengine/volint/mesh"
)

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config", "", "Path to config file (default: ./volint.yaml or the user config dir)")
	outDir := flag.String("out", "", "Directory for converted models (default: print a summary only)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	density := flag.Float64("density", 0, "Material density")
	layers := flag.Int("layers", 0, "Bound layers per axis")
	threshold := flag.Float64("area-threshold", 0, "Fraction of the largest bound section a boundary layer needs, in (0, 1]")
	smoothAngle := flag.Float64("smooth-angle", 0, "Largest angle in degrees between smoothed faces")
	workers := flag.Int("workers", 0, "Number of worker goroutines")
	noNormals := flag.Bool("no-normals", false, "Keep the input vertex normals")
	noBound := flag.Bool("no-bound", false, "Skip bound model generation")
	logFile := flag.String("log-file", "", "Also write logs to this file")
	writeConfig := flag.String("write-config", "", "Write the effective config to this path and exit")
	saveConfig := flag.Bool("save-config", false, "Save the effective config to the user config dir and exit")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] model.yaml...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	overrides := config.Overrides{
		Debug:         *debug,
		Density:       *density,
		Layers:        *layers,
		AreaThreshold: *threshold,
		Workers:       *workers,
		NoNormals:     *noNormals,
		NoBound:       *noBound,
		LogFile:       *logFile,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "smooth-angle" {
			overrides.MaxSmoothAngle = smoothAngle
		}
	})

	cfg, err := config.Load(*configFile, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	switch {
	case *writeConfig != "":
		if err := cfg.SaveTo(*writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			return 1
		}
		return 0
	case *saveConfig:
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			return 1
		}
		return 0
	}

	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	var (
		models []*meshfile.Model
		jobs   []*volint.Job
		paths  []string
	)
	for _, path := range flag.Args() {
		model, job, err := loadJob(path)
		if err != nil {
			logger.Error("skipping model", zap.String("path", path), zap.Error(err))
			continue
		}
		models = append(models, model)
		jobs = append(jobs, job)
		paths = append(paths, path)
	}
	failed := len(jobs) != flag.NArg()

	start := time.Now()
	results, err := volint.FromConfig(cfg, logger.Log).Process(jobs)
	if err != nil {
		failed = true
	}

	for i, res := range results {
		if res == nil {
			continue
		}
		printSummary(jobs[i], res)

		if *outDir == "" {
			continue
		}
		out := filepath.Join(*outDir, filepath.Base(paths[i]))
		if err := convertedModel(models[i], jobs[i], res).Save(out); err != nil {
			logger.Error("failed to write model", zap.String("path", out), zap.Error(err))
			failed = true
			continue
		}
		logger.Info("model written", zap.String("path", out))
	}

	logger.Info("done", zap.Int("models", len(jobs)), zap.Duration("elapsed", time.Since(start)))
	if failed {
		return 1
	}
	return 0
}

// loadJob reads a model file and builds its meshes. The model name defaults
// to the file name.
func loadJob(path string) (*meshfile.Model, *volint.Job, error) {
	model, err := meshfile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if model.Name == "" {
		model.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	kind, err := bound.ParseKind(model.Kind)
	if err != nil {
		return nil, nil, err
	}
	job := &volint.Job{Name: model.Name, Kind: kind}

	if job.Main, err = model.Main.Build(model.Name, mesh.RoleMain, mesh.NoTag); err != nil {
		return nil, nil, err
	}
	for i := range model.Wheels {
		w, err := model.Wheels[i].Build(model.Name, mesh.RoleWheel, i)
		if err != nil {
			return nil, nil, err
		}
		job.Wheels = append(job.Wheels, w)
	}
	for i := range model.Debris {
		d, err := model.Debris[i].Build(model.Name, mesh.RoleDebris, i)
		if err != nil {
			return nil, nil, err
		}
		job.Debris = append(job.Debris, d)
	}
	return model, job, nil
}

func convertedModel(in *meshfile.Model, job *volint.Job, res *volint.Result) *meshfile.Model {
	out := &meshfile.Model{
		Name: in.Name,
		Kind: in.Kind,
		Main: meshfile.FromMesh(job.Main),
	}
	for _, w := range job.Wheels {
		out.Wheels = append(out.Wheels, meshfile.FromMesh(w))
	}
	for _, d := range job.Debris {
		out.Debris = append(out.Debris, meshfile.FromMesh(d))
	}
	if res.Bound != nil {
		b := meshfile.FromMesh(res.Bound)
		out.Bound = &b
	}
	for _, b := range res.DebrisBounds {
		out.DebrisBounds = append(out.DebrisBounds, meshfile.FromMesh(b))
	}
	return out
}

func printSummary(job *volint.Job, res *volint.Result) {
	p := res.Main
	fmt.Printf("%s\n", job.Name)
	fmt.Printf("  volume %.6g  mass %.6g  radius %.6g\n", p.Volume, p.Mass, p.Radius)
	fmt.Printf("  center of mass %.6g %.6g %.6g\n", p.CenterOfMass.X(), p.CenterOfMass.Y(), p.CenterOfMass.Z())

	if moments, _, err := massprop.PrincipalMoments(p.Inertia); err == nil {
		fmt.Printf("  principal moments %.6g %.6g %.6g\n", moments[0], moments[1], moments[2])
	} else {
		logger.Warn("no principal axes", zap.String("model", job.Name), zap.Error(err))
	}

	if res.Bound != nil {
		fmt.Printf("  bound: %d polygons, volume %.6g\n", len(res.Bound.Polygons), res.BoundProps.Volume)
	}
	if n := len(job.Wheels) + len(job.Debris); n > 0 {
		fmt.Printf("  %d wheels, %d debris\n", len(job.Wheels), len(job.Debris))
	}
}
