// Package config assembles a core.Config from built-in defaults, an optional
// YAML file and LATTICEGEN_* environment variables, in that order of
// precedence, and watches the file for changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"latticegen/internal/core"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LATTICEGEN_"

// Loader resolves the configuration of one run.
type Loader struct {
	// Path of the YAML file; empty skips the file layer.
	Path string
	// Pipeline, when set, wins over the file and the environment.
	Pipeline core.Pipeline
	// Getenv defaults to os.Getenv.
	Getenv func(string) string

	sources []string
}

// Load reads the configuration for path with the process environment.
func Load(path string, pipeline core.Pipeline) (core.Config, error) {
	l := &Loader{Path: path, Pipeline: pipeline}
	return l.Load()
}

// Sources lists the layers applied by the last Load, lowest priority first.
func (l *Loader) Sources() []string { return append([]string(nil), l.sources...) }

// Load builds the configuration. Unknown YAML keys are rejected.
func (l *Loader) Load() (core.Config, error) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	l.sources = l.sources[:0]

	var raw []byte
	if l.Path != "" {
		data, err := os.ReadFile(l.Path)
		if err != nil {
			return core.Config{}, fmt.Errorf("read config %s: %w", l.Path, err)
		}
		raw = data
	}

	pipeline, err := l.resolvePipeline(raw, getenv)
	if err != nil {
		return core.Config{}, err
	}
	cfg := core.DefaultConfig(pipeline)
	l.sources = append(l.sources, "defaults:"+string(pipeline))

	if raw != nil {
		if err := decodeYAML(bytes.NewReader(raw), &cfg); err != nil {
			return core.Config{}, fmt.Errorf("parse config %s: %w", l.Path, err)
		}
		l.sources = append(l.sources, l.Path)
	}
	applied, err := applyEnv(&cfg, getenv)
	if err != nil {
		return core.Config{}, err
	}
	if applied {
		l.sources = append(l.sources, "environment")
	}
	cfg.Pipeline = pipeline
	return cfg, nil
}

// resolvePipeline picks the pipeline whose defaults seed the config.
func (l *Loader) resolvePipeline(raw []byte, getenv func(string) string) (core.Pipeline, error) {
	if l.Pipeline != "" {
		return l.Pipeline, nil
	}
	if v := getenv(EnvPrefix + "PIPELINE"); v != "" {
		return core.Pipeline(v), nil
	}
	if raw != nil {
		var head struct {
			Pipeline core.Pipeline `yaml:"pipeline"`
		}
		if err := yaml.Unmarshal(raw, &head); err != nil {
			return "", fmt.Errorf("parse config %s: %w", l.Path, err)
		}
		if head.Pipeline != "" {
			return head.Pipeline, nil
		}
	}
	return core.PipelineRibbon, nil
}

func decodeYAML(r io.Reader, cfg *core.Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

type envBinding struct {
	name string
	set  func(cfg *core.Config, value string) error
}

var envBindings = []envBinding{
	{"ENV", setString(func(c *core.Config) *string { return &c.Environment })},
	{"LOG_LEVEL", setString(func(c *core.Config) *string { return &c.LogLevel })},
	{"PARTICLE_TYPE", setString(func(c *core.Config) *string { return &c.ParticleType })},
	{"TOPOLOGICAL_CLUSTER_RADIUS", setFloat(func(c *core.Config) *float64 { return &c.TopologicalClusterRadius })},
	{"TRIVIAL_CLUSTER_RADIUS", setFloat(func(c *core.Config) *float64 { return &c.TrivialClusterRadius })},
	{"CYLINDER_EPSILON", setFloat(func(c *core.Config) *float64 { return &c.CylinderEpsilon })},
	{"PARTICLE_RADIUS", setInt(func(c *core.Config) *int { return &c.Ribbon.ParticleRadius })},
	{"SUPERCELL_X", setInt(func(c *core.Config) *int { return &c.Ribbon.SupercellX })},
	{"SUPERCELL_Y", setInt(func(c *core.Config) *int { return &c.Ribbon.SupercellY })},
	{"SUPERCELL_SIZE", setInt(func(c *core.Config) *int { return &c.Embedded.SupercellSize })},
	{"TOPOLOGICAL_RADIUS", setInt(func(c *core.Config) *int { return &c.Embedded.TopologicalRadius })},
	{"BANDS", setInt(func(c *core.Config) *int { return &c.Embedded.Bands })},
	{"OUTPUT_CELL", setString(func(c *core.Config) *string { return &c.Output.CellKey })},
	{"OUTPUT_CTL", setString(func(c *core.Config) *string { return &c.Output.CtlKey })},
}

// applyEnv overlays the environment and reports whether anything was set.
func applyEnv(cfg *core.Config, getenv func(string) string) (bool, error) {
	applied := false
	for _, b := range envBindings {
		v := getenv(EnvPrefix + b.name)
		if v == "" {
			continue
		}
		if err := b.set(cfg, v); err != nil {
			return false, fmt.Errorf("%s%s: %w", EnvPrefix, b.name, err)
		}
		applied = true
	}
	return applied, nil
}

func setString(field func(*core.Config) *string) func(*core.Config, string) error {
	return func(c *core.Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setFloat(field func(*core.Config) *float64) func(*core.Config, string) error {
	return func(c *core.Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

func setInt(field func(*core.Config) *int) func(*core.Config, string) error {
	return func(c *core.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}
