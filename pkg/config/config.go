// Package config holds the kernel tolerances and their TOML loader.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/chazu/floorkit/pkg/beam"
	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/halfedge"
	"github.com/chazu/floorkit/pkg/polybool/clipper"
	"github.com/chazu/floorkit/pkg/wall"
)

// Config is the full kernel configuration. Zero values are not meaningful;
// start from Default.
type Config struct {
	Weld       Weld       `toml:"weld"`
	Merge      Merge      `toml:"merge"`
	Boolean    Boolean    `toml:"boolean"`
	Beam       Beam       `toml:"beam"`
	Discretize Discretize `toml:"discretize"`
}

// Weld controls vertex identity and loop filtering.
type Weld struct {
	Tolerance     float64 `toml:"tolerance"`
	AreaTolerance float64 `toml:"area_tolerance"`
}

// Merge controls the collinear wall merger.
type Merge struct {
	Distance           float64 `toml:"distance"`
	AngleDegrees       float64 `toml:"angle_degrees"`
	ThicknessTolerance float64 `toml:"thickness_tolerance"`
	MinLength          float64 `toml:"min_length"`
	ExtendMargin       float64 `toml:"extend_margin"`
	SideTolerance      float64 `toml:"side_tolerance"`
}

// Boolean controls the polygon boolean engine.
type Boolean struct {
	Epsilon float64 `toml:"epsilon"`
}

// Beam controls beam fitting.
type Beam struct {
	ExtendMargin float64 `toml:"extend_margin"`
	Tolerance    float64 `toml:"tolerance"`
}

// Discretize controls arc sampling.
type Discretize struct {
	ArcSegments int `toml:"arc_segments"`
}

// Default returns the tolerances floor plans are built with.
func Default() Config {
	return Config{
		Weld:       Weld{Tolerance: 1e-3, AreaTolerance: 1e-6},
		Merge:      Merge{Distance: 0.00045, AngleDegrees: 0.1, ThicknessTolerance: 0.001, MinLength: 1e-6, ExtendMargin: 10000, SideTolerance: 1e-4},
		Boolean:    Boolean{Epsilon: 1e-6},
		Beam:       Beam{ExtendMargin: 10000, Tolerance: 1e-5},
		Discretize: Discretize{ArcSegments: 32},
	}
}

// Load reads a TOML file over the defaults. Keys the file omits keep their
// default; unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			keys := make([]string, len(strict.Errors))
			for i, e := range strict.Errors {
				keys[i] = strings.Join(e.Key(), ".")
			}
			return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects non-positive tolerances.
func (c Config) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"weld.tolerance", c.Weld.Tolerance},
		{"merge.distance", c.Merge.Distance},
		{"merge.angle_degrees", c.Merge.AngleDegrees},
		{"merge.extend_margin", c.Merge.ExtendMargin},
		{"boolean.epsilon", c.Boolean.Epsilon},
		{"beam.extend_margin", c.Beam.ExtendMargin},
		{"beam.tolerance", c.Beam.Tolerance},
	}
	for _, ch := range checks {
		if !(ch.v > 0) {
			return fmt.Errorf("%s must be positive, got %v", ch.name, ch.v)
		}
	}
	if c.Discretize.ArcSegments < 2 {
		return fmt.Errorf("discretize.arc_segments must be at least 2, got %d", c.Discretize.ArcSegments)
	}
	return nil
}

// Network returns the half-edge network options.
func (c Config) Network() halfedge.Options {
	return halfedge.Options{
		WeldTolerance: c.Weld.Tolerance,
		ArcSegments:   c.Discretize.ArcSegments,
		AreaTolerance: c.Weld.AreaTolerance,
	}
}

// Judge returns the merge position judge.
func (c Config) Judge() geom.Judge {
	return geom.Judge{Dist: c.Merge.Distance, Angle: c.Merge.AngleDegrees * math.Pi / 180}
}

// Wall returns the merger options.
func (c Config) Wall() wall.Options {
	return wall.Options{
		Judge:              c.Judge(),
		ThicknessTolerance: c.Merge.ThicknessTolerance,
		MinLength:          c.Merge.MinLength,
		ExtendMargin:       c.Merge.ExtendMargin,
		SideTolerance:      c.Merge.SideTolerance,
	}
}

// Clipper returns the boolean engine options.
func (c Config) Clipper() clipper.Options {
	return clipper.Options{Epsilon: c.Boolean.Epsilon, ArcSegments: c.Discretize.ArcSegments}
}

// BeamOptions returns the beam orchestrator options.
func (c Config) BeamOptions() beam.Options {
	o := beam.DefaultOptions()
	o.ExtendMargin = c.Beam.ExtendMargin
	o.Tolerance = c.Beam.Tolerance
	o.Judge.Angle = c.Judge().Angle
	o.Network = c.Network()
	return o
}
