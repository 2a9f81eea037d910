// Package kernel bundles the planar operations behind one configured value.
// The boolean backend sits behind polybool.Engine, so it can be swapped
// without changing the rest of the system.
package kernel

import (
	"fmt"

	"github.com/chazu/floorkit/internal/logging"
	"github.com/chazu/floorkit/pkg/beam"
	"github.com/chazu/floorkit/pkg/config"
	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/halfedge"
	"github.com/chazu/floorkit/pkg/polybool"
	"github.com/chazu/floorkit/pkg/polybool/clipper"
	"github.com/chazu/floorkit/pkg/wall"
)

// Kernel holds one boolean engine, wall merger and beam orchestrator built
// from a single configuration. The orchestrator's room cache makes a Kernel
// unsafe for concurrent use.
type Kernel struct {
	cfg    config.Config
	engine polybool.Engine
	merger *wall.Merger
	beams  *beam.Orchestrator
}

// New returns a kernel backed by the clipper engine.
func New(cfg config.Config) *Kernel {
	return NewWithEngine(cfg, clipper.New(cfg.Clipper()))
}

// NewWithEngine returns a kernel backed by engine.
func NewWithEngine(cfg config.Config, engine polybool.Engine) *Kernel {
	return &Kernel{
		cfg:    cfg,
		engine: engine,
		merger: wall.NewMerger(engine, cfg.Wall()),
		beams:  beam.NewOrchestrator(engine, cfg.BeamOptions()),
	}
}

// Config returns the configuration the kernel was built with.
func (k *Kernel) Config() config.Config { return k.cfg }

// MergeWalls collapses collinear runs of walls and re-homes their openings.
func (k *Kernel) MergeWalls(walls []wall.Wall, openings []wall.Opening) wall.Result {
	return k.merger.Merge(walls, openings)
}

// SegmentWalls merges walls and then splits the merged runs where their
// outer/inner side changes.
func (k *Kernel) SegmentWalls(walls []wall.Wall, openings []wall.Opening) (wall.Result, error) {
	res, err := k.merger.MergeAndSegment(walls, openings)
	if err != nil {
		return wall.Result{}, fmt.Errorf("kernel: segment walls: %w", err)
	}
	return res, nil
}

// Rooms welds curves into a half-edge network and extracts its faces.
func (k *Kernel) Rooms(curves []geom.Curve) (*halfedge.Network, halfedge.Result) {
	net := halfedge.Build(curves, k.cfg.Network())
	res := halfedge.FindLoops(net)
	logging.Logger().Debug("rooms extracted",
		"curves", len(curves), "faces", len(res.Faces), "holes", len(res.Holes),
		"dangling", len(res.Dangling), "failed", res.Failed)
	return net, res
}

// Union returns the union of loops.
func (k *Kernel) Union(loops []polybool.Loop) ([]polybool.Region, error) {
	regions, err := k.engine.Union(loops)
	if err != nil {
		return nil, fmt.Errorf("kernel: union: %w", err)
	}
	return regions, nil
}

// Difference returns subject minus clip.
func (k *Kernel) Difference(subject, clip []polybool.Loop) ([]polybool.Region, error) {
	regions, err := k.engine.Difference(subject, clip)
	if err != nil {
		return nil, fmt.Errorf("kernel: difference: %w", err)
	}
	return regions, nil
}

// ClipBeams fits every beam to its rooms. Room outlines are cached across
// calls until Invalidate.
func (k *Kernel) ClipBeams(beams []beam.Beam, rooms []beam.Room) ([]beam.Beam, error) {
	out, err := k.beams.ClipAll(beams, rooms)
	if err != nil {
		return nil, fmt.Errorf("kernel: clip beams: %w", err)
	}
	return out, nil
}

// Invalidate drops cached room outlines. Call it whenever walls change.
func (k *Kernel) Invalidate() {
	k.beams.ClearCache()
}
