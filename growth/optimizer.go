// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package growth

import (
	"github.com/2dChan/perivoronoi/periodic"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// UpdateKind classifies how much recomputation a frame needs.
type UpdateKind int

const (
	// UpdateNone means nothing moved beyond the threshold; reuse the
	// previous frame's dual graph and scores.
	UpdateNone UpdateKind = iota
	// UpdatePartial means only the Dirty cells moved; rescore those.
	UpdatePartial
	// UpdateFull means enough changed that a full rebuild is cheaper.
	UpdateFull
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateNone:
		return "none"
	case UpdatePartial:
		return "partial"
	case UpdateFull:
		return "full"
	}
	return "unknown"
}

// Update is the recompute plan for one frame.
type Update struct {
	Kind UpdateKind
	// Dirty lists the moved point indices for UpdatePartial; nil otherwise.
	Dirty []int
}

// OptimizerConfig parameterizes change detection.
type OptimizerConfig struct {
	// MoveThreshold is the displacement below which a point counts as
	// stationary.
	MoveThreshold float64
	// FullRebuildFraction is the moved-point fraction above which a full
	// rebuild is planned instead of a partial one.
	FullRebuildFraction float64
	// Periodic selects minimum-image displacement measurement.
	Periodic bool
}

// DefaultOptimizerConfig returns the change-detection defaults.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		MoveThreshold:       1e-5,
		FullRebuildFraction: 0.25,
	}
}

// Validate reports the first invalid setting.
func (c OptimizerConfig) Validate() error {
	if c.MoveThreshold < 0 {
		return errors.Errorf("growth: move threshold must be non-negative, got %v", c.MoveThreshold)
	}
	if c.FullRebuildFraction <= 0 || c.FullRebuildFraction > 1 {
		return errors.Errorf("growth: full rebuild fraction must be in (0,1], got %v", c.FullRebuildFraction)
	}
	return nil
}

// Optimizer compares consecutive frames of generator points and plans how
// much to recompute. It trades staleness for throughput: skipping a
// recompute never breaks correctness downstream, only freshness.
type Optimizer struct {
	cfg  OptimizerConfig
	prev []r3.Vector
}

// NewOptimizer validates the config and returns an Optimizer.
func NewOptimizer(cfg OptimizerConfig) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Optimizer{cfg: cfg}, nil
}

// Plan compares points to the previous frame's snapshot and returns the
// recompute plan, then snapshots points for the next call. The first call
// and any point-count change always plan a full rebuild.
func (o *Optimizer) Plan(points []r3.Vector) Update {
	defer o.snapshot(points)

	if o.prev == nil || len(o.prev) != len(points) {
		return Update{Kind: UpdateFull}
	}

	var dirty []int
	for i, p := range points {
		var dist float64
		if o.cfg.Periodic {
			dist = periodic.Distance(o.prev[i], p)
		} else {
			dist = p.Sub(o.prev[i]).Norm()
		}
		if dist > o.cfg.MoveThreshold {
			dirty = append(dirty, i)
		}
	}

	switch {
	case len(dirty) == 0:
		return Update{Kind: UpdateNone}
	case float64(len(dirty)) > o.cfg.FullRebuildFraction*float64(len(points)):
		return Update{Kind: UpdateFull}
	default:
		return Update{Kind: UpdatePartial, Dirty: dirty}
	}
}

// Reset forgets the previous snapshot; the next Plan is a full rebuild.
func (o *Optimizer) Reset() {
	o.prev = nil
}

func (o *Optimizer) snapshot(points []r3.Vector) {
	o.prev = make([]r3.Vector, len(points))
	copy(o.prev, points)
}
