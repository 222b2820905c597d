// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package growth

import (
	"math"
	"sort"

	"github.com/2dChan/perivoronoi"
	"github.com/2dChan/perivoronoi/periodic"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// PhysicsConfig parameterizes the expansion model.
type PhysicsConfig struct {
	// ForceStrength scales the inverse-square force.
	ForceStrength float64
	// MaxForce clamps a single pairwise force magnitude.
	MaxForce float64
	// Damping multiplies the velocity each step, in [0,1).
	Damping float64
	// MinRate is the growth-rate magnitude below which a point exerts no
	// force.
	MinRate float64
	// NeighborTolerance is the coordinate-equality tolerance for detecting
	// shared cell vertices.
	NeighborTolerance float64
	// MinSharedVertices is how many vertices two cells must share to count
	// as neighbors.
	MinSharedVertices int
}

// DefaultPhysicsConfig returns the expansion model defaults.
func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		ForceStrength:     0.001,
		MaxForce:          0.1,
		Damping:           0.9,
		MinRate:           1e-9,
		NeighborTolerance: 1e-4,
		MinSharedVertices: 2,
	}
}

// Validate reports the first invalid setting.
func (c PhysicsConfig) Validate() error {
	if c.ForceStrength < 0 {
		return errors.Errorf("growth: force strength must be non-negative, got %v", c.ForceStrength)
	}
	if c.MaxForce <= 0 {
		return errors.Errorf("growth: max force must be positive, got %v", c.MaxForce)
	}
	if c.Damping < 0 || c.Damping >= 1 {
		return errors.Errorf("growth: physics damping must be in [0,1), got %v", c.Damping)
	}
	if c.NeighborTolerance <= 0 {
		return errors.Errorf("growth: neighbor tolerance must be positive, got %v", c.NeighborTolerance)
	}
	if c.MinSharedVertices < 1 {
		return errors.Errorf("growth: min shared vertices must be at least 1, got %v", c.MinSharedVertices)
	}
	return nil
}

// PhysicsResult is one integration step's output.
type PhysicsResult struct {
	// Points holds the new positions. Not wrapped; callers wrap as needed.
	Points []r3.Vector
	// MaxDisplacement is the largest single-point movement this step.
	MaxDisplacement float64
	// AverageForce is the mean net force magnitude across all points.
	AverageForce float64
}

// Physics runs the expansion model: growing cells push their neighbors away
// with an inverse-square force and recoil at half magnitude, velocities
// integrate with damping. The cell-adjacency cache is invalidated whenever
// positions change.
type Physics struct {
	cfg    PhysicsConfig
	logger golog.Logger

	rates      map[int]float64
	velocities []r3.Vector
	neighbors  [][]int
}

// PhysicsOption mutates a Physics under construction.
type PhysicsOption func(*Physics) error

// WithPhysicsLogger sets the diagnostics logger. The default is silent.
func WithPhysicsLogger(logger golog.Logger) PhysicsOption {
	return func(p *Physics) error {
		p.logger = logger
		return nil
	}
}

// NewPhysics validates the config and returns a Physics.
func NewPhysics(cfg PhysicsConfig, setters ...PhysicsOption) (*Physics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Physics{cfg: cfg, rates: make(map[int]float64)}
	for _, set := range setters {
		if err := set(p); err != nil {
			return nil, err
		}
	}
	if p.logger == nil {
		p.logger = zap.NewNop().Sugar()
	}
	return p, nil
}

// SetGrowthRate sets the growth rate of point i. Positive rates repel
// neighbors, negative rates attract them. A zero rate removes the entry.
func (p *Physics) SetGrowthRate(i int, rate float64) {
	if rate == 0 {
		delete(p.rates, i)
		return
	}
	p.rates[i] = rate
}

// GrowthRate returns the growth rate of point i, zero if unset.
func (p *Physics) GrowthRate(i int) float64 {
	return p.rates[i]
}

// InvalidateNeighbors drops the cell-adjacency cache. Step does this
// automatically after moving points; callers invalidate manually when they
// move points themselves.
func (p *Physics) InvalidateNeighbors() {
	p.neighbors = nil
}

// Neighbors returns the cell-adjacency lists, point index → sorted neighbor
// point indices. Two cells are neighbors when they share at least
// MinSharedVertices vertices within the coordinate tolerance. Cached until
// invalidated.
func (p *Physics) Neighbors(d *perivoronoi.Diagram) [][]int {
	if p.neighbors != nil && len(p.neighbors) == len(d.Points) {
		return p.neighbors
	}

	// Group cells by quantized vertex coordinates, then count how many
	// vertices each cell pair shares.
	owners := make(map[[3]int64][]int)
	for i := range d.Points {
		cell, err := d.Cell(i)
		if err != nil {
			continue
		}
		seen := make(map[[3]int64]struct{})
		for _, b := range cell.BarycenterIndices() {
			key := p.quantize(d.Barycenters[b])
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			owners[key] = append(owners[key], i)
		}
	}

	shared := make(map[[2]int]int)
	for _, cells := range owners {
		for a := 0; a < len(cells); a++ {
			for b := a + 1; b < len(cells); b++ {
				pair := [2]int{cells[a], cells[b]}
				if pair[0] > pair[1] {
					pair[0], pair[1] = pair[1], pair[0]
				}
				shared[pair]++
			}
		}
	}

	neighbors := make([][]int, len(d.Points))
	for pair, cnt := range shared {
		if cnt < p.cfg.MinSharedVertices {
			continue
		}
		neighbors[pair[0]] = append(neighbors[pair[0]], pair[1])
		neighbors[pair[1]] = append(neighbors[pair[1]], pair[0])
	}
	for _, ns := range neighbors {
		sort.Ints(ns)
	}
	p.neighbors = neighbors
	return p.neighbors
}

// Step applies one physics integration step of length dt and returns the new
// positions with step metrics. Positions in d are not mutated; feed the
// result through Diagram.Rebuild (wrapped, if periodic) for the next frame.
func (p *Physics) Step(d *perivoronoi.Diagram, dt float64) (PhysicsResult, error) {
	if dt <= 0 {
		return PhysicsResult{}, errors.Errorf("growth: dt must be positive, got %v", dt)
	}
	n := len(d.Points)
	if len(p.velocities) != n {
		p.velocities = make([]r3.Vector, n)
	}
	neighbors := p.Neighbors(d)

	forces := make([]r3.Vector, n)
	for i := 0; i < n; i++ {
		rate := p.rates[i]
		if math.Abs(rate) <= p.cfg.MinRate {
			continue
		}
		for _, nb := range neighbors[i] {
			var delta r3.Vector
			if d.Periodic {
				delta = periodic.Delta(d.Points[i], d.Points[nb])
			} else {
				delta = d.Points[nb].Sub(d.Points[i])
			}
			distSq := delta.Norm2()
			if distSq < zeroDirEps {
				continue
			}
			f := rate * p.cfg.ForceStrength / distSq
			if f > p.cfg.MaxForce {
				f = p.cfg.MaxForce
			} else if f < -p.cfg.MaxForce {
				f = -p.cfg.MaxForce
			}
			dir := delta.Mul(1 / math.Sqrt(distSq))
			forces[nb] = forces[nb].Add(dir.Mul(f))
			// Equal and opposite reaction at half magnitude.
			forces[i] = forces[i].Sub(dir.Mul(f / 2))
		}
	}

	out := make([]r3.Vector, n)
	copy(out, d.Points)
	maxDisp := 0.0
	mags := make([]float64, n)
	for i := range out {
		p.velocities[i] = p.velocities[i].Add(forces[i].Mul(dt)).Mul(p.cfg.Damping)
		disp := p.velocities[i].Mul(dt)
		out[i] = out[i].Add(disp)
		if d := disp.Norm(); d > maxDisp {
			maxDisp = d
		}
		mags[i] = forces[i].Norm()
	}

	avgForce := 0.0
	if n > 0 {
		avgForce = stat.Mean(mags, nil)
	}
	if maxDisp > 0 {
		p.InvalidateNeighbors()
	}
	p.logger.Debugw("physics step", "dt", dt, "maxDisplacement", maxDisp, "averageForce", avgForce)

	return PhysicsResult{Points: out, MaxDisplacement: maxDisp, AverageForce: avgForce}, nil
}

func (p *Physics) quantize(v r3.Vector) [3]int64 {
	tol := p.cfg.NeighborTolerance
	return [3]int64{
		int64(math.Round(v.X / tol)),
		int64(math.Round(v.Y / tol)),
		int64(math.Round(v.Z / tol)),
	}
}
