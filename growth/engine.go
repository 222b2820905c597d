// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package growth

import (
	"math"
	"math/rand"

	"github.com/2dChan/perivoronoi"
	"github.com/2dChan/perivoronoi/periodic"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

const zeroDirEps = 1e-12

// Engine integrates cell acuteness scores into damped generator-point
// displacements. It keeps one previous-delta value per point across steps,
// so a single engine must be fed consecutive frames of the same point set.
type Engine struct {
	cfg    Config
	logger golog.Logger
	rnd    *rand.Rand

	prevDelta []float64
}

// EngineOption mutates an Engine under construction.
type EngineOption func(*Engine) error

// WithEngineLogger sets the diagnostics logger. The default is silent.
func WithEngineLogger(logger golog.Logger) EngineOption {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithRandSeed seeds the pseudo-random source used for the zero-length
// direction fallback, making steps reproducible. The default seed is 1.
func WithRandSeed(seed int64) EngineOption {
	return func(e *Engine) error {
		//nolint:gosec
		e.rnd = rand.New(rand.NewSource(seed))
		return nil
	}
}

// NewEngine validates the config and returns an Engine.
func NewEngine(cfg Config, setters ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg}
	for _, set := range setters {
		if err := set(e); err != nil {
			return nil, err
		}
	}
	if e.logger == nil {
		e.logger = zap.NewNop().Sugar()
	}
	if e.rnd == nil {
		//nolint:gosec
		e.rnd = rand.New(rand.NewSource(1))
	}
	return e, nil
}

// Step computes new generator positions from the diagram and its per-point
// cell scores. The input points are not mutated. A diagram with no
// tetrahedra makes the step a no-op: the points come back unchanged rather
// than guessed at.
func (e *Engine) Step(d *perivoronoi.Diagram, cellScores []int) ([]r3.Vector, error) {
	points := d.Points
	if len(cellScores) != len(points) {
		return nil, errors.Errorf("growth: %d scores for %d points", len(cellScores), len(points))
	}

	out := make([]r3.Vector, len(points))
	copy(out, points)

	if len(d.Tetrahedra) == 0 {
		e.logger.Debugw("growth step skipped: no tetrahedra")
		return out, nil
	}

	if len(e.prevDelta) != len(points) {
		e.prevDelta = make([]float64, len(points))
	}

	fluxes := make([]float64, len(points))
	for i, s := range cellScores {
		score := float64(s)
		mag := math.Abs(score - e.cfg.Threshold)
		fluxes[i] = e.cfg.fluxSign(score) * math.Pow(mag, e.cfg.GrowthPower)
	}
	if e.cfg.Normalize {
		maxMag := 0.0
		for _, f := range fluxes {
			maxMag = math.Max(maxMag, math.Abs(f))
		}
		if maxMag > 0 {
			floats.Scale(1/maxMag, fluxes)
		}
	}

	for i := range points {
		delta := e.cfg.Damping*e.prevDelta[i] + (1-e.cfg.Damping)*e.cfg.K*fluxes[i]
		if delta > e.cfg.MaxDelta {
			delta = e.cfg.MaxDelta
		} else if delta < -e.cfg.MaxDelta {
			delta = -e.cfg.MaxDelta
		}
		e.prevDelta[i] = delta
		if delta == 0 {
			continue
		}

		cell, err := d.Cell(i)
		if err != nil {
			return nil, err
		}
		dir := e.direction(d, cell.Centroid(), points[i])

		np := points[i].Add(dir.Mul(delta * e.cfg.DT))
		if d.Periodic {
			np = periodic.Wrap(np)
		}
		out[i] = np
	}
	return out, nil
}

// direction is the unit vector from the cell centroid to the generator
// point. A near-zero vector gets a small random unit direction instead, so
// the displacement never collapses onto a singular direction.
func (e *Engine) direction(d *perivoronoi.Diagram, centroid, point r3.Vector) r3.Vector {
	var dir r3.Vector
	if d.Periodic {
		dir = periodic.Delta(periodic.Wrap(centroid), point)
	} else {
		dir = point.Sub(centroid)
	}
	n := dir.Norm()
	if n < zeroDirEps {
		return e.randomUnit()
	}
	return dir.Mul(1 / n)
}

func (e *Engine) randomUnit() r3.Vector {
	z := 2*e.rnd.Float64() - 1
	theta := 2 * math.Pi * e.rnd.Float64()
	r := math.Sqrt(1 - z*z)
	return r3.Vector{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: z}
}
