// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package acuteness scores the geometric quality of a Voronoi dual graph by
// counting acute (< 90°) angles at four granularities: per tetrahedron, per
// face polygon, per cell and per Voronoi edge. Higher scores mark sharper,
// lower-quality geometry; the growth engine feeds on them.
package acuteness

import (
	"math"
	"runtime"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultBoundaryThreshold = 0.1
	defaultBoundaryFactor    = 0.6
	defaultNeighborTolerance = 1e-6

	halfPi = math.Pi / 2
)

// Analyzer computes acuteness scores. Scoring is pure per call: the analyzer
// holds configuration only, so one analyzer may serve many diagrams.
type Analyzer struct {
	workers            int
	logger             golog.Logger
	boundaryCorrection bool
	boundaryThreshold  float64
	boundaryFactor     float64
	neighborTol        float64
}

// AnalyzerOption mutates an Analyzer under construction, reporting invalid
// settings.
type AnalyzerOption func(*Analyzer) error

// WithWorkers sets the fixed number of scoring workers. The default is
// runtime.GOMAXPROCS(0).
func WithWorkers(n int) AnalyzerOption {
	return func(a *Analyzer) error {
		if n <= 0 {
			return errors.Errorf("acuteness: workers must be positive, got %d", n)
		}
		a.workers = n
		return nil
	}
}

// WithLogger sets the diagnostics logger. The default is silent.
func WithLogger(logger golog.Logger) AnalyzerOption {
	return func(a *Analyzer) error {
		a.logger = logger
		return nil
	}
}

// WithBoundaryCorrection toggles the non-periodic boundary score reduction.
// Enabled by default: elements with any coordinate within 0.1 of 0 or 1 get
// their raw score multiplied by 0.6 to suppress truncated-geometry
// artifacts. It never applies to periodic diagrams.
func WithBoundaryCorrection(enabled bool) AnalyzerOption {
	return func(a *Analyzer) error {
		a.boundaryCorrection = enabled
		return nil
	}
}

// WithNeighborTolerance sets the coordinate-equality tolerance used to match
// edges sharing an endpoint. The default is 1e-6.
func WithNeighborTolerance(tol float64) AnalyzerOption {
	return func(a *Analyzer) error {
		if tol <= 0 {
			return errors.Errorf("acuteness: neighbor tolerance must be positive, got %v", tol)
		}
		a.neighborTol = tol
		return nil
	}
}

// NewAnalyzer returns an Analyzer with the given options applied.
func NewAnalyzer(setters ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{
		workers:            runtime.GOMAXPROCS(0),
		boundaryCorrection: true,
		boundaryThreshold:  defaultBoundaryThreshold,
		boundaryFactor:     defaultBoundaryFactor,
		neighborTol:        defaultNeighborTolerance,
	}
	for _, set := range setters {
		if err := set(a); err != nil {
			return nil, err
		}
	}
	if a.workers < 1 {
		a.workers = 1
	}
	if a.logger == nil {
		a.logger = zap.NewNop().Sugar()
	}
	return a, nil
}

// angle returns the angle between u and v: acos of the clamped normalized
// dot product. A zero-length vector yields 0 by convention.
func angle(u, v r3.Vector) float64 {
	l1 := u.Norm2()
	l2 := v.Norm2()
	if l1 == 0 || l2 == 0 {
		return 0
	}
	cos := u.Dot(v) / math.Sqrt(l1*l2)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// nearBoundary reports whether any coordinate of any point lies within the
// threshold of the unit cube boundary.
func (a *Analyzer) nearBoundary(pts ...r3.Vector) bool {
	for _, p := range pts {
		for _, c := range []float64{p.X, p.Y, p.Z} {
			if c < a.boundaryThreshold || c > 1-a.boundaryThreshold {
				return true
			}
		}
	}
	return false
}

// correct applies the boundary reduction factor to a raw score.
func (a *Analyzer) correct(raw int) int {
	return int(math.Round(float64(raw) * a.boundaryFactor))
}
