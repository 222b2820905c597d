// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package acuteness

import (
	"context"
	"math"
	"sort"

	"github.com/2dChan/perivoronoi"
	"github.com/2dChan/perivoronoi/periodic"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// VertexScores returns, per tetrahedron, the number of acute angles formed
// at its four vertices: at each vertex the three pairwise angles between the
// edge vectors to the other vertices. Index-aligned with d.Tetrahedra.
func (a *Analyzer) VertexScores(ctx context.Context, d *perivoronoi.Diagram) ([]int, error) {
	tets := d.Tetrahedra
	points := d.Points
	return a.runChunked(ctx, len(tets), "vertex", func(i int) int {
		var corners [4]r3.Vector
		for j, v := range tets[i] {
			corners[j] = points[v]
		}
		verts := corners[:]
		if d.Periodic {
			verts = periodic.Unwrap(verts)
		}

		score := 0
		for v := range 4 {
			var edges [3]r3.Vector
			k := 0
			for o := range 4 {
				if o == v {
					continue
				}
				edges[k] = verts[o].Sub(verts[v])
				k++
			}
			for p := range 3 {
				for q := p + 1; q < 3; q++ {
					if angle(edges[p], edges[q]) < halfPi {
						score++
					}
				}
			}
		}
		if a.correctionActive(d) && a.nearBoundary(verts...) {
			score = a.correct(score)
		}
		return score
	})
}

// FaceScores returns, per Voronoi face, the number of acute interior angles
// in the polygon ring. Index-aligned with d.Faces().
func (a *Analyzer) FaceScores(ctx context.Context, d *perivoronoi.Diagram) ([]int, error) {
	faces := d.Faces()
	return a.runChunked(ctx, len(faces), "face", func(i int) int {
		ring := faces[i].Vertices
		n := len(ring)
		score := 0
		for j := range n {
			v := ring[j]
			prev := ring[(j+n-1)%n]
			next := ring[(j+1)%n]
			if angle(prev.Sub(v), next.Sub(v)) < halfPi {
				score++
			}
		}
		if a.correctionActive(d) && a.nearBoundary(ring...) {
			score = a.correct(score)
		}
		return score
	})
}

// CellScores returns, per generator point, the acuteness of its cell: for
// each cell vertex, the three pairwise angles among the vectors to its three
// nearest other vertices, acute ones counted and summed over all vertices.
// The sum is deliberately not normalized by vertex count. Cells with fewer
// than four vertices score 0. Index-aligned with d.Points.
func (a *Analyzer) CellScores(ctx context.Context, d *perivoronoi.Diagram) ([]int, error) {
	cells := d.CellVertexSets()
	return a.runChunked(ctx, len(cells), "cell", func(i int) int {
		return a.cellScore(d, cells[i])
	})
}

func (a *Analyzer) cellScore(d *perivoronoi.Diagram, verts []r3.Vector) int {
	if len(verts) < 4 {
		return 0
	}

	type neighbor struct {
		distSq float64
		idx    int
	}
	score := 0
	neighbors := make([]neighbor, 0, len(verts)-1)
	for v, center := range verts {
		neighbors = neighbors[:0]
		for o, other := range verts {
			if o == v {
				continue
			}
			neighbors = append(neighbors, neighbor{distSq: other.Sub(center).Norm2(), idx: o})
		}
		sort.Slice(neighbors, func(i, j int) bool {
			if neighbors[i].distSq != neighbors[j].distSq {
				return neighbors[i].distSq < neighbors[j].distSq
			}
			return neighbors[i].idx < neighbors[j].idx
		})

		const k = 3
		for p := 0; p < k; p++ {
			u := verts[neighbors[p].idx].Sub(center)
			for q := p + 1; q < k; q++ {
				w := verts[neighbors[q].idx].Sub(center)
				if angle(u, w) < halfPi {
					score++
				}
			}
		}
	}
	if a.correctionActive(d) && a.nearBoundary(verts...) {
		score = a.correct(score)
	}
	return score
}

// UpdateCellScores recomputes the scores of only the changed cells, writing
// into prev in place. Out-of-range change indices are skipped. prev must be
// index-aligned with d.Points.
func (a *Analyzer) UpdateCellScores(ctx context.Context, d *perivoronoi.Diagram, changed []int, prev []int) error {
	cells := d.CellVertexSets()
	if len(prev) != len(cells) {
		return errors.Errorf("acuteness: previous scores length %d does not match %d cells", len(prev), len(cells))
	}
	for _, i := range changed {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i < 0 || i >= len(cells) {
			a.logger.Debugw("skipping out-of-range changed cell", "cell", i, "cells", len(cells))
			continue
		}
		prev[i] = a.cellScore(d, cells[i])
	}
	return nil
}

// EdgeScores returns, per Voronoi edge, the number of acute angles between
// the edge's outward direction and its neighbors' outward directions at each
// endpoint, summed over both endpoints. Edges share an endpoint when the
// endpoint coordinates match within the analyzer's tolerance. Index-aligned
// with d.Edges.
func (a *Analyzer) EdgeScores(ctx context.Context, d *perivoronoi.Diagram) ([]int, error) {
	edges := d.Edges
	bcs := d.Barycenters

	// Endpoint incidence, keyed by tolerance-quantized coordinates.
	incidence := make(map[[3]int64][]int, len(bcs))
	for i, e := range edges {
		for _, b := range e.Barycenters {
			key := a.quantize(bcs[b])
			incidence[key] = append(incidence[key], i)
		}
	}

	outward := func(e perivoronoi.Edge, side int) r3.Vector {
		at := bcs[e.Barycenters[side]]
		other := bcs[e.Barycenters[1-side]]
		if d.Periodic {
			return periodic.Delta(at, other)
		}
		return other.Sub(at)
	}

	return a.runChunked(ctx, len(edges), "edge", func(i int) int {
		e := edges[i]
		score := 0
		for side := range 2 {
			at := bcs[e.Barycenters[side]]
			dir := outward(e, side)
			for _, j := range incidence[a.quantize(at)] {
				if j == i {
					continue
				}
				o := edges[j]
				// Orient the neighbor outward from the shared endpoint.
				var nd r3.Vector
				switch {
				case a.coordsMatch(bcs[o.Barycenters[0]], at):
					nd = outward(o, 0)
				case a.coordsMatch(bcs[o.Barycenters[1]], at):
					nd = outward(o, 1)
				default:
					continue
				}
				if angle(dir, nd) < halfPi {
					score++
				}
			}
		}
		endpoints := [2]r3.Vector{bcs[e.Barycenters[0]], bcs[e.Barycenters[1]]}
		if a.correctionActive(d) && a.nearBoundary(endpoints[:]...) {
			score = a.correct(score)
		}
		return score
	})
}

func (a *Analyzer) correctionActive(d *perivoronoi.Diagram) bool {
	return a.boundaryCorrection && !d.Periodic
}

func (a *Analyzer) quantize(p r3.Vector) [3]int64 {
	return [3]int64{
		int64(math.Round(p.X / a.neighborTol)),
		int64(math.Round(p.Y / a.neighborTol)),
		int64(math.Round(p.Z / a.neighborTol)),
	}
}

func (a *Analyzer) coordsMatch(p, q r3.Vector) bool {
	return math.Abs(p.X-q.X) <= a.neighborTol &&
		math.Abs(p.Y-q.Y) <= a.neighborTol &&
		math.Abs(p.Z-q.Z) <= a.neighborTol
}
