// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tetra

import (
	"context"

	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
	"github.com/pkg/errors"
)

const defaultEps = 1e-12

// Engine produces a tetrahedralization of a point set. Implementations may
// be external (a periodic Delaunay engine); output indices must already be
// reduced to [0, len(points)) — see Reduce.
type Engine interface {
	Tetrahedralize(ctx context.Context, points []r3.Vector, periodic bool) ([]Tetrahedron, error)
}

// HullFan is a reference Engine for demos and tests. It computes the convex
// hull of the point set and fans a tetrahedron from an interior apex (the
// point nearest the centroid) to every hull triangle not containing the apex.
//
// NOTE: the fan is a valid tetrahedralization of the hull but not a Delaunay
// one, and it ignores the periodic flag. Production callers supply a real
// periodic Delaunay engine.
type HullFan struct {
	// Eps is the quickhull merge tolerance. Zero means a library default.
	Eps float64
}

func (h HullFan) Tetrahedralize(_ context.Context, points []r3.Vector, _ bool) ([]Tetrahedron, error) {
	if len(points) < 4 {
		return nil, errors.Errorf("tetra: insufficient points for tetrahedralization: %d (minimum 4 required)", len(points))
	}
	eps := h.Eps
	if eps == 0 {
		eps = defaultEps
	}

	centroid := r3.Vector{}
	for _, p := range points {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1 / float64(len(points)))

	apex := 0
	best := points[0].Sub(centroid).Norm2()
	for i := 1; i < len(points); i++ {
		if d := points[i].Sub(centroid).Norm2(); d < best {
			best = d
			apex = i
		}
	}

	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(points, true, true, eps)
	if len(ch.Indices)%3 != 0 || len(ch.Indices) == 0 {
		return nil, errors.Errorf("tetra: degenerate hull: %d indices returned from QuickHull", len(ch.Indices))
	}

	tets := make([]Tetrahedron, 0, len(ch.Indices)/3)
	for i := 0; i+2 < len(ch.Indices); i += 3 {
		a, b, c := ch.Indices[i], ch.Indices[i+1], ch.Indices[i+2]
		if a == apex || b == apex || c == apex {
			continue
		}
		tets = append(tets, Tetrahedron{a, b, c, apex})
	}
	if len(tets) == 0 {
		return nil, errors.New("tetra: hull fan produced no tetrahedra (apex on every hull facet)")
	}
	return tets, nil
}
