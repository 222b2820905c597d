// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package perivoronoi

import (
	"math"
	"sort"

	"github.com/2dChan/perivoronoi/periodic"
	"github.com/golang/geo/r3"
)

// Face is a Voronoi face: the polygon of barycenters of every tetrahedron
// containing both endpoints of one Delaunay edge.
type Face struct {
	// Points is the Delaunay edge key, smaller point index first.
	Points [2]int
	// Barycenters are the indices of the polygon's vertices in the
	// Diagram's Barycenters, in ring order.
	Barycenters []int
	// Vertices are the polygon vertices corrected to the image of the first
	// collected vertex and sorted by angle around their centroid. They may
	// lie outside [0,1)³ in periodic mode.
	Vertices []r3.Vector
}

// Faces returns every valid Voronoi face, ordered by Delaunay edge key. The
// result is cached until Rebuild; callers must not mutate it. Delaunay edges
// whose polygon has fewer than 3 vertices are skipped.
func (d *Diagram) Faces() []Face {
	if d.faces != nil {
		return d.faces
	}

	byEdge := make(map[[2]int][]int, len(d.Tetrahedra)*3)
	for i, t := range d.Tetrahedra {
		for a := 0; a < 4; a++ {
			for b := a + 1; b < 4; b++ {
				key := [2]int{t[a], t[b]}
				if key[0] > key[1] {
					key[0], key[1] = key[1], key[0]
				}
				byEdge[key] = append(byEdge[key], i)
			}
		}
	}

	keys := make([][2]int, 0, len(byEdge))
	for key, owners := range byEdge {
		if len(owners) >= 3 {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	faces := make([]Face, 0, len(keys))
	for _, key := range keys {
		owners := byEdge[key]
		verts := make([]r3.Vector, len(owners))
		for i, b := range owners {
			verts[i] = d.Barycenters[b]
		}
		if d.Periodic {
			verts = periodic.Unwrap(verts)
		}
		ring, order := sortRingIndexed(verts)
		bcs := make([]int, len(owners))
		for i, src := range order {
			bcs[i] = owners[src]
		}
		faces = append(faces, Face{Points: key, Barycenters: bcs, Vertices: ring})
	}
	d.faces = faces
	return d.faces
}

// sortRingIndexed is sortRing but also reports, for each output slot, the
// index of the source vertex, so parallel index slices can be reordered the
// same way.
func sortRingIndexed(verts []r3.Vector) ([]r3.Vector, []int) {
	order := make([]int, len(verts))
	for i := range order {
		order[i] = i
	}
	if len(verts) < 3 {
		return verts, order
	}

	c := r3.Vector{}
	for _, v := range verts {
		c = c.Add(v)
	}
	c = c.Mul(1 / float64(len(verts)))

	e1 := verts[0].Sub(c)
	if e1.Norm() < collinearEps {
		return verts, order
	}
	e1 = e1.Normalize()

	var e2 r3.Vector
	found := false
	for _, v := range verts[1:] {
		cr := e1.Cross(v.Sub(c))
		if cr.Norm() > collinearEps {
			e2 = cr.Normalize().Cross(e1)
			found = true
			break
		}
	}
	if !found {
		return verts, order
	}

	angles := make([]float64, len(verts))
	for i, v := range verts {
		angles[i] = signedAngle(v.Sub(c), e1, e2)
	}
	sort.SliceStable(order, func(i, j int) bool { return angles[order[i]] < angles[order[j]] })

	out := make([]r3.Vector, len(verts))
	for i, src := range order {
		out[i] = verts[src]
	}
	return out, order
}

func signedAngle(dv, e1, e2 r3.Vector) float64 {
	return math.Atan2(dv.Dot(e2), dv.Dot(e1))
}
