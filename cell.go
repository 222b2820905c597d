// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package perivoronoi derives the Voronoi dual graph of a tetrahedral
// (Delaunay) mesh embedded in a periodic or bounded unit cube: one vertex per
// tetrahedron barycenter, edges from tetrahedra adjacency, faces per Delaunay
// edge, and cells per generator point.

package perivoronoi

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Cell represents a Voronoi cell. It is a view structure for accessing a cell
// in a Diagram. The cell's index corresponds to the index of its generator
// point in the Diagram's Points.
type Cell struct {
	idx int
	d   *Diagram
}

// Cell returns the cell of generator point i.
// It returns an error if the index is out of range.
func (d *Diagram) Cell(i int) (Cell, error) {
	if i < 0 || i >= len(d.Points) {
		return Cell{}, fmt.Errorf("Cell: index %d out of range [0 %d)", i, len(d.Points))
	}
	d.ensureCells()
	return Cell{idx: i, d: d}, nil
}

// PointIndex returns the index of the generator point in the Diagram's Points.
func (c Cell) PointIndex() int {
	return c.idx
}

// Point returns the generator point of the cell.
func (c Cell) Point() r3.Vector {
	return c.d.Points[c.idx]
}

// NumVertices returns the number of vertices in the cell: one per
// tetrahedron containing the generator point. Zero only when the point
// belongs to no valid tetrahedron.
func (c Cell) NumVertices() int {
	return len(c.d.cellIndices[c.idx])
}

// BarycenterIndices returns the indices of the cell's vertices in the
// Diagram's Barycenters. Callers must not mutate the result.
func (c Cell) BarycenterIndices() []int {
	return c.d.cellIndices[c.idx]
}

// Vertices returns the cell's vertices. In periodic mode they are corrected
// to the image of the first vertex, so they may lie outside [0,1)³. Callers
// must not mutate the result.
func (c Cell) Vertices() []r3.Vector {
	return c.d.cellVertices[c.idx]
}

// Vertex returns the vertex at the specified index.
// It returns an error if the index is out of range.
func (c Cell) Vertex(i int) (r3.Vector, error) {
	verts := c.d.cellVertices[c.idx]
	if i < 0 || i >= len(verts) {
		return r3.Vector{}, fmt.Errorf("Vertex: index %d out of range [0 %d)", i, len(verts))
	}
	return verts[i], nil
}

// Centroid returns the average of the cell's image-corrected vertices, or
// the generator point itself for an empty cell.
func (c Cell) Centroid() r3.Vector {
	verts := c.d.cellVertices[c.idx]
	if len(verts) == 0 {
		return c.d.Points[c.idx]
	}
	sum := r3.Vector{}
	for _, v := range verts {
		sum = sum.Add(v)
	}
	return sum.Mul(1 / float64(len(verts)))
}
