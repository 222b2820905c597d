// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package perivoronoi

import (
	"github.com/2dChan/perivoronoi/periodic"
	"github.com/2dChan/perivoronoi/tetra"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.uber.org/zap"
)

const collinearEps = 1e-9

// Edge is a Voronoi edge between the barycenters of two tetrahedra sharing
// exactly one triangular face.
type Edge struct {
	// Barycenters holds the two barycenter indices, smaller first.
	Barycenters [2]int
	// CrossesBoundary is set when any coordinate delta between the wrapped
	// endpoints exceeds 0.5 in magnitude, i.e. the edge wraps around the
	// periodic unit cube.
	CrossesBoundary bool
}

// Diagram is the Voronoi dual graph of a tetrahedral mesh: one vertex
// (barycenter) per tetrahedron, edges from tetrahedra adjacency, faces keyed
// by Delaunay edges, and cells keyed by generator point index.
//
// Points are owned by the caller and never mutated here. Faces and cells are
// built lazily, cached, and invalidated together on Rebuild; callers must not
// mutate returned structures.
type Diagram struct {
	Points      []r3.Vector
	Tetrahedra  []tetra.Tetrahedron
	Barycenters []r3.Vector
	Edges       []Edge
	Periodic    bool

	logger golog.Logger

	faces        []Face
	cellIndices  [][]int
	cellVertices [][]r3.Vector
}

// DiagramOptions configures diagram construction.
type DiagramOptions struct {
	Periodic bool
	Logger   golog.Logger
}

// DiagramOption mutates DiagramOptions, reporting invalid settings.
type DiagramOption func(*DiagramOptions) error

// WithPeriodic enables minimum-image semantics on the unit cube. Points must
// lie in [0,1)³.
func WithPeriodic() DiagramOption {
	return func(o *DiagramOptions) error {
		o.Periodic = true
		return nil
	}
}

// WithLogger sets the diagnostics logger. The default is silent.
func WithLogger(logger golog.Logger) DiagramOption {
	return func(o *DiagramOptions) error {
		o.Logger = logger
		return nil
	}
}

// NewDiagram builds the dual graph of the given tetrahedralization.
// Tetrahedra with out-of-range or duplicate indices are dropped before
// processing; the dropped count is a logged diagnostic, not an error. An
// empty tetrahedra list yields an empty diagram.
func NewDiagram(points []r3.Vector, tets []tetra.Tetrahedron, setters ...DiagramOption) (*Diagram, error) {
	opts := DiagramOptions{}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}

	d := &Diagram{
		Periodic: opts.Periodic,
		logger:   opts.Logger,
	}
	d.rebuild(points, tets)
	return d, nil
}

// Rebuild recomputes barycenters and edges for new inputs and invalidates the
// face and cell caches wholesale. Callers re-triangulate after a growth step
// and feed the result back through here.
func (d *Diagram) Rebuild(points []r3.Vector, tets []tetra.Tetrahedron) {
	d.rebuild(points, tets)
}

func (d *Diagram) rebuild(points []r3.Vector, tets []tetra.Tetrahedron) {
	kept, _ := tetra.Filter(tets, len(points), d.logger)
	d.Points = points
	d.Tetrahedra = kept
	d.Barycenters = d.computeBarycenters()
	d.Edges = d.computeEdges()
	d.faces = nil
	d.cellIndices = nil
	d.cellVertices = nil
}

// NumCells returns the number of cells, one per generator point.
func (d *Diagram) NumCells() int {
	return len(d.Points)
}

func (d *Diagram) computeBarycenters() []r3.Vector {
	bcs := make([]r3.Vector, len(d.Tetrahedra))
	var corners [4]r3.Vector
	for i, t := range d.Tetrahedra {
		for j, v := range t {
			corners[j] = d.Points[v]
		}
		verts := corners[:]
		if d.Periodic {
			verts = periodic.Unwrap(verts)
		}
		bc := verts[0].Add(verts[1]).Add(verts[2]).Add(verts[3]).Mul(0.25)
		if d.Periodic {
			bc = periodic.Wrap(bc)
		}
		bcs[i] = bc
	}
	return bcs
}

// computeEdges derives one edge per triangular face shared by exactly two
// tetrahedra. Faces are keyed by their sorted vertex triple; edges are
// deduplicated by the undirected barycenter pair. Iteration runs over the
// tetrahedra list so the output order is deterministic.
func (d *Diagram) computeEdges() []Edge {
	byFace := make(map[[3]int][]int, len(d.Tetrahedra)*4)
	for i, t := range d.Tetrahedra {
		for _, f := range t.Faces() {
			byFace[f] = append(byFace[f], i)
		}
	}

	seen := make(map[[2]int]struct{})
	edges := make([]Edge, 0, len(d.Tetrahedra)*2)
	for i, t := range d.Tetrahedra {
		for _, f := range t.Faces() {
			owners := byFace[f]
			if len(owners) != 2 || owners[0] != i {
				continue
			}
			pair := [2]int{owners[0], owners[1]}
			if pair[0] > pair[1] {
				pair[0], pair[1] = pair[1], pair[0]
			}
			if _, ok := seen[pair]; ok {
				continue
			}
			seen[pair] = struct{}{}
			edges = append(edges, Edge{
				Barycenters:     pair,
				CrossesBoundary: d.Periodic && crossesBoundary(d.Barycenters[pair[0]], d.Barycenters[pair[1]]),
			})
		}
	}
	return edges
}

func crossesBoundary(a, b r3.Vector) bool {
	d := b.Sub(a)
	return d.X > 0.5 || d.X < -0.5 || d.Y > 0.5 || d.Y < -0.5 || d.Z > 0.5 || d.Z < -0.5
}

// EdgeVertices returns the edge endpoints brought to a common image: the
// first barycenter is the reference, the second is minimum-image corrected
// against it in periodic mode.
func (d *Diagram) EdgeVertices(e Edge) (r3.Vector, r3.Vector) {
	a := d.Barycenters[e.Barycenters[0]]
	b := d.Barycenters[e.Barycenters[1]]
	if d.Periodic {
		b = periodic.Image(a, b)
	}
	return a, b
}

// CellVertexSets returns the image-corrected vertex set of every cell,
// indexed by generator point. Built lazily with the cell cache; callers must
// not mutate the result. Downstream scorers snapshot this before fanning out
// workers so the lazy build never races.
func (d *Diagram) CellVertexSets() [][]r3.Vector {
	d.ensureCells()
	return d.cellVertices
}

func (d *Diagram) ensureCells() {
	if d.cellIndices != nil {
		return
	}
	d.cellIndices = make([][]int, len(d.Points))
	for i, t := range d.Tetrahedra {
		for _, v := range t {
			d.cellIndices[v] = append(d.cellIndices[v], i)
		}
	}
	d.cellVertices = make([][]r3.Vector, len(d.Points))
	for p, idxs := range d.cellIndices {
		if len(idxs) == 0 {
			continue
		}
		verts := make([]r3.Vector, len(idxs))
		for i, b := range idxs {
			verts[i] = d.Barycenters[b]
		}
		if d.Periodic {
			verts = periodic.Unwrap(verts)
		}
		d.cellVertices[p] = verts
	}
}
