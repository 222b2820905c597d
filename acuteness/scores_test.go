// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package acuteness

import (
	"context"
	"math"
	"testing"

	"github.com/2dChan/perivoronoi"
	"github.com/2dChan/perivoronoi/tetra"
	"github.com/2dChan/perivoronoi/utils"
	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
)

func mustNewAnalyzer(t *testing.T, setters ...AnalyzerOption) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(setters...)
	if err != nil {
		t.Fatalf("NewAnalyzer(...) error = %v, want nil", err)
	}
	return a
}

func mustNewDiagram(t *testing.T, points []r3.Vector, tets []tetra.Tetrahedron, opts ...perivoronoi.DiagramOption) *perivoronoi.Diagram {
	t.Helper()
	d, err := perivoronoi.NewDiagram(points, tets, opts...)
	if err != nil {
		t.Fatalf("NewDiagram(...) error = %v, want nil", err)
	}
	return d
}

// regularTetrahedron maps the vertices (1,1,1), (1,-1,-1), (-1,1,-1),
// (-1,-1,1) into the middle of the unit cube. All twelve vertex angles are
// 60° and acute.
func regularTetrahedron() []r3.Vector {
	raw := []r3.Vector{
		{X: 1, Y: 1, Z: 1},
		{X: 1, Y: -1, Z: -1},
		{X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1},
	}
	out := make([]r3.Vector, len(raw))
	for i, p := range raw {
		out[i] = p.Mul(0.2).Add(r3.Vector{X: 0.5, Y: 0.5, Z: 0.5})
	}
	return out
}

func TestAnalyzerOptions(t *testing.T) {
	tests := []struct {
		name    string
		opt     AnalyzerOption
		wantErr bool
	}{
		{"workers positive", WithWorkers(4), false},
		{"workers zero", WithWorkers(0), true},
		{"workers negative", WithWorkers(-1), true},
		{"tolerance positive", WithNeighborTolerance(1e-4), false},
		{"tolerance zero", WithNeighborTolerance(0), true},
		{"tolerance negative", WithNeighborTolerance(-1e-6), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAnalyzer(tt.opt)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewAnalyzer(...) error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAngle(t *testing.T) {
	tests := []struct {
		name string
		u, v r3.Vector
		want float64
	}{
		{"orthogonal", r3.Vector{X: 1}, r3.Vector{Y: 1}, math.Pi / 2},
		{"parallel", r3.Vector{X: 2}, r3.Vector{X: 5}, 0},
		{"opposite", r3.Vector{X: 1}, r3.Vector{X: -3}, math.Pi},
		{"sixty degrees", r3.Vector{X: 1}, r3.Vector{X: 0.5, Y: math.Sqrt(3) / 2}, math.Pi / 3},
		{"zero length u", r3.Vector{}, r3.Vector{X: 1}, 0},
		{"zero length v", r3.Vector{X: 1}, r3.Vector{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := angle(tt.u, tt.v); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("angle(%v, %v) = %v, want %v", tt.u, tt.v, got, tt.want)
			}
		})
	}
}

func TestVertexScores_RegularTetrahedron(t *testing.T) {
	d := mustNewDiagram(t, regularTetrahedron(), []tetra.Tetrahedron{{0, 1, 2, 3}})
	a := mustNewAnalyzer(t)

	got, err := a.VertexScores(context.Background(), d)
	if err != nil {
		t.Fatalf("a.VertexScores(...) error = %v, want nil", err)
	}
	if len(got) != 1 || got[0] != 12 {
		t.Errorf("a.VertexScores(...) = %v, want [12]", got)
	}
}

func TestVertexScores_RightAnglesNotCounted(t *testing.T) {
	// A corner tetrahedron: the three angles at the right-angle vertex are
	// exactly 90° and must not be counted; each remaining vertex has angles
	// 45°, 45° and 60°, all acute.
	points := []r3.Vector{
		{X: 0.2, Y: 0.2, Z: 0.2},
		{X: 0.8, Y: 0.2, Z: 0.2},
		{X: 0.2, Y: 0.8, Z: 0.2},
		{X: 0.2, Y: 0.2, Z: 0.8},
	}
	d := mustNewDiagram(t, points, []tetra.Tetrahedron{{0, 1, 2, 3}})
	a := mustNewAnalyzer(t)

	got, err := a.VertexScores(context.Background(), d)
	if err != nil {
		t.Fatalf("a.VertexScores(...) error = %v, want nil", err)
	}
	if len(got) != 1 || got[0] != 9 {
		t.Errorf("a.VertexScores(...) = %v, want [9]", got)
	}
}

func TestVertexScores_BoundaryCorrection(t *testing.T) {
	// The same regular tetrahedron squeezed against the cube corner: the raw
	// score 12 is reduced to round(12·0.6) = 7.
	raw := []r3.Vector{
		{X: 1, Y: 1, Z: 1},
		{X: 1, Y: -1, Z: -1},
		{X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1},
	}
	points := make([]r3.Vector, len(raw))
	for i, p := range raw {
		points[i] = p.Mul(0.2).Add(r3.Vector{X: 0.25, Y: 0.25, Z: 0.25})
	}
	d := mustNewDiagram(t, points, []tetra.Tetrahedron{{0, 1, 2, 3}})

	corrected := mustNewAnalyzer(t)
	got, err := corrected.VertexScores(context.Background(), d)
	if err != nil {
		t.Fatalf("a.VertexScores(...) error = %v, want nil", err)
	}
	if len(got) != 1 || got[0] != 7 {
		t.Errorf("corrected VertexScores(...) = %v, want [7]", got)
	}

	uncorrected := mustNewAnalyzer(t, WithBoundaryCorrection(false))
	got, err = uncorrected.VertexScores(context.Background(), d)
	if err != nil {
		t.Fatalf("a.VertexScores(...) error = %v, want nil", err)
	}
	if len(got) != 1 || got[0] != 12 {
		t.Errorf("uncorrected VertexScores(...) = %v, want [12]", got)
	}
}

// triangleFacePoints builds a mesh whose only Voronoi face is an equilateral
// triangle: three tetrahedra fanned around the axis edge (0,1).
func triangleFaceFixture() ([]r3.Vector, []tetra.Tetrahedron) {
	points := []r3.Vector{
		{X: 0.5, Y: 0.5, Z: 0.3},
		{X: 0.5, Y: 0.5, Z: 0.7},
	}
	for k := range 3 {
		theta := 2 * math.Pi * float64(k) / 3
		points = append(points, r3.Vector{
			X: 0.5 + 0.2*math.Cos(theta),
			Y: 0.5 + 0.2*math.Sin(theta),
			Z: 0.5,
		})
	}
	tets := []tetra.Tetrahedron{
		{0, 1, 2, 3},
		{0, 1, 3, 4},
		{0, 1, 4, 2},
	}
	return points, tets
}

func TestFaceScores(t *testing.T) {
	tests := []struct {
		name   string
		points []r3.Vector
		tets   []tetra.Tetrahedron
		want   []int
	}{
		{
			// The cube fixture's single face is a regular hexagon: every
			// interior angle is 120°, nothing acute.
			"hexagon all obtuse",
			cubePoints(),
			cubeTets(),
			[]int{0},
		},
		{
			// An equilateral triangle face: three 60° interior angles.
			"equilateral triangle all acute",
			nil, // filled below
			nil,
			[]int{3},
		},
	}
	tests[1].points, tests[1].tets = triangleFaceFixture()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustNewDiagram(t, tt.points, tt.tets)
			a := mustNewAnalyzer(t)
			got, err := a.FaceScores(context.Background(), d)
			if err != nil {
				t.Fatalf("a.FaceScores(...) error = %v, want nil", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("a.FaceScores(...) mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCellScore_RegularTetrahedronCell(t *testing.T) {
	// A synthetic cell whose four vertices form a regular tetrahedron: each
	// vertex's three nearest neighbors are the other three, all pairwise
	// angles are 60°, so the cell scores 4·3 = 12.
	a := mustNewAnalyzer(t)
	d := &perivoronoi.Diagram{}
	if got := a.cellScore(d, regularTetrahedron()); got != 12 {
		t.Errorf("cellScore(regular tetrahedron) = %d, want 12", got)
	}
}

func TestCellScore_TooFewVertices(t *testing.T) {
	a := mustNewAnalyzer(t)
	d := &perivoronoi.Diagram{}
	verts := regularTetrahedron()[:3]
	if got := a.cellScore(d, verts); got != 0 {
		t.Errorf("cellScore(3 vertices) = %d, want 0", got)
	}
}

func TestCellScores_EmptyAndSmallCells(t *testing.T) {
	points := append(cubePoints(), r3.Vector{X: 0.5, Y: 0.5, Z: 0.5})
	d := mustNewDiagram(t, points, cubeTets())
	a := mustNewAnalyzer(t)

	got, err := a.CellScores(context.Background(), d)
	if err != nil {
		t.Fatalf("a.CellScores(...) error = %v, want nil", err)
	}
	if len(got) != 9 {
		t.Fatalf("len(CellScores) = %d, want 9", len(got))
	}
	// Corners 1..6 have two-vertex cells, point 8 an empty one: all score 0.
	for _, i := range []int{1, 2, 3, 4, 5, 6, 8} {
		if got[i] != 0 {
			t.Errorf("CellScores[%d] = %d, want 0 for a cell with fewer than 4 vertices", i, got[i])
		}
	}
}

func TestUpdateCellScores(t *testing.T) {
	d := mustNewDiagram(t, cubePoints(), cubeTets())
	a := mustNewAnalyzer(t)

	full, err := a.CellScores(context.Background(), d)
	if err != nil {
		t.Fatalf("a.CellScores(...) error = %v, want nil", err)
	}

	partial := make([]int, len(full))
	if err := a.UpdateCellScores(context.Background(), d, []int{0, 7, 99, -1}, partial); err != nil {
		t.Fatalf("a.UpdateCellScores(...) error = %v, want nil", err)
	}
	for i := range partial {
		want := 0
		if i == 0 || i == 7 {
			want = full[i]
		}
		if partial[i] != want {
			t.Errorf("partial[%d] = %d, want %d", i, partial[i], want)
		}
	}

	if err := a.UpdateCellScores(context.Background(), d, nil, make([]int, 3)); err == nil {
		t.Errorf("a.UpdateCellScores(mismatched prev) error = nil, want non-nil")
	}
}

func TestEdgeScores_SyntheticStar(t *testing.T) {
	// Three spokes from a shared endpoint: e0–e1 at 45° (acute), e0–e2 at
	// 180° and e1–e2 at 135° (not acute). Leaf endpoints have no neighbors.
	d := &perivoronoi.Diagram{
		Barycenters: []r3.Vector{
			{X: 0.5, Y: 0.5, Z: 0.5},
			{X: 0.6, Y: 0.5, Z: 0.5},
			{X: 0.6, Y: 0.6, Z: 0.5},
			{X: 0.4, Y: 0.5, Z: 0.5},
		},
		Edges: []perivoronoi.Edge{
			{Barycenters: [2]int{0, 1}},
			{Barycenters: [2]int{0, 2}},
			{Barycenters: [2]int{0, 3}},
		},
	}
	a := mustNewAnalyzer(t)

	got, err := a.EdgeScores(context.Background(), d)
	if err != nil {
		t.Fatalf("a.EdgeScores(...) error = %v, want nil", err)
	}
	want := []int{1, 1, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("a.EdgeScores(...) mismatch (-want +got):\n%s", diff)
	}
}

func TestEdgeScores_CubeCycle(t *testing.T) {
	// The cube fixture's dual edges form a regular hexagon cycle: at every
	// endpoint the single neighbor sits at 120°, never acute.
	d := mustNewDiagram(t, cubePoints(), cubeTets())
	a := mustNewAnalyzer(t)

	got, err := a.EdgeScores(context.Background(), d)
	if err != nil {
		t.Fatalf("a.EdgeScores(...) error = %v, want nil", err)
	}
	for i, s := range got {
		if s != 0 {
			t.Errorf("EdgeScores[%d] = %d, want 0", i, s)
		}
	}
}

func TestScores_ChunkedMatchesSequential(t *testing.T) {
	points := utils.GenerateRandomPoints(60, 7)
	tets, err := tetra.HullFan{}.Tetrahedralize(context.Background(), points, false)
	if err != nil {
		t.Fatalf("HullFan.Tetrahedralize(...) error = %v, want nil", err)
	}
	d := mustNewDiagram(t, points, tets)

	sequential := mustNewAnalyzer(t, WithWorkers(1))
	chunked := mustNewAnalyzer(t, WithWorkers(5))

	type scorer struct {
		name string
		run  func(*Analyzer) ([]int, error)
	}
	scorers := []scorer{
		{"vertex", func(a *Analyzer) ([]int, error) { return a.VertexScores(context.Background(), d) }},
		{"face", func(a *Analyzer) ([]int, error) { return a.FaceScores(context.Background(), d) }},
		{"cell", func(a *Analyzer) ([]int, error) { return a.CellScores(context.Background(), d) }},
		{"edge", func(a *Analyzer) ([]int, error) { return a.EdgeScores(context.Background(), d) }},
	}
	for _, sc := range scorers {
		t.Run(sc.name, func(t *testing.T) {
			want, err := sc.run(sequential)
			if err != nil {
				t.Fatalf("sequential %s scores error = %v, want nil", sc.name, err)
			}
			got, err := sc.run(chunked)
			if err != nil {
				t.Fatalf("chunked %s scores error = %v, want nil", sc.name, err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("%s scores mismatch (-sequential +chunked):\n%s", sc.name, diff)
			}
		})
	}
}

func TestScores_Cancellation(t *testing.T) {
	d := mustNewDiagram(t, cubePoints(), cubeTets())
	a := mustNewAnalyzer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.VertexScores(ctx, d); err == nil {
		t.Errorf("a.VertexScores(cancelled ctx) error = nil, want non-nil")
	}
}

// cube fixture shared with the root package tests.

func cubePoints() []r3.Vector {
	points := make([]r3.Vector, 8)
	for i := range 8 {
		coord := func(bit int) float64 {
			if i&bit != 0 {
				return 0.8
			}
			return 0.2
		}
		points[i] = r3.Vector{X: coord(1), Y: coord(2), Z: coord(4)}
	}
	return points
}

func cubeTets() []tetra.Tetrahedron {
	return []tetra.Tetrahedron{
		{0, 1, 3, 7},
		{0, 2, 3, 7},
		{0, 2, 6, 7},
		{0, 4, 6, 7},
		{0, 4, 5, 7},
		{0, 1, 5, 7},
	}
}
