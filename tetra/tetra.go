// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package tetra defines the tetrahedron primitive produced by a
// tetrahedralization engine and the input contract the dual-graph builder
// expects: indices in range, no duplicates, and periodic image indices
// already reduced modulo the original point count.
package tetra

import (
	"sort"

	"github.com/edaniels/golog"
)

// Tetrahedron is an ordered 4-tuple of point indices.
type Tetrahedron [4]int

// Valid reports whether all four indices are distinct and lie in [0, n).
func (t Tetrahedron) Valid(n int) bool {
	for i, v := range t {
		if v < 0 || v >= n {
			return false
		}
		for j := i + 1; j < 4; j++ {
			if v == t[j] {
				return false
			}
		}
	}
	return true
}

// Canonical returns the tetrahedron with its indices sorted ascending.
func (t Tetrahedron) Canonical() Tetrahedron {
	c := t
	sort.Ints(c[:])
	return c
}

// Contains reports whether the tetrahedron references point index v.
func (t Tetrahedron) Contains(v int) bool {
	return t[0] == v || t[1] == v || t[2] == v || t[3] == v
}

// Faces returns the four triangular faces as sorted vertex-index triples.
// Sorted triples are canonical, so two tetrahedra sharing a face produce an
// identical key.
func (t Tetrahedron) Faces() [4][3]int {
	var faces [4][3]int
	for i := range 4 {
		k := 0
		for j := range 4 {
			if j == i {
				continue
			}
			faces[i][k] = t[j]
			k++
		}
		sort.Ints(faces[i][:])
	}
	return faces
}

// Filter drops tetrahedra with out-of-range or duplicate indices and returns
// the kept entries with the dropped count. Dropping is a diagnostic, never an
// error; a nil logger suppresses the report.
func Filter(tets []Tetrahedron, n int, logger golog.Logger) ([]Tetrahedron, int) {
	kept := make([]Tetrahedron, 0, len(tets))
	dropped := 0
	for _, t := range tets {
		if !t.Valid(n) {
			dropped++
			continue
		}
		kept = append(kept, t)
	}
	if dropped > 0 && logger != nil {
		logger.Debugw("dropped invalid tetrahedra", "dropped", dropped, "kept", len(kept))
	}
	return kept, dropped
}

// Reduce maps periodic image indices back into [0, n) and removes duplicate
// tetrahedra. Periodic engines triangulate a 27× replicated image set, so a
// vertex index v refers to image copies of original point v % n and every
// tetrahedron appears once per image. The first occurrence of each canonical
// tuple is kept, in input order and with its original vertex order.
func Reduce(tets []Tetrahedron, n int) []Tetrahedron {
	if n <= 0 {
		return nil
	}
	seen := make(map[Tetrahedron]struct{}, len(tets))
	out := make([]Tetrahedron, 0, len(tets))
	for _, t := range tets {
		for i, v := range t {
			if v >= n {
				t[i] = v % n
			}
		}
		key := t.Canonical()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
