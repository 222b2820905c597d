// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package utils provides utility functions for generating point sets in the
// unit cube for Voronoi dual graphs.

package utils

import (
	"math/rand"

	"github.com/golang/geo/r3"
)

// GenerateRandomPoints generates cnt uniform random points in [0,1)³.
// The seed parameter ensures reproducibility.
func GenerateRandomPoints(cnt int, seed int64) []r3.Vector {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	points := make([]r3.Vector, cnt)

	for i := range cnt {
		points[i] = r3.Vector{
			X: random.Float64(),
			Y: random.Float64(),
			Z: random.Float64(),
		}
	}

	return points
}
