// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package periodic provides minimum-image vector arithmetic on the periodic
// unit cube [0,1)³. All functions are pure.
//
// Any two points compared for angles, adjacency or distance in periodic mode
// must first be brought to the same image. The convention throughout this
// module is that the first point encountered in a structure acts as the
// reference image; Unwrap implements it so every caller ties break the same
// way at cell and face boundaries.
package periodic

import (
	"math"

	"github.com/golang/geo/r3"
)

// Wrap folds each coordinate of p into [0,1). It is idempotent.
func Wrap(p r3.Vector) r3.Vector {
	return r3.Vector{
		X: wrapCoord(p.X),
		Y: wrapCoord(p.Y),
		Z: wrapCoord(p.Z),
	}
}

func wrapCoord(c float64) float64 {
	c -= math.Floor(c)
	// Floor of a value just below an integer can round the remainder to 1.
	if c >= 1 {
		c -= 1
	}
	return c
}

// Delta returns the minimum-image vector from a to b: per axis, b-a adjusted
// by ±1 whenever its magnitude exceeds 0.5, so the result is the shortest
// vector between the periodic images of a and b.
func Delta(a, b r3.Vector) r3.Vector {
	return r3.Vector{
		X: deltaCoord(a.X, b.X),
		Y: deltaCoord(a.Y, b.Y),
		Z: deltaCoord(a.Z, b.Z),
	}
}

func deltaCoord(a, b float64) float64 {
	d := b - a
	if d > 0.5 {
		d -= 1
	} else if d < -0.5 {
		d += 1
	}
	return d
}

// Image returns the representative of p's periodic equivalence class closest
// to ref. The result may lie outside [0,1); that is deliberate, it keeps a
// local vertex set consistent within a single face or cell.
func Image(ref, p r3.Vector) r3.Vector {
	return ref.Add(Delta(ref, p))
}

// Distance returns the Euclidean norm of the minimum-image delta between
// a and b.
func Distance(a, b r3.Vector) float64 {
	return Delta(a, b).Norm()
}

// Unwrap returns a copy of pts with every element corrected to the image of
// pts[0]. The first element is the reference; it is returned unchanged.
func Unwrap(pts []r3.Vector) []r3.Vector {
	if len(pts) == 0 {
		return nil
	}
	out := make([]r3.Vector, len(pts))
	out[0] = pts[0]
	for i := 1; i < len(pts); i++ {
		out[i] = Image(pts[0], pts[i])
	}
	return out
}
