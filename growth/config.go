// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package growth converts acuteness scores into generator-point
// displacements: Engine integrates a damped flux toward or away from the
// cell centroid, Physics runs a neighbor repulsion model, and Optimizer
// gates recomputation when driven by continuous animation.
package growth

import (
	"github.com/pkg/errors"
)

// Mode selects which side of the score threshold drives growth vs. shrink
// and whether both sides are active.
type Mode string

const (
	// ModeMoreGrowOnly grows cells scoring above the threshold; the rest
	// hold still.
	ModeMoreGrowOnly Mode = "more_grow_only"
	// ModeMoreGrowBoth grows above the threshold and shrinks below it.
	ModeMoreGrowBoth Mode = "more_grow_both"
	// ModeMoreShrinkOnly shrinks cells scoring above the threshold.
	ModeMoreShrinkOnly Mode = "more_shrink_only"
	// ModeMoreShrinkBoth shrinks above the threshold and grows below it.
	ModeMoreShrinkBoth Mode = "more_shrink_both"
)

// Config parameterizes an Engine. Every field is independently defaultable
// via DefaultConfig.
type Config struct {
	// K is the flux gain.
	K float64
	// Normalize divides all fluxes by the maximum magnitude across points,
	// preserving signs.
	Normalize bool
	// Damping blends the previous step's delta into the new one, in [0,1).
	Damping float64
	// MaxDelta clamps the per-step delta magnitude.
	MaxDelta float64
	// DT scales the applied displacement.
	DT float64
	// Threshold is the score at which flux changes sign.
	Threshold float64
	// GrowthPower exponentiates the flux magnitude.
	GrowthPower float64
	// Mode selects the growth/shrink regime.
	Mode Mode
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		K:           0.01,
		Normalize:   false,
		Damping:     0.5,
		MaxDelta:    0.05,
		DT:          1,
		Threshold:   12,
		GrowthPower: 1,
		Mode:        ModeMoreGrowBoth,
	}
}

// Validate reports the first invalid setting. An unknown mode is a
// configuration-time failure; nothing else in the growth path errors on
// geometry.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeMoreGrowOnly, ModeMoreGrowBoth, ModeMoreShrinkOnly, ModeMoreShrinkBoth:
	default:
		return errors.Errorf("growth: unknown mode %q", c.Mode)
	}
	if c.Damping < 0 || c.Damping >= 1 {
		return errors.Errorf("growth: damping must be in [0,1), got %v", c.Damping)
	}
	if c.MaxDelta < 0 {
		return errors.Errorf("growth: max delta must be non-negative, got %v", c.MaxDelta)
	}
	if c.DT <= 0 {
		return errors.Errorf("growth: dt must be positive, got %v", c.DT)
	}
	if c.GrowthPower <= 0 {
		return errors.Errorf("growth: growth power must be positive, got %v", c.GrowthPower)
	}
	return nil
}

// fluxSign maps a score to the sign of its flux under the configured mode.
func (c Config) fluxSign(score float64) float64 {
	above := score > c.Threshold
	below := score < c.Threshold
	switch c.Mode {
	case ModeMoreGrowOnly:
		if above {
			return 1
		}
	case ModeMoreGrowBoth:
		if above {
			return 1
		}
		if below {
			return -1
		}
	case ModeMoreShrinkOnly:
		if above {
			return -1
		}
	case ModeMoreShrinkBoth:
		if above {
			return -1
		}
		if below {
			return 1
		}
	}
	return 0
}
