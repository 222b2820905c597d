// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package acuteness

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	viamutils "go.viam.com/utils"
)

// runChunked distributes n scoring calls over the analyzer's fixed worker
// count in equal contiguous chunks. Workers write disjoint ranges of the
// result, so the merged output keeps the input ordering. A panicking chunk
// zeroes its own range and is reported in the combined error without
// aborting sibling chunks; the scores slice stays usable either way.
// Cancellation abandons the run and returns no scores.
func (a *Analyzer) runChunked(ctx context.Context, n int, name string, score func(i int) int) ([]int, error) {
	out := make([]int, n)
	if n == 0 {
		return out, nil
	}

	workers := a.workers
	if workers > n {
		workers = n
	}
	chunkSize := n / workers
	extra := n % workers

	var wg sync.WaitGroup
	chunkErrs := make([]error, workers)
	elapsed := make([]time.Duration, workers)

	for g := range workers {
		from := g * chunkSize
		to := from + chunkSize
		if g == workers-1 {
			to += extra
		}

		wg.Add(1)
		viamutils.PanicCapturingGo(func() {
			defer wg.Done()
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				// A failed chunk zeroes its own slots; siblings keep going.
				for i := from; i < to; i++ {
					out[i] = 0
				}
				chunkErrs[g] = errors.Errorf("%s chunk %d [%d,%d) failed: %v", name, g, from, to, p)
				a.logger.Errorw("scoring chunk failed", "scorer", name, "chunk", g, "from", from, "to", to, "error", p)
			}()
			start := time.Now()
			for i := from; i < to; i++ {
				if ctx.Err() != nil {
					chunkErrs[g] = ctx.Err()
					return
				}
				out[i] = score(i)
			}
			elapsed[g] = time.Since(start)
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.logger.Debugw("scoring complete", "scorer", name, "elements", n, "workers", workers, "chunkTimes", elapsed)
	return out, multierr.Combine(chunkErrs...)
}
