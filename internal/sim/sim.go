// Package sim replays access sequences against cache policies.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/VividCortex/ewma"
	"github.com/rs/xid"

	"github.com/djdv/go-setassoc/internal/policy"
)

type (
	// Options tune a [Run].
	Options struct {
		// Pattern labels the result and metrics.
		Pattern string
		// Warmup accesses are replayed before counting starts.
		Warmup int
		// EWMAAge is the decay age of the smoothed hit rate, in accesses.
		// Zero selects the ewma package default.
		EWMAAge float64
		// Metrics, if set, receives the result.
		Metrics *Metrics
	}
	// Result summarizes one replay.
	Result struct {
		ID       string
		Policy   string
		Pattern  string
		Hits     int64
		Misses   int64
		Smoothed float64
		Elapsed  time.Duration
	}
)

// checkEvery is how many accesses run between context checks.
const checkEvery = 4096

// Run feeds keys to p in order and counts hits and misses.
// It stops early, returning ctx.Err(), if ctx is done.
func Run(ctx context.Context, p policy.Policy, keys []uint32, opts Options) (Result, error) {
	var (
		result = Result{
			ID:      xid.New().String(),
			Policy:  p.Name(),
			Pattern: opts.Pattern,
		}
		average = newAverage(opts.EWMAAge)
		warmup  = min(max(opts.Warmup, 0), len(keys))
		start   = time.Now()
	)
	for i, key := range keys {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}
		hit := p.Access(key)
		if i < warmup {
			continue
		}
		if hit {
			result.Hits++
			average.Add(1)
		} else {
			result.Misses++
			average.Add(0)
		}
	}
	result.Elapsed = time.Since(start)
	result.Smoothed = average.Value()
	if opts.Metrics != nil {
		opts.Metrics.record(result)
	}
	return result, nil
}

func newAverage(age float64) ewma.MovingAverage {
	if age <= 0 {
		return ewma.NewMovingAverage()
	}
	return ewma.NewMovingAverage(age)
}

// Accesses returns the number of counted accesses.
func (r Result) Accesses() int64 { return r.Hits + r.Misses }

// HitRate returns the fraction of counted accesses that hit.
func (r Result) HitRate() float64 {
	total := r.Accesses()
	if total == 0 {
		return 0
	}
	return float64(r.Hits) / float64(total)
}

func (r Result) String() string {
	return fmt.Sprintf(
		"%s policy=%s pattern=%s accesses=%d hit_pct=%.2f ewma_hit_pct=%.2f elapsed=%s",
		r.ID, r.Policy, r.Pattern, r.Accesses(),
		r.HitRate()*100, r.Smoothed*100, r.Elapsed)
}
