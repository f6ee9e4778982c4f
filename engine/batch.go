package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"causemap/domain/causal"
)

// DiscoverAll runs one discovery per observation set, keyed by owner (one
// user, one graph). Runs are independent: each owns its graph exclusively,
// so they parallelize without locking inside the pipeline. concurrency <= 0
// means unbounded.
func (e *Engine) DiscoverAll(ctx context.Context, sets map[string][]causal.CausalObservation, concurrency int) (map[string]*DiscoveryResult, error) {
	group, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		group.SetLimit(concurrency)
	}

	var mu sync.Mutex
	results := make(map[string]*DiscoveryResult, len(sets))

	for owner, observations := range sets {
		group.Go(func() error {
			result, err := e.DiscoverStructure(ctx, observations)
			if err != nil {
				return err
			}
			mu.Lock()
			results[owner] = result
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
