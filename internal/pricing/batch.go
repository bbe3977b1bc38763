package pricing

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used by ValuateBatch when workers <= 0.
const DefaultWorkers = 4

// BatchResult is the outcome for the contract at Index in the input slice.
type BatchResult struct {
	Index     int       `json:"index"`
	Valuation Valuation `json:"valuation"`
	Err       error     `json:"-"`
}

// ValuateBatch values contracts concurrently with at most workers goroutines.
//
// Results are index-aligned with contracts. A failing contract only affects
// its own slot, so each result is independent of evaluation order and of the
// rest of the batch. Contracts not yet started when ctx is cancelled carry
// ctx.Err().
func ValuateBatch(ctx context.Context, contracts []OptionContract, workers int) []BatchResult {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]BatchResult, len(contracts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range contracts {
		results[i].Index = i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			v, err := Valuate(contracts[i])
			results[i].Valuation = v
			results[i].Err = err
			// per-item errors never cancel the group
			return nil
		})
	}

	_ = g.Wait()
	return results
}
