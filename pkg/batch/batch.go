// Package batch provides a bounded-concurrency batch executor for
// fanning out independent operations over an ordered input sequence.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultConcurrency is the in-flight ceiling used when a caller passes
// a non-positive concurrency.
const DefaultConcurrency = 10

// Run executes op across all inputs while never exceeding concurrency
// in-flight operations at any instant.
//
// Inputs are partitioned into consecutive groups of at most concurrency
// elements. Groups run strictly one after another; elements within a
// group run concurrently and are all awaited before the next group
// starts. The result slice has the same length and order as inputs,
// regardless of per-element completion order.
//
// The global index passed to op is the element's position in the
// flattened input sequence and exists for progress reporting only.
//
// Failure is fail-fast: if any element fails, the lowest-index error of
// its group is returned and no later group starts. Side effects of
// already-completed groups stand.
func Run[I, R any](ctx context.Context, inputs []I, concurrency int, op func(ctx context.Context, input I, globalIndex int) (R, error)) ([]R, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]R, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}

	groups := (len(inputs) + concurrency - 1) / concurrency

	log.Debug().
		Int("inputs", len(inputs)).
		Int("concurrency", concurrency).
		Int("groups", groups).
		Msg("Starting batched execution")

	for group := 0; group*concurrency < len(inputs); group++ {
		start := group * concurrency
		end := start + concurrency
		if end > len(inputs) {
			end = len(inputs)
		}

		// Each element writes to its own result and error slot, so the
		// group's goroutines never contend.
		errs := make([]error, end-start)

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(index int) {
				defer wg.Done()
				result, err := op(ctx, inputs[index], index)
				if err != nil {
					errs[index-start] = err
					return
				}
				results[index] = result
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			if err != nil {
				return results, fmt.Errorf("batch element %d: %w", start+i, err)
			}
		}

		log.Debug().
			Int("group", group+1).
			Int("groups", groups).
			Int("completed", end).
			Int("total", len(inputs)).
			Msg("Batch group complete")
	}

	return results, nil
}
