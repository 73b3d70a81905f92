// Package sched is the concurrency harness multiplexing lazy proof
// streams: many independent Sources (one per candidate prover,
// listener, or stored fact) are fanned into a single
// ordered-by-arrival channel with bounded backpressure and cooperative
// cancellation.
//
// This generalizes gitrdm-gokando/pkg/minikanren/stream.go's
// channel-based Stream/Disj pattern (its goal/Disj combinators merge
// two goroutine-fed channels) from a fixed two-way merge to an N-way
// fan-in, and mirrors aitools/asynctools.py's multiplex/collect
// poison-pill scheme using context.Context cancellation in place of a
// sentinel value.
package sched

import (
	"context"
	"sync"

	"github.com/corvidlabs/proofkit/pkg/proof"
)

// Result is one item flowing through a proof stream: either a Proof or
// an error that terminates just that source's contribution.
type Result struct {
	Proof *proof.Proof
	Err   error
}

// Source lazily produces Results onto a channel it owns, closing the
// channel when exhausted or when ctx is cancelled. It must not block
// forever past ctx's cancellation.
type Source func(ctx context.Context) <-chan Result

// Multiplex fans every source in sources into one output channel,
// preserving no particular interleaving order. The output channel is
// closed once every source has closed its channel or ctx is done,
// whichever happens first. buffer sizes the output channel, bounding
// how far a fast source can run ahead of a slow consumer.
func Multiplex(ctx context.Context, buffer int, sources ...Source) <-chan Result {
	out := make(chan Result, buffer)
	if len(sources) == 0 {
		close(out)
		return out
	}

	var wg sync.WaitGroup
	wg.Add(len(sources))
	for _, src := range sources {
		go func(src Source) {
			defer wg.Done()
			in := src(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case r, ok := <-in:
					if !ok {
						return
					}
					select {
					case out <- r:
					case <-ctx.Done():
						return
					}
				}
			}
		}(src)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// Collect drains up to limit Results from ch, then cancels further
// production via cancel. A limit of 0 drains ch to completion (or
// until ctx is done) without an early cancel. Grounded on the original
// Python's asynctools.collect, which stops a multiplexed stream once
// enough results have been seen.
func Collect(ctx context.Context, cancel context.CancelFunc, ch <-chan Result, limit int) []Result {
	var out []Result
	for {
		if limit > 0 && len(out) >= limit {
			if cancel != nil {
				cancel()
			}
			// Drain until the producers observe cancellation and close.
			for range ch {
			}
			return out
		}
		select {
		case r, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, r)
		case <-ctx.Done():
			for range ch {
			}
			return out
		}
	}
}
