// Package pipeline runs per-frame preprocessing in parallel while delivering
// results to a sequential consumer in frame order.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Stats counts what happened to the frames of one run.
type Stats struct {
	Frames    int `json:"frames"`    // Delivered in order, processed or skipped
	Processed int `json:"processed"` // Consumed successfully
	Skipped   int `json:"skipped"`   // Preparation failed; consumer never saw them
}

// Runner prepares up to Workers frames concurrently and hands the prepared
// values to Consume one at a time, in the order the frames were received.
//
// A frame whose preparation fails is skipped: Consume is not called for it and
// the consumer state carries over unchanged to the next frame. An error from
// Consume stops the run.
type Runner[T, P any] struct {
	Workers int

	Prepare func(ctx context.Context, index int, frame T) (P, error)
	Consume func(index int, prepared P) error

	// Skip, when set, is told about every frame whose preparation failed.
	Skip func(index int, err error)

	// Discard, when set, releases prepared values that were never consumed
	// because the run stopped early.
	Discard func(prepared P)
}

type prepared[P any] struct {
	index int
	value P
	err   error
}

// Run consumes frames from in until it is closed, ctx is cancelled, or Consume
// fails. Frames are indexed from 0 in receive order.
func (r *Runner[T, P]) Run(ctx context.Context, in <-chan T) (Stats, error) {
	if r.Prepare == nil || r.Consume == nil {
		return Stats{}, fmt.Errorf("pipeline: Prepare and Consume are required")
	}
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// window bounds frames in flight plus frames waiting for reordering.
	window := make(chan struct{}, 2*workers)
	done := make(chan prepared[P], workers)

	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(workers)

	go func() {
		defer close(done)
		defer g.Wait()

		for index := 0; ; index++ {
			var frame T
			select {
			case <-gctx.Done():
				return
			case f, ok := <-in:
				if !ok {
					return
				}
				frame = f
			}

			select {
			case window <- struct{}{}:
			case <-gctx.Done():
				return
			}

			i := index
			g.Go(func() error {
				value, err := r.Prepare(gctx, i, frame)
				select {
				case done <- prepared[P]{index: i, value: value, err: err}:
				case <-gctx.Done():
					if err == nil {
						r.discard(value)
					}
				}
				return nil
			})
		}
	}()

	var stats Stats
	var runErr error
	pending := make(map[int]prepared[P])
	next := 0

	for res := range done {
		pending[res.index] = res
		for {
			item, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			<-window

			if runErr != nil {
				if item.err == nil {
					r.discard(item.value)
				}
				continue
			}

			stats.Frames++
			if item.err != nil {
				stats.Skipped++
				if r.Skip != nil {
					r.Skip(item.index, item.err)
				}
				continue
			}
			if err := r.Consume(item.index, item.value); err != nil {
				runErr = fmt.Errorf("frame %d: %w", item.index, err)
				cancel()
				continue
			}
			stats.Processed++
		}
	}

	// Frames after a gap left by cancellation never reach the consumer.
	for _, item := range pending {
		if item.err == nil {
			r.discard(item.value)
		}
	}

	if runErr != nil {
		return stats, runErr
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (r *Runner[T, P]) discard(v P) {
	if r.Discard != nil {
		r.Discard(v)
	}
}
