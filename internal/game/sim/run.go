package sim

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunAll runs every arena to completion. With a positive interval the arenas
// are stepped together in wall-clock time, one step per interval; otherwise
// each arena runs unpaced on its own goroutine.
//
// Postcondition: Returns one Result per arena in input order, and the first
// error or context error encountered.
func RunAll(ctx context.Context, arenas []*Arena, interval time.Duration) ([]Result, error) {
	if interval > 0 {
		return runPaced(ctx, arenas, interval)
	}
	results := make([]Result, len(arenas))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range arenas {
		g.Go(func() error {
			r, err := a.Run(gctx)
			results[i] = r
			return err
		})
	}
	err := g.Wait()
	return results, err
}

func runPaced(ctx context.Context, arenas []*Arena, interval time.Duration) ([]Result, error) {
	tm := NewTickManager(interval)
	for i, a := range arenas {
		tm.RegisterTick(fmt.Sprintf("%06d", i), a.Step)
	}
	<-tm.Start(ctx)

	results := make([]Result, len(arenas))
	for i, a := range arenas {
		results[i] = a.Result()
	}
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("sim.RunAll: %w", err)
	}
	return results, nil
}
