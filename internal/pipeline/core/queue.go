package core

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// QueuePolicy decides how the jobs of a run are scheduled. Run returns once
// fn has returned for every index.
type QueuePolicy interface {
	Name() string
	Run(ctx context.Context, n int, fn func(ctx context.Context, i int))
}

// Sequential runs jobs one at a time in selection order.
type Sequential struct{}

func (Sequential) Name() string { return "sequential" }

func (Sequential) Run(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	for i := range n {
		fn(ctx, i)
	}
}

// Bounded runs up to Limit jobs concurrently. A failing job never cancels
// its siblings.
type Bounded struct {
	Limit int
}

func (b Bounded) Name() string { return "bounded" }

func (b Bounded) Run(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	var g errgroup.Group
	g.SetLimit(max(b.Limit, 1))
	for i := range n {
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
}

// NewQueuePolicy returns Sequential for concurrency <= 1, Bounded otherwise.
func NewQueuePolicy(concurrency int) QueuePolicy {
	if concurrency <= 1 {
		return Sequential{}
	}
	return Bounded{Limit: concurrency}
}
