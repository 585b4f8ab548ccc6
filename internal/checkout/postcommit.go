package checkout

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/metrics"
)

// Task is one side effect that runs after the order row is written.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// PostCommit runs tasks once each, in order. A failing task is logged and
// counted, the remaining tasks still run, and nothing is rolled back.
type PostCommit struct {
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewPostCommit(m *metrics.CheckoutMetrics, logg *logger.Logger) (*PostCommit, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &PostCommit{metrics: m, logg: logg, now: time.Now}, nil
}

// Run executes tasks detached from ctx cancellation so a dropped client
// connection cannot abandon the list halfway. The combined error is
// returned for logging only.
func (p *PostCommit) Run(ctx context.Context, tasks []Task) error {
	ctx = context.WithoutCancel(ctx)
	var errs error
	for _, task := range tasks {
		started := p.now()
		err := runTask(ctx, task)
		p.metrics.ObserveTask(task.Name, p.now().Sub(started), err)
		if err != nil {
			p.logg.Error(p.logg.WithField(ctx, "task", task.Name), "checkout.post_commit.failed", err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", task.Name, err))
		}
	}
	return errs
}

func runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task.Run(ctx)
}
