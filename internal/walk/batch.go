package walk

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/philowalk/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of concurrent walks when none is set.
const DefaultConcurrency = 4

// EngineFactory creates a fresh Engine for the walk from topic. The engine
// must read its starting topic from source.
type EngineFactory func(topic string, source TopicSource) *Engine

// BatchRunner runs one independent walk per starting topic, concurrently.
type BatchRunner struct {
	engineFactory EngineFactory

	// concurrency is the maximum number of concurrent walks.
	concurrency int

	logger *slog.Logger

	// results is indexed like the topics slice.
	results []*model.WalkReport
	mu      sync.Mutex
}

// BatchOption configures a BatchRunner.
type BatchOption func(*BatchRunner)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchRunner) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent walks.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchRunner) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchRunner creates a BatchRunner. engineFactory is called once per
// topic so that no WalkState leaks between walks.
func NewBatchRunner(engineFactory EngineFactory, opts ...BatchOption) *BatchRunner {
	b := &BatchRunner{
		engineFactory: engineFactory,
		concurrency:   DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Run walks from every topic and returns the reports in topic order.
// A walk that fails does not restart: its report simply ends with a
// restarted attempt. The error is non-nil only when ctx is cancelled.
func (b *BatchRunner) Run(ctx context.Context, topics []string) ([]*model.WalkReport, error) {
	b.mu.Lock()
	b.results = make([]*model.WalkReport, len(topics))
	b.mu.Unlock()

	err := b.RunWithCallback(ctx, topics, func(report *model.WalkReport, index int) {
		b.mu.Lock()
		b.results[index] = report
		b.mu.Unlock()
	})

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.results, err
}

// RunWithCallback walks from every topic and calls callback as each walk
// finishes. callback runs on the walk's goroutine and must be safe for
// concurrent use.
func (b *BatchRunner) RunWithCallback(
	ctx context.Context,
	topics []string,
	callback func(report *model.WalkReport, index int),
) error {
	b.logger.Info("starting batch walk",
		"total_topics", len(topics),
		"concurrency", b.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, topic := range topics {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			engine := b.engineFactory(topic, NewListSource(topic))
			report, err := engine.Run(ctx)

			callback(report, i)

			switch {
			case err == nil:
				b.logger.Info("walk reached philosophy", "topic", topic, "steps", report.TotalSteps)
			case errors.Is(err, ErrNoMoreTopics):
				b.logger.Info("walk ended without reaching philosophy", "topic", topic)
			default:
				// Only cancellation ends a walk with another error.
				return err
			}
			return nil
		})
	}

	err := g.Wait()

	b.logger.Info("batch walk complete",
		"total_topics", len(topics),
		"elapsed", time.Since(startTime),
	)

	return err
}
