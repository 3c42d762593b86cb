package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/pagegate/internal/model"
)

// DefaultConcurrency is the number of pages admitted at once when no limit
// is configured.
const DefaultConcurrency = 8

// Admitter decides on a single page. *admission.Gate satisfies it.
type Admitter interface {
	Admit(page *model.FetchedPage) (model.Decision, error)
}

// Processor admits many pages concurrently through one Admitter.
//
// Design decision: Parallelism is bounded with errgroup.SetLimit instead
// of a fixed worker pool. Each page gets its own goroutine, but only
// 'concurrency' run at once.
// Shared state lives in the Admitter; each goroutine owns one result slot.
type Processor struct {
	admitter    Admitter
	concurrency int
	logger      *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithProcessorLogger sets a custom logger for batch processing.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithConcurrency sets the maximum number of pages admitted at once.
// Non-positive values keep the default.
func WithConcurrency(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewProcessor creates a Processor that admits pages through admitter.
func NewProcessor(admitter Admitter, opts ...ProcessorOption) *Processor {
	p := &Processor{
		admitter:    admitter,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Concurrency returns the configured parallelism.
func (p *Processor) Concurrency() int {
	return p.concurrency
}

// Process admits pages concurrently and returns their decisions in input
// order.
//
// With more than one worker, which of two near-identical pages is accepted
// depends on scheduling; exactly one of them is. An Admit error is a
// contract breach and cancels the remaining pages.
func (p *Processor) Process(ctx context.Context, pages []*model.FetchedPage) ([]model.Decision, error) {
	decisions := make([]model.Decision, len(pages))
	err := p.ProcessWithCallback(ctx, pages, func(d model.Decision, index int) {
		decisions[index] = d
	})
	return decisions, err
}

// ProcessWithCallback admits pages and calls callback for each decision as
// it is made. This is useful for streaming results.
//
// The callback runs on the goroutine that admitted the page, so it must be
// safe for concurrent use if it touches shared state.
func (p *Processor) ProcessWithCallback(
	ctx context.Context,
	pages []*model.FetchedPage,
	callback func(d model.Decision, index int),
) error {
	p.logger.Info("starting admission",
		"total_pages", len(pages),
		"concurrency", p.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, page := range pages {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			d, err := p.admitter.Admit(page)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			callback(d, i)
			return nil
		})
	}

	err := g.Wait()

	p.logger.Info("admission complete",
		"total_pages", len(pages),
		"elapsed", time.Since(startTime),
	)

	return err
}
