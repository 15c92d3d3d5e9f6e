package usecase

import (
	"context"

	"EGXAdvisor/internal/domain/models"
	drepo "EGXAdvisor/internal/domain/repository"
	mid "EGXAdvisor/internal/middleware"
)

// QuoteCollector consumes the market stream and feeds the ingest pipeline.
type QuoteCollector struct {
	stream  drepo.MarketStream
	proc    *QuoteProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
}

// NewQuoteCollector creates a new QuoteCollector instance.
func NewQuoteCollector(stream drepo.MarketStream, proc *QuoteProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline) *QuoteCollector {
	return &QuoteCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the market stream is connected.
func (c *QuoteCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	go c.consume(ctx)
	return nil
}

// consume pumps stream quotes into the pipeline. The stream's read loop
// closes both channels on failure, so after reconnecting the collector
// must reacquire fresh ones instead of selecting on the closed pair.
func (c *QuoteCollector) consume(ctx context.Context) {
	qCh, errCh := c.stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok || err != nil {
				c.metrics.RecordError("stream")
				qCh, errCh = c.reacquire(ctx)
			}
		case q, ok := <-qCh:
			if !ok {
				c.metrics.RecordError("stream")
				qCh, errCh = c.reacquire(ctx)
				continue
			}
			if q == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, q)
			} else {
				_ = c.proc.Process(ctx, q)
			}
			c.metrics.RecordLastPrice(q.Symbol, q.Price)
		}
	}
}

// reacquire reconnects and restarts the stream's read loop. A failed
// reconnect still returns channels; the stream reports the failure on
// them and the next pass retries after its reconnect delay.
func (c *QuoteCollector) reacquire(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	if err := c.stream.Reconnect(ctx); err != nil {
		c.metrics.RecordError("reconnect")
	}
	return c.stream.Read(ctx)
}

func (c *QuoteCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying QuoteProcessor for lifecycle management.
func (c *QuoteCollector) Processor() *QuoteProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *QuoteCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
