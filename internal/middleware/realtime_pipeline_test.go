package middleware

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"EGXAdvisor/internal/domain/models"
)

type countingProc struct {
	mu    sync.Mutex
	count int
}

func (p *countingProc) Process(context.Context, *models.Quote) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return nil
}

func (p *countingProc) total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

type noopMetrics struct{}

func (noopMetrics) RecordRecommendation(string, string) {}
func (noopMetrics) RecordMessageSent(string, string)    {}
func (noopMetrics) RecordError(string)                  {}
func (noopMetrics) RecordLastPrice(string, float64)     {}
func (noopMetrics) RecordLatency(string, float64)       {}

func quote(symbol string) *models.Quote {
	return &models.Quote{Symbol: symbol, Timestamp: time.Now().Unix(), Price: 10, Volume: 100}
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	proc := &countingProc{}
	p := NewRealtimePipeline(proc, noopMetrics{}, WithMaxRPS(1))
	ctx := context.Background()

	if err := p.Process(ctx, quote("COMI")); err != nil {
		t.Fatalf("first quote: %v", err)
	}
	// immediate repeat on the same symbol is dropped without error
	if err := p.Process(ctx, quote("COMI")); err != nil {
		t.Fatalf("throttled quote returned error: %v", err)
	}
	if got := proc.total(); got != 1 {
		t.Fatalf("expected 1 forwarded quote, got %d", got)
	}
	// a different symbol has its own budget
	if err := p.Process(ctx, quote("HRHO")); err != nil {
		t.Fatalf("other symbol: %v", err)
	}
	if got := proc.total(); got != 2 {
		t.Fatalf("expected 2 forwarded quotes, got %d", got)
	}
}

func TestPipelineConcurrentProcess(t *testing.T) {
	proc := &countingProc{}
	p := NewRealtimePipeline(proc, noopMetrics{}, WithMaxRPS(1000))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := p.Process(ctx, quote(fmt.Sprintf("SYM%d", i))); err != nil {
				t.Errorf("process SYM%d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if got := proc.total(); got != 8 {
		t.Fatalf("expected 8 forwarded quotes, got %d", got)
	}
}
