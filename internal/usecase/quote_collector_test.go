package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"EGXAdvisor/internal/domain/models"
)

// stubStream fails its first read session, then delivers quotes on the
// session opened after a reconnect.
type stubStream struct {
	mu         sync.Mutex
	reads      int
	reconnects int
}

func (s *stubStream) Connect(context.Context) error   { return nil }
func (s *stubStream) Subscribe(context.Context) error { return nil }
func (s *stubStream) Close() error                    { return nil }
func (s *stubStream) IsConnected() bool               { return true }

func (s *stubStream) Reconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	return nil
}

func (s *stubStream) Read(context.Context) (<-chan *models.Quote, <-chan error) {
	s.mu.Lock()
	s.reads++
	session := s.reads
	s.mu.Unlock()

	quotes := make(chan *models.Quote, 1)
	errs := make(chan error, 1)
	if session == 1 {
		errs <- context.DeadlineExceeded
		close(quotes)
		close(errs)
		return quotes, errs
	}
	quotes <- &models.Quote{Symbol: "COMI", Timestamp: time.Now().Unix(), Price: 31.5, Volume: 100}
	return quotes, errs
}

func (s *stubStream) reconnectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnects
}

// captureStorage hands stored quotes back to the test.
type captureStorage struct {
	got chan *models.Quote
}

func (c *captureStorage) Store(_ context.Context, q *models.Quote) error {
	c.got <- q
	return nil
}

func (c *captureStorage) StoreBatch(_ context.Context, quotes []*models.Quote) error {
	for _, q := range quotes {
		c.got <- q
	}
	return nil
}

func (c *captureStorage) Health(context.Context) error { return nil }
func (c *captureStorage) Close() error                 { return nil }

type noopMetrics struct{}

func (noopMetrics) RecordRecommendation(string, string) {}
func (noopMetrics) RecordMessageSent(string, string)    {}
func (noopMetrics) RecordError(string)                  {}
func (noopMetrics) RecordLastPrice(string, float64)     {}
func (noopMetrics) RecordLatency(string, float64)       {}

func TestCollectorReacquiresStreamAfterError(t *testing.T) {
	stream := &stubStream{}
	store := &captureStorage{got: make(chan *models.Quote, 4)}
	proc := NewQuoteProcessor(nil, store, noopMetrics{}, "clickhouse", 0, 0)
	c := NewQuoteCollector(stream, proc, noopMetrics{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case q := <-store.got:
		if q.Symbol != "COMI" {
			t.Fatalf("unexpected symbol %q", q.Symbol)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no quote stored after stream error; reconnects=%d", stream.reconnectCount())
	}
	if stream.reconnectCount() == 0 {
		t.Fatalf("collector never reconnected")
	}
}
