package usecase

import (
	"context"
	"fmt"
	"time"

	"EGXAdvisor/pkg/logger"
	"EGXAdvisor/pkg/queue"
)

// ScanRequest is the queue payload for a universe scan: run the advisor
// across a list of symbols in the background.
type ScanRequest struct {
	Symbols []string `json:"symbols"`
	N       int      `json:"n"`
	Refresh bool     `json:"refresh"`
}

// UniverseScanJob runs the advisor over a symbol universe off the request
// path. Results land in the cache and the journal the same way foreground
// requests do.
type UniverseScanJob struct {
	advisor *Advisor
	logger  *logger.Logger
}

func NewUniverseScanJob(advisor *Advisor, lgr *logger.Logger) *UniverseScanJob {
	return &UniverseScanJob{advisor: advisor, logger: lgr}
}

func (j *UniverseScanJob) Name() string { return "universe_scan" }

func (j *UniverseScanJob) Type() string { return "advisor.scan" }

func (j *UniverseScanJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[ScanRequest](payload)
	if err != nil {
		return fmt.Errorf("parse scan payload: %w", err)
	}
	if len(req.Symbols) == 0 {
		return fmt.Errorf("scan: no symbols")
	}

	start := time.Now()
	var failed int
	for _, sym := range req.Symbols {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := j.advisor.Recommend(ctx, sym, req.N, req.Refresh); err != nil {
			failed++
			if j.logger != nil {
				j.logger.Warn("scan symbol failed",
					logger.String("symbol", sym),
					logger.Error(err),
				)
			}
		}
	}

	if j.logger != nil {
		j.logger.Info("universe scan done",
			logger.Int("symbols", len(req.Symbols)),
			logger.Int("failed", failed),
			logger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

var _ queue.Job = (*UniverseScanJob)(nil)
