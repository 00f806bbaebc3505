package imagegen

import (
	"context"
	"fmt"
	"time"

	"inova/internal/domain"
	"inova/internal/infra"
	"inova/internal/metrics"
	"inova/internal/providers/replicate"
)

const (
	DefaultPollInterval    = time.Second
	DefaultPollMaxAttempts = 300
)

// PredictionFetcher reads prediction snapshots.
type PredictionFetcher interface {
	GetPrediction(ctx context.Context, id string) (*replicate.Prediction, error)
}

// PollerOptions configures a Poller. Zero values fall back to the defaults.
type PollerOptions struct {
	Interval    time.Duration
	MaxAttempts int
	Logger      *infra.Logger
}

// Poller waits for an image job to reach a terminal state.
type Poller struct {
	api         PredictionFetcher
	interval    time.Duration
	maxAttempts int
	logger      *infra.Logger
}

func NewPoller(api PredictionFetcher, opts PollerOptions) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultPollMaxAttempts
	}
	return &Poller{
		api:         api,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      infra.LoggerOrDiscard(opts.Logger),
	}
}

// Wait fetches the job once per interval until it succeeds or fails. The
// snapshot passed in counts as the first observation, so a job created as
// pending and finished on the next fetch costs exactly one GET.
//
// Transport and provider errors end the wait immediately. A cancelled ctx
// returns ctx.Err().
func (p *Poller) Wait(ctx context.Context, job *domain.ImageJob) (*domain.ImageJob, error) {
	if job == nil || job.ID == "" {
		return nil, fmt.Errorf("%w: missing id", domain.ErrInvalidJob)
	}
	if job.Status == "" {
		return nil, fmt.Errorf("%w: missing status for %s", domain.ErrInvalidJob, job.ID)
	}

	current := job
	fetches := 0
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		switch current.Status {
		case domain.JobStatusSucceeded:
			metrics.ObservePollAttempts(fetches + 1)
			return current, nil
		case domain.JobStatusFailed:
			metrics.ObservePollAttempts(fetches + 1)
			if current.Error != "" {
				return nil, fmt.Errorf("%w: %s: %s", domain.ErrJobFailed, current.ID, current.Error)
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrJobFailed, current.ID)
		}
		if fetches >= p.maxAttempts {
			return nil, fmt.Errorf("%w: %s still %s after %d fetches", domain.ErrPollTimeout, current.ID, current.Status, fetches)
		}

		if fetches > 0 {
			timer.Reset(p.interval)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		prediction, err := p.api.GetPrediction(ctx, current.ID)
		fetches++
		if err != nil {
			return nil, err
		}
		next, err := prediction.Job()
		if err != nil {
			return nil, fmt.Errorf("imagegen: poll: %w", err)
		}
		p.logger.Debug().
			Str("job_id", next.ID).
			Str("status", string(next.Status)).
			Int("fetch", fetches).
			Msg("imagegen: job status")
		current = next
	}
}
