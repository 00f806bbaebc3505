package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"inova/internal/domain"
	"inova/internal/infra"
	"inova/internal/metrics"
)

// ImageSubmitter starts the logo job.
type ImageSubmitter interface {
	Submit(ctx context.Context, req domain.GenerationRequest) (*domain.ImageJob, error)
}

// JobWaiter follows a job until it is terminal.
type JobWaiter interface {
	Wait(ctx context.Context, job *domain.ImageJob) (*domain.ImageJob, error)
}

// TextGenerator returns the raw names/slogans/descriptions completion.
type TextGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}

// credentialed is implemented by dependencies that can tell upfront whether
// they are configured.
type credentialed interface {
	CredentialError() error
}

// Options configures a Service.
type Options struct {
	Submitter            ImageSubmitter
	Poller               JobWaiter
	Text                 TextGenerator
	Gate                 Gate
	Logger               *infra.Logger
	DefaultLocale        string
	DescriptionMaxLength int
	// Timeout bounds the whole flow. Zero disables it.
	Timeout time.Duration
}

// Service runs the generate flow: logo job and text completion side by side,
// then parse and zip into variants.
type Service struct {
	submitter     ImageSubmitter
	poller        JobWaiter
	text          TextGenerator
	gate          Gate
	logger        *infra.Logger
	defaultLocale string
	maxLength     int
	timeout       time.Duration
}

func NewService(opts Options) *Service {
	gate := opts.Gate
	if gate == nil {
		gate = NewMemoryGate()
	}
	maxLength := opts.DescriptionMaxLength
	if maxLength <= 0 {
		maxLength = domain.DefaultDescriptionMaxLength
	}
	return &Service{
		submitter:     opts.Submitter,
		poller:        opts.Poller,
		text:          opts.Text,
		gate:          gate,
		logger:        infra.LoggerOrDiscard(opts.Logger),
		defaultLocale: opts.DefaultLocale,
		maxLength:     maxLength,
		timeout:       opts.Timeout,
	}
}

// Generate produces domain.VariantCount variants for req. Validation and
// credential checks happen before any provider call. A failure in any stage
// fails the whole batch.
func (s *Service) Generate(ctx context.Context, sessionID string, req domain.GenerationRequest) (variants []domain.GeneratedVariant, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveGeneration(resultLabel(err), time.Since(start))
	}()

	req = req.Normalize(s.defaultLocale)
	if err := req.Validate(s.maxLength); err != nil {
		return nil, err
	}
	if err := s.checkCredentials(); err != nil {
		return nil, err
	}

	gctx, release, err := s.gate.Acquire(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("generation: acquire session gate: %w", err)
	}
	defer release()

	runCtx := gctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(gctx, s.timeout)
		defer cancel()
	}

	var (
		images []string
		text   string
	)
	g, gctxRun := errgroup.WithContext(runCtx)
	g.Go(func() error {
		job, err := s.submitter.Submit(gctxRun, req)
		if err != nil {
			return err
		}
		done, err := s.poller.Wait(gctxRun, job)
		if err != nil {
			return err
		}
		images = done.Outputs
		return nil
	})
	g.Go(func() error {
		out, err := s.text.Generate(gctxRun, req)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, s.contextError(gctx, runCtx, err)
	}

	sections, err := ParseTextBlock(text, domain.VariantCount)
	if err != nil {
		s.logger.Warn().Err(err).Str("session", sessionID).Msg("generation: unparseable completion")
		return nil, err
	}
	variants, err = Assemble(sections, images)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("session", sessionID).
		Int("variants", len(variants)).
		Dur("elapsed", time.Since(start)).
		Msg("generation: completed")
	return variants, nil
}

func (s *Service) checkCredentials() error {
	for _, dep := range []any{s.submitter, s.text} {
		if c, ok := dep.(credentialed); ok {
			if err := c.CredentialError(); err != nil {
				return err
			}
		}
	}
	return nil
}

// contextError turns cancellation caused by the gate or the flow deadline into
// the matching domain error.
func (s *Service) contextError(gateCtx, runCtx context.Context, err error) error {
	if errors.Is(context.Cause(gateCtx), domain.ErrSuperseded) {
		return domain.ErrSuperseded
	}
	if gateCtx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: generation exceeded %s", domain.ErrPollTimeout, s.timeout)
	}
	return err
}

func resultLabel(err error) string {
	var upstream *domain.UpstreamError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrMissingCredential):
		return "config"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.As(err, &upstream):
		return "upstream"
	case errors.Is(err, domain.ErrJobFailed):
		return "job_failed"
	case errors.Is(err, domain.ErrMalformedResponse), errors.Is(err, domain.ErrInvalidJob):
		return "malformed"
	case errors.Is(err, domain.ErrPollTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrSuperseded):
		return "superseded"
	default:
		return "error"
	}
}
