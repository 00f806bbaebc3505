package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"inova/internal/domain"
	"inova/internal/imagegen"
	"inova/internal/providers/completion"
	"inova/internal/providers/replicate"
)

// providerStub serves both provider APIs and counts the calls it receives.
type providerStub struct {
	creates     int32
	gets        int32
	completions int32

	createStatus int
	createBody   string
	getBodies    []string
	textStatus   int
	textBody     string

	mu sync.Mutex
}

func newProviderStub() *providerStub {
	return &providerStub{
		createStatus: http.StatusCreated,
		createBody:   `{"id":"pred-1","status":"starting"}`,
		getBodies:    []string{`{"id":"pred-1","status":"succeeded","output":["img-1","img-2","img-3","img-4"]}`},
		textStatus:   http.StatusOK,
	}
}

func (s *providerStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/replicate/predictions":
		atomic.AddInt32(&s.creates, 1)
		w.WriteHeader(s.createStatus)
		_, _ = w.Write([]byte(s.createBody))
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/replicate/predictions/"):
		atomic.AddInt32(&s.gets, 1)
		s.mu.Lock()
		body := `{"id":"pred-1","status":"processing"}`
		if len(s.getBodies) > 0 {
			body = s.getBodies[0]
			s.getBodies = s.getBodies[1:]
		}
		s.mu.Unlock()
		_, _ = w.Write([]byte(body))
	case r.Method == http.MethodPost && r.URL.Path == "/openai/completions":
		atomic.AddInt32(&s.completions, 1)
		if s.textStatus != http.StatusOK {
			w.WriteHeader(s.textStatus)
			_, _ = w.Write([]byte(s.textBody))
			return
		}
		text := s.textBody
		if text == "" {
			text = padariaCompletion
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []map[string]any{{"text": text}}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type serviceDeps struct {
	replicateToken string
	openAIKey      string
	gate           Gate
	timeout        time.Duration
}

func newTestService(t *testing.T, stub *providerStub, deps serviceDeps) *Service {
	t.Helper()
	ts := httptest.NewServer(stub)
	t.Cleanup(ts.Close)

	images := replicate.NewClient(replicate.Options{APIToken: deps.replicateToken, BaseURL: ts.URL + "/replicate", ModelVersion: "v1"})
	text := completion.NewClient(completion.Options{APIKey: deps.openAIKey, BaseURL: ts.URL + "/openai"})
	return NewService(Options{
		Submitter:     imagegen.NewSubmitter(images, nil),
		Poller:        imagegen.NewPoller(images, imagegen.PollerOptions{Interval: time.Millisecond, MaxAttempts: 20}),
		Text:          text,
		Gate:          deps.gate,
		DefaultLocale: "pt",
		Timeout:       deps.timeout,
	})
}

func configured() serviceDeps {
	return serviceDeps{replicateToken: "r8-test", openAIKey: "sk-test"}
}

func TestGeneratePadariaArtesanal(t *testing.T) {
	stub := newProviderStub()
	svc := newTestService(t, stub, configured())

	variants, err := svc.Generate(context.Background(), "s1", domain.GenerationRequest{Description: "padaria artesanal"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(variants) != 4 {
		t.Fatalf("variants = %d, want 4", len(variants))
	}
	if got := atomic.LoadInt32(&stub.creates); got != 1 {
		t.Fatalf("create calls = %d, want 1", got)
	}
	// the create response carries the first status, the GET the second
	if got := atomic.LoadInt32(&stub.gets); got != 1 {
		t.Fatalf("status GETs = %d, want 1", got)
	}
	if got := atomic.LoadInt32(&stub.completions); got != 1 {
		t.Fatalf("completion calls = %d, want 1", got)
	}
	want := domain.GeneratedVariant{Title: "Pão Nobre", Slogan: "O sabor que acorda a cidade", Description: "Padaria de fermentação natural.", ImageURL: "img-1"}
	if variants[0] != want {
		t.Fatalf("variants[0] = %+v, want %+v", variants[0], want)
	}
	if variants[3].Title != "Trigo & Cia" || variants[3].ImageURL != "img-4" {
		t.Fatalf("variants[3] = %+v", variants[3])
	}
}

func TestGenerateRejectsBlankDescriptionWithoutCalls(t *testing.T) {
	for _, desc := range []string{"", "   \t\n"} {
		stub := newProviderStub()
		svc := newTestService(t, stub, configured())
		_, err := svc.Generate(context.Background(), "s1", domain.GenerationRequest{Description: desc})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
		if n := atomic.LoadInt32(&stub.creates) + atomic.LoadInt32(&stub.gets) + atomic.LoadInt32(&stub.completions); n != 0 {
			t.Fatalf("provider calls = %d, want 0", n)
		}
	}
}

func TestGenerateRejectsTooLongDescription(t *testing.T) {
	stub := newProviderStub()
	svc := newTestService(t, stub, configured())
	_, err := svc.Generate(context.Background(), "s1", domain.GenerationRequest{Description: strings.Repeat("a", 71)})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGenerateMissingCredentialMakesNoCalls(t *testing.T) {
	cases := map[string]serviceDeps{
		"replicate": {openAIKey: "sk-test"},
		"openai":    {replicateToken: "r8-test"},
	}
	for name, deps := range cases {
		t.Run(name, func(t *testing.T) {
			stub := newProviderStub()
			svc := newTestService(t, stub, deps)
			_, err := svc.Generate(context.Background(), "s1", domain.GenerationRequest{Description: "padaria"})
			if !errors.Is(err, domain.ErrMissingCredential) {
				t.Fatalf("err = %v, want ErrMissingCredential", err)
			}
			if n := atomic.LoadInt32(&stub.creates) + atomic.LoadInt32(&stub.completions); n != 0 {
				t.Fatalf("provider calls = %d, want 0", n)
			}
		})
	}
}

func TestGenerateFailedJobAbortsBatch(t *testing.T) {
	stub := newProviderStub()
	stub.getBodies = []string{`{"id":"pred-1","status":"failed","error":"boom"}`}
	svc := newTestService(t, stub, configured())
	variants, err := svc.Generate(context.Background(), "s1", domain.GenerationRequest{Description: "padaria"})
	if !errors.Is(err, domain.ErrJobFailed) {
		t.Fatalf("err = %v, want ErrJobFailed", err)
	}
	if variants != nil {
		t.Fatalf("expected no partial results, got %+v", variants)
	}
}

func TestGeneratePassesThroughUpstreamError(t *testing.T) {
	stub := newProviderStub()
	stub.createStatus = http.StatusPaymentRequired
	stub.createBody = `{"detail":"billing required"}`
	svc := newTestService(t, stub, configured())
	_, err := svc.Generate(context.Background(), "s1", domain.GenerationRequest{Description: "padaria"})
	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if upstream.StatusCode != http.StatusPaymentRequired || string(upstream.Body) != `{"detail":"billing required"}` {
		t.Fatalf("unexpected upstream error: %d %s", upstream.StatusCode, upstream.Body)
	}
}

func TestGenerateMalformedCompletion(t *testing.T) {
	stub := newProviderStub()
	stub.textBody = "Nomes:\n1. A\n2. B\n\nSlogans:\n1. a"
	svc := newTestService(t, stub, configured())
	_, err := svc.Generate(context.Background(), "s1", domain.GenerationRequest{Description: "padaria"})
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestGenerateImageCountMismatch(t *testing.T) {
	stub := newProviderStub()
	stub.getBodies = []string{`{"id":"pred-1","status":"succeeded","output":["img-1","img-2"]}`}
	svc := newTestService(t, stub, configured())
	_, err := svc.Generate(context.Background(), "s1", domain.GenerationRequest{Description: "padaria"})
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestGenerateDeadline(t *testing.T) {
	stub := newProviderStub()
	stub.getBodies = nil
	deps := configured()
	deps.timeout = 30 * time.Millisecond
	svc := newTestService(t, stub, deps)
	svc.poller = imagegen.NewPoller(replicate.NewClient(replicate.Options{}), imagegen.PollerOptions{Interval: time.Hour})
	_, err := svc.Generate(context.Background(), "s1", domain.GenerationRequest{Description: "padaria"})
	if !errors.Is(err, domain.ErrPollTimeout) {
		t.Fatalf("err = %v, want ErrPollTimeout", err)
	}
}

// blockingWaiter parks until its context ends.
type blockingWaiter struct {
	started chan struct{}
}

func (b *blockingWaiter) Wait(ctx context.Context, job *domain.ImageJob) (*domain.ImageJob, error) {
	close(b.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestGenerateSupersededBySameSession(t *testing.T) {
	stub := newProviderStub()
	gate := NewMemoryGate()
	deps := configured()
	deps.gate = gate
	svc := newTestService(t, stub, deps)
	waiter := &blockingWaiter{started: make(chan struct{})}
	first := *svc
	first.poller = waiter

	errc := make(chan error, 1)
	go func() {
		_, err := first.Generate(context.Background(), "same-session", domain.GenerationRequest{Description: "padaria"})
		errc <- err
	}()
	<-waiter.started

	variants, err := svc.Generate(context.Background(), "same-session", domain.GenerationRequest{Description: "padaria artesanal"})
	if err != nil {
		t.Fatalf("second Generate returned error: %v", err)
	}
	if len(variants) != 4 {
		t.Fatalf("variants = %d, want 4", len(variants))
	}
	select {
	case err := <-errc:
		if !errors.Is(err, domain.ErrSuperseded) {
			t.Fatalf("first err = %v, want ErrSuperseded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first generation was not cancelled")
	}
	if gate.InFlight() != 0 {
		t.Fatalf("in-flight sessions = %d, want 0", gate.InFlight())
	}
}
