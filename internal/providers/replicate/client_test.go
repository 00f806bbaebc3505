package replicate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"inova/internal/domain"
)

func TestCreatePrediction(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predictions" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Token r8-test" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		var payload createRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if payload.Version != "v1" {
			t.Fatalf("version = %q, want %q", payload.Version, "v1")
		}
		if payload.Input.Prompt != "a logo" || payload.Input.NumOutputs != 4 || payload.Input.Width != 512 {
			t.Fatalf("unexpected input: %+v", payload.Input)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"abc123","status":"starting","output":null}`))
	}))
	defer ts.Close()

	client := NewClient(Options{APIToken: "r8-test", BaseURL: ts.URL, ModelVersion: "v1"})
	got, err := client.CreatePrediction(context.Background(), Input{Prompt: "a logo", Width: 512, Height: 512, NumOutputs: 4})
	if err != nil {
		t.Fatalf("CreatePrediction error: %v", err)
	}
	if got.ID != "abc123" || got.Status != "starting" {
		t.Fatalf("unexpected prediction: %+v", got)
	}
	if len(got.Raw) == 0 {
		t.Fatalf("expected raw payload to be kept")
	}
	job, err := got.Job()
	if err != nil {
		t.Fatalf("Job error: %v", err)
	}
	if job.Status != domain.JobStatusPending {
		t.Fatalf("job status = %q, want %q", job.Status, domain.JobStatusPending)
	}
}

func TestCreatePredictionMissingToken(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	client := NewClient(Options{BaseURL: ts.URL, ModelVersion: "v1"})
	_, err := client.CreatePrediction(context.Background(), Input{Prompt: "a logo"})
	if !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
	if _, err := client.GetPrediction(context.Background(), "abc"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("expected zero network calls, got %d", n)
	}
}

func TestCreatePredictionPassesThroughProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"invalid version"}`))
	}))
	defer ts.Close()

	client := NewClient(Options{APIToken: "r8-test", BaseURL: ts.URL, ModelVersion: "v1"})
	_, err := client.CreatePrediction(context.Background(), Input{Prompt: "a logo"})
	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if upstream.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", upstream.StatusCode, http.StatusUnprocessableEntity)
	}
	if string(upstream.Body) != `{"detail":"invalid version"}` {
		t.Fatalf("body = %s", upstream.Body)
	}
}

func TestCreatePredictionRejectsNonCreatedSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"abc","status":"starting"}`))
	}))
	defer ts.Close()

	client := NewClient(Options{APIToken: "r8-test", BaseURL: ts.URL, ModelVersion: "v1"})
	_, err := client.CreatePrediction(context.Background(), Input{Prompt: "a logo"})
	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) || upstream.StatusCode != http.StatusOK {
		t.Fatalf("err = %v, want UpstreamError with status 200", err)
	}
}

func TestGetPrediction(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/predictions/abc123" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"abc123","status":"succeeded","output":["u1","u2","u3","u4"]}`))
	}))
	defer ts.Close()

	client := NewClient(Options{APIToken: "r8-test", BaseURL: ts.URL, ModelVersion: "v1"})
	got, err := client.GetPrediction(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("GetPrediction error: %v", err)
	}
	job, err := got.Job()
	if err != nil {
		t.Fatalf("Job error: %v", err)
	}
	if job.Status != domain.JobStatusSucceeded || len(job.Outputs) != 4 || job.Outputs[3] != "u4" {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestGetPredictionRejectsMissingID(t *testing.T) {
	client := NewClient(Options{APIToken: "r8-test", BaseURL: "http://127.0.0.1:0", ModelVersion: "v1"})
	for _, id := range []string{"", "  ", "undefined"} {
		if _, err := client.GetPrediction(context.Background(), id); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("GetPrediction(%q) err = %v, want ErrInvalidInput", id, err)
		}
	}
}

func TestPredictionJobValidation(t *testing.T) {
	cases := []struct {
		name string
		in   Prediction
	}{
		{name: "missing id", in: Prediction{Status: "starting"}},
		{name: "missing status", in: Prediction{ID: "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.in.Job(); !errors.Is(err, domain.ErrInvalidJob) {
				t.Fatalf("err = %v, want ErrInvalidJob", err)
			}
		})
	}
}
