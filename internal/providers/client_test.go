package providers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/men16922/brandy-serverless-sub000/internal/providers"
)

const testKeyEnv = "TEST_PROVIDER_API_KEY"

func testConfig(endpoint string) *providers.Config {
	return &providers.Config{
		Enabled:         true,
		Endpoint:        endpoint,
		APIKeyEnv:       testKeyEnv,
		AuthHeader:      "Authorization",
		Timeout:         "2s",
		MaxAttempts:     3,
		BackoffBase:     "1ms",
		MaxPromptLength: 500,
	}
}

func testClient(t *testing.T, endpoint string) providers.Client {
	t.Helper()
	t.Setenv(testKeyEnv, "test-key")

	client, err := providers.New("test", testConfig(endpoint), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewMissingCredentials(t *testing.T) {
	t.Setenv(testKeyEnv, "")

	_, err := providers.New("test", testConfig("http://localhost"), slog.New(slog.DiscardHandler))
	if !errors.Is(err, providers.ErrMissingCredentials) {
		t.Fatalf("New() error = %v, want ErrMissingCredentials", err)
	}
}

func TestGenerateSuccess(t *testing.T) {
	var auth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`{"image_url":"https://img.example.com/a.png","revised_prompt":"revised"}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	result, err := client.Generate(context.Background(), providers.PromptSpec{Prompt: "signboard"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.URL != "https://img.example.com/a.png" {
		t.Errorf("URL = %q", result.URL)
	}
	if result.RevisedPrompt != "revised" {
		t.Errorf("RevisedPrompt = %q", result.RevisedPrompt)
	}
	if got := auth.Load(); got != "Bearer test-key" {
		t.Errorf("Authorization = %q, want bearer token", got)
	}
}

func TestGenerateRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"image_url":"https://img.example.com/b.png"}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	result, err := client.Generate(context.Background(), providers.PromptSpec{Prompt: "signboard"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.URL == "" {
		t.Error("expected image url after retry")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestGenerateInvalidPromptNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"content policy violation"}`)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.Generate(context.Background(), providers.PromptSpec{Prompt: "signboard"})

	var perr *providers.Error
	if !errors.As(err, &perr) {
		t.Fatalf("Generate() error = %v, want *providers.Error", err)
	}
	if perr.Kind != providers.KindInvalidPrompt {
		t.Errorf("Kind = %s, want %s", perr.Kind, providers.KindInvalidPrompt)
	}
	if perr.Retryable() {
		t.Error("invalid prompt must not be retryable")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", got)
	}
}

func TestGenerateServerErrorExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.Generate(context.Background(), providers.PromptSpec{Prompt: "signboard"})

	var perr *providers.Error
	if !errors.As(err, &perr) {
		t.Fatalf("Generate() error = %v, want *providers.Error", err)
	}
	if perr.Kind != providers.KindServerError {
		t.Errorf("Kind = %s, want %s", perr.Kind, providers.KindServerError)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want MaxAttempts", got)
	}
}

func TestGenerateTimeoutClassification(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	t.Setenv(testKeyEnv, "test-key")
	cfg := testConfig(server.URL)
	cfg.Timeout = "50ms"
	cfg.MaxAttempts = 1

	client, err := providers.New("test", cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	start := time.Now()
	_, err = client.Generate(context.Background(), providers.PromptSpec{Prompt: "signboard"})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("timeout not enforced, took %s", elapsed)
	}

	var perr *providers.Error
	if !errors.As(err, &perr) {
		t.Fatalf("Generate() error = %v, want *providers.Error", err)
	}
	if perr.Kind != providers.KindTimeout {
		t.Errorf("Kind = %s, want %s", perr.Kind, providers.KindTimeout)
	}
}

func TestGenerateNetworkError(t *testing.T) {
	t.Setenv(testKeyEnv, "test-key")
	cfg := testConfig("http://127.0.0.1:1")
	cfg.MaxAttempts = 1

	client, err := providers.New("test", cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = client.Generate(context.Background(), providers.PromptSpec{Prompt: "signboard"})

	var perr *providers.Error
	if !errors.As(err, &perr) {
		t.Fatalf("Generate() error = %v, want *providers.Error", err)
	}
	if perr.Kind != providers.KindNetworkError {
		t.Errorf("Kind = %s, want %s", perr.Kind, providers.KindNetworkError)
	}
}
