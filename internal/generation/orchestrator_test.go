package generation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/men16922/brandy-serverless-sub000/internal/generation"
	"github.com/men16922/brandy-serverless-sub000/internal/providers"
	"github.com/men16922/brandy-serverless-sub000/internal/sessions"
	"github.com/men16922/brandy-serverless-sub000/pkg/lifecycle"
	"github.com/men16922/brandy-serverless-sub000/pkg/storage"
)

type fakeClient struct {
	name string
	fn   func(ctx context.Context, spec providers.PromptSpec) (*providers.Result, error)
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) Generate(ctx context.Context, spec providers.PromptSpec) (*providers.Result, error) {
	return f.fn(ctx, spec)
}

type fakeBlobs struct {
	mu       sync.Mutex
	objects  map[string][]byte
	metadata map[string]map[string]string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{
		objects:  make(map[string][]byte),
		metadata: make(map[string]map[string]string),
	}
}

func (f *fakeBlobs) Start(lc *lifecycle.Coordinator) error { return nil }

func (f *fakeBlobs) Upload(ctx context.Context, key string, reader io.Reader, contentType string, metadata map[string]string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.metadata[key] = metadata
	return nil
}

func (f *fakeBlobs) Download(ctx context.Context, key string) (*storage.DownloadResult, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeBlobs) Delete(ctx context.Context, key string) error { return nil }

func (f *fakeBlobs) DeletePrefix(ctx context.Context, prefix string) (int, error) { return 0, nil }

func (f *fakeBlobs) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeBlobs) List(ctx context.Context, prefix string, max int32) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (f *fakeBlobs) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://blobs.example.com/" + key + "?sig=test", nil
}

func (f *fakeBlobs) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys
}

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	t.Cleanup(server.Close)
	return server
}

func testTask() generation.Task {
	return generation.Task{
		SessionID: "sess-1",
		Step:      sessions.StepSignboard,
		Profile: sessions.BusinessProfile{
			Industry: "restaurant",
			Region:   "seoul",
			Size:     "small",
		},
		BusinessName: "Pasta Lane",
		Styles:       []string{"modern", "classic", "vibrant"},
	}
}

func newOrchestrator(clients []providers.Client, blobs *fakeBlobs, timeout time.Duration) *generation.Orchestrator {
	logger := slog.New(slog.DiscardHandler)
	persister := generation.NewPersister(blobs, 16*1024*1024, time.Hour, logger)
	return generation.NewOrchestrator(clients, persister, timeout, logger)
}

func TestGenerateFillsSlotsInStyleOrder(t *testing.T) {
	server := imageServer(t)
	blobs := newFakeBlobs()

	client := &fakeClient{name: "dalle", fn: func(ctx context.Context, spec providers.PromptSpec) (*providers.Result, error) {
		return &providers.Result{URL: server.URL + "/" + spec.Style, RevisedPrompt: "r-" + spec.Style}, nil
	}}

	o := newOrchestrator([]providers.Client{client}, blobs, 5*time.Second)
	outcome := o.Generate(context.Background(), testTask())

	if len(outcome.Variants) != 3 {
		t.Fatalf("len(Variants) = %d, want 3", len(outcome.Variants))
	}
	if outcome.Generated != 3 {
		t.Errorf("Generated = %d, want 3", outcome.Generated)
	}

	for i, style := range []string{"modern", "classic", "vibrant"} {
		v := outcome.Variants[i]
		if v.Style != style {
			t.Errorf("Variants[%d].Style = %q, want %q", i, v.Style, style)
		}
		if v.IsFallback {
			t.Errorf("Variants[%d] unexpectedly a fallback", i)
		}
		if !v.Durable {
			t.Errorf("Variants[%d] not durable", i)
		}
		if !strings.Contains(v.URL, "sig=") {
			t.Errorf("Variants[%d].URL not a stored copy: %q", i, v.URL)
		}
	}

	if got := len(blobs.keys()); got != 3 {
		t.Errorf("stored blobs = %d, want 3", got)
	}
	for _, key := range blobs.keys() {
		if !strings.HasPrefix(key, "signboards/sess-1/") {
			t.Errorf("blob key outside session namespace: %q", key)
		}
	}
}

func TestGenerateSubstitutesFallbackPerStyle(t *testing.T) {
	server := imageServer(t)
	blobs := newFakeBlobs()

	client := &fakeClient{name: "dalle", fn: func(ctx context.Context, spec providers.PromptSpec) (*providers.Result, error) {
		if spec.Style == "classic" {
			return nil, &providers.Error{Provider: "dalle", Kind: providers.KindInvalidPrompt}
		}
		return &providers.Result{URL: server.URL + "/" + spec.Style}, nil
	}}

	o := newOrchestrator([]providers.Client{client}, blobs, 5*time.Second)
	outcome := o.Generate(context.Background(), testTask())

	if outcome.Generated != 2 {
		t.Errorf("Generated = %d, want 2", outcome.Generated)
	}
	if !outcome.Variants[1].IsFallback {
		t.Error("classic slot should hold a fallback")
	}
	if outcome.Variants[1].Style != "classic" {
		t.Errorf("fallback Style = %q, want classic", outcome.Variants[1].Style)
	}
	if outcome.Variants[0].IsFallback || outcome.Variants[2].IsFallback {
		t.Error("healthy slots should not be fallbacks")
	}
}

func TestGenerateNoClientsAllFallback(t *testing.T) {
	o := newOrchestrator(nil, newFakeBlobs(), 5*time.Second)
	outcome := o.Generate(context.Background(), testTask())

	if len(outcome.Variants) != 3 {
		t.Fatalf("len(Variants) = %d, want 3", len(outcome.Variants))
	}
	if outcome.Generated != 0 {
		t.Errorf("Generated = %d, want 0", outcome.Generated)
	}
	for i, v := range outcome.Variants {
		if !v.IsFallback {
			t.Errorf("Variants[%d] should be a fallback", i)
		}
		if v.URL == "" {
			t.Errorf("Variants[%d] fallback missing URL", i)
		}
	}
}

func TestGenerateDeadlineAbandonsSlowSlots(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	client := &fakeClient{name: "slow", fn: func(ctx context.Context, spec providers.PromptSpec) (*providers.Result, error) {
		<-release
		return nil, errors.New("never reached in time")
	}}

	o := newOrchestrator([]providers.Client{client}, newFakeBlobs(), 50*time.Millisecond)

	start := time.Now()
	outcome := o.Generate(context.Background(), testTask())
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Fatalf("deadline not honored, took %s", elapsed)
	}
	if len(outcome.Variants) != 3 {
		t.Fatalf("len(Variants) = %d, want 3", len(outcome.Variants))
	}
	for i, v := range outcome.Variants {
		if !v.IsFallback {
			t.Errorf("Variants[%d] should be a fallback after deadline", i)
		}
	}
}

func TestPersistDegradesToTransientURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := generation.NewPersister(newFakeBlobs(), 1024, time.Hour, slog.New(slog.DiscardHandler))

	url, durable := p.Persist(context.Background(), "signboards", "sess-1", "modern", "dalle", server.URL+"/img.png")
	if durable {
		t.Error("failed copy must not be marked durable")
	}
	if url != server.URL+"/img.png" {
		t.Errorf("degraded URL = %q, want original transient URL", url)
	}
}

func TestPersistStoresCopy(t *testing.T) {
	server := imageServer(t)
	blobs := newFakeBlobs()

	p := generation.NewPersister(blobs, 1024, time.Hour, slog.New(slog.DiscardHandler))

	url, durable := p.Persist(context.Background(), "interiors", "sess-9", "minimal", "sdxl", server.URL+"/img.png")
	if !durable {
		t.Fatal("successful copy should be durable")
	}
	if !strings.HasPrefix(url, "https://blobs.example.com/interiors/sess-9/minimal_") {
		t.Errorf("stored URL = %q", url)
	}

	keys := blobs.keys()
	if len(keys) != 1 {
		t.Fatalf("stored blobs = %d, want 1", len(keys))
	}

	meta := blobs.metadata[keys[0]]
	want := map[string]string{
		"session":  "sess-9",
		"style":    "minimal",
		"provider": "sdxl",
		"source":   server.URL + "/img.png",
	}
	for k, v := range want {
		if meta[k] != v {
			t.Errorf("metadata[%q] = %q, want %q", k, meta[k], v)
		}
	}
}
