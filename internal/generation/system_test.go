package generation_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/men16922/brandy-serverless-sub000/internal/generation"
	"github.com/men16922/brandy-serverless-sub000/internal/providers"
	"github.com/men16922/brandy-serverless-sub000/internal/sessions"
	"github.com/men16922/brandy-serverless-sub000/pkg/kvstore"
)

func testSystem(t *testing.T) (generation.System, sessions.System) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	store, err := kvstore.New(&kvstore.Config{Kind: kvstore.KindMemory}, logger)
	if err != nil {
		t.Fatalf("kvstore.New() error = %v", err)
	}

	blobs := newFakeBlobs()
	sess := sessions.New(store, blobs, time.Hour, time.Hour, logger)

	cfg := &generation.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("config Finalize() error = %v", err)
	}
	cfg.GlobalTimeout = "2s"

	// no providers enabled: every run degrades to fallbacks
	sys := generation.New(cfg, map[string]*providers.Config{}, sess, blobs, time.Hour, logger)
	return sys, sess
}

// seed walks a session to the signboard step.
func seed(t *testing.T, sess sessions.System) string {
	t.Helper()
	ctx := context.Background()

	s, err := sess.Create(ctx, sessions.BusinessProfile{
		Industry: "restaurant", Region: "seoul", Size: "small",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := sess.CommitAnalysis(ctx, s.ID, sessions.AnalysisResult{
		Summary: "ok", Score: 80, Insights: []string{"x"},
	}, sessions.AgentLog{Agent: "analysis", Tool: "analyze", Status: sessions.LogSuccess}); err != nil {
		t.Fatalf("CommitAnalysis() error = %v", err)
	}

	if _, err := sess.CommitNames(ctx, s.ID, sessions.NameSuggestionSet{
		Suggestions: []sessions.NameSuggestion{{Name: "Pasta Lane", OverallScore: 90}},
	}, sessions.AgentLog{Agent: "naming", Tool: "suggest", Status: sessions.LogSuccess}); err != nil {
		t.Fatalf("CommitNames() error = %v", err)
	}

	if _, err := sess.SelectName(ctx, s.ID, "Pasta Lane"); err != nil {
		t.Fatalf("SelectName() error = %v", err)
	}

	return s.ID
}

func TestGenerateCommitsFallbacksAndKeepsStep(t *testing.T) {
	sys, sess := testSystem(t)
	id := seed(t, sess)

	s, outcome, err := sys.Generate(context.Background(), id)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if s.CurrentStep != sessions.StepSignboard {
		t.Errorf("CurrentStep = %d, generation must not advance the step", s.CurrentStep)
	}
	if s.Signboard == nil || len(s.Signboard.Variants) == 0 {
		t.Fatal("variants not committed")
	}
	if outcome.Generated != 0 {
		t.Errorf("Generated = %d, want 0 with no providers", outcome.Generated)
	}
	for i, v := range s.Signboard.Variants {
		if !v.IsFallback {
			t.Errorf("Variants[%d] should be a fallback", i)
		}
	}
	if len(s.AgentLogs) == 0 {
		t.Fatal("execution record missing")
	}
	last := s.AgentLogs[len(s.AgentLogs)-1]
	if last.Status != sessions.LogError {
		t.Errorf("all-fallback run should log an error status, got %s", last.Status)
	}
}

func TestGenerateRejectsWrongStep(t *testing.T) {
	sys, sess := testSystem(t)

	s, err := sess.Create(context.Background(), sessions.BusinessProfile{
		Industry: "retail", Region: "busan", Size: "medium",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, _, err = sys.Generate(context.Background(), s.ID)
	if !errors.Is(err, generation.ErrNotGenerationStep) {
		t.Fatalf("Generate() at analysis error = %v, want ErrNotGenerationStep", err)
	}
}

func TestSelectAdvancesStep(t *testing.T) {
	sys, sess := testSystem(t)
	id := seed(t, sess)

	s, _, err := sys.Generate(context.Background(), id)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	picked := s.Signboard.Variants[0].URL
	s, err = sys.Select(context.Background(), id, picked)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if s.CurrentStep != sessions.StepInterior {
		t.Errorf("CurrentStep = %d, want interior after selection", s.CurrentStep)
	}
	if s.Signboard.SelectedURL != picked {
		t.Errorf("SelectedURL = %q, want %q", s.Signboard.SelectedURL, picked)
	}
}

func TestSelectUnknownURL(t *testing.T) {
	sys, sess := testSystem(t)
	id := seed(t, sess)

	if _, _, err := sys.Generate(context.Background(), id); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	_, err := sys.Select(context.Background(), id, "https://img.example.com/not-in-set.png")
	if !errors.Is(err, sessions.ErrVariantNotFound) {
		t.Fatalf("Select() error = %v, want ErrVariantNotFound", err)
	}
}
