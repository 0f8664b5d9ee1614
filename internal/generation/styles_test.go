package generation_test

import (
	"strings"
	"testing"

	"github.com/men16922/brandy-serverless-sub000/internal/generation"
	"github.com/men16922/brandy-serverless-sub000/internal/sessions"
)

func TestStylesFor(t *testing.T) {
	tests := []struct {
		name     string
		industry string
		max      int
		want     []string
	}{
		{"restaurant precedence", "restaurant", 3, []string{"modern", "classic", "vibrant"}},
		{"technology precedence", "technology", 3, []string{"minimal", "modern", "vibrant"}},
		{"case-insensitive", "Restaurant", 3, []string{"modern", "classic", "vibrant"}},
		{"unknown industry pads from known styles", "other", 3, []string{"modern", "classic", "minimal"}},
		{"capped at two", "restaurant", 2, []string{"modern", "classic"}},
		{"zero max yields full set", "retail", 0, []string{"vibrant", "modern", "minimal", "classic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generation.StylesFor(tt.industry, tt.max)
			if len(got) != len(tt.want) {
				t.Fatalf("StylesFor(%q, %d) = %v, want %v", tt.industry, tt.max, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("StylesFor(%q, %d)[%d] = %q, want %q", tt.industry, tt.max, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestKnownStyle(t *testing.T) {
	if !generation.KnownStyle("modern") {
		t.Error("modern should be known")
	}
	if generation.KnownStyle("brutalist") {
		t.Error("brutalist should not be known")
	}
}

func TestFallbackVariant(t *testing.T) {
	v := generation.FallbackVariant(sessions.StepSignboard, "modern")

	if !v.IsFallback {
		t.Error("IsFallback not set")
	}
	if v.Provider != generation.FallbackProvider {
		t.Errorf("Provider = %q", v.Provider)
	}
	if !v.Durable {
		t.Error("fallback placeholders are stable URLs and should be durable")
	}
	if !strings.Contains(v.URL, "signboards") || !strings.Contains(v.URL, "modern") {
		t.Errorf("fallback URL missing context: %q", v.URL)
	}
}

func TestBuildPrompt(t *testing.T) {
	profile := sessions.BusinessProfile{Industry: "restaurant", Region: "seoul", Size: "small"}

	signboard := generation.BuildPrompt(sessions.StepSignboard, "modern", profile, "Pasta Lane")
	if !strings.Contains(signboard, "Pasta Lane") || !strings.Contains(signboard, "signboard") {
		t.Errorf("signboard prompt missing context: %q", signboard)
	}
	if !strings.Contains(signboard, "seoul") {
		t.Errorf("signboard prompt missing region: %q", signboard)
	}

	interior := generation.BuildPrompt(sessions.StepInterior, "minimal", profile, "Pasta Lane")
	if !strings.Contains(interior, "Interior") || !strings.Contains(interior, "small") {
		t.Errorf("interior prompt missing context: %q", interior)
	}

	// unnamed business falls back to the industry
	unnamed := generation.BuildPrompt(sessions.StepSignboard, "modern", profile, "")
	if !strings.Contains(unnamed, "restaurant business") {
		t.Errorf("unnamed prompt missing industry fallback: %q", unnamed)
	}
}
