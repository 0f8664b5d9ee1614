package generation

import (
	"fmt"
	"time"

	"github.com/men16922/brandy-serverless-sub000/internal/sessions"
)

// FallbackProvider is the provider name recorded on substituted variants.
const FallbackProvider = "fallback"

// fallbackPalette maps each style to a background/foreground color pair
// used to render a stable placeholder image.
var fallbackPalette = map[string][2]string{
	"modern":  {"2c3e50", "ecf0f1"},
	"classic": {"8b4513", "f5f5dc"},
	"minimal": {"f8f9fa", "343a40"},
	"vibrant": {"e74c3c", "ffffff"},
}

// FallbackVariant returns the pre-registered placeholder for a style. The
// URL is stable and not time-limited, so the variant is marked durable.
func FallbackVariant(step sessions.Step, style string) sessions.Variant {
	colors, ok := fallbackPalette[style]
	if !ok {
		colors = [2]string{"777777", "ffffff"}
	}

	label := fmt.Sprintf("%s+%s", step.Namespace(), style)
	url := fmt.Sprintf(
		"https://placehold.co/1024x1024/%s/%s/png?text=%s",
		colors[0], colors[1], label,
	)

	return sessions.Variant{
		URL:         url,
		Provider:    FallbackProvider,
		Style:       style,
		Durable:     true,
		IsFallback:  true,
		GeneratedAt: time.Now().UTC(),
	}
}
