package generation

import (
	"fmt"
	"strings"

	"github.com/men16922/brandy-serverless-sub000/internal/sessions"
)

var styleDirectives = map[string]string{
	"modern":  "sleek contemporary design, clean lines, bold typography",
	"classic": "traditional timeless design, elegant serif lettering, warm tones",
	"minimal": "minimalist design, generous whitespace, restrained color palette",
	"vibrant": "energetic colorful design, strong contrast, eye-catching accents",
}

// BuildPrompt renders the generation prompt for a step and style from the
// session's business profile and the carried-forward name selection.
func BuildPrompt(step sessions.Step, style string, profile sessions.BusinessProfile, businessName string) string {
	directive, ok := styleDirectives[style]
	if !ok {
		directive = style + " style"
	}

	name := strings.TrimSpace(businessName)
	if name == "" {
		name = profile.Industry + " business"
	}

	switch step {
	case sessions.StepSignboard:
		return fmt.Sprintf(
			"Storefront signboard for %q, a %s business in %s. %s. "+
				"Legible signage mounted on a building facade, photorealistic, daylight.",
			name, profile.Industry, profile.Region, directive,
		)
	case sessions.StepInterior:
		return fmt.Sprintf(
			"Interior design concept for %q, a %s-sized %s business. %s. "+
				"Wide-angle view of the customer area, photorealistic, natural lighting.",
			name, profile.Size, profile.Industry, directive,
		)
	default:
		return fmt.Sprintf("Brand imagery for %q, a %s business. %s.",
			name, profile.Industry, directive)
	}
}
