package generation

import "strings"

// knownStyles is the closed set of generation styles, in padding order.
var knownStyles = []string{"modern", "classic", "minimal", "vibrant"}

// industryStyles maps an industry to its preferred styles, in precedence
// order. Industries without an entry fall back to the known-style order.
var industryStyles = map[string][]string{
	"restaurant":    {"modern", "classic", "vibrant"},
	"retail":        {"vibrant", "modern", "minimal"},
	"service":       {"modern", "minimal", "classic"},
	"healthcare":    {"minimal", "modern", "classic"},
	"education":     {"classic", "modern", "vibrant"},
	"technology":    {"minimal", "modern", "vibrant"},
	"manufacturing": {"classic", "minimal", "modern"},
	"construction":  {"classic", "modern", "minimal"},
	"finance":       {"classic", "minimal", "modern"},
}

// StylesFor returns up to max styles for the industry: the industry's
// precedence list first, padded with remaining known styles.
func StylesFor(industry string, max int) []string {
	if max <= 0 || max > len(knownStyles) {
		max = len(knownStyles)
	}

	styles := make([]string, 0, max)
	seen := map[string]bool{}

	add := func(style string) {
		if len(styles) < max && !seen[style] {
			styles = append(styles, style)
			seen[style] = true
		}
	}

	for _, style := range industryStyles[strings.ToLower(industry)] {
		add(style)
	}
	for _, style := range knownStyles {
		add(style)
	}

	return styles
}

// KnownStyle reports whether style is in the closed style set.
func KnownStyle(style string) bool {
	for _, s := range knownStyles {
		if s == style {
			return true
		}
	}
	return false
}
