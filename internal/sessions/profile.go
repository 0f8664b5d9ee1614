package sessions

import (
	"fmt"
	"slices"
	"strings"
)

// Closed enumerations for profile validation. A profile outside these sets is
// permanently unusable; values are never auto-corrected.
var (
	validIndustries = []string{
		"restaurant", "retail", "service", "healthcare", "education",
		"technology", "manufacturing", "construction", "finance", "other",
	}
	validRegions = []string{
		"seoul", "busan", "daegu", "incheon", "gwangju", "daejeon",
		"ulsan", "gyeonggi", "gangwon", "chungbuk", "chungnam",
		"jeonbuk", "jeonnam", "gyeongbuk", "gyeongnam", "jeju",
	}
	validSizes = []string{"small", "medium", "large"}
)

// BusinessProfile is the immutable business description a session is created
// with. Industry, region, and size are validated against closed enumerations.
type BusinessProfile struct {
	Industry         string `json:"industry"`
	Region           string `json:"region"`
	Size             string `json:"size"`
	Description      string `json:"description,omitempty"`
	UploadedImageURL string `json:"uploaded_image_url,omitempty"`
}

// Validate checks required fields against the closed enumerations.
func (p *BusinessProfile) Validate() error {
	if p.Industry == "" || p.Region == "" || p.Size == "" {
		return fmt.Errorf("%w: industry, region, and size are required", ErrInvalidProfile)
	}
	if !slices.Contains(validIndustries, strings.ToLower(p.Industry)) {
		return fmt.Errorf("%w: unknown industry %q", ErrInvalidProfile, p.Industry)
	}
	if !slices.Contains(validRegions, strings.ToLower(p.Region)) {
		return fmt.Errorf("%w: unknown region %q", ErrInvalidProfile, p.Region)
	}
	if !slices.Contains(validSizes, strings.ToLower(p.Size)) {
		return fmt.Errorf("%w: unknown size %q", ErrInvalidProfile, p.Size)
	}
	return nil
}
