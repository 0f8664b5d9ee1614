// Package sessions implements the workflow session domain: the durable record
// of one user's progress through the five-step branding workflow, its
// validation rules, and the step-transition commit logic.
package sessions

import (
	"time"
)

// Step identifies a stage in the fixed five-stage workflow.
type Step int

// Workflow steps in order. The step counter is monotonic: a commit may keep
// the current step or advance it by exactly one.
const (
	StepAnalysis Step = iota + 1
	StepNaming
	StepSignboard
	StepInterior
	StepReport
)

var stepNames = map[Step]string{
	StepAnalysis:  "analysis",
	StepNaming:    "naming",
	StepSignboard: "signboard",
	StepInterior:  "interior",
	StepReport:    "report",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether s is one of the five workflow steps.
func (s Step) Valid() bool {
	return s >= StepAnalysis && s <= StepReport
}

// Namespace returns the blob storage namespace for artifacts generated at
// this step, or "" for steps that produce no stored artifacts.
func (s Step) Namespace() string {
	switch s {
	case StepSignboard:
		return "signboards"
	case StepInterior:
		return "interiors"
	default:
		return ""
	}
}

// ParseStep resolves a step name ("signboard", "interior", ...) to its Step.
func ParseStep(name string) (Step, bool) {
	for step, n := range stepNames {
		if n == name {
			return step, true
		}
	}
	return 0, false
}

// Status is the lifecycle state of a session.
type Status string

// Session statuses. Expired is terminal: an expired session rejects every
// mutation except the transition into Expired itself.
const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
)

// MaxVariants caps the members of any variant set.
const MaxVariants = 3

// MaxRegenerations caps user-triggered regeneration of name suggestions.
const MaxRegenerations = 3

// Variant is one generated candidate artifact for a given style.
type Variant struct {
	URL           string    `json:"url"`
	Provider      string    `json:"provider"`
	Style         string    `json:"style"`
	Prompt        string    `json:"prompt"`
	RevisedPrompt string    `json:"revised_prompt,omitempty"`
	Durable       bool      `json:"durable"`
	IsFallback    bool      `json:"is_fallback"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// VariantSet holds the ordered variants generated for one step along with
// the user's selection. At most one variant is selected, tracked by URL.
type VariantSet struct {
	Variants     []Variant `json:"variants"`
	SelectedURL  string    `json:"selected_url,omitempty"`
	BudgetRange  string    `json:"budget_range,omitempty"`
	ColorPalette []string  `json:"color_palette,omitempty"`
}

// Contains reports whether the set holds a variant with the given URL.
func (s *VariantSet) Contains(url string) bool {
	for _, v := range s.Variants {
		if v.URL == url {
			return true
		}
	}
	return false
}

// Validate checks the cardinality invariant and per-variant required fields.
func (s *VariantSet) Validate() error {
	if len(s.Variants) > MaxVariants {
		return ErrTooManyVariants
	}
	for _, v := range s.Variants {
		if v.URL == "" || v.Provider == "" || v.Style == "" {
			return ErrInvalidVariant
		}
	}
	if s.SelectedURL != "" && !s.Contains(s.SelectedURL) {
		return ErrInvalidVariant
	}
	return nil
}

// NameSuggestion is one scored business name candidate.
type NameSuggestion struct {
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	PronunciationScore float64 `json:"pronunciation_score"`
	SearchScore        float64 `json:"search_score"`
	OverallScore       float64 `json:"overall_score"`
}

// NameSuggestionSet holds the naming step's suggestions and selection,
// with regeneration tracking.
type NameSuggestionSet struct {
	Suggestions       []NameSuggestion `json:"suggestions"`
	SelectedName      string           `json:"selected_name,omitempty"`
	RegenerationCount int              `json:"regeneration_count"`
}

// CanRegenerate reports whether another regeneration is allowed.
func (n *NameSuggestionSet) CanRegenerate() bool {
	return n.RegenerationCount < MaxRegenerations
}

// Validate checks cardinality and score ranges.
func (n *NameSuggestionSet) Validate() error {
	if len(n.Suggestions) > MaxVariants {
		return ErrTooManyVariants
	}
	for _, s := range n.Suggestions {
		if s.Name == "" {
			return ErrInvalidNameSet
		}
		for _, score := range []float64{s.PronunciationScore, s.SearchScore, s.OverallScore} {
			if score < 0 || score > 100 {
				return ErrInvalidNameSet
			}
		}
	}
	if n.RegenerationCount < 0 || n.RegenerationCount > MaxRegenerations {
		return ErrInvalidNameSet
	}
	return nil
}

// AnalysisResult is the business analysis produced at step one.
type AnalysisResult struct {
	Summary         string    `json:"summary"`
	Score           float64   `json:"score"`
	Insights        []string  `json:"insights"`
	MarketTrends    []string  `json:"market_trends,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Validate checks the required summary, score range, and insight presence.
func (a *AnalysisResult) Validate() error {
	if a.Summary == "" || a.Score < 0 || a.Score > 100 || len(a.Insights) == 0 {
		return ErrInvalidAnalysis
	}
	return nil
}

// LogStatus is the outcome recorded for one agent execution.
type LogStatus string

// Agent execution outcomes.
const (
	LogSuccess LogStatus = "success"
	LogError   LogStatus = "error"
	LogTimeout LogStatus = "timeout"
	LogRetry   LogStatus = "retry"
)

// AgentLog is one append-only agent execution record. Records are immutable
// after creation.
type AgentLog struct {
	Agent        string            `json:"agent"`
	Tool         string            `json:"tool"`
	Status       LogStatus         `json:"status"`
	LatencyMS    int64             `json:"latency_ms"`
	Timestamp    time.Time         `json:"timestamp"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Session is the sole unit of consistency for one workflow run. Mutations
// are whole-record read-modify-write guarded by the store's record version.
type Session struct {
	ID           string             `json:"session_id"`
	CurrentStep  Step               `json:"current_step"`
	Status       Status             `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	ExpiresAt    time.Time          `json:"expires_at"`
	Profile      BusinessProfile    `json:"business_profile"`
	Analysis     *AnalysisResult    `json:"analysis_result,omitempty"`
	Names        *NameSuggestionSet `json:"business_names,omitempty"`
	Signboard    *VariantSet        `json:"signboard_images,omitempty"`
	Interior     *VariantSet        `json:"interior_images,omitempty"`
	ReportPath   string             `json:"report_path,omitempty"`
	AgentLogs    []AgentLog         `json:"agent_logs,omitempty"`
	CurrentAgent string             `json:"current_agent,omitempty"`

	// Version is the store record version used for optimistic concurrency;
	// it lives in the store envelope, not the serialized session.
	Version int64 `json:"-"`
}

// Expired reports whether wall-clock time has passed the expiry instant.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// VariantSet returns the set stored for a generation step, or nil.
func (s *Session) VariantSet(step Step) *VariantSet {
	switch step {
	case StepSignboard:
		return s.Signboard
	case StepInterior:
		return s.Interior
	default:
		return nil
	}
}

// AppendLog appends one execution record and tracks the active agent.
func (s *Session) AppendLog(log AgentLog) {
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	s.AgentLogs = append(s.AgentLogs, log)
	s.CurrentAgent = log.Agent
}
