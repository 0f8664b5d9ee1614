package sessions

import "context"

// CommitCommand carries one generation step's variant set into the session
// record. Step identifies the variant set being written (signboard or
// interior); TargetStep must equal the session's current step or advance it
// by exactly one.
type CommitCommand struct {
	SessionID  string
	Step       Step
	TargetStep Step
	Set        VariantSet
	Log        AgentLog
}

// Asset describes one stored artifact belonging to a session, with a
// time-bounded read URL.
type Asset struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
	URL          string `json:"url"`
}

// System defines the public contract for session domain operations.
type System interface {
	Handler() *Handler

	// Create validates the profile and starts a new active session at the
	// analysis step with the configured TTL.
	Create(ctx context.Context, profile BusinessProfile) (*Session, error)
	Find(ctx context.Context, id string) (*Session, error)
	// Delete removes the session record and every blob stored under the
	// session's artifact namespaces.
	Delete(ctx context.Context, id string) error

	// CommitAnalysis records the analysis result and advances to naming.
	CommitAnalysis(ctx context.Context, id string, result AnalysisResult, log AgentLog) (*Session, error)
	// CommitNames records name suggestions at the naming step. Recommitting
	// counts as a regeneration, capped at MaxRegenerations.
	CommitNames(ctx context.Context, id string, set NameSuggestionSet, log AgentLog) (*Session, error)
	// SelectName records the chosen business name and advances to signboard.
	SelectName(ctx context.Context, id string, name string) (*Session, error)

	// CommitVariants merges a generated variant set into the session,
	// enforcing cardinality and prior-step invariants.
	CommitVariants(ctx context.Context, cmd CommitCommand) (*Session, error)
	// Select records the chosen variant for the given step and advances the
	// workflow by one step.
	Select(ctx context.Context, id string, step Step, url string) (*Session, error)

	MarkCompleted(ctx context.Context, id string) (*Session, error)
	MarkFailed(ctx context.Context, id string, reason string) (*Session, error)

	// Assets lists the session's stored artifacts with presigned read URLs.
	Assets(ctx context.Context, id string) ([]Asset, error)
}
