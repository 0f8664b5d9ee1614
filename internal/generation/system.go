package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/men16922/brandy-serverless-sub000/internal/providers"
	"github.com/men16922/brandy-serverless-sub000/internal/sessions"
	"github.com/men16922/brandy-serverless-sub000/pkg/storage"
)

// System coordinates image generation for the signboard and interior steps:
// fan-out across providers, durable persistence, and the session commit.
type System interface {
	Handler() *Handler

	// Generate produces variants for the session's current step and commits
	// them. The workflow always proceeds; degraded slots carry fallbacks.
	Generate(ctx context.Context, id string) (*sessions.Session, Outcome, error)
	// Select records the chosen variant for the current step and advances
	// the workflow by one step.
	Select(ctx context.Context, id string, url string) (*sessions.Session, error)
}

type system struct {
	cfg          *Config
	sessions     sessions.System
	orchestrator *Orchestrator
	logger       *slog.Logger
}

// New builds the generation system over the session system and blob storage,
// constructing one client per enabled provider config.
func New(
	cfg *Config,
	providerCfgs map[string]*providers.Config,
	sess sessions.System,
	blobs storage.System,
	presignExpiry time.Duration,
	logger *slog.Logger,
) System {
	logger = logger.With("system", "generation")

	clients := providers.BuildClients(providerCfgs, logger)
	persister := NewPersister(blobs, cfg.MaxDownloadBytes(), presignExpiry, logger)
	orchestrator := NewOrchestrator(clients, persister, cfg.GlobalTimeoutDuration(), logger)

	return &system{
		cfg:          cfg,
		sessions:     sess,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *system) Generate(ctx context.Context, id string) (*sessions.Session, Outcome, error) {
	session, err := s.sessions.Find(ctx, id)
	if err != nil {
		return nil, Outcome{}, err
	}

	step := session.CurrentStep
	if step != sessions.StepSignboard && step != sessions.StepInterior {
		return nil, Outcome{}, fmt.Errorf("%w: current step is %s",
			ErrNotGenerationStep, step.String())
	}

	task := Task{
		SessionID:    id,
		Step:         step,
		Profile:      session.Profile,
		BusinessName: businessName(session),
		Styles:       StylesFor(session.Profile.Industry, s.cfg.MaxVariants),
	}

	outcome := s.orchestrator.Generate(ctx, task)

	updated, err := s.sessions.CommitVariants(ctx, sessions.CommitCommand{
		SessionID:  id,
		Step:       step,
		TargetStep: step,
		Set:        sessions.VariantSet{Variants: outcome.Variants},
		Log:        executionLog(step, outcome),
	})
	if err != nil {
		return nil, outcome, err
	}

	return updated, outcome, nil
}

func (s *system) Select(ctx context.Context, id string, url string) (*sessions.Session, error) {
	session, err := s.sessions.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	step := session.CurrentStep
	if step != sessions.StepSignboard && step != sessions.StepInterior {
		return nil, fmt.Errorf("%w: current step is %s",
			ErrNotGenerationStep, step.String())
	}

	return s.sessions.Select(ctx, id, step, url)
}

// businessName resolves the name used in prompts, preferring the explicit
// selection over the first suggestion.
func businessName(s *sessions.Session) string {
	if s.Names == nil {
		return ""
	}
	if s.Names.SelectedName != "" {
		return s.Names.SelectedName
	}
	if len(s.Names.Suggestions) > 0 {
		return s.Names.Suggestions[0].Name
	}
	return ""
}

func executionLog(step sessions.Step, outcome Outcome) sessions.AgentLog {
	status := sessions.LogSuccess
	message := ""
	if outcome.Generated == 0 {
		status = sessions.LogError
		message = "all variants substituted with fallbacks"
	}

	return sessions.AgentLog{
		Agent:        step.String(),
		Tool:         "generate_images",
		Status:       status,
		LatencyMS:    outcome.Elapsed.Milliseconds(),
		Timestamp:    time.Now().UTC(),
		ErrorMessage: message,
		Metadata: map[string]string{
			"generated": fmt.Sprintf("%d", outcome.Generated),
			"fallbacks": fmt.Sprintf("%d", len(outcome.Variants)-outcome.Generated),
		},
	}
}
