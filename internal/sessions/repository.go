package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/men16922/brandy-serverless-sub000/pkg/kvstore"
	"github.com/men16922/brandy-serverless-sub000/pkg/storage"
)

const keyPrefix = "session:"

// expiredGrace keeps an expired record readable for a short window after the
// terminal transition so callers observe status=expired instead of NotFound.
const expiredGrace = 10 * time.Minute

type repo struct {
	store         kvstore.System
	blobs         storage.System
	ttl           time.Duration
	presignExpiry time.Duration
	logger        *slog.Logger
}

// New creates a session repository implementing the System interface.
func New(
	store kvstore.System,
	blobs storage.System,
	ttl time.Duration,
	presignExpiry time.Duration,
	logger *slog.Logger,
) System {
	return &repo{
		store:         store,
		blobs:         blobs,
		ttl:           ttl,
		presignExpiry: presignExpiry,
		logger:        logger.With("system", "sessions"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Create(ctx context.Context, profile BusinessProfile) (*Session, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	s := &Session{
		ID:          uuid.NewString(),
		CurrentStep: StepAnalysis,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(r.ttl),
		Profile:     profile,
	}

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	version, err := r.store.PutVersioned(ctx, keyPrefix+s.ID, data, r.ttl+expiredGrace, 0)
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	s.Version = version

	r.logger.Info("session created", "id", s.ID, "expires_at", s.ExpiresAt)
	return s, nil
}

func (r *repo) Find(ctx context.Context, id string) (*Session, error) {
	s, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.Status != StatusExpired && s.Expired(time.Now()) {
		r.expire(ctx, s)
	}

	return s, nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	s, err := r.load(ctx, id)
	if err != nil {
		return err
	}

	if err := r.store.Delete(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}

	for _, step := range []Step{StepSignboard, StepInterior} {
		prefix := fmt.Sprintf("%s/%s", step.Namespace(), s.ID)
		count, err := r.blobs.DeletePrefix(ctx, prefix)
		if err != nil {
			r.logger.Warn("session blob cleanup failed", "id", id, "prefix", prefix, "error", err)
			continue
		}
		if count > 0 {
			r.logger.Info("session blobs removed", "id", id, "prefix", prefix, "count", count)
		}
	}

	r.logger.Info("session deleted", "id", id)
	return nil
}

func (r *repo) CommitAnalysis(ctx context.Context, id string, result AnalysisResult, log AgentLog) (*Session, error) {
	if err := result.Validate(); err != nil {
		return nil, err
	}

	return r.mutate(ctx, id, func(s *Session) error {
		if s.Status != StatusActive {
			return ErrSessionNotActive
		}
		if err := validTransition(s.CurrentStep, StepNaming); err != nil {
			return err
		}

		if result.GeneratedAt.IsZero() {
			result.GeneratedAt = time.Now().UTC()
		}
		s.Analysis = &result
		s.CurrentStep = StepNaming
		s.AppendLog(log)
		return nil
	})
}

func (r *repo) CommitNames(ctx context.Context, id string, set NameSuggestionSet, log AgentLog) (*Session, error) {
	return r.mutate(ctx, id, func(s *Session) error {
		if s.Status != StatusActive {
			return ErrSessionNotActive
		}
		if s.Analysis == nil {
			return fmt.Errorf("%w: analysis result required before naming", ErrMissingPriorStep)
		}
		if err := validTransition(s.CurrentStep, StepNaming); err != nil {
			return err
		}

		if s.Names != nil && len(s.Names.Suggestions) > 0 {
			if !s.Names.CanRegenerate() {
				return fmt.Errorf("%w: regeneration limit reached", ErrInvalidNameSet)
			}
			set.RegenerationCount = s.Names.RegenerationCount + 1
		}

		if err := set.Validate(); err != nil {
			return err
		}

		s.Names = &set
		s.CurrentStep = StepNaming
		s.AppendLog(log)
		return nil
	})
}

func (r *repo) SelectName(ctx context.Context, id string, name string) (*Session, error) {
	return r.mutate(ctx, id, func(s *Session) error {
		if s.Status != StatusActive {
			return ErrSessionNotActive
		}
		if s.Names == nil || len(s.Names.Suggestions) == 0 {
			return fmt.Errorf("%w: no name suggestions to select from", ErrMissingPriorStep)
		}
		if err := validTransition(s.CurrentStep, StepSignboard); err != nil {
			return err
		}

		found := false
		for _, suggestion := range s.Names.Suggestions {
			if suggestion.Name == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %q", ErrVariantNotFound, name)
		}

		s.Names.SelectedName = name
		s.CurrentStep = StepSignboard
		s.AppendLog(AgentLog{
			Agent:  StepNaming.String(),
			Tool:   "select_name",
			Status: LogSuccess,
		})
		return nil
	})
}

func (r *repo) CommitVariants(ctx context.Context, cmd CommitCommand) (*Session, error) {
	if cmd.Step != StepSignboard && cmd.Step != StepInterior {
		return nil, fmt.Errorf("%w: step %s holds no variant set", ErrInvalidStepTransition, cmd.Step)
	}
	if err := cmd.Set.Validate(); err != nil {
		return nil, err
	}

	return r.mutate(ctx, cmd.SessionID, func(s *Session) error {
		if s.Status != StatusActive {
			return ErrSessionNotActive
		}
		if err := validTransition(s.CurrentStep, cmd.TargetStep); err != nil {
			return err
		}
		if err := priorStepReady(s, cmd.Step); err != nil {
			return err
		}

		set := cmd.Set
		if prev := s.VariantSet(cmd.Step); prev != nil && prev.SelectedURL != "" && set.SelectedURL == "" {
			// Carry a prior selection forward only when the variant survived
			// the recommit; otherwise the selection is cleared.
			if set.Contains(prev.SelectedURL) {
				set.SelectedURL = prev.SelectedURL
			}
		}

		switch cmd.Step {
		case StepSignboard:
			s.Signboard = &set
		case StepInterior:
			s.Interior = &set
		}

		s.CurrentStep = cmd.TargetStep
		s.AppendLog(cmd.Log)
		return nil
	})
}

func (r *repo) Select(ctx context.Context, id string, step Step, url string) (*Session, error) {
	if step != StepSignboard && step != StepInterior {
		return nil, fmt.Errorf("%w: step %s holds no variant set", ErrInvalidStepTransition, step)
	}

	return r.mutate(ctx, id, func(s *Session) error {
		if s.Status != StatusActive {
			return ErrSessionNotActive
		}

		set := s.VariantSet(step)
		if set == nil || len(set.Variants) == 0 {
			return fmt.Errorf("%w: no variants generated for %s", ErrMissingPriorStep, step)
		}
		if !set.Contains(url) {
			return ErrVariantNotFound
		}
		if err := validTransition(s.CurrentStep, step+1); err != nil {
			return err
		}

		set.SelectedURL = url
		s.CurrentStep = step + 1
		s.AppendLog(AgentLog{
			Agent:  step.String(),
			Tool:   "select_variant",
			Status: LogSuccess,
		})
		return nil
	})
}

func (r *repo) MarkCompleted(ctx context.Context, id string) (*Session, error) {
	return r.mutate(ctx, id, func(s *Session) error {
		if s.Status != StatusActive {
			return ErrSessionNotActive
		}
		if s.CurrentStep != StepReport {
			return fmt.Errorf("%w: completion requires the report step", ErrInvalidStepTransition)
		}
		s.Status = StatusCompleted
		return nil
	})
}

func (r *repo) MarkFailed(ctx context.Context, id string, reason string) (*Session, error) {
	return r.mutate(ctx, id, func(s *Session) error {
		if s.Status == StatusCompleted || s.Status == StatusExpired {
			return ErrSessionNotActive
		}
		s.Status = StatusFailed
		if reason != "" {
			s.AppendLog(AgentLog{
				Agent:        s.CurrentStep.String(),
				Tool:         "session_management",
				Status:       LogError,
				ErrorMessage: reason,
			})
		}
		return nil
	})
}

func (r *repo) Assets(ctx context.Context, id string) ([]Asset, error) {
	s, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}

	assets := []Asset{}
	for _, step := range []Step{StepSignboard, StepInterior} {
		prefix := fmt.Sprintf("%s/%s", step.Namespace(), s.ID)

		objects, err := r.blobs.List(ctx, prefix, storage.MaxListCap)
		if err != nil {
			return nil, fmt.Errorf("list session assets: %w", err)
		}

		for _, obj := range objects {
			url, err := r.blobs.PresignedURL(ctx, obj.Key, r.presignExpiry)
			if err != nil {
				r.logger.Warn("presign failed", "key", obj.Key, "error", err)
				continue
			}
			assets = append(assets, Asset{
				Key:          obj.Key,
				Size:         obj.Size,
				LastModified: obj.LastModified.UTC().Format(time.RFC3339),
				URL:          url,
			})
		}
	}

	return assets, nil
}

// mutate runs fn against a freshly loaded session and writes it back under
// the record version read, retrying once on a concurrent update. The expiry
// check runs before fn: a session past its TTL transitions to Expired and
// every other mutation is rejected.
func (r *repo) mutate(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	for attempt := 0; attempt < 2; attempt++ {
		s, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}

		if s.Status != StatusExpired && s.Expired(time.Now()) {
			r.expire(ctx, s)
			return nil, ErrSessionExpired
		}
		if s.Status == StatusExpired {
			return nil, ErrSessionExpired
		}

		if err := fn(s); err != nil {
			return nil, err
		}

		s.UpdatedAt = time.Now().UTC()

		if err := r.save(ctx, s); err != nil {
			if errors.Is(err, kvstore.ErrVersionConflict) {
				r.logger.Warn("session version conflict, retrying", "id", id)
				continue
			}
			return nil, err
		}

		return s, nil
	}

	return nil, ErrConcurrentUpdate
}

func (r *repo) load(ctx context.Context, id string) (*Session, error) {
	rec, err := r.store.Get(ctx, keyPrefix+id)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var s Session
	if err := json.Unmarshal(rec.Value, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	s.Version = rec.Version

	return &s, nil
}

func (r *repo) save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	// The record outlives ExpiresAt by the grace window so a commit against
	// a lapsed session observes the expired transition rather than NotFound.
	ttl := time.Until(s.ExpiresAt) + expiredGrace
	if ttl <= 0 {
		ttl = expiredGrace
	}

	version, err := r.store.PutVersioned(ctx, keyPrefix+s.ID, data, ttl, s.Version)
	if err != nil {
		if errors.Is(err, kvstore.ErrVersionConflict) {
			return kvstore.ErrVersionConflict
		}
		return fmt.Errorf("store session %s: %w", s.ID, err)
	}
	s.Version = version

	return nil
}

// expire performs the one mutation an expired session still accepts: the
// terminal transition into Expired. Best-effort; a lost race means another
// writer already expired it.
func (r *repo) expire(ctx context.Context, s *Session) {
	s.Status = StatusExpired
	s.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Error("encode expired session failed", "id", s.ID, "error", err)
		return
	}

	if _, err := r.store.PutVersioned(ctx, keyPrefix+s.ID, data, expiredGrace, s.Version); err != nil &&
		!errors.Is(err, kvstore.ErrVersionConflict) {
		r.logger.Warn("expired transition write failed", "id", s.ID, "error", err)
		return
	}

	r.logger.Info("session expired", "id", s.ID)
}

func validTransition(current, target Step) error {
	if !target.Valid() {
		return fmt.Errorf("%w: target step %d out of range", ErrInvalidStepTransition, target)
	}
	if target != current && target != current+1 {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStepTransition, current, target)
	}
	return nil
}

func priorStepReady(s *Session, step Step) error {
	switch step {
	case StepSignboard:
		if s.Names == nil || len(s.Names.Suggestions) == 0 {
			return fmt.Errorf("%w: name suggestions required before signboard generation", ErrMissingPriorStep)
		}
	case StepInterior:
		if s.Signboard == nil || len(s.Signboard.Variants) == 0 {
			return fmt.Errorf("%w: signboard variants required before interior generation", ErrMissingPriorStep)
		}
	}
	return nil
}
