package generation

import (
	"context"
	"log/slog"
	"time"

	"github.com/men16922/brandy-serverless-sub000/internal/providers"
	"github.com/men16922/brandy-serverless-sub000/internal/sessions"
)

// Task describes one fan-out request: which session and step to generate
// for, and the ordered styles to produce.
type Task struct {
	SessionID    string
	Step         sessions.Step
	Profile      sessions.BusinessProfile
	BusinessName string
	Styles       []string
}

// Outcome is the result of one fan-out. Variants is always non-empty and
// ordered by the task's style order; slots that missed the deadline or
// failed terminally hold fallback variants.
type Outcome struct {
	Variants  []sessions.Variant
	Generated int
	Elapsed   time.Duration
}

// Orchestrator fans a generation task out across the configured provider
// clients, one goroutine per style, bounded by a global deadline. It never
// returns an error; degraded slots are substituted with fallbacks so the
// workflow can always proceed.
type Orchestrator struct {
	clients   []providers.Client
	persister *Persister
	timeout   time.Duration
	logger    *slog.Logger
}

// NewOrchestrator builds an Orchestrator. clients may be empty, in which
// case every run produces fallbacks only.
func NewOrchestrator(clients []providers.Client, persister *Persister, timeout time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		clients:   clients,
		persister: persister,
		timeout:   timeout,
		logger:    logger.With("system", "orchestrator"),
	}
}

// Generate runs the fan-out and waits up to the global deadline for all
// workers. Workers run on a detached context so deadline expiry abandons
// slow slots without cancelling an in-flight blob write.
func (o *Orchestrator) Generate(ctx context.Context, task Task) Outcome {
	start := time.Now()
	n := len(task.Styles)

	if len(o.clients) == 0 {
		o.logger.Warn("no provider clients configured, substituting fallbacks",
			"session", task.SessionID, "step", task.Step.String())
		return Outcome{
			Variants: o.allFallbacks(task),
			Elapsed:  time.Since(start),
		}
	}

	slots := make([]sessions.Variant, n)
	done := make(chan int, n)
	workerCtx := context.WithoutCancel(ctx)

	for i, style := range task.Styles {
		client := o.clients[i%len(o.clients)]
		go func(i int, style string, client providers.Client) {
			slots[i] = o.generateOne(workerCtx, task, style, client)
			done <- i
		}(i, style, client)
	}

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	filled := make([]bool, n)
	remaining := n

wait:
	for remaining > 0 {
		select {
		case i := <-done:
			filled[i] = true
			remaining--
		case <-timer.C:
			o.logger.Warn("generation deadline reached, abandoning slow slots",
				"session", task.SessionID, "pending", remaining)
			break wait
		case <-ctx.Done():
			o.logger.Warn("generation context cancelled, abandoning slow slots",
				"session", task.SessionID, "pending", remaining)
			break wait
		}
	}

	variants := make([]sessions.Variant, n)
	generated := 0
	for i, style := range task.Styles {
		if !filled[i] {
			variants[i] = FallbackVariant(task.Step, style)
			variants[i].Prompt = BuildPrompt(task.Step, style, task.Profile, task.BusinessName)
			continue
		}
		variants[i] = slots[i]
		if !variants[i].IsFallback {
			generated++
		}
	}

	return Outcome{
		Variants:  variants,
		Generated: generated,
		Elapsed:   time.Since(start),
	}
}

// generateOne produces the variant for a single style, substituting the
// style's fallback when the provider fails terminally.
func (o *Orchestrator) generateOne(ctx context.Context, task Task, style string, client providers.Client) sessions.Variant {
	prompt := BuildPrompt(task.Step, style, task.Profile, task.BusinessName)

	result, err := client.Generate(ctx, providers.PromptSpec{
		Prompt: prompt,
		Style:  style,
	})
	if err != nil {
		o.logger.Warn("provider generation failed, substituting fallback",
			"session", task.SessionID, "provider", client.Name(),
			"style", style, "error", err)
		v := FallbackVariant(task.Step, style)
		v.Prompt = prompt
		return v
	}

	url, durable := o.persister.Persist(
		ctx, task.Step.Namespace(), task.SessionID, style, client.Name(), result.URL)

	return sessions.Variant{
		URL:           url,
		Provider:      client.Name(),
		Style:         style,
		Prompt:        prompt,
		RevisedPrompt: result.RevisedPrompt,
		Durable:       durable,
		GeneratedAt:   time.Now().UTC(),
	}
}

func (o *Orchestrator) allFallbacks(task Task) []sessions.Variant {
	variants := make([]sessions.Variant, len(task.Styles))
	for i, style := range task.Styles {
		variants[i] = FallbackVariant(task.Step, style)
		variants[i].Prompt = BuildPrompt(task.Step, style, task.Profile, task.BusinessName)
	}
	return variants
}
