package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

type httpClient struct {
	name   string
	cfg    Config
	apiKey string
	http   *http.Client
	logger *slog.Logger
}

type generateRequest struct {
	Model   string `json:"model,omitempty"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
	Style   string `json:"style,omitempty"`
}

type generateResponse struct {
	ImageURL      string `json:"image_url"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// New creates a provider client. It fails with ErrMissingCredentials when the
// configured API key environment variable is empty, so callers can skip
// orchestration entirely rather than fan out doomed calls.
func New(name string, cfg *Config, logger *slog.Logger) (Client, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w (%s not set)", name, ErrMissingCredentials, cfg.APIKeyEnv)
	}

	return &httpClient{
		name:   name,
		cfg:    *cfg,
		apiKey: apiKey,
		http:   &http.Client{},
		logger: logger.With("system", "providers", "provider", name),
	}, nil
}

func (c *httpClient) Name() string {
	return c.name
}

// Generate issues the call under the client's retry policy: transient
// failures (429, 5xx, timeouts, network errors) back off exponentially up to
// MaxAttempts; a rejected prompt fails immediately. Only the final failed
// attempt surfaces to the caller.
func (c *httpClient) Generate(ctx context.Context, spec PromptSpec) (*Result, error) {
	spec.Prompt = SanitizePrompt(spec.Prompt, c.cfg.MaxPromptLength)
	if spec.Size == "" {
		spec.Size = c.cfg.Size
	}
	if spec.Quality == "" {
		spec.Quality = c.cfg.Quality
	}

	var lastErr *Error
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(c.cfg.BackoffBaseDuration(), attempt-1)
			c.logger.Info(
				"retrying generation",
				"attempt", attempt+1,
				"delay", delay,
				"last_error", lastErr.Kind,
			)
			if err := sleep(ctx, delay); err != nil {
				return nil, lastErr
			}
		}

		result, err := c.attempt(ctx, spec)
		if err == nil {
			return result, nil
		}

		perr := c.classify(err)
		if !perr.Retryable() {
			return nil, perr
		}
		lastErr = perr
	}

	return nil, lastErr
}

func (c *httpClient) attempt(ctx context.Context, spec PromptSpec) (*Result, error) {
	actx, cancel := context.WithTimeout(ctx, c.cfg.TimeoutDuration())
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Model:   c.cfg.Model,
		Prompt:  spec.Prompt,
		N:       1,
		Size:    spec.Size,
		Quality: spec.Quality,
		Style:   spec.Style,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(actx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &statusError{
			status: resp.StatusCode,
			body:   strings.TrimSpace(string(detail)),
		}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.ImageURL == "" {
		return nil, fmt.Errorf("response missing image_url")
	}

	return &Result{URL: out.ImageURL, RevisedPrompt: out.RevisedPrompt}, nil
}

func (c *httpClient) setAuth(req *http.Request) {
	if strings.EqualFold(c.cfg.AuthHeader, "Authorization") {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return
	}
	req.Header.Set(c.cfg.AuthHeader, c.apiKey)
}

// classify buckets a raw attempt failure into the provider error taxonomy.
func (c *httpClient) classify(err error) *Error {
	var serr *statusError
	if errors.As(err, &serr) {
		switch {
		case serr.status == http.StatusTooManyRequests:
			return c.err(KindRateLimit, serr.status, err)
		case serr.status >= 500:
			return c.err(KindServerError, serr.status, err)
		default:
			return c.err(KindInvalidPrompt, serr.status, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return c.err(KindTimeout, 0, err)
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.err(KindTimeout, 0, err)
	}

	return c.err(KindNetworkError, 0, err)
}

func (c *httpClient) err(kind Kind, status int, err error) *Error {
	return &Error{Provider: c.name, Kind: kind, Status: status, Err: err}
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("unexpected status %d", e.status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

// backoffDelay computes base * 2^attempt.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	return base << attempt
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
