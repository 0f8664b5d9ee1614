package generation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/men16922/brandy-serverless-sub000/pkg/storage"
)

// Persister copies provider-hosted images into blob storage so variant
// references outlive the provider's short-lived URLs.
type Persister struct {
	blobs         storage.System
	client        *http.Client
	maxBytes      int64
	presignExpiry time.Duration
	logger        *slog.Logger
}

// NewPersister builds a Persister over the given blob system.
func NewPersister(blobs storage.System, maxBytes int64, presignExpiry time.Duration, logger *slog.Logger) *Persister {
	return &Persister{
		blobs:         blobs,
		client:        &http.Client{Timeout: 30 * time.Second},
		maxBytes:      maxBytes,
		presignExpiry: presignExpiry,
		logger:        logger.With("system", "persister"),
	}
}

// Persist downloads the image at srcURL and uploads it under the session's
// namespace, returning a presigned read URL for the stored copy. On any
// failure it returns the original URL with durable=false; the caller keeps
// the transient reference and records the degradation.
func (p *Persister) Persist(ctx context.Context, namespace, sessionID, style, provider, srcURL string) (url string, durable bool) {
	key := fmt.Sprintf("%s/%s/%s_%d_%s",
		namespace, sessionID, style, time.Now().Unix(), shortSuffix())

	metadata := map[string]string{
		"session":  sessionID,
		"style":    style,
		"provider": provider,
		"source":   srcURL,
	}

	if err := p.copy(ctx, key, srcURL, metadata); err != nil {
		p.logger.Warn("falling back to provider-hosted url",
			"session", sessionID, "key", key, "error", err)
		return srcURL, false
	}

	signed, err := p.blobs.PresignedURL(ctx, key, p.presignExpiry)
	if err != nil {
		p.logger.Warn("presign failed for stored copy",
			"session", sessionID, "key", key, "error", err)
		return srcURL, false
	}

	p.logger.Info("variant persisted", "session", sessionID, "key", key)
	return signed, true
}

func (p *Persister) copy(ctx context.Context, key, srcURL string, metadata map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return fmt.Errorf("building download request: %w", err)
	}

	res, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading image: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading image: unexpected status %d", res.StatusCode)
	}

	body := http.MaxBytesReader(nil, res.Body, p.maxBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("reading image body: %w", err)
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = "image/png"
	}

	if err := p.blobs.Upload(ctx, key, bytes.NewReader(data), contentType, metadata); err != nil {
		return fmt.Errorf("uploading image: %w", err)
	}

	return nil
}

func shortSuffix() string {
	return uuid.NewString()[:8]
}
