// Package storage provides blob storage operations with an Azure Blob Storage implementation.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"golang.org/x/sync/errgroup"

	"github.com/men16922/brandy-serverless-sub000/pkg/lifecycle"
)

// ObjectInfo describes one stored blob in a listing.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// DownloadResult wraps a blob stream with its content headers.
// The caller must close Body.
type DownloadResult struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that initializes the storage container.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to a blob at the given key with the specified
	// content type and user metadata.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string, metadata map[string]string) error
	// Download returns a stream for the blob at the given key.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (*DownloadResult, error)
	// Delete removes the blob at the given key. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every blob under the given prefix and reports how
	// many were deleted. Missing blobs are not an error.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	// Exists reports whether a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
	// List returns up to max blobs whose keys start with prefix.
	List(ctx context.Context, prefix string, max int32) ([]ObjectInfo, error)
	// PresignedURL returns a time-bounded read URL for the blob at the given key.
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type azure struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

// New creates a storage system from the given configuration.
// It validates the connection string and creates the Azure client
// but does not establish a connection until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		logger:    logger.With("system", "storage"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil {
			if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
				a.logger.Error("storage container initialization failed", "error", err)
				return
			}
		}

		a.logger.Info("storage container ready", "container", a.container)
	})

	return nil
}

func (a *azure) Upload(
	ctx context.Context,
	key string,
	reader io.Reader,
	contentType string,
	metadata map[string]string,
) error {
	if err := validateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	if len(metadata) > 0 {
		meta := make(map[string]*string, len(metadata))
		for k, v := range metadata {
			meta[k] = &v
		}
		opts.Metadata = meta
	}

	_, err := a.client.UploadStream(ctx, a.container, key, reader, opts)
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	return nil
}

func (a *azure) Download(ctx context.Context, key string) (*DownloadResult, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}

	result := &DownloadResult{Body: resp.Body}
	if resp.ContentType != nil {
		result.ContentType = *resp.ContentType
	}
	if resp.ContentLength != nil {
		result.ContentLength = *resp.ContentLength
	}

	return result, nil
}

func (a *azure) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := a.client.DeleteBlob(ctx, a.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", key, err)
	}

	return nil
}

func (a *azure) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if err := validateKey(prefix); err != nil {
		return 0, err
	}

	objects, err := a.List(ctx, prefix, MaxListCap)
	if err != nil {
		return 0, fmt.Errorf("list prefix %s: %w", prefix, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteWorkers)

	for _, obj := range objects {
		g.Go(func() error {
			if err := a.Delete(gctx, obj.Key); err != nil && err != ErrNotFound {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("delete prefix %s: %w", prefix, err)
	}

	return len(objects), nil
}

func (a *azure) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	blobClient := a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(key)

	_, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check blob existence %s: %w", key, err)
	}

	return true, nil
}

func (a *azure) List(ctx context.Context, prefix string, max int32) ([]ObjectInfo, error) {
	if max <= 0 || max > MaxListCap {
		max = MaxListCap
	}

	pager := a.client.NewListBlobsFlatPager(a.container, &azblob.ListBlobsFlatOptions{
		Prefix:     &prefix,
		MaxResults: &max,
	})

	objects := []ObjectInfo{}
	for pager.More() && int32(len(objects)) < max {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs %s: %w", prefix, err)
		}

		for _, item := range page.Segment.BlobItems {
			if int32(len(objects)) >= max {
				break
			}

			info := ObjectInfo{}
			if item.Name != nil {
				info.Key = *item.Name
			}
			if item.Properties != nil {
				if item.Properties.ContentLength != nil {
					info.Size = *item.Properties.ContentLength
				}
				if item.Properties.LastModified != nil {
					info.LastModified = *item.Properties.LastModified
				}
			}
			objects = append(objects, info)
		}
	}

	return objects, nil
}

func (a *azure) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	blobClient := a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(key)

	url, err := blobClient.GetSASURL(
		sas.BlobPermissions{Read: true},
		time.Now().UTC().Add(expiry),
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("presign blob %s: %w", key, err)
	}

	return url, nil
}

const deleteWorkers = 8

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
