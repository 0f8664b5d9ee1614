package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/men16922/brandy-serverless-sub000/pkg/handlers"
	"github.com/men16922/brandy-serverless-sub000/pkg/routes"
	"github.com/men16922/brandy-serverless-sub000/pkg/storage"
)

// storageHandler exposes read-only access to stored artifacts for
// operational inspection.
type storageHandler struct {
	store         storage.System
	logger        *slog.Logger
	maxListSize   int32
	presignExpiry time.Duration
}

func newStorageHandler(
	store storage.System,
	logger *slog.Logger,
	maxListSize int32,
	presignExpiry time.Duration,
) *storageHandler {
	return &storageHandler{
		store:         store,
		logger:        logger.With("handler", "storage"),
		maxListSize:   maxListSize,
		presignExpiry: presignExpiry,
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/storage",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list},
			{Method: "GET", Pattern: "/download/{key...}", Handler: h.download},
			{Method: "GET", Pattern: "/url/{key...}", Handler: h.presign},
		},
	}
}

func (h *storageHandler) list(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	max := h.maxListSize
	if v := r.URL.Query().Get("max_results"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 1 {
			handlers.RespondError(
				w, h.logger,
				http.StatusBadRequest,
				fmt.Errorf("invalid max_results: %q", v),
			)
			return
		}
		max = int32(n)
	}

	objects, err := h.store.List(r.Context(), prefix, max)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			http.StatusInternalServerError, err,
		)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, objects)
}

func (h *storageHandler) presign(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	url, err := h.store.PresignedURL(r.Context(), key, h.presignExpiry)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]string{
		"key": key,
		"url": url,
	})
}

func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	result, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", result.ContentType)

	if result.ContentLength > 0 {
		w.Header().Set(
			"Content-Length",
			strconv.FormatInt(result.ContentLength, 10),
		)
	}
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, result.Body)
}
