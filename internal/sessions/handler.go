package sessions

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/men16922/brandy-serverless-sub000/pkg/handlers"
	"github.com/men16922/brandy-serverless-sub000/pkg/routes"
)

// Handler provides HTTP endpoints for session operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// CreateRequest is the body for session creation.
type CreateRequest struct {
	BusinessProfile BusinessProfile `json:"business_profile"`
}

// NamesRequest is the body for committing name suggestions.
type NamesRequest struct {
	Suggestions []NameSuggestion `json:"suggestions"`
}

// SelectNameRequest is the body for recording the chosen business name.
type SelectNameRequest struct {
	Name string `json:"name"`
}

// FailRequest carries the explicit failure signal for a session.
type FailRequest struct {
	Reason string `json:"reason"`
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "sessions"),
	}
}

// Routes returns the route group definition for session endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "GET", Pattern: "/{id}/assets", Handler: h.Assets},
			{Method: "GET", Pattern: "/{id}/logs", Handler: h.Logs},
			{Method: "POST", Pattern: "/{id}/analysis", Handler: h.CommitAnalysis},
			{Method: "POST", Pattern: "/{id}/names", Handler: h.CommitNames},
			{Method: "POST", Pattern: "/{id}/names/select", Handler: h.SelectName},
			{Method: "POST", Pattern: "/{id}/complete", Handler: h.Complete},
			{Method: "POST", Pattern: "/{id}/fail", Handler: h.Fail},
		},
	}
}

// Create starts a new workflow session from a business profile.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidProfile)
		return
	}

	s, err := h.sys.Create(r.Context(), req.BusinessProfile)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, s)
}

// Find returns a session by id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Delete removes a session record and its stored artifacts.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), r.PathValue("id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Assets lists the session's stored artifacts with presigned read URLs.
func (h *Handler) Assets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.sys.Assets(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, assets)
}

// Logs returns the session's agent execution records.
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	logs := s.AgentLogs
	if logs == nil {
		logs = []AgentLog{}
	}
	handlers.RespondJSON(w, http.StatusOK, logs)
}

// CommitAnalysis records the analysis result and advances to the naming step.
func (h *Handler) CommitAnalysis(w http.ResponseWriter, r *http.Request) {
	var result AnalysisResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidAnalysis)
		return
	}

	s, err := h.sys.CommitAnalysis(r.Context(), r.PathValue("id"), result, AgentLog{
		Agent:  StepAnalysis.String(),
		Tool:   "commit_analysis",
		Status: LogSuccess,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// CommitNames records name suggestions for the naming step.
func (h *Handler) CommitNames(w http.ResponseWriter, r *http.Request) {
	var req NamesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidNameSet)
		return
	}

	s, err := h.sys.CommitNames(
		r.Context(),
		r.PathValue("id"),
		NameSuggestionSet{Suggestions: req.Suggestions},
		AgentLog{
			Agent:  StepNaming.String(),
			Tool:   "commit_names",
			Status: LogSuccess,
		},
	)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// SelectName records the chosen business name and advances to signboard.
func (h *Handler) SelectName(w http.ResponseWriter, r *http.Request) {
	var req SelectNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidNameSet)
		return
	}

	s, err := h.sys.SelectName(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Complete marks a session at the report step as completed.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.MarkCompleted(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Fail marks a session as failed via an explicit failure signal.
func (h *Handler) Fail(w http.ResponseWriter, r *http.Request) {
	var req FailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = FailRequest{}
	}

	s, err := h.sys.MarkFailed(r.Context(), r.PathValue("id"), req.Reason)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}
