package generation

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/men16922/brandy-serverless-sub000/internal/sessions"
	"github.com/men16922/brandy-serverless-sub000/pkg/handlers"
	"github.com/men16922/brandy-serverless-sub000/pkg/routes"
)

// Handler provides HTTP endpoints for image generation and selection.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// GenerateRequest is the body for the combined generate/select endpoint.
// Action selects the operation; SelectedURL is required for "select".
// The business profile and prior-step artifacts are not part of the request:
// the session record is the source of truth for both, so the handler carries
// only the session id and resolves the rest server-side.
type GenerateRequest struct {
	SessionID   string `json:"session_id"`
	Action      string `json:"action"`
	SelectedURL string `json:"selected_url,omitempty"`
}

// SelectRequest is the body for the dedicated selection endpoint.
type SelectRequest struct {
	SessionID   string `json:"session_id"`
	SelectedURL string `json:"selected_url"`
}

// GenerateResponse reports the committed variants for a fan-out run.
type GenerateResponse struct {
	SessionID      string             `json:"session_id"`
	Step           string             `json:"step"`
	Variants       []sessions.Variant `json:"variants"`
	TotalGenerated int                `json:"total_generated"`
	CanProceed     bool               `json:"can_proceed"`
	Message        string             `json:"message,omitempty"`
}

// SelectResponse confirms a variant selection and the resulting step.
type SelectResponse struct {
	SessionID   string `json:"session_id"`
	SelectedURL string `json:"selected_url"`
	NextStep    string `json:"next_step"`
	CanProceed  bool   `json:"can_proceed"`
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "generation"),
	}
}

// Routes returns the route group definition for generation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/generation",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/generate", Handler: h.Generate},
			{Method: "POST", Pattern: "/select", Handler: h.Select},
		},
	}
}

// Generate dispatches on the request action: "generate" runs the fan-out
// for the session's current step, "select" records a variant choice.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidAction)
		return
	}

	switch req.Action {
	case "", "generate":
		h.generate(w, r, req.SessionID)
	case "select":
		h.selectVariant(w, r, req.SessionID, req.SelectedURL)
	default:
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidAction)
	}
}

// Select records the chosen variant for the session's current step.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, sessions.ErrInvalidVariant)
		return
	}

	h.selectVariant(w, r, req.SessionID, req.SelectedURL)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request, id string) {
	session, outcome, err := h.sys.Generate(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	message := ""
	if outcome.Generated == 0 {
		message = "all variants are fallbacks; providers were unavailable"
	}

	handlers.RespondJSON(w, http.StatusOK, GenerateResponse{
		SessionID:      session.ID,
		Step:           session.CurrentStep.String(),
		Variants:       outcome.Variants,
		TotalGenerated: outcome.Generated,
		CanProceed:     true,
		Message:        message,
	})
}

func (h *Handler) selectVariant(w http.ResponseWriter, r *http.Request, id, url string) {
	session, err := h.sys.Select(r.Context(), id, url)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SelectResponse{
		SessionID:   session.ID,
		SelectedURL: url,
		NextStep:    session.CurrentStep.String(),
		CanProceed:  true,
	})
}
