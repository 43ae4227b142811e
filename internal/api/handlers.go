// Package api exposes the softphone commands over REST. Every
// endpoint drives the store; rejected commands map to 400 or 409 with
// a JSON error body.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dwagner/softphone/internal/auth"
	"github.com/dwagner/softphone/internal/metrics"
	"github.com/dwagner/softphone/internal/notify"
	"github.com/dwagner/softphone/internal/store"
	"github.com/dwagner/softphone/internal/types"
	"github.com/rs/zerolog"
)

// Handler provides the REST endpoints for softphone control
type Handler struct {
	store   *store.Store
	auth    *auth.Service
	broker  *notify.Broker
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(s *store.Store, authSvc *auth.Service, broker *notify.Broker, m *metrics.Metrics, logger zerolog.Logger) *Handler {
	return &Handler{
		store:   s,
		auth:    authSvc,
		broker:  broker,
		metrics: m,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

type loginRequest struct {
	AgentID   string `json:"agentId"`
	Password  string `json:"password"`
	Extension string `json:"extension"`
}

type loginResponse struct {
	Token    string         `json:"token"`
	Snapshot types.Snapshot `json:"snapshot"`
}

// Login handles POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.Login(req.AgentID, req.Password, req.Extension); err != nil {
		h.handleCommandError(w, "login", err)
		return
	}

	token, err := h.auth.IssueToken(req.AgentID, req.Extension)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue session token")
		h.writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.metrics.RecordCommand("login", "ok")
	h.logger.Info().Str("agent_id", req.AgentID).Str("extension", req.Extension).Msg("agent logged in")

	h.writeJSON(w, http.StatusOK, loginResponse{
		Token:    token,
		Snapshot: h.store.Snapshot(),
	})
}

// Logout handles POST /api/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.store.Logout()
	h.metrics.RecordCommand("logout", "ok")
	h.logger.Info().Msg("agent logged out")
	h.writeSnapshot(w)
}

type statusRequest struct {
	Status   string `json:"status"`
	ReasonID string `json:"reasonId,omitempty"`
}

// SetStatus handles POST /api/status
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var reason *types.NotReadyReason
	if req.ReasonID != "" {
		found, ok := types.ReasonByID(req.ReasonID)
		if !ok {
			h.writeError(w, http.StatusBadRequest, "unknown reason: "+req.ReasonID)
			return
		}
		reason = &found
	}

	if err := h.store.SetAgentStatus(types.AgentStatus(req.Status), reason); err != nil {
		h.handleCommandError(w, "set_status", err)
		return
	}

	h.metrics.RecordCommand("set_status", "ok")
	h.writeSnapshot(w)
}

type dialpadRequest struct {
	Value string `json:"value"`
}

// SetDialpad handles POST /api/dialpad
func (h *Handler) SetDialpad(w http.ResponseWriter, r *http.Request) {
	var req dialpadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.store.SetDialpad(req.Value)
	h.writeSnapshot(w)
}

// ClearDialpad handles DELETE /api/dialpad
func (h *Handler) ClearDialpad(w http.ResponseWriter, r *http.Request) {
	h.store.ClearDialpad()
	h.writeSnapshot(w)
}

type callRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// MakeCall handles POST /api/call
func (h *Handler) MakeCall(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.MakeCall(req.PhoneNumber); err != nil {
		h.handleCommandError(w, "make_call", err)
		return
	}

	h.metrics.RecordCommand("make_call", "ok")
	h.metrics.RecordCallStarted(string(types.DirectionOutbound))
	h.writeSnapshot(w)
}

// AnswerCall handles POST /api/call/answer
func (h *Handler) AnswerCall(w http.ResponseWriter, r *http.Request) {
	if err := h.store.AnswerCall(); err != nil {
		h.handleCommandError(w, "answer_call", err)
		return
	}
	h.metrics.RecordCommand("answer_call", "ok")
	h.writeSnapshot(w)
}

// EndCall handles POST /api/call/end
func (h *Handler) EndCall(w http.ResponseWriter, r *http.Request) {
	before := h.store.Snapshot()

	if err := h.store.EndCall(); err != nil {
		h.handleCommandError(w, "end_call", err)
		return
	}

	h.metrics.RecordCommand("end_call", "ok")
	if before.Call != nil {
		h.metrics.RecordCallEnded(time.Duration(before.Call.Duration) * time.Second)
	}
	h.writeSnapshot(w)
}

// HoldCall handles POST /api/call/hold
func (h *Handler) HoldCall(w http.ResponseWriter, r *http.Request) {
	if err := h.store.HoldCall(); err != nil {
		h.handleCommandError(w, "hold_call", err)
		return
	}
	h.metrics.RecordCommand("hold_call", "ok")
	h.writeSnapshot(w)
}

// UnholdCall handles POST /api/call/unhold
func (h *Handler) UnholdCall(w http.ResponseWriter, r *http.Request) {
	if err := h.store.UnholdCall(); err != nil {
		h.handleCommandError(w, "unhold_call", err)
		return
	}
	h.metrics.RecordCommand("unhold_call", "ok")
	h.writeSnapshot(w)
}

type destinationRequest struct {
	Destination string `json:"destination"`
}

// TransferCall handles POST /api/call/transfer
func (h *Handler) TransferCall(w http.ResponseWriter, r *http.Request) {
	var req destinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.TransferCall(req.Destination); err != nil {
		h.handleCommandError(w, "transfer_call", err)
		return
	}
	h.metrics.RecordCommand("transfer_call", "ok")
	h.writeSnapshot(w)
}

// ConferenceCall handles POST /api/call/conference
func (h *Handler) ConferenceCall(w http.ResponseWriter, r *http.Request) {
	var req destinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.ConferenceCall(req.Destination); err != nil {
		h.handleCommandError(w, "conference_call", err)
		return
	}
	h.metrics.RecordCommand("conference_call", "ok")
	h.writeSnapshot(w)
}

// ToggleMute handles POST /api/mute
func (h *Handler) ToggleMute(w http.ResponseWriter, r *http.Request) {
	h.store.ToggleMute()
	h.writeSnapshot(w)
}

// ToggleTranscriptCollapse handles POST /api/transcript/collapse
func (h *Handler) ToggleTranscriptCollapse(w http.ResponseWriter, r *http.Request) {
	h.store.ToggleTranscriptCollapse()
	h.writeSnapshot(w)
}

// GetSnapshot handles GET /api/snapshot
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w)
}

// GetReasons handles GET /api/reasons
func (h *Handler) GetReasons(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"reasons": types.DefaultNotReadyReasons,
	})
}

// GetNotices handles GET /api/notices
func (h *Handler) GetNotices(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"notices": h.broker.Recent(),
	})
}

// handleCommandError maps store errors to HTTP status codes
func (h *Handler) handleCommandError(w http.ResponseWriter, command string, err error) {
	h.metrics.RecordCommand(command, "rejected")

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrMissingCredentials),
		errors.Is(err, store.ErrEmptyDestination):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrCallInProgress),
		errors.Is(err, store.ErrAgentNotReady),
		errors.Is(err, store.ErrInvalidTransition):
		status = http.StatusConflict
	}

	h.logger.Debug().Err(err).Str("command", command).Int("status", status).Msg("command rejected")
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeSnapshot(w http.ResponseWriter) {
	h.writeJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
