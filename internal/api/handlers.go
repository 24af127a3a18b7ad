package api

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ekosolar/lead-pipeline/internal/pkg/httputil"
	"github.com/ekosolar/lead-pipeline/internal/service/dispatch"
)

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// submitResponse is the intake response body. Channel outcomes are
// included so the site can tell a clean send from a degraded one.
type submitResponse struct {
	LeadID         string   `json:"lead_id"`
	Priority       string   `json:"priority"`
	PartialSuccess bool     `json:"partial_success"`
	Channels       []string `json:"channels_succeeded"`
}

// SubmitLead handles POST /api/leads.
func (h *Handlers) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var sub dispatch.Submission
	if !httputil.Decode(w, r, &sub) {
		return
	}
	// RealIP middleware has already rewritten RemoteAddr from the
	// forwarding headers. The limiter keys on this, not on body fields.
	sub.RemoteIP = clientAddr(r)

	result, err := h.service.Dispatch(r.Context(), sub)
	switch {
	case errors.Is(err, dispatch.ErrValidation):
		httputil.BadRequest(w, err.Error())
		return
	case errors.Is(err, dispatch.ErrRateLimited):
		httputil.TooManyRequests(w, "too many submissions, please wait a minute")
		return
	case errors.Is(err, dispatch.ErrAllChannelsFailed):
		// The lead is stored; delivery can be retried out of band.
		httputil.BadGateway(w, "lead received but notifications are currently failing")
		return
	case err != nil:
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, submitResponse{
		LeadID:         result.LeadID,
		Priority:       string(result.Score.Priority),
		PartialSuccess: result.PartialSuccess,
		Channels:       result.SucceededChannels(),
	})
}

// LeadEngagement handles GET /api/leads/{id}/engagement.
func (h *Handlers) LeadEngagement(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "id")

	summary, err := h.service.Engagement(r.Context(), leadID)
	if errors.Is(err, dispatch.ErrLeadNotFound) {
		httputil.NotFound(w, "lead not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, summary)
}

// clientAddr strips the port from RemoteAddr when one is present.
func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type pushTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// RegisterPushToken handles POST /api/push-token.
func (h *Handlers) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	if h.tokens == nil {
		httputil.Error(w, http.StatusNotImplemented, "push notifications are not configured")
		return
	}

	var req pushTokenRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Token == "" {
		httputil.BadRequest(w, "token is required")
		return
	}

	if err := h.tokens.Register(r.Context(), req.Token, req.Platform); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"status": "registered"})
}
