package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/adaptix/adaptix/internal/cache"
	"github.com/adaptix/adaptix/internal/enricher"
	"github.com/adaptix/adaptix/internal/orchestrator"
	"github.com/adaptix/adaptix/internal/signals"
	"github.com/adaptix/adaptix/internal/storage"
	"github.com/adaptix/adaptix/internal/telemetry"
	"github.com/adaptix/adaptix/internal/validation"
)

// HTTPHandler wires the optimization engines to the HTTP surface. The
// validator, cache, publisher and sink are all optional: a nil collaborator
// degrades that concern without affecting optimization results.
type HTTPHandler struct {
	registry  *Registry
	validator *validation.Validator
	enricher  *enricher.Enricher
	profiles  *cache.ProfileCache
	publisher *telemetry.Publisher
	sink      *storage.Sink
}

func NewHTTPHandler(
	registry *Registry,
	validator *validation.Validator,
	e *enricher.Enricher,
	profiles *cache.ProfileCache,
	publisher *telemetry.Publisher,
	sink *storage.Sink,
) *HTTPHandler {
	return &HTTPHandler{
		registry:  registry,
		validator: validator,
		enricher:  e,
		profiles:  profiles,
		publisher: publisher,
		sink:      sink,
	}
}

type OptimizeRequest struct {
	SiteKey   string                          `json:"site_key"`
	SessionID string                          `json:"session_id"`
	Behavior  signals.BehaviorSignal          `json:"behavior"`
	Device    signals.DeviceCapabilityProfile `json:"device"`
	Path      signals.NavigationPath          `json:"path"`
	Metrics   signals.UXMetrics               `json:"metrics"`
}

type OutcomeRequest struct {
	SiteKey     string                `json:"site_key"`
	SessionID   string                `json:"session_id"`
	Adjustments signals.AdjustmentSet `json:"adjustments"`
	Metrics     signals.UXMetrics     `json:"metrics"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HandleOptimize runs one full optimization pass for a session.
func (h *HTTPHandler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	siteID, ok := h.authorize(w, r, req.SiteKey)
	if !ok {
		return
	}

	userAgent := r.Header.Get("User-Agent")
	reqCtx := h.enricher.Enrich(userAgent, clientIP(r))

	// Fall back to agent-derived device class when the collector sent none.
	if req.Device.Class == "" {
		req.Device.Class = reqCtx.DeviceClass
	}

	sess := h.registry.Get(req.SessionID)
	profile := sess.Observe(orchestrator.Inputs{
		UserAgent: userAgent,
		Behavior:  req.Behavior,
		Device:    req.Device,
		Path:      req.Path,
		Metrics:   req.Metrics,
	})

	if err := h.profiles.Set(r.Context(), profile); err != nil {
		log.Warn().Err(err).Str("session_id", req.SessionID).Msg("Failed to cache profile")
	}
	h.sink.AddProfile(siteID, req.Device.Class, profile)
	h.publisher.Publish(telemetry.Event{
		Name:        "profile_computed",
		SiteID:      siteID,
		SessionID:   req.SessionID,
		Persona:     string(profile.Persona.Variant),
		Confidence:  profile.Persona.Confidence,
		DeviceClass: string(req.Device.Class),
		IntentStage: string(profile.Intent.Stage),
		IntentScore: profile.Intent.Score,
		Properties: map[string]interface{}{
			"country": reqCtx.Country,
			"city":    reqCtx.City,
			"browser": reqCtx.Browser,
		},
	})

	writeJSON(w, http.StatusOK, profile)
}

// HandleOutcome records the metrics observed after an adjustment set was
// applied, feeding the session's learning loop.
func (h *HTTPHandler) HandleOutcome(w http.ResponseWriter, r *http.Request) {
	var req OutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	siteID, ok := h.authorize(w, r, req.SiteKey)
	if !ok {
		return
	}

	sess := h.registry.Get(req.SessionID)
	sess.RecordOutcome(req.Adjustments, req.Metrics)

	history := sess.Optimizer().OutcomeHistory()
	if len(history) > 0 {
		h.sink.AddOutcome(siteID, req.SessionID, history[len(history)-1])
	}
	h.publisher.Publish(telemetry.Event{
		Name:      "outcome_recorded",
		SiteID:    siteID,
		SessionID: req.SessionID,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleGetProfile serves the latest profile for a session, preferring the
// live session state and falling back to the redis cache.
func (h *HTTPHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	if sess, ok := h.registry.Lookup(sessionID); ok {
		if profile, ok := sess.Snapshot(); ok {
			writeJSON(w, http.StatusOK, profile)
			return
		}
	}

	profile, err := h.profiles.Get(r.Context(), sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Profile cache lookup failed")
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "No profile for session")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// authorize resolves the site key and applies the rate limit. With no
// validator configured the service runs open (development mode) and the
// site ID is empty.
func (h *HTTPHandler) authorize(w http.ResponseWriter, r *http.Request, siteKey string) (string, bool) {
	if h.validator == nil {
		return "", true
	}

	siteID, err := h.validator.ValidateSiteKey(r.Context(), siteKey)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid site key")
		return "", false
	}
	if !h.validator.CheckRateLimit(siteID) {
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
		return "", false
	}
	return siteID, true
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Site-Key")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}
