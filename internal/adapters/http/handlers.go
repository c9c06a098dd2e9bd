package http

import (
	"net/http"

	"github.com/copperline/accounts-service/internal/application"
)

// Handler exposes the account service over HTTP.
type Handler struct {
	service *application.Service
	ready   func() error
}

// NewHandler builds the HTTP handler. ready reports backing-store health for
// the readiness probe; pass nil when the process has no external checks.
func NewHandler(service *application.Service, ready func() error) *Handler {
	return &Handler{service: service, ready: ready}
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			logHTTPOperationError(r.Context(), "readyz", http.StatusServiceUnavailable, "NOT_READY", "dependency check failed", err)
			writeError(w, http.StatusServiceUnavailable, "NOT_READY", "dependency check failed")
			return
		}
	}
	writeMessage(w, http.StatusOK, "ready")
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing session")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"role":    claims.Role,
	})
}
