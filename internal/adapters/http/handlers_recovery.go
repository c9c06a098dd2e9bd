package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/copperline/accounts-service/internal/application"
)

// resetRequestedMessage is returned for every reset request, whether or not
// the email maps to an account, to keep addresses unenumerable.
const resetRequestedMessage = "if that email exists, a reset link has been sent"

func (h *Handler) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeMappedError(r.Context(), w, "request_password_reset", err)
		return
	}
	writeMessage(w, http.StatusOK, resetRequestedMessage)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req application.ResetPasswordRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}
	req.Token = chi.URLParam(r, "token")

	if err := h.service.ResetPassword(r.Context(), req); err != nil {
		writeMappedError(r.Context(), w, "reset_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "password updated")
}
