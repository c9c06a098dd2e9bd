package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/copperline/accounts-service/internal/application"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "list_users", err)
		return
	}
	writeSuccess(w, http.StatusOK, users)
}

func (h *Handler) updateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
		return
	}

	var req application.UpdateRoleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	resp, err := h.service.UpdateUserRole(r.Context(), userID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "update_user_role", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}
