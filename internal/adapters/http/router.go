package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/copperline/accounts-service/internal/domain"
)

// NewRouter wires every route of the service. Admin routes stack the auth
// middleware with an admin role gate; /me only needs a valid session.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)

	r.Post("/register", h.register)
	r.Post("/login", h.login)

	r.Get("/oauth/authorize", h.oauthAuthorize)
	r.Get("/oauth/callback", h.oauthCallback)

	r.Post("/reset", h.requestPasswordReset)
	r.Post("/reset/{token}", h.resetPassword)

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware)
		r.Get("/me", h.me)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware)
		r.Use(requireRole(domain.RoleAdmin))
		r.Get("/users", h.listUsers)
		r.Patch("/users/{id}", h.updateUserRole)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	return r
}
