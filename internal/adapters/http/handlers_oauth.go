package http

import (
	"net/http"
)

// oauthAuthorize starts the authorization-code flow: it seeds per-attempt
// state and sends the browser to the provider's consent page.
func (h *Handler) oauthAuthorize(w http.ResponseWriter, r *http.Request) {
	provider := r.URL.Query().Get("provider")
	redirectURI := r.URL.Query().Get("redirect_uri")

	resp, err := h.service.OAuthAuthorize(r.Context(), provider, redirectURI)
	if err != nil {
		writeMappedError(r.Context(), w, "oauth_authorize", err)
		return
	}
	http.Redirect(w, r, resp.AuthorizeURL, http.StatusFound)
}

// oauthCallback finishes the flow. On success the browser is redirected back
// to the caller with the session token in the URL fragment, which never
// reaches server logs.
func (h *Handler) oauthCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if errCode := query.Get("error"); errCode != "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "provider denied the authorization request")
		return
	}

	resp, err := h.service.OAuthCallback(r.Context(), query.Get("code"), query.Get("state"))
	if err != nil {
		writeMappedError(r.Context(), w, "oauth_callback", err)
		return
	}
	http.Redirect(w, r, resp.RedirectURL, http.StatusFound)
}
