package handlers

import (
	"net/http"

	"github.com/abrezinsky/swipick/internal/auth"
)

// handleLogin checks the admin password and starts a session. The token is
// set as a cookie and also returned for clients that send a bearer header.
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	token, ok := h.Auth.Login(req.Password)
	if !ok {
		h.Log.Warn("Admin login failed", "remote_addr", r.RemoteAddr)
		h.respondError(w, Unauthorized("Invalid password"))
		return
	}

	auth.SetSessionCookie(w, token)
	respondOK(w, LoginResponse{Token: token})
}

// handleLogout invalidates the session and clears the cookie
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r); token != "" {
		h.Auth.Logout(token)
	}

	auth.ClearSessionCookie(w)
	respondSuccess(w, "Logged out")
}
