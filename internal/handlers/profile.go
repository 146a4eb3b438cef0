package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleGetProfile returns the KPI of a user for ?mode= (default live)
func (h *Handlers) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	mode, err := parseModeQuery(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	profile, err := h.Profile.GetProfile(r.Context(), chi.URLParam(r, "userID"), mode)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, profile)
}

// handleGetProfileQR serves the share message as a PNG QR code
func (h *Handlers) handleGetProfileQR(w http.ResponseWriter, r *http.Request) {
	mode, err := parseModeQuery(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	png, err := h.Profile.ShareQR(r.Context(), chi.URLParam(r, "userID"), mode)
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}
