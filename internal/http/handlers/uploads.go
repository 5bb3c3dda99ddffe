package handlers

import "net/http"

// PresignedURL mints a signed upload URL for a training archive. The client
// uploads the zip directly to storage and then submits the returned key's
// public URL with its training request.
func (a *App) PresignedURL(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	if a.Presigner == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "uploads are not configured")
		return
	}
	url, key, err := a.Presigner.SignedUpload()
	if err != nil {
		a.Logger.Error().Err(err).Msg("signed upload url")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create upload url")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"url": url, "key": key})
}
