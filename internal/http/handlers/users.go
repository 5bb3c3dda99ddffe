package handlers

import (
	"encoding/json"
	"net/http"

	"pixgen/internal/domain"
)

type userSyncRequest struct {
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

// UserSync upserts the authenticated user's profile. The id comes from the
// token subject, never the body, so a client cannot write another account.
func (a *App) UserSync(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req userSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	user, err := a.Users.Upsert(r.Context(), &domain.User{
		ID:             userID,
		Username:       req.Username,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to sync user")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":             user.ID,
		"username":       user.Username,
		"profilePicture": user.ProfilePicture,
	})
}
