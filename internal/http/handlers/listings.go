package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"pixgen/internal/domain"
)

type modelResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Age          int       `json:"age"`
	TriggerWord  string    `json:"triggerWord"`
	Status       string    `json:"status"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Open         bool      `json:"open"`
	CreatedAt    time.Time `json:"createdAt"`
}

type imageResponse struct {
	ID        string    `json:"id"`
	ModelID   string    `json:"modelId"`
	Prompt    string    `json:"prompt"`
	Status    string    `json:"status"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type packResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverURL    string `json:"coverUrl"`
}

// ModelsList returns the caller's models plus any marked open for everyone.
func (a *App) ModelsList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	models, err := a.Models.ListVisible(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load models")
		return
	}
	items := make([]modelResponse, 0, len(models))
	for _, m := range models {
		items = append(items, modelResponse{
			ID:           m.ID,
			Name:         m.Name,
			Type:         string(m.Type),
			Age:          m.Age,
			TriggerWord:  m.TriggerWord,
			Status:       string(m.Status),
			ThumbnailURL: m.ThumbnailURL,
			Open:         m.Open,
			CreatedAt:    m.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"models": items})
}

// ImagesBulk lists the caller's images, optionally filtered to specific ids
// via a comma-separated `images` query param. Failed records are excluded by
// the repository so pollers only see work in flight or done.
func (a *App) ImagesBulk(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var ids []string
	if raw := r.URL.Query().Get("images"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)

	images, err := a.Images.ListByUser(r.Context(), userID, ids, limit, offset)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load images")
		return
	}
	items := make([]imageResponse, 0, len(images))
	for _, img := range images {
		items = append(items, toImageResponse(img))
	}
	a.json(w, http.StatusOK, map[string]any{"images": items})
}

// PacksBulk lists the curated prompt packs. Packs are shared catalog data, so
// the route does not require auth.
func (a *App) PacksBulk(w http.ResponseWriter, r *http.Request) {
	packs, err := a.Packs.List(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load packs")
		return
	}
	items := make([]packResponse, 0, len(packs))
	for _, p := range packs {
		items = append(items, packResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			CoverURL:    p.CoverURL,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"packs": items})
}

func toImageResponse(img domain.GeneratedImage) imageResponse {
	return imageResponse{
		ID:        img.ID,
		ModelID:   img.ModelID,
		Prompt:    img.Prompt,
		Status:    string(img.Status),
		ImageURL:  img.ImageURL,
		CreatedAt: img.CreatedAt,
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	return fallback
}
