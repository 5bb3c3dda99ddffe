package handlers

import (
	"encoding/json"
	"net/http"

	"pixgen/internal/domain"
	"pixgen/internal/service"
)

type trainingRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Age       int    `json:"age"`
	Ethnicity string `json:"ethnicity"`
	EyeColor  string `json:"eyeColor"`
	Bald      bool   `json:"bald"`
	ZipURL    string `json:"zipUrl"`
}

type generateRequest struct {
	Prompt  string `json:"prompt"`
	ModelID string `json:"modelId"`
}

type packGenerateRequest struct {
	ModelID string `json:"modelId"`
	PackID  string `json:"packId"`
}

// AITraining accepts a model training submission. The job record is durable
// by the time the id is returned; the provider call happens asynchronously.
func (a *App) AITraining(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req trainingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	id, err := a.Training.Submit(r.Context(), userID, service.TrainingInput{
		Name:      req.Name,
		Type:      domain.ModelType(req.Type),
		Age:       req.Age,
		Ethnicity: req.Ethnicity,
		EyeColor:  req.EyeColor,
		Bald:      req.Bald,
		ZipURL:    req.ZipURL,
	})
	if err != nil {
		a.serviceError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"modelId": id})
}

// AIGenerate accepts a single image generation request against a ready model.
func (a *App) AIGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	id, err := a.Generation.Submit(r.Context(), userID, req.ModelID, req.Prompt)
	if err != nil {
		a.serviceError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"imageId": id})
}

// PackGenerate fans a pack's prompts out as one generation job per prompt.
// The response ids are positional against the pack's prompt order.
func (a *App) PackGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req packGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.ModelID == "" || req.PackID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "modelId and packId required")
		return
	}
	ids, err := a.Packs.GenerateFromPack(r.Context(), userID, req.ModelID, req.PackID)
	if err != nil {
		a.serviceError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"images": ids})
}
