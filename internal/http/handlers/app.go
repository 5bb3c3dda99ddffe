package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"pixgen/internal/domain"
	"pixgen/internal/infra"
	"pixgen/internal/metrics"
	"pixgen/internal/middleware"
	"pixgen/internal/service"
	"pixgen/internal/storage"
)

// App bundles the dependencies every handler needs.
type App struct {
	Config  *infra.Config
	Logger  zerolog.Logger
	Metrics *metrics.Registry

	Users  domain.UserRepository
	Models domain.ModelRepository
	Images domain.ImageRepository

	Training   *service.TrainingService
	Generation *service.GenerationService
	Packs      *service.PackService
	Callbacks  *service.CallbackService

	// Presigner is nil when Supabase storage is not configured; the
	// pre-signed-url endpoint then reports the feature as unavailable.
	Presigner *storage.Presigner
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, msg string) {
	a.json(w, code, errorResponse{Error: slug, Message: msg})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// serviceError maps a submission/listing service error onto an HTTP response.
func (a *App) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusPreconditionFailed, "precondition_failed", "referenced resource not found")
	case errors.Is(err, domain.ErrModelNotReady):
		a.error(w, http.StatusPreconditionFailed, "precondition_failed", "model is not ready for generation")
	default:
		a.error(w, http.StatusInternalServerError, "internal", "request failed")
	}
}
