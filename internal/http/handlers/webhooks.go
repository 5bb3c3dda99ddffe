package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"pixgen/internal/domain"
	"pixgen/internal/metrics"
	"pixgen/internal/modal"
	"pixgen/internal/service"
)

// maxWebhookBody caps callback payloads well above anything the provider sends.
const maxWebhookBody = 1 << 20

// ModalWebhookTrain receives the terminal callback for a training run.
// Authentication is an HMAC over the raw body; the signature must be checked
// before the JSON is touched. Unknown and duplicate ids still ack with 200 so
// the provider stops retrying.
func (a *App) ModalWebhookTrain(w http.ResponseWriter, r *http.Request) {
	body, ok := a.verifiedBody(w, r, "train")
	if !ok {
		return
	}
	var cb service.TrainingCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Callbacks.HandleTraining(r.Context(), cb); err != nil {
		a.webhookError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": "Webhook received"})
}

// ModalWebhookImage receives the terminal callback for one generated image.
func (a *App) ModalWebhookImage(w http.ResponseWriter, r *http.Request) {
	body, ok := a.verifiedBody(w, r, "image")
	if !ok {
		return
	}
	var cb service.ImageCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Callbacks.HandleImage(r.Context(), cb); err != nil {
		a.webhookError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": "Webhook received"})
}

// verifiedBody reads the raw request body and checks its HMAC signature.
// On failure it writes the 401 itself and reports ok=false.
func (a *App) verifiedBody(w http.ResponseWriter, r *http.Request, kind string) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable body")
		return nil, false
	}
	sig := r.Header.Get(modal.SignatureHeader)
	if !modal.VerifySignature(a.Config.ModalWebhookSecret, body, sig) {
		a.Metrics.WebhookEventsTotal.WithLabelValues(kind, metrics.OutcomeUnauthorized).Inc()
		a.Logger.Warn().Str("kind", kind).Msg("webhook signature rejected")
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid signature")
		return nil, false
	}
	return body, true
}

func (a *App) webhookError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.Logger.Error().Err(err).Msg("webhook apply failed")
	a.error(w, http.StatusInternalServerError, "internal", "failed to apply callback")
}
