package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"pixgen/internal/domain"
	"pixgen/internal/metrics"
)

// TrainingCallback is the terminal event Modal posts when a training run
// finishes. Status carries the failure marker or a success value; the
// artifact fields are only meaningful on success.
type TrainingCallback struct {
	ModelID      string `json:"modelId"`
	Status       string `json:"status"`
	TensorPath   string `json:"tensorPath"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Error        string `json:"error"`
}

// ImageCallback is the terminal event for one generated image.
type ImageCallback struct {
	ImageID  string `json:"imageId"`
	Status   string `json:"status"`
	ImageURL string `json:"imageUrl"`
	Error    string `json:"error"`
}

// CallbackService applies authenticated provider callbacks to job records.
// It is the sole mutator of job status. The provider may deliver the same
// event twice, deliver events out of order, or reference ids this system has
// never seen; all of those acknowledge cleanly so the provider stops
// retrying. Only storage failures propagate.
type CallbackService struct {
	models  domain.ModelRepository
	images  domain.ImageRepository
	logger  zerolog.Logger
	metrics *metrics.Registry
}

func NewCallbackService(models domain.ModelRepository, images domain.ImageRepository, logger zerolog.Logger, m *metrics.Registry) *CallbackService {
	return &CallbackService{
		models:  models,
		images:  images,
		logger:  logger.With().Str("service", "callback").Logger(),
		metrics: m,
	}
}

// HandleTraining transitions the referenced model to a terminal state.
func (s *CallbackService) HandleTraining(ctx context.Context, cb TrainingCallback) error {
	if cb.ModelID == "" {
		return fmt.Errorf("%w: modelId required", domain.ErrInvalidInput)
	}

	if cb.Status == string(domain.JobStatusFailed) {
		s.logger.Error().Str("model_id", cb.ModelID).Str("provider_error", cb.Error).Msg("training failed")
		err := s.models.MarkFailed(ctx, cb.ModelID, cb.Error)
		return s.settle(KindTrain, cb.ModelID, metrics.OutcomeFailed, err)
	}

	err := s.models.MarkGenerated(ctx, cb.ModelID, cb.TensorPath, cb.ThumbnailURL)
	return s.settle(KindTrain, cb.ModelID, metrics.OutcomeGenerated, err)
}

// HandleImage transitions the referenced image to a terminal state.
func (s *CallbackService) HandleImage(ctx context.Context, cb ImageCallback) error {
	if cb.ImageID == "" {
		return fmt.Errorf("%w: imageId required", domain.ErrInvalidInput)
	}

	if cb.Status == string(domain.JobStatusFailed) {
		s.logger.Error().Str("image_id", cb.ImageID).Str("provider_error", cb.Error).Msg("image generation failed")
		err := s.images.MarkFailed(ctx, cb.ImageID, cb.Error)
		return s.settle(KindGenerate, cb.ImageID, metrics.OutcomeFailed, err)
	}

	err := s.images.MarkGenerated(ctx, cb.ImageID, cb.ImageURL)
	return s.settle(KindGenerate, cb.ImageID, metrics.OutcomeGenerated, err)
}

// settle folds the repository result into the ack-everything contract:
// unknown ids and stale failure deliveries are logged and counted, never
// surfaced, so the provider does not retry against records that will not
// change.
func (s *CallbackService) settle(kind, jobID, outcome string, err error) error {
	switch {
	case err == nil:
		s.count(kind, outcome)
		s.logger.Info().Str("kind", kind).Str("job_id", jobID).Str("outcome", outcome).Msg("callback applied")
		return nil
	case errors.Is(err, domain.ErrNotFound):
		s.count(kind, metrics.OutcomeUnknownJob)
		s.logger.Warn().Str("kind", kind).Str("job_id", jobID).Msg("callback for unknown job")
		return nil
	case errors.Is(err, domain.ErrAlreadyTerminal):
		s.count(kind, metrics.OutcomeDuplicate)
		s.logger.Debug().Str("kind", kind).Str("job_id", jobID).Msg("callback for already-terminal job")
		return nil
	default:
		return fmt.Errorf("apply %s callback for %s: %w", kind, jobID, err)
	}
}

func (s *CallbackService) count(kind, outcome string) {
	if s.metrics != nil {
		s.metrics.WebhookEventsTotal.WithLabelValues(kind, outcome).Inc()
	}
}
