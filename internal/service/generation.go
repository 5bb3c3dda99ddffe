package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pixgen/internal/dispatch"
	"pixgen/internal/domain"
)

// GenerationService creates single-image generation records. A generation is
// only accepted against a model that finished training: precondition failures
// are returned synchronously and create no record.
type GenerationService struct {
	models     domain.ModelRepository
	images     domain.ImageRepository
	dispatcher Dispatcher
	queue      *dispatch.Queue
	logger     zerolog.Logger
}

func NewGenerationService(models domain.ModelRepository, images domain.ImageRepository, dispatcher Dispatcher, queue *dispatch.Queue, logger zerolog.Logger) *GenerationService {
	return &GenerationService{
		models:     models,
		images:     images,
		dispatcher: dispatcher,
		queue:      queue,
		logger:     logger.With().Str("service", "generation").Logger(),
	}
}

// Submit validates the referenced model, persists a Pending image and
// returns its id. The dispatch runs detached, same as training.
func (s *GenerationService) Submit(ctx context.Context, userID, modelID, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt required", domain.ErrInvalidInput)
	}
	if modelID == "" {
		return "", fmt.Errorf("%w: modelId required", domain.ErrInvalidInput)
	}

	model, err := s.models.GetByID(ctx, modelID)
	if err != nil {
		return "", fmt.Errorf("load model %s: %w", modelID, err)
	}
	if !model.Ready() {
		return "", fmt.Errorf("model %s: %w", modelID, domain.ErrModelNotReady)
	}

	image := &domain.GeneratedImage{
		ID:                uuid.NewString(),
		UserID:            userID,
		ModelID:           modelID,
		Prompt:            prompt,
		ProviderRequestID: uuid.NewString(),
		Status:            domain.JobStatusPending,
	}
	if err := s.images.Create(ctx, image); err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}

	s.enqueue(image)
	return image.ID, nil
}

func (s *GenerationService) enqueue(image *domain.GeneratedImage) {
	prompt, modelID, id := image.Prompt, image.ModelID, image.ID
	if err := s.queue.Submit(dispatch.Task{
		Kind:  KindGenerate,
		JobID: id,
		Run: func(ctx context.Context) error {
			return s.dispatcher.SubmitGeneration(ctx, prompt, modelID, id)
		},
	}); err != nil {
		s.logger.Error().Err(err).Str("image_id", id).Msg("generation dispatch not enqueued")
	}
}
