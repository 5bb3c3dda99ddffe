package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pixgen/internal/dispatch"
	"pixgen/internal/domain"
)

// PackService fans one user action out into N generation jobs. All N records
// are inserted before any dispatch is attempted, and the N dispatches are
// independent: one rejection neither cancels nor blocks the others.
type PackService struct {
	packs      domain.PackRepository
	models     domain.ModelRepository
	images     domain.ImageRepository
	dispatcher Dispatcher
	queue      *dispatch.Queue
	logger     zerolog.Logger
}

func NewPackService(packs domain.PackRepository, models domain.ModelRepository, images domain.ImageRepository, dispatcher Dispatcher, queue *dispatch.Queue, logger zerolog.Logger) *PackService {
	return &PackService{
		packs:      packs,
		models:     models,
		images:     images,
		dispatcher: dispatcher,
		queue:      queue,
		logger:     logger.With().Str("service", "pack").Logger(),
	}
}

// List returns the available packs.
func (s *PackService) List(ctx context.Context) ([]domain.Pack, error) {
	return s.packs.List(ctx)
}

// GenerateFromPack resolves the pack's prompts and submits them as a batch.
func (s *PackService) GenerateFromPack(ctx context.Context, userID, modelID, packID string) ([]string, error) {
	if packID == "" {
		return nil, fmt.Errorf("%w: packId required", domain.ErrInvalidInput)
	}
	prompts, err := s.packs.ListPrompts(ctx, packID)
	if err != nil {
		return nil, fmt.Errorf("load pack %s prompts: %w", packID, err)
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("pack %s: %w", packID, domain.ErrNotFound)
	}
	texts := make([]string, len(prompts))
	for i, p := range prompts {
		texts[i] = p.Prompt
	}
	return s.SubmitPrompts(ctx, userID, modelID, texts)
}

// SubmitPrompts creates one Pending image per prompt, in prompt order, then
// enqueues the dispatches. The returned ids are positional: ids[i] belongs to
// prompts[i]. All ids are returned even if some dispatches are never
// accepted by the provider.
func (s *PackService) SubmitPrompts(ctx context.Context, userID, modelID string, prompts []string) ([]string, error) {
	if modelID == "" {
		return nil, fmt.Errorf("%w: modelId required", domain.ErrInvalidInput)
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("%w: prompts required", domain.ErrInvalidInput)
	}

	model, err := s.models.GetByID(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", modelID, err)
	}
	if !model.Ready() {
		return nil, fmt.Errorf("model %s: %w", modelID, domain.ErrModelNotReady)
	}

	images := make([]*domain.GeneratedImage, len(prompts))
	for i, prompt := range prompts {
		images[i] = &domain.GeneratedImage{
			ID:                uuid.NewString(),
			UserID:            userID,
			ModelID:           modelID,
			Prompt:            prompt,
			ProviderRequestID: uuid.NewString(),
			Status:            domain.JobStatusPending,
		}
	}
	if err := s.images.CreateBatch(ctx, images); err != nil {
		return nil, fmt.Errorf("create image batch: %w", err)
	}

	ids := make([]string, len(images))
	for i, image := range images {
		ids[i] = image.ID
		prompt, id := image.Prompt, image.ID
		if err := s.queue.Submit(dispatch.Task{
			Kind:  KindGenerate,
			JobID: id,
			Run: func(ctx context.Context) error {
				return s.dispatcher.SubmitGeneration(ctx, prompt, modelID, id)
			},
		}); err != nil {
			s.logger.Error().Err(err).Str("image_id", id).Msg("pack dispatch not enqueued")
		}
	}

	return ids, nil
}
