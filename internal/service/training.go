package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pixgen/internal/dispatch"
	"pixgen/internal/domain"
)

// TrainingInput carries a validated training submission. The categorical
// descriptors are stored verbatim; only the provider cares about them.
type TrainingInput struct {
	Name      string
	Type      domain.ModelType
	Age       int
	Ethnicity string
	EyeColor  string
	Bald      bool
	ZipURL    string
}

func (in TrainingInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	if in.ZipURL == "" {
		return fmt.Errorf("%w: zipUrl required", domain.ErrInvalidInput)
	}
	switch in.Type {
	case domain.ModelTypeMan, domain.ModelTypeWoman, domain.ModelTypeOthers:
	default:
		return fmt.Errorf("%w: unknown model type %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Age < 0 {
		return fmt.Errorf("%w: age must be non-negative", domain.ErrInvalidInput)
	}
	return nil
}

// TrainingService creates training records and hands their dispatch to the
// queue. The record exists, with its id committed, before the dispatch task
// is enqueued; dispatch failures are observable only in logs and metrics.
type TrainingService struct {
	models     domain.ModelRepository
	dispatcher Dispatcher
	queue      *dispatch.Queue
	logger     zerolog.Logger
}

func NewTrainingService(models domain.ModelRepository, dispatcher Dispatcher, queue *dispatch.Queue, logger zerolog.Logger) *TrainingService {
	return &TrainingService{
		models:     models,
		dispatcher: dispatcher,
		queue:      queue,
		logger:     logger.With().Str("service", "training").Logger(),
	}
}

// Submit persists a Pending model and returns its id immediately. The
// provider dispatch runs detached; if it never succeeds the record stays
// Pending, which is the accepted orphan tradeoff for not blocking callers on
// the provider round-trip.
func (s *TrainingService) Submit(ctx context.Context, userID string, in TrainingInput) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	model := &domain.TrainingModel{
		ID:                uuid.NewString(),
		UserID:            userID,
		Name:              in.Name,
		Type:              in.Type,
		Age:               in.Age,
		Ethnicity:         in.Ethnicity,
		EyeColor:          in.EyeColor,
		Bald:              in.Bald,
		ZipURL:            in.ZipURL,
		TriggerWord:       TriggerWord(in.Name),
		ProviderRequestID: uuid.NewString(),
		Status:            domain.JobStatusPending,
	}
	if err := s.models.Create(ctx, model); err != nil {
		return "", fmt.Errorf("create training model: %w", err)
	}

	zipURL, trigger, id := model.ZipURL, model.TriggerWord, model.ID
	if err := s.queue.Submit(dispatch.Task{
		Kind:  KindTrain,
		JobID: id,
		Run: func(ctx context.Context) error {
			return s.dispatcher.SubmitTraining(ctx, zipURL, trigger, id)
		},
	}); err != nil {
		s.logger.Error().Err(err).Str("model_id", id).Msg("training dispatch not enqueued")
	}

	return model.ID, nil
}
