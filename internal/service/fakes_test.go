package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"pixgen/internal/dispatch"
	"pixgen/internal/domain"

	"github.com/rs/zerolog"
)

type fakeModelRepo struct {
	mu     sync.Mutex
	models map[string]*domain.TrainingModel
}

func newFakeModelRepo() *fakeModelRepo {
	return &fakeModelRepo{models: make(map[string]*domain.TrainingModel)}
}

func (r *fakeModelRepo) Create(ctx context.Context, model *domain.TrainingModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *model
	r.models[model.ID] = &clone
	return nil
}

func (r *fakeModelRepo) GetByID(ctx context.Context, id string) (*domain.TrainingModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	model, ok := r.models[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *model
	return &clone, nil
}

func (r *fakeModelRepo) ListVisible(ctx context.Context, userID string) ([]domain.TrainingModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TrainingModel
	for _, m := range r.models {
		if m.UserID == userID || m.Open {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeModelRepo) MarkGenerated(ctx context.Context, id, tensorPath, thumbnailURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	model, ok := r.models[id]
	if !ok {
		return domain.ErrNotFound
	}
	model.Status = domain.JobStatusGenerated
	model.TensorPath = tensorPath
	model.ThumbnailURL = thumbnailURL
	model.ErrorMessage = ""
	return nil
}

func (r *fakeModelRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	model, ok := r.models[id]
	if !ok {
		return domain.ErrNotFound
	}
	if model.Status == domain.JobStatusGenerated {
		return domain.ErrAlreadyTerminal
	}
	model.Status = domain.JobStatusFailed
	model.ErrorMessage = errMsg
	return nil
}

func (r *fakeModelRepo) has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.models[id]
	return ok
}

func (r *fakeModelRepo) seedReady(id, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[id] = &domain.TrainingModel{
		ID:         id,
		UserID:     userID,
		Status:     domain.JobStatusGenerated,
		TensorPath: "tensors/" + id + ".safetensors",
	}
}

type fakeImageRepo struct {
	mu     sync.Mutex
	images map[string]*domain.GeneratedImage
	order  []string
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: make(map[string]*domain.GeneratedImage)}
}

func (r *fakeImageRepo) Create(ctx context.Context, image *domain.GeneratedImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *image
	r.images[image.ID] = &clone
	r.order = append(r.order, image.ID)
	return nil
}

func (r *fakeImageRepo) CreateBatch(ctx context.Context, images []*domain.GeneratedImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, image := range images {
		clone := *image
		r.images[image.ID] = &clone
		r.order = append(r.order, image.ID)
	}
	return nil
}

func (r *fakeImageRepo) GetByID(ctx context.Context, id string) (*domain.GeneratedImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	image, ok := r.images[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *image
	return &clone, nil
}

func (r *fakeImageRepo) ListByUser(ctx context.Context, userID string, ids []string, limit, offset int) ([]domain.GeneratedImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.GeneratedImage
	for _, id := range r.order {
		image := r.images[id]
		if image.UserID == userID && image.Status != domain.JobStatusFailed {
			out = append(out, *image)
		}
	}
	return out, nil
}

func (r *fakeImageRepo) MarkGenerated(ctx context.Context, id, imageURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	image, ok := r.images[id]
	if !ok {
		return domain.ErrNotFound
	}
	image.Status = domain.JobStatusGenerated
	image.ImageURL = imageURL
	image.ErrorMessage = ""
	return nil
}

func (r *fakeImageRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	image, ok := r.images[id]
	if !ok {
		return domain.ErrNotFound
	}
	if image.Status == domain.JobStatusGenerated {
		return domain.ErrAlreadyTerminal
	}
	image.Status = domain.JobStatusFailed
	image.ErrorMessage = errMsg
	return nil
}

func (r *fakeImageRepo) has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.images[id]
	return ok
}

func (r *fakeImageRepo) get(t *testing.T, id string) domain.GeneratedImage {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	image, ok := r.images[id]
	if !ok {
		t.Fatalf("image %s not found", id)
	}
	return *image
}

type fakePackRepo struct {
	packs   []domain.Pack
	prompts map[string][]domain.PackPrompt
}

func (r *fakePackRepo) List(ctx context.Context) ([]domain.Pack, error) {
	return r.packs, nil
}

func (r *fakePackRepo) ListPrompts(ctx context.Context, packID string) ([]domain.PackPrompt, error) {
	return r.prompts[packID], nil
}

type trainCall struct {
	ZipURL      string
	TriggerWord string
	ModelID     string
	RecordSeen  bool
}

type genCall struct {
	Prompt     string
	ModelID    string
	ImageID    string
	RecordSeen bool
}

// fakeDispatcher stands in for the provider. Each call notes whether the job
// record already existed in the paired repo at dispatch time, which is how
// the id-before-dispatch ordering is asserted.
type fakeDispatcher struct {
	mu         sync.Mutex
	trainCalls []trainCall
	genCalls   []genCall

	models *fakeModelRepo
	images *fakeImageRepo

	failGeneration map[string]error
	failTraining   error

	observed chan struct{}
}

func newFakeDispatcher(models *fakeModelRepo, images *fakeImageRepo) *fakeDispatcher {
	return &fakeDispatcher{
		models:         models,
		images:         images,
		failGeneration: make(map[string]error),
		observed:       make(chan struct{}, 64),
	}
}

func (d *fakeDispatcher) SubmitTraining(ctx context.Context, zipURL, triggerWord, modelID string) error {
	d.mu.Lock()
	d.trainCalls = append(d.trainCalls, trainCall{
		ZipURL:      zipURL,
		TriggerWord: triggerWord,
		ModelID:     modelID,
		RecordSeen:  d.models != nil && d.models.has(modelID),
	})
	err := d.failTraining
	d.mu.Unlock()
	d.observed <- struct{}{}
	return err
}

func (d *fakeDispatcher) SubmitGeneration(ctx context.Context, prompt, modelID, imageID string) error {
	d.mu.Lock()
	d.genCalls = append(d.genCalls, genCall{
		Prompt:     prompt,
		ModelID:    modelID,
		ImageID:    imageID,
		RecordSeen: d.images != nil && d.images.has(imageID),
	})
	err := d.failGeneration[prompt]
	d.mu.Unlock()
	d.observed <- struct{}{}
	return err
}

// waitCalls blocks until n dispatches completed or the test times out.
func (d *fakeDispatcher) waitCalls(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-d.observed:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for dispatch %d of %d", i+1, n)
		}
	}
}

func newTestQueue(t *testing.T) *dispatch.Queue {
	t.Helper()
	q := dispatch.NewQueue(4, 32, time.Second, zerolog.Nop(), nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = q.Close(ctx)
	})
	return q
}
