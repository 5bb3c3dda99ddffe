package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"pixgen/internal/dispatch"
	"pixgen/internal/domain"
	"pixgen/internal/infra"
	"pixgen/internal/metrics"
	"pixgen/internal/middleware"
	"pixgen/internal/service"
)

const testSecret = "test-webhook-secret"

type stubModelRepo struct {
	mu     sync.Mutex
	models map[string]*domain.TrainingModel
}

func newStubModelRepo() *stubModelRepo {
	return &stubModelRepo{models: make(map[string]*domain.TrainingModel)}
}

func (r *stubModelRepo) Create(ctx context.Context, model *domain.TrainingModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *model
	r.models[model.ID] = &clone
	return nil
}

func (r *stubModelRepo) GetByID(ctx context.Context, id string) (*domain.TrainingModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	model, ok := r.models[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *model
	return &clone, nil
}

func (r *stubModelRepo) ListVisible(ctx context.Context, userID string) ([]domain.TrainingModel, error) {
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

func (r *stubModelRepo) MarkGenerated(ctx context.Context, id, tensorPath, thumbnailURL string) error {
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

func (r *stubModelRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
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

func (r *stubModelRepo) get(t *testing.T, id string) domain.TrainingModel {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	model, ok := r.models[id]
	if !ok {
		t.Fatalf("model %s not found", id)
	}
	return *model
}

func (r *stubModelRepo) seedReady(id, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[id] = &domain.TrainingModel{
		ID:         id,
		UserID:     userID,
		Status:     domain.JobStatusGenerated,
		TensorPath: "tensors/" + id + ".safetensors",
	}
}

type stubImageRepo struct {
	mu     sync.Mutex
	images map[string]*domain.GeneratedImage
	order  []string
}

func newStubImageRepo() *stubImageRepo {
	return &stubImageRepo{images: make(map[string]*domain.GeneratedImage)}
}

func (r *stubImageRepo) Create(ctx context.Context, image *domain.GeneratedImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *image
	r.images[image.ID] = &clone
	r.order = append(r.order, image.ID)
	return nil
}

func (r *stubImageRepo) CreateBatch(ctx context.Context, images []*domain.GeneratedImage) error {
	for _, image := range images {
		if err := r.Create(ctx, image); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubImageRepo) GetByID(ctx context.Context, id string) (*domain.GeneratedImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	image, ok := r.images[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *image
	return &clone, nil
}

func (r *stubImageRepo) ListByUser(ctx context.Context, userID string, ids []string, limit, offset int) ([]domain.GeneratedImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []domain.GeneratedImage
	for _, id := range r.order {
		image := r.images[id]
		if image.UserID != userID || image.Status == domain.JobStatusFailed {
			continue
		}
		if len(wanted) > 0 && !wanted[id] {
			continue
		}
		out = append(out, *image)
	}
	return out, nil
}

func (r *stubImageRepo) MarkGenerated(ctx context.Context, id, imageURL string) error {
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

func (r *stubImageRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
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

func (r *stubImageRepo) get(t *testing.T, id string) domain.GeneratedImage {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	image, ok := r.images[id]
	if !ok {
		t.Fatalf("image %s not found", id)
	}
	return *image
}

type stubPackRepo struct {
	packs   []domain.Pack
	prompts map[string][]domain.PackPrompt
}

func (r *stubPackRepo) List(ctx context.Context) ([]domain.Pack, error) {
	return r.packs, nil
}

func (r *stubPackRepo) ListPrompts(ctx context.Context, packID string) ([]domain.PackPrompt, error) {
	return r.prompts[packID], nil
}

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

// stubDispatcher accepts everything; handler tests do not assert on provider
// traffic, only on records and responses.
type stubDispatcher struct{}

func (stubDispatcher) SubmitTraining(ctx context.Context, zipURL, triggerWord, modelID string) error {
	return nil
}

func (stubDispatcher) SubmitGeneration(ctx context.Context, prompt, modelID, imageID string) error {
	return nil
}

type testApp struct {
	*App
	models *stubModelRepo
	images *stubImageRepo
	users  *stubUserRepo
	packs  *stubPackRepo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	models := newStubModelRepo()
	images := newStubImageRepo()
	users := newStubUserRepo()
	packs := &stubPackRepo{prompts: make(map[string][]domain.PackPrompt)}

	logger := zerolog.Nop()
	reg := metrics.New(prometheus.NewRegistry())
	queue := dispatch.NewQueue(2, 16, time.Second, logger, reg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = queue.Close(ctx)
	})

	var dispatcher stubDispatcher
	app := &App{
		Config:     &infra.Config{ModalWebhookSecret: testSecret},
		Logger:     logger,
		Metrics:    reg,
		Users:      users,
		Models:     models,
		Images:     images,
		Training:   service.NewTrainingService(models, dispatcher, queue, logger),
		Generation: service.NewGenerationService(models, images, dispatcher, queue, logger),
		Packs:      service.NewPackService(packs, models, images, dispatcher, queue, logger),
		Callbacks:  service.NewCallbackService(models, images, logger, reg),
	}
	return &testApp{App: app, models: models, images: images, users: users, packs: packs}
}

// doJSON runs a handler with an authenticated request carrying the body.
func doJSON(handler http.HandlerFunc, method, target, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req = req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}
