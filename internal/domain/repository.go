package domain

import "context"

// ModelRepository defines persistence for training models.
//
// MarkGenerated and MarkFailed are the only status mutations and both are
// idempotent. MarkFailed is success-sticky: it never downgrades a record that
// already reached Generated, returning ErrAlreadyTerminal instead. Both
// return ErrNotFound when no record with the id exists.
type ModelRepository interface {
	Create(ctx context.Context, model *TrainingModel) error
	GetByID(ctx context.Context, id string) (*TrainingModel, error)
	ListVisible(ctx context.Context, userID string) ([]TrainingModel, error)
	MarkGenerated(ctx context.Context, id, tensorPath, thumbnailURL string) error
	MarkFailed(ctx context.Context, id, errMsg string) error
}

// ImageRepository defines persistence for generated images. CreateBatch
// assigns ids in slice order so callers can zip prompts and ids positionally.
// The Mark methods carry the same idempotency contract as ModelRepository.
type ImageRepository interface {
	Create(ctx context.Context, image *GeneratedImage) error
	CreateBatch(ctx context.Context, images []*GeneratedImage) error
	GetByID(ctx context.Context, id string) (*GeneratedImage, error)
	ListByUser(ctx context.Context, userID string, ids []string, limit, offset int) ([]GeneratedImage, error)
	MarkGenerated(ctx context.Context, id, imageURL string) error
	MarkFailed(ctx context.Context, id, errMsg string) error
}

// PackRepository provides read access to curated prompt packs.
type PackRepository interface {
	List(ctx context.Context) ([]Pack, error)
	ListPrompts(ctx context.Context, packID string) ([]PackPrompt, error)
}

// UserRepository defines access methods for users.
type UserRepository interface {
	Upsert(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
