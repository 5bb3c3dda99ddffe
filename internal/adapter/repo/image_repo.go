package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pixgen/internal/domain"
)

// ImageRepositoryPG implements domain.ImageRepository backed by PostgreSQL.
type ImageRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewImageRepository creates a new image repository.
func NewImageRepository(pool *pgxpool.Pool) *ImageRepositoryPG {
	return &ImageRepositoryPG{pool: pool}
}

const imageColumns = `id, user_id, model_id, prompt, provider_request_id, status, image_url, error_message, created_at, updated_at`

const insertImage = `
INSERT INTO output_images (id, user_id, model_id, prompt, provider_request_id, status)
VALUES ($1, $2, $3, $4, $5, $6);
`

// Create inserts a single image record in Pending status.
func (r *ImageRepositoryPG) Create(ctx context.Context, image *domain.GeneratedImage) error {
	_, err := r.pool.Exec(ctx, insertImage,
		image.ID,
		image.UserID,
		image.ModelID,
		image.Prompt,
		image.ProviderRequestID,
		image.Status,
	)
	return err
}

// CreateBatch inserts all records in one transaction so either every id of a
// pack exists before any dispatch is attempted, or none do.
func (r *ImageRepositoryPG) CreateBatch(ctx context.Context, images []*domain.GeneratedImage) error {
	if len(images) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, image := range images {
		batch.Queue(insertImage,
			image.ID,
			image.UserID,
			image.ModelID,
			image.Prompt,
			image.ProviderRequestID,
			image.Status,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID fetches an image by its identifier.
func (r *ImageRepositoryPG) GetByID(ctx context.Context, id string) (*domain.GeneratedImage, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+imageColumns+` FROM output_images WHERE id = $1;`, id)
	return scanImage(row)
}

// ListByUser returns the user's images newest-first, excluding failed ones.
// When ids is non-empty the result is restricted to those ids.
func (r *ImageRepositoryPG) ListByUser(ctx context.Context, userID string, ids []string, limit, offset int) ([]domain.GeneratedImage, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := `
SELECT ` + imageColumns + `
FROM output_images
WHERE user_id = $1
  AND status <> $2
  AND (cardinality($3::text[]) = 0 OR id = ANY($3::text[]))
ORDER BY created_at DESC
LIMIT $4 OFFSET $5;
`
	if ids == nil {
		ids = []string{}
	}
	rows, err := r.pool.Query(ctx, query, userID, domain.JobStatusFailed, ids, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []domain.GeneratedImage
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, *image)
	}
	return images, rows.Err()
}

// MarkGenerated records a successful generation callback.
func (r *ImageRepositoryPG) MarkGenerated(ctx context.Context, id, imageURL string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE output_images
SET status = $2,
    image_url = $3,
    error_message = '',
    updated_at = NOW()
WHERE id = $1;
`, id, domain.JobStatusGenerated, imageURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkFailed records a failed generation callback, success-sticky like
// ModelRepositoryPG.MarkFailed.
func (r *ImageRepositoryPG) MarkFailed(ctx context.Context, id, errMsg string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE output_images
SET status = $2,
    error_message = $3,
    updated_at = NOW()
WHERE id = $1 AND status <> $4;
`, id, domain.JobStatusFailed, errMsg, domain.JobStatusGenerated)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT TRUE FROM output_images WHERE id = $1;`, id).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return domain.ErrAlreadyTerminal
}

func scanImage(row pgx.Row) (*domain.GeneratedImage, error) {
	var img domain.GeneratedImage
	if err := row.Scan(
		&img.ID,
		&img.UserID,
		&img.ModelID,
		&img.Prompt,
		&img.ProviderRequestID,
		&img.Status,
		&img.ImageURL,
		&img.ErrorMessage,
		&img.CreatedAt,
		&img.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}
