package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pixgen/internal/domain"
)

// ModelRepositoryPG implements domain.ModelRepository backed by PostgreSQL.
type ModelRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewModelRepository creates a new model repository.
func NewModelRepository(pool *pgxpool.Pool) *ModelRepositoryPG {
	return &ModelRepositoryPG{pool: pool}
}

const modelColumns = `id, user_id, name, type, age, ethnicity, eye_color, bald, zip_url, trigger_word, provider_request_id, status, tensor_path, thumbnail_url, error_message, open, created_at, updated_at`

// Create inserts a new training model record in Pending status.
func (r *ModelRepositoryPG) Create(ctx context.Context, model *domain.TrainingModel) error {
	query := `
INSERT INTO models (id, user_id, name, type, age, ethnicity, eye_color, bald, zip_url, trigger_word, provider_request_id, status, open)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`
	_, err := r.pool.Exec(ctx, query,
		model.ID,
		model.UserID,
		model.Name,
		model.Type,
		model.Age,
		model.Ethnicity,
		model.EyeColor,
		model.Bald,
		model.ZipURL,
		model.TriggerWord,
		model.ProviderRequestID,
		model.Status,
		model.Open,
	)
	return err
}

// GetByID fetches a model by its identifier.
func (r *ModelRepositoryPG) GetByID(ctx context.Context, id string) (*domain.TrainingModel, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+modelColumns+` FROM models WHERE id = $1;`, id)
	return scanModel(row)
}

// ListVisible returns the user's own models plus publicly open ones.
func (r *ModelRepositoryPG) ListVisible(ctx context.Context, userID string) ([]domain.TrainingModel, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+modelColumns+`
FROM models
WHERE user_id = $1 OR open = TRUE
ORDER BY created_at DESC;
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []domain.TrainingModel
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, *model)
	}
	return models, rows.Err()
}

// MarkGenerated records a successful training callback. The write is
// idempotent: re-applying the same callback rewrites the same values.
func (r *ModelRepositoryPG) MarkGenerated(ctx context.Context, id, tensorPath, thumbnailURL string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE models
SET status = $2,
    tensor_path = $3,
    thumbnail_url = $4,
    error_message = '',
    updated_at = NOW()
WHERE id = $1;
`, id, domain.JobStatusGenerated, tensorPath, thumbnailURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkFailed records a failed training callback. Success-sticky: a failure
// never downgrades a record that already reached Generated.
func (r *ModelRepositoryPG) MarkFailed(ctx context.Context, id, errMsg string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE models
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
	if err := r.pool.QueryRow(ctx, `SELECT TRUE FROM models WHERE id = $1;`, id).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return domain.ErrAlreadyTerminal
}

func scanModel(row pgx.Row) (*domain.TrainingModel, error) {
	var m domain.TrainingModel
	if err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.Type,
		&m.Age,
		&m.Ethnicity,
		&m.EyeColor,
		&m.Bald,
		&m.ZipURL,
		&m.TriggerWord,
		&m.ProviderRequestID,
		&m.Status,
		&m.TensorPath,
		&m.ThumbnailURL,
		&m.ErrorMessage,
		&m.Open,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
