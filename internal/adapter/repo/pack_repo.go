package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"pixgen/internal/domain"
)

// PackRepositoryPG implements domain.PackRepository backed by PostgreSQL.
type PackRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPackRepository creates a new pack repository.
func NewPackRepository(pool *pgxpool.Pool) *PackRepositoryPG {
	return &PackRepositoryPG{pool: pool}
}

// List returns all packs.
func (r *PackRepositoryPG) List(ctx context.Context) ([]domain.Pack, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, name, description, cover_url, created_at
FROM packs
ORDER BY created_at ASC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packs []domain.Pack
	for rows.Next() {
		var p domain.Pack
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CoverURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		packs = append(packs, p)
	}
	return packs, rows.Err()
}

// ListPrompts returns the prompts of a pack in stable insertion order.
func (r *PackRepositoryPG) ListPrompts(ctx context.Context, packID string) ([]domain.PackPrompt, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, pack_id, prompt
FROM pack_prompts
WHERE pack_id = $1
ORDER BY id ASC;
`, packID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []domain.PackPrompt
	for rows.Next() {
		var p domain.PackPrompt
		if err := rows.Scan(&p.ID, &p.PackID, &p.Prompt); err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}
