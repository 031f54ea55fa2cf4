package postgres

import (
	"context"

	"portfolio/app/models"
	"portfolio/app/query"
	"portfolio/app/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TagRepository implements repositories.TagRepository
type TagRepository struct {
	pool *pgxpool.Pool
}

func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tags (caption) VALUES ($1) RETURNING id`, tag.Caption,
	).Scan(&tag.ID)
	return mapError(err)
}

func (r *TagRepository) GetByID(ctx context.Context, id int) (*models.Tag, error) {
	var t models.Tag
	err := r.pool.QueryRow(ctx, `SELECT id, caption FROM tags WHERE id = $1`, id).Scan(&t.ID, &t.Caption)
	if err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}

func (r *TagRepository) FindByCaption(ctx context.Context, caption string) (*models.Tag, error) {
	var t models.Tag
	err := r.pool.QueryRow(ctx,
		`SELECT id, caption FROM tags WHERE caption = $1 ORDER BY id LIMIT 1`, caption,
	).Scan(&t.ID, &t.Caption)
	if err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}

func (r *TagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, caption FROM tags ORDER BY id`)
	if err != nil {
		return nil, mapError(err)
	}
	tags, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Tag, error) {
		var t models.Tag
		err := row.Scan(&t.ID, &t.Caption)
		return &t, err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return tags, nil
}

// Counts aggregates in SQL and re-sorts in Go so caption ties break by byte order on
// every store regardless of the database collation.
func (r *TagRepository) Counts(ctx context.Context) ([]models.TagCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.caption, COUNT(DISTINCT pt.post_id) AS post_count
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		GROUP BY t.id, t.caption
		HAVING COUNT(DISTINCT pt.post_id) > 0`)
	if err != nil {
		return nil, mapError(err)
	}
	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.TagCount, error) {
		var tc models.TagCount
		err := row.Scan(&tc.ID, &tc.Caption, &tc.PostCount)
		return tc, err
	})
	if err != nil {
		return nil, mapError(err)
	}
	query.SortTagCounts(counts)
	return counts, nil
}

// Delete relies on ON DELETE CASCADE to drop the post_tags rows.
func (r *TagRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
