package postgres

import (
	"context"

	"portfolio/app/models"
	"portfolio/app/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuthorRepository implements repositories.AuthorRepository
type AuthorRepository struct {
	pool *pgxpool.Pool
}

func (r *AuthorRepository) Create(ctx context.Context, author *models.Author) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO authors (first_name, last_name, email) VALUES ($1, $2, $3) RETURNING id`,
		author.FirstName, author.LastName, author.Email,
	).Scan(&author.ID)
	return mapError(err)
}

func (r *AuthorRepository) GetByID(ctx context.Context, id int) (*models.Author, error) {
	var a models.Author
	err := r.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, email FROM authors WHERE id = $1`, id,
	).Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email)
	if err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

func (r *AuthorRepository) FindByEmail(ctx context.Context, email string) (*models.Author, error) {
	var a models.Author
	err := r.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, email FROM authors WHERE lower(email) = lower($1) ORDER BY id LIMIT 1`, email,
	).Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email)
	if err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

// Delete relies on ON DELETE SET NULL to detach the author's posts.
func (r *AuthorRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
