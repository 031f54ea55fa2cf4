package postgres

import (
	"context"

	"portfolio/app/models"
	"portfolio/app/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentRepository implements repositories.CommentRepository
type CommentRepository struct {
	pool *pgxpool.Pool
}

func scanComment(row pgx.CollectableRow) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.Date)
	return &c, err
}

// Create inserts the comment. A missing post surfaces as ErrNotFound through the foreign key.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	comment.BeforeCreate()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO comments (post_id, name, email, comment, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		comment.PostID, comment.Name, comment.Email, comment.Body, comment.Date,
	).Scan(&comment.ID)
	return mapError(err)
}

func (r *CommentRepository) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, post_id, name, email, comment, date FROM comments WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanComment)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, post_id, name, email, comment, date FROM comments
		WHERE post_id = $1
		ORDER BY date DESC, id DESC`, postID)
	if err != nil {
		return nil, mapError(err)
	}
	comments, err := pgx.CollectRows(rows, scanComment)
	if err != nil {
		return nil, mapError(err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

func (r *CommentRepository) CountByPost(ctx context.Context, postID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID).Scan(&n)
	return n, mapError(err)
}

func (r *CommentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
