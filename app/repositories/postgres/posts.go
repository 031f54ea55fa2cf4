package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"portfolio/app/models"
	"portfolio/app/query"
	"portfolio/app/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postColumns = `p.id, p.title, p.slug, p.content, p.date, p.image, p.excerpt, p.author_id,
	a.first_name, a.last_name, a.email`

const postFrom = `FROM posts p LEFT JOIN authors a ON a.id = p.author_id`

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostRepository implements repositories.PostRepository
type PostRepository struct {
	pool *pgxpool.Pool
}

func scanPost(row pgx.CollectableRow) (*models.Post, error) {
	var (
		p                  models.Post
		first, last, email *string
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Date, &p.Image, &p.Excerpt, &p.AuthorID,
		&first, &last, &email)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != nil && first != nil {
		p.Author = &models.Author{ID: *p.AuthorID, FirstName: *first, LastName: *last, Email: *email}
	}
	p.TagIDs = []int{}
	p.Tags = []*models.Tag{}
	return &p, nil
}

// selectPosts runs sql and attaches tags to every returned post.
func selectPosts(ctx context.Context, q querier, sql string, args ...any) ([]*models.Post, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	posts, err := pgx.CollectRows(rows, scanPost)
	if err != nil {
		return nil, mapError(err)
	}
	if err := attachTags(ctx, q, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func attachTags(ctx context.Context, q querier, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[int]*models.Post, len(posts))
	ids := make([]int, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := q.Query(ctx, `
		SELECT pt.post_id, t.id, t.caption
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1)
		ORDER BY pt.post_id, t.id`, ids)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID int
			t      models.Tag
		)
		if err := rows.Scan(&postID, &t.ID, &t.Caption); err != nil {
			return err
		}
		if p, ok := byID[postID]; ok {
			p.TagIDs = append(p.TagIDs, t.ID)
			p.Tags = append(p.Tags, &t)
		}
	}
	return rows.Err()
}

func (r *PostRepository) getOne(ctx context.Context, where string, arg any) (*models.Post, error) {
	posts, err := selectPosts(ctx, r.pool, `SELECT `+postColumns+` `+postFrom+` WHERE `+where, arg)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, repositories.ErrNotFound
	}
	return posts[0], nil
}

// Create inserts the post and its tag links in one transaction.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	post.BeforeCreate()
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO posts (title, slug, content, date, image, excerpt, author_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			post.Title, post.Slug, post.Content, post.Date, post.Image, post.Excerpt, post.AuthorID,
		).Scan(&post.ID)
		if err != nil {
			return mapError(err)
		}
		if err := linkTags(ctx, tx, post.ID, post.TagIDs); err != nil {
			return err
		}
		return hydrate(ctx, tx, post)
	})
}

func linkTags(ctx context.Context, tx pgx.Tx, postID int, tagIDs []int) error {
	for _, tagID := range tagIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, postID, tagID)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

// hydrate reloads post's relations from the database.
func hydrate(ctx context.Context, q querier, post *models.Post) error {
	fresh, err := selectPosts(ctx, q, `SELECT `+postColumns+` `+postFrom+` WHERE p.id = $1`, post.ID)
	if err != nil {
		return err
	}
	if len(fresh) == 0 {
		return repositories.ErrNotFound
	}
	post.Author = fresh[0].Author
	post.TagIDs = fresh[0].TagIDs
	post.Tags = fresh[0].Tags
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	return r.getOne(ctx, `p.id = $1`, id)
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return r.getOne(ctx, `p.slug = $1`, slug)
}

func (r *PostRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&ok)
	return ok, mapError(err)
}

// Search translates the plan into SQL: ILIKE over the text columns for the search term and
// an EXISTS probe on the tag join for the tag filter.
func (r *PostRepository) Search(ctx context.Context, plan query.Plan) ([]*models.Post, error) {
	sql, args := searchSQL(plan)
	return selectPosts(ctx, r.pool, sql, args...)
}

func searchSQL(plan query.Plan) (string, []any) {
	var (
		where []string
		args  []any
	)
	if plan.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(plan.Search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.content ILIKE $%d OR p.excerpt ILIKE $%d)", n, n, n))
	}
	if plan.Tag != "" {
		args = append(args, plan.Tag)
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND lower(t.caption) = $%d)`, len(args)))
	}

	sql := `SELECT DISTINCT ` + postColumns + ` ` + postFrom
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, ` AND `)
	}
	sql += ` ORDER BY p.date DESC, p.id DESC`
	return sql, args
}

func (r *PostRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Post, error) {
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}
	return selectPosts(ctx, r.pool,
		`SELECT `+postColumns+` `+postFrom+` WHERE p.id = ANY($1) ORDER BY p.id`, ids)
}

// Recent returns up to limit posts, newest first. A negative limit returns all of them.
func (r *PostRepository) Recent(ctx context.Context, limit int) ([]*models.Post, error) {
	var lim *int
	if limit >= 0 {
		lim = &limit
	}
	return selectPosts(ctx, r.pool,
		`SELECT `+postColumns+` `+postFrom+` ORDER BY p.date DESC, p.id DESC LIMIT $1`, lim)
}

func (r *PostRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n)
	return n, mapError(err)
}

// Update rewrites the row and replaces the tag links.
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE posts SET title = $2, slug = $3, content = $4, date = $5, image = $6, excerpt = $7, author_id = $8
			WHERE id = $1`,
			post.ID, post.Title, post.Slug, post.Content, post.Date, post.Image, post.Excerpt, post.AuthorID)
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return repositories.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM post_tags WHERE post_id = $1`, post.ID); err != nil {
			return mapError(err)
		}
		ids := append([]int(nil), post.TagIDs...)
		sort.Ints(ids)
		if err := linkTags(ctx, tx, post.ID, ids); err != nil {
			return err
		}
		return hydrate(ctx, tx, post)
	})
}

// Delete relies on ON DELETE CASCADE for comments and tag links.
func (r *PostRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
