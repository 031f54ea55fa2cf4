// Package postgres implements the content repositories on PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"portfolio/app/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS authors (
	id         SERIAL PRIMARY KEY,
	first_name VARCHAR(20)  NOT NULL,
	last_name  VARCHAR(20)  NOT NULL,
	email      VARCHAR(254) NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id      SERIAL PRIMARY KEY,
	caption VARCHAR(20) NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	id        SERIAL PRIMARY KEY,
	title     VARCHAR(100) NOT NULL,
	slug      VARCHAR(100) NOT NULL UNIQUE,
	content   TEXT         NOT NULL,
	date      TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
	image     VARCHAR(255) NOT NULL DEFAULT '',
	excerpt   VARCHAR(200) NOT NULL DEFAULT '',
	author_id INTEGER REFERENCES authors(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS post_tags (
	post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	tag_id  INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (post_id, tag_id)
);

CREATE TABLE IF NOT EXISTS comments (
	id      SERIAL PRIMARY KEY,
	post_id INTEGER      NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	name    VARCHAR(100) NOT NULL,
	email   VARCHAR(254) NOT NULL,
	comment TEXT         NOT NULL,
	date    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS comments_post_id_idx ON comments (post_id);
CREATE INDEX IF NOT EXISTS posts_date_idx ON posts (date DESC, id DESC);
`

// Store owns the pool and the repositories built on it.
type Store struct {
	pool *pgxpool.Pool

	Authors  *AuthorRepository
	Tags     *TagRepository
	Posts    *PostRepository
	Comments *CommentRepository
}

// Open connects to url and verifies the connection.
func Open(ctx context.Context, url string) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewStore(pool), nil
}

// NewStore wraps an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:     pool,
		Authors:  &AuthorRepository{pool: pool},
		Tags:     &TagRepository{pool: pool},
		Posts:    &PostRepository{pool: pool},
		Comments: &CommentRepository{pool: pool},
	}
}

// Set returns the Postgres repositories behind their interfaces.
func (s *Store) Set() repositories.Set {
	return repositories.Set{Authors: s.Authors, Tags: s.Tags, Posts: s.Posts, Comments: s.Comments}
}

// Migrate creates the schema when missing. It is safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Clear empties every table and resets the id sequences.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE comments, post_tags, posts, tags, authors RESTART IDENTITY CASCADE`)
	return err
}

func (s *Store) Close() {
	s.pool.Close()
}

// mapError turns driver errors into the repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repositories.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && pgErr.ConstraintName == "posts_slug_key":
			return fmt.Errorf("%w: %s", repositories.ErrDuplicateSlug, pgErr.Detail)
		case pgErr.Code == "23503":
			return repositories.ErrNotFound
		}
	}
	return err
}
