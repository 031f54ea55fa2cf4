package repositories

import (
	"context"

	"portfolio/app/models"
	"portfolio/app/query"
)

// AuthorRepository defines the interface for author data access
type AuthorRepository interface {
	Create(ctx context.Context, author *models.Author) error
	GetByID(ctx context.Context, id int) (*models.Author, error)
	FindByEmail(ctx context.Context, email string) (*models.Author, error)
	// Delete removes the author and clears the author of every post that referenced it.
	Delete(ctx context.Context, id int) error
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id int) (*models.Tag, error)
	// FindByCaption matches the caption exactly.
	FindByCaption(ctx context.Context, caption string) (*models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
	// Counts reports usage over all posts, most used first. Unused tags are omitted.
	Counts(ctx context.Context) ([]models.TagCount, error)
	// Delete removes the tag and its post associations. Posts are kept.
	Delete(ctx context.Context, id int) error
}

// PostRepository defines the interface for post data access. Posts are returned with
// Author and Tags hydrated.
type PostRepository interface {
	// Create fails with ErrDuplicateSlug when the slug is taken.
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// Search returns the posts matching plan, deduplicated, newest first.
	Search(ctx context.Context, plan query.Plan) ([]*models.Post, error)
	// ListByIDs returns the existing posts among ids in ascending id order.
	ListByIDs(ctx context.Context, ids []int) ([]*models.Post, error)
	Recent(ctx context.Context, limit int) ([]*models.Post, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, post *models.Post) error
	// Delete removes the post together with its comments.
	Delete(ctx context.Context, id int) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int) (*models.Comment, error)
	// ListByPost returns the post's comments newest first.
	ListByPost(ctx context.Context, postID int) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID int) (int, error)
	Delete(ctx context.Context, id int) error
}

// Set bundles one implementation of each repository.
type Set struct {
	Authors  AuthorRepository
	Tags     TagRepository
	Posts    PostRepository
	Comments CommentRepository
}
