package services

import (
	"context"
	"fmt"
	"log/slog"

	"portfolio/app/metrics"
	"portfolio/app/models"
	"portfolio/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	logger   *slog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{
		comments: comments,
		posts:    posts,
		logger:   logger,
	}
}

// Submit validates visitor input and stores it as a comment on the post with slug. Field
// problems come back as *models.ValidationError and nothing is stored.
func (s *CommentService) Submit(ctx context.Context, slug string, in models.CommentInput) (*models.Comment, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get post %q: %w", slug, err)
	}

	comment := models.NewComment(post.ID, in)
	if err := comment.Validate(); err != nil {
		metrics.CommentResult(false)
		return nil, err
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	metrics.CommentResult(true)
	s.logger.Info("comment created", "post_id", post.ID, "comment_id", comment.ID)
	return comment, nil
}

// ListPostComments retrieves all comments for a post
func (s *CommentService) ListPostComments(ctx context.Context, postID int) ([]*models.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

// Delete removes a single comment
func (s *CommentService) Delete(ctx context.Context, id int) error {
	if err := s.comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, err)
	}
	return nil
}
