package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"portfolio/app/models"
	"portfolio/app/repositories"
)

// TagService owns tag creation so captions stay normalized.
type TagService struct {
	tags   repositories.TagRepository
	logger *slog.Logger
}

func NewTagService(tags repositories.TagRepository, logger *slog.Logger) *TagService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagService{tags: tags, logger: logger}
}

// UpsertByCaption normalizes caption (trimmed, lower-case, at most 20 characters) and
// returns the tag with exactly that caption, creating it when missing.
func (s *TagService) UpsertByCaption(ctx context.Context, caption string) (*models.Tag, error) {
	c := models.NormalizeCaption(caption)
	if c == "" {
		return nil, &models.ValidationError{Fields: map[string]string{"caption": "This field is required"}}
	}

	tag, err := s.tags.FindByCaption(ctx, c)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to find tag %q: %w", c, err)
	}

	tag = &models.Tag{Caption: c}
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("failed to create tag %q: %w", c, err)
	}
	s.logger.Info("tag created", "id", tag.ID, "caption", c)
	return tag, nil
}

// Counts returns the tags in use with their post counts.
func (s *TagService) Counts(ctx context.Context) ([]models.TagCount, error) {
	counts, err := s.tags.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}
	return counts, nil
}

// List returns every tag.
func (s *TagService) List(ctx context.Context) ([]*models.Tag, error) {
	return s.tags.List(ctx)
}
