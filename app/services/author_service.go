package services

import (
	"context"
	"errors"
	"fmt"

	"portfolio/app/models"
	"portfolio/app/repositories"
)

type AuthorService struct {
	authors repositories.AuthorRepository
}

func NewAuthorService(authors repositories.AuthorRepository) *AuthorService {
	return &AuthorService{authors: authors}
}

// GetOrCreate returns the author registered under a.Email, creating it from a otherwise.
func (s *AuthorService) GetOrCreate(ctx context.Context, a models.Author) (*models.Author, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.authors.FindByEmail(ctx, a.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to find author: %w", err)
	}

	a.ID = 0
	if err := s.authors.Create(ctx, &a); err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}
	return &a, nil
}
