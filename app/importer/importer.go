// Package importer seeds the content store from a YAML document:
//
//	author:
//	  first_name: Ada
//	  last_name: Lovelace
//	  email: ada@example.com
//	posts:
//	  - title: Notes on the Analytical Engine
//	    date: 2024-01-02T15:04:05Z
//	    tags: [history, computing]
//	    content: |
//	      Markdown body...
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"portfolio/app/models"
	"portfolio/app/services"

	"gopkg.in/yaml.v3"
)

// Document is the seed file layout.
type Document struct {
	Author *AuthorEntry       `yaml:"author"`
	Posts  []services.NewPost `yaml:"posts"`
}

type AuthorEntry struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
}

// Importer creates authors and posts through the services so slugs, excerpts and tags get
// the same treatment as any other post.
type Importer struct {
	authors *services.AuthorService
	posts   *services.PostService
	logger  *slog.Logger
}

func New(authors *services.AuthorService, posts *services.PostService, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{authors: authors, posts: posts, logger: logger}
}

// Parse decodes a seed document, rejecting unknown keys.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return &doc, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &doc, nil
}

// Seed imports every post in r and returns how many were created. It stops at the first
// post that fails; posts created before it are kept.
func (i *Importer) Seed(ctx context.Context, r io.Reader) (int, error) {
	doc, err := Parse(r)
	if err != nil {
		return 0, err
	}

	var authorID *int
	if doc.Author != nil {
		author, err := i.authors.GetOrCreate(ctx, models.Author{
			FirstName: doc.Author.FirstName,
			LastName:  doc.Author.LastName,
			Email:     doc.Author.Email,
		})
		if err != nil {
			return 0, fmt.Errorf("author: %w", err)
		}
		authorID = &author.ID
	}

	created := 0
	for n, entry := range doc.Posts {
		if entry.AuthorID == nil {
			entry.AuthorID = authorID
		}
		post, err := i.posts.Create(ctx, entry)
		if err != nil {
			return created, fmt.Errorf("post %d (%q): %w", n+1, entry.Title, err)
		}
		i.logger.Debug("seeded post", "slug", post.Slug)
		created++
	}
	return created, nil
}
