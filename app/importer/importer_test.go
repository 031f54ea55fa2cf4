package importer

import (
	"context"
	"strings"
	"testing"

	"portfolio/app/logging"
	"portfolio/app/query"
	"portfolio/app/repositories/mock"
	"portfolio/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `
author:
  first_name: Ada
  last_name: Lovelace
  email: ada@example.com
posts:
  - title: Notes on the Engine
    date: 2024-01-02T15:04:05Z
    tags: [History, computing]
    content: |
      The engine weaves algebraic patterns.
  - title: Notes on the Engine
    excerpt: A second look.
    tags: [history]
    content: Again.
`

func newImporter() (*Importer, *services.PostService) {
	store := mock.New()
	logger := logging.Discard()
	tags := services.NewTagService(store.Tags, logger)
	posts := services.NewPostService(store.Posts, store.Comments, tags, logger)
	return New(services.NewAuthorService(store.Authors), posts, logger), posts
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	imp, posts := newImporter()

	n, err := imp.Seed(ctx, strings.NewReader(seed))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	listing, err := posts.List(ctx, query.Filter{})
	require.NoError(t, err)
	require.Len(t, listing.Posts, 2)

	first, err := posts.Detail(ctx, "notes-on-the-engine")
	require.NoError(t, err)
	require.NotNil(t, first.Post.Author)
	assert.Equal(t, "Ada", first.Post.Author.FirstName)
	assert.Equal(t, 2024, first.Post.Date.Year())
	assert.Equal(t, "The engine weaves algebraic patterns.", first.Post.Excerpt)

	second, err := posts.Detail(ctx, "notes-on-the-engine-1")
	require.NoError(t, err)
	assert.Equal(t, "A second look.", second.Post.Excerpt)

	require.Len(t, listing.Tags, 2)
	assert.Equal(t, "history", listing.Tags[0].Caption)
	assert.Equal(t, 2, listing.Tags[0].PostCount)
}

func TestSeedErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown keys", func(t *testing.T) {
		imp, _ := newImporter()
		_, err := imp.Seed(ctx, strings.NewReader("posts:\n  - titel: typo\n"))
		assert.ErrorContains(t, err, "failed to parse seed file")
	})

	t.Run("invalid post stops the import", func(t *testing.T) {
		imp, _ := newImporter()
		doc := "posts:\n  - title: fine\n    content: ok\n  - title: empty\n"
		n, err := imp.Seed(ctx, strings.NewReader(doc))
		assert.Equal(t, 1, n)
		assert.ErrorContains(t, err, `post 2 ("empty")`)
	})

	t.Run("empty document", func(t *testing.T) {
		imp, _ := newImporter()
		n, err := imp.Seed(ctx, strings.NewReader(""))
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
