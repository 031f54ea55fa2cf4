package repositories

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"portfolio/app/models"
	"portfolio/app/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createPost(t *testing.T, s *Store, title string, date time.Time, tags ...*models.Tag) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:   title,
		Slug:    models.SlugBase(title),
		Content: "Content of " + title,
		Date:    date,
	}
	for _, tag := range tags {
		require.NoError(t, post.AddTag(tag))
	}
	require.NoError(t, s.Posts.Create(context.Background(), post))
	return post
}

func createTag(t *testing.T, s *Store, caption string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Caption: caption}
	require.NoError(t, s.Tags.Create(context.Background(), tag))
	return tag
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	golang := createTag(t, store, "go")
	rust := createTag(t, store, "rust")

	t.Run("create and get post", func(t *testing.T) {
		post := createPost(t, store, "Hello World", base, golang)
		assert.Greater(t, post.ID, 0)
		assert.Equal(t, "Content of Hello World", post.Excerpt)

		byID, err := store.Posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "hello-world", byID.Slug)
		require.Len(t, byID.Tags, 1)
		assert.Equal(t, "go", byID.Tags[0].Caption)

		bySlug, err := store.Posts.GetBySlug(ctx, "hello-world")
		require.NoError(t, err)
		assert.Equal(t, post.ID, bySlug.ID)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		dup := &models.Post{Title: "x", Slug: "hello-world", Content: "c", Date: base}
		err := store.Posts.Create(ctx, dup)
		assert.ErrorIs(t, err, ErrDuplicateSlug)

		ok, err := store.Posts.SlugExists(ctx, "hello-world")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := store.Posts.GetByID(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Posts.GetBySlug(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update moves slug", func(t *testing.T) {
		post := createPost(t, store, "Old Name", base.Add(time.Hour))
		post.Slug = "new-name"
		post.Title = "New Name"
		require.NoError(t, post.AddTag(rust))
		require.NoError(t, store.Posts.Update(ctx, post))

		_, err := store.Posts.GetBySlug(ctx, "old-name")
		assert.ErrorIs(t, err, ErrNotFound)
		got, err := store.Posts.GetBySlug(ctx, "new-name")
		require.NoError(t, err)
		assert.Equal(t, "New Name", got.Title)
		assert.Equal(t, []int{rust.ID}, got.TagIDs)
	})

	t.Run("update missing", func(t *testing.T) {
		err := store.Posts.Update(ctx, &models.Post{ID: 999, Slug: "ghost"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("count and recent", func(t *testing.T) {
		n, err := store.Posts.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		recent, err := store.Posts.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, "new-name", recent[0].Slug)
	})
}

func TestPostSearch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	golang := createTag(t, store, "Go")
	rust := createTag(t, store, "rust")
	createPost(t, store, "Learning Go", base, golang)
	createPost(t, store, "Rust and Go", base.Add(24*time.Hour), golang, rust)
	createPost(t, store, "Cooking", base.Add(48*time.Hour))

	titles := func(posts []*models.Post) []string {
		out := make([]string, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.Title)
		}
		return out
	}

	all, err := store.Posts.Search(ctx, query.Build(query.Filter{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Cooking", "Rust and Go", "Learning Go"}, titles(all))

	byTerm, err := store.Posts.Search(ctx, query.Build(query.Filter{Search: "GO"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Rust and Go", "Learning Go"}, titles(byTerm))

	byTag, err := store.Posts.Search(ctx, query.Build(query.Filter{Tag: "go"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Rust and Go", "Learning Go"}, titles(byTag))

	both, err := store.Posts.Search(ctx, query.Build(query.Filter{Search: "learning", Tag: "rust"}))
	require.NoError(t, err)
	assert.Empty(t, both)
}

func TestListByIDs(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	base := time.Now()

	a := createPost(t, store, "A", base)
	b := createPost(t, store, "B", base)
	c := createPost(t, store, "C", base)

	posts, err := store.Posts.ListByIDs(ctx, []int{c.ID, 999, a.ID, c.ID})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, a.ID, posts[0].ID)
	assert.Equal(t, c.ID, posts[1].ID)
	assert.NotEqual(t, b.ID, posts[1].ID)

	empty, err := store.Posts.ListByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeletePostCascadesComments(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	post := createPost(t, store, "Doomed", time.Now())
	other := createPost(t, store, "Survivor", time.Now())

	var ids []int
	for i := 0; i < 3; i++ {
		c := &models.Comment{PostID: post.ID, Name: "Roberto", Email: "r@x.com", Body: fmt.Sprintf("comment number %d", i)}
		require.NoError(t, store.Comments.Create(ctx, c))
		ids = append(ids, c.ID)
	}
	keep := &models.Comment{PostID: other.ID, Name: "Roberto", Email: "r@x.com", Body: "a comment to keep"}
	require.NoError(t, store.Comments.Create(ctx, keep))

	require.NoError(t, store.Posts.Delete(ctx, post.ID))

	for _, id := range ids {
		_, err := store.Comments.GetByID(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	ok, err := store.Posts.SlugExists(ctx, "doomed")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := store.Comments.CountByPost(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, store.Posts.Delete(ctx, post.ID), ErrNotFound)
}

func TestCommentRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	post := createPost(t, store, "Commented", time.Now())

	t.Run("create and get comment", func(t *testing.T) {
		comment := &models.Comment{PostID: post.ID, Name: "Roberto", Email: "bob@x.com", Body: "This is long enough."}
		require.NoError(t, store.Comments.Create(ctx, comment))
		assert.Greater(t, comment.ID, 0)
		assert.False(t, comment.Date.IsZero())

		got, err := store.Comments.GetByID(ctx, comment.ID)
		require.NoError(t, err)
		assert.Equal(t, comment.Body, got.Body)
		assert.Equal(t, post.ID, got.PostID)
	})

	t.Run("unknown post", func(t *testing.T) {
		err := store.Comments.Create(ctx, &models.Comment{PostID: 999, Name: "Roberto", Email: "bob@x.com", Body: "orphaned comment"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("newest first", func(t *testing.T) {
		old := &models.Comment{PostID: post.ID, Name: "Oldest", Email: "o@x.com", Body: "first in line", Date: time.Now().Add(-time.Hour)}
		require.NoError(t, store.Comments.Create(ctx, old))

		list, err := store.Comments.ListByPost(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Oldest", list[1].Name)
	})

	t.Run("delete", func(t *testing.T) {
		list, err := store.Comments.ListByPost(ctx, post.ID)
		require.NoError(t, err)
		require.NoError(t, store.Comments.Delete(ctx, list[0].ID))

		n, err := store.Comments.CountByPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		assert.ErrorIs(t, store.Comments.Delete(ctx, list[0].ID), ErrNotFound)
	})
}

func TestTagRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	golang := createTag(t, store, "go")
	rust := createTag(t, store, "rust")
	unused := createTag(t, store, "unused")
	post := createPost(t, store, "Both", time.Now(), golang, rust)
	createPost(t, store, "Just Go", time.Now(), golang)

	t.Run("find by caption is exact", func(t *testing.T) {
		got, err := store.Tags.FindByCaption(ctx, "go")
		require.NoError(t, err)
		assert.Equal(t, golang.ID, got.ID)

		_, err = store.Tags.FindByCaption(ctx, "Go")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		tags, err := store.Tags.List(ctx)
		require.NoError(t, err)
		assert.Len(t, tags, 3)
	})

	t.Run("counts omit unused", func(t *testing.T) {
		counts, err := store.Tags.Counts(ctx)
		require.NoError(t, err)
		require.Len(t, counts, 2)
		assert.Equal(t, "go", counts[0].Caption)
		assert.Equal(t, 2, counts[0].PostCount)
		assert.Equal(t, "rust", counts[1].Caption)
		for _, c := range counts {
			assert.NotEqual(t, unused.ID, c.ID)
		}
	})

	t.Run("delete strips associations", func(t *testing.T) {
		require.NoError(t, store.Tags.Delete(ctx, rust.ID))

		got, err := store.Posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{golang.ID}, got.TagIDs)

		_, err = store.Tags.GetByID(ctx, rust.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAuthorRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	author := &models.Author{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	require.NoError(t, store.Authors.Create(ctx, author))

	post := &models.Post{Title: "Notes", Slug: "notes", Content: "c", Date: time.Now(), AuthorID: &author.ID}
	require.NoError(t, store.Posts.Create(ctx, post))
	require.NotNil(t, post.Author)
	assert.Equal(t, "Ada", post.Author.FirstName)

	found, err := store.Authors.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, author.ID, found.ID)

	require.NoError(t, store.Authors.Delete(ctx, author.ID))

	got, err := store.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AuthorID)
	assert.Nil(t, got.Author)

	_, err = store.Authors.FindByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreBackupRestore(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)
	createPost(t, src, "Saved Twice", time.Now())

	var buf bytes.Buffer
	require.NoError(t, src.Backup(&buf))

	dst := newTestStore(t)
	require.NoError(t, dst.Restore(&buf))

	got, err := dst.Posts.GetBySlug(ctx, "saved-twice")
	require.NoError(t, err)
	assert.Equal(t, "Saved Twice", got.Title)

	require.NoError(t, dst.Clear())
	n, err := dst.Posts.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCanceledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Posts.Search(ctx, query.Plan{})
	assert.ErrorIs(t, err, context.Canceled)
}
