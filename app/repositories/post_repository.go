package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"portfolio/app/models"
	"portfolio/app/query"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB. Each post is stored under
// post:<id> with a slug:<slug> index entry pointing back at the id.
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	post.BeforeCreate()

	return r.db.Update(func(txn *badger.Txn) error {
		taken, err := exists(txn, slugKey(post.Slug))
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: %s", ErrDuplicateSlug, post.Slug)
		}

		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		data, err := marshalEntity(storedPost(post))
		if err != nil {
			return err
		}
		if err := txn.Set(postKey(id), data); err != nil {
			return err
		}
		if err := txn.Set(slugKey(post.Slug), []byte(strconv.Itoa(id))); err != nil {
			return err
		}
		return hydratePost(txn, post)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		if err := getEntity(txn, postKey(id), &post); err != nil {
			return err
		}
		return hydratePost(txn, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetBySlug retrieves a post through the slug index
func (r *BadgerPostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupSlug(txn, slug)
		if err != nil {
			return err
		}
		if err := getEntity(txn, postKey(id), &post); err != nil {
			return err
		}
		return hydratePost(txn, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// SlugExists reports whether a post already uses slug
func (r *BadgerPostRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var found bool
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = exists(txn, slugKey(slug))
		return err
	})
	return found, err
}

// Search scans every post and keeps the ones the plan matches.
func (r *BadgerPostRepository) Search(ctx context.Context, plan query.Plan) ([]*models.Post, error) {
	posts, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	return plan.Apply(posts), nil
}

// ListByIDs retrieves the posts whose id is in ids, ascending by id. Unknown ids are skipped.
func (r *BadgerPostRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[int]bool, len(ids))
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true

			var post models.Post
			err := getEntity(txn, postKey(id), &post)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := hydratePost(txn, &post); err != nil {
				return err
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

// Recent returns up to limit posts, newest first
func (r *BadgerPostRepository) Recent(ctx context.Context, limit int) ([]*models.Post, error) {
	posts, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	query.SortNewestFirst(posts)
	if limit >= 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// Count returns the number of stored posts
func (r *BadgerPostRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Update updates an existing post, moving its slug index entry when the slug changed
func (r *BadgerPostRepository) Update(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		var existing models.Post
		if err := getEntity(txn, postKey(post.ID), &existing); err != nil {
			return err
		}

		if existing.Slug != post.Slug {
			taken, err := exists(txn, slugKey(post.Slug))
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: %s", ErrDuplicateSlug, post.Slug)
			}
			if err := txn.Delete(slugKey(existing.Slug)); err != nil {
				return err
			}
			if err := txn.Set(slugKey(post.Slug), []byte(strconv.Itoa(post.ID))); err != nil {
				return err
			}
		}

		data, err := marshalEntity(storedPost(post))
		if err != nil {
			return err
		}
		if err := txn.Set(postKey(post.ID), data); err != nil {
			return err
		}
		return hydratePost(txn, post)
	})
}

// Delete deletes a post by ID along with its comments
func (r *BadgerPostRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		var post models.Post
		if err := getEntity(txn, postKey(id), &post); err != nil {
			return err
		}

		var commentIDs []int
		err := scanPrefix(txn, commentPrefix(id), func(c *models.Comment) error {
			commentIDs = append(commentIDs, c.ID)
			return nil
		})
		if err != nil {
			return err
		}
		for _, cid := range commentIDs {
			if err := txn.Delete(commentKey(id, cid)); err != nil {
				return err
			}
			if err := txn.Delete(commentRefKey(cid)); err != nil {
				return err
			}
		}

		if err := txn.Delete(slugKey(post.Slug)); err != nil {
			return err
		}
		return txn.Delete(postKey(id))
	})
}

// all loads every post with relations hydrated, in key order.
func (r *BadgerPostRepository) all(ctx context.Context) ([]*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(PostKeyPrefix), func(p *models.Post) error {
			if err := hydratePost(txn, p); err != nil {
				return err
			}
			posts = append(posts, p)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan posts: %w", err)
	}
	return posts, nil
}

func lookupSlug(txn *badger.Txn, slug string) (int, error) {
	item, err := txn.Get(slugKey(slug))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int
	err = item.Value(func(val []byte) error {
		id, err = strconv.Atoi(string(val))
		return err
	})
	return id, err
}
