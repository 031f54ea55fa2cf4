package repositories

import (
	"context"
	"sort"

	"portfolio/app/models"
	"portfolio/app/query"

	"github.com/dgraph-io/badger/v4"
)

// BadgerTagRepository implements TagRepository using BadgerDB
type BadgerTagRepository struct {
	db *badger.DB
}

// NewBadgerTagRepository creates a new BadgerTagRepository
func NewBadgerTagRepository(db *badger.DB) *BadgerTagRepository {
	return &BadgerTagRepository{db: db}
}

// Create creates a new tag
func (r *BadgerTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, TagSeqKey)
		if err != nil {
			return err
		}
		tag.ID = id

		data, err := marshalEntity(tag)
		if err != nil {
			return err
		}
		return txn.Set(tagKey(id), data)
	})
}

// GetByID retrieves a tag by ID
func (r *BadgerTagRepository) GetByID(ctx context.Context, id int) (*models.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var tag models.Tag
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, tagKey(id), &tag)
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByCaption returns the lowest-id tag whose caption equals caption
func (r *BadgerTagRepository) FindByCaption(ctx context.Context, caption string) (*models.Tag, error) {
	tags, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		if t.Caption == caption {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

// List returns every tag ordered by id
func (r *BadgerTagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tags := []*models.Tag{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(TagKeyPrefix), func(t *models.Tag) error {
			tags = append(tags, t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags, nil
}

// Counts aggregates tag usage across all posts
func (r *BadgerTagRepository) Counts(ctx context.Context) ([]models.TagCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		tags  []*models.Tag
		posts []*models.Post
	)
	err := r.db.View(func(txn *badger.Txn) error {
		if err := scanPrefix(txn, []byte(TagKeyPrefix), func(t *models.Tag) error {
			tags = append(tags, t)
			return nil
		}); err != nil {
			return err
		}
		return scanPrefix(txn, []byte(PostKeyPrefix), func(p *models.Post) error {
			posts = append(posts, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return query.TagCounts(tags, posts), nil
}

// Delete deletes a tag and strips it from every post that carries it
func (r *BadgerTagRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(tagKey(id)); err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNotFound
			}
			return err
		}

		var tagged []*models.Post
		err := scanPrefix(txn, []byte(PostKeyPrefix), func(p *models.Post) error {
			if p.HasTag(id) {
				tagged = append(tagged, p)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, p := range tagged {
			p.RemoveTag(id)
			data, err := marshalEntity(storedPost(p))
			if err != nil {
				return err
			}
			if err := txn.Set(postKey(p.ID), data); err != nil {
				return err
			}
		}
		return txn.Delete(tagKey(id))
	})
}
