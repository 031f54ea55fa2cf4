package repositories

import (
	"context"
	"strings"

	"portfolio/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerAuthorRepository implements AuthorRepository using BadgerDB
type BadgerAuthorRepository struct {
	db *badger.DB
}

// NewBadgerAuthorRepository creates a new BadgerAuthorRepository
func NewBadgerAuthorRepository(db *badger.DB) *BadgerAuthorRepository {
	return &BadgerAuthorRepository{db: db}
}

// Create creates a new author
func (r *BadgerAuthorRepository) Create(ctx context.Context, author *models.Author) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, AuthorSeqKey)
		if err != nil {
			return err
		}
		author.ID = id

		data, err := marshalEntity(author)
		if err != nil {
			return err
		}
		return txn.Set(authorKey(id), data)
	})
}

// GetByID retrieves an author by ID
func (r *BadgerAuthorRepository) GetByID(ctx context.Context, id int) (*models.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var author models.Author
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, authorKey(id), &author)
	})
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// FindByEmail looks an author up by email, ignoring case
func (r *BadgerAuthorRepository) FindByEmail(ctx context.Context, email string) (*models.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var found *models.Author
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(AuthorKeyPrefix), func(a *models.Author) error {
			if strings.EqualFold(a.Email, email) && (found == nil || a.ID < found.ID) {
				found = a
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// Delete deletes an author and detaches it from its posts
func (r *BadgerAuthorRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(authorKey(id)); err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNotFound
			}
			return err
		}

		var owned []*models.Post
		err := scanPrefix(txn, []byte(PostKeyPrefix), func(p *models.Post) error {
			if p.AuthorID != nil && *p.AuthorID == id {
				owned = append(owned, p)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, p := range owned {
			p.AuthorID = nil
			data, err := marshalEntity(storedPost(p))
			if err != nil {
				return err
			}
			if err := txn.Set(postKey(p.ID), data); err != nil {
				return err
			}
		}
		return txn.Delete(authorKey(id))
	})
}
