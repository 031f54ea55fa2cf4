package repositories

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"portfolio/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB. Comments live under
// comment:<postID>:<id> so a post's comments share a prefix.
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create creates a new comment. The parent post must exist.
func (r *BadgerCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	comment.BeforeCreate()

	return r.db.Update(func(txn *badger.Txn) error {
		ok, err := exists(txn, postKey(comment.PostID))
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}

		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}
		if err := txn.Set(commentKey(comment.PostID, id), data); err != nil {
			return err
		}
		return txn.Set(commentRefKey(id), []byte(strconv.Itoa(comment.PostID)))
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var comment models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		postID, err := commentOwner(txn, id)
		if err != nil {
			return err
		}
		return getEntity(txn, commentKey(postID, id), &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves all comments for a post, newest first
func (r *BadgerCommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	comments := []*models.Comment{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, commentPrefix(postID), func(c *models.Comment) error {
			comments = append(comments, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	SortCommentsNewestFirst(comments)
	return comments, nil
}

// CountByPost counts a post's comments without decoding them
func (r *BadgerCommentRepository) CountByPost(ctx context.Context, postID int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := commentPrefix(postID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		postID, err := commentOwner(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(commentKey(postID, id)); err != nil {
			return err
		}
		return txn.Delete(commentRefKey(id))
	})
}

// SortCommentsNewestFirst orders comments by date descending, higher id first on ties.
func SortCommentsNewestFirst(comments []*models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if !comments[i].Date.Equal(comments[j].Date) {
			return comments[i].Date.After(comments[j].Date)
		}
		return comments[i].ID > comments[j].ID
	})
}

func commentOwner(txn *badger.Txn, id int) (int, error) {
	item, err := txn.Get(commentRefKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var postID int
	err = item.Value(func(val []byte) error {
		postID, err = strconv.Atoi(string(val))
		return err
	})
	return postID, err
}
