package repositories

import (
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
)

// Store owns the badger database and the repositories built on it.
type Store struct {
	db     *badger.DB
	dbPath string

	Authors  *BadgerAuthorRepository
	Tags     *BadgerTagRepository
	Posts    *BadgerPostRepository
	Comments *BadgerCommentRepository
}

// Options returns the badger options used for path. An empty path opens an in-memory
// database, which is what tests use.
func Options(path string) badger.Options {
	if path == "" {
		return badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	return badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := badger.Open(Options(path))
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return NewStore(db, path), nil
}

// NewStore wraps an already open database.
func NewStore(db *badger.DB, path string) *Store {
	return &Store{
		db:       db,
		dbPath:   path,
		Authors:  NewBadgerAuthorRepository(db),
		Tags:     NewBadgerTagRepository(db),
		Posts:    NewBadgerPostRepository(db),
		Comments: NewBadgerCommentRepository(db),
	}
}

// Set returns the badger repositories behind their interfaces.
func (s *Store) Set() Set {
	return Set{Authors: s.Authors, Tags: s.Tags, Posts: s.Posts, Comments: s.Comments}
}

// DB exposes the underlying database so other stores (sessions) can share it.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Path is the on-disk location, empty for in-memory stores.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Clear drops every key, sequences included.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

// Backup writes a full backup stream to w.
func (s *Store) Backup(w io.Writer) error {
	if _, err := s.db.Backup(w, 0); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

// Restore loads a stream produced by Backup.
func (s *Store) Restore(r io.Reader) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic occurred during restore: %v", rec)
		}
	}()
	if err := s.db.Load(r, 16); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	return nil
}
