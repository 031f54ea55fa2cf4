package sessions

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/crypto/sha3"
)

// DefaultTTL matches the usual two week session cookie lifetime.
const DefaultTTL = 14 * 24 * time.Hour

const keyPrefix = "session:"

// BadgerStore keeps sessions in badger with a TTL. Keys are derived from a SHA3-256 of
// the cookie id so raw ids never reach the database.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewBadgerStore uses DefaultTTL when ttl is not positive.
func NewBadgerStore(db *badger.DB, ttl time.Duration) *BadgerStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &BadgerStore{db: db, ttl: ttl}
}

func storageKey(id string) []byte {
	sum := sha3.Sum256([]byte(id))
	return []byte(keyPrefix + hex.EncodeToString(sum[:]))
}

func (s *BadgerStore) Load(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sess := New(id)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storageKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return sess.unmarshal(val)
		})
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Save writes the session and restarts its TTL.
func (s *BadgerStore) Save(ctx context.Context, sess *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := sess.marshal()
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(storageKey(sess.ID), data).WithTTL(s.ttl))
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	sess.dirty = false
	return nil
}

func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(storageKey(id))
	})
}
