package repositories

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"portfolio/app/models"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateSlug = errors.New("slug already in use")
)

const (
	// Key prefixes for different entity types
	AuthorKeyPrefix  = "author:"
	TagKeyPrefix     = "tag:"
	PostKeyPrefix    = "post:"
	SlugKeyPrefix    = "slug:"
	CommentKeyPrefix = "comment:"
	// commentref:<id> holds the owning post id so comments can be found by id alone.
	CommentRefPrefix = "commentref:"

	// Sequence keys for auto-incrementing IDs
	AuthorSeqKey  = "seq:author"
	TagSeqKey     = "seq:tag"
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"
)

func authorKey(id int) []byte { return []byte(AuthorKeyPrefix + strconv.Itoa(id)) }
func tagKey(id int) []byte    { return []byte(TagKeyPrefix + strconv.Itoa(id)) }
func postKey(id int) []byte   { return []byte(PostKeyPrefix + strconv.Itoa(id)) }
func slugKey(s string) []byte { return []byte(SlugKeyPrefix + s) }

func commentKey(postID, id int) []byte {
	return []byte(fmt.Sprintf("%s%d:%d", CommentKeyPrefix, postID, id))
}

func commentPrefix(postID int) []byte {
	return []byte(fmt.Sprintf("%s%d:", CommentKeyPrefix, postID))
}

func commentRefKey(id int) []byte { return []byte(CommentRefPrefix + strconv.Itoa(id)) }

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id uint64
	item, err := txn.Get([]byte(seqKey))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		err = item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence %q", seqKey)
			}
			id = binary.BigEndian.Uint64(val)
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	id++

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	if err := txn.Set([]byte(seqKey), buf); err != nil {
		return 0, err
	}
	return int(id), nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// getEntity loads key into entity, mapping a missing key to ErrNotFound.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// exists reports whether key is present.
func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// scanPrefix decodes every value under prefix into a fresh T and hands it to fn.
func scanPrefix[T any](txn *badger.Txn, prefix []byte, fn func(*T) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		entity := new(T)
		if err := it.Item().Value(func(val []byte) error {
			return unmarshalEntity(val, entity)
		}); err != nil {
			return err
		}
		if err := fn(entity); err != nil {
			return err
		}
	}
	return nil
}

// storedPost strips the hydrated relations so only ids are persisted.
func storedPost(p *models.Post) *models.Post {
	cp := *p
	cp.Author = nil
	cp.Tags = nil
	if cp.TagIDs == nil {
		cp.TagIDs = []int{}
	}
	return &cp
}

// hydratePost fills Author and Tags from their ids. Dangling references are skipped.
func hydratePost(txn *badger.Txn, p *models.Post) error {
	p.Author = nil
	if p.AuthorID != nil {
		var a models.Author
		switch err := getEntity(txn, authorKey(*p.AuthorID), &a); {
		case err == nil:
			p.Author = &a
		case !errors.Is(err, ErrNotFound):
			return err
		}
	}

	p.Tags = make([]*models.Tag, 0, len(p.TagIDs))
	for _, id := range p.TagIDs {
		var t models.Tag
		err := getEntity(txn, tagKey(id), &t)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		p.Tags = append(p.Tags, &t)
	}
	sort.Slice(p.Tags, func(i, j int) bool { return p.Tags[i].ID < p.Tags[j].ID })
	return nil
}
