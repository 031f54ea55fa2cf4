package sessions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionValues(t *testing.T) {
	sess := New("abc")
	assert.False(t, sess.Dirty())

	var ids []int
	assert.False(t, sess.Get("stored_posts", &ids))

	require.NoError(t, sess.Set("stored_posts", []int{1, 2}))
	assert.True(t, sess.Dirty())
	assert.True(t, sess.Get("stored_posts", &ids))
	assert.Equal(t, []int{1, 2}, ids)

	var wrong string
	assert.False(t, sess.Get("stored_posts", &wrong), "type mismatch reads as absent")

	sess.Delete("stored_posts")
	assert.False(t, sess.Get("stored_posts", &ids))
}

func TestBadgerStore(t *testing.T) {
	ctx := context.Background()
	store := NewBadgerStore(newTestDB(t), time.Hour)

	t.Run("missing", func(t *testing.T) {
		_, err := store.Load(ctx, "nope")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		sess := New("visitor-1")
		require.NoError(t, sess.Set("stored_posts", []int{42}))
		require.NoError(t, store.Save(ctx, sess))
		assert.False(t, sess.Dirty())

		loaded, err := store.Load(ctx, "visitor-1")
		require.NoError(t, err)
		assert.Equal(t, "visitor-1", loaded.ID)
		var ids []int
		assert.True(t, loaded.Get("stored_posts", &ids))
		assert.Equal(t, []int{42}, ids)
	})

	t.Run("keys are hashed", func(t *testing.T) {
		err := store.db.View(func(txn *badger.Txn) error {
			_, err := txn.Get([]byte("session:visitor-1"))
			return err
		})
		assert.ErrorIs(t, err, badger.ErrKeyNotFound)
		assert.Len(t, storageKey("visitor-1"), len(keyPrefix)+64)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "visitor-1"))
		_, err := store.Load(ctx, "visitor-1")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("ttl is applied", func(t *testing.T) {
		sess := New("visitor-2")
		require.NoError(t, sess.Set("k", 1))
		require.NoError(t, store.Save(ctx, sess))

		err := store.db.View(func(txn *badger.Txn) error {
			item, err := txn.Get(storageKey("visitor-2"))
			if err != nil {
				return err
			}
			expires := time.Unix(int64(item.ExpiresAt()), 0)
			assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestManager(t *testing.T) {
	store := NewBadgerStore(newTestDB(t), 0)
	m := NewManager(store, nil)

	var seen *Session
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		require.NoError(t, seen.Set("stored_posts", []int{7}))
		require.NoError(t, m.Save(r.Context(), seen))
	}))

	t.Run("first visit sets a cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		assert.Equal(t, DefaultCookieName, c.Name)
		assert.Equal(t, seen.ID, c.Value)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, int(DefaultTTL/time.Second), c.MaxAge)
	})

	t.Run("returning visitor keeps the session", func(t *testing.T) {
		id := seen.ID
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: id})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Empty(t, rr.Result().Cookies())
		assert.Equal(t, id, seen.ID)
	})

	t.Run("unknown id is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "forged"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Len(t, rr.Result().Cookies(), 1)
		assert.NotEqual(t, "forged", seen.ID)
	})

	t.Run("clean sessions are not written", func(t *testing.T) {
		sess := New("untouched")
		require.NoError(t, m.Save(context.Background(), sess))
		_, err := store.Load(context.Background(), "untouched")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestFromContextOutsideMiddleware(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}
