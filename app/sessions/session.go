// Package sessions keeps per-visitor state server side, keyed by an opaque cookie id.
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is a bag of JSON values belonging to one visitor.
type Session struct {
	ID     string                     `json:"-"`
	Values map[string]json.RawMessage `json:"values"`

	dirty bool
}

// New returns an empty session with the given id.
func New(id string) *Session {
	return &Session{ID: id, Values: make(map[string]json.RawMessage)}
}

// Get decodes the value stored under key into dst. It reports false when the key is
// absent or the stored value does not decode into dst.
func (s *Session) Get(key string, dst any) bool {
	raw, ok := s.Values[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// Set stores v under key and marks the session dirty.
func (s *Session) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session value %q: %w", key, err)
	}
	if s.Values == nil {
		s.Values = make(map[string]json.RawMessage)
	}
	s.Values[key] = raw
	s.dirty = true
	return nil
}

// Delete removes key.
func (s *Session) Delete(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Store persists sessions.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying sess.
func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromContext returns the request's session, or nil outside the session middleware.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(ctxKey{}).(*Session)
	return sess
}
