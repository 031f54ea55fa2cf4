package bookmarks

import (
	"encoding/json"
	"testing"

	"portfolio/app/sessions"

	"github.com/stretchr/testify/assert"
)

func TestToggleTwiceRestores(t *testing.T) {
	sess := sessions.New("s")

	ids, saved := Toggle(sess, 42)
	assert.Equal(t, []int{42}, ids)
	assert.True(t, saved)
	assert.True(t, IsSaved(sess, 42))

	ids, saved = Toggle(sess, 42)
	assert.Equal(t, []int{}, ids)
	assert.False(t, saved)
	assert.False(t, IsSaved(sess, 42))

	stored, ok := IDs(sess)
	assert.True(t, ok, "an emptied list still exists")
	assert.Empty(t, stored)
}

func TestToggleKeepsOrder(t *testing.T) {
	sess := sessions.New("s")
	Toggle(sess, 3)
	Toggle(sess, 1)
	Toggle(sess, 2)
	Toggle(sess, 1)

	ids, ok := IDs(sess)
	assert.True(t, ok)
	assert.Equal(t, []int{3, 2}, ids)
	assert.True(t, sess.Dirty())
}

func TestIDsAbsent(t *testing.T) {
	tests := []struct {
		name string
		sess *sessions.Session
	}{
		{name: "nil session", sess: nil},
		{name: "first visit", sess: sessions.New("s")},
		{name: "undecodable", sess: &sessions.Session{Values: map[string]json.RawMessage{SessionKey: json.RawMessage(`"oops"`)}}},
		{name: "null", sess: &sessions.Session{Values: map[string]json.RawMessage{SessionKey: json.RawMessage(`null`)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, ok := IDs(tt.sess)
			assert.False(t, ok)
			assert.Nil(t, ids)
			assert.False(t, IsSaved(tt.sess, 1))
		})
	}
}

func TestToggleOverCorruptData(t *testing.T) {
	sess := &sessions.Session{Values: map[string]json.RawMessage{SessionKey: json.RawMessage(`{"bad":true}`)}}
	ids, saved := Toggle(sess, 5)
	assert.Equal(t, []int{5}, ids)
	assert.True(t, saved)
}
