// Package bookmarks implements the "saved for later" list kept in a visitor's session.
package bookmarks

import "portfolio/app/sessions"

// SessionKey is where the list of saved post ids lives in the session.
const SessionKey = "stored_posts"

// IDs returns the saved post ids and whether a list exists at all. Data that does not
// decode counts as no list.
func IDs(sess *sessions.Session) ([]int, bool) {
	if sess == nil {
		return nil, false
	}
	var ids []int
	if !sess.Get(SessionKey, &ids) || ids == nil {
		return nil, false
	}
	return ids, true
}

// IsSaved reports whether postID is in the list.
func IsSaved(sess *sessions.Session, postID int) bool {
	ids, _ := IDs(sess)
	return indexOf(ids, postID) >= 0
}

// Toggle removes postID when present and appends it otherwise. The new list is written
// back into the session and returned along with whether the post is now saved.
func Toggle(sess *sessions.Session, postID int) ([]int, bool) {
	ids, _ := IDs(sess)
	ids = append([]int{}, ids...)

	saved := false
	if i := indexOf(ids, postID); i >= 0 {
		ids = append(ids[:i], ids[i+1:]...)
	} else {
		ids = append(ids, postID)
		saved = true
	}

	// A []int always marshals.
	_ = sess.Set(SessionKey, ids)
	return ids, saved
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
