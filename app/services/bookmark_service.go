package services

import (
	"context"
	"log/slog"

	"portfolio/app/bookmarks"
	"portfolio/app/metrics"
	"portfolio/app/models"
	"portfolio/app/sessions"
)

// SavedPosts is the "saved for later" page context.
type SavedPosts struct {
	Posts    []*models.Post `json:"posts"`
	HasPosts bool           `json:"has_posts"`
}

// BookmarkService reads and toggles the visitor's saved posts. The session is passed in
// explicitly and persisting it is left to the caller.
type BookmarkService struct {
	posts  *PostService
	logger *slog.Logger
}

func NewBookmarkService(posts *PostService, logger *slog.Logger) *BookmarkService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookmarkService{posts: posts, logger: logger}
}

// Toggle flips postID in the session's list and reports whether it is now saved. The post
// is not looked up, so ids of deleted posts can be toggled off.
func (s *BookmarkService) Toggle(sess *sessions.Session, postID int) ([]int, bool) {
	ids, saved := bookmarks.Toggle(sess, postID)
	metrics.BookmarkToggled(saved)
	s.logger.Debug("bookmark toggled", "post_id", postID, "saved", saved)
	return ids, saved
}

// List loads the saved posts. A visitor without a list gets an empty result, not an error.
// HasPosts reports that a list exists, even one emptied by toggling.
func (s *BookmarkService) List(ctx context.Context, sess *sessions.Session) (*SavedPosts, error) {
	ids, ok := bookmarks.IDs(sess)
	if !ok {
		return &SavedPosts{Posts: []*models.Post{}}, nil
	}
	posts, err := s.posts.Saved(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &SavedPosts{Posts: posts, HasPosts: true}, nil
}

// IsSaved reports whether postID is in the session's list.
func (s *BookmarkService) IsSaved(sess *sessions.Session, postID int) bool {
	return bookmarks.IsSaved(sess, postID)
}
