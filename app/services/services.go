package services

import (
	"log/slog"

	"portfolio/app/repositories"
)

// Services wires every service over one repository set.
type Services struct {
	Authors   *AuthorService
	Tags      *TagService
	Posts     *PostService
	Comments  *CommentService
	Bookmarks *BookmarkService
}

// New builds the services for repos.
func New(repos repositories.Set, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	tags := NewTagService(repos.Tags, logger)
	posts := NewPostService(repos.Posts, repos.Comments, tags, logger)
	return &Services{
		Authors:   NewAuthorService(repos.Authors),
		Tags:      tags,
		Posts:     posts,
		Comments:  NewCommentService(repos.Comments, repos.Posts, logger),
		Bookmarks: NewBookmarkService(posts, logger),
	}
}
