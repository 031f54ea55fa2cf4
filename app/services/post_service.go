package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"portfolio/app/metrics"
	"portfolio/app/models"
	"portfolio/app/pagination"
	"portfolio/app/query"
	"portfolio/app/repositories"
)

// maxSlugAttempts bounds the suffix search when concurrent creators race for a slug.
const maxSlugAttempts = 5

// Listing is the result of a filtered post query.
type Listing struct {
	Posts         []*models.Post    `json:"posts"`
	Tags          []models.TagCount `json:"tags"`
	TotalPosts    int               `json:"total_posts"`
	FilteredCount int               `json:"filtered_count"`
	SearchQuery   string            `json:"search_query"`
	ActiveTag     string            `json:"active_tag"`
}

// PostDetail is a post with its comments, newest first.
type PostDetail struct {
	Post     *models.Post      `json:"post"`
	Comments []*models.Comment `json:"comments"`
}

// NewPost carries the fields an author supplies. Slug, excerpt and date are derived when
// empty; tags are given by caption and upserted.
type NewPost struct {
	Title    string    `yaml:"title"`
	Slug     string    `yaml:"slug"`
	Content  string    `yaml:"content"`
	Excerpt  string    `yaml:"excerpt"`
	Image    string    `yaml:"image"`
	Date     time.Time `yaml:"date"`
	AuthorID *int      `yaml:"-"`
	Tags     []string  `yaml:"tags"`
}

// PostService handles business logic for blog posts
type PostService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	tags     *TagService
	logger   *slog.Logger
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository, comments repositories.CommentRepository, tags *TagService, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		posts:    posts,
		comments: comments,
		tags:     tags,
		logger:   logger,
	}
}

// Home returns the requested page of the most recent posts.
func (s *PostService) Home(ctx context.Context, page int) (pagination.Page[*models.Post], error) {
	posts, err := s.posts.Search(ctx, query.Plan{})
	if err != nil {
		return pagination.Page[*models.Post]{}, fmt.Errorf("failed to list posts: %w", err)
	}
	return pagination.Paginate(posts, page, pagination.HomePageSize), nil
}

// List runs a filtered query. The tag sidebar and total always describe the whole store,
// not the filtered subset.
func (s *PostService) List(ctx context.Context, filter query.Filter) (*Listing, error) {
	plan := query.Build(filter)

	posts, err := s.posts.Search(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	total, err := s.posts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	tags, err := s.tags.Counts(ctx)
	if err != nil {
		return nil, err
	}

	metrics.PostSearch(plan.Filtered())
	s.logger.Debug("post query", "search", plan.Search, "tag", plan.Tag, "matches", len(posts))

	return &Listing{
		Posts:         posts,
		Tags:          tags,
		TotalPosts:    total,
		FilteredCount: len(posts),
		SearchQuery:   filter.Search,
		ActiveTag:     filter.Tag,
	}, nil
}

// Recent returns up to limit posts, newest first.
func (s *PostService) Recent(ctx context.Context, limit int) ([]*models.Post, error) {
	posts, err := s.posts.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent posts: %w", err)
	}
	return posts, nil
}

// Detail loads a post by slug together with its comments.
func (s *PostService) Detail(ctx context.Context, slug string) (*PostDetail, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get post %q: %w", slug, err)
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	return &PostDetail{Post: post, Comments: comments}, nil
}

// Saved returns the posts with the given ids in store order.
func (s *PostService) Saved(ctx context.Context, ids []int) ([]*models.Post, error) {
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}
	posts, err := s.posts.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved posts: %w", err)
	}
	return posts, nil
}

// UniqueSlug returns base if unused, otherwise the first free base-N.
func (s *PostService) UniqueSlug(ctx context.Context, base string) (string, error) {
	slug := base
	for n := 1; ; n++ {
		taken, err := s.posts.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !taken {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(n)
	}
}

// Create validates and stores a new post.
func (s *PostService) Create(ctx context.Context, in NewPost) (*models.Post, error) {
	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		Excerpt:  in.Excerpt,
		Image:    in.Image,
		Date:     in.Date,
		AuthorID: in.AuthorID,
	}
	post.BeforeCreate()

	base := in.Slug
	if base == "" {
		base = in.Title
	}
	base = models.SlugBase(base)
	post.Slug = base
	if err := post.Validate(); err != nil {
		return nil, err
	}

	for _, caption := range in.Tags {
		tag, err := s.tags.UpsertByCaption(ctx, caption)
		if err != nil {
			return nil, err
		}
		if err := post.AddTag(tag); err != nil {
			return nil, err
		}
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, err := s.UniqueSlug(ctx, base)
		if err != nil {
			return nil, err
		}
		post.Slug = slug

		err = s.posts.Create(ctx, post)
		if errors.Is(err, repositories.ErrDuplicateSlug) {
			s.logger.Warn("slug taken during create, retrying", "slug", slug)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		s.logger.Info("post created", "id", post.ID, "slug", post.Slug)
		return post, nil
	}
	return nil, fmt.Errorf("failed to create post: %w", repositories.ErrDuplicateSlug)
}

// Delete removes a post and its comments.
func (s *PostService) Delete(ctx context.Context, slug string) error {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("failed to get post %q: %w", slug, err)
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	s.logger.Info("post deleted", "id", post.ID, "slug", slug)
	return nil
}
