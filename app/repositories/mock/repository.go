// Package mock holds in-memory repositories for service and controller tests. They share
// one dataset so relations, cascades and aggregates behave like the real stores.
package mock

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"portfolio/app/models"
	"portfolio/app/query"
	"portfolio/app/repositories"
)

type dataset struct {
	mutex    sync.RWMutex
	authors  map[int]*models.Author
	tags     map[int]*models.Tag
	posts    map[int]*models.Post
	comments map[int]*models.Comment
	nextID   map[string]int
	err      error
}

func (d *dataset) next(kind string) int {
	d.nextID[kind]++
	return d.nextID[kind]
}

// Store bundles the four in-memory repositories.
type Store struct {
	data     *dataset
	Authors  *AuthorRepository
	Tags     *TagRepository
	Posts    *PostRepository
	Comments *CommentRepository
}

type AuthorRepository struct{ data *dataset }
type TagRepository struct{ data *dataset }
type PostRepository struct{ data *dataset }
type CommentRepository struct{ data *dataset }

var (
	_ repositories.AuthorRepository  = (*AuthorRepository)(nil)
	_ repositories.TagRepository     = (*TagRepository)(nil)
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
)

// New returns an empty in-memory store.
func New() *Store {
	d := &dataset{}
	s := &Store{
		data:     d,
		Authors:  &AuthorRepository{data: d},
		Tags:     &TagRepository{data: d},
		Posts:    &PostRepository{data: d},
		Comments: &CommentRepository{data: d},
	}
	s.Clear()
	return s
}

func (s *Store) Clear() {
	s.data.mutex.Lock()
	defer s.data.mutex.Unlock()

	s.data.authors = make(map[int]*models.Author)
	s.data.tags = make(map[int]*models.Tag)
	s.data.posts = make(map[int]*models.Post)
	s.data.comments = make(map[int]*models.Comment)
	s.data.nextID = make(map[string]int)
	s.data.err = nil
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *Store) FailWith(err error) {
	s.data.mutex.Lock()
	defer s.data.mutex.Unlock()
	s.data.err = err
}

// hydrate returns a copy of p with relations filled. Callers hold the read lock.
func (d *dataset) hydrate(p *models.Post) *models.Post {
	cp := *p
	cp.TagIDs = append([]int{}, p.TagIDs...)
	cp.Author = nil
	if p.AuthorID != nil {
		if a, ok := d.authors[*p.AuthorID]; ok {
			ac := *a
			cp.Author = &ac
		}
	}
	cp.Tags = []*models.Tag{}
	for _, id := range cp.TagIDs {
		if t, ok := d.tags[id]; ok {
			tc := *t
			cp.Tags = append(cp.Tags, &tc)
		}
	}
	sort.Slice(cp.Tags, func(i, j int) bool { return cp.Tags[i].ID < cp.Tags[j].ID })
	return &cp
}

func (d *dataset) allPosts() []*models.Post {
	posts := make([]*models.Post, 0, len(d.posts))
	for _, p := range d.posts {
		posts = append(posts, d.hydrate(p))
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts
}

func (d *dataset) slugTaken(slug string, except int) bool {
	for id, p := range d.posts {
		if id != except && p.Slug == slug {
			return true
		}
	}
	return false
}

// AuthorRepository implementation

func (m *AuthorRepository) Create(_ context.Context, author *models.Author) error {
	m.data.mutex.Lock()
	defer m.data.mutex.Unlock()
	if m.data.err != nil {
		return m.data.err
	}

	author.ID = m.data.next("author")
	cp := *author
	m.data.authors[author.ID] = &cp
	return nil
}

func (m *AuthorRepository) GetByID(_ context.Context, id int) (*models.Author, error) {
	m.data.mutex.RLock()
	defer m.data.mutex.RUnlock()
	if m.data.err != nil {
		return nil, m.data.err
	}

	a, ok := m.data.authors[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *AuthorRepository) FindByEmail(_ context.Context, email string) (*models.Author, error) {
	m.data.mutex.RLock()
	defer m.data.mutex.RUnlock()
	if m.data.err != nil {
		return nil, m.data.err
	}

	var found *models.Author
	for _, a := range m.data.authors {
		if strings.EqualFold(a.Email, email) && (found == nil || a.ID < found.ID) {
			found = a
		}
	}
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func (m *AuthorRepository) Delete(_ context.Context, id int) error {
	m.data.mutex.Lock()
	defer m.data.mutex.Unlock()
	if m.data.err != nil {
		return m.data.err
	}

	if _, ok := m.data.authors[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, p := range m.data.posts {
		if p.AuthorID != nil && *p.AuthorID == id {
			p.AuthorID = nil
		}
	}
	delete(m.data.authors, id)
	return nil
}

// TagRepository implementation

func (m *TagRepository) Create(_ context.Context, tag *models.Tag) error {
	m.data.mutex.Lock()
	defer m.data.mutex.Unlock()
	if m.data.err != nil {
		return m.data.err
	}

	tag.ID = m.data.next("tag")
	cp := *tag
	m.data.tags[tag.ID] = &cp
	return nil
}

func (m *TagRepository) GetByID(_ context.Context, id int) (*models.Tag, error) {
	m.data.mutex.RLock()
	defer m.data.mutex.RUnlock()
	if m.data.err != nil {
		return nil, m.data.err
	}

	t, ok := m.data.tags[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *TagRepository) FindByCaption(ctx context.Context, caption string) (*models.Tag, error) {
	tags, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		if t.Caption == caption {
			return t, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *TagRepository) List(_ context.Context) ([]*models.Tag, error) {
	m.data.mutex.RLock()
	defer m.data.mutex.RUnlock()
	if m.data.err != nil {
		return nil, m.data.err
	}

	tags := make([]*models.Tag, 0, len(m.data.tags))
	for _, t := range m.data.tags {
		cp := *t
		tags = append(tags, &cp)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags, nil
}

func (m *TagRepository) Counts(ctx context.Context) ([]models.TagCount, error) {
	tags, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	m.data.mutex.RLock()
	defer m.data.mutex.RUnlock()
	return query.TagCounts(tags, m.data.allPosts()), nil
}

func (m *TagRepository) Delete(_ context.Context, id int) error {
	m.data.mutex.Lock()
	defer m.data.mutex.Unlock()
	if m.data.err != nil {
		return m.data.err
	}

	if _, ok := m.data.tags[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, p := range m.data.posts {
		p.RemoveTag(id)
	}
	delete(m.data.tags, id)
	return nil
}

// PostRepository implementation

func (m *PostRepository) Create(_ context.Context, post *models.Post) error {
	m.data.mutex.Lock()
	defer m.data.mutex.Unlock()
	if m.data.err != nil {
		return m.data.err
	}

	if m.data.slugTaken(post.Slug, 0) {
		return repositories.ErrDuplicateSlug
	}
	post.BeforeCreate()
	post.ID = m.data.next("post")
	cp := *post
	cp.TagIDs = append([]int{}, post.TagIDs...)
	cp.Author, cp.Tags = nil, nil
	m.data.posts[post.ID] = &cp

	h := m.data.hydrate(&cp)
	post.Author, post.Tags = h.Author, h.Tags
	return nil
}

func (m *PostRepository) GetByID(_ context.Context, id int) (*models.Post, error) {
	m.data.mutex.RLock()
	defer m.data.mutex.RUnlock()
	if m.data.err != nil {
		return nil, m.data.err
	}

	p, ok := m.data.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return m.data.hydrate(p), nil
}

func (m *PostRepository) GetBySlug(_ context.Context, slug string) (*models.Post, error) {
	m.data.mutex.RLock()
	defer m.data.mutex.RUnlock()
	if m.data.err != nil {
		return nil, m.data.err
	}

	for _, p := range m.data.posts {
		if p.Slug == slug {
			return m.data.hydrate(p), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *PostRepository) SlugExists(_ context.Context, slug string) (bool, error) {
	m.data.mutex.RLock()
	defer m.data.mutex.RUnlock()
	if m.data.err != nil {
		return false, m.data.err
	}
	return m.data.slugTaken(slug, 0), nil
}

func (m *PostRepository) Search(_ context.Context, plan query.Plan) ([]*models.Post, error) {
	m.data.mutex.RLock()
	defer m.data.mutex.RUnlock()
	if m.data.err != nil {
		return nil, m.data.err
	}
	return plan.Apply(m.data.allPosts()), nil
}

func (m *PostRepository) ListByIDs(_ context.Context, ids []int) ([]*models.Post, error) {
	m.data.mutex.RLock()
	defer m.data.mutex.RUnlock()
	if m.data.err != nil {
		return nil, m.data.err
	}

	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	posts := []*models.Post{}
	for _, p := range m.data.allPosts() {
		if want[p.ID] {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func (m *PostRepository) Recent(_ context.Context, limit int) ([]*models.Post, error) {
	m.data.mutex.RLock()
	defer m.data.mutex.RUnlock()
	if m.data.err != nil {
		return nil, m.data.err
	}

	posts := m.data.allPosts()
	query.SortNewestFirst(posts)
	if limit >= 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (m *PostRepository) Count(_ context.Context) (int, error) {
	m.data.mutex.RLock()
	defer m.data.mutex.RUnlock()
	if m.data.err != nil {
		return 0, m.data.err
	}
	return len(m.data.posts), nil
}

func (m *PostRepository) Update(_ context.Context, post *models.Post) error {
	m.data.mutex.Lock()
	defer m.data.mutex.Unlock()
	if m.data.err != nil {
		return m.data.err
	}

	if _, ok := m.data.posts[post.ID]; !ok {
		return repositories.ErrNotFound
	}
	if m.data.slugTaken(post.Slug, post.ID) {
		return repositories.ErrDuplicateSlug
	}
	cp := *post
	cp.TagIDs = append([]int{}, post.TagIDs...)
	cp.Author, cp.Tags = nil, nil
	m.data.posts[post.ID] = &cp
	return nil
}

func (m *PostRepository) Delete(_ context.Context, id int) error {
	m.data.mutex.Lock()
	defer m.data.mutex.Unlock()
	if m.data.err != nil {
		return m.data.err
	}

	if _, ok := m.data.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	for cid, c := range m.data.comments {
		if c.PostID == id {
			delete(m.data.comments, cid)
		}
	}
	delete(m.data.posts, id)
	return nil
}

// CommentRepository implementation

func (m *CommentRepository) Create(_ context.Context, comment *models.Comment) error {
	m.data.mutex.Lock()
	defer m.data.mutex.Unlock()
	if m.data.err != nil {
		return m.data.err
	}

	if _, ok := m.data.posts[comment.PostID]; !ok {
		return repositories.ErrNotFound
	}
	if comment.Date.IsZero() {
		comment.Date = time.Now()
	}
	comment.ID = m.data.next("comment")
	cp := *comment
	m.data.comments[comment.ID] = &cp
	return nil
}

func (m *CommentRepository) GetByID(_ context.Context, id int) (*models.Comment, error) {
	m.data.mutex.RLock()
	defer m.data.mutex.RUnlock()
	if m.data.err != nil {
		return nil, m.data.err
	}

	c, ok := m.data.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *CommentRepository) ListByPost(_ context.Context, postID int) ([]*models.Comment, error) {
	m.data.mutex.RLock()
	defer m.data.mutex.RUnlock()
	if m.data.err != nil {
		return nil, m.data.err
	}

	comments := []*models.Comment{}
	for _, c := range m.data.comments {
		if c.PostID == postID {
			cp := *c
			comments = append(comments, &cp)
		}
	}
	repositories.SortCommentsNewestFirst(comments)
	return comments, nil
}

func (m *CommentRepository) CountByPost(ctx context.Context, postID int) (int, error) {
	comments, err := m.ListByPost(ctx, postID)
	if err != nil {
		return 0, err
	}
	return len(comments), nil
}

func (m *CommentRepository) Delete(_ context.Context, id int) error {
	m.data.mutex.Lock()
	defer m.data.mutex.Unlock()
	if m.data.err != nil {
		return m.data.err
	}

	if _, ok := m.data.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.data.comments, id)
	return nil
}

// Set returns the mock repositories behind their interfaces.
func (s *Store) Set() repositories.Set {
	return repositories.Set{Authors: s.Authors, Tags: s.Tags, Posts: s.Posts, Comments: s.Comments}
}
