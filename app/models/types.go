package models

import "time"

// Author represents the writer of one or more posts.
type Author struct {
	ID        int    `json:"id" validate:"gte=0"`
	FirstName string `json:"first_name" validate:"required,max=20"`
	LastName  string `json:"last_name" validate:"required,max=20"`
	Email     string `json:"email" validate:"required,email"`
}

// Tag is a short label attached to posts.
type Tag struct {
	ID      int    `json:"id" validate:"gte=0"`
	Caption string `json:"caption" validate:"required,max=20"`
}

// TagCount pairs a tag with the number of posts that carry it.
type TagCount struct {
	Tag
	PostCount int `json:"post_count"`
}

// Post represents a blog post.
type Post struct {
	ID       int       `json:"id" validate:"gte=0"`
	Title    string    `json:"title" validate:"required,max=100"`
	Slug     string    `json:"slug" validate:"required,max=100"`
	Content  string    `json:"content" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
	Image    string    `json:"image,omitempty" validate:"max=255"`
	Excerpt  string    `json:"excerpt" validate:"max=200"`
	AuthorID *int      `json:"author_id,omitempty"`
	TagIDs   []int     `json:"tag_ids"`

	// Hydrated by the store on read, never persisted.
	Author *Author `json:"author,omitempty" validate:"-"`
	Tags   []*Tag  `json:"tags,omitempty" validate:"-"`
}

// Comment represents a visitor comment on a post.
type Comment struct {
	ID     int       `json:"id" validate:"gte=0"`
	PostID int       `json:"post_id" validate:"required,gt=0"`
	Name   string    `json:"name" validate:"required,min=6,max=100"`
	Email  string    `json:"email" validate:"required,email"`
	Body   string    `json:"comment" validate:"required,min=10"`
	Date   time.Time `json:"date" validate:"required"`
}
