package models

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// CommentInput is the visitor-supplied part of a comment, as posted by the comment form.
type CommentInput struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Comment string `json:"comment" form:"comment"`
}

// Trimmed returns a copy of the input with surrounding whitespace removed.
func (in CommentInput) Trimmed() CommentInput {
	return CommentInput{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Comment: strings.TrimSpace(in.Comment),
	}
}

var commentMessages = map[string]messageFunc{
	"name": func(fe validator.FieldError) string {
		switch fe.Tag() {
		case "required":
			return "Please enter your name"
		case "max":
			return "Please keep your name under 100 characters"
		default:
			return "Please enter your name with at least 6 characters"
		}
	},
	"email": func(fe validator.FieldError) string {
		return "Please enter a valid email address"
	},
	"comment": func(fe validator.FieldError) string {
		return "Please enter your comment with at least 10 characters"
	},
}

// NewComment builds an unsaved comment for postID from form input.
func NewComment(postID int, in CommentInput) *Comment {
	in = in.Trimmed()
	return &Comment{
		PostID: postID,
		Name:   in.Name,
		Email:  in.Email,
		Body:   in.Comment,
	}
}

// Validate checks if the comment meets all validation requirements. Field failures are
// reported as a *ValidationError.
func (c *Comment) Validate() error {
	// The date is stamped on create, so only visitor fields are checked here.
	probe := *c
	if probe.Date.IsZero() {
		probe.Date = time.Now()
	}
	if probe.PostID <= 0 {
		return errors.New("comment must belong to a post")
	}
	return structErrors(&probe, commentMessages)
}

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate() {
	if c.Date.IsZero() {
		c.Date = time.Now()
	}
}

// SetPost sets the parent post and updates the PostID
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}
	c.PostID = post.ID
	return nil
}
