package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxSlugBase is the length a derived slug is cut to before a uniqueness suffix is added.
	MaxSlugBase = 80
	// MaxExcerpt is the stored excerpt limit.
	MaxExcerpt = 200
	// MaxCaption is the tag caption limit.
	MaxCaption = 20

	excerptCut = 197
)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[-\s]+`)
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	return structErrors(p, nil)
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	if p.Excerpt == "" {
		p.Excerpt = DeriveExcerpt(p.Content)
	}
	if p.TagIDs == nil {
		p.TagIDs = []int{}
	}
}

// HasTag reports whether the post carries the tag with the given id.
func (p *Post) HasTag(tagID int) bool {
	for _, id := range p.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// AddTag associates a tag with the post. Adding the same tag twice is a no-op.
func (p *Post) AddTag(tag *Tag) error {
	if tag == nil {
		return errors.New("tag cannot be nil")
	}
	if p.HasTag(tag.ID) {
		return nil
	}
	p.TagIDs = append(p.TagIDs, tag.ID)
	p.Tags = append(p.Tags, tag)
	return nil
}

// RemoveTag drops the association with tagID.
func (p *Post) RemoveTag(tagID int) bool {
	for i, id := range p.TagIDs {
		if id == tagID {
			p.TagIDs = append(p.TagIDs[:i], p.TagIDs[i+1:]...)
			for j, t := range p.Tags {
				if t.ID == tagID {
					p.Tags = append(p.Tags[:j], p.Tags[j+1:]...)
					break
				}
			}
			return true
		}
	}
	return false
}

// Slugify converts a title into a URL-safe slug: ASCII folded, lower-case, with runs of
// whitespace and hyphens collapsed to a single hyphen.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(
		norm.NFKD,
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	), s)
	if err != nil {
		folded = s
	}
	folded = slugStrip.ReplaceAllString(strings.ToLower(folded), "")
	folded = slugCollapse.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-_")
}

// SlugBase returns the slug a new post derives from its title before uniqueness suffixes.
func SlugBase(title string) string {
	slug := Slugify(title)
	if len(slug) > MaxSlugBase {
		slug = strings.TrimRight(slug[:MaxSlugBase], "-_")
	}
	if slug == "" {
		slug = "post"
	}
	return slug
}

// DeriveExcerpt flattens content into a single line that fits the excerpt column.
func DeriveExcerpt(content string) string {
	flat := strings.ReplaceAll(content, "\n", " ")
	flat = strings.ReplaceAll(flat, "  ", " ")
	flat = strings.TrimSpace(flat)
	if utf8.RuneCountInString(flat) > excerptCut {
		return string([]rune(flat)[:excerptCut]) + "..."
	}
	return flat
}

// NormalizeCaption applies the tag upsert rule: trimmed, lower-case, at most 20 runes.
func NormalizeCaption(caption string) string {
	c := strings.ToLower(strings.TrimSpace(caption))
	if utf8.RuneCountInString(c) > MaxCaption {
		c = strings.TrimSpace(string([]rune(c)[:MaxCaption]))
	}
	return c
}
