// Package query turns listing filters into a store-independent plan.
//
// A Filter is what the visitor typed; a Plan is the normalized form every store executes.
// Building a plan never touches a store, so the same plan can be run by the badger scan,
// translated to SQL by the Postgres store, or checked directly in tests.
package query

import (
	"sort"
	"strings"

	"portfolio/app/models"
)

// Filter is the raw listing input: the `q` and `tag` query parameters.
type Filter struct {
	Search string `json:"q"`
	Tag    string `json:"tag"`
}

// Plan is a normalized Filter. Empty fields mean "no filter".
type Plan struct {
	Search string `json:"search,omitempty"`
	Tag    string `json:"tag,omitempty"`
}

// Build normalizes f: both terms are trimmed and lower-cased, and whitespace-only input
// becomes an empty (absent) term.
func Build(f Filter) Plan {
	return Plan{
		Search: strings.ToLower(strings.TrimSpace(f.Search)),
		Tag:    strings.ToLower(strings.TrimSpace(f.Tag)),
	}
}

// Filtered reports whether the plan restricts the result set at all.
func (p Plan) Filtered() bool {
	return p.Search != "" || p.Tag != ""
}

// Matches reports whether post satisfies the plan. The post's Tags must be hydrated when
// the plan carries a tag term.
func (p Plan) Matches(post *models.Post) bool {
	if post == nil {
		return false
	}
	if p.Search != "" && !p.matchesSearch(post) {
		return false
	}
	if p.Tag != "" && !p.matchesTag(post) {
		return false
	}
	return true
}

func (p Plan) matchesSearch(post *models.Post) bool {
	return strings.Contains(strings.ToLower(post.Title), p.Search) ||
		strings.Contains(strings.ToLower(post.Content), p.Search) ||
		strings.Contains(strings.ToLower(post.Excerpt), p.Search)
}

func (p Plan) matchesTag(post *models.Post) bool {
	for _, tag := range post.Tags {
		if tag != nil && strings.EqualFold(tag.Caption, p.Tag) {
			return true
		}
	}
	return false
}

// Apply runs the plan over an in-memory post set: matching posts, deduplicated by id,
// newest first.
func (p Plan) Apply(posts []*models.Post) []*models.Post {
	seen := make(map[int]struct{}, len(posts))
	out := make([]*models.Post, 0, len(posts))
	for _, post := range posts {
		if post == nil {
			continue
		}
		if _, dup := seen[post.ID]; dup {
			continue
		}
		if !p.Matches(post) {
			continue
		}
		seen[post.ID] = struct{}{}
		out = append(out, post)
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders posts by date descending, breaking ties by id descending.
func SortNewestFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Date.Equal(posts[j].Date) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].Date.After(posts[j].Date)
	})
}

// TagCounts counts, for every tag, the posts carrying it across the given (unfiltered)
// post set. Tags without posts are dropped; the rest are ordered by count descending,
// then caption, then id.
func TagCounts(tags []*models.Tag, posts []*models.Post) []models.TagCount {
	counts := make(map[int]int, len(tags))
	for _, post := range posts {
		seen := make(map[int]struct{}, len(post.TagIDs))
		for _, id := range post.TagIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			counts[id]++
		}
	}

	out := make([]models.TagCount, 0, len(tags))
	for _, tag := range tags {
		if n := counts[tag.ID]; n > 0 {
			out = append(out, models.TagCount{Tag: *tag, PostCount: n})
		}
	}
	SortTagCounts(out)
	return out
}

// SortTagCounts applies the sidebar ordering used by every store.
func SortTagCounts(tc []models.TagCount) {
	sort.SliceStable(tc, func(i, j int) bool {
		if tc[i].PostCount != tc[j].PostCount {
			return tc[i].PostCount > tc[j].PostCount
		}
		if tc[i].Caption != tc[j].Caption {
			return tc[i].Caption < tc[j].Caption
		}
		return tc[i].ID < tc[j].ID
	})
}
