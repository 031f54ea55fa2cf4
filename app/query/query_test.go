package query

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"portfolio/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tagGo     = &models.Tag{ID: 1, Caption: "go"}
	tagRust   = &models.Tag{ID: 2, Caption: "Rust"}
	tagUnused = &models.Tag{ID: 3, Caption: "unused"}
)

func fixturePosts() []*models.Post {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id int, title, content, excerpt string, days int, tags ...*models.Tag) *models.Post {
		p := &models.Post{ID: id, Title: title, Content: content, Excerpt: excerpt, Date: base.AddDate(0, 0, days)}
		for _, t := range tags {
			p.TagIDs = append(p.TagIDs, t.ID)
			p.Tags = append(p.Tags, t)
		}
		return p
	}
	return []*models.Post{
		mk(1, "Learning Go", "channels and goroutines", "go basics", 1, tagGo),
		mk(2, "Rust ownership", "borrow checker", "memory safety", 2, tagRust),
		mk(3, "Polyglot", "Go and Rust side by side", "comparison", 3, tagGo, tagRust),
		mk(4, "Cooking", "pasta recipe", "a GOod meal", 4),
		mk(5, "Untitled", "nothing here", "", 5),
	}
}

func ids(posts []*models.Post) []int {
	out := make([]int, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestBuild(t *testing.T) {
	assert.Equal(t, Plan{}, Build(Filter{Search: "   ", Tag: "\t"}))
	assert.Equal(t, Plan{Search: "go", Tag: "rust"}, Build(Filter{Search: " Go ", Tag: "RUST"}))
	assert.False(t, Build(Filter{}).Filtered())
	assert.True(t, Build(Filter{Tag: "x"}).Filtered())
}

func TestApplyNoFilter(t *testing.T) {
	got := Build(Filter{}).Apply(fixturePosts())
	assert.Equal(t, []int{5, 4, 3, 2, 1}, ids(got), "no filter returns everything newest first")
}

func TestSearchIsCaseInsensitiveSubstringOverFields(t *testing.T) {
	posts := fixturePosts()
	for _, term := range []string{"go", "RUST", "recipe", "MEMORY", "side by", "zzz"} {
		t.Run(term, func(t *testing.T) {
			got := Build(Filter{Search: term}).Apply(posts)
			gotSet := map[int]bool{}
			for _, p := range got {
				gotSet[p.ID] = true
			}
			needle := strings.ToLower(term)
			for _, p := range posts {
				want := strings.Contains(strings.ToLower(p.Title), needle) ||
					strings.Contains(strings.ToLower(p.Content), needle) ||
					strings.Contains(strings.ToLower(p.Excerpt), needle)
				assert.Equal(t, want, gotSet[p.ID], "post %d for %q", p.ID, term)
			}
		})
	}
}

func TestTagFilterIsExactCaseInsensitive(t *testing.T) {
	posts := fixturePosts()

	assert.Equal(t, []int{3, 1}, ids(Build(Filter{Tag: "GO"}).Apply(posts)))
	assert.Equal(t, []int{3, 2}, ids(Build(Filter{Tag: "rust"}).Apply(posts)))
	assert.Empty(t, Build(Filter{Tag: "ru"}).Apply(posts), "tag match is not a substring match")

	padded := &models.Post{ID: 9, Tags: []*models.Tag{{ID: 7, Caption: " go "}}}
	assert.False(t, Build(Filter{Tag: "go"}).Matches(padded), "stored captions are compared as is")
}

func TestSearchAndTagIntersect(t *testing.T) {
	posts := fixturePosts()

	search := Build(Filter{Search: "go"}).Apply(posts)
	tag := Build(Filter{Tag: "rust"}).Apply(posts)
	both := Build(Filter{Search: "go", Tag: "rust"}).Apply(posts)

	inTag := map[int]bool{}
	for _, p := range tag {
		inTag[p.ID] = true
	}
	var want []int
	for _, p := range search {
		if inTag[p.ID] {
			want = append(want, p.ID)
		}
	}
	assert.Equal(t, want, ids(both))
	assert.Equal(t, []int{3}, ids(both))
}

func TestApplyDeduplicates(t *testing.T) {
	posts := fixturePosts()
	// A join over two matching tags yields the same post twice.
	joined := append(posts, posts[2])

	got := Build(Filter{Search: "polyglot"}).Apply(joined)
	assert.Equal(t, []int{3}, ids(got))
}

func TestApplyIsIdempotent(t *testing.T) {
	posts := fixturePosts()
	plan := Build(Filter{Search: "o", Tag: "go"})

	first := plan.Apply(posts)
	second := plan.Apply(posts)
	assert.Equal(t, ids(first), ids(second))
	assert.Len(t, posts, 5, "input is not mutated")
}

func TestSortNewestFirstTieBreak(t *testing.T) {
	same := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
	posts := []*models.Post{{ID: 1, Date: same}, {ID: 3, Date: same}, {ID: 2, Date: same}}
	SortNewestFirst(posts)
	assert.Equal(t, []int{3, 2, 1}, ids(posts))
}

func TestTagCounts(t *testing.T) {
	counts := TagCounts([]*models.Tag{tagGo, tagRust, tagUnused}, fixturePosts())
	require.Len(t, counts, 2, "zero-count tags never appear")

	assert.Equal(t, "Rust", counts[0].Caption, "equal counts fall back to caption order")
	assert.Equal(t, 2, counts[0].PostCount)
	assert.Equal(t, "go", counts[1].Caption)
	assert.Equal(t, 2, counts[1].PostCount)
}

func TestTagCountsOrderedByCount(t *testing.T) {
	var posts []*models.Post
	for i := 1; i <= 3; i++ {
		posts = append(posts, &models.Post{ID: i, TagIDs: []int{tagRust.ID}})
	}
	posts = append(posts, &models.Post{ID: 9, TagIDs: []int{tagGo.ID, tagGo.ID}})

	counts := TagCounts([]*models.Tag{tagGo, tagRust}, posts)
	require.Len(t, counts, 2)
	assert.Equal(t, []string{"Rust", "go"}, []string{counts[0].Caption, counts[1].Caption})
	assert.Equal(t, 1, counts[1].PostCount, "a duplicated tag id counts once per post")
}

func ExampleBuild() {
	plan := Build(Filter{Search: "  Go ", Tag: ""})
	fmt.Printf("%q %q %v\n", plan.Search, plan.Tag, plan.Filtered())
	// Output: "go" "" true
}
