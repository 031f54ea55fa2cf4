package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate(t *testing.T) {
	items := seq(25)

	tests := []struct {
		name      string
		page      int
		wantItems []int
		wantPrev  bool
		wantNext  bool
	}{
		{name: "first page", page: 1, wantItems: seq(12), wantNext: true},
		{name: "middle page", page: 2, wantItems: items[12:24], wantPrev: true, wantNext: true},
		{name: "last page has the remainder", page: 3, wantItems: []int{25}, wantPrev: true},
		{name: "past the end is empty, not an error", page: 4, wantItems: []int{}, wantPrev: true},
		{name: "huge page does not overflow the offset", page: math.MaxInt, wantItems: []int{}, wantPrev: true},
		{name: "page times size past MaxInt", page: 1e18, wantItems: []int{}, wantPrev: true},
		{name: "zero is page one", page: 0, wantItems: seq(12), wantNext: true},
		{name: "negative is page one", page: -3, wantItems: seq(12), wantNext: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, ListPageSize)
			assert.Equal(t, tt.wantItems, p.Items)
			assert.Equal(t, 3, p.TotalPages)
			assert.Equal(t, 25, p.Total)
			assert.Equal(t, tt.wantPrev, p.HasPrevious)
			assert.Equal(t, tt.wantNext, p.HasNext)
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate([]string{}, 1, HomePageSize)
	assert.Empty(t, p.Items)
	assert.Equal(t, 1, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrevious)
}

func TestPaginateHomeSize(t *testing.T) {
	p := Paginate(seq(5), 1, HomePageSize)
	assert.Equal(t, []int{1, 2, 3}, p.Items)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 2, p.NextPage())
	assert.Equal(t, 0, p.PreviousPage())
}

func TestPreviousPageBeyondRange(t *testing.T) {
	p := Paginate(seq(25), 9, ListPageSize)
	assert.Equal(t, 3, p.PreviousPage(), "previous link from an out-of-range page points at the last real page")
	assert.Equal(t, 0, p.NextPage())
}
