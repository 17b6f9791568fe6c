package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	cases := []struct {
		name  string
		url   string
		page  int
		limit int
	}{
		{"defaults", "/api/recipes/", 1, 6},
		{"explicit", "/api/recipes/?page=3&limit=10", 3, 10},
		{"garbage page", "/api/recipes/?page=abc", 1, 6},
		{"garbage limit", "/api/recipes/?limit=abc", 1, 6},
		{"negative page", "/api/recipes/?page=-2", 1, 6},
		{"zero limit", "/api/recipes/?limit=0", 1, 6},
		{"capped limit", "/api/recipes/?limit=1000", 1, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tc.url, nil)
			p := ParseParams(r, 6, 100)
			assert.Equal(t, tc.page, p.Page)
			assert.Equal(t, tc.limit, p.Limit)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 6}.Offset())
	assert.Equal(t, 12, Params{Page: 3, Limit: 6}.Offset())
}

func TestNewPageLinks(t *testing.T) {
	r := httptest.NewRequest("GET", "http://api.example.com/api/recipes/?page=2&limit=2", nil)
	p := Params{Page: 2, Limit: 2}

	page := NewPage(r, p, 5, []int{3, 4})

	assert.EqualValues(t, 5, page.Count)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "page=3")
	assert.Contains(t, *page.Next, "limit=2")
	require.NotNil(t, page.Previous)
	assert.Contains(t, *page.Previous, "page=1")
}

func TestNewPageBoundaryLinks(t *testing.T) {
	r := httptest.NewRequest("GET", "http://api.example.com/api/recipes/", nil)

	first := NewPage(r, Params{Page: 1, Limit: 6}, 6, nil)
	assert.Nil(t, first.Next)
	assert.Nil(t, first.Previous)

	last := NewPage(r, Params{Page: 2, Limit: 6}, 7, nil)
	assert.Nil(t, last.Next)
	require.NotNil(t, last.Previous)
}

func TestPageLinkIsAbsolute(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/recipes/", nil)
	r.Host = "api.example.com"

	page := NewPage(r, Params{Page: 1, Limit: 2}, 10, nil)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "http://api.example.com/api/recipes/")
}
