// Package pagination implements the page/limit listing envelope shared by
// every collection endpoint.
package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Params is a validated page request.
type Params struct {
	Page  int
	Limit int
}

// Page is the response envelope for one page of results.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// ParseParams reads page/limit query parameters. A missing, malformed or
// non-positive limit falls back to the default; oversized limits are capped.
func ParseParams(r *http.Request, defaultSize, maxSize int) Params {
	q := r.URL.Query()

	page := 1
	if raw := q.Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}

	limit := defaultSize
	if raw := q.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxSize {
		limit = maxSize
	}

	return Params{Page: page, Limit: limit}
}

// Offset returns the row offset for the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPage builds the envelope with next/previous links derived from the
// request URL.
func NewPage(r *http.Request, p Params, count int64, results interface{}) Page {
	page := Page{Count: count, Results: results}

	if int64(p.Page*p.Limit) < count {
		page.Next = pageLink(r, p.Page+1, p.Limit)
	}
	if p.Page > 1 {
		page.Previous = pageLink(r, p.Page-1, p.Limit)
	}
	return page
}

func pageLink(r *http.Request, page, limit int) *string {
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	link := u.String()
	if u.Host == "" && r.Host != "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		link = fmt.Sprintf("%s://%s%s", scheme, r.Host, link)
	}
	return &link
}
