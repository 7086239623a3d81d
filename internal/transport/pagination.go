package transport

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PaginatedResponse is the envelope every list endpoint returns. Next and
// Previous are absolute URLs to the adjacent pages, or null at the edges.
type PaginatedResponse struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// Pagination holds the page window parsed from the query string
type Pagination struct {
	Page     int
	PageSize int
}

// ParsePagination reads page and page_size from the query string, clamping
// to sane bounds
func ParsePagination(r *http.Request) Pagination {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(r.URL.Query().Get("page_size"))
	if err != nil || pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return Pagination{Page: page, PageSize: pageSize}
}

// ParseOrdering splits an ordering parameter such as "-created_at" into a
// column name and direction. An empty parameter returns empty ordering,
// leaving the repository default in effect.
func ParseOrdering(r *http.Request) (orderBy string, desc bool) {
	ordering := r.URL.Query().Get("ordering")
	if strings.HasPrefix(ordering, "-") {
		return ordering[1:], true
	}
	return ordering, false
}

// NewPaginatedResponse wraps results in the list envelope, deriving the
// next and previous page links from the request URL
func NewPaginatedResponse(r *http.Request, p Pagination, count int, results interface{}) PaginatedResponse {
	resp := PaginatedResponse{
		Count:   count,
		Results: results,
	}

	totalPages := (count + p.PageSize - 1) / p.PageSize
	if p.Page < totalPages {
		resp.Next = pageLink(r, p.Page+1)
	}
	if p.Page > 1 {
		resp.Previous = pageLink(r, p.Page-1)
	}

	return resp
}

func pageLink(r *http.Request, page int) *string {
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	link := url.URL{
		Scheme:   requestScheme(r),
		Host:     r.Host,
		Path:     u.Path,
		RawQuery: u.RawQuery,
	}
	s := link.String()
	return &s
}

func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
