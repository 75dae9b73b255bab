package httpapi

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	pageParam     = "page"
	pageSizeParam = "page_size"
	MaxPageSize   = 100
)

// PageResponse is a page-number paginated list.
type PageResponse struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []UserResponse `json:"results"`
}

// lastPage is accepted in place of a number and selects the final page.
const lastPage = "last"

// parsePage returns the requested 1-based page. last reports that the final
// page was asked for by name, in which case page is 1 until the count is
// known. ok is false for values that are neither positive integers nor
// lastPage.
func parsePage(q url.Values) (page int, last bool, ok bool) {
	raw := q.Get(pageParam)
	if raw == "" {
		return 1, false, true
	}
	if raw == lastPage {
		return 1, true, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false, false
	}
	return n, false, true
}

// parsePageSize honours page_size when it is a positive integer, capped at
// MaxPageSize, and falls back to def otherwise.
func parsePageSize(q url.Values, def int) int {
	n, err := strconv.Atoi(q.Get(pageSizeParam))
	if err != nil || n < 1 {
		return def
	}
	return min(n, MaxPageSize)
}

func numPages(count, pageSize int) int {
	if count == 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// pageLinks builds absolute next/previous links that keep every other
// query parameter. The first page is linked without a page parameter.
func pageLinks(r *http.Request, page, pages int) (next, previous *string) {
	if page < pages {
		next = pageURL(r, page+1)
	}
	if page > 1 {
		previous = pageURL(r, page-1)
	}
	return next, previous
}

func pageURL(r *http.Request, page int) *string {
	u := url.URL{
		Scheme: "http",
		Host:   r.Host,
		Path:   r.URL.Path,
	}
	if r.TLS != nil {
		u.Scheme = "https"
	}

	q := r.URL.Query()
	if page == 1 {
		q.Del(pageParam)
	} else {
		q.Set(pageParam, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()

	s := u.String()
	return &s
}
