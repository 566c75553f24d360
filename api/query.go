package api

import (
	"net/url"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	// LimitAll asks the server for every record in a single page.
	LimitAll = -1
)

// ListQuery parameterizes a list operation. Zero values for Page and Limit
// fall back to the defaults; Filters pass through to the server verbatim.
type ListQuery struct {
	Page    int
	Limit   int
	Filters map[string]string
}

// WithFilter returns a copy of the query with one more filter set. The
// receiver's filter map is never mutated.
func (q ListQuery) WithFilter(key, value string) ListQuery {
	filters := make(map[string]string, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	filters[key] = value
	q.Filters = filters
	return q
}

// Values renders the query as URL parameters, applying pagination defaults.
// Keys come out sorted by Encode, which keeps cache keys stable.
func (q ListQuery) Values() url.Values {
	page := q.Page
	if page < 1 {
		page = DefaultPage
	}
	limit := q.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	if limit == LimitAll {
		v.Set("limit", "all")
	} else {
		v.Set("limit", strconv.Itoa(limit))
	}
	for key, value := range q.Filters {
		if key == "page" || key == "limit" {
			continue
		}
		v.Set(key, value)
	}
	return v
}
