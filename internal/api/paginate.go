package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/joestump/linkhub/internal/links"
)

var errBadPagination = errors.New("invalid pagination")

// parsePagination reads offset and limit from the query string. Missing
// values take the link defaults (offset 0, limit 10); values that are not
// integers, or are negative, are rejected. A limit of 0 means the default.
func parsePagination(r *http.Request) (links.ListOptions, error) {
	opts := links.ListOptions{Offset: links.DefaultOffset, Limit: links.DefaultLimit}
	q := r.URL.Query()

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errBadPagination
		}
		opts.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errBadPagination
		}
		if n > 0 {
			opts.Limit = n
		}
	}
	return opts, nil
}
