package tolapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Collection iterates over every item of a paginated index result, fetching
// pages on demand. Usage mirrors database/sql rows:
//
//	items := c.Collection(ctx, "books", url.Values{"author": {"asimov"}})
//	for items.Next() {
//		item := items.Item()
//		...
//	}
//	if err := items.Err(); err != nil {
//		...
//	}
type Collection struct {
	ctx      context.Context
	client   *Client
	resource string
	filters  url.Values

	items  []map[string]any
	pos    int
	offset int
	limit  int
	total  int
	begun  bool
	err    error
}

// Collection returns an iterator over all items matching filters, following
// the API's offset/limit pagination.
func (c *Client) Collection(ctx context.Context, resource string, filters url.Values) *Collection {
	return &Collection{
		ctx:      ctx,
		client:   c,
		resource: resource,
		filters:  filters,
		pos:      -1,
	}
}

// Next advances to the next item, fetching the next page when the current one
// is exhausted. It returns false when the collection is exhausted or an error
// occurred; consult Err afterwards.
func (col *Collection) Next() bool {
	if col.err != nil {
		return false
	}

	col.pos++
	if col.pos < len(col.items) {
		return true
	}

	if col.begun && col.offset+len(col.items) >= col.total {
		return false
	}

	if !col.fetch() {
		return false
	}

	col.pos = 0
	return len(col.items) > 0
}

// Item returns the current item. It is only valid after a call to Next that
// returned true.
func (col *Collection) Item() map[string]any {
	return col.items[col.pos]
}

// Err returns the first error encountered while iterating.
func (col *Collection) Err() error {
	return col.err
}

// Total returns the total number of items reported by the API. It is zero
// until the first page has been fetched.
func (col *Collection) Total() int {
	return col.total
}

func (col *Collection) fetch() bool {
	filters := url.Values{}
	for k, vs := range col.filters {
		filters[k] = vs
	}
	if col.begun {
		col.offset += len(col.items)
		filters.Set("offset", strconv.Itoa(col.offset))
		if col.limit > 0 {
			filters.Set("limit", strconv.Itoa(col.limit))
		}
	}

	resp, err := col.client.Index(col.ctx, col.resource, filters)
	if err != nil {
		col.err = err
		return false
	}
	if resp.StatusCode != http.StatusOK {
		col.err = &StatusError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
		return false
	}

	var page struct {
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
		Result []map[string]any `json:"result"`
	}
	if err := resp.Decode(&page); err != nil {
		col.err = err
		return false
	}

	col.items = page.Result
	col.offset = page.Pagination.Offset
	col.limit = page.Pagination.Limit
	col.total = page.Pagination.Total
	col.begun = true

	return true
}
