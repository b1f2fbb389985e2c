package tolapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tolapi "github.com/hthiyaga/tol-api"
)

// pagedBackend serves a fixed set of items in pages of pageSize, in the
// pagination envelope the API uses.
func pagedBackend(t *testing.T, total, pageSize int) *backend {
	t.Helper()

	return &backend{data: func(_ int, req *tolapi.Request) (*tolapi.Response, error) {
		u, err := url.Parse(req.URL)
		require.NoError(t, err)

		offset := 0
		if v := u.Query().Get("offset"); v != "" {
			offset, err = strconv.Atoi(v)
			require.NoError(t, err)
		}

		var items []map[string]any
		for i := offset; i < total && i < offset+pageSize; i++ {
			items = append(items, map[string]any{"id": fmt.Sprintf("item-%d", i)})
		}

		page := map[string]any{
			"pagination": map[string]int{"offset": offset, "limit": pageSize, "total": total},
			"result":     items,
		}
		body, err := json.Marshal(page)
		require.NoError(t, err)

		return jsonResponse(http.StatusOK, string(body)), nil
	}}
}

func TestCollectionIteratesAllPages(t *testing.T) {
	b := pagedBackend(t, 5, 2)
	client, transport := newTestClient(t, b)

	var ids []string
	items := client.Collection(context.Background(), "books", nil)
	for items.Next() {
		ids = append(ids, items.Item()["id"].(string))
	}
	require.NoError(t, items.Err())

	assert.Equal(t, []string{"item-0", "item-1", "item-2", "item-3", "item-4"}, ids)
	assert.Equal(t, 5, items.Total())

	_, dataCalls := b.counts()
	assert.Equal(t, 3, dataCalls, "three pages of two")

	// the second page request carries the advanced offset and the limit
	u, err := url.Parse(transport.requests[2].URL)
	require.NoError(t, err)
	assert.Equal(t, "2", u.Query().Get("offset"))
	assert.Equal(t, "2", u.Query().Get("limit"))
}

func TestCollectionSinglePage(t *testing.T) {
	b := pagedBackend(t, 2, 10)
	client, _ := newTestClient(t, b)

	count := 0
	items := client.Collection(context.Background(), "books", nil)
	for items.Next() {
		count++
	}
	require.NoError(t, items.Err())
	assert.Equal(t, 2, count)

	_, dataCalls := b.counts()
	assert.Equal(t, 1, dataCalls)
}

func TestCollectionEmptyResult(t *testing.T) {
	b := pagedBackend(t, 0, 10)
	client, _ := newTestClient(t, b)

	items := client.Collection(context.Background(), "books", nil)
	assert.False(t, items.Next())
	require.NoError(t, items.Err())
	assert.Equal(t, 0, items.Total())
}

func TestCollectionPreservesFilters(t *testing.T) {
	b := pagedBackend(t, 3, 2)
	client, transport := newTestClient(t, b)

	items := client.Collection(context.Background(), "books", url.Values{"author": {"asimov"}})
	for items.Next() {
	}
	require.NoError(t, items.Err())

	for _, req := range transport.requests[1:] {
		u, err := url.Parse(req.URL)
		require.NoError(t, err)
		assert.Equal(t, "asimov", u.Query().Get("author"))
	}
}

func TestCollectionSurfacesErrorStatus(t *testing.T) {
	b := &backend{data: func(int, *tolapi.Request) (*tolapi.Response, error) {
		return jsonResponse(http.StatusForbidden, `{"message":"no"}`), nil
	}}
	client, _ := newTestClient(t, b)

	items := client.Collection(context.Background(), "books", nil)
	assert.False(t, items.Next())

	var statusErr *tolapi.StatusError
	require.ErrorAs(t, items.Err(), &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}
