package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zemenay/techpulse-api/pkg/pagination"
	"go.uber.org/zap"
)

const searchBody = `{
  "hits": {
    "total": {"value": 12},
    "hits": [
      {
        "_score": 3.5,
        "_source": {"article_id": 7, "title": "Go channels", "summary": "s", "author_name": "alice", "tags": ["go"], "created_at": "2026-01-01T00:00:00Z"},
        "highlight": {"title": ["<em>Go</em> channels"], "content": ["use <em>go</em>"]}
      }
    ]
  }
}`

func TestBuildSearchQuery(t *testing.T) {
	t.Parallel()
	q := buildSearchQuery("redis", pagination.Params{Page: 3, Limit: 5})

	assert.Equal(t, 10, q["from"])
	assert.Equal(t, 5, q["size"])
	raw, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"published":true`)
	assert.Contains(t, string(raw), `"query":"redis"`)
}

func TestParseSearchResult(t *testing.T) {
	t.Parallel()
	resp, err := parseSearchResult(strings.NewReader(searchBody), pagination.Params{Page: 1, Limit: 5})
	require.NoError(t, err)

	require.Len(t, resp.Data, 1)
	hit := resp.Data[0]
	assert.Equal(t, uint(7), hit.ArticleID)
	assert.Equal(t, "alice", hit.AuthorName)
	assert.Equal(t, []string{"<em>Go</em> channels", "use <em>go</em>"}, hit.Highlights)
	assert.Equal(t, int64(12), resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)

	_, err = parseSearchResult(strings.NewReader("{"), pagination.Params{Page: 1, Limit: 5})
	assert.Error(t, err)
}

func newSearchForTest(t *testing.T, handler http.HandlerFunc) *SearchService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}, MaxRetries: 0, DisableRetry: true})
	require.NoError(t, err)
	return NewSearchService(client, "articles", zap.NewNop().Sugar())
}

func TestSearchService_Search(t *testing.T) {
	t.Parallel()
	svc := newSearchForTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/articles/_search"))
		_, _ = w.Write([]byte(searchBody))
	})

	resp, err := svc.Search(context.Background(), "go", pagination.Params{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 1)
}

func TestSearchService_BreakerOpens(t *testing.T) {
	t.Parallel()
	var calls int32
	svc := newSearchForTest(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})

	page := pagination.Params{Page: 1, Limit: 5}
	for i := 0; i < 5; i++ {
		_, err := svc.Search(context.Background(), "go", page)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSearchUnavailable)
	}

	before := atomic.LoadInt32(&calls)
	_, err := svc.Search(context.Background(), "go", page)
	assert.ErrorIs(t, err, ErrSearchUnavailable)
	assert.Equal(t, before, atomic.LoadInt32(&calls))
}

func TestDisabledSearch(t *testing.T) {
	t.Parallel()
	_, err := DisabledSearch{}.Search(context.Background(), "go", pagination.Params{Page: 1, Limit: 5})
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}
