package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockX/internal/domain/models"
	"StockX/internal/service/ratelimit"
	xhttp "StockX/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuery() models.NewsQuery {
	return Query("AAPL", 10, 20, "en", "publishedAt", time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC))
}

func TestQuery_Window(t *testing.T) {
	q := testQuery()
	assert.Equal(t, "AAPL stock OR AAPL", q.Query)
	assert.Equal(t, "2024-03-05", q.From.Format("2006-01-02"))
	assert.Equal(t, "2024-03-15", q.To.Format("2006-01-02"))
	assert.Equal(t, 20, q.PageSize)
}

func TestNewsAPIFeed_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "AAPL stock OR AAPL", q.Get("q"))
		assert.Equal(t, "2024-03-05", q.Get("from"))
		assert.Equal(t, "2024-03-15", q.Get("to"))
		assert.Equal(t, "en", q.Get("language"))
		assert.Equal(t, "publishedAt", q.Get("sortBy"))
		assert.Equal(t, "20", q.Get("pageSize"))
		assert.Equal(t, "k", q.Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","totalResults":3,"articles":[
			{"source":{"name":"Wire"},"title":"Apple beats estimates","url":"https://x/1","publishedAt":"2024-03-14T10:00:00Z"},
			{"title":"[Removed]","url":"https://x/2","publishedAt":"2024-03-14T10:00:00Z"},
			{"title":"Apple shares slip","url":"https://x/3","publishedAt":"2024-03-13T10:00:00Z"}]}`))
	}))
	defer srv.Close()

	feed := NewNewsAPIFeed(xhttp.NewClient(), srv.URL, "k", nil)
	got, err := feed.Search(context.Background(), testQuery())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Apple beats estimates", got[0].Title)
	assert.Equal(t, "Wire", got[0].Source)
	assert.Equal(t, 14, got[0].PublishedAt.Day())
}

func TestNewsAPIFeed_ErrorStatusIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"bad key"}`))
	}))
	defer srv.Close()

	_, err := NewNewsAPIFeed(xhttp.NewClient(), srv.URL, "k", nil).Search(context.Background(), testQuery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apiKeyInvalid")
}

func TestNewsAPIFeed_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewNewsAPIFeed(xhttp.NewClient(), srv.URL, "k", nil).Search(context.Background(), testQuery())
	var se *xhttp.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
}

func TestNewsAPIFeed_MissingKeyAndThrottle(t *testing.T) {
	_, err := NewNewsAPIFeed(xhttp.NewClient(), "http://unused", "", nil).Search(context.Background(), testQuery())
	assert.ErrorIs(t, err, ErrNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
	}))
	defer srv.Close()

	feed := NewNewsAPIFeed(xhttp.NewClient(), srv.URL, "k", ratelimit.New(1, 0.0001))
	_, err = feed.Search(context.Background(), testQuery())
	require.NoError(t, err)
	_, err = feed.Search(context.Background(), testQuery())
	assert.ErrorIs(t, err, ErrThrottled)
}
