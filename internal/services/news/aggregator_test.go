package news

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockX/internal/domain/models"
	"StockX/internal/services/sentiment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeed struct {
	articles []models.Article
	err      error
	delay    time.Duration
	got      models.NewsQuery
}

func (s *stubFeed) Search(ctx context.Context, q models.NewsQuery) ([]models.Article, error) {
	s.got = q
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.articles, s.err
}

type stubExtractor map[string]string

func (s stubExtractor) Extract(_ context.Context, url string) (string, error) {
	body, ok := s[url]
	if !ok {
		return "", errors.New("not found")
	}
	return body, nil
}

type constScorer map[string]float64

func (c constScorer) Score(text string) float64 { return c[text] }

func articles(titles ...string) []models.Article {
	out := make([]models.Article, len(titles))
	for i, t := range titles {
		out[i] = models.Article{Title: t, URL: "https://x/" + t}
	}
	return out
}

func TestAggregate_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Aggregate(nil))
	assert.Equal(t, 0.0, Aggregate([]models.SentimentSample{}))
}

func TestSignal_ExactMeanOfHeadlines(t *testing.T) {
	scorer := sentiment.NewLexiconScorer(nil)
	titles := []string{"great news", "bad news", "neutral statement"}
	agg := NewAggregator(&stubFeed{articles: articles(titles...)}, scorer)

	sig := agg.Signal(context.Background(), "AAPL", 10)

	var sum float64
	for _, title := range titles {
		sum += scorer.Score(title)
	}
	assert.Equal(t, sum/float64(len(titles)), sig.AveragePolarity)
	assert.Equal(t, 3, sig.SampleCount)
	assert.Equal(t, titles, sig.Headlines)
	assert.Equal(t, "AAPL", sig.Symbol)
	assert.Equal(t, 10, sig.WindowDays)
}

func TestFetch_FailingFeedIsEmpty(t *testing.T) {
	agg := NewAggregator(&stubFeed{err: errors.New("connection refused")}, constScorer{})
	got := agg.Fetch(context.Background(), "AAPL", 10, 20)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	sig := agg.Signal(context.Background(), "AAPL", 10)
	assert.Equal(t, 0.0, sig.AveragePolarity)
	assert.Equal(t, 0, sig.SampleCount)
	assert.Equal(t, []string{}, sig.Headlines)
}

func TestSignal_TimeoutDegradesToNeutral(t *testing.T) {
	feed := &stubFeed{articles: articles("great news"), delay: time.Second}
	agg := NewAggregator(feed, constScorer{"great news": 0.9}, WithTimeout(20*time.Millisecond))

	start := time.Now()
	sig := agg.Signal(context.Background(), "AAPL", 10)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, 0, sig.SampleCount)
}

func TestFetch_KeepsNewestWhenCapping(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }
	feed := &stubFeed{articles: []models.Article{
		{Title: "old", PublishedAt: day(6)},
		{Title: "new", PublishedAt: day(14)},
		{Title: "mid", PublishedAt: day(11)},
	}}
	agg := NewAggregator(feed, constScorer{"old": -1, "new": 1, "mid": 0.5})

	got := agg.Fetch(context.Background(), "AAPL", 10, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Text)
	assert.Equal(t, "mid", got[1].Text)
}

func TestFetch_CapsAtMaxItemsAndPassesQuery(t *testing.T) {
	feed := &stubFeed{articles: articles("a", "b", "c")}
	agg := NewAggregator(feed, constScorer{"a": 1, "b": -1, "c": 0.5})
	agg.now = func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }

	got := agg.Fetch(context.Background(), "MSFT", 5, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 2, feed.got.PageSize)
	assert.Equal(t, "MSFT stock OR MSFT", feed.got.Query)
	assert.Equal(t, "2024-03-10", feed.got.From.Format("2006-01-02"))
}

func TestFetch_BlendsContentScores(t *testing.T) {
	feed := &stubFeed{articles: articles("up", "down")}
	scorer := constScorer{"up": 0.8, "down": -0.4, "body-up": 0.2}
	agg := NewAggregator(feed, scorer,
		WithContent(stubExtractor{"https://x/up": "body-up"}, scorer))

	got := agg.Fetch(context.Background(), "AAPL", 10, 20)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.5, got[0].Polarity, 1e-12)
	assert.InDelta(t, -0.4, got[1].Polarity, 1e-12)
}
