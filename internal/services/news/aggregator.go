package news

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockX/internal/domain/models"
	"StockX/internal/domain/repository"
	"StockX/internal/domain/service"
	"StockX/pkg/logger"
	"StockX/pkg/trace"
	"StockX/pkg/util"

	"go.opentelemetry.io/otel/attribute"
)

const extractConcurrency = 4

// Aggregator turns a symbol's recent news into a sentiment signal. It never
// returns an error: any upstream failure degrades to an empty sample set.
type Aggregator struct {
	feed      repository.NewsFeed
	title     service.SentimentScorer
	content   service.SentimentScorer
	extractor service.ContentExtractor

	timeout  time.Duration
	maxItems int
	language string
	sortBy   string
	logger   *logger.Logger
	now      func() time.Time
}

type Option func(*Aggregator)

// WithContent scores article bodies with scorer in addition to titles.
func WithContent(extractor service.ContentExtractor, scorer service.SentimentScorer) Option {
	return func(a *Aggregator) {
		a.extractor = extractor
		a.content = scorer
	}
}

func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithMaxItems(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxItems = n
		}
	}
}

// WithQueryDefaults sets the language and sort order sent upstream.
func WithQueryDefaults(language, sortBy string) Option {
	return func(a *Aggregator) {
		if language != "" {
			a.language = language
		}
		if sortBy != "" {
			a.sortBy = sortBy
		}
	}
}

func WithLogger(lgr *logger.Logger) Option {
	return func(a *Aggregator) {
		a.logger = lgr
	}
}

func NewAggregator(feed repository.NewsFeed, title service.SentimentScorer, opts ...Option) *Aggregator {
	a := &Aggregator{
		feed:     feed,
		title:    title,
		timeout:  10 * time.Second,
		maxItems: 20,
		language: "en",
		sortBy:   "publishedAt",
		logger:   logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Query builds the upstream search for symbol over [today-windowDays, today].
func Query(symbol string, windowDays, maxItems int, language, sortBy string, now time.Time) models.NewsQuery {
	from, to := util.DayWindow(now, windowDays)
	return models.NewsQuery{
		Symbol:   symbol,
		Query:    fmt.Sprintf("%s stock OR %s", symbol, symbol),
		From:     from,
		To:       to,
		Language: language,
		SortBy:   sortBy,
		PageSize: maxItems,
	}
}

// Fetch returns at most maxItems scored samples. Failures are logged and
// yield an empty slice.
func (a *Aggregator) Fetch(ctx context.Context, symbol string, windowDays, maxItems int) []models.SentimentSample {
	if maxItems <= 0 {
		maxItems = a.maxItems
	}
	q := Query(symbol, windowDays, maxItems, a.language, a.sortBy, a.now().UTC())

	articles, err := a.feed.Search(ctx, q)
	if err != nil {
		a.logger.Warn("news fetch failed, using neutral sentiment",
			logger.String("symbol", symbol),
			logger.Error(err))
		return []models.SentimentSample{}
	}
	sortByRecency(articles)
	if len(articles) > maxItems {
		articles = articles[:maxItems]
	}

	samples := make([]models.SentimentSample, len(articles))
	for i, art := range articles {
		samples[i] = models.SentimentSample{
			Text:        art.Title,
			Polarity:    a.title.Score(art.Title),
			URL:         art.URL,
			PublishedAt: art.PublishedAt,
		}
	}
	if a.extractor != nil && a.content != nil {
		a.blendContent(ctx, samples)
	}
	return samples
}

// blendContent replaces each polarity with the mean of the title and body
// scores. Articles whose body cannot be fetched keep the title score.
func (a *Aggregator) blendContent(ctx context.Context, samples []models.SentimentSample) {
	sem := make(chan struct{}, extractConcurrency)
	var wg sync.WaitGroup
	for i := range samples {
		if samples[i].URL == "" {
			continue
		}
		wg.Add(1)
		go func(s *models.SentimentSample) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			body, err := a.extractor.Extract(ctx, s.URL)
			if err != nil || body == "" {
				a.logger.Debug("article extraction skipped", logger.String("url", s.URL), logger.Error(err))
				return
			}
			s.Polarity = (s.Polarity + a.content.Score(body)) / 2
		}(&samples[i])
	}
	wg.Wait()
}

// Aggregate is the arithmetic mean of the sample polarities, 0 when empty.
func Aggregate(samples []models.SentimentSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s.Polarity
	}
	return sum / float64(len(samples))
}

// Signal fetches and aggregates under the news timeout.
func (a *Aggregator) Signal(ctx context.Context, symbol string, windowDays int) models.SentimentSignal {
	ctx, span := trace.StartSpan(ctx, "news.Signal", trace.Symbol(symbol), attribute.Int("window_days", windowDays))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	samples := a.Fetch(ctx, symbol, windowDays, a.maxItems)
	sig := models.NeutralSignal(symbol, windowDays)
	sig.AveragePolarity = Aggregate(samples)
	sig.SampleCount = len(samples)
	sig.Samples = samples
	for _, s := range samples {
		sig.Headlines = append(sig.Headlines, s.Text)
	}
	span.SetAttributes(attribute.Int("headlines", sig.SampleCount), attribute.Float64("sentiment", sig.AveragePolarity))
	return sig
}
