package news

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"StockX/internal/domain/models"
	"StockX/internal/service/ratelimit"
	xhttp "StockX/pkg/http"
	"StockX/pkg/util"

	"github.com/gocolly/colly/v2"
)

// RSSFeed searches the Google News RSS endpoint. It needs no API key and
// serves as the keyless alternative to NewsAPIFeed.
type RSSFeed struct {
	baseURL string
	timeout time.Duration
	limiter *ratelimit.Limiter
}

func NewRSSFeed(baseURL string, timeout time.Duration, limiter *ratelimit.Limiter) *RSSFeed {
	return &RSSFeed{baseURL: baseURL, timeout: timeout, limiter: limiter}
}

func (f *RSSFeed) Search(ctx context.Context, q models.NewsQuery) ([]models.Article, error) {
	if f.limiter != nil && !f.limiter.Allow("rss") {
		return nil, ErrThrottled
	}

	days := int(q.To.Sub(q.From).Hours()/24) + 1
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s when:%dd", q.Query, days))
	params.Set("hl", q.Language+"-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:"+q.Language)
	searchURL := f.baseURL + "?" + params.Encode()

	c := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.UserAgent(xhttp.BrowserUserAgent),
	)
	c.SetRequestTimeout(f.timeout)

	until := q.To.AddDate(0, 0, 1)
	var articles []models.Article
	c.OnXML("//item", func(e *colly.XMLElement) {
		title := strings.TrimSpace(e.ChildText("title"))
		if title == "" {
			return
		}
		published, ok := util.ParseTime(strings.TrimSpace(e.ChildText("pubDate")))
		if !ok {
			published = q.To
		}
		if published.Before(q.From) || !published.Before(until) {
			return
		}
		articles = append(articles, models.Article{
			Title:       title,
			URL:         strings.TrimSpace(e.ChildText("link")),
			Source:      strings.TrimSpace(e.ChildText("source")),
			PublishedAt: published,
		})
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = fmt.Errorf("rss %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("rss visit: %w", err)
	}
	c.Wait()
	if visitErr != nil {
		return nil, visitErr
	}
	// Google News orders items by relevance.
	sortByRecency(articles)
	if q.PageSize > 0 && len(articles) > q.PageSize {
		articles = articles[:q.PageSize]
	}
	return articles, nil
}

// sortByRecency orders newest first, keeping feed order among equal times.
func sortByRecency(articles []models.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
