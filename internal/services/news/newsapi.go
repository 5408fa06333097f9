package news

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"StockX/internal/domain/models"
	"StockX/internal/service/ratelimit"
	xhttp "StockX/pkg/http"
	"StockX/pkg/util"
)

var (
	ErrNotConfigured = errors.New("news: api key not configured")
	ErrThrottled     = errors.New("news: outbound rate limit exhausted")
)

type newsAPIResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// NewsAPIFeed searches the newsapi.org /v2/everything endpoint.
type NewsAPIFeed struct {
	client  *xhttp.Client
	baseURL string
	apiKey  string
	limiter *ratelimit.Limiter
}

func NewNewsAPIFeed(client *xhttp.Client, baseURL, apiKey string, limiter *ratelimit.Limiter) *NewsAPIFeed {
	return &NewsAPIFeed{client: client, baseURL: baseURL, apiKey: apiKey, limiter: limiter}
}

func (f *NewsAPIFeed) Search(ctx context.Context, q models.NewsQuery) ([]models.Article, error) {
	if f.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if f.limiter != nil && !f.limiter.Allow("newsapi") {
		return nil, ErrThrottled
	}

	params := map[string][]string{
		"q":        {q.Query},
		"from":     {q.From.Format(util.DateLayout)},
		"to":       {q.To.Format(util.DateLayout)},
		"language": {q.Language},
		"sortBy":   {q.SortBy},
		"pageSize": {strconv.Itoa(q.PageSize)},
		"apiKey":   {f.apiKey},
	}

	var resp newsAPIResponse
	err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         f.baseURL,
		QueryParams: params,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	if !strings.EqualFold(resp.Status, "ok") {
		return nil, fmt.Errorf("newsapi: status %q: %s %s", resp.Status, resp.Code, resp.Message)
	}

	out := make([]models.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		title := strings.TrimSpace(a.Title)
		if title == "" || title == "[Removed]" {
			continue
		}
		out = append(out, models.Article{
			Title:       title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: util.ParseTimeDefault(a.PublishedAt, q.To),
		})
	}
	return out, nil
}
