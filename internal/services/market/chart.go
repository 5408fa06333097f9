package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockX/internal/domain/models"
	"StockX/internal/domain/repository"
	xhttp "StockX/pkg/http"
)

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// ChartFeed reads the Yahoo v8 chart endpoint directly. Adjusted closes are
// used when the response carries them.
type ChartFeed struct {
	client  *xhttp.Client
	baseURL string
	now     func() time.Time
}

func NewChartFeed(client *xhttp.Client, baseURL string) *ChartFeed {
	return &ChartFeed{client: client, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

func (f *ChartFeed) History(ctx context.Context, symbol string, period repository.Period) ([]models.PriceBar, error) {
	var resp chartResponse
	err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    f.baseURL + "/" + url.PathEscape(symbol),
		QueryParams: map[string][]string{
			"interval":             {"1d"},
			"range":                {period.YahooRange()},
			"includeAdjustedClose": {"true"},
		},
	}, &resp)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return []models.PriceBar{}, nil
		}
		return nil, fmt.Errorf("chart %s: %w", symbol, err)
	}
	if e := resp.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return []models.PriceBar{}, nil
		}
		return nil, fmt.Errorf("chart %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return []models.PriceBar{}, nil
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]models.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePx := at(adj, i)
		if closePx == 0 {
			closePx = at(quote.Close, i)
		}
		bars = append(bars, models.PriceBar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  closePx,
			Volume: at(quote.Volume, i),
		})
	}
	return repository.TrimBars(normalizeBars(bars), period.Cutoff(f.now())), nil
}

// at returns s[i], or 0 when the index is missing or the value is null.
func at(s []*float64, i int) float64 {
	if i >= len(s) || s[i] == nil {
		return 0
	}
	return *s[i]
}
