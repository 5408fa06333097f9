package market

import (
	"context"
	"fmt"
	"time"

	"StockX/internal/domain/models"
	"StockX/internal/domain/repository"

	yfmodels "github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// YFinanceFeed reads daily adjusted bars through go-yfinance.
type YFinanceFeed struct {
	now func() time.Time
}

func NewYFinanceFeed() *YFinanceFeed {
	return &YFinanceFeed{now: time.Now}
}

type historyResult struct {
	bars []yfmodels.Bar
	err  error
}

func (f *YFinanceFeed) History(ctx context.Context, symbol string, period repository.Period) ([]models.PriceBar, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("yfinance ticker %s: %w", symbol, err)
	}
	params := yfmodels.HistoryParams{
		Period:     period.YahooRange(),
		Interval:   "1d",
		AutoAdjust: true,
	}

	// The library call is not context aware, so the caller's deadline is
	// enforced around it.
	done := make(chan historyResult, 1)
	go func() {
		defer t.Close()
		bars, err := t.History(params)
		done <- historyResult{bars: bars, err: err}
	}()

	var res historyResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("yfinance history %s: %w", symbol, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		if isNoData(res.err) {
			return []models.PriceBar{}, nil
		}
		return nil, fmt.Errorf("yfinance history %s: %w", symbol, res.err)
	}

	bars := make([]models.PriceBar, 0, len(res.bars))
	for _, b := range res.bars {
		bars = append(bars, models.PriceBar{
			Date:   b.Date,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	return repository.TrimBars(normalizeBars(bars), period.Cutoff(f.now())), nil
}
