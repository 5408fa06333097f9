package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"StockX/internal/domain/models"
	domrepo "StockX/internal/domain/repository"
	"StockX/internal/services/features"
	"StockX/pkg/logger"
	"StockX/pkg/util"
)

const (
	quoteLookbackDays = 10
	maxQuoteSymbols   = 50
	quoteConcurrency  = 8
)

// DefaultTopCompanies is served by the top-companies endpoint when the
// config does not list any.
var DefaultTopCompanies = []string{"AAPL", "MSFT", "AMZN", "GOOGL", "TSLA", "NVDA", "META"}

// MarketService answers quote and history queries straight from the price
// feed. A feed failure is reported as FeedUnavailable; there are no
// fallback prices.
type MarketService struct {
	prices  domrepo.PriceFeed
	timeout time.Duration
	top     []string
	logger  *logger.Logger
}

func NewMarketService(prices domrepo.PriceFeed, timeout time.Duration, top []string, lgr *logger.Logger) *MarketService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if len(top) == 0 {
		top = DefaultTopCompanies
	}
	return &MarketService{prices: prices, timeout: timeout, top: top, logger: lgr}
}

func (m *MarketService) fetch(ctx context.Context, sym string, p domrepo.Period) ([]models.PriceBar, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	bars, err := m.prices.History(ctx, sym, p)
	if err != nil {
		return nil, models.FeedUnavailable(sym, err)
	}
	if len(bars) == 0 {
		return nil, models.SymbolNotFound(sym, nil)
	}
	return bars, nil
}

// Quote returns the latest close of symbol rounded to cents.
func (m *MarketService) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	bars, err := m.fetch(ctx, sym, domrepo.PeriodDays(quoteLookbackDays))
	if err != nil {
		return nil, err
	}
	price := round2(bars[len(bars)-1].Close)
	return &models.Quote{Symbol: sym, Price: &price}, nil
}

// Quotes fetches several symbols concurrently. Per-symbol failures are
// reported inside the map and never fail the whole call.
func (m *MarketService) Quotes(ctx context.Context, csv string) (map[string]models.Quote, error) {
	syms := util.SplitSymbols(csv)
	if len(syms) == 0 {
		return nil, models.InvalidArgument("symbols is required")
	}
	if len(syms) > maxQuoteSymbols {
		return nil, models.InvalidArgument(fmt.Sprintf("at most %d symbols per request", maxQuoteSymbols))
	}
	return m.quotes(ctx, syms), nil
}

// TopCompanies quotes the configured list of large caps.
func (m *MarketService) TopCompanies(ctx context.Context) map[string]models.Quote {
	return m.quotes(ctx, m.top)
}

func (m *MarketService) quotes(ctx context.Context, syms []string) map[string]models.Quote {
	var (
		mu  sync.Mutex
		out = make(map[string]models.Quote, len(syms))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(quoteConcurrency)
	for _, sym := range syms {
		g.Go(func() error {
			q, err := m.Quote(gctx, sym)
			if err != nil {
				m.logger.Warn("quote failed", logger.String("symbol", sym), logger.Error(err))
				q = &models.Quote{Symbol: sym, Error: err.Error()}
			}
			mu.Lock()
			out[sym] = *q
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// History returns daily closes over rangeStr plus the latest indicators.
func (m *MarketService) History(ctx context.Context, symbol, rangeStr string) (*models.PriceHistory, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if rangeStr == "" {
		rangeStr = "6mo"
	}
	period, err := domrepo.ParsePeriod(rangeStr)
	if err != nil {
		return nil, models.InvalidArgument(err.Error())
	}
	bars, err := m.fetch(ctx, sym, period)
	if err != nil {
		return nil, err
	}

	points := make([]models.HistoryPoint, len(bars))
	for i, b := range bars {
		points[i] = models.HistoryPoint{Date: b.Date.Format(util.DateLayout), Close: round2(b.Close)}
	}
	return &models.PriceHistory{
		Symbol:     sym,
		Range:      rangeStr,
		History:    points,
		Indicators: features.LatestIndicators(bars),
	}, nil
}
