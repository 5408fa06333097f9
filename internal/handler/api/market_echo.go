package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"StockX/internal/domain/models"
	svcmetrics "StockX/internal/service/metrics"
	xhttp "StockX/pkg/http"
	xlogger "StockX/pkg/logger"
)

// MarketUsecase is what the market endpoints need.
type MarketUsecase interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	Quotes(ctx context.Context, csv string) (map[string]models.Quote, error)
	TopCompanies(ctx context.Context) map[string]models.Quote
	History(ctx context.Context, symbol, rangeStr string) (*models.PriceHistory, error)
}

// MarketEchoHandler serves quotes and price history.
type MarketEchoHandler struct {
	logger *xlogger.Logger
	uc     MarketUsecase
}

func NewMarketEchoHandler(logger *xlogger.Logger, uc MarketUsecase) *MarketEchoHandler {
	svcmetrics.Register()
	return &MarketEchoHandler{logger: logger, uc: uc}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	g := e.Group("/api")
	g.GET("/stock/:symbol", h.Quote)
	g.GET("/stock/:symbol/history", h.History)
	g.GET("/stocks", h.Quotes)
	g.GET("/top-companies", h.TopCompanies)
}

func (h *MarketEchoHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, &models.RootResponse{Message: "StockX API is running!"})
}

func (h *MarketEchoHandler) Quote(c echo.Context) error {
	start := time.Now()
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	q, err := h.uc.Quote(c.Request().Context(), req.Symbol)
	if err != nil {
		return respondError(c, h.logger, "quote", start, err)
	}
	return respondOK(c, "quote", start, q)
}

func (h *MarketEchoHandler) Quotes(c echo.Context) error {
	start := time.Now()
	req := &models.QuotesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	out, err := h.uc.Quotes(c.Request().Context(), req.Symbols)
	if err != nil {
		return respondError(c, h.logger, "quotes", start, err)
	}
	return respondOK(c, "quotes", start, out)
}

func (h *MarketEchoHandler) TopCompanies(c echo.Context) error {
	start := time.Now()
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=30")
	return respondOK(c, "top_companies", start, h.uc.TopCompanies(c.Request().Context()))
}

func (h *MarketEchoHandler) History(c echo.Context) error {
	start := time.Now()
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.History(c.Request().Context(), req.Symbol, req.Range)
	if err != nil {
		return respondError(c, h.logger, "history", start, err)
	}
	return respondOK(c, "history", start, res)
}
