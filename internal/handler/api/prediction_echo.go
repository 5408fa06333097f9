package api

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"StockX/internal/domain/models"
	"StockX/internal/domain/service"
	svcmetrics "StockX/internal/service/metrics"
	xhttp "StockX/pkg/http"
	xlogger "StockX/pkg/logger"
)

// PredictionUsecase is what the prediction endpoints need from the service.
type PredictionUsecase interface {
	Train(ctx context.Context, symbol string, epochs int) (*models.TrainResult, error)
	Predict(ctx context.Context, symbol string) (*models.Prediction, error)
	Sentiment(ctx context.Context, symbol string, windowDays int) (*models.SentimentSignal, error)
	Insight(ctx context.Context, symbol string, windowDays int) (*models.Insight, error)
	ListModels(ctx context.Context) ([]string, error)
	RecentPredictions(ctx context.Context, symbol string, limit int) ([]models.PredictionRecord, error)
}

// PredictionEchoHandler serves training, prediction and sentiment.
type PredictionEchoHandler struct {
	logger     *xlogger.Logger
	uc         PredictionUsecase
	dispatcher service.TrainDispatcher
}

// NewPredictionEchoHandler wires the handler. A nil dispatcher makes
// async=true train requests run synchronously.
func NewPredictionEchoHandler(logger *xlogger.Logger, uc PredictionUsecase, dispatcher service.TrainDispatcher) *PredictionEchoHandler {
	svcmetrics.Register()
	return &PredictionEchoHandler{logger: logger, uc: uc, dispatcher: dispatcher}
}

func (h *PredictionEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/train/:symbol", h.Train)
	g.GET("/predict/:symbol", h.Predict)
	g.GET("/sentiment/:symbol", h.Sentiment)
	g.GET("/insight/:symbol", h.Insight)
	g.GET("/models", h.Models)
	g.GET("/predictions/:symbol", h.Predictions)
}

func (h *PredictionEchoHandler) Train(c echo.Context) error {
	start := time.Now()
	req := &models.TrainRequestHTTP{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if req.Async && h.dispatcher != nil {
		id, err := h.dispatcher.Dispatch(c.Request().Context(), models.TrainRequest{
			Symbol: req.Symbol,
			Epochs: req.Epochs,
			Source: models.SourceHTTP,
		})
		if err != nil {
			return respondError(c, h.logger, "train", start, err)
		}
		return xhttp.AcceptedResponse(c, &models.QueuedTrainResponse{
			Status:  models.StatusQueued,
			Message: fmt.Sprintf("Training for %s queued.", req.Symbol),
			JobID:   id,
		})
	}

	res, err := h.uc.Train(c.Request().Context(), req.Symbol, req.Epochs)
	if err != nil {
		return respondError(c, h.logger, "train", start, err)
	}
	return respondOK(c, "train", start, res)
}

func (h *PredictionEchoHandler) Predict(c echo.Context) error {
	start := time.Now()
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Predict(c.Request().Context(), req.Symbol)
	if err != nil {
		return respondError(c, h.logger, "predict", start, err)
	}
	return respondOK(c, "predict", start, res)
}

func (h *PredictionEchoHandler) Sentiment(c echo.Context) error {
	start := time.Now()
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Sentiment(c.Request().Context(), req.Symbol, req.WindowDays)
	if err != nil {
		return respondError(c, h.logger, "sentiment", start, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return respondOK(c, "sentiment", start, res)
}

func (h *PredictionEchoHandler) Insight(c echo.Context) error {
	start := time.Now()
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Insight(c.Request().Context(), req.Symbol, req.WindowDays)
	if err != nil {
		return respondError(c, h.logger, "insight", start, err)
	}
	return respondOK(c, "insight", start, res)
}

func (h *PredictionEchoHandler) Models(c echo.Context) error {
	start := time.Now()
	syms, err := h.uc.ListModels(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, "models", start, err)
	}
	return respondOK(c, "models", start, &models.ModelsResponse{TrainedModels: syms})
}

func (h *PredictionEchoHandler) Predictions(c echo.Context) error {
	start := time.Now()
	req := &models.PredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.uc.RecentPredictions(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		return respondError(c, h.logger, "predictions", start, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}
