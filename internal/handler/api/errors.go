package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"StockX/internal/domain/models"
	svcmetrics "StockX/internal/service/metrics"
	xhttp "StockX/pkg/http"
	xlogger "StockX/pkg/logger"
)

type kindMapping struct {
	status int
	code   string
}

var kindMappings = map[models.ErrorKind]kindMapping{
	models.KindSymbolNotFound:   {http.StatusNotFound, "ERR_SYMBOL_NOT_FOUND"},
	models.KindInsufficientData: {http.StatusBadRequest, "ERR_INSUFFICIENT_DATA"},
	models.KindDegenerateRange:  {http.StatusUnprocessableEntity, "ERR_DEGENERATE_RANGE"},
	models.KindModelNotFound:    {http.StatusNotFound, "ERR_MODEL_NOT_FOUND"},
	models.KindCorruptArtifact:  {http.StatusInternalServerError, "ERR_CORRUPT_ARTIFACT"},
	models.KindInvalidArgument:  {http.StatusBadRequest, "ERR_BAD_REQUEST"},
	models.KindFeedUnavailable:  {http.StatusServiceUnavailable, "ERR_FEED_UNAVAILABLE"},
	models.KindTrainingFailed:   {http.StatusInternalServerError, "ERR_TRAINING_FAILED"},
	models.KindUpstreamFetch:    {http.StatusBadGateway, "ERR_UPSTREAM"},
	models.KindBusy:             {http.StatusServiceUnavailable, "ERR_BUSY"},
}

// toAppError translates a service error into the HTTP error envelope.
// Unclassified errors become ERR_INTERNAL without leaking their text.
func toAppError(err error) *xhttp.AppError {
	var e *models.Error
	if errors.As(err, &e) {
		if m, ok := kindMappings[e.Kind]; ok {
			msg := e.Message
			if e.Symbol != "" {
				msg = e.Symbol + ": " + msg
			}
			appErr := xhttp.NewAppError(m.code, "", msg, m.status).WithError(err)
			if e.Symbol != "" {
				appErr.WithParam("symbol", e.Symbol)
			}
			return appErr
		}
	}
	if errors.Is(err, echo.ErrNotFound) {
		return xhttp.NotFoundError("not found").WithError(err)
	}
	return xhttp.InternalError("internal error").WithError(err)
}

// respondError logs err, counts it against endpoint and writes the envelope.
func respondError(c echo.Context, lgr *xlogger.Logger, endpoint string, start time.Time, err error) error {
	appErr := toAppError(err)
	svcmetrics.Observe(endpoint, start, appErr.Code)
	if appErr.Status >= http.StatusInternalServerError {
		lgr.Error(endpoint+" failed", xlogger.String("code", appErr.Code), xlogger.Error(err))
	} else {
		lgr.Debug(endpoint+" rejected", xlogger.String("code", appErr.Code), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func respondOK(c echo.Context, endpoint string, start time.Time, data interface{}) error {
	svcmetrics.Observe(endpoint, start, "")
	return xhttp.SuccessResponse(c, data)
}
