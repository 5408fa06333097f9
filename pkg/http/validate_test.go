package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trainReq struct {
	Symbol string `param:"symbol" validate:"required,ticker"`
	Epochs int    `query:"epochs" default:"10" validate:"gte=1,lte=500"`
}

func newContext(method, target string, symbol string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("symbol")
	c.SetParamValues(symbol)
	return c
}

func TestReadAndValidateRequest_BindsQueryOnPost(t *testing.T) {
	var req trainReq
	errs := ReadAndValidateRequest(newContext(http.MethodPost, "/train/AAPL?epochs=3", "AAPL"), &req)
	require.Nil(t, errs)
	assert.Equal(t, "AAPL", req.Symbol)
	assert.Equal(t, 3, req.Epochs)
}

func TestReadAndValidateRequest_Defaults(t *testing.T) {
	var req trainReq
	errs := ReadAndValidateRequest(newContext(http.MethodPost, "/train/AAPL", "AAPL"), &req)
	require.Nil(t, errs)
	assert.Equal(t, 10, req.Epochs)
}

func TestReadAndValidateRequest_Invalid(t *testing.T) {
	var req trainReq
	errs := ReadAndValidateRequest(newContext(http.MethodPost, "/train/AAPL?epochs=9999", "AAPL"), &req)
	require.NotNil(t, errs)

	list, ok := errs.([]ValidationError)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "ERR_LTE", list[0].Code)
	assert.Equal(t, "epochs", list[0].Field)
	assert.Equal(t, "500", list[0].Params["max"])
}

func TestReadAndValidateRequest_Ticker(t *testing.T) {
	for _, sym := range []string{"aapl", "BRK.B", "^GSPC", "EURUSD=X"} {
		var req trainReq
		assert.Nil(t, ReadAndValidateRequest(newContext(http.MethodPost, "/train/x", sym), &req), sym)
	}

	var req trainReq
	errs := ReadAndValidateRequest(newContext(http.MethodPost, "/train/x", "AA PL;"), &req)
	list, ok := errs.([]ValidationError)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "ERR_TICKER", list[0].Code)
	assert.Equal(t, "symbol", list[0].Field)
}

func TestAppErrorResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, AppErrorResponse(c, NotFoundError("model not trained yet").WithCode("ERR_MODEL_NOT_FOUND")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_MODEL_NOT_FOUND")

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, AppErrorResponse(c, assert.AnError))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
