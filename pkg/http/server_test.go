package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes func(e *echo.Echo)

func (r routes) RegisterRoutes(e *echo.Echo) { r(e) }

func TestServer_StartServeStop(t *testing.T) {
	h := routes(func(e *echo.Echo) {
		e.GET("/ok", func(c echo.Context) error { return SuccessResponse(c, "pong") })
		e.GET("/boom", func(c echo.Context) error { panic("boom") })
	})
	s := NewServer(h, WithAddr("127.0.0.1", 0), WithMetrics("/metrics", time.Second))
	require.NoError(t, s.Start())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, s.Stop(ctx))
	}()
	base := "http://" + s.Addr()

	resp, err := http.Get(base + "/ok")
	require.NoError(t, err)
	var ok APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ok))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, ok.Status)
	assert.Equal(t, "pong", ok.Data)

	resp, err = http.Get(base + "/boom")
	require.NoError(t, err)
	var failed struct {
		Status int               `json:"status"`
		Data   []ValidationError `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&failed))
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Len(t, failed.Data, 1)
	assert.Equal(t, "ERR_INTERNAL", failed.Data[0].Code)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "stockx_http_requests_total")
}

func TestServer_StartBindError(t *testing.T) {
	first := NewServer(nil, WithAddr("127.0.0.1", 0))
	require.NoError(t, first.Start())
	defer first.Stop(context.Background())

	second := NewServer(nil)
	second.addr = first.Addr()
	assert.Error(t, second.Start())
}
