package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockX/internal/domain/models"
	xlogger "StockX/pkg/logger"
)

type fakePredictionUC struct {
	trainErr   error
	predictErr error
	epochs     int
}

func (f *fakePredictionUC) Train(_ context.Context, symbol string, epochs int) (*models.TrainResult, error) {
	f.epochs = epochs
	if f.trainErr != nil {
		return nil, f.trainErr
	}
	return &models.TrainResult{Status: models.StatusSuccess, Message: "Model for " + symbol + " trained successfully."}, nil
}

func (f *fakePredictionUC) Predict(_ context.Context, symbol string) (*models.Prediction, error) {
	if f.predictErr != nil {
		return nil, f.predictErr
	}
	return &models.Prediction{Symbol: symbol, LastActualPrice: 170.5, NextDayPrediction: 171.25, TrainingRange: "From 1980-12-12 to present"}, nil
}

func (f *fakePredictionUC) Sentiment(_ context.Context, symbol string, windowDays int) (*models.SentimentSignal, error) {
	sig := models.NeutralSignal(symbol, windowDays)
	return &sig, nil
}

func (f *fakePredictionUC) Insight(ctx context.Context, symbol string, windowDays int) (*models.Insight, error) {
	p, err := f.Predict(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return &models.Insight{Symbol: symbol, Prediction: p, Sentiment: models.NeutralSignal(symbol, windowDays)}, nil
}

func (f *fakePredictionUC) ListModels(context.Context) ([]string, error) {
	return []string{"AAPL"}, nil
}

func (f *fakePredictionUC) RecentPredictions(context.Context, string, int) ([]models.PredictionRecord, error) {
	return []models.PredictionRecord{}, nil
}

type fakeDispatcher struct {
	req models.TrainRequest
}

func (d *fakeDispatcher) Dispatch(_ context.Context, req models.TrainRequest) (string, error) {
	d.req = req
	return "job-1", nil
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, h interface{ RegisterRoutes(*echo.Echo) }, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestPredict_OK(t *testing.T) {
	h := NewPredictionEchoHandler(xlogger.Nop(), &fakePredictionUC{}, nil)
	rec, env := serve(t, h, http.MethodGet, "/api/predict/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)

	var p models.Prediction
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "AAPL", p.Symbol)
	assert.Equal(t, 171.25, p.NextDayPrediction)
	assert.Contains(t, string(env.Data), `"training_range":"From 1980-12-12 to present"`)
}

func TestPredict_ErrorKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{models.ModelNotFound("AAPL"), http.StatusNotFound, "ERR_MODEL_NOT_FOUND"},
		{models.SymbolNotFound("AAPL", nil), http.StatusNotFound, "ERR_SYMBOL_NOT_FOUND"},
		{models.InsufficientData("AAPL", "Not enough data for prediction"), http.StatusBadRequest, "ERR_INSUFFICIENT_DATA"},
		{models.CorruptArtifact("AAPL", nil), http.StatusInternalServerError, "ERR_CORRUPT_ARTIFACT"},
		{models.FeedUnavailable("AAPL", nil), http.StatusServiceUnavailable, "ERR_FEED_UNAVAILABLE"},
		{context.DeadlineExceeded, http.StatusInternalServerError, "ERR_INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			h := NewPredictionEchoHandler(xlogger.Nop(), &fakePredictionUC{predictErr: tc.err}, nil)
			rec, env := serve(t, h, http.MethodGet, "/api/predict/AAPL")
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.status, env.Status)
			assert.Contains(t, string(env.Data), tc.code)
		})
	}
}

func TestTrain_DefaultsEpochs(t *testing.T) {
	uc := &fakePredictionUC{}
	h := NewPredictionEchoHandler(xlogger.Nop(), uc, nil)
	rec, env := serve(t, h, http.MethodPost, "/api/train/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, uc.epochs)
	assert.Contains(t, string(env.Data), "Model for AAPL trained successfully.")
}

func TestTrain_RejectsBadEpochs(t *testing.T) {
	h := NewPredictionEchoHandler(xlogger.Nop(), &fakePredictionUC{}, nil)
	rec, _ := serve(t, h, http.MethodPost, "/api/train/AAPL?epochs=-3")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrain_EpochCeilingComesFromService(t *testing.T) {
	uc := &fakePredictionUC{trainErr: models.InvalidArgument("epochs must be between 1 and 50")}
	h := NewPredictionEchoHandler(xlogger.Nop(), uc, nil)
	rec, env := serve(t, h, http.MethodPost, "/api/train/AAPL?epochs=9999")
	assert.Equal(t, 9999, uc.epochs)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_BAD_REQUEST")
}

func TestTrain_Async(t *testing.T) {
	d := &fakeDispatcher{}
	h := NewPredictionEchoHandler(xlogger.Nop(), &fakePredictionUC{}, d)
	rec, env := serve(t, h, http.MethodPost, "/api/train/MSFT?epochs=3&async=true")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var q models.QueuedTrainResponse
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.Equal(t, "job-1", q.JobID)
	assert.Equal(t, models.StatusQueued, q.Status)
	assert.Equal(t, 3, d.req.Epochs)
	assert.Equal(t, models.SourceHTTP, d.req.Source)
}

func TestSentimentAndModels(t *testing.T) {
	h := NewPredictionEchoHandler(xlogger.Nop(), &fakePredictionUC{}, nil)

	rec, env := serve(t, h, http.MethodGet, "/api/sentiment/AAPL?window_days=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"symbol":"AAPL","window_days":5,"sentiment":0,"headline_count":0,"headlines":[]}`, string(env.Data))

	rec, _ = serve(t, h, http.MethodGet, "/api/sentiment/AAPL?window_days=99")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = serve(t, h, http.MethodGet, "/api/models")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"trained_models":["AAPL"]}`, string(env.Data))
}
