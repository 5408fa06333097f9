package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockX/internal/domain/models"
	pkgch "StockX/pkg/clickhouse"
	applogger "StockX/pkg/logger"
)

const predictionsTable = "stockx_predictions"

// PredictionSchema is the DDL run at startup when the ClickHouse ledger is
// enabled.
var PredictionSchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + predictionsTable + ` (
		id                  UUID,
		symbol              LowCardinality(String),
		last_actual_price   Float64,
		next_day_prediction Float64,
		model_trained_at    DateTime64(3, 'UTC'),
		created_at          DateTime64(3, 'UTC')
	) ENGINE = MergeTree
	ORDER BY (symbol, created_at)`,
}

// CHPredictionRecorder writes the prediction ledger to ClickHouse.
type CHPredictionRecorder struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHPredictionRecorder(ctx context.Context, ch *pkgch.Client, l *applogger.Logger) (*CHPredictionRecorder, error) {
	if err := ch.InitSchema(ctx, PredictionSchema); err != nil {
		return nil, err
	}
	return &CHPredictionRecorder{db: ch.DB(), l: l}, nil
}

func (s *CHPredictionRecorder) Record(ctx context.Context, rec models.PredictionRecord) error {
	q := fmt.Sprintf(`INSERT INTO %s (id, symbol, last_actual_price, next_day_prediction, model_trained_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`, predictionsTable)
	_, err := s.db.ExecContext(ctx, q,
		rec.ID, rec.Symbol, rec.LastActualPrice, rec.NextDayPrediction, rec.ModelTrainedAt, rec.CreatedAt)
	if err != nil {
		s.l.Error("clickhouse record_prediction error",
			applogger.String("symbol", rec.Symbol),
			applogger.Error(err),
		)
		return fmt.Errorf("record prediction: %w", err)
	}
	return nil
}

func (s *CHPredictionRecorder) Recent(ctx context.Context, symbol string, limit int) ([]models.PredictionRecord, error) {
	start := time.Now()
	q := fmt.Sprintf(`SELECT id, symbol, last_actual_price, next_day_prediction, model_trained_at, created_at
		FROM %s WHERE symbol = ? ORDER BY created_at DESC LIMIT ?`, predictionsTable)
	rows, err := s.db.QueryContext(ctx, q, symbol, limit)
	if err != nil {
		s.l.Error("clickhouse recent_predictions query error",
			applogger.String("symbol", symbol),
			applogger.Int("limit", limit),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	out := make([]models.PredictionRecord, 0, limit)
	for rows.Next() {
		var rec models.PredictionRecord
		if err := rows.Scan(&rec.ID, &rec.Symbol, &rec.LastActualPrice, &rec.NextDayPrediction, &rec.ModelTrainedAt, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse recent_predictions ok",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

// Close is a no-op; the pool belongs to pkg/clickhouse.Client.
func (s *CHPredictionRecorder) Close() error { return nil }
