package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"StockX/internal/domain/models"
	"StockX/pkg/logger"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLitePredictionRecorder is the prediction ledger backed by a local
// SQLite file.
type SQLitePredictionRecorder struct {
	db *sql.DB
}

func NewSQLitePredictionRecorder(path string, lgr *logger.Logger) (*SQLitePredictionRecorder, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single writer connection: concurrent predictions would otherwise see SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLitePredictionRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	lgr.Info("sqlite prediction ledger opened", logger.String("path", path))
	return r, nil
}

func (r *SQLitePredictionRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			id                  TEXT PRIMARY KEY,
			symbol              TEXT NOT NULL,
			last_actual_price   REAL NOT NULL,
			next_day_prediction REAL NOT NULL,
			model_trained_at    INTEGER NOT NULL,
			created_at          INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_symbol_created ON predictions(symbol, created_at)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLitePredictionRecorder) Record(ctx context.Context, rec models.PredictionRecord) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO predictions
		(id, symbol, last_actual_price, next_day_prediction, model_trained_at, created_at)
		VALUES (?,?,?,?,?,?)`,
		rec.ID.String(), rec.Symbol, rec.LastActualPrice, rec.NextDayPrediction,
		rec.ModelTrainedAt.UnixMilli(), rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record prediction: %w", err)
	}
	return nil
}

// Recent returns the newest rows first.
func (r *SQLitePredictionRecorder) Recent(ctx context.Context, symbol string, limit int) ([]models.PredictionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, symbol, last_actual_price, next_day_prediction, model_trained_at, created_at
		FROM predictions WHERE symbol = ? ORDER BY created_at DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	out := make([]models.PredictionRecord, 0, limit)
	for rows.Next() {
		var (
			rec              models.PredictionRecord
			id               string
			trainedAt, stamp int64
		)
		if err := rows.Scan(&id, &rec.Symbol, &rec.LastActualPrice, &rec.NextDayPrediction, &trainedAt, &stamp); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse prediction id: %w", err)
		}
		rec.ModelTrainedAt = time.UnixMilli(trainedAt).UTC()
		rec.CreatedAt = time.UnixMilli(stamp).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLitePredictionRecorder) Close() error {
	return r.db.Close()
}

// NopPredictionRecorder drops every record.
type NopPredictionRecorder struct{}

func (NopPredictionRecorder) Record(context.Context, models.PredictionRecord) error { return nil }
func (NopPredictionRecorder) Close() error                                          { return nil }

func (NopPredictionRecorder) Recent(context.Context, string, int) ([]models.PredictionRecord, error) {
	return []models.PredictionRecord{}, nil
}
