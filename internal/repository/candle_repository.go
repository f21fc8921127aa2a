package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/strategy-tester/internal/database"
	"github.com/yourusername/strategy-tester/internal/models"
)

// PostgresCandleRepository implements CandleRepository for PostgreSQL
type PostgresCandleRepository struct {
	db *database.DB
}

// NewPostgresCandleRepository creates a new candle repository
func NewPostgresCandleRepository(db *database.DB) CandleRepository {
	return &PostgresCandleRepository{db: db}
}

// Save upserts candles for a symbol and interval. Re-fetched rows with
// the same open time overwrite the stored row, so a revised final bar
// from a later sync replaces its unclosed ancestor.
func (r *PostgresCandleRepository) Save(ctx context.Context, symbol, interval string, candles []models.Candle) error {
	query := `
		INSERT INTO candles (symbol, interval, date, open, high, low, close, volume, close_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (symbol, interval, date) DO UPDATE SET
			open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
			close = EXCLUDED.close, volume = EXCLUDED.volume, close_time = EXCLUDED.close_time
	`

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, c := range candles {
			if _, err := tx.Exec(ctx, query,
				symbol, interval, c.Date, c.Open, c.High, c.Low, c.Close, c.Volume, c.CloseTime,
			); err != nil {
				return fmt.Errorf("failed to save candle at %d: %w", c.Date, err)
			}
		}
		return nil
	})
}

// GetRange retrieves candles for [startTime, endTime] ordered by open time
func (r *PostgresCandleRepository) GetRange(ctx context.Context, symbol, interval string, startTime, endTime int64) ([]models.Candle, error) {
	query := `
		SELECT date, open, high, low, close, volume, close_time
		FROM candles
		WHERE symbol = $1 AND interval = $2 AND date >= $3 AND date <= $4
		ORDER BY date
	`
	rows, err := r.db.Query(ctx, query, symbol, interval, startTime, endTime)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Date, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.CloseTime); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, c)
	}
	return candles, rows.Err()
}

// LatestCloseTime returns the newest stored close_time, or 0 when the
// symbol has no stored candles.
func (r *PostgresCandleRepository) LatestCloseTime(ctx context.Context, symbol, interval string) (int64, error) {
	query := `SELECT COALESCE(MAX(close_time), 0) FROM candles WHERE symbol = $1 AND interval = $2`
	var latest int64
	if err := r.db.QueryRow(ctx, query, symbol, interval).Scan(&latest); err != nil {
		return 0, fmt.Errorf("failed to query latest close time: %w", err)
	}
	return latest, nil
}
