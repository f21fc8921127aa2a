package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/strategy-tester/internal/database"
	"github.com/yourusername/strategy-tester/internal/models"
)

const errScanTrade = "failed to scan trade: %w"

// PostgresTradeRepository implements TradeRepository for PostgreSQL
type PostgresTradeRepository struct {
	db *database.DB
}

// NewPostgresTradeRepository creates a new trade repository
func NewPostgresTradeRepository(db *database.DB) TradeRepository {
	return &PostgresTradeRepository{db: db}
}

// SaveAll inserts a ledger snapshot for a run in one transaction
func (r *PostgresTradeRepository) SaveAll(ctx context.Context, runID uuid.UUID, trades []*models.Trade) error {
	query := `
		INSERT INTO trades (
			id, run_id, type, entry_date, entry_price, entry_signal, contract, comment,
			exit_date, exit_price, exit_signal,
			profit, profit_percent, draw_down, run_up, bars_traded,
			cum_profit, cum_profit_percent
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, t := range trades {
			if _, err := tx.Exec(ctx, query,
				t.ID, runID, t.Type, t.EntryDate, t.EntryPrice, t.EntrySignal, t.Contract, t.Comment,
				t.ExitDate, t.ExitPrice, t.ExitSignal,
				t.Profit, t.ProfitPercent, t.DrawDown, t.RunUp, t.BarsTraded,
				t.CumProfit, t.CumProfitPercent,
			); err != nil {
				return fmt.Errorf("failed to save trade %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// GetByRun retrieves a run's trades in entry order
func (r *PostgresTradeRepository) GetByRun(ctx context.Context, runID uuid.UUID) ([]*models.Trade, error) {
	query := `
		SELECT id, type, entry_date, entry_price, entry_signal, contract, comment,
			exit_date, exit_price, exit_signal,
			profit, profit_percent, draw_down, run_up, bars_traded,
			cum_profit, cum_profit_percent
		FROM trades WHERE run_id = $1 ORDER BY entry_date
	`
	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []*models.Trade
	for rows.Next() {
		t := &models.Trade{}
		if err := rows.Scan(
			&t.ID, &t.Type, &t.EntryDate, &t.EntryPrice, &t.EntrySignal, &t.Contract, &t.Comment,
			&t.ExitDate, &t.ExitPrice, &t.ExitSignal,
			&t.Profit, &t.ProfitPercent, &t.DrawDown, &t.RunUp, &t.BarsTraded,
			&t.CumProfit, &t.CumProfitPercent,
		); err != nil {
			return nil, fmt.Errorf(errScanTrade, err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
