package repository

import (
	"fmt"

	"github.com/yourusername/strategy-tester/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Candle         CandleRepository
	Trade          TradeRepository
	BacktestResult BacktestResultRepository
	PeriodicResult PeriodicResultRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Candle:         NewPostgresCandleRepository(db),
		Trade:          NewPostgresTradeRepository(db),
		BacktestResult: NewPostgresBacktestResultRepository(db),
		PeriodicResult: NewPostgresPeriodicResultRepository(db),
	}, nil
}
