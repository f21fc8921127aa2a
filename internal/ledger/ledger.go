// Package ledger tracks open and closed positions plus the cash and
// commission bookkeeping that entry and exit apply.
package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/strategy-tester/internal/metrics"
	"github.com/yourusername/strategy-tester/internal/models"
	"github.com/yourusername/strategy-tester/internal/series"
)

// QtyMode selects how entry and exit quantities are interpreted.
type QtyMode string

const (
	// QtyFractionOfCash sizes entries as a fraction of current cash
	// (0 < qty <= 1) and exits as a fraction of the matched contract.
	QtyFractionOfCash QtyMode = "fraction"
	// QtyAbsoluteContracts sizes entries and exits as raw contract counts.
	QtyAbsoluteContracts QtyMode = "absolute"
)

// Config parametrizes a Ledger.
type Config struct {
	InitialCapital float64
	// CommissionPercent is the per-side commission in percent; it is stored
	// internally as a rate (percent / 100).
	CommissionPercent float64
	// MinCash is the entry floor: entry is a no-op while cash <= MinCash.
	MinCash float64
	Mode    QtyMode
}

// Validate checks the ledger configuration.
func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive")
	}
	if c.CommissionPercent < 0 {
		return fmt.Errorf("commission cannot be negative")
	}
	if c.Mode != QtyFractionOfCash && c.Mode != QtyAbsoluteContracts {
		return fmt.Errorf("unknown quantity mode %q", c.Mode)
	}
	return nil
}

// Ledger is the mutable record of positions and cash for one strategy run.
// It is not safe for concurrent use: entry and exit calls must arrive from a
// single logical stream of candle-advance events, and any concurrent reader
// needs external synchronization (see the live session queue).
type Ledger struct {
	data   *series.Series
	logger *logrus.Logger

	cash           float64
	initialCapital float64
	commission     float64
	commissionPaid float64
	minCash        float64
	mode           QtyMode

	cursor int
	open   []*models.Trade
	closed []*models.Trade

	cumProfit float64
}

// New builds a Ledger over the given candle series. Each instance owns fresh
// position collections; nothing is shared between ledgers.
func New(data *series.Series, cfg Config, logger *logrus.Logger) (*Ledger, error) {
	if data == nil {
		return nil, fmt.Errorf("candle series is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Ledger{
		data:           data,
		logger:         logger,
		cash:           cfg.InitialCapital,
		initialCapital: cfg.InitialCapital,
		commission:     cfg.CommissionPercent / 100,
		minCash:        cfg.MinCash,
		mode:           cfg.Mode,
		open:           []*models.Trade{},
		closed:         []*models.Trade{},
	}, nil
}

// SetCursor positions the ledger on the candle the next entry/exit call
// refers to.
func (l *Ledger) SetCursor(i int) {
	l.cursor = i
}

// Cursor returns the current candle index.
func (l *Ledger) Cursor() int {
	return l.cursor
}

// Cash returns the current free cash.
func (l *Ledger) Cash() float64 {
	return l.cash
}

// InitialCapital returns the capital the ledger was constructed with.
func (l *Ledger) InitialCapital() float64 {
	return l.initialCapital
}

// CommissionPaid returns the running commission total.
func (l *Ledger) CommissionPaid() float64 {
	return l.commissionPaid
}

// OpenTrades returns the open positions in FIFO order.
func (l *Ledger) OpenTrades() []*models.Trade {
	out := make([]*models.Trade, len(l.open))
	copy(out, l.open)
	return out
}

// ClosedTrades returns the closed positions in close order.
func (l *Ledger) ClosedTrades() []*models.Trade {
	out := make([]*models.Trade, len(l.closed))
	copy(out, l.closed)
	return out
}

// Trades returns the full ledger snapshot: closed positions first, then the
// still-open ones.
func (l *Ledger) Trades() []*models.Trade {
	out := make([]*models.Trade, 0, len(l.closed)+len(l.open))
	out = append(out, l.closed...)
	out = append(out, l.open...)
	return out
}

// HasClosedTrades reports whether at least one position has been closed.
func (l *Ledger) HasClosedTrades() bool {
	return len(l.closed) > 0
}

// Series returns the candle series the ledger trades over.
func (l *Ledger) Series() *series.Series {
	return l.data
}

// Entry opens a position at the close of the current candle. It returns nil
// without error when cash is at or below the configured floor: skipping
// degenerate micro-trades is policy, not a failure.
func (l *Ledger) Entry(signal string, direction models.TradeType, qty float64, comment string) (*models.Trade, error) {
	if err := l.validateEntryQty(qty); err != nil {
		return nil, err
	}
	if l.cash <= l.minCash {
		return nil, nil
	}

	candle := l.currentCandle()
	commission := l.entryCommission(qty, candle.Close)
	l.cash -= commission
	l.commissionPaid += commission

	contract := l.allocate(qty, candle.Close)

	trade := &models.Trade{
		ID:          uuid.New(),
		Type:        direction,
		EntryDate:   candle.CloseTime,
		EntryPrice:  candle.Close,
		EntrySignal: signal,
		Contract:    contract,
	}
	if comment != "" {
		trade.Comment = &comment
	}
	l.open = append(l.open, trade)

	metrics.TradesOpenedTotal.Inc()
	metrics.OpenPositions.Set(float64(len(l.open)))
	metrics.CurrentCash.Set(l.cash)
	metrics.CommissionPaidTotal.Set(l.commissionPaid)

	l.logger.WithFields(logrus.Fields{
		"signal":   signal,
		"type":     direction,
		"contract": contract,
		"price":    candle.Close,
	}).Debug("Opened position")
	return trade, nil
}

// Exit closes (or partially closes) the first open position, FIFO, whose
// entry signal matches fromEntry. The following conditions are silent no-ops
// rather than errors: no matching open position, the cursor sitting on the
// final candle of the series, and a lifetime slice that is empty because the
// trade lived entirely inside a data gap.
func (l *Ledger) Exit(fromEntry, signal string, qty float64, comment string) (*models.Trade, error) {
	if err := l.validateExitQty(qty); err != nil {
		return nil, err
	}

	idx := l.findOpen(fromEntry)
	if idx < 0 {
		return nil, nil
	}
	// Never close on the final, possibly still-forming bar.
	if l.data.IsLast(l.cursor) {
		return nil, nil
	}
	trade := l.open[idx]

	candle := l.currentCandle()
	slice := l.data.Slice(trade.EntryDate, candle.CloseTime)
	if len(slice) == 0 {
		return nil, nil
	}

	closedContract, err := l.closingContract(trade, qty)
	if err != nil {
		return nil, err
	}

	closed := trade
	full := closedContract == trade.Contract
	if !full {
		// Split the closed fraction into its own sealed trade; the
		// remainder stays open with untouched entry fields.
		child := *trade
		child.ID = uuid.New()
		child.Contract = closedContract
		trade.Contract -= closedContract
		closed = &child
	}

	closed.ExitDate = &candle.CloseTime
	exitPrice := candle.Close
	closed.ExitPrice = &exitPrice
	if signal != "" {
		closed.ExitSignal = &signal
	}
	if comment != "" {
		closed.Comment = &comment
	}
	Seal(closed, slice)
	l.settle(closed)

	l.cumProfit += closed.WeightedProfit()
	cum := l.cumProfit
	cumPct := cum / l.initialCapital * 100
	closed.CumProfit = &cum
	closed.CumProfitPercent = &cumPct

	l.closed = append(l.closed, closed)
	if full {
		l.open = append(l.open[:idx], l.open[idx+1:]...)
	}

	metrics.TradesClosedTotal.Inc()
	metrics.OpenPositions.Set(float64(len(l.open)))
	metrics.CurrentCash.Set(l.cash)
	metrics.CommissionPaidTotal.Set(l.commissionPaid)

	l.logger.WithFields(logrus.Fields{
		"signal":     fromEntry,
		"exit_price": exitPrice,
		"profit":     closed.WeightedProfit(),
	}).Debug("Closed position")
	return closed, nil
}

// settle credits cash for a closed trade. Shorts settle against the linear
// approximation 2*entry - exit; see the package documentation before reusing
// this for leveraged accounting.
func (l *Ledger) settle(trade *models.Trade) {
	received := *trade.ExitPrice
	if trade.Type == models.TradeTypeShort {
		received = 2*trade.EntryPrice - *trade.ExitPrice
	}
	receivedTotal := trade.Contract * received
	commission := receivedTotal * l.commission
	l.cash += receivedTotal - commission
	l.commissionPaid += commission
}

func (l *Ledger) currentCandle() models.Candle {
	return l.data.At(l.cursor)
}

func (l *Ledger) findOpen(entrySignal string) int {
	for i, t := range l.open {
		if t.EntrySignal == entrySignal {
			return i
		}
	}
	return -1
}

// entryCommission follows the sizing mode: a fraction of cash being deployed,
// or a per-contract charge at the current price.
func (l *Ledger) entryCommission(qty, price float64) float64 {
	if l.mode == QtyFractionOfCash {
		return l.commission * qty * l.cash
	}
	return l.commission * qty * price
}

// allocate converts the quantity into a contract size and debits cash. In
// fraction mode the contract is computed from post-commission cash.
func (l *Ledger) allocate(qty, price float64) float64 {
	if l.mode == QtyFractionOfCash {
		contract := (qty * l.cash) / price
		l.cash -= qty * l.cash
		return contract
	}
	l.cash -= qty * price
	return qty
}

func (l *Ledger) closingContract(trade *models.Trade, qty float64) (float64, error) {
	if l.mode == QtyFractionOfCash {
		return trade.Contract * qty, nil
	}
	if qty > trade.Contract {
		return 0, &models.InvalidQuantityError{Qty: qty, Reason: fmt.Sprintf("exceeds the open contract %v", trade.Contract)}
	}
	return qty, nil
}

func (l *Ledger) validateEntryQty(qty float64) error {
	if l.mode == QtyFractionOfCash {
		if qty <= 0 || qty > 1 {
			return &models.InvalidQuantityError{Qty: qty, Reason: "must be in (0, 1] in fraction-of-cash mode"}
		}
		return nil
	}
	if qty <= 0 {
		return &models.InvalidQuantityError{Qty: qty, Reason: "must be positive in absolute-contract mode"}
	}
	return nil
}

func (l *Ledger) validateExitQty(qty float64) error {
	if l.mode == QtyFractionOfCash {
		if qty <= 0 || qty > 1 {
			return &models.InvalidQuantityError{Qty: qty, Reason: "must be in (0, 1] in fraction-of-cash mode"}
		}
		return nil
	}
	if qty <= 0 {
		return &models.InvalidQuantityError{Qty: qty, Reason: "must be positive in absolute-contract mode"}
	}
	return nil
}
