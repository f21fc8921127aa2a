package backtest

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/yourusername/strategy-tester/internal/models"
)

// EquityPoint represents a point in the equity curve
type EquityPoint struct {
	Time     time.Time `json:"time"`
	Value    float64   `json:"value"`
	Drawdown float64   `json:"drawdown"`
	TradePnL float64   `json:"trade_pnl"`
}

// EquityCurve represents a time-series of equity points
type EquityCurve []EquityPoint

// BuildEquityCurve reconstructs account equity over time from closed
// trades. The curve starts at the initial capital and adds one point
// per trade exit, ordered by exit time. Drawdown is measured against
// the running equity peak.
func BuildEquityCurve(trades []*models.Trade, initialCapital float64) EquityCurve {
	closed := make([]*models.Trade, 0, len(trades))
	for _, t := range trades {
		if t != nil && t.IsClosed() {
			closed = append(closed, t)
		}
	}
	sort.SliceStable(closed, func(i, j int) bool {
		return *closed[i].ExitDate < *closed[j].ExitDate
	})

	curve := make(EquityCurve, 0, len(closed)+1)
	equity := initialCapital
	peak := initialCapital
	for _, t := range closed {
		pnl := t.WeightedProfit()
		equity += pnl
		if equity > peak {
			peak = equity
		}
		drawdown := 0.0
		if peak > 0 {
			drawdown = (peak - equity) / peak
		}
		curve = append(curve, EquityPoint{
			Time:     time.UnixMilli(*t.ExitDate).UTC(),
			Value:    equity,
			Drawdown: drawdown,
			TradePnL: pnl,
		})
	}
	return curve
}

// GetReturns calculates periodic returns from equity curve
func (e EquityCurve) GetReturns() []float64 {
	if len(e) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(e)-1)
	for i := 1; i < len(e); i++ {
		prev := e[i-1].Value
		curr := e[i].Value
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (curr-prev)/prev)
	}
	return returns
}

// GetVolatility calculates standard deviation of returns
func (e EquityCurve) GetVolatility() float64 {
	returns := e.GetReturns()
	if len(returns) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance)
}

// GetDownsideDeviation calculates downside deviation of returns
func (e EquityCurve) GetDownsideDeviation() float64 {
	returns := e.GetReturns()
	if len(returns) == 0 {
		return 0
	}
	variance := 0.0
	count := 0
	for _, r := range returns {
		if r < 0 {
			variance += r * r
			count++
		}
	}
	if count == 0 {
		return 0
	}
	variance /= float64(count)
	return math.Sqrt(variance)
}

// MaxDrawdown returns the deepest peak-to-trough drawdown on the curve.
func (e EquityCurve) MaxDrawdown() float64 {
	max := 0.0
	for _, point := range e {
		if point.Drawdown > max {
			max = point.Drawdown
		}
	}
	return max
}

// ToCSV exports equity curve to CSV string
func (e EquityCurve) ToCSV() string {
	var buf bytes.Buffer
	buf.WriteString("time,value,drawdown,trade_pnl\n")
	for _, point := range e {
		buf.WriteString(point.Time.Format(time.RFC3339))
		buf.WriteString(",")
		buf.WriteString(formatCurvePoint(point.Value))
		buf.WriteString(",")
		buf.WriteString(formatCurvePoint(point.Drawdown))
		buf.WriteString(",")
		buf.WriteString(formatCurvePoint(point.TradePnL))
		buf.WriteString("\n")
	}
	return buf.String()
}

// ToJSON exports equity curve to JSON string
func (e EquityCurve) ToJSON() string {
	data, _ := json.Marshal(e)
	return string(data)
}

func formatCurvePoint(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
