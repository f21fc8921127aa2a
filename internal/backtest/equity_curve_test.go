package backtest

import (
	"strings"
	"testing"

	"github.com/yourusername/strategy-tester/internal/models"
	"github.com/yourusername/strategy-tester/test/helpers"
)

func TestBuildEquityCurveOrdersByExit(t *testing.T) {
	late := helpers.ClosedTrade(baseDate+2*helpers.Day, 100, baseDate+4*helpers.Day, 90)
	early := helpers.ClosedTrade(baseDate, 100, baseDate+helpers.Day, 120)

	curve := BuildEquityCurve([]*models.Trade{late, early}, 10000)
	if len(curve) != 2 {
		t.Fatalf("expected 2 equity points, got %d", len(curve))
	}
	if !curve[0].Time.Before(curve[1].Time) {
		t.Errorf("expected points ordered by exit time, got %v then %v", curve[0].Time, curve[1].Time)
	}
	if !almostEqual(curve[0].Value, 10020) {
		t.Errorf("expected equity 10020 after first exit, got %v", curve[0].Value)
	}
	if !almostEqual(curve[1].Value, 10010) {
		t.Errorf("expected equity 10010 after second exit, got %v", curve[1].Value)
	}
}

func TestBuildEquityCurveDrawdown(t *testing.T) {
	trades := []*models.Trade{
		helpers.ClosedTrade(baseDate, 100, baseDate+helpers.Day, 120),
		helpers.ClosedTrade(baseDate+2*helpers.Day, 100, baseDate+3*helpers.Day, 90),
	}

	curve := BuildEquityCurve(trades, 10000)
	if len(curve) != 2 {
		t.Fatalf("expected 2 equity points, got %d", len(curve))
	}
	if !almostEqual(curve[0].Drawdown, 0) {
		t.Errorf("expected no drawdown at the peak, got %v", curve[0].Drawdown)
	}
	want := 10.0 / 10020.0
	if !almostEqual(curve[1].Drawdown, want) {
		t.Errorf("expected drawdown %v, got %v", want, curve[1].Drawdown)
	}
	if !almostEqual(curve.MaxDrawdown(), want) {
		t.Errorf("expected max drawdown %v, got %v", want, curve.MaxDrawdown())
	}
}

func TestBuildEquityCurveSkipsOpenTrades(t *testing.T) {
	trades := []*models.Trade{
		helpers.ClosedTrade(baseDate, 100, baseDate+helpers.Day, 120),
		helpers.OpenTrade(baseDate+2*helpers.Day, 100),
	}

	curve := BuildEquityCurve(trades, 10000)
	if len(curve) != 1 {
		t.Fatalf("expected open trade skipped, got %d points", len(curve))
	}
}

func TestEquityCurveReturns(t *testing.T) {
	trades := []*models.Trade{
		helpers.ClosedTrade(baseDate, 100, baseDate+helpers.Day, 120),
		helpers.ClosedTrade(baseDate+2*helpers.Day, 100, baseDate+3*helpers.Day, 90),
	}
	curve := BuildEquityCurve(trades, 10000)

	returns := curve.GetReturns()
	if len(returns) != 1 {
		t.Fatalf("expected 1 return, got %d", len(returns))
	}
	if !almostEqual(returns[0], -10.0/10020.0) {
		t.Errorf("expected return %v, got %v", -10.0/10020.0, returns[0])
	}
	if curve.GetVolatility() < 0 {
		t.Errorf("volatility must be non-negative, got %v", curve.GetVolatility())
	}
}

func TestEquityCurveToCSV(t *testing.T) {
	trades := []*models.Trade{
		helpers.ClosedTrade(baseDate, 100, baseDate+helpers.Day, 120),
	}
	curve := BuildEquityCurve(trades, 10000)

	csv := curve.ToCSV()
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if lines[0] != "time,value,drawdown,trade_pnl" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "10020.000000") {
		t.Errorf("expected row to contain equity value, got %q", lines[1])
	}
}
