package export

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yourusername/strategy-tester/internal/backtest"
	"github.com/yourusername/strategy-tester/internal/models"
	"github.com/yourusername/strategy-tester/test/helpers"
)

// 2023-01-01T00:00:00Z
const baseDate int64 = 1672531200000

func readAllRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return rows
}

func TestWriteResultCSV(t *testing.T) {
	trades := []*models.Trade{helpers.ClosedTrade(baseDate, 100, baseDate+helpers.Day, 120)}
	candles := helpers.Candles(baseDate, 100, 110, 120)
	result, err := backtest.Compute(trades, candles, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "result.csv")
	if err := WriteResultCSV(result, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := readAllRows(t, path)
	if len(rows) != len(backtest.FieldNames())+1 {
		t.Fatalf("expected header plus %d metric rows, got %d", len(backtest.FieldNames()), len(rows))
	}
	if rows[0][0] != "metric" || rows[0][1] != "value" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "initial_capital" || rows[1][1] != "10000" {
		t.Errorf("unexpected first metric row %v", rows[1])
	}
}

func TestWritePeriodicCSV(t *testing.T) {
	trades := []*models.Trade{helpers.ClosedTrade(baseDate, 100, baseDate+helpers.Day, 120)}
	candles := helpers.Candles(baseDate, 100, 110, 120)
	periods, err := backtest.Segment(trades, candles, 10000,
		backtest.Frequency{Kind: backtest.FrequencyDays, Days: 7}, backtest.SegmentOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "periodic.csv")
	if err := WritePeriodicCSV(periods, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := readAllRows(t, path)
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 bucket row, got %d rows", len(rows))
	}
	if rows[0][0] != "period_end" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "2023-01-08" {
		t.Errorf("expected bucket end date 2023-01-08, got %q", rows[1][0])
	}
}

func TestTradesCSVRoundTrip(t *testing.T) {
	trades := []*models.Trade{
		helpers.ClosedTrade(baseDate, 100, baseDate+helpers.Day, 120),
		helpers.OpenTrade(baseDate+2*helpers.Day, 110),
	}

	path := filepath.Join(t.TempDir(), "trades.csv")
	if err := WriteTradesCSV(trades, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ReadTradesCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(got))
	}

	closed := got[0]
	if closed.ID != trades[0].ID {
		t.Errorf("expected id preserved, got %s", closed.ID)
	}
	if closed.Type != models.TradeTypeLong {
		t.Errorf("expected long trade, got %q", closed.Type)
	}
	if closed.EntryDate != baseDate || closed.EntryPrice != 100 {
		t.Errorf("unexpected entry %d @ %v", closed.EntryDate, closed.EntryPrice)
	}
	if closed.Profit == nil || *closed.Profit != 20 {
		t.Errorf("expected profit 20, got %v", closed.Profit)
	}
	if closed.BarsTraded == nil || *closed.BarsTraded != 1 {
		t.Errorf("expected 1 bar traded, got %v", closed.BarsTraded)
	}

	open := got[1]
	if open.ExitDate != nil || open.ExitPrice != nil || open.Profit != nil {
		t.Errorf("expected open trade with empty exit cells, got %+v", open)
	}
}

func TestReadTradesCSVMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	content := "id,type,entry_date\nabc,long,1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := ReadTradesCSV(path)
	var missing *models.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if len(missing.Missing) == 0 {
		t.Error("expected missing column names to be reported")
	}
}

func TestReadTradesCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if _, err := ReadTradesCSV(path); !errors.Is(err, models.ErrEmptyTrades) {
		t.Errorf("expected ErrEmptyTrades for an empty file, got %v", err)
	}

	headerOnly := filepath.Join(t.TempDir(), "header.csv")
	trades := []*models.Trade{}
	if err := WriteTradesCSV(trades, headerOnly); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ReadTradesCSV(headerOnly); !errors.Is(err, models.ErrEmptyTrades) {
		t.Errorf("expected ErrEmptyTrades for a header-only file, got %v", err)
	}
}

func TestWriteCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "trades.csv")
	trades := []*models.Trade{helpers.ClosedTrade(baseDate, 100, baseDate+helpers.Day, 120)}

	if err := WriteTradesCSV(trades, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected export file to exist: %v", err)
	}
}
