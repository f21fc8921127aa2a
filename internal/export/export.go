// Package export writes backtest artifacts (aggregate results, periodic
// tables, trade ledgers) as CSV rows for spreadsheets and charting, and
// reads trade tables back for offline re-aggregation.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/strategy-tester/internal/backtest"
	"github.com/yourusername/strategy-tester/internal/models"
)

// WriteResultCSV writes one aggregate result as a metric,value table.
func WriteResultCSV(result backtest.Result, outputPath string) error {
	return writeFile(outputPath, func(w *csv.Writer) error {
		if err := w.Write([]string{"metric", "value"}); err != nil {
			return err
		}
		fields := result.Fields()
		for _, name := range backtest.FieldNames() {
			if err := w.Write([]string{name, formatFloat(fields[name])}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WritePeriodicCSV writes one row per bucket, metrics as columns, the
// bucket's end date as the row label.
func WritePeriodicCSV(periods backtest.PeriodicResult, outputPath string) error {
	return writeFile(outputPath, func(w *csv.Writer) error {
		header := append([]string{"period_end"}, backtest.FieldNames()...)
		if err := w.Write(header); err != nil {
			return err
		}
		for _, bucket := range periods {
			row := make([]string, 0, len(header))
			row = append(row, time.UnixMilli(bucket.End).UTC().Format("2006-01-02"))
			fields := bucket.Result.Fields()
			for _, name := range backtest.FieldNames() {
				row = append(row, formatFloat(fields[name]))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// tradeExportColumns is the canonical trade table layout plus the id and
// comment columns, which readers treat as optional.
var tradeExportColumns = append(append([]string{"id"}, models.TradeColumns...), "comment")

// WriteTradesCSV writes the ledger snapshot, one row per trade, open
// trades with empty exit cells.
func WriteTradesCSV(trades []*models.Trade, outputPath string) error {
	return writeFile(outputPath, func(w *csv.Writer) error {
		if err := w.Write(tradeExportColumns); err != nil {
			return err
		}
		for _, t := range trades {
			if err := w.Write(tradeRow(t)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadTradesCSV loads a previously exported trade table. A header missing
// required columns is a MissingColumnsError.
func ReadTradesCSV(path string) ([]*models.Trade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trade file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, models.ErrEmptyTrades
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	var missing []string
	for _, name := range models.TradeColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &models.MissingColumnsError{Table: "trades", Missing: missing}
	}

	var trades []*models.Trade
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		line++

		t, err := parseTradeRow(record, index)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		trades = append(trades, t)
	}
	if len(trades) == 0 {
		return nil, models.ErrEmptyTrades
	}
	return trades, nil
}

func writeFile(outputPath string, write func(*csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := write(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// tradeRow matches tradeExportColumns cell for cell.
func tradeRow(t *models.Trade) []string {
	return []string{
		t.ID.String(),
		string(t.Type),
		strconv.FormatInt(t.EntryDate, 10),
		int64OrEmpty(t.ExitDate),
		formatFloat(t.EntryPrice),
		floatOrEmpty(t.ExitPrice),
		t.EntrySignal,
		strOrEmpty(t.ExitSignal),
		formatFloat(t.Contract),
		floatOrEmpty(t.Profit),
		floatOrEmpty(t.ProfitPercent),
		floatOrEmpty(t.CumProfit),
		floatOrEmpty(t.CumProfitPercent),
		floatOrEmpty(t.RunUp),
		floatOrEmpty(t.DrawDown),
		intOrEmpty(t.BarsTraded),
		strOrEmpty(t.Comment),
	}
}

func parseTradeRow(record []string, index map[string]int) (*models.Trade, error) {
	t := &models.Trade{}

	if i, ok := index["id"]; ok && record[i] != "" {
		id, err := uuid.Parse(record[i])
		if err != nil {
			return nil, fmt.Errorf("id: %w", err)
		}
		t.ID = id
	} else {
		t.ID = uuid.New()
	}

	t.Type = models.TradeType(record[index["type"]])
	if t.Type != models.TradeTypeLong && t.Type != models.TradeTypeShort {
		return nil, fmt.Errorf("unknown trade type %q", record[index["type"]])
	}

	var err error
	if t.EntryDate, err = strconv.ParseInt(record[index["entry_date"]], 10, 64); err != nil {
		return nil, fmt.Errorf("entry_date: %w", err)
	}
	if t.EntryPrice, err = strconv.ParseFloat(record[index["entry_price"]], 64); err != nil {
		return nil, fmt.Errorf("entry_price: %w", err)
	}
	if t.Contract, err = strconv.ParseFloat(record[index["contract"]], 64); err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}
	t.EntrySignal = record[index["entry_signal"]]

	if t.ExitDate, err = parseOptionalInt64(record[index["exit_date"]]); err != nil {
		return nil, fmt.Errorf("exit_date: %w", err)
	}
	if t.ExitPrice, err = parseOptionalFloat(record[index["exit_price"]]); err != nil {
		return nil, fmt.Errorf("exit_price: %w", err)
	}
	if s := record[index["exit_signal"]]; s != "" {
		t.ExitSignal = &s
	}
	if i, ok := index["comment"]; ok && record[i] != "" {
		comment := record[i]
		t.Comment = &comment
	}

	optional := []struct {
		name string
		dst  **float64
	}{
		{"profit", &t.Profit},
		{"profit_percent", &t.ProfitPercent},
		{"cum_profit", &t.CumProfit},
		{"cum_profit_percent", &t.CumProfitPercent},
		{"run_up", &t.RunUp},
		{"draw_down", &t.DrawDown},
	}
	for _, f := range optional {
		if *f.dst, err = parseOptionalFloat(record[index[f.name]]); err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	if t.BarsTraded, err = parseOptionalInt(record[index["bars_traded"]]); err != nil {
		return nil, fmt.Errorf("bars_traded: %w", err)
	}

	return t, nil
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseOptionalInt64(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseOptionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func int64OrEmpty(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
