package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/yourusername/strategy-tester/internal/models"
	"github.com/yourusername/strategy-tester/internal/series"
)

// LoadCSV reads a candle table from a CSV file and returns a validated
// series. The header row must carry the canonical candle columns; extra
// columns are ignored.
func LoadCSV(path string) (*series.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candle file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses candle rows from a reader. Timestamps may be epoch
// milliseconds or common date strings; they are normalized on load.
func ReadCSV(r io.Reader) (*series.Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, models.ErrEmptyData
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if schemaErr := series.ValidateColumns(header); schemaErr != nil {
		return nil, schemaErr
	}

	index := columnIndex(header)
	var candles []models.Candle
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

		candle, err := parseCSVRow(record, index)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		candles = append(candles, candle)
	}

	return series.New(candles)
}

func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	return index
}

func parseCSVRow(record []string, index map[string]int) (models.Candle, error) {
	var candle models.Candle
	var err error

	if candle.Date, err = series.NormalizeTimestamp(record[index["date"]]); err != nil {
		return models.Candle{}, fmt.Errorf("date: %w", err)
	}
	if candle.CloseTime, err = series.NormalizeTimestamp(record[index["close_time"]]); err != nil {
		return models.Candle{}, fmt.Errorf("close_time: %w", err)
	}

	fields := []struct {
		name string
		dst  *float64
	}{
		{"open", &candle.Open},
		{"high", &candle.High},
		{"low", &candle.Low},
		{"close", &candle.Close},
		{"volume", &candle.Volume},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(record[index[f.name]], 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return candle, nil
}
