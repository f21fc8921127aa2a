package live

import (
	"encoding/json"
	"testing"
)

const klinePayload = `{
	"e": "kline",
	"s": "BTCUSDT",
	"k": {
		"t": 1672531200000,
		"T": 1672617599999,
		"i": "1d",
		"o": "100.5",
		"c": "110.25",
		"h": "112.0",
		"l": "99.75",
		"v": "1500.5",
		"x": true
	}
}`

func TestParseKlineEvent(t *testing.T) {
	event, ok, err := parseKlineEvent(json.RawMessage(klinePayload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a kline event")
	}
	if !event.Final {
		t.Error("expected a final bar")
	}

	c := event.Candle
	if c.Date != 1672531200000 || c.CloseTime != 1672617599999 {
		t.Errorf("unexpected timestamps %d/%d", c.Date, c.CloseTime)
	}
	if c.Open != 100.5 || c.Close != 110.25 || c.High != 112.0 || c.Low != 99.75 {
		t.Errorf("unexpected prices %+v", c)
	}
	if c.Volume != 1500.5 {
		t.Errorf("expected volume 1500.5, got %v", c.Volume)
	}
}

func TestParseKlineEventIgnoresOtherMessages(t *testing.T) {
	_, ok, err := parseKlineEvent(json.RawMessage(`{"result": null, "id": 1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected non-kline messages to be ignored")
	}
}

func TestParseKlineEventMalformed(t *testing.T) {
	bad := `{"e": "kline", "k": {"t": 1, "T": 2, "o": "not-a-number", "c": "1", "h": "1", "l": "1", "v": "1"}}`
	if _, _, err := parseKlineEvent(json.RawMessage(bad)); err == nil {
		t.Error("expected error for a malformed price")
	}
}
