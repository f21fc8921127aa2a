// Package live streams exchange kline data over websocket and drives the
// same trade bookkeeping used for historical backtests against it.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/strategy-tester/internal/metrics"
	"github.com/yourusername/strategy-tester/internal/models"
)

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// KlineEvent is one candle update from the stream. Final marks a bar the
// exchange has closed; non-final events revise the bar still forming.
type KlineEvent struct {
	Candle models.Candle
	Final  bool
}

// klineMessage mirrors the exchange's kline stream payload. Prices arrive
// as decimal strings, timestamps as millisecond numbers.
type klineMessage struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Kline     struct {
		OpenTime  int64  `json:"t"`
		CloseTime int64  `json:"T"`
		Interval  string `json:"i"`
		Open      string `json:"o"`
		Close     string `json:"c"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Volume    string `json:"v"`
		Final     bool   `json:"x"`
	} `json:"k"`
}

// KlineStream maintains a websocket subscription to one symbol/interval
// kline feed, reconnecting with exponential backoff on failure.
type KlineStream struct {
	baseURL   string
	symbol    string
	interval  string
	reconnect ReconnectConfig
	logger    *logrus.Logger

	mu          sync.RWMutex
	conn        *websocket.Conn
	isConnected bool
	lastMessage time.Time
}

// NewKlineStream creates a stream client for one symbol and interval.
func NewKlineStream(symbol, interval string, logger *logrus.Logger) *KlineStream {
	if logger == nil {
		logger = logrus.New()
	}
	return &KlineStream{
		baseURL:   "wss://stream.binance.com:9443",
		symbol:    symbol,
		interval:  interval,
		reconnect: DefaultReconnectConfig(),
		logger:    logger,
	}
}

// Run connects and delivers kline events to the handler until the context
// is cancelled or reconnection attempts are exhausted. The handler runs on
// the stream goroutine, so events arrive strictly in order.
func (s *KlineStream) Run(ctx context.Context, handler func(KlineEvent) error) error {
	backoff := s.reconnect.InitialBackoff
	retries := 0

	for {
		err := s.connect(ctx)
		if err == nil {
			retries = 0
			backoff = s.reconnect.InitialBackoff
			err = s.readLoop(ctx, handler)
		}
		s.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		retries++
		if retries > s.reconnect.MaxRetries {
			return fmt.Errorf("stream gave up after %d reconnect attempts: %w", s.reconnect.MaxRetries, err)
		}

		s.logger.WithFields(logrus.Fields{
			"symbol":  s.symbol,
			"attempt": retries,
			"backoff": backoff.String(),
		}).Warn("Stream disconnected, reconnecting")
		metrics.StreamReconnectsTotal.Inc()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * s.reconnect.BackoffMultiplier)
		if backoff > s.reconnect.MaxBackoff {
			backoff = s.reconnect.MaxBackoff
		}
	}
}

func (s *KlineStream) connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	wsURL := fmt.Sprintf("%s/ws/%s@kline_%s", s.baseURL, strings.ToLower(s.symbol), s.interval)
	s.logger.WithField("url", wsURL).Info("Connecting to kline stream")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessage = time.Now()
	return nil
}

func (s *KlineStream) readLoop(ctx context.Context, handler func(KlineEvent) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var raw json.RawMessage
		if err := s.conn.ReadJSON(&raw); err != nil {
			return fmt.Errorf("read stream message: %w", err)
		}

		s.mu.Lock()
		s.lastMessage = time.Now()
		s.mu.Unlock()

		event, ok, err := parseKlineEvent(raw)
		if err != nil {
			s.logger.WithError(err).Warn("Skipping malformed kline message")
			continue
		}
		if !ok {
			continue
		}
		if err := handler(event); err != nil {
			return fmt.Errorf("kline handler: %w", err)
		}
	}
}

// parseKlineEvent decodes a stream message, reporting ok=false for
// non-kline events like subscription acks.
func parseKlineEvent(raw json.RawMessage) (KlineEvent, bool, error) {
	var msg klineMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return KlineEvent{}, false, err
	}
	if msg.EventType != "kline" {
		return KlineEvent{}, false, nil
	}

	candle := models.Candle{
		Date:      msg.Kline.OpenTime,
		CloseTime: msg.Kline.CloseTime,
	}
	fields := []struct {
		raw string
		dst *float64
	}{
		{msg.Kline.Open, &candle.Open},
		{msg.Kline.High, &candle.High},
		{msg.Kline.Low, &candle.Low},
		{msg.Kline.Close, &candle.Close},
		{msg.Kline.Volume, &candle.Volume},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return KlineEvent{}, false, err
		}
		*f.dst, _ = d.Float64()
	}
	return KlineEvent{Candle: candle, Final: msg.Kline.Final}, true, nil
}

// IsConnected returns whether the stream is connected
func (s *KlineStream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received message
func (s *KlineStream) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessage
}

// Close closes the stream connection
func (s *KlineStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	s.isConnected = false
	err := s.conn.Close()
	s.conn = nil
	return err
}
