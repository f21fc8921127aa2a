package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInitRegistryIdempotent(t *testing.T) {
	first := InitRegistry()
	second := InitRegistry()
	if first != second {
		t.Error("expected the same registry on repeated init")
	}
	if GetRegistry() != first {
		t.Error("expected GetRegistry to return the initialized registry")
	}
}

func TestRegisteredMetricsExposed(t *testing.T) {
	InitRegistry()
	BacktestRunsTotal.Inc()
	CurrentCash.Set(10000)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{
		"strategy_tester_backtest_runs_total",
		"strategy_tester_current_cash",
		"strategy_tester_trades_opened_total",
		"strategy_tester_backtest_duration_seconds",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("expected metric %q in exposition, got none", name)
		}
	}
}
