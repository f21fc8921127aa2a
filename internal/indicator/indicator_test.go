package indicator

import (
	"math"
	"testing"
)

func assertNaNPrefix(t *testing.T, name string, values []float64, warmup int) {
	t.Helper()
	for i := 0; i < warmup && i < len(values); i++ {
		if !math.IsNaN(values[i]) {
			t.Errorf("%s[%d]: expected NaN inside warm-up window, got %v", name, i, values[i])
		}
	}
}

func assertClose(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: expected %v, got %v", name, want, got)
	}
}

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := SMA(values, 3)

	if len(out) != len(values) {
		t.Fatalf("expected aligned output, got len %d", len(out))
	}
	assertNaNPrefix(t, "sma", out, 2)
	assertClose(t, "sma[2]", out[2], 2)
	assertClose(t, "sma[3]", out[3], 3)
	assertClose(t, "sma[4]", out[4], 4)
}

func TestSMALengthExceedsData(t *testing.T) {
	out := SMA([]float64{1, 2}, 5)
	assertNaNPrefix(t, "sma", out, len(out))
}

func TestSMAZeroLength(t *testing.T) {
	out := SMA([]float64{1, 2, 3}, 0)
	assertNaNPrefix(t, "sma", out, len(out))
}

func TestEMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := EMA(values, 3)

	assertNaNPrefix(t, "ema", out, 2)
	// seeded with the SMA of the first window
	assertClose(t, "ema[2]", out[2], 2)
	// alpha = 0.5: 0.5*4 + 0.5*2 = 3, then 0.5*5 + 0.5*3 = 4
	assertClose(t, "ema[3]", out[3], 3)
	assertClose(t, "ema[4]", out[4], 4)
}

func TestHighestLowest(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5}

	high := Highest(values, 3)
	assertNaNPrefix(t, "highest", high, 2)
	assertClose(t, "highest[2]", high[2], 4)
	assertClose(t, "highest[3]", high[3], 4)
	assertClose(t, "highest[4]", high[4], 5)

	low := Lowest(values, 3)
	assertNaNPrefix(t, "lowest", low, 2)
	assertClose(t, "lowest[2]", low[2], 1)
	assertClose(t, "lowest[4]", low[4], 1)
}

func TestRSIAllGains(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	out := RSI(values, 3)

	assertNaNPrefix(t, "rsi", out, 3)
	for i := 3; i < len(out); i++ {
		assertClose(t, "rsi", out[i], 100)
	}
}

func TestRSIMixed(t *testing.T) {
	values := []float64{100, 110, 105, 115, 110, 120}
	out := RSI(values, 3)

	assertNaNPrefix(t, "rsi", out, 3)
	for i := 3; i < len(out); i++ {
		if math.IsNaN(out[i]) {
			t.Fatalf("rsi[%d]: unexpected NaN", i)
		}
		if out[i] <= 0 || out[i] >= 100 {
			t.Errorf("rsi[%d]: expected value strictly between 0 and 100, got %v", i, out[i])
		}
	}
}

func TestRSILengthTooLong(t *testing.T) {
	out := RSI([]float64{1, 2, 3}, 3)
	assertNaNPrefix(t, "rsi", out, len(out))
}

func TestCrossover(t *testing.T) {
	a := []float64{1, 2, 4, 4}
	b := []float64{3, 3, 3, 3}

	cross := Crossover(a, b)
	want := []bool{false, false, true, false}
	for i := range want {
		if cross[i] != want[i] {
			t.Errorf("crossover[%d]: expected %v, got %v", i, want[i], cross[i])
		}
	}
}

func TestCrossunder(t *testing.T) {
	a := []float64{4, 3, 2, 2}
	b := []float64{3, 3, 3, 3}

	cross := Crossunder(a, b)
	want := []bool{false, false, true, false}
	for i := range want {
		if cross[i] != want[i] {
			t.Errorf("crossunder[%d]: expected %v, got %v", i, want[i], cross[i])
		}
	}
}

// Crossings against a warm-up NaN never fire.
func TestCrossoverSkipsNaN(t *testing.T) {
	nan := math.NaN()
	a := []float64{nan, 4}
	b := []float64{3, 3}

	cross := Crossover(a, b)
	if cross[1] {
		t.Error("expected no crossover when the previous bar is NaN")
	}
}

func TestCrossoverUnequalLengths(t *testing.T) {
	a := []float64{1, 2, 4}
	b := []float64{3, 3}

	cross := Crossover(a, b)
	if len(cross) != 2 {
		t.Fatalf("expected output clipped to shorter input, got len %d", len(cross))
	}
}
