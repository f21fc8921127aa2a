// Package indicator computes technical-analysis series over candle data.
// Every function returns a slice aligned index-for-index with its input;
// positions inside the warm-up window hold NaN so downstream conditions
// can treat them as "no value" rather than zero.
package indicator

import "math"

// SMA returns the simple moving average over the given length.
func SMA(values []float64, length int) []float64 {
	out := nanSlice(len(values))
	if length <= 0 || length > len(values) {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= length {
			sum -= values[i-length]
		}
		if i >= length-1 {
			out[i] = sum / float64(length)
		}
	}
	return out
}

// EMA returns the exponential moving average over the given length,
// seeded with the SMA of the first window.
func EMA(values []float64, length int) []float64 {
	out := nanSlice(len(values))
	if length <= 0 || length > len(values) {
		return out
	}
	sum := 0.0
	for i := 0; i < length; i++ {
		sum += values[i]
	}
	alpha := 2.0 / float64(length+1)
	prev := sum / float64(length)
	out[length-1] = prev
	for i := length; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// Highest returns the rolling maximum over the given length.
func Highest(values []float64, length int) []float64 {
	return rollingExtreme(values, length, func(a, b float64) bool { return a > b })
}

// Lowest returns the rolling minimum over the given length.
func Lowest(values []float64, length int) []float64 {
	return rollingExtreme(values, length, func(a, b float64) bool { return a < b })
}

// RSI returns the relative strength index over the given length using
// Wilder smoothing.
func RSI(values []float64, length int) []float64 {
	out := nanSlice(len(values))
	if length <= 0 || length >= len(values) {
		return out
	}
	gain := 0.0
	loss := 0.0
	for i := 1; i <= length; i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	avgGain := gain / float64(length)
	avgLoss := loss / float64(length)
	out[length] = rsiValue(avgGain, avgLoss)
	for i := length + 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		up := 0.0
		down := 0.0
		if delta > 0 {
			up = delta
		} else {
			down = -delta
		}
		avgGain = (avgGain*float64(length-1) + up) / float64(length)
		avgLoss = (avgLoss*float64(length-1) + down) / float64(length)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

// Crossover reports, per index, whether a crossed above b on that bar.
func Crossover(a, b []float64) []bool {
	out := make([]bool, minLen(a, b))
	for i := 1; i < len(out); i++ {
		if hasNaN(a[i-1], b[i-1], a[i], b[i]) {
			continue
		}
		out[i] = a[i-1] <= b[i-1] && a[i] > b[i]
	}
	return out
}

// Crossunder reports, per index, whether a crossed below b on that bar.
func Crossunder(a, b []float64) []bool {
	out := make([]bool, minLen(a, b))
	for i := 1; i < len(out); i++ {
		if hasNaN(a[i-1], b[i-1], a[i], b[i]) {
			continue
		}
		out[i] = a[i-1] >= b[i-1] && a[i] < b[i]
	}
	return out
}

func rollingExtreme(values []float64, length int, better func(a, b float64) bool) []float64 {
	out := nanSlice(len(values))
	if length <= 0 || length > len(values) {
		return out
	}
	for i := length - 1; i < len(values); i++ {
		best := values[i-length+1]
		for j := i - length + 2; j <= i; j++ {
			if better(values[j], best) {
				best = values[j]
			}
		}
		out[i] = best
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func minLen(a, b []float64) int {
	if len(a) < len(b) {
		return len(a)
	}
	return len(b)
}

func hasNaN(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
