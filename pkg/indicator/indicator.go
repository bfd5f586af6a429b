// Package indicator computes technical indicators over a series of close prices.
//
// Every function takes closes ordered oldest first and returns the most recent
// indicator value. Smoothing is recursive and not bias adjusted, so values match
// a pandas ewm(adjust=False) rendition of the same formulas.
package indicator

import "errors"

const (
	RSIPeriod = 14

	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

var (
	ErrInvalidWindow    = errors.New("window must be a positive integer")
	ErrInsufficientData = errors.New("not enough price data")
)

// Latest returns the last close.
func Latest(closes []float64) (float64, error) {
	if len(closes) == 0 {
		return 0, ErrInsufficientData
	}
	return closes[len(closes)-1], nil
}

// SMA returns the mean of the last window closes.
func SMA(closes []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, ErrInvalidWindow
	}
	if len(closes) < window {
		return 0, ErrInsufficientData
	}

	sum := 0.0
	for _, c := range closes[len(closes)-window:] {
		sum += c
	}
	return sum / float64(window), nil
}

// EMA returns the last value of the exponential moving average with span window.
func EMA(closes []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, ErrInvalidWindow
	}
	if len(closes) == 0 {
		return 0, ErrInsufficientData
	}

	series := emaSeries(closes, spanAlpha(window))
	return series[len(series)-1], nil
}

func spanAlpha(span int) float64 {
	return 2.0 / float64(span+1)
}

// emaSeries seeds with the first value and smooths every following value.
func emaSeries(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
