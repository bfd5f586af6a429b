package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestLatest(t *testing.T) {
	got, err := Latest([]float64{101.5, 102.25, 99.75})
	require.NoError(t, err)
	assert.Equal(t, 99.75, got)

	_, err = Latest(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name    string
		window  int
		want    float64
		wantErr error
	}{
		{name: "trailing three", window: 3, want: 4},
		{name: "whole series", window: 5, want: 3},
		{name: "single value", window: 1, want: 5},
		{name: "window longer than series", window: 6, wantErr: ErrInsufficientData},
		{name: "zero window", window: 0, wantErr: ErrInvalidWindow},
		{name: "negative window", window: -2, wantErr: ErrInvalidWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SMA(closes, tt.window)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tolerance)
		})
	}
}

func TestEMA(t *testing.T) {
	// span 3 gives alpha 0.5: 1, 1.5, 2.25
	got, err := EMA([]float64{1, 2, 3}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 2.25, got, tolerance)

	// span 1 gives alpha 1, the last close
	got, err = EMA([]float64{4, 8, 6}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 6, got, tolerance)

	_, err = EMA([]float64{1, 2, 3}, 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = EMA(nil, 10)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestEMA_WindowLongerThanSeries(t *testing.T) {
	// Recursive smoothing still yields a value, as in the unadjusted form.
	got, err := EMA([]float64{10, 20}, 50)
	require.NoError(t, err)
	assert.InDelta(t, 10+10*2.0/51.0, got, tolerance)
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name    string
		closes  []float64
		want    float64
		wantErr error
	}{
		// deltas 1, -0.5; gains 1 -> 13/14, losses 0 -> 1/28; rs = 26
		{name: "mixed", closes: []float64{10, 11, 10.5}, want: 100 - 100.0/27.0},
		{name: "only gains", closes: []float64{1, 2, 3, 4}, want: 100},
		{name: "only losses", closes: []float64{4, 3, 2, 1}, want: 0},
		{name: "flat", closes: []float64{5, 5, 5}, wantErr: ErrInsufficientData},
		{name: "single close", closes: []float64{5}, wantErr: ErrInsufficientData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RSI(tt.closes)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tolerance)
		})
	}
}

func TestRSI_Bounds(t *testing.T) {
	closes := make([]float64, 252)
	for i := range closes {
		closes[i] = 150 + 20*math.Sin(float64(i)/7) + 5*math.Cos(float64(i)*1.3)
	}

	for n := 2; n <= len(closes); n++ {
		got, err := RSI(closes[:n])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	}
}

func TestRSIWithPeriod_InvalidPeriod(t *testing.T) {
	_, err := RSIWithPeriod([]float64{1, 2, 3}, 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestMACD(t *testing.T) {
	// fast alpha 2/13, slow alpha 2/27, signal alpha 0.2
	got, err := MACD([]float64{1, 2})
	require.NoError(t, err)

	line := 2.0/13.0 - 2.0/27.0
	assert.InDelta(t, line, got.MACD, tolerance)
	assert.InDelta(t, 0.2*line, got.Signal, tolerance)
	assert.InDelta(t, 0.8*line, got.Histogram, tolerance)
}

func TestMACD_Flat(t *testing.T) {
	got, err := MACD([]float64{5, 5, 5, 5})
	require.NoError(t, err)
	assert.InDelta(t, 0, got.MACD, tolerance)
	assert.InDelta(t, 0, got.Signal, tolerance)
	assert.InDelta(t, 0, got.Histogram, tolerance)

	_, err = MACD(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestMACD_HistogramIsLineMinusSignal(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100 + float64(i%9) - float64(i%4)
	}

	got, err := MACD(closes)
	require.NoError(t, err)
	assert.InDelta(t, got.MACD-got.Signal, got.Histogram, tolerance)
}

func TestMACDResultString(t *testing.T) {
	r := MACDResult{MACD: 1.5, Signal: 0.25, Histogram: 1.25}
	assert.Equal(t, "1.5, 0.25, 1.25", r.String())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "189.5", FormatValue(189.5))
	assert.Equal(t, "0", FormatValue(0))
	assert.Equal(t, "-1.25", FormatValue(-1.25))
}

func TestReferenceSeries(t *testing.T) {
	// 40 daily closes; expected values from the unadjusted ewm recursion in float64.
	closes := []float64{
		187.15, 188.9, 186.32, 185.77, 189.41, 191.05, 190.2, 192.88, 193.6, 191.42,
		189.95, 190.73, 194.12, 195.8, 194.6, 196.33, 198.02, 197.15, 195.48, 193.9,
		194.77, 196.5, 199.1, 200.34, 198.76, 197.2, 199.85, 201.47, 202.9, 201.12,
		199.64, 198.3, 200.05, 202.61, 204.18, 203.4, 205.92, 207.15, 206.33, 208.7,
	}
	const delta = 1e-6

	tests := []struct {
		name string
		calc func() (float64, error)
		want float64
	}{
		{name: "sma 20", calc: func() (float64, error) { return SMA(closes, 20) }, want: 201.41450000000003},
		{name: "ema 20", calc: func() (float64, error) { return EMA(closes, 20) }, want: 201.83068893320132},
		{name: "ema 9", calc: func() (float64, error) { return EMA(closes, 9) }, want: 204.86782450470366},
		{name: "rsi", calc: func() (float64, error) { return RSI(closes) }, want: 72.17065981872688},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.calc()
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, delta)
		})
	}

	t.Run("macd", func(t *testing.T) {
		got, err := MACD(closes)
		require.NoError(t, err)
		assert.InDelta(t, 3.4005300745286604, got.MACD, delta)
		assert.InDelta(t, 2.9232005475451266, got.Signal, delta)
		assert.InDelta(t, 0.4773295269835338, got.Histogram, delta)
	})
}
