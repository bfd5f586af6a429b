// Package market fetches daily close prices for a ticker
package market

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUnknownTicker   = errors.New("no price data found for ticker")
	ErrDataUnavailable = errors.New("market data unavailable")
)

type Point struct {
	Date  time.Time
	Close float64
}

// PriceSeries is ordered by date, oldest first.
type PriceSeries struct {
	Ticker string
	Points []Point
}

func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

func (s PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		dates[i] = p.Date
	}
	return dates
}

type Fetcher interface {
	History(ctx context.Context, ticker string) (PriceSeries, error)
}
