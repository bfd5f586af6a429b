package tooling

import (
	"context"
	"fmt"

	"github.com/sealor/stock-chat/pkg/chart"
	"github.com/sealor/stock-chat/pkg/indicator"
	"github.com/sealor/stock-chat/pkg/market"
)

// Analyst computes the values behind each catalog function.
type Analyst interface {
	LatestPrice(ctx context.Context, ticker string) (float64, error)
	SMA(ctx context.Context, ticker string, window int) (float64, error)
	EMA(ctx context.Context, ticker string, window int) (float64, error)
	RSI(ctx context.Context, ticker string) (float64, error)
	MACD(ctx context.Context, ticker string) (indicator.MACDResult, error)
	PlotPrice(ctx context.Context, ticker string) (*chart.Image, error)
}

// MarketAnalyst fetches a fresh price history for every call.
type MarketAnalyst struct {
	fetcher market.Fetcher
}

func NewMarketAnalyst(fetcher market.Fetcher) *MarketAnalyst {
	return &MarketAnalyst{fetcher: fetcher}
}

func (a *MarketAnalyst) closes(ctx context.Context, ticker string) ([]float64, error) {
	series, err := a.fetcher.History(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return series.Closes(), nil
}

func (a *MarketAnalyst) LatestPrice(ctx context.Context, ticker string) (float64, error) {
	closes, err := a.closes(ctx, ticker)
	if err != nil {
		return 0, err
	}
	return indicator.Latest(closes)
}

func (a *MarketAnalyst) SMA(ctx context.Context, ticker string, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("%w: got %d", indicator.ErrInvalidWindow, window)
	}
	closes, err := a.closes(ctx, ticker)
	if err != nil {
		return 0, err
	}
	return indicator.SMA(closes, window)
}

func (a *MarketAnalyst) EMA(ctx context.Context, ticker string, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("%w: got %d", indicator.ErrInvalidWindow, window)
	}
	closes, err := a.closes(ctx, ticker)
	if err != nil {
		return 0, err
	}
	return indicator.EMA(closes, window)
}

func (a *MarketAnalyst) RSI(ctx context.Context, ticker string) (float64, error) {
	closes, err := a.closes(ctx, ticker)
	if err != nil {
		return 0, err
	}
	return indicator.RSI(closes)
}

func (a *MarketAnalyst) MACD(ctx context.Context, ticker string) (indicator.MACDResult, error) {
	closes, err := a.closes(ctx, ticker)
	if err != nil {
		return indicator.MACDResult{}, err
	}
	return indicator.MACD(closes)
}

func (a *MarketAnalyst) PlotPrice(ctx context.Context, ticker string) (*chart.Image, error) {
	series, err := a.fetcher.History(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return chart.RenderPrice(series)
}
