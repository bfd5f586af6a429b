package tooling

import (
	"context"
	"fmt"

	"github.com/sealor/stock-chat/pkg/chart"
	"github.com/sealor/stock-chat/pkg/indicator"
)

// Result is the textual outcome of a call; Image is only set for PlotPrice.
type Result struct {
	Text  string
	Image *chart.Image
}

func Execute(ctx context.Context, analyst Analyst, call Call) (Result, error) {
	var (
		value float64
		err   error
	)

	switch c := call.(type) {
	case StockPrice:
		value, err = analyst.LatestPrice(ctx, c.Ticker)
	case SMA:
		value, err = analyst.SMA(ctx, c.Ticker, c.Window)
	case EMA:
		value, err = analyst.EMA(ctx, c.Ticker, c.Window)
	case RSI:
		value, err = analyst.RSI(ctx, c.Ticker)
	case MACD:
		macd, err := analyst.MACD(ctx, c.Ticker)
		if err != nil {
			return Result{}, fmt.Errorf("function %s: %w", c.FunctionName(), err)
		}
		return Result{Text: macd.String()}, nil
	case PlotPrice:
		img, err := analyst.PlotPrice(ctx, c.Ticker)
		if err != nil {
			return Result{}, fmt.Errorf("function %s: %w", c.FunctionName(), err)
		}
		return Result{Text: img.Title, Image: img}, nil
	default:
		return Result{}, fmt.Errorf("%w: %T", ErrUnknownFunction, call)
	}

	if err != nil {
		return Result{}, fmt.Errorf("function %s: %w", call.FunctionName(), err)
	}
	return Result{Text: indicator.FormatValue(value)}, nil
}
