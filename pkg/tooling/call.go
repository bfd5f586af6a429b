package tooling

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownFunction  = errors.New("unknown function")
	ErrInvalidArguments = errors.New("invalid function arguments")
)

// Call is one of StockPrice, SMA, EMA, RSI, MACD or PlotPrice.
type Call interface {
	FunctionName() string
	isCall()
}

type StockPrice struct{ Ticker string }

type SMA struct {
	Ticker string
	Window int
}

type EMA struct {
	Ticker string
	Window int
}

type RSI struct{ Ticker string }

type MACD struct{ Ticker string }

type PlotPrice struct{ Ticker string }

func (StockPrice) FunctionName() string { return FuncStockPrice }
func (SMA) FunctionName() string        { return FuncSMA }
func (EMA) FunctionName() string        { return FuncEMA }
func (RSI) FunctionName() string        { return FuncRSI }
func (MACD) FunctionName() string       { return FuncMACD }
func (PlotPrice) FunctionName() string  { return FuncPlotPrice }

func (StockPrice) isCall() {}
func (SMA) isCall()        {}
func (EMA) isCall()        {}
func (RSI) isCall()        {}
func (MACD) isCall()       {}
func (PlotPrice) isCall()  {}

type TickerArguments struct {
	Ticker string `json:"ticker"`
}

type WindowArguments struct {
	Ticker string       `json:"ticker"`
	Window *json.Number `json:"window"`
}

// ParseCall extracts the arguments the named function expects and ignores the rest.
func ParseCall(name, arguments string) (Call, error) {
	if _, ok := Lookup(name); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}

	switch name {
	case FuncStockPrice, FuncRSI, FuncMACD, FuncPlotPrice:
		var args TickerArguments
		if err := decodeArguments(name, arguments, &args); err != nil {
			return nil, err
		}
		ticker, err := normalizeTicker(name, args.Ticker)
		if err != nil {
			return nil, err
		}

		switch name {
		case FuncStockPrice:
			return StockPrice{Ticker: ticker}, nil
		case FuncRSI:
			return RSI{Ticker: ticker}, nil
		case FuncMACD:
			return MACD{Ticker: ticker}, nil
		default:
			return PlotPrice{Ticker: ticker}, nil
		}

	case FuncSMA, FuncEMA:
		var args WindowArguments
		if err := decodeArguments(name, arguments, &args); err != nil {
			return nil, err
		}
		ticker, err := normalizeTicker(name, args.Ticker)
		if err != nil {
			return nil, err
		}
		window, err := parseWindow(name, args.Window)
		if err != nil {
			return nil, err
		}

		if name == FuncSMA {
			return SMA{Ticker: ticker, Window: window}, nil
		}
		return EMA{Ticker: ticker, Window: window}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
}

func decodeArguments(name, arguments string, v any) error {
	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}
	if err := json.Unmarshal([]byte(arguments), v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidArguments, name, err)
	}
	return nil
}

func normalizeTicker(name, ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return "", fmt.Errorf("%w: %s: argument ticker is empty", ErrInvalidArguments, name)
	}
	return ticker, nil
}

// parseWindow accepts integral JSON numbers such as 20 or 20.0 that fit in an int32.
func parseWindow(name string, window *json.Number) (int, error) {
	if window == nil {
		return 0, fmt.Errorf("%w: %s: argument window is missing", ErrInvalidArguments, name)
	}

	f, err := window.Float64()
	if n, intErr := window.Int64(); intErr == nil {
		f, err = float64(n), nil
	}
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %s: argument window %q is not an integer", ErrInvalidArguments, name, window.String())
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: %s: argument window %q is out of range", ErrInvalidArguments, name, window.String())
	}
	return int(f), nil
}
