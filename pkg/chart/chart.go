// Package chart renders price series as PNG line charts
package chart

import (
	"bytes"
	"errors"
	"fmt"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/sealor/stock-chat/pkg/market"
)

const (
	Width  = 1000
	Height = 500
)

var ErrNotEnoughPoints = errors.New("at least two prices are required to draw a chart")

// Image is a rendered chart held in memory.
type Image struct {
	Ticker string
	Title  string
	PNG    []byte
}

func PriceTitle(ticker string) string {
	return fmt.Sprintf("%s Stock Price Over Last Year", ticker)
}

// RenderPrice draws close price against date.
func RenderPrice(series market.PriceSeries) (*Image, error) {
	if len(series.Points) < 2 {
		return nil, ErrNotEnoughPoints
	}

	title := PriceTitle(series.Ticker)
	grid := gochart.Style{
		StrokeColor: drawing.ColorFromHex("e0e0e0"),
		StrokeWidth: 1.0,
	}

	graph := gochart.Chart{
		Title:  title,
		Width:  Width,
		Height: Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeDateValueFormatter,
			GridMajorStyle: grid,
		},
		YAxis: gochart.YAxis{
			Name:           "Stock Price ($)",
			GridMajorStyle: grid,
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    "Close Price",
				XValues: series.Dates(),
				YValues: series.Closes(),
			},
		},
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return &Image{Ticker: series.Ticker, Title: title, PNG: buf.Bytes()}, nil
}
