package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
)

const (
	DefaultYahooURL = "https://query1.finance.yahoo.com"
	DefaultRange    = "1y"

	userAgent = "Mozilla/5.0 (compatible; stock-chat/1.0)"
)

type YahooConfig struct {
	BaseURL string
	Range   string
	Timeout time.Duration
}

// Yahoo reads daily candles from the Yahoo Finance v8 chart endpoint.
type Yahoo struct {
	baseURL    string
	rangeParam string
	httpClient *http.Client
	logger     *log.Logger
}

func NewYahoo(cfg YahooConfig, logger *log.Logger) *Yahoo {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}

	rangeParam := cfg.Range
	if rangeParam == "" {
		rangeParam = DefaultRange
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	if logger == nil {
		logger = log.Default()
	}

	return &Yahoo{
		baseURL:    strings.TrimRight(baseURL, "/"),
		rangeParam: rangeParam,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (y *Yahoo) History(ctx context.Context, ticker string) (PriceSeries, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		y.baseURL, url.PathEscape(ticker), url.QueryEscape(y.rangeParam))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return PriceSeries{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := y.httpClient.Do(req)
	if err != nil {
		return PriceSeries{}, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PriceSeries{}, fmt.Errorf("%w: failed to read response: %w", ErrDataUnavailable, err)
	}

	y.logger.Debug("fetched price history", "ticker", ticker, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		return PriceSeries{}, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return PriceSeries{}, fmt.Errorf("%w: status %d: %s", ErrDataUnavailable, resp.StatusCode, string(body))
	}

	return parseChart(ticker, body)
}

func parseChart(ticker string, body []byte) (PriceSeries, error) {
	if !gjson.ValidBytes(body) {
		return PriceSeries{}, fmt.Errorf("%w: malformed chart response", ErrDataUnavailable)
	}

	doc := gjson.ParseBytes(body)
	if description := doc.Get("chart.error.description"); description.Exists() {
		return PriceSeries{}, fmt.Errorf("%w: %s: %s", ErrUnknownTicker, ticker, description.String())
	}

	result := doc.Get("chart.result.0")
	if !result.Exists() {
		return PriceSeries{}, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}

	timestamps := result.Get("timestamp").Array()
	closes := result.Get("indicators.quote.0.close").Array()

	series := PriceSeries{Ticker: ticker}
	for i, ts := range timestamps {
		if i >= len(closes) || closes[i].Type != gjson.Number {
			continue
		}
		series.Points = append(series.Points, Point{
			Date:  time.Unix(ts.Int(), 0).UTC(),
			Close: closes[i].Float(),
		})
	}

	if len(series.Points) == 0 {
		return PriceSeries{}, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}

	return series, nil
}
