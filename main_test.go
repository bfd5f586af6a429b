package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealor/stock-chat/pkg/config"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		configFile = config.DefaultFile
		apiURL, model, systemPrompt, chartDir, logLevel, metricsAddr = "", "", "", "", "", ""
		debugHTTP = false
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func yahooChart(n int) string {
	timestamps := make([]string, n)
	closes := make([]string, n)
	for i := 0; i < n; i++ {
		timestamps[i] = fmt.Sprint(1729382400 + i*86400)
		closes[i] = fmt.Sprintf("%.2f", 200+float64(i%6)*1.5-float64(i%4))
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`,
		strings.Join(timestamps, ","), strings.Join(closes, ","))
}

func TestCatalogCommand(t *testing.T) {
	out, err := executeCommand(t, "catalog", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	for _, name := range []string{"get_stock_price", "calculate_SMA", "calculate_EMA", "calculate_RSI", "calculate_MACD", "plot_stock_price"} {
		assert.Contains(t, out, "name: "+name)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "stock-chat version dev")
}

func TestAskCommand(t *testing.T) {
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(yahooChart(60)))
	}))
	defer yahoo.Close()

	var requests atomic.Int32
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-file", r.Header.Get("Authorization"))

		var req struct {
			Messages []map[string]any `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var message map[string]any
		if requests.Add(1) == 1 {
			message = map[string]any{
				"role": "assistant",
				"tool_calls": []map[string]any{{
					"id": "call_1", "type": "function",
					"function": map[string]any{"name": "calculate_SMA", "arguments": `{"ticker":"AAPL","window":10}`},
				}},
			}
		} else {
			last := req.Messages[len(req.Messages)-1]
			message = map[string]any{"role": "assistant", "content": fmt.Sprintf("The 10 day SMA of AAPL is %v.", last["content"])}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-1", "object": "chat.completion", "model": "gpt-4",
			"choices": []map[string]any{{"index": 0, "message": message, "finish_reason": "stop"}},
		})
	}))
	defer llm.Close()

	dir := t.TempDir()
	keyFile := filepath.Join(dir, "API_KEY")
	require.NoError(t, os.WriteFile(keyFile, []byte("sk-file\n"), 0600))
	cfgFile := filepath.Join(dir, "stock-chat.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(fmt.Sprintf("market_url: %s\napi_key_file: %s\nlog_level: error\n", yahoo.URL, keyFile)), 0640))

	out, err := executeCommand(t, "ask", "--config", cfgFile, "--api", llm.URL, "--chart-dir", dir, "What", "is", "the", "10 day SMA of AAPL?")
	require.NoError(t, err)

	assert.Contains(t, out, "The 10 day SMA of AAPL is 2")
	assert.Equal(t, int32(2), requests.Load())
}

func TestAskCommand_ReportsError(t *testing.T) {
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer llm.Close()

	dir := t.TempDir()
	t.Setenv("OPENAI_API_KEY", "")
	cfgFile := filepath.Join(dir, "stock-chat.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(fmt.Sprintf("api_key_file: %s\nlog_level: error\n", filepath.Join(dir, "missing"))), 0640))

	out, err := executeCommand(t, "ask", "--config", cfgFile, "--api", llm.URL, "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, errDisplayed)
	assert.Equal(t, 1, strings.Count(out, "An error occurred:"), out)
	assert.Contains(t, out, "please try again.")
	assert.NotContains(t, out, "Error:")
}

func TestAskCommand_StreamsAnswer(t *testing.T) {
	bodies := make(chan map[string]any, 1)
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		bodies <- body

		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"Ask me ", "about a stock."} {
			chunk, _ := json.Marshal(map[string]any{
				"id": "chatcmpl-1", "object": "chat.completion.chunk", "model": "gpt-4",
				"choices": []map[string]any{{"index": 0, "delta": map[string]any{"role": "assistant", "content": delta}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer llm.Close()

	dir := t.TempDir()
	t.Setenv("OPENAI_API_KEY", "sk-env")
	cfgFile := filepath.Join(dir, "stock-chat.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("log_level: error\n"), 0640))

	out, err := executeCommand(t, "ask", "--config", cfgFile, "--api", llm.URL, "--stream", "--reasoning", "low", "hello")
	require.NoError(t, err)

	body := <-bodies
	assert.Equal(t, true, body["stream"])
	assert.Equal(t, "low", body["reasoning_effort"])
	assert.Contains(t, out, "Ask me about a stock.")
	assert.Equal(t, 1, strings.Count(out, "Assistant:"), out)
}

func TestUnknownCommandIsReported(t *testing.T) {
	_, err := executeCommand(t, "--no-such-flag")
	require.Error(t, err)
	assert.False(t, errors.Is(err, errDisplayed))
}
