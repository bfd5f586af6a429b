package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sealor/stock-chat/pkg/assistant"
	"github.com/sealor/stock-chat/pkg/config"
	"github.com/sealor/stock-chat/pkg/console"
	"github.com/sealor/stock-chat/pkg/conversation"
	"github.com/sealor/stock-chat/pkg/market"
	"github.com/sealor/stock-chat/pkg/metrics"
	"github.com/sealor/stock-chat/pkg/tooling"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile   string
	apiURL       string
	model        string
	systemPrompt string
	chartDir     string
	logLevel     string
	metricsAddr  string
	reasoning    string
	stream       bool
	debugHTTP    bool
)

// errDisplayed marks a failure the console already reported.
var errDisplayed = errors.New("error already displayed")

var rootCmd = &cobra.Command{
	Use:   "stock-chat",
	Short: "Ask questions about stocks in plain language",
	Long: `stock-chat lets a language model answer questions about a stock by calling
indicator functions (latest price, SMA, EMA, RSI, MACD) or drawing a price chart.
Without a subcommand it starts an interactive session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the functions offered to the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(tooling.Catalog)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "stock-chat version %s\n", Version)
		fmt.Fprintf(cmd.OutOrStdout(), "  Git commit: %s\n", GitCommit)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", config.DefaultFile, "YAML configuration file")
	flags.StringVar(&apiURL, "api", "", "URL for the OpenAI API endpoint")
	flags.StringVar(&model, "model", "", "Technical name of the LLM")
	flags.StringVar(&systemPrompt, "system", "", "System message sent with every request")
	flags.StringVar(&chartDir, "chart-dir", "", "Directory for rendered charts")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flags.StringVar(&reasoning, "reasoning", "", "Level of reasoning (e.g. none, low, medium, high)")
	flags.BoolVar(&stream, "stream", false, "Print answers while the model generates them")
	flags.BoolVar(&debugHTTP, "debug-http", false, "Log raw API requests and responses")

	rootCmd.AddCommand(askCmd, catalogCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDisplayed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

type app struct {
	assistant *assistant.Assistant
	console   *console.Console
	logger    *log.Logger
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}

	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if model != "" {
		cfg.Model = model
	}
	if systemPrompt != "" {
		cfg.SystemPrompt = systemPrompt
	}
	if chartDir != "" {
		cfg.ChartDir = chartDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	if reasoning != "" {
		cfg.Reasoning = reasoning
	}
	if stream {
		cfg.Stream = true
	}

	return cfg, nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "stock-chat"})
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger.SetLevel(level)

	options := []option.RequestOption{
		option.WithBaseURL(cfg.APIURL),
		option.WithMaxRetries(0),
	}
	apiKey, err := config.LoadAPIKey(cfg.APIKeyFile)
	if err != nil {
		logger.Warn("no API key loaded, model requests will fail", "file", cfg.APIKeyFile, "error", err)
	} else {
		options = append(options, option.WithAPIKey(apiKey))
	}
	if debugHTTP {
		options = append(options, option.WithDebugLog(nil))
	}
	client := openai.NewClient(options...)

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		serveMetrics(cfg.MetricsAddr, m, logger)
	}

	yahoo := market.NewYahoo(market.YahooConfig{BaseURL: cfg.MarketURL, Range: cfg.HistoryRange}, logger)
	out := console.New(cmd.OutOrStdout(), cfg.ChartDir)

	assistantCfg := assistant.Config{
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		Reasoning:    cfg.Reasoning,
		Logger:       logger,
		Metrics:      m,
	}
	if cfg.Stream {
		assistantCfg.Stream = out.Stream()
	}

	return &app{
		assistant: assistant.New(client, tooling.NewMarketAnalyst(yahoo), assistantCfg),
		console:   out,
		logger:    logger,
	}, nil
}

func serveMetrics(addr string, m *metrics.Metrics, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, reply, err := a.assistant.Turn(ctx, conversation.Conversation{}, strings.Join(args, " "))
	if err != nil {
		a.console.Error(err)
		return fmt.Errorf("%w: %w", errDisplayed, err)
	}
	return a.console.Reply(reply)
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	return a.repl(context.Background(), newLineReader())
}
