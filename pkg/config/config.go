// Package config loads the YAML settings file and the API key
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFile       = "stock-chat.yaml"
	DefaultAPIURL     = "https://api.openai.com/v1"
	DefaultModel      = "gpt-4"
	DefaultAPIKeyFile = "API_KEY"
	DefaultChartDir   = "."
	DefaultLogLevel   = "info"
	DefaultRange      = "1y"
)

var ErrMissingAPIKey = errors.New("API key not found")

type Config struct {
	APIURL       string `yaml:"api_url"`
	Model        string `yaml:"model"`
	APIKeyFile   string `yaml:"api_key_file"`
	SystemPrompt string `yaml:"system_prompt"`
	ChartDir     string `yaml:"chart_dir"`
	LogLevel     string `yaml:"log_level"`
	MetricsAddr  string `yaml:"metrics_addr"`
	MarketURL    string `yaml:"market_url"`
	HistoryRange string `yaml:"history_range"`
	Reasoning    string `yaml:"reasoning"`
	Stream       bool   `yaml:"stream"`
}

func Default() Config {
	return Config{
		APIURL:       GetEnv("OPENAI_URL", DefaultAPIURL),
		Model:        DefaultModel,
		APIKeyFile:   DefaultAPIKeyFile,
		ChartDir:     DefaultChartDir,
		LogLevel:     DefaultLogLevel,
		HistoryRange: DefaultRange,
	}
}

func GetEnv(name, fallback string) string {
	value, ok := os.LookupEnv(name)
	if ok {
		return value
	} else {
		return fallback
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadAPIKey prefers the key file and falls back to OPENAI_API_KEY.
func LoadAPIKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if key := strings.TrimSpace(string(data)); key != "" {
			return key, nil
		}
	}

	if key := GetEnv("OPENAI_API_KEY", ""); key != "" {
		return key, nil
	}

	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMissingAPIKey, err)
	}
	return "", fmt.Errorf("%w: %s is empty", ErrMissingAPIKey, path)
}
