// Package tooling provides the stock functions offered to the model via the tool API
package tooling

import (
	"github.com/openai/openai-go/v3"
	"github.com/samber/lo"
)

const (
	FuncStockPrice = "get_stock_price"
	FuncSMA        = "calculate_SMA"
	FuncEMA        = "calculate_EMA"
	FuncRSI        = "calculate_RSI"
	FuncMACD       = "calculate_MACD"
	FuncPlotPrice  = "plot_stock_price"
)

type Parameter struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// FunctionSpec describes one function the model may call.
type FunctionSpec struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Parameters  []Parameter `yaml:"parameters"`
}

var tickerParameter = Parameter{
	Name:        "ticker",
	Type:        "string",
	Description: "The stock ticker symbol for a company (for example AAPL for Apple).",
	Required:    true,
}

func windowParameter(indicator string) Parameter {
	return Parameter{
		Name:        "window",
		Type:        "integer",
		Description: "The timeframe to consider when calculating the " + indicator,
		Required:    true,
	}
}

// Catalog is sent with every user turn, in this order.
var Catalog = []FunctionSpec{
	{
		Name:        FuncStockPrice,
		Description: "Gets the latest stock price given the ticker symbol of a company.",
		Parameters:  []Parameter{tickerParameter},
	},
	{
		Name:        FuncSMA,
		Description: "Show the Simple Moving Average (SMA) for a given stock ticker and a window",
		Parameters:  []Parameter{tickerParameter, windowParameter("SMA")},
	},
	{
		Name:        FuncEMA,
		Description: "Calculate the exponential moving average for a given stock ticker and a window",
		Parameters:  []Parameter{tickerParameter, windowParameter("EMA")},
	},
	{
		Name:        FuncRSI,
		Description: "Calculate the Relative Strength Index (RSI) for a given stock ticker",
		Parameters:  []Parameter{tickerParameter},
	},
	{
		Name:        FuncMACD,
		Description: "Calculate the Moving average convergence/divergence (MACD) for a given stock ticker",
		Parameters:  []Parameter{tickerParameter},
	},
	{
		Name:        FuncPlotPrice,
		Description: "Plot the stock price for the last year given the ticker symbol of a company.",
		Parameters:  []Parameter{tickerParameter},
	},
}

func Names() []string {
	return lo.Map(Catalog, func(spec FunctionSpec, _ int) string {
		return spec.Name
	})
}

func Lookup(name string) (FunctionSpec, bool) {
	return lo.Find(Catalog, func(spec FunctionSpec) bool {
		return spec.Name == name
	})
}

// Tool converts s to the JSON schema declaration the chat API expects.
func (s FunctionSpec) Tool() openai.ChatCompletionToolUnionParam {
	properties := make(map[string]any, len(s.Parameters))
	required := make([]string, 0, len(s.Parameters))
	for _, p := range s.Parameters {
		properties[p.Name] = map[string]string{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return openai.ChatCompletionToolUnionParam{
		OfFunction: &openai.ChatCompletionFunctionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        s.Name,
				Description: openai.String(s.Description),
				Parameters: openai.FunctionParameters{
					"type":       "object",
					"properties": properties,
					"required":   required,
				},
			},
		},
	}
}

func Tools() []openai.ChatCompletionToolUnionParam {
	return lo.Map(Catalog, func(spec FunctionSpec, _ int) openai.ChatCompletionToolUnionParam {
		return spec.Tool()
	})
}
