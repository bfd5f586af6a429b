// Package assistant runs one chat turn: it lets the model pick a stock
// function, executes it and has the model phrase the result.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	"github.com/sealor/stock-chat/pkg/chart"
	"github.com/sealor/stock-chat/pkg/conversation"
	"github.com/sealor/stock-chat/pkg/metrics"
	"github.com/sealor/stock-chat/pkg/tooling"
)

const DefaultModel = "gpt-4"

var ErrNoChoices = errors.New("model returned no choices")

type Config struct {
	Model        string
	SystemPrompt string
	// Reasoning sets the reasoning effort (e.g. none, low, medium, high).
	Reasoning string
	// Stream receives answer text while the model generates it. Nil disables streaming.
	Stream  io.Writer
	Logger  *log.Logger
	Metrics *metrics.Metrics
}

// Reply is what the presentation layer shows for a turn. Image is only set
// when the model asked for a chart. Streamed reports that Text was already
// written to the stream writer.
type Reply struct {
	Text     string
	Image    *chart.Image
	Function string
	Streamed bool
}

type Assistant struct {
	client       openai.Client
	analyst      tooling.Analyst
	model        string
	systemPrompt string
	reasoning    string
	stream       io.Writer
	logger       *log.Logger
	metrics      *metrics.Metrics
}

func New(client openai.Client, analyst tooling.Analyst, cfg Config) *Assistant {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}

	return &Assistant{
		client:       client,
		analyst:      analyst,
		model:        model,
		systemPrompt: cfg.SystemPrompt,
		reasoning:    cfg.Reasoning,
		stream:       cfg.Stream,
		logger:       logger,
		metrics:      m,
	}
}

// Turn appends input to conv and returns the extended conversation. On error
// conv is returned unchanged so a failed turn leaves no partial history.
func (a *Assistant) Turn(ctx context.Context, conv conversation.Conversation, input string) (conversation.Conversation, Reply, error) {
	staged := conv.Append(conversation.UserMessage(input))

	staged, reply, err := a.turn(ctx, staged)
	if err != nil {
		a.metrics.TurnsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		a.logger.Error("turn failed", "error", err)
		return conv, Reply{}, err
	}

	outcome := metrics.OutcomeAnswer
	if reply.Image != nil {
		outcome = metrics.OutcomeChart
	}
	a.metrics.TurnsTotal.WithLabelValues(outcome).Inc()

	return staged, reply, nil
}

func (a *Assistant) turn(ctx context.Context, staged conversation.Conversation) (conversation.Conversation, Reply, error) {
	first, err := a.complete(ctx, staged, metrics.RoundFunctions, tooling.Tools())
	if err != nil {
		return staged, Reply{}, err
	}

	message := conversation.NewMessageFromOpenAI(first)
	if message.FunctionCall == nil {
		return staged.Append(message), Reply{Text: message.Content, Streamed: a.stream != nil}, nil
	}
	if len(first.ToolCalls) > 1 {
		a.logger.Warn("model requested several functions, dispatching the first", "count", len(first.ToolCalls))
	}

	request := *message.FunctionCall
	call, err := tooling.ParseCall(request.Name, request.Arguments)
	if err != nil {
		return staged, Reply{}, fmt.Errorf("dispatch: %w", err)
	}

	result, err := a.execute(ctx, call)
	if err != nil {
		return staged, Reply{}, err
	}

	// A chart has no useful text for the model to summarize, so the call
	// stays out of the history and no second request is made.
	if _, ok := call.(tooling.PlotPrice); ok {
		return staged, Reply{Text: result.Text, Image: result.Image, Function: request.Name}, nil
	}

	staged = staged.Append(message, conversation.FunctionResultMessage(request, result.Text))

	second, err := a.complete(ctx, staged, metrics.RoundSummary, nil)
	if err != nil {
		return staged, Reply{}, err
	}

	answer := conversation.AssistantMessage(second.Content)
	return staged.Append(answer), Reply{Text: answer.Content, Function: request.Name, Streamed: a.stream != nil}, nil
}

func (a *Assistant) execute(ctx context.Context, call tooling.Call) (tooling.Result, error) {
	name := call.FunctionName()
	start := time.Now()

	result, err := tooling.Execute(ctx, a.analyst, call)
	a.metrics.FunctionDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		a.metrics.FunctionCallsTotal.WithLabelValues(name, metrics.StatusError).Inc()
		return tooling.Result{}, err
	}
	a.metrics.FunctionCallsTotal.WithLabelValues(name, metrics.StatusOK).Inc()

	a.logger.Debug("function executed", "function", name, "call", fmt.Sprintf("%+v", call), "result", result.Text, "duration", time.Since(start))
	return result, nil
}

func (a *Assistant) complete(ctx context.Context, conv conversation.Conversation, round string, tools []openai.ChatCompletionToolUnionParam) (openai.ChatCompletionMessage, error) {
	param := openai.ChatCompletionNewParams{
		Model:    a.model,
		Messages: conversation.ToParams(a.systemPrompt, conv),
	}
	if len(tools) > 0 {
		param.Tools = tools
	}
	if a.reasoning != "" {
		param.ReasoningEffort = shared.ReasoningEffort(a.reasoning)
	}

	a.metrics.ModelRequestsTotal.WithLabelValues(round).Inc()
	a.logger.Debug("requesting completion", "round", round, "messages", len(param.Messages), "tools", len(tools), "stream", a.stream != nil)

	var choices []openai.ChatCompletionChoice
	if a.stream != nil {
		stream := a.client.Chat.Completions.NewStreaming(ctx, param)
		acc, err := a.run(ctx, a.stream, stream)
		if closeErr := stream.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return openai.ChatCompletionMessage{}, fmt.Errorf("model request (%s): %w", round, err)
		}
		choices = acc.Choices
	} else {
		completion, err := a.client.Chat.Completions.New(ctx, param)
		if err != nil {
			return openai.ChatCompletionMessage{}, fmt.Errorf("model request (%s): %w", round, err)
		}
		choices = completion.Choices
	}

	if len(choices) == 0 {
		return openai.ChatCompletionMessage{}, fmt.Errorf("model request (%s): %w", round, ErrNoChoices)
	}
	return choices[0].Message, nil
}
