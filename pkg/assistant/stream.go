package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/ssestream"
)

// run copies content deltas to w while accumulating the full response. It stops
// early when ctx is done so an interrupted answer fails the turn.
func (a *Assistant) run(ctx context.Context, w io.Writer, stream *ssestream.Stream[openai.ChatCompletionChunk]) (openai.ChatCompletionAccumulator, error) {
	acc := openai.ChatCompletionAccumulator{}
	var reasoning string

	for stream.Next() {
		select {
		case <-ctx.Done():
			return acc, ctx.Err()
		default:
		}

		chunk := stream.Current()
		acc.AddChunk(chunk)

		if tool, ok := acc.JustFinishedToolCall(); ok {
			a.logger.Debug("tool call stream finished", "index", tool.Index, "function", tool.Name, "arguments", tool.Arguments)
		}
		if refusal, ok := acc.JustFinishedRefusal(); ok {
			a.logger.Warn("model refused", "refusal", refusal)
		}

		if len(chunk.Choices) > 0 {
			choice := chunk.Choices[0]

			if field, ok := choice.Delta.JSON.ExtraFields["reasoning"]; ok {
				var delta string
				if json.Unmarshal([]byte(field.Raw()), &delta) == nil {
					reasoning += delta
				}
			}

			if len(choice.Delta.Content) > 0 {
				if _, err := fmt.Fprint(w, choice.Delta.Content); err != nil {
					return acc, err
				}
			}
		}
	}

	if reasoning != "" {
		a.logger.Debug("model reasoning", "reasoning", reasoning)
	}
	return acc, stream.Err()
}
