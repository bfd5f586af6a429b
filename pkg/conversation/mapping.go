package conversation

import (
	"github.com/openai/openai-go/v3"
)

// ToParams maps the conversation to chat API messages, prefixed by an optional
// system prompt that is never stored in the log itself.
func ToParams(systemPrompt string, c Conversation) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, c.Len()+1)
	if systemPrompt != "" {
		params = append(params, openai.SystemMessage(systemPrompt))
	}

	for _, message := range c.messages {
		params = append(params, NewParamFromMessage(message))
	}

	return params
}

func NewParamFromMessage(message Message) openai.ChatCompletionMessageParamUnion {
	switch message.Role {
	case RoleAssistant:
		param := openai.AssistantMessage(message.Content)
		if message.FunctionCall != nil {
			param.OfAssistant.ToolCalls = []openai.ChatCompletionMessageToolCallUnionParam{
				*NewToolCallParam(message.FunctionCall),
			}
		}
		return param
	case RoleFunction:
		return openai.ToolMessage(message.Content, message.CallID)
	default:
		return openai.UserMessage(message.Content)
	}
}

func NewToolCallParam(call *FunctionCall) *openai.ChatCompletionMessageToolCallUnionParam {
	return &openai.ChatCompletionMessageToolCallUnionParam{
		OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
			ID:       call.ID,
			Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{Name: call.Name, Arguments: call.Arguments},
		},
	}
}

// NewMessageFromOpenAI keeps the first tool call of a response; the chat loop
// dispatches a single function per turn.
func NewMessageFromOpenAI(message openai.ChatCompletionMessage) Message {
	if len(message.ToolCalls) == 0 {
		return AssistantMessage(message.Content)
	}

	call := message.ToolCalls[0]
	return FunctionCallMessage(message.Content, FunctionCall{
		ID:        call.ID,
		Name:      call.Function.Name,
		Arguments: call.Function.Arguments,
	})
}
