// Package conversation holds the role-tagged message log of a chat session
package conversation

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
)

type Message struct {
	Role         Role          `yaml:"role"`
	Content      string        `yaml:"content,omitempty"`
	Name         string        `yaml:"name,omitempty"`
	CallID       string        `yaml:"call_id,omitempty"`
	FunctionCall *FunctionCall `yaml:"function_call,omitempty"`
}

type FunctionCall struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Arguments string `yaml:"arguments"`
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// FunctionCallMessage is the assistant message that requested call.
func FunctionCallMessage(content string, call FunctionCall) Message {
	return Message{Role: RoleAssistant, Content: content, FunctionCall: &call}
}

// FunctionResultMessage carries the textual result of call back to the model.
func FunctionResultMessage(call FunctionCall, result string) Message {
	return Message{Role: RoleFunction, Name: call.Name, CallID: call.ID, Content: result}
}

// Conversation is an append-only message log. Append never modifies the
// receiver, so a caller can keep an older value as a rollback point.
type Conversation struct {
	messages []Message
}

func New(messages ...Message) Conversation {
	return Conversation{}.Append(messages...)
}

func (c Conversation) Append(messages ...Message) Conversation {
	next := make([]Message, 0, len(c.messages)+len(messages))
	next = append(next, c.messages...)
	next = append(next, messages...)
	return Conversation{messages: next}
}

func (c Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c Conversation) Len() int {
	return len(c.messages)
}

func (c Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}
