// Package schema defines the wire shapes of both chat protocols spoken by
// the adapter: the chat-completions format served to clients and the
// responses format spoken to the upstream provider. These types carry no
// behavior; every translation lives in internal/translate.
package schema

import "encoding/json"

// Chat Completions roles.
const (
	RoleSystem    = "system"
	RoleDeveloper = "developer"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Finish reasons emitted on choices.
const (
	FinishStop      = "stop"
	FinishLength    = "length"
	FinishToolCalls = "tool_calls"
)

// CompletionRequest is the request body for POST /v1/chat/completions.
type CompletionRequest struct {
	Model           string     `json:"model"`
	Messages        []Message  `json:"messages"`
	Stream          bool       `json:"stream,omitempty"`
	MaxTokens       *int       `json:"max_tokens,omitempty"`
	Temperature     *float64   `json:"temperature,omitempty"`
	TopP            *float64   `json:"top_p,omitempty"`
	Stop            []string   `json:"stop,omitempty"`
	ReasoningEffort string     `json:"reasoning_effort,omitempty"`
	Tools           []ChatTool `json:"tools,omitempty"`
	ToolChoice      any        `json:"tool_choice,omitempty"`
	User            string     `json:"user,omitempty"`

	// Fields the target schema has no equivalent for. Parsed so the
	// orchestrator can log the drop; never forwarded.
	N              int `json:"n,omitempty"`
	ResponseFormat any `json:"response_format,omitempty"`
}

// Message is a single chat message.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`

	// ReasoningContent carries reasoning text separately from Content when
	// REASONING_VISIBILITY=exposed. Never populated in hidden mode.
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

// ToolCall is a tool invocation on an assistant message.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall holds a function name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatTool is a tool definition in the completions format.
type ChatTool struct {
	Type     string      `json:"type"`
	Function FunctionDef `json:"function"`
}

// FunctionDef describes a callable function.
type FunctionDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// CompletionResponse is the non-streaming response body.
type CompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is one completion result.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage tracks token consumption in completions terms.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionChunk is a single SSE data object in a streaming response.
type CompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
}

// ChunkChoice is a single choice delta in a stream chunk.
type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// Delta carries incremental content in a stream chunk.
type Delta struct {
	Role             string          `json:"role,omitempty"`
	Content          *string         `json:"content,omitempty"`
	ReasoningContent *string         `json:"reasoning_content,omitempty"`
	ToolCalls        []ChunkToolCall `json:"tool_calls,omitempty"`
}

// ChunkToolCall is an incremental tool call fragment.
type ChunkToolCall struct {
	Index    int               `json:"index"`
	ID       string            `json:"id,omitempty"`
	Type     string            `json:"type,omitempty"`
	Function ChunkFunctionCall `json:"function"`
}

// ChunkFunctionCall holds an incremental function name/arguments fragment.
type ChunkFunctionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ErrorEnvelope is the stable error shape returned to clients regardless of
// which upstream failure produced it.
type ErrorEnvelope struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// ErrorResponse wraps an ErrorEnvelope in the conventional completions
// error body.
type ErrorResponse struct {
	Error ErrorEnvelope `json:"error"`
}
