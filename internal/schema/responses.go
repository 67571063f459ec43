package schema

// Responses API wire shapes. Field names mirror the upstream protocol
// exactly; the adapter never invents fields the provider does not send.

// Output item types.
const (
	ItemMessage      = "message"
	ItemReasoning    = "reasoning"
	ItemFunctionCall = "function_call"
)

// Responses result statuses.
const (
	StatusCompleted  = "completed"
	StatusIncomplete = "incomplete"
	StatusFailed     = "failed"
)

// ResponsesRequest is the request body for the upstream responses endpoint.
type ResponsesRequest struct {
	Model           string              `json:"model"`
	Instructions    string              `json:"instructions,omitempty"`
	Input           []InputItem         `json:"input,omitempty"`
	Tools           []ResponsesTool     `json:"tools,omitempty"`
	ToolChoice      any                 `json:"tool_choice,omitempty"`
	Reasoning       *ReasoningParams    `json:"reasoning,omitempty"`
	Temperature     *float64            `json:"temperature,omitempty"`
	TopP            *float64            `json:"top_p,omitempty"`
	MaxOutputTokens *int                `json:"max_output_tokens,omitempty"`
	Stop            []string            `json:"stop,omitempty"`
	Stream          bool                `json:"stream,omitempty"`
	StreamOptions   *StreamOptions      `json:"stream_options,omitempty"`
	Store           bool                `json:"store"`
	Truncation      string              `json:"truncation,omitempty"`
	PromptCacheKey  string              `json:"prompt_cache_key,omitempty"`
}

// ReasoningParams controls internal deliberation on reasoning-capable models.
type ReasoningParams struct {
	Effort  string `json:"effort"`
	Summary string `json:"summary,omitempty"`
}

// StreamOptions tweaks the upstream SSE stream.
type StreamOptions struct {
	IncludeObfuscation bool `json:"include_obfuscation"`
}

// InputItem is one element of the responses input sequence: a role-tagged
// message, a function_call echoed from history, or a function_call_output
// carrying a tool result.
type InputItem struct {
	Type      string        `json:"type,omitempty"`
	Role      string        `json:"role,omitempty"`
	Content   []ContentPart `json:"content,omitempty"`
	CallID    string        `json:"call_id,omitempty"`
	Name      string        `json:"name,omitempty"`
	Arguments string        `json:"arguments,omitempty"`
	Output    string        `json:"output,omitempty"`
	Status    string        `json:"status,omitempty"`
}

// ContentPart is a typed text fragment inside a message item.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ResponsesTool is a tool definition in the responses format (flattened,
// unlike the completions nesting under "function").
type ResponsesTool struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
	Strict      bool   `json:"strict"`
}

// ResponsesResult is a complete (non-streaming) upstream result.
type ResponsesResult struct {
	ID     string          `json:"id"`
	Object string          `json:"object,omitempty"`
	Model  string          `json:"model"`
	Status string          `json:"status"`
	Output []OutputItem    `json:"output"`
	Usage  *ResponsesUsage `json:"usage,omitempty"`
	Error  *ResponsesError `json:"error,omitempty"`
}

// OutputItem is one unit of upstream output, tagged as message, reasoning
// or function_call content.
type OutputItem struct {
	ID        string        `json:"id,omitempty"`
	Type      string        `json:"type"`
	Status    string        `json:"status,omitempty"`
	Role      string        `json:"role,omitempty"`
	Content   []ContentPart `json:"content,omitempty"`
	Summary   []ContentPart `json:"summary,omitempty"`
	CallID    string        `json:"call_id,omitempty"`
	Name      string        `json:"name,omitempty"`
	Arguments string        `json:"arguments,omitempty"`
}

// ResponsesUsage is upstream token accounting.
type ResponsesUsage struct {
	InputTokens  int                  `json:"input_tokens"`
	OutputTokens int                  `json:"output_tokens"`
	TotalTokens  int                  `json:"total_tokens"`
	Details      *OutputTokensDetails `json:"output_tokens_details,omitempty"`
}

// OutputTokensDetails breaks down output tokens. Reasoning tokens are
// already included in OutputTokens; they are reported, never re-added.
type OutputTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

// ResponsesError is an explicit error object reported by the provider.
type ResponsesError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Upstream SSE event types consumed by the stream translator.
const (
	EventOutputItemAdded       = "response.output_item.added"
	EventOutputItemDone        = "response.output_item.done"
	EventOutputTextDelta       = "response.output_text.delta"
	EventReasoningSummaryDelta = "response.reasoning_summary_text.delta"
	EventFunctionCallArgsDelta = "response.function_call_arguments.delta"
	EventCompleted             = "response.completed"
	EventFailed                = "response.failed"
)

// StreamEvent is one parsed upstream SSE event. Exactly one terminal event
// (EventCompleted or EventFailed) closes a stream. Err carries a
// transport-level read failure into the pipeline in place of an event.
type StreamEvent struct {
	Type        string           `json:"type"`
	OutputIndex int              `json:"output_index,omitempty"`
	Delta       string           `json:"delta,omitempty"`
	Item        *OutputItem      `json:"item,omitempty"`
	Response    *ResponsesResult `json:"response,omitempty"`
	Err         error            `json:"-"`
}
