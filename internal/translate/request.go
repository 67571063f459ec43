package translate

import (
	"strconv"
	"strings"

	"github.com/davidbz/janus/internal/schema"
)

// Content part types on the responses side.
const (
	partInputText  = "input_text"
	partOutputText = "output_text"
)

// ToResponsesRequest converts a completions request into the responses
// request shape. It is a pure function of its inputs: message order is
// preserved exactly, system and developer messages are hoisted into the
// instructions field, and sampling parameters pass through 1:1 where the
// target schema defines an equivalent.
//
// Returns an invalid_request Fault when the request violates the
// completions invariants (empty model, empty messages, role-less message).
func ToResponsesRequest(req *schema.CompletionRequest, opts Options) (*schema.ResponsesRequest, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	input, instructions := messagesToInput(req.Messages)

	out := &schema.ResponsesRequest{
		Model:           req.Model,
		Instructions:    instructions,
		Input:           input,
		Temperature:     req.Temperature,
		TopP:            req.TopP,
		MaxOutputTokens: req.MaxTokens,
		Stop:            req.Stop,
		Stream:          req.Stream,
		Store:           false,
		Truncation:      opts.Truncation,
		PromptCacheKey:  req.User,
	}

	if len(req.Tools) > 0 {
		out.Tools = toResponsesTools(req.Tools)
	}
	if req.ToolChoice != nil {
		out.ToolChoice = toResponsesToolChoice(req.ToolChoice)
	}

	effort := req.ReasoningEffort
	if effort == "" {
		effort = opts.DefaultEffort
	}
	if effort != "" {
		out.Reasoning = &schema.ReasoningParams{
			Effort:  effort,
			Summary: opts.SummaryLevel,
		}
	}

	if req.Stream {
		out.StreamOptions = &schema.StreamOptions{IncludeObfuscation: false}
	}

	return out, nil
}

// DroppedFields lists request fields the target schema has no equivalent
// for. The orchestrator logs these as an external concern, not a failure.
func DroppedFields(req *schema.CompletionRequest) []string {
	var dropped []string
	if req.N > 1 {
		dropped = append(dropped, "n")
	}
	if req.ResponseFormat != nil {
		dropped = append(dropped, "response_format")
	}
	return dropped
}

func validate(req *schema.CompletionRequest) error {
	if req == nil {
		return NewInvalidRequest("request body is required")
	}
	if req.Model == "" {
		return NewInvalidRequest("model is required")
	}
	if len(req.Messages) == 0 {
		return NewInvalidRequest("messages must not be empty")
	}
	for i, m := range req.Messages {
		if m.Role == "" {
			return NewInvalidRequest("message at index " + strconv.Itoa(i) + " has no role")
		}
	}
	return nil
}

// messagesToInput maps completions messages to responses input items and
// collected instructions, preserving order. System and developer messages
// become instructions; tool results become function_call_output items;
// assistant tool_calls are replayed as function_call items.
func messagesToInput(messages []schema.Message) ([]schema.InputItem, string) {
	var instructions []string
	items := make([]schema.InputItem, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case schema.RoleSystem, schema.RoleDeveloper:
			if m.Content != "" {
				instructions = append(instructions, m.Content)
			}

		case schema.RoleTool:
			items = append(items, schema.InputItem{
				Type:   schema.ItemFunctionCall + "_output",
				Output: m.Content,
				Status: schema.StatusCompleted,
				CallID: m.ToolCallID,
			})

		default:
			partType := partInputText
			if m.Role == schema.RoleAssistant {
				partType = partOutputText
			}
			items = append(items, schema.InputItem{
				Role: m.Role,
				Content: []schema.ContentPart{
					{Type: partType, Text: m.Content},
				},
			})

			for _, tc := range m.ToolCalls {
				items = append(items, schema.InputItem{
					Type:      schema.ItemFunctionCall,
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
					CallID:    tc.ID,
				})
			}
		}
	}

	return items, strings.Join(instructions, "\n\n")
}

// toResponsesTools flattens completions tool definitions into the responses
// shape. Non-function tools pass through by type only.
func toResponsesTools(tools []schema.ChatTool) []schema.ResponsesTool {
	out := make([]schema.ResponsesTool, 0, len(tools))
	for _, t := range tools {
		if t.Type != "function" {
			out = append(out, schema.ResponsesTool{Type: t.Type})
			continue
		}
		out = append(out, schema.ResponsesTool{
			Type:        "function",
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  t.Function.Parameters,
			Strict:      false,
		})
	}
	return out
}

// toResponsesToolChoice maps the completions tool_choice to the responses
// form. String values ("auto", "none", "required") pass through; the
// object form loses its "function" nesting.
func toResponsesToolChoice(choice any) any {
	obj, ok := choice.(map[string]any)
	if !ok {
		return choice
	}
	if obj["type"] != "function" {
		return choice
	}
	fn, ok := obj["function"].(map[string]any)
	if !ok {
		return choice
	}
	name, _ := fn["name"].(string)
	if name == "" {
		return choice
	}
	return map[string]any{"type": "function", "name": name}
}
