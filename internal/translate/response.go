package translate

import (
	"strings"
	"time"

	"github.com/davidbz/janus/internal/schema"
)

// AssembleCompletion converts a complete responses result into the
// completions response shape. Message items are concatenated in order into
// a single choice; reasoning items stay out of the content string and are
// surfaced through reasoning_content only when opts.ExposeReasoning is set.
//
// Returns an upstream_shape_error Fault when a completed result carries no
// output, and a provider_error Fault when the result reports failure.
func AssembleCompletion(result *schema.ResponsesResult, opts Options) (*schema.CompletionResponse, error) {
	if result == nil {
		return nil, NewUpstreamShape("upstream returned no result")
	}

	if result.Status == schema.StatusFailed {
		if result.Error != nil {
			return nil, NewProviderFault(result.Error.Code, result.Error.Message)
		}
		return nil, NewProviderFault("", "upstream reported failure without detail")
	}

	if result.Status == schema.StatusCompleted && len(result.Output) == 0 {
		return nil, NewUpstreamShape("completed result has no output items")
	}

	var content strings.Builder
	var reasoning strings.Builder
	var toolCalls []schema.ToolCall

	for _, item := range result.Output {
		switch item.Type {
		case schema.ItemMessage:
			for _, part := range item.Content {
				content.WriteString(part.Text)
			}

		case schema.ItemReasoning:
			if !opts.ExposeReasoning {
				continue
			}
			for _, part := range item.Summary {
				reasoning.WriteString(part.Text)
			}
			for _, part := range item.Content {
				reasoning.WriteString(part.Text)
			}

		case schema.ItemFunctionCall:
			toolCalls = append(toolCalls, schema.ToolCall{
				ID:   item.CallID,
				Type: "function",
				Function: schema.FunctionCall{
					Name:      item.Name,
					Arguments: item.Arguments,
				},
			})
		}
	}

	message := schema.Message{
		Role:             schema.RoleAssistant,
		Content:          content.String(),
		ReasoningContent: reasoning.String(),
		ToolCalls:        toolCalls,
	}

	finishReason := mapFinishReason(result.Status)
	if len(toolCalls) > 0 {
		finishReason = schema.FinishToolCalls
	}

	return &schema.CompletionResponse{
		ID:      result.ID,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   result.Model,
		Choices: []schema.Choice{
			{Index: 0, Message: message, FinishReason: finishReason},
		},
		Usage: mapUsage(result.Usage),
	}, nil
}

// mapFinishReason maps an upstream status to a completions finish reason.
// Unrecognized statuses map to "stop" as a conservative default; the caller
// logs them.
func mapFinishReason(status string) string {
	switch status {
	case schema.StatusCompleted:
		return schema.FinishStop
	case schema.StatusIncomplete:
		return schema.FinishLength
	default:
		return schema.FinishStop
	}
}

// mapUsage converts upstream token accounting into completions terms.
// Reasoning tokens are already counted inside output_tokens upstream, so
// completion_tokens takes output_tokens as reported and total is the sum of
// the two mapped values.
func mapUsage(u *schema.ResponsesUsage) schema.Usage {
	if u == nil {
		return schema.Usage{}
	}
	return schema.Usage{
		PromptTokens:     u.InputTokens,
		CompletionTokens: u.OutputTokens,
		TotalTokens:      u.InputTokens + u.OutputTokens,
	}
}
