package translate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/janus/internal/schema"
	"github.com/davidbz/janus/internal/translate"
)

func TestAssembleCompletion(t *testing.T) {
	opts := translate.Options{}

	t.Run("should assemble completed result with usage mapping", func(t *testing.T) {
		result := &schema.ResponsesResult{
			ID:     "resp_1",
			Model:  "gpt-high",
			Status: "completed",
			Output: []schema.OutputItem{
				{
					Type: "reasoning",
					Summary: []schema.ContentPart{
						{Type: "summary_text", Text: "thinking about greetings"},
					},
				},
				{
					Type: "message",
					Role: "assistant",
					Content: []schema.ContentPart{
						{Type: "output_text", Text: "Hi"},
					},
				},
			},
			Usage: &schema.ResponsesUsage{
				InputTokens:  5,
				OutputTokens: 1,
				TotalTokens:  6,
			},
		}

		resp, err := translate.AssembleCompletion(result, opts)
		require.NoError(t, err)

		require.Equal(t, "resp_1", resp.ID)
		require.Equal(t, "chat.completion", resp.Object)
		require.NotZero(t, resp.Created)

		require.Len(t, resp.Choices, 1)
		choice := resp.Choices[0]
		require.Equal(t, 0, choice.Index)
		require.Equal(t, "assistant", choice.Message.Role)
		require.Equal(t, "Hi", choice.Message.Content)
		require.Empty(t, choice.Message.ReasoningContent)
		require.Equal(t, "stop", choice.FinishReason)

		require.Equal(t, 5, resp.Usage.PromptTokens)
		require.Equal(t, 1, resp.Usage.CompletionTokens)
		require.Equal(t, 6, resp.Usage.TotalTokens)
	})

	t.Run("should concatenate message items in order", func(t *testing.T) {
		result := &schema.ResponsesResult{
			ID:     "resp_2",
			Status: "completed",
			Output: []schema.OutputItem{
				{Type: "message", Content: []schema.ContentPart{{Text: "Hello, "}}},
				{Type: "message", Content: []schema.ContentPart{{Text: "world"}}},
			},
		}

		resp, err := translate.AssembleCompletion(result, opts)
		require.NoError(t, err)
		require.Equal(t, "Hello, world", resp.Choices[0].Message.Content)
	})

	t.Run("should surface reasoning only when exposed", func(t *testing.T) {
		result := &schema.ResponsesResult{
			ID:     "resp_3",
			Status: "completed",
			Output: []schema.OutputItem{
				{Type: "reasoning", Summary: []schema.ContentPart{{Text: "step one"}}},
				{Type: "message", Content: []schema.ContentPart{{Text: "answer"}}},
			},
		}

		resp, err := translate.AssembleCompletion(result, translate.Options{ExposeReasoning: true})
		require.NoError(t, err)
		require.Equal(t, "answer", resp.Choices[0].Message.Content)
		require.Equal(t, "step one", resp.Choices[0].Message.ReasoningContent)

		resp, err = translate.AssembleCompletion(result, translate.Options{})
		require.NoError(t, err)
		require.Empty(t, resp.Choices[0].Message.ReasoningContent)
	})

	t.Run("should map incomplete status to length", func(t *testing.T) {
		result := &schema.ResponsesResult{
			ID:     "resp_4",
			Status: "incomplete",
			Output: []schema.OutputItem{
				{Type: "message", Content: []schema.ContentPart{{Text: "truncat"}}},
			},
		}

		resp, err := translate.AssembleCompletion(result, opts)
		require.NoError(t, err)
		require.Equal(t, "length", resp.Choices[0].FinishReason)
	})

	t.Run("should map unknown status to stop", func(t *testing.T) {
		result := &schema.ResponsesResult{
			ID:     "resp_5",
			Status: "queued",
			Output: []schema.OutputItem{
				{Type: "message", Content: []schema.ContentPart{{Text: "hi"}}},
			},
		}

		resp, err := translate.AssembleCompletion(result, opts)
		require.NoError(t, err)
		require.Equal(t, "stop", resp.Choices[0].FinishReason)
	})

	t.Run("should map function calls to tool_calls", func(t *testing.T) {
		result := &schema.ResponsesResult{
			ID:     "resp_6",
			Status: "completed",
			Output: []schema.OutputItem{
				{
					Type:      "function_call",
					CallID:    "call_9",
					Name:      "get_weather",
					Arguments: `{"city":"Oslo"}`,
				},
			},
		}

		resp, err := translate.AssembleCompletion(result, opts)
		require.NoError(t, err)

		choice := resp.Choices[0]
		require.Equal(t, "tool_calls", choice.FinishReason)
		require.Len(t, choice.Message.ToolCalls, 1)
		require.Equal(t, "call_9", choice.Message.ToolCalls[0].ID)
		require.Equal(t, "function", choice.Message.ToolCalls[0].Type)
		require.Equal(t, "get_weather", choice.Message.ToolCalls[0].Function.Name)
		require.Equal(t, `{"city":"Oslo"}`, choice.Message.ToolCalls[0].Function.Arguments)
	})

	t.Run("should report provider failure with detail", func(t *testing.T) {
		result := &schema.ResponsesResult{
			ID:     "resp_7",
			Status: "failed",
			Error: &schema.ResponsesError{
				Code:    "rate_limit_exceeded",
				Message: "slow down",
			},
		}

		_, err := translate.AssembleCompletion(result, opts)
		require.Error(t, err)

		fault := translate.MapFault(err)
		require.Equal(t, translate.FaultProvider, fault.Type)
		require.Equal(t, "rate_limit_exceeded", fault.Code)
		require.Equal(t, "slow down", fault.Message)
	})

	t.Run("should reject completed result with no output", func(t *testing.T) {
		result := &schema.ResponsesResult{ID: "resp_8", Status: "completed"}

		_, err := translate.AssembleCompletion(result, opts)
		require.Error(t, err)
		require.Equal(t, translate.FaultUpstreamShape, translate.MapFault(err).Type)
	})

	t.Run("should reject nil result", func(t *testing.T) {
		_, err := translate.AssembleCompletion(nil, opts)
		require.Error(t, err)
		require.Equal(t, translate.FaultUpstreamShape, translate.MapFault(err).Type)
	})

	t.Run("should zero usage when upstream omits it", func(t *testing.T) {
		result := &schema.ResponsesResult{
			ID:     "resp_9",
			Status: "completed",
			Output: []schema.OutputItem{
				{Type: "message", Content: []schema.ContentPart{{Text: "hi"}}},
			},
		}

		resp, err := translate.AssembleCompletion(result, opts)
		require.NoError(t, err)
		require.Zero(t, resp.Usage.PromptTokens)
		require.Zero(t, resp.Usage.CompletionTokens)
		require.Zero(t, resp.Usage.TotalTokens)
	})
}
