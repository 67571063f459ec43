package translate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/janus/internal/schema"
	"github.com/davidbz/janus/internal/translate"
)

func feed(t *testing.T, tr *translate.StreamTranslator, events []schema.StreamEvent) []schema.CompletionChunk {
	t.Helper()
	var chunks []schema.CompletionChunk
	for _, ev := range events {
		out, err := tr.Next(ev)
		require.NoError(t, err)
		chunks = append(chunks, out...)
	}
	return chunks
}

func textEvents() []schema.StreamEvent {
	return []schema.StreamEvent{
		{Type: "response.created"},
		{
			Type:        "response.output_item.added",
			OutputIndex: 0,
			Item:        &schema.OutputItem{ID: "msg_1", Type: "message"},
		},
		{Type: "response.output_text.delta", OutputIndex: 0, Delta: "Hel"},
		{Type: "response.output_text.delta", OutputIndex: 0, Delta: "lo"},
		{
			Type:        "response.output_item.done",
			OutputIndex: 0,
			Item:        &schema.OutputItem{ID: "msg_1", Type: "message", Status: "completed"},
		},
		{
			Type: "response.completed",
			Response: &schema.ResponsesResult{
				Status: "completed",
				Usage:  &schema.ResponsesUsage{InputTokens: 5, OutputTokens: 2, TotalTokens: 7},
			},
		},
	}
}

func TestStreamTranslator(t *testing.T) {
	opts := translate.Options{}

	t.Run("should pass text deltas through verbatim in order", func(t *testing.T) {
		tr := translate.NewStreamTranslator("gpt-high", opts)
		chunks := feed(t, tr, textEvents())
		require.NoError(t, tr.Finish())

		// Two text chunks, one finish chunk, one usage chunk.
		require.Len(t, chunks, 4)

		first := chunks[0]
		require.True(t, strings.HasPrefix(first.ID, "chatcmpl-"))
		require.Equal(t, "chat.completion.chunk", first.Object)
		require.Equal(t, "gpt-high", first.Model)
		require.Equal(t, "assistant", first.Choices[0].Delta.Role)
		require.Equal(t, "Hel", *first.Choices[0].Delta.Content)

		second := chunks[1]
		require.Equal(t, first.ID, second.ID)
		require.Empty(t, second.Choices[0].Delta.Role)
		require.Equal(t, "lo", *second.Choices[0].Delta.Content)

		finish := chunks[2]
		require.NotNil(t, finish.Choices[0].FinishReason)
		require.Equal(t, "stop", *finish.Choices[0].FinishReason)
		require.Nil(t, finish.Usage)

		usage := chunks[3]
		require.NotNil(t, usage.Choices)
		require.Empty(t, usage.Choices)
		require.NotNil(t, usage.Usage)
		require.Equal(t, 5, usage.Usage.PromptTokens)
		require.Equal(t, 2, usage.Usage.CompletionTokens)
		require.Equal(t, 7, usage.Usage.TotalTokens)
	})

	t.Run("should produce the same content streamed and assembled", func(t *testing.T) {
		tr := translate.NewStreamTranslator("gpt-high", opts)
		chunks := feed(t, tr, textEvents())

		var streamed strings.Builder
		for _, c := range chunks {
			for _, choice := range c.Choices {
				if choice.Delta.Content != nil {
					streamed.WriteString(*choice.Delta.Content)
				}
			}
		}

		assembled, err := translate.AssembleCompletion(&schema.ResponsesResult{
			ID:     "resp_1",
			Status: "completed",
			Output: []schema.OutputItem{
				{Type: "message", Content: []schema.ContentPart{{Text: "Hello"}}},
			},
		}, opts)
		require.NoError(t, err)
		require.Equal(t, assembled.Choices[0].Message.Content, streamed.String())
	})

	t.Run("should surface reasoning deltas only when exposed", func(t *testing.T) {
		events := []schema.StreamEvent{
			{Type: "response.reasoning_summary_text.delta", Delta: "thinking"},
		}

		tr := translate.NewStreamTranslator("m1", translate.Options{ExposeReasoning: true})
		chunks := feed(t, tr, events)
		require.Len(t, chunks, 1)
		require.Equal(t, "thinking", *chunks[0].Choices[0].Delta.ReasoningContent)
		require.Nil(t, chunks[0].Choices[0].Delta.Content)

		tr = translate.NewStreamTranslator("m1", translate.Options{})
		chunks = feed(t, tr, events)
		require.Empty(t, chunks)
	})

	t.Run("should stream tool calls with incrementing indexes", func(t *testing.T) {
		events := []schema.StreamEvent{
			{
				Type:        "response.output_item.added",
				OutputIndex: 0,
				Item: &schema.OutputItem{
					Type:   "function_call",
					CallID: "call_1",
					Name:   "get_weather",
				},
			},
			{Type: "response.function_call_arguments.delta", Delta: `{"city":`},
			{Type: "response.function_call_arguments.delta", Delta: `"Oslo"}`},
			{
				Type:     "response.completed",
				Response: &schema.ResponsesResult{Status: "completed"},
			},
		}

		tr := translate.NewStreamTranslator("m1", opts)
		chunks := feed(t, tr, events)
		require.NoError(t, tr.Finish())
		require.Len(t, chunks, 5)

		start := chunks[0].Choices[0]
		require.Equal(t, "assistant", start.Delta.Role)
		require.Len(t, start.Delta.ToolCalls, 1)
		require.Equal(t, 0, start.Delta.ToolCalls[0].Index)
		require.Equal(t, "call_1", start.Delta.ToolCalls[0].ID)
		require.Equal(t, "get_weather", start.Delta.ToolCalls[0].Function.Name)

		require.Equal(t, `{"city":`, chunks[1].Choices[0].Delta.ToolCalls[0].Function.Arguments)
		require.Equal(t, `"Oslo"}`, chunks[2].Choices[0].Delta.ToolCalls[0].Function.Arguments)

		finish := chunks[3].Choices[0]
		require.Equal(t, "tool_calls", *finish.FinishReason)
	})

	t.Run("should finish every choice when multiple messages stream", func(t *testing.T) {
		events := []schema.StreamEvent{
			{
				Type:        "response.output_item.added",
				OutputIndex: 0,
				Item:        &schema.OutputItem{ID: "msg_1", Type: "message"},
			},
			{Type: "response.output_text.delta", OutputIndex: 0, Delta: "first"},
			{
				Type:        "response.output_item.done",
				OutputIndex: 0,
				Item:        &schema.OutputItem{ID: "msg_1", Type: "message", Status: "completed"},
			},
			{
				Type:        "response.output_item.added",
				OutputIndex: 1,
				Item:        &schema.OutputItem{ID: "msg_2", Type: "message"},
			},
			{Type: "response.output_text.delta", OutputIndex: 1, Delta: "second"},
			{
				Type:        "response.output_item.done",
				OutputIndex: 1,
				Item:        &schema.OutputItem{ID: "msg_2", Type: "message", Status: "completed"},
			},
			{
				Type:     "response.completed",
				Response: &schema.ResponsesResult{Status: "completed"},
			},
		}

		tr := translate.NewStreamTranslator("m1", opts)
		chunks := feed(t, tr, events)
		require.NoError(t, tr.Finish())

		finishes := map[int]string{}
		for _, c := range chunks {
			for _, choice := range c.Choices {
				if choice.FinishReason != nil {
					_, dup := finishes[choice.Index]
					require.False(t, dup, "choice %d finished twice", choice.Index)
					finishes[choice.Index] = *choice.FinishReason
				}
			}
		}
		require.Equal(t, map[int]string{0: "stop", 1: "stop"}, finishes)

		// The second item's delta rides its own choice index.
		require.Equal(t, 1, chunks[2].Choices[0].Index)
		require.Equal(t, "second", *chunks[2].Choices[0].Delta.Content)
	})

	t.Run("should emit finish exactly once per choice", func(t *testing.T) {
		tr := translate.NewStreamTranslator("m1", opts)
		chunks := feed(t, tr, textEvents())

		var finishes int
		for _, c := range chunks {
			for _, choice := range c.Choices {
				if choice.FinishReason != nil {
					finishes++
				}
			}
		}
		require.Equal(t, 1, finishes)
	})

	t.Run("should synthesize finish when completed arrives without item done", func(t *testing.T) {
		events := []schema.StreamEvent{
			{
				Type: "response.output_item.added",
				Item: &schema.OutputItem{Type: "message"},
			},
			{Type: "response.output_text.delta", Delta: "hi"},
			{
				Type: "response.completed",
				Response: &schema.ResponsesResult{
					Status: "completed",
					Usage:  &schema.ResponsesUsage{InputTokens: 1, OutputTokens: 1},
				},
			},
		}

		tr := translate.NewStreamTranslator("m1", opts)
		chunks := feed(t, tr, events)
		require.NoError(t, tr.Finish())

		require.Len(t, chunks, 3)
		require.Equal(t, "stop", *chunks[1].Choices[0].FinishReason)
		require.NotNil(t, chunks[2].Usage)
	})

	t.Run("should report provider fault on failed terminal", func(t *testing.T) {
		tr := translate.NewStreamTranslator("m1", opts)

		_, err := tr.Next(schema.StreamEvent{
			Type: "response.failed",
			Response: &schema.ResponsesResult{
				Status: "failed",
				Error:  &schema.ResponsesError{Code: "server_error", Message: "boom"},
			},
		})
		require.Error(t, err)

		fault := translate.MapFault(err)
		require.Equal(t, translate.FaultProvider, fault.Type)
		require.Equal(t, "server_error", fault.Code)
		require.NoError(t, tr.Finish())
	})

	t.Run("should reject events after the terminal", func(t *testing.T) {
		tr := translate.NewStreamTranslator("m1", opts)

		_, err := tr.Next(schema.StreamEvent{
			Type:     "response.completed",
			Response: &schema.ResponsesResult{Status: "completed"},
		})
		require.NoError(t, err)

		_, err = tr.Next(schema.StreamEvent{Type: "response.output_text.delta", Delta: "late"})
		require.Error(t, err)
		require.Equal(t, translate.FaultProtocolViolation, translate.MapFault(err).Type)
	})

	t.Run("should flag a stream that closes without a terminal", func(t *testing.T) {
		tr := translate.NewStreamTranslator("m1", opts)
		feed(t, tr, []schema.StreamEvent{
			{Type: "response.output_item.added", Item: &schema.OutputItem{Type: "message"}},
			{Type: "response.output_text.delta", Delta: "partial"},
		})

		err := tr.Finish()
		require.Error(t, err)
		require.Equal(t, translate.FaultUpstreamShape, translate.MapFault(err).Type)
	})

	t.Run("should ignore unrecognized lifecycle events", func(t *testing.T) {
		tr := translate.NewStreamTranslator("m1", opts)
		chunks := feed(t, tr, []schema.StreamEvent{
			{Type: "response.in_progress"},
			{Type: "response.content_part.added"},
		})
		require.Empty(t, chunks)
	})
}
