package translate

import (
	"time"

	"github.com/davidbz/janus/internal/schema"
)

// StreamTranslator converts the ordered upstream event sequence of one call
// into the ordered completions chunk sequence. Events are fed one at a time
// through Next; chunks are emitted immediately, in order, with text
// fragments passed through verbatim. Exactly one terminal event
// (response.completed or response.failed) closes the stream; anything after
// that is a protocol violation.
type StreamTranslator struct {
	opts    Options
	id      string
	model   string
	created int64

	// choiceIndex maps upstream output indexes of surfaced message items
	// to downstream choice indexes, assigned in order of first appearance.
	choiceIndex map[int]int

	// finished records which choice indexes already received their
	// finish-reason chunk. Each choice finishes exactly once.
	finished map[int]bool

	roleSent  bool
	toolCalls int
	terminal  bool
}

// NewStreamTranslator returns a translator for a single streaming call.
// model is the client-facing model name echoed in every chunk.
func NewStreamTranslator(model string, opts Options) *StreamTranslator {
	return &StreamTranslator{
		opts:        opts,
		id:          schema.NewCompletionID(),
		model:       model,
		created:     time.Now().Unix(),
		choiceIndex: make(map[int]int),
		finished:    make(map[int]bool),
	}
}

// Next translates one upstream event into zero or more downstream chunks.
// A response.failed event, a transport error carried on the event, or an
// event arriving after the terminal all return a non-nil error; the caller
// routes it through MapFault and stops feeding.
func (t *StreamTranslator) Next(ev schema.StreamEvent) ([]schema.CompletionChunk, error) {
	if ev.Err != nil {
		t.terminal = true
		return nil, ev.Err
	}

	if t.terminal {
		return nil, NewProtocolViolation("received " + ev.Type + " after stream termination")
	}

	switch ev.Type {
	case schema.EventOutputItemAdded:
		return t.onItemAdded(ev), nil

	case schema.EventOutputTextDelta:
		return []schema.CompletionChunk{t.textChunk(ev.OutputIndex, ev.Delta)}, nil

	case schema.EventReasoningSummaryDelta:
		if !t.opts.ExposeReasoning {
			return nil, nil
		}
		return []schema.CompletionChunk{t.reasoningChunk(ev.Delta)}, nil

	case schema.EventFunctionCallArgsDelta:
		return []schema.CompletionChunk{t.toolArgsChunk(ev.Delta)}, nil

	case schema.EventOutputItemDone:
		return t.onItemDone(ev), nil

	case schema.EventCompleted:
		return t.onCompleted(ev), nil

	case schema.EventFailed:
		t.terminal = true
		if ev.Response != nil && ev.Response.Error != nil {
			return nil, NewProviderFault(ev.Response.Error.Code, ev.Response.Error.Message)
		}
		return nil, NewProviderFault("", "upstream reported failure without detail")

	default:
		// Lifecycle events the engine does not surface (created, content
		// part markers, obfuscation padding). Ordering is still enforced.
		return nil, nil
	}
}

// Finish reports how the stream ended. A stream whose event channel closed
// without a terminal event is an upstream shape violation, never papered
// over with a synthetic termination.
func (t *StreamTranslator) Finish() error {
	if !t.terminal {
		return NewUpstreamShape("stream ended without a terminal event")
	}
	return nil
}

func (t *StreamTranslator) onItemAdded(ev schema.StreamEvent) []schema.CompletionChunk {
	if ev.Item == nil {
		return nil
	}
	switch ev.Item.Type {
	case schema.ItemMessage:
		// Choice index reserved on first sight so later deltas and the
		// finish chunk agree on it.
		t.choiceFor(ev.OutputIndex)
		return nil

	case schema.ItemFunctionCall:
		t.toolCalls++
		chunk := t.chunk(schema.ChunkChoice{
			Index: 0,
			Delta: schema.Delta{
				Role: t.role(),
				ToolCalls: []schema.ChunkToolCall{{
					Index: t.toolCalls - 1,
					ID:    ev.Item.CallID,
					Type:  "function",
					Function: schema.ChunkFunctionCall{
						Name:      ev.Item.Name,
						Arguments: ev.Item.Arguments,
					},
				}},
			},
		})
		return []schema.CompletionChunk{chunk}

	default:
		return nil
	}
}

// onItemDone emits the finish-reason chunk for the completed message item's
// choice. The stream stays open; later items finish their own choices.
func (t *StreamTranslator) onItemDone(ev schema.StreamEvent) []schema.CompletionChunk {
	if ev.Item == nil || ev.Item.Type != schema.ItemMessage {
		return nil
	}
	idx := t.choiceFor(ev.OutputIndex)
	if t.finished[idx] {
		return nil
	}
	t.finished[idx] = true
	reason := mapFinishReason(ev.Item.Status)
	if t.toolCalls > 0 {
		reason = schema.FinishToolCalls
	}
	return []schema.CompletionChunk{t.finishChunk(idx, reason)}
}

func (t *StreamTranslator) onCompleted(ev schema.StreamEvent) []schema.CompletionChunk {
	t.terminal = true

	reason := schema.FinishStop
	if t.toolCalls > 0 {
		reason = schema.FinishToolCalls
	}

	// Synthesize a finish for every choice the upstream never closed; a
	// stream with no message items still finishes choice 0.
	choices := len(t.choiceIndex)
	if choices == 0 {
		choices = 1
	}
	var chunks []schema.CompletionChunk
	for idx := 0; idx < choices; idx++ {
		if t.finished[idx] {
			continue
		}
		t.finished[idx] = true
		chunks = append(chunks, t.finishChunk(idx, reason))
	}

	usageChunk := t.chunk()
	if ev.Response != nil {
		usage := mapUsage(ev.Response.Usage)
		usageChunk.Usage = &usage
	} else {
		usageChunk.Usage = &schema.Usage{}
	}
	return append(chunks, usageChunk)
}

// choiceFor returns the downstream choice index for an upstream output
// index, assigning indexes in order of first appearance.
func (t *StreamTranslator) choiceFor(outputIndex int) int {
	if idx, ok := t.choiceIndex[outputIndex]; ok {
		return idx
	}
	idx := len(t.choiceIndex)
	t.choiceIndex[outputIndex] = idx
	return idx
}

// role returns "assistant" exactly once, on the first content-bearing chunk.
func (t *StreamTranslator) role() string {
	if t.roleSent {
		return ""
	}
	t.roleSent = true
	return schema.RoleAssistant
}

func (t *StreamTranslator) textChunk(outputIndex int, text string) schema.CompletionChunk {
	return t.chunk(schema.ChunkChoice{
		Index: t.choiceFor(outputIndex),
		Delta: schema.Delta{Role: t.role(), Content: &text},
	})
}

func (t *StreamTranslator) reasoningChunk(text string) schema.CompletionChunk {
	return t.chunk(schema.ChunkChoice{
		Index: 0,
		Delta: schema.Delta{Role: t.role(), ReasoningContent: &text},
	})
}

func (t *StreamTranslator) toolArgsChunk(args string) schema.CompletionChunk {
	return t.chunk(schema.ChunkChoice{
		Index: 0,
		Delta: schema.Delta{
			ToolCalls: []schema.ChunkToolCall{{
				Index:    t.toolCalls - 1,
				Function: schema.ChunkFunctionCall{Arguments: args},
			}},
		},
	})
}

func (t *StreamTranslator) finishChunk(choiceIndex int, reason string) schema.CompletionChunk {
	return t.chunk(schema.ChunkChoice{
		Index:        choiceIndex,
		Delta:        schema.Delta{},
		FinishReason: &reason,
	})
}

func (t *StreamTranslator) chunk(choices ...schema.ChunkChoice) schema.CompletionChunk {
	if choices == nil {
		// The usage-bearing chunk serializes with an empty choices array,
		// not null, matching the wire protocol.
		choices = []schema.ChunkChoice{}
	}
	return schema.CompletionChunk{
		ID:      t.id,
		Object:  "chat.completion.chunk",
		Created: t.created,
		Model:   t.model,
		Choices: choices,
	}
}
