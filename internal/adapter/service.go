// Package adapter orchestrates one inbound call end to end: validate,
// translate the request, dispatch upstream, and route the result through
// the non-streaming assembler or the stream translator.
package adapter

import (
	"context"
	"strings"

	"github.com/davidbz/janus/internal/observability"
	"github.com/davidbz/janus/internal/schema"
	"github.com/davidbz/janus/internal/translate"
)

// StreamItem is one element of the downstream chunk sequence: either a
// chunk to write or the failure that ended the stream.
type StreamItem struct {
	Chunk *schema.CompletionChunk
	Err   error
}

// Service wires the translation engine to the upstream client. It holds no
// per-call state; every request-scoped object lives and dies inside a
// single method call.
type Service struct {
	upstream UpstreamClient
	opts     translate.Options
}

// NewService creates the adapter service (DI constructor).
func NewService(upstream UpstreamClient, opts translate.Options) *Service {
	return &Service{
		upstream: upstream,
		opts:     opts,
	}
}

// Complete handles a non-streaming call: translate, dispatch, assemble.
// Validation failures return before any upstream call is made.
func (s *Service) Complete(ctx context.Context, req *schema.CompletionRequest) (*schema.CompletionResponse, error) {
	outbound, err := translate.ToResponsesRequest(req, s.opts)
	if err != nil {
		return nil, err
	}
	s.logDropped(ctx, req)

	result, err := s.upstream.Execute(ctx, outbound)
	if err != nil {
		return nil, err
	}

	response, err := translate.AssembleCompletion(result, s.opts)
	if err != nil {
		return nil, err
	}

	if result.Status != schema.StatusCompleted && result.Status != schema.StatusIncomplete {
		observability.FromContext(ctx).Warn("unrecognized upstream status mapped to stop",
			observability.String("status", result.Status))
	}

	// The client asked for this model; echo it back rather than the
	// upstream deployment name.
	response.Model = req.Model
	return response, nil
}

// Stream handles a streaming call. It returns as soon as the upstream
// stream is open; chunks are sent on the returned channel as each upstream
// event arrives, one at a time, so a slow reader back-pressures the
// upstream read. The channel is closed after the terminal chunk or error.
func (s *Service) Stream(ctx context.Context, req *schema.CompletionRequest) (<-chan StreamItem, error) {
	outbound, err := translate.ToResponsesRequest(req, s.opts)
	if err != nil {
		return nil, err
	}
	s.logDropped(ctx, req)

	events, err := s.upstream.Stream(ctx, outbound)
	if err != nil {
		return nil, err
	}

	out := make(chan StreamItem)
	go s.pump(ctx, req.Model, events, out)
	return out, nil
}

// pump feeds upstream events through the stream translator and forwards
// the resulting chunks. It owns the out channel.
func (s *Service) pump(ctx context.Context, model string, events <-chan schema.StreamEvent, out chan<- StreamItem) {
	defer close(out)

	logger := observability.FromContext(ctx)
	translator := translate.NewStreamTranslator(model, s.opts)

	for ev := range events {
		chunks, err := translator.Next(ev)
		if err != nil {
			logger.Error("stream translation failed", observability.Error(err))
			s.send(ctx, out, StreamItem{Err: err})
			return
		}
		for i := range chunks {
			if !s.send(ctx, out, StreamItem{Chunk: &chunks[i]}) {
				// Client gone; the context cancellation also tears down
				// the upstream read.
				return
			}
		}
	}

	if err := translator.Finish(); err != nil {
		logger.Error("stream ended abnormally", observability.Error(err))
		s.send(ctx, out, StreamItem{Err: err})
	}
}

func (s *Service) send(ctx context.Context, out chan<- StreamItem, item StreamItem) bool {
	select {
	case out <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Service) logDropped(ctx context.Context, req *schema.CompletionRequest) {
	dropped := translate.DroppedFields(req)
	if len(dropped) == 0 {
		return
	}
	observability.FromContext(ctx).Info("request fields without a responses equivalent were dropped",
		observability.String("fields", strings.Join(dropped, ",")))
}
