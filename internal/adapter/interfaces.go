package adapter

import (
	"context"

	"github.com/davidbz/janus/internal/schema"
)

// UpstreamClient is the HTTP collaborator that speaks the responses
// protocol to the provider.
type UpstreamClient interface {
	// Execute sends a non-streaming request and returns the full result.
	Execute(ctx context.Context, req *schema.ResponsesRequest) (*schema.ResponsesResult, error)

	// Stream sends a streaming request and returns the ordered event
	// sequence. The channel is closed when the upstream stream ends;
	// transport failures mid-stream arrive as events with Err set.
	Stream(ctx context.Context, req *schema.ResponsesRequest) (<-chan schema.StreamEvent, error)
}
