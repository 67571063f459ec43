// Package upstream implements the HTTP client for the responses-style
// provider endpoint, including SSE consumption for streaming calls.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openai/openai-go/packages/ssestream"

	"github.com/davidbz/janus/internal/observability"
	"github.com/davidbz/janus/internal/schema"
	"github.com/davidbz/janus/internal/translate"
)

// Client speaks the responses protocol to the configured provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a new upstream client (DI constructor).
func NewClient(cfg *Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("upstream base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("upstream API key is required")
	}
	return &Client{
		cfg: *cfg,
		// No global client timeout: it would sever long-lived SSE streams.
		// Non-streaming calls are bounded per request via context.
		httpClient: &http.Client{},
	}, nil
}

// Execute sends a non-streaming request and decodes the full result.
func (c *Client) Execute(ctx context.Context, req *schema.ResponsesRequest) (*schema.ResponsesResult, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.Timeout)*time.Second)
		defer cancel()
	}

	resp, err := c.do(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapStatusError(resp)
	}

	var result schema.ResponsesResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, translate.NewUpstreamShape("failed to decode upstream response: " + err.Error())
	}
	return &result, nil
}

// Stream sends a streaming request and returns the parsed event sequence.
// Events are sent unbuffered so a slow consumer pauses the SSE read; the
// channel closes when the upstream stream ends or ctx is cancelled.
func (c *Client) Stream(ctx context.Context, req *schema.ResponsesRequest) (<-chan schema.StreamEvent, error) {
	resp, err := c.do(ctx, req, true)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.mapStatusError(resp)
	}

	events := make(chan schema.StreamEvent)
	go c.readStream(ctx, resp, events)
	return events, nil
}

func (c *Client) do(ctx context.Context, req *schema.ResponsesRequest, streaming bool) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upstream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if streaming {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	switch c.cfg.AuthScheme {
	case AuthAPIKey:
		httpReq.Header.Set("api-key", c.cfg.APIKey)
	default:
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	return resp, nil
}

func (c *Client) endpoint() string {
	url := c.cfg.BaseURL + "/responses"
	if c.cfg.APIVersion != "" {
		url += "?api-version=" + c.cfg.APIVersion
	}
	return url
}

// mapStatusError converts a non-2xx upstream response into a Fault,
// passing through the provider's own code and message when the body
// carries them.
func (c *Client) mapStatusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errBody struct {
		Error *schema.ResponsesError `json:"error"`
	}
	if err := json.Unmarshal(data, &errBody); err == nil && errBody.Error != nil {
		return translate.NewProviderFault(errBody.Error.Code, errBody.Error.Message)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return translate.NewUpstreamUnavailable(fmt.Sprintf("upstream returned HTTP %d", resp.StatusCode))
	}
	return translate.NewUpstreamShape(fmt.Sprintf("upstream returned HTTP %d without an error body", resp.StatusCode))
}

// eventPayload is the JSON body of one upstream SSE event. Only the fields
// the translation engine consumes are decoded.
type eventPayload struct {
	Type        string                  `json:"type"`
	OutputIndex int                     `json:"output_index"`
	Delta       string                  `json:"delta"`
	Item        *schema.OutputItem      `json:"item"`
	Response    *schema.ResponsesResult `json:"response"`
}

// readStream decodes upstream SSE events and forwards them in order. It
// owns both the response body and the events channel.
func (c *Client) readStream(ctx context.Context, resp *http.Response, events chan<- schema.StreamEvent) {
	defer close(events)
	defer resp.Body.Close()

	logger := observability.FromContext(ctx)
	decoder := ssestream.NewDecoder(resp)

	for decoder.Next() {
		if ctx.Err() != nil {
			return
		}

		raw := decoder.Event()
		var payload eventPayload
		if err := json.Unmarshal(raw.Data, &payload); err != nil {
			// A payload that cannot be decoded is fatal for the call; a
			// dropped delta would silently corrupt the client-visible
			// content.
			logger.Error("malformed upstream event payload",
				observability.String("event", raw.Type),
				observability.Error(err))
			ev := schema.StreamEvent{
				Err: translate.NewUpstreamShape("malformed upstream event payload: " + err.Error()),
			}
			select {
			case events <- ev:
			case <-ctx.Done():
			}
			return
		}

		eventType := raw.Type
		if eventType == "" {
			eventType = payload.Type
		}

		ev := schema.StreamEvent{
			Type:        eventType,
			OutputIndex: payload.OutputIndex,
			Delta:       payload.Delta,
			Item:        payload.Item,
			Response:    payload.Response,
		}

		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}

	if err := decoder.Err(); err != nil && ctx.Err() == nil {
		ev := schema.StreamEvent{
			Err: translate.NewUpstreamUnavailable("upstream stream read failed: " + err.Error()),
		}
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}
}
