package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/davidbz/janus/internal/adapter"
	"github.com/davidbz/janus/internal/observability"
	"github.com/davidbz/janus/internal/schema"
	"github.com/davidbz/janus/internal/translate"
)

var errRespWriter = errors.New("response writer does not support streaming")

// Handler handles HTTP requests.
type Handler struct {
	adapter *adapter.Service
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(svc *adapter.Service) *Handler {
	return &Handler{
		adapter: svc,
	}
}

// HandleChatCompletion processes POST /v1/chat/completions, serving either
// a single JSON body or an SSE chunk stream depending on the request's
// stream flag. The client always receives a syntactically valid response in
// the completions wire shape, content or error envelope, never a raw fault.
func (h *Handler) HandleChatCompletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeFault(w, &translate.Fault{
			Type:    translate.FaultInvalidRequest,
			Message: "method not allowed",
			Status:  http.StatusMethodNotAllowed,
		})
		return
	}

	var req schema.CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFault(w, translate.NewInvalidRequest("invalid request body: "+err.Error()))
		return
	}

	// Inject model into context for downstream logging.
	ctx = observability.WithModel(ctx, req.Model)

	logger := observability.FromContext(ctx)
	logger.Info("chat completion request received",
		observability.String("model", req.Model),
		observability.Bool("stream", req.Stream),
		observability.Int("messages", len(req.Messages)),
	)

	if req.Stream {
		h.handleStream(ctx, w, &req)
		return
	}

	response, err := h.adapter.Complete(ctx, &req)
	if err != nil {
		fault := translate.MapFault(err)
		logger.Error("chat completion failed", observability.Error(fault))
		writeFault(w, fault)
		return
	}

	logger.Info("chat completion succeeded",
		observability.Int("prompt_tokens", response.Usage.PromptTokens),
		observability.Int("completion_tokens", response.Usage.CompletionTokens),
		observability.String("finish_reason", response.Choices[0].FinishReason),
	)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed to encode response", observability.Error(err))
	}
}

// handleStream writes the chunk sequence as server-sent events, flushing
// each chunk as it is produced. A failure after headers are written becomes
// a terminal error event before the stream closes.
func (h *Handler) handleStream(ctx context.Context, w http.ResponseWriter, req *schema.CompletionRequest) {
	logger := observability.FromContext(ctx)

	items, err := h.adapter.Stream(ctx, req)
	if err != nil {
		fault := translate.MapFault(err)
		logger.Error("stream setup failed", observability.Error(fault))
		writeFault(w, fault)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("streaming not supported by response writer")
		writeFault(w, translate.MapFault(errRespWriter))
		return
	}

	setSSEHeaders(w)

	for item := range items {
		if item.Err != nil {
			fault := translate.MapFault(item.Err)
			logger.Error("stream aborted", observability.Error(fault))
			_ = writeSSEJSON(w, flusher, schema.ErrorResponse{Error: fault.Envelope()})
			writeSSEDone(w, flusher)
			return
		}

		if err := writeSSEJSON(w, flusher, item.Chunk); err != nil {
			// Client went away mid-write; context cancellation tears down
			// the upstream call.
			logger.Info("client closed connection during stream", observability.Error(err))
			return
		}
	}

	writeSSEDone(w, flusher)
	logger.Info("stream completed")
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}

// writeFault renders a Fault as the conventional completions error body.
func writeFault(w http.ResponseWriter, fault *translate.Fault) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(fault.Status)
	_ = json.NewEncoder(w).Encode(schema.ErrorResponse{Error: fault.Envelope()})
}
