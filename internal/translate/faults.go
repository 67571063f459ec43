// Package translate implements the bidirectional translation engine between
// the chat-completions wire protocol and the responses wire protocol:
// request mapping, non-streaming assembly, streaming event translation and
// failure mapping. Everything here is pure per-call state; nothing is
// shared across requests.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/davidbz/janus/internal/schema"
)

// Fault types exposed to clients in the error envelope.
const (
	FaultInvalidRequest      = "invalid_request"
	FaultUpstreamUnavailable = "upstream_unavailable"
	FaultUpstreamShape       = "upstream_shape_error"
	FaultProvider            = "provider_error"
	FaultProtocolViolation   = "protocol_violation"
	FaultInternal            = "internal_error"
)

// Fault is a classified failure. Every error that crosses the orchestrator
// boundary is a Fault; the HTTP layer renders it as an ErrorEnvelope with
// the carried status code.
type Fault struct {
	Type    string
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Code != "" {
		return fmt.Sprintf("%s (%s): %s", f.Type, f.Code, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Type, f.Message)
}

// Envelope returns the client-visible error shape.
func (f *Fault) Envelope() schema.ErrorEnvelope {
	return schema.ErrorEnvelope{
		Type:    f.Type,
		Code:    f.Code,
		Message: f.Message,
	}
}

// NewInvalidRequest reports a client-caused validation failure. These fail
// fast; no upstream call is made.
func NewInvalidRequest(message string) *Fault {
	return &Fault{
		Type:    FaultInvalidRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewUpstreamUnavailable reports a transport-level failure reaching the
// provider. Potentially retryable by the caller; never retried here.
func NewUpstreamUnavailable(message string) *Fault {
	return &Fault{
		Type:    FaultUpstreamUnavailable,
		Message: message,
		Status:  http.StatusBadGateway,
	}
}

// NewUpstreamShape reports an upstream response that is not in the expected
// shape. Fatal for the call; the payload is never guessed or repaired.
func NewUpstreamShape(message string) *Fault {
	return &Fault{
		Type:    FaultUpstreamShape,
		Message: message,
		Status:  http.StatusBadGateway,
	}
}

// NewProviderFault passes through an error the provider reported explicitly.
func NewProviderFault(code, message string) *Fault {
	return &Fault{
		Type:    FaultProvider,
		Code:    code,
		Message: message,
		Status:  http.StatusBadGateway,
	}
}

// NewProtocolViolation reports an upstream event arriving after stream
// termination.
func NewProtocolViolation(message string) *Fault {
	return &Fault{
		Type:    FaultProtocolViolation,
		Message: message,
		Status:  http.StatusBadGateway,
	}
}

// MapFault classifies an arbitrary error into a Fault. Faults pass through
// unchanged; transport errors map to upstream_unavailable, malformed JSON
// to upstream_shape_error, and anything unrecognized to internal_error so
// that no failure is ever silently swallowed.
func MapFault(err error) *Fault {
	var fault *Fault
	if errors.As(err, &fault) {
		return fault
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Fault{
			Type:    FaultUpstreamUnavailable,
			Code:    "timeout",
			Message: "upstream request timed out",
			Status:  http.StatusGatewayTimeout,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewUpstreamUnavailable(err.Error())
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return NewUpstreamShape("malformed upstream payload: " + err.Error())
	}

	return &Fault{
		Type:    FaultInternal,
		Message: err.Error(),
		Status:  http.StatusInternalServerError,
	}
}
