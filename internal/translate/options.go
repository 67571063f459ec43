package translate

// Reasoning visibility modes.
const (
	VisibilityHidden  = "hidden"
	VisibilityExposed = "exposed"
)

// Options carries the configuration the translation engine needs. Values
// are injected at construction; translators never read ambient state.
type Options struct {
	// DefaultEffort is the reasoning effort applied when the request does
	// not set reasoning_effort.
	DefaultEffort string

	// SummaryLevel requests a reasoning summary from the upstream when set
	// (auto, concise or detailed).
	SummaryLevel string

	// Truncation is the upstream truncation strategy (typically "auto").
	Truncation string

	// ExposeReasoning surfaces reasoning output as a separate
	// reasoning_content field. When false (the default), reasoning items
	// are dropped from client-visible output entirely.
	ExposeReasoning bool
}
