package upstream

// Auth schemes for the upstream request.
const (
	AuthBearer = "bearer"
	AuthAPIKey = "api-key"
)

// Config contains upstream provider configuration. The adapter receives
// these as opaque strings at construction time; nothing in the translation
// engine reads the environment.
type Config struct {
	BaseURL string `env:"UPSTREAM_BASE_URL"`
	APIKey  string `env:"UPSTREAM_API_KEY"`

	// APIVersion is appended as ?api-version= when set (Azure convention).
	APIVersion string `env:"UPSTREAM_API_VERSION"`

	// AuthScheme selects the credential header: "bearer" sends
	// Authorization: Bearer, "api-key" sends the bare api-key header.
	AuthScheme string `env:"UPSTREAM_AUTH_SCHEME" envDefault:"bearer"`

	// Timeout bounds non-streaming calls, in seconds. Streaming calls are
	// bounded by the client context instead.
	Timeout int `env:"UPSTREAM_TIMEOUT" envDefault:"60"`

	// ReasoningEffort is the default effort when the request does not set
	// reasoning_effort.
	ReasoningEffort string `env:"UPSTREAM_REASONING_EFFORT" envDefault:"medium"`

	// SummaryLevel requests reasoning summaries (auto, concise, detailed).
	SummaryLevel string `env:"UPSTREAM_SUMMARY_LEVEL"`

	Truncation string `env:"UPSTREAM_TRUNCATION" envDefault:"auto"`

	// ReasoningVisibility is "hidden" or "exposed"; see translate.Options.
	ReasoningVisibility string `env:"REASONING_VISIBILITY" envDefault:"hidden"`
}
