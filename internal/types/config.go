package types

import (
	"strings"
	"time"
)

const (
	DefaultEndpoint  = "https://bugs.debian.org/cgi-bin/soap.cgi"
	DefaultNamespace = "Debbugs/SOAP/V1"
	DefaultBTSURL    = "https://bugs.debian.org/"
	// DefaultChunkSize stays under the service's undocumented limit on
	// ids per get_status request.
	DefaultChunkSize = 500
	DefaultParallel  = 1
	DefaultTimeout   = 60 * time.Second
	DefaultRetries   = 1
	DefaultCADir     = "/etc/ssl/ca-debian"
)

// ClientConfig is set once before the first call and read-only after.
type ClientConfig struct {
	Endpoint  string
	Namespace string
	ChunkSize int
	Parallel  int
	Timeout   time.Duration
	Retries   int
	Proxy     string
	CADir     string
	UserAgent string
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Endpoint:  DefaultEndpoint,
		Namespace: DefaultNamespace,
		ChunkSize: DefaultChunkSize,
		Parallel:  DefaultParallel,
		Timeout:   DefaultTimeout,
		Retries:   DefaultRetries,
		CADir:     DefaultCADir,
		UserAgent: "debianbts",
	}
}

func (c ClientConfig) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return ConfigurationError("endpoint is empty")
	}
	if strings.TrimSpace(c.Namespace) == "" {
		return ConfigurationError("namespace is empty")
	}
	if c.ChunkSize <= 0 {
		return ConfigurationError("chunk size must be positive")
	}
	if c.Parallel <= 0 {
		return ConfigurationError("parallel must be positive")
	}
	return nil
}

// OutputFormat selects how the CLI renders results.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatYAML OutputFormat = "yaml"
	FormatJSON OutputFormat = "json"
)

func ParseOutputFormat(value string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatText:
		return FormatText, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", ConfigurationError("unknown output format: " + value)
	}
}
