package sources

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultMaxAttempts is the attempt budget for a single page fetch.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the initial backoff delay between attempts.
	DefaultBaseDelay = 1 * time.Second

	// DefaultMaxDelay caps the backoff delay between attempts.
	DefaultMaxDelay = 8 * time.Second

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second
)

// ItemStream yields raw vendor payloads one at a time, hiding pagination
// and retry behind ForEach. Iteration stops at the first error returned
// by fn, which is propagated to the caller.
type ItemStream interface {
	ForEach(ctx context.Context, fn func(item map[string]any) error) error
}

// clientConfig holds the knobs shared by all source clients.
type clientConfig struct {
	httpClient  *http.Client
	apiVersion  string
	itemTypes   []string
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// ClientOption configures a source client.
type ClientOption func(*clientConfig) error

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		maxDelay:    DefaultMaxDelay,
	}
}

// WithHTTPClient overrides the HTTP client used for all requests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cfg *clientConfig) error {
		if c != nil {
			cfg.httpClient = c
		}
		return nil
	}
}

// WithAPIVersion overrides the vendor API version.
func WithAPIVersion(version string) ClientOption {
	return func(cfg *clientConfig) error {
		if version != "" {
			cfg.apiVersion = version
		}
		return nil
	}
}

// WithItemTypes restricts fetching to the given vendor item types.
func WithItemTypes(types []string) ClientOption {
	return func(cfg *clientConfig) error {
		if len(types) > 0 {
			cfg.itemTypes = types
		}
		return nil
	}
}

// WithRetryPolicy overrides the page-fetch retry policy.
func WithRetryPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) ClientOption {
	return func(cfg *clientConfig) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		cfg.maxAttempts = maxAttempts
		cfg.baseDelay = baseDelay
		cfg.maxDelay = maxDelay
		return nil
	}
}

// retryableStatus reports whether an HTTP status is worth retrying.
// Rate limits and server errors are transient; everything else non-2xx
// indicates a request that will keep failing.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
