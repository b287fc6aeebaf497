package sources

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when a retry policy is configured
	// with a non-positive attempt budget.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrMissingStoreDomain is returned when a Shopify client is built
	// without a store domain.
	ErrMissingStoreDomain = errors.New("store domain required")

	// ErrMissingAccessToken is returned when a Shopify client is built
	// without an access token.
	ErrMissingAccessToken = errors.New("access token required")

	// ErrMissingBaseURL is returned when a WordPress client is built
	// without a base URL.
	ErrMissingBaseURL = errors.New("base url required")

	// ErrGraphQL indicates the Shopify GraphQL API reported errors in an
	// otherwise successful response.
	ErrGraphQL = errors.New("graphql error")

	// ErrUnexpectedStatus indicates a non-2xx HTTP response.
	ErrUnexpectedStatus = errors.New("unexpected http status")
)
