package ingest

import "errors"

var (
	// ErrRepositoryRequired is returned when a resource repository is not provided.
	ErrRepositoryRequired = errors.New("resource repository required")

	// ErrSenderRequired is returned when an embedding job sender is not provided.
	ErrSenderRequired = errors.New("embedding job sender required")

	// ErrMissingTenant is returned when a sync request carries no tenant.
	ErrMissingTenant = errors.New("tenant required")

	// ErrUnknownSource is returned when a sync request names an unsupported source.
	ErrUnknownSource = errors.New("unknown source")

	// ErrMissingStoreDomain is returned when a Shopify sync lacks a store domain.
	ErrMissingStoreDomain = errors.New("store domain required")

	// ErrMissingAccessToken is returned when a Shopify sync lacks an access token.
	ErrMissingAccessToken = errors.New("access token required")

	// ErrMissingBaseURL is returned when a WordPress sync lacks a base URL.
	ErrMissingBaseURL = errors.New("base url required")

	// ErrMissingSiteID is returned when a WordPress sync lacks a site identifier.
	ErrMissingSiteID = errors.New("site id required")

	// ErrDispatcherClosed is returned when a sync is submitted after shutdown.
	ErrDispatcherClosed = errors.New("dispatcher is closed")
)
