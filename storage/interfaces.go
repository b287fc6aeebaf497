package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/hubforge/contenthub/core"
)

// SearchQuery describes a tenant-scoped resource search.
// Text matches case-insensitively against title, slug, body text and
// tags. Type, when non-empty, restricts results to one resource type.
type SearchQuery struct {
	Text  string
	Type  core.ResourceType
	Limit int
}

// ResourceRepository provides tenant-scoped operations on canonical
// resources.
type ResourceRepository interface {
	// UpsertResources inserts or updates resources by identity key.
	// A resource whose (source, source_site, source_id) already exists
	// for the tenant keeps its stored ID; new identities are minted a
	// time-ordered UUID. Returns the resources with IDs populated.
	// All rows in one call are written atomically.
	UpsertResources(ctx context.Context, tenantID uuid.UUID, resources []*core.Resource) ([]*core.Resource, error)

	// GetResource retrieves a single resource by ID.
	// Returns ErrNotFound if it doesn't exist for the tenant.
	GetResource(ctx context.Context, tenantID, id uuid.UUID) (*core.Resource, error)

	// GetResources retrieves multiple resources by ID.
	// Returns only the resources that exist (no error for missing IDs).
	GetResources(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*core.Resource, error)

	// SearchResources runs a text search over the tenant's resources,
	// most recently updated first.
	SearchResources(ctx context.Context, tenantID uuid.UUID, query SearchQuery) ([]*core.Resource, error)

	// UpdateEmbeddings stores embedding vectors for the given resource
	// IDs. A nil vector clears the stored embedding. Unknown IDs are
	// skipped without error.
	UpdateEmbeddings(ctx context.Context, tenantID uuid.UUID, embeddings map[uuid.UUID][]float32) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// Repository combines all storage operations over one backend.
type Repository interface {
	ResourceRepository
	SiteIntegrationRepository
}

// SiteIntegrationRepository manages per-tenant source site
// configuration.
type SiteIntegrationRepository interface {
	// SaveSiteIntegration inserts a new integration or applies a
	// partial patch to an existing one, keyed by (tenant, site ID).
	// Returns the stored state after the write.
	SaveSiteIntegration(ctx context.Context, tenantID uuid.UUID, site *core.SiteIntegration, patch *core.SiteIntegrationPatch) (*core.SiteIntegration, error)

	// GetSiteIntegration retrieves an integration by site ID.
	// Returns ErrNotFound if it doesn't exist for the tenant.
	GetSiteIntegration(ctx context.Context, tenantID uuid.UUID, siteID string) (*core.SiteIntegration, error)

	// ListSiteIntegrations lists the tenant's integrations.
	ListSiteIntegrations(ctx context.Context, tenantID uuid.UUID) ([]*core.SiteIntegration, error)

	// DeleteSiteIntegration removes an integration by site ID.
	// Returns ErrNotFound if it doesn't exist for the tenant.
	DeleteSiteIntegration(ctx context.Context, tenantID uuid.UUID, siteID string) error
}
