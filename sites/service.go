// Package sites manages per-site instrumentation settings: analytics
// IDs, consent cookies, session replay and feedback widget wiring.
// It validates requests and delegates persistence to the storage layer.
package sites

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hubforge/contenthub/core"
	"github.com/hubforge/contenthub/storage"
)

var (
	// ErrRepositoryRequired is returned when a repository is not provided.
	ErrRepositoryRequired = errors.New("site integration repository required")

	// ErrMissingTenant is returned when no tenant is given.
	ErrMissingTenant = errors.New("tenant required")

	// ErrMissingSiteID is returned when no site identifier is given.
	ErrMissingSiteID = errors.New("site id required")
)

// Service wraps the site integration repository with request validation.
type Service struct {
	repo   storage.SiteIntegrationRepository
	logger *slog.Logger
}

// NewService creates a site integration service.
func NewService(repo storage.SiteIntegrationRepository) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	return &Service{
		repo:   repo,
		logger: slog.Default().With("component", "sites"),
	}, nil
}

// Save inserts or patches a site integration.
func (s *Service) Save(ctx context.Context, tenantID uuid.UUID, site *core.SiteIntegration, patch *core.SiteIntegrationPatch) (*core.SiteIntegration, error) {
	if tenantID == uuid.Nil {
		return nil, ErrMissingTenant
	}
	if site == nil || site.SiteID == "" {
		return nil, ErrMissingSiteID
	}
	saved, err := s.repo.SaveSiteIntegration(ctx, tenantID, site, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("site integration saved", "tenant", tenantID, "site", saved.SiteID)
	return saved, nil
}

// Get retrieves a site integration by site ID.
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID, siteID string) (*core.SiteIntegration, error) {
	if tenantID == uuid.Nil {
		return nil, ErrMissingTenant
	}
	if siteID == "" {
		return nil, ErrMissingSiteID
	}
	return s.repo.GetSiteIntegration(ctx, tenantID, siteID)
}

// List lists the tenant's site integrations.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]*core.SiteIntegration, error) {
	if tenantID == uuid.Nil {
		return nil, ErrMissingTenant
	}
	return s.repo.ListSiteIntegrations(ctx, tenantID)
}

// Delete removes a site integration by site ID.
func (s *Service) Delete(ctx context.Context, tenantID uuid.UUID, siteID string) error {
	if tenantID == uuid.Nil {
		return ErrMissingTenant
	}
	if siteID == "" {
		return ErrMissingSiteID
	}
	return s.repo.DeleteSiteIntegration(ctx, tenantID, siteID)
}
