package core

import (
	"time"

	"github.com/google/uuid"
)

// SourceType identifies the external platform a resource was ingested from.
type SourceType string

const (
	// SourceShopify is a Shopify store catalog.
	SourceShopify SourceType = "shopify"
	// SourceWordPress is a WordPress (or WooCommerce) site.
	SourceWordPress SourceType = "wordpress"
)

// ResourceType categorizes a canonical resource.
type ResourceType string

const (
	ResourceTypePage       ResourceType = "page"
	ResourceTypePost       ResourceType = "post"
	ResourceTypeProduct    ResourceType = "product"
	ResourceTypeCollection ResourceType = "collection"
	ResourceTypeAsset      ResourceType = "asset"
	ResourceTypeCategory   ResourceType = "category"
)

// IdentityKey is the natural deduplication key for a resource within a
// tenant. SourceSite is normalized to the empty string when the source has
// no site notion, so keys compare reliably.
type IdentityKey struct {
	Source     SourceType
	SourceSite string
	SourceID   string
}

// Resource is the canonical representation every source maps into.
// A zero-valued ID means the surrogate key has not been assigned yet; the
// upsert engine resolves or mints it against the identity key.
type Resource struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Source      SourceType
	SourceSite  string
	SourceID    string
	Type        ResourceType
	Slug        string
	Title       string
	BodyHTML    string
	BodyText    string // derived from BodyHTML, markup stripped
	Images      []string
	Price       *float64
	Currency    string
	Tags        []string
	Attributes  map[string]string
	SEO         map[string]string
	Locale      string
	URL         string
	PublishedAt *time.Time
	UpdatedAt   time.Time
	Embedding   []float32 // owned by the embedding worker, never set by adapters
}

// Identity returns the resource's natural key.
func (r *Resource) Identity() IdentityKey {
	return IdentityKey{
		Source:     r.Source,
		SourceSite: r.SourceSite,
		SourceID:   r.SourceID,
	}
}

// SiteIntegration holds per-site instrumentation settings scoped by tenant.
type SiteIntegration struct {
	SiteID                     string
	GAMeasurementID            string
	GTMContainerID             string
	ConversionEvent            string
	ConsentCookieName          string
	ConsentOptOutValue         string
	SessionReplayEnabled       bool
	SessionReplayProjectKey    string
	SessionReplayHost          string
	SessionReplayMaskSelectors []string
	FeedbackEnabled            bool
	FeedbackWidgetURL          string
	FeedbackProjectKey         string
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// SiteIntegrationPatch is a partial update for a SiteIntegration.
// Nil fields are left untouched.
type SiteIntegrationPatch struct {
	GAMeasurementID            *string
	GTMContainerID             *string
	ConversionEvent            *string
	ConsentCookieName          *string
	ConsentOptOutValue         *string
	SessionReplayEnabled       *bool
	SessionReplayProjectKey    *string
	SessionReplayHost          *string
	SessionReplayMaskSelectors []string
	FeedbackEnabled            *bool
	FeedbackWidgetURL          *string
	FeedbackProjectKey         *string
}

// Apply copies the non-nil patch fields onto the integration.
func (p *SiteIntegrationPatch) Apply(si *SiteIntegration) {
	if p.GAMeasurementID != nil {
		si.GAMeasurementID = *p.GAMeasurementID
	}
	if p.GTMContainerID != nil {
		si.GTMContainerID = *p.GTMContainerID
	}
	if p.ConversionEvent != nil {
		si.ConversionEvent = *p.ConversionEvent
	}
	if p.ConsentCookieName != nil {
		si.ConsentCookieName = *p.ConsentCookieName
	}
	if p.ConsentOptOutValue != nil {
		si.ConsentOptOutValue = *p.ConsentOptOutValue
	}
	if p.SessionReplayEnabled != nil {
		si.SessionReplayEnabled = *p.SessionReplayEnabled
	}
	if p.SessionReplayProjectKey != nil {
		si.SessionReplayProjectKey = *p.SessionReplayProjectKey
	}
	if p.SessionReplayHost != nil {
		si.SessionReplayHost = *p.SessionReplayHost
	}
	if p.SessionReplayMaskSelectors != nil {
		si.SessionReplayMaskSelectors = p.SessionReplayMaskSelectors
	}
	if p.FeedbackEnabled != nil {
		si.FeedbackEnabled = *p.FeedbackEnabled
	}
	if p.FeedbackWidgetURL != nil {
		si.FeedbackWidgetURL = *p.FeedbackWidgetURL
	}
	if p.FeedbackProjectKey != nil {
		si.FeedbackProjectKey = *p.FeedbackProjectKey
	}
}
