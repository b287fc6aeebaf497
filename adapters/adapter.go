// Package adapters maps raw vendor payloads into canonical resources.
//
// Adapters are pure: they perform no I/O, never fail on partial input,
// and leave fields empty when the vendor payload omits them. One adapter
// exists per source platform; adding a platform means adding an adapter
// without touching reconciliation or orchestration.
package adapters

import (
	"github.com/google/uuid"

	"github.com/hubforge/contenthub/core"
)

// Adapter converts one raw vendor payload into a canonical resource.
// Implementations must be stateless and safe for concurrent use.
type Adapter interface {
	// Source returns the platform this adapter handles.
	Source() core.SourceType

	// Map translates a raw payload into a Resource. site identifies the
	// vendor site (store domain, site ID) the payload came from.
	// Total over well-formed input: missing optional fields yield empty
	// values, never an error.
	Map(payload map[string]any, tenantID uuid.UUID, site string) *core.Resource
}

// ForSource returns the adapter for the given source type, or false when
// the source is unknown.
func ForSource(s core.SourceType) (Adapter, bool) {
	switch s {
	case core.SourceShopify:
		return &Shopify{}, true
	case core.SourceWordPress:
		return &WordPress{}, true
	default:
		return nil, false
	}
}
