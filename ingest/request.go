// Copyright 2026 Hubforge Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hubforge/contenthub/core"
)

// SourceParams carries the per-source connection settings of a sync.
// Shopify syncs need StoreDomain and AccessToken; WordPress syncs need
// BaseURL and SiteID, with AuthToken and ItemTypes optional.
type SourceParams struct {
	// Shopify
	StoreDomain string
	AccessToken string
	APIVersion  string

	// WordPress
	BaseURL   string
	SiteID    string
	AuthToken string
	ItemTypes []string
}

// SyncRequest asks the pipeline to pull one source into the hub.
type SyncRequest struct {
	TenantID uuid.UUID
	Source   core.SourceType
	Params   SourceParams
}

// Validate checks the request before any network or storage work.
func (r *SyncRequest) Validate() error {
	if r.TenantID == uuid.Nil {
		return ErrMissingTenant
	}
	switch r.Source {
	case core.SourceShopify:
		if r.Params.StoreDomain == "" {
			return ErrMissingStoreDomain
		}
		if r.Params.AccessToken == "" {
			return ErrMissingAccessToken
		}
	case core.SourceWordPress:
		if r.Params.BaseURL == "" {
			return ErrMissingBaseURL
		}
		if r.Params.SiteID == "" {
			return ErrMissingSiteID
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, r.Source)
	}
	return nil
}

// Site names the source site recorded on every resource of this sync.
func (r *SyncRequest) Site() string {
	switch r.Source {
	case core.SourceShopify:
		return r.Params.StoreDomain
	case core.SourceWordPress:
		return r.Params.SiteID
	}
	return ""
}
