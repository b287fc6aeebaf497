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


package core

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateResource validates a Resource according to domain rules.
//
// Validation rules:
//   - TenantID must be set
//   - Source must be a known SourceType
//   - SourceID must not be empty
//   - Type must be a known ResourceType
//   - UpdatedAt must not be zero
//
// NOT validated (populated by other components):
//   - ID (zero is valid before the upsert engine assigns it)
//   - Embedding (populated by the embedding worker)
func ValidateResource(r *Resource) error {
	if r == nil {
		return fmt.Errorf("%w: resource is nil", ErrInvalidResource)
	}

	if r.TenantID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrInvalidResource, ErrMissingTenant)
	}

	if err := ValidateSourceType(r.Source); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResource, err)
	}

	if r.SourceID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidResource, ErrEmptySourceID)
	}

	if err := ValidateResourceType(r.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResource, err)
	}

	if r.UpdatedAt.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidResource, ErrMissingUpdatedAt)
	}

	return nil
}

// ValidateSourceType checks that the source type is one of the known platforms.
func ValidateSourceType(s SourceType) error {
	switch s {
	case SourceShopify, SourceWordPress:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, string(s))
	}
}

// ValidateResourceType checks that the type is part of the fixed enumeration.
func ValidateResourceType(t ResourceType) error {
	switch t {
	case ResourceTypePage, ResourceTypePost, ResourceTypeProduct,
		ResourceTypeCollection, ResourceTypeAsset, ResourceTypeCategory:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownResourceType, string(t))
	}
}
