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

import "errors"

// Domain validation errors
var (
	// ErrInvalidResource indicates a Resource failed validation.
	ErrInvalidResource = errors.New("invalid resource")

	// ErrMissingTenant indicates the tenant ID is absent.
	ErrMissingTenant = errors.New("tenant id is required")

	// ErrEmptySourceID indicates the source-assigned identifier is empty.
	ErrEmptySourceID = errors.New("source id cannot be empty")

	// ErrUnknownSource indicates an unrecognized SourceType value.
	ErrUnknownSource = errors.New("unknown source")

	// ErrUnknownResourceType indicates an unrecognized ResourceType value.
	ErrUnknownResourceType = errors.New("unknown resource type")

	// ErrMissingUpdatedAt indicates the required last-updated timestamp is zero.
	ErrMissingUpdatedAt = errors.New("updated_at timestamp is required")
)
