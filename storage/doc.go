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


// Package storage defines the storage abstraction layer for contenthub.
//
// Repository interfaces decouple the ingest pipeline and read paths from
// the backing store. The postgres subpackage provides the production
// implementation; consumers depend only on the interfaces here.
//
// Every operation is tenant-scoped: the tenant ID is an explicit
// argument and implementations must guarantee that no data from another
// tenant is ever visible, regardless of query contents.
//
// # Constructor Return Type Pattern
//
// Public constructors return the interfaces defined here rather than
// concrete types:
//
//	repo, err := postgres.NewRepository(ctx, dsn)  // returns storage.Repository
//
// This keeps callers swappable between backends and mockable in tests.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
