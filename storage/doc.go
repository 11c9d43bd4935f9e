// Copyright 2025 Poiesic Systems
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


// Package storage provides the storage abstraction layer for beanvault.
//
// This package defines repository interfaces that decouple storage
// implementation from the warehouse engines. It allows different storage
// backends (BadgerDB, in-memory, etc.) to be used interchangeably, and it
// owns the backend-neutral query model: Filter (predicate conjunction,
// grouping, ordering, pagination, projection) and BeanPatch (compile-time
// partial-merge field sets).
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and enable multiple storage backend
// implementations:
//
//	repo, err := badger.NewBeanRepository(backend)  // returns storage.BeanRepository
//
// Internal package constructors may return concrete types since they're only
// used within the implementation package.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - BeanRepository: content items, partial-merge patches, query planning
//   - ChatterRepository: append-only engagement snapshots and TTL aggregates
//   - PublisherRepository: one row per source, insert-if-absent plus merge
//   - ClusterRepository: distance edges and batch selection predicates
//   - RefVectorRepository: the two fixed classification catalogs
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines. Writes are idempotent
// (dedup-before-insert), so concurrent duplicate ingestion is safe.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support.
package storage
