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

// Package storage defines the persistence abstractions for Docufi.
//
// Two repositories back the system:
//
//   - TaskRepository: the durable record of analysis task lifecycles. It is
//     the single source of truth polled by progress subscribers while an
//     orchestration run mutates it.
//   - DocumentRepository: the ingested document corpus (documents, page
//     chunks, and extracted facts) with vector similarity search over pages
//     and facts.
//
// Implementations live in sub-packages (storage/badger). Serialization of
// domain records uses mus-go varint codecs defined in this package.
package storage
