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

// Package ingestion loads documents into the corpus and enriches them.
//
// The Pipeline stores a document and its page chunks synchronously, then
// enriches them in the background: page embeddings are generated and
// attached, and facts are extracted per page, embedded, and stored with
// content-based ids. Enrichment errors are logged and never fail the
// ingest call; pages without embeddings are simply invisible to vector
// search until a later ingest or reprocessing attaches them.
package ingestion
