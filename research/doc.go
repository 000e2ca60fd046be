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

// Package research gathers raw material for report synthesis.
//
// Two connectors implement the Connector interface:
//
//   - InternalConnector searches the ingested document corpus by vector
//     similarity, returning tagged page and fact excerpts.
//   - ExternalConnector queries a web search endpoint restricted to an
//     allow-list of credible domains, fetches the top results, and
//     summarizes each with an LLM.
//
// Connectors return plain text blocks. The internal connector treats
// embedding and storage failures as errors; the external connector
// degrades gracefully, skipping results it cannot fetch or summarize
// and falling back to sentinel messages rather than failing.
package research
