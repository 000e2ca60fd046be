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

// Package chat answers questions about a single ingested document.
//
// A question is embedded and matched against the document's pages and
// facts; the closest matches ground a single completion. The answer is
// returned together with the page and fact matches that informed it, so
// callers can show provenance. Unlike market-analysis research, chat is
// always scoped to one document.
package chat
