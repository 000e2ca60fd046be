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

// Package web provides HTTP-backed implementations of the research
// package's SearchClient and Fetcher interfaces.
//
// SearchClient talks to a SearxNG-compatible JSON search endpoint.
// Fetcher downloads a page and extracts its readable text with the
// langchaingo HTML document loader.
package web
