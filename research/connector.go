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

package research

import (
	"context"

	"github.com/poiesic/docufi/core"
)

// Connector produces research material for a query from a single source.
type Connector interface {
	// Research gathers material relevant to the query.
	// The returned result always carries the connector's source kind and a
	// non-empty content block, which may be a sentinel message when nothing
	// relevant was found.
	Research(ctx context.Context, query string) (*core.ResearchResult, error)
}
