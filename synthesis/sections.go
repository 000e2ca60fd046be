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

package synthesis

// Section defines one report section: its identity, heading, and the
// system instruction driving its synthesis.
type Section struct {
	Name         string
	Title        string
	Instructions string
}

// ReportSections lists the sections of a market analysis report in the
// order they appear in the compiled document.
var ReportSections = []Section{
	{
		Name:         "market_size",
		Title:        "Market Size",
		Instructions: "You are a market size synthesizer. Your job is to analyze raw text and extract market size information.",
	},
	{
		Name:         "top_players",
		Title:        "Top Players",
		Instructions: "You are a top players synthesizer. Your job is to analyze raw text and extract information about the top players in the market.",
	},
}
