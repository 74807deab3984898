// Package enrich implements the per-article enrichment pipeline: geolocation
// resolution, keyword extraction, icon resolution, and the orchestrator that
// partitions articles into the published and review buckets.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/globonews/newsmapper/internal/pipeline"
)

const locationPromptTemplate = `You are an expert geographic analyst for a worldwide news agency. Your only task is to read a news article and place it correctly on a map.

**Process to follow:**
1.  **Context analysis:** Read the whole article to understand its central message. Do not stop at keywords.
2.  **Find the fulcrum:** Identify the "geographic fulcrum" of the story. Where is the action concentrated? Where do the most important facts happen?
3.  **Discard peripheral mentions:** If the story is about a crisis in Gaza and the president of Brazil comments on it, the fulcrum is **Gaza**, not Brazil. Actively discard non-central locations.
4.  **Formulate the answer:** Based on your analysis, fill in the following JSON. Add nothing else to your answer.

**Output format (JSON only):**
{
  "city": "City name (if applicable)",
  "region": "Region/state name (if applicable)",
  "country": "Country name (in English, mandatory)",
  "reasoning": "One sentence explaining why this is the central location of the story."
}

**Article text to analyze:**
%s. %s`

// locationAnswer is the structured response requested from the LLM. The
// reasoning field is only requested to improve model grounding; it is never
// used downstream.
type locationAnswer struct {
	City      string `json:"city"`
	Region    string `json:"region"`
	Country   string `json:"country"`
	Reasoning string `json:"reasoning"`
}

// Locator resolves the geographic fulcrum of an article through the LLM
// gateway.
type Locator struct {
	llm pipeline.Generator
}

// NewLocator builds a Locator.
func NewLocator(llm pipeline.Generator) *Locator {
	return &Locator{llm: llm}
}

// ResolveLocation returns the location name assembled city -> region ->
// country, comma-separated. Every failure mode (gateway error, parse
// failure, missing country) yields the "N/A" sentinel plus a descriptive
// error; a missing country is a geolocation failure, not a gateway error.
func (l *Locator) ResolveLocation(ctx context.Context, article pipeline.Article) (string, error) {
	prompt := fmt.Sprintf(locationPromptTemplate, article.Title, article.Content)

	response, err := l.llm.Generate(ctx, prompt, true)
	if err != nil {
		return pipeline.LocationUnknown, fmt.Errorf("resolve location: %w", err)
	}

	var answer locationAnswer
	if err := json.Unmarshal([]byte(response), &answer); err != nil {
		return pipeline.LocationUnknown, &pipeline.ParseError{Op: "resolve location", Err: err}
	}
	if answer.Country == "" {
		return pipeline.LocationUnknown, fmt.Errorf("resolve location: no country identified")
	}

	parts := make([]string, 0, 3)
	for _, part := range []string{answer.City, answer.Region, answer.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", "), nil
}
