package enrich

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/globonews/newsmapper/internal/pipeline"
)

const keywordsPromptTemplate = `Analyze the following text and identify its **central visual theme**.

**Process:**
1.  What is the most important object, concept, or emotion of the story?
2.  If the story is about a bicycle accident, the theme is "bicycle".
3.  If it is about a financial crisis, the theme is "money" or "falling chart".
4.  If it is about an argument between two people, the theme is more abstract, perhaps "debate" or "conflict".

Extract 3 to 5 keywords in ENGLISH describing this theme. The first keyword must be the most important and as concrete as possible.

Return only a JSON object. Example: {"keywords": ["bicycle", "accident", "road", "injury"]}

Text: "%s. %s"`

type keywordsAnswer struct {
	Keywords []string `json:"keywords"`
}

// Extractor asks the LLM for an article's visual-theme keywords.
type Extractor struct {
	llm pipeline.Generator
}

// NewExtractor builds an Extractor.
func NewExtractor(llm pipeline.Generator) *Extractor {
	return &Extractor{llm: llm}
}

// Keywords returns the ordered keyword list, most concrete first. Parse and
// gateway failures yield an empty slice plus an error; an empty list is a
// valid, degraded input to icon resolution.
func (e *Extractor) Keywords(ctx context.Context, article pipeline.Article) ([]string, error) {
	prompt := fmt.Sprintf(keywordsPromptTemplate, article.Title, article.Content)

	response, err := e.llm.Generate(ctx, prompt, true)
	if err != nil {
		return nil, fmt.Errorf("extract keywords: %w", err)
	}

	var answer keywordsAnswer
	if err := json.Unmarshal([]byte(response), &answer); err != nil {
		return nil, &pipeline.ParseError{Op: "extract keywords", Err: err}
	}
	return answer.Keywords, nil
}
