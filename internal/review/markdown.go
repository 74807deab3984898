// Package review implements the corrective pass over articles that failed
// geolocation during a normal run. It re-reads the review markdown written by
// the pipeline, asks a larger model to reason about the location, and appends
// recovered articles to the published output.
package review

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/globonews/newsmapper/internal/pipeline"
)

var (
	titleRe   = regexp.MustCompile(`## \[(.*?)\]\((.*?)\)`)
	dateRe    = regexp.MustCompile(`\*\*Date:\*\* (.*)`)
	sourceRe  = regexp.MustCompile(`\*\*Source:\*\* (.*)`)
	contentRe = regexp.MustCompile(`(?s)\*\*Source:\*\* .*?\n\n(.*)`)
)

// ParseMarkdown reads a review queue file back into articles. The format is
// exactly what publish.WriteMarkdown emits, so the round trip is lossless. A
// missing file means an empty queue, not an error; blocks that do not match
// the format are skipped.
func ParseMarkdown(path string) ([]pipeline.Article, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading review file: %w", err)
	}

	var articles []pipeline.Article
	for _, block := range strings.Split(string(raw), "---") {
		if strings.TrimSpace(block) == "" {
			continue
		}

		title := titleRe.FindStringSubmatch(block)
		date := dateRe.FindStringSubmatch(block)
		source := sourceRe.FindStringSubmatch(block)
		content := contentRe.FindStringSubmatch(block)
		if title == nil || date == nil || source == nil || content == nil {
			continue
		}

		articles = append(articles, pipeline.Article{
			Title:     strings.TrimSpace(title[1]),
			Link:      strings.TrimSpace(title[2]),
			Timestamp: strings.TrimSpace(date[1]),
			Source:    strings.TrimSpace(source[1]),
			Content:   strings.TrimSpace(content[1]),
		})
	}
	return articles, nil
}
