package publish

import (
	"fmt"
	"os"
	"strings"

	"github.com/globonews/newsmapper/internal/pipeline"
)

// WriteMarkdown renders articles to a markdown digest. The format doubles as
// the review queue on disk, so the review parser reads exactly what is
// written here.
func WriteMarkdown(articles []pipeline.Article, path string) error {
	var b strings.Builder
	for _, a := range articles {
		fmt.Fprintf(&b, "## [%s](%s)\n", a.Title, a.Link)
		fmt.Fprintf(&b, "**Date:** %s\n**Source:** %s\n\n%s\n\n---\n\n", a.Timestamp, a.Source, a.Content)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing markdown file: %w", err)
	}
	return nil
}

// WriteLines writes one entry per line, used for the per-run enrichment log.
func WriteLines(lines []string, path string) error {
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing log file: %w", err)
	}
	return nil
}
