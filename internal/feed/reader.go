package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/pipeline"
)

// timestampLayout is the best-effort publish time format attached to articles.
const timestampLayout = "2006-01-02 15:04:05"

// Reader fetches one feed and maps its entries to articles.
type Reader struct {
	parser *gofeed.Parser
	logger *zap.Logger
}

// NewReader builds a Reader with the given user agent and HTTP timeout.
func NewReader(userAgent string, timeout time.Duration, logger *zap.Logger) *Reader {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: timeout}
	return &Reader{parser: parser, logger: logger}
}

// Fetch downloads and parses a single source feed. A fetch failure is a
// transport error; the caller leaves the source unprocessed so it is retried
// on the next invocation.
func (r *Reader) Fetch(ctx context.Context, source, url string) ([]pipeline.Article, error) {
	parsed, err := r.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, &pipeline.TransportError{Op: "fetch feed " + source, Err: err}
	}

	articles := make([]pipeline.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		articles = append(articles, r.toArticle(source, item))
	}
	r.logger.Info("feed fetched",
		zap.String("source", source),
		zap.Int("articles", len(articles)),
	)
	return articles, nil
}

func (r *Reader) toArticle(source string, item *gofeed.Item) pipeline.Article {
	title := item.Title
	if title == "" {
		title = "untitled"
	}

	body := item.Description
	if body == "" {
		body = item.Content
	}

	timestamp := pipeline.TimestampUnavailable
	if item.PublishedParsed != nil {
		timestamp = item.PublishedParsed.UTC().Format(timestampLayout)
	}

	return pipeline.Article{
		Source:    source,
		Title:     title,
		Link:      item.Link,
		Content:   ExtractText(body),
		Timestamp: timestamp,
	}
}
