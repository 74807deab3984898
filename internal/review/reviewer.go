package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/pipeline"
	"github.com/globonews/newsmapper/internal/publish"
)

const reviewPromptTemplate = `Carefully analyze the text below.
1. In the "thinking" field, describe your reasoning for finding the geographic location. Consider every clue.
2. In the "location" field, write the name of the location you identified.

Respond ONLY in JSON format. Example:
{"thinking": "The text mentions an event that happened in Ibiza, an island in Spain. That is the main location.", "location": "Ibiza, Spain"}

If you find no location at all, respond:
{"thinking": "I analyzed the text but found no geographic references.", "location": "N/A"}

Text:
"%s"`

// modelGenerator is the slice of the LLM gateway the reviewer needs: the
// review pass runs a larger model than the main pipeline.
type modelGenerator interface {
	GenerateWithModel(ctx context.Context, model, prompt string, jsonFormat bool) (string, error)
}

type reviewAnswer struct {
	Thinking string `json:"thinking"`
	Location string `json:"location"`
}

// Result counts what one review pass did.
type Result struct {
	Reviewed  int
	Recovered int
}

// Reviewer re-geolocates previously failed articles with a chain-of-thought
// prompt and appends recoveries to the published JSON output.
type Reviewer struct {
	gen              modelGenerator
	model            string
	geocoder         pipeline.Geocoder
	assets           pipeline.AssetCatalog
	defaultIcon      string
	descriptionLimit int
	logger           *zap.Logger
}

// NewReviewer builds a Reviewer. Recovered articles carry the default icon;
// the review pass does no keyword extraction.
func NewReviewer(gen modelGenerator, model string, geocoder pipeline.Geocoder, assets pipeline.AssetCatalog, defaultIcon string, descriptionLimit int, logger *zap.Logger) *Reviewer {
	if descriptionLimit <= 0 {
		descriptionLimit = 150
	}
	return &Reviewer{
		gen:              gen,
		model:            model,
		geocoder:         geocoder,
		assets:           assets,
		defaultIcon:      defaultIcon,
		descriptionLimit: descriptionLimit,
		logger:           logger,
	}
}

// Run parses the review queue, attempts each article once, rewrites the
// output file with any recoveries appended, and writes a per-article log.
// An empty queue is a no-op.
func (r *Reviewer) Run(ctx context.Context, reviewFile, outputFile, logFile string) (Result, error) {
	articles, err := ParseMarkdown(reviewFile)
	if err != nil {
		return Result{}, err
	}
	if len(articles) == 0 {
		r.logger.Info("review queue is empty", zap.String("file", reviewFile))
		return Result{}, nil
	}

	published := r.loadPublished(outputFile)
	result := Result{Reviewed: len(articles)}
	var logEntries []string

	for _, article := range articles {
		location, raw, err := r.locate(ctx, article)
		logEntries = append(logEntries, fmt.Sprintf("ARTICLE: %s\nLLM response: %s\n---", article.Title, raw))
		if err != nil {
			r.logger.Warn("review geolocation failed", zap.String("title", article.Title), zap.Error(err))
			continue
		}

		lat, lon, ok := r.geocoder.Resolve(ctx, location)
		if !ok {
			r.logger.Info("review could not geocode", zap.String("title", article.Title), zap.String("location", location))
			continue
		}

		published = append(published, pipeline.EnrichedArticle{
			Lat:         lat,
			Lon:         lon,
			Title:       article.Title,
			Link:        article.Link,
			Source:      article.Source,
			Timestamp:   article.Timestamp,
			IconURL:     r.assets.IconURL(r.defaultIcon),
			Description: pipeline.Truncate(article.Content, r.descriptionLimit),
		})
		result.Recovered++
		r.logger.Info("review recovered article",
			zap.String("title", article.Title),
			zap.String("location", location),
		)
	}

	payload, err := json.MarshalIndent(published, "", "  ")
	if err != nil {
		return result, fmt.Errorf("encoding reviewed output: %w", err)
	}
	if err := os.WriteFile(outputFile, payload, 0o644); err != nil {
		return result, fmt.Errorf("writing reviewed output: %w", err)
	}

	if logFile != "" {
		if err := publish.WriteLines(logEntries, logFile); err != nil {
			return result, err
		}
	}
	return result, nil
}

// locate runs the chain-of-thought prompt for one article. It returns the
// raw model response for the review log even on failure.
func (r *Reviewer) locate(ctx context.Context, article pipeline.Article) (string, string, error) {
	prompt := fmt.Sprintf(reviewPromptTemplate, article.Title+". "+article.Content)
	raw, err := r.gen.GenerateWithModel(ctx, r.model, prompt, true)
	if err != nil {
		return "", err.Error(), err
	}

	var answer reviewAnswer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return "", raw, &pipeline.ParseError{Op: "review", Err: err}
	}

	location := strings.TrimSpace(answer.Location)
	if location == "" || location == pipeline.LocationUnknown {
		return "", raw, fmt.Errorf("model found no location")
	}
	return location, raw, nil
}

// loadPublished reads the existing output so recoveries append rather than
// replace. Missing or corrupted files start from an empty list.
func (r *Reviewer) loadPublished(path string) []pipeline.EnrichedArticle {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		r.logger.Warn("could not read existing output, starting empty", zap.String("file", path), zap.Error(err))
		return nil
	}

	var published []pipeline.EnrichedArticle
	if err := json.Unmarshal(raw, &published); err != nil {
		r.logger.Warn("existing output is corrupted, starting empty", zap.String("file", path), zap.Error(err))
		return nil
	}
	return published
}
