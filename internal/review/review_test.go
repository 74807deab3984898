package review_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/pipeline"
	"github.com/globonews/newsmapper/internal/publish"
	"github.com/globonews/newsmapper/internal/review"
)

type fakeGenerator struct {
	responses map[string]string // keyed by substring of the prompt
	err       error
	models    []string
}

func (f *fakeGenerator) GenerateWithModel(_ context.Context, model, prompt string, _ bool) (string, error) {
	f.models = append(f.models, model)
	if f.err != nil {
		return "", f.err
	}
	for key, response := range f.responses {
		if strings.Contains(prompt, key) {
			return response, nil
		}
	}
	return `{"thinking": "nothing", "location": "N/A"}`, nil
}

type fakeGeocoder struct {
	coords map[string][2]float64
}

func (f *fakeGeocoder) Resolve(_ context.Context, location string) (float64, float64, bool) {
	c, ok := f.coords[location]
	if !ok {
		return 0, 0, false
	}
	return c[0], c[1], true
}

type fakeAssets struct{}

func (fakeAssets) IconURL(iconID string) string {
	return fmt.Sprintf("https://assets.example.com/%s.png", iconID)
}

func TestParseMarkdownRoundTrip(t *testing.T) {
	articles := []pipeline.Article{
		{Source: "ANSA", Title: "Flood in Emilia", Link: "https://e/1", Content: "Heavy rain hit the region.", Timestamp: "2025-08-04 10:30:00"},
		{Source: "BBC", Title: "Markets rally", Link: "https://e/2", Content: "Stocks rose.\n\nAnalysts cheered.", Timestamp: "unavailable"},
	}
	path := filepath.Join(t.TempDir(), "review_articles.md")
	require.NoError(t, publish.WriteMarkdown(articles, path))

	got, err := review.ParseMarkdown(path)
	require.NoError(t, err)
	assert.Equal(t, articles, got)
}

func TestParseMarkdownMissingFileIsEmptyQueue(t *testing.T) {
	got, err := review.ParseMarkdown(filepath.Join(t.TempDir(), "absent.md"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseMarkdownSkipsMalformedBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review_articles.md")
	content := "## [Good](https://e/1)\n**Date:** d\n**Source:** s\n\nbody\n\n---\n\nnot an article\n\n---\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := review.ParseMarkdown(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Good", got[0].Title)
}

func newReviewer(gen *fakeGenerator, geo *fakeGeocoder) *review.Reviewer {
	return review.NewReviewer(gen, "gemma3n:e4b", geo, fakeAssets{}, "Newspaper", 150, zap.NewNop())
}

func writeQueue(t *testing.T, dir string, articles []pipeline.Article) string {
	t.Helper()
	path := filepath.Join(dir, "review_articles.md")
	require.NoError(t, publish.WriteMarkdown(articles, path))
	return path
}

func TestRunRecoversArticle(t *testing.T) {
	dir := t.TempDir()
	queue := writeQueue(t, dir, []pipeline.Article{
		{Source: "ANSA", Title: "Storm at sea", Link: "https://e/1", Content: "A ferry near Ibiza was delayed.", Timestamp: "ts"},
	})
	output := filepath.Join(dir, "geolocated_news.json")
	logFile := filepath.Join(dir, "review_log.txt")

	gen := &fakeGenerator{responses: map[string]string{
		"Ibiza": `{"thinking": "The ferry was near Ibiza.", "location": "Ibiza, Spain"}`,
	}}
	geo := &fakeGeocoder{coords: map[string][2]float64{"Ibiza, Spain": {38.9, 1.4}}}

	result, err := newReviewer(gen, geo).Run(context.Background(), queue, output, logFile)
	require.NoError(t, err)
	assert.Equal(t, review.Result{Reviewed: 1, Recovered: 1}, result)
	assert.Equal(t, []string{"gemma3n:e4b"}, gen.models)

	raw, err := os.ReadFile(output)
	require.NoError(t, err)
	var published []pipeline.EnrichedArticle
	require.NoError(t, json.Unmarshal(raw, &published))
	require.Len(t, published, 1)
	assert.InDelta(t, 38.9, published[0].Lat, 1e-9)
	assert.InDelta(t, 1.4, published[0].Lon, 1e-9)
	assert.Contains(t, published[0].IconURL, "Newspaper")

	logRaw, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logRaw), "Storm at sea")
}

func TestRunAppendsToExistingOutput(t *testing.T) {
	dir := t.TempDir()
	queue := writeQueue(t, dir, []pipeline.Article{
		{Source: "ANSA", Title: "T", Link: "https://e/2", Content: "Event in Rome.", Timestamp: "ts"},
	})
	output := filepath.Join(dir, "geolocated_news.json")
	existing := []pipeline.EnrichedArticle{{Title: "earlier", Link: "https://e/1"}}
	raw, err := json.Marshal(existing)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(output, raw, 0o644))

	gen := &fakeGenerator{responses: map[string]string{
		"Rome": `{"thinking": "Rome is named.", "location": "Rome, Italy"}`,
	}}
	geo := &fakeGeocoder{coords: map[string][2]float64{"Rome, Italy": {41.9, 12.5}}}

	_, err = newReviewer(gen, geo).Run(context.Background(), queue, output, "")
	require.NoError(t, err)

	raw, err = os.ReadFile(output)
	require.NoError(t, err)
	var published []pipeline.EnrichedArticle
	require.NoError(t, json.Unmarshal(raw, &published))
	require.Len(t, published, 2)
	assert.Equal(t, "earlier", published[0].Title)
	assert.Equal(t, "T", published[1].Title)
}

func TestRunFailuresLeaveOutputUnchanged(t *testing.T) {
	dir := t.TempDir()
	queue := writeQueue(t, dir, []pipeline.Article{
		{Source: "A", Title: "no clues", Link: "https://e/1", Content: "Nothing here.", Timestamp: "ts"},
		{Source: "A", Title: "gateway down", Link: "https://e/2", Content: "Also nothing.", Timestamp: "ts"},
	})
	output := filepath.Join(dir, "geolocated_news.json")

	gen := &fakeGenerator{} // answers N/A for everything
	geo := &fakeGeocoder{}

	result, err := newReviewer(gen, geo).Run(context.Background(), queue, output, "")
	require.NoError(t, err)
	assert.Equal(t, review.Result{Reviewed: 2, Recovered: 0}, result)

	raw, err := os.ReadFile(output)
	require.NoError(t, err)
	var published []pipeline.EnrichedArticle
	require.NoError(t, json.Unmarshal(raw, &published))
	assert.Empty(t, published)
}

func TestRunEmptyQueueIsNoOp(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "geolocated_news.json")

	result, err := newReviewer(&fakeGenerator{err: errors.New("must not be called")}, &fakeGeocoder{}).
		Run(context.Background(), filepath.Join(dir, "absent.md"), output, "")
	require.NoError(t, err)
	assert.Equal(t, review.Result{}, result)
	assert.NoFileExists(t, output)
}
