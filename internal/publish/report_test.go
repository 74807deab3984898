package publish_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globonews/newsmapper/internal/publish"
	"github.com/globonews/newsmapper/internal/pipeline"
)

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	start := time.Date(2025, 8, 4, 10, 30, 0, 0, time.UTC)

	err := publish.WriteReport(publish.Stats{
		RunID:        "run-1",
		Source:       "ANSA",
		Fetched:      10,
		New:          4,
		Geolocated:   3,
		GeoFailed:    1,
		IconMatched:  2,
		IconFallback: 1,
		Start:        start,
		End:          start.Add(90 * time.Second),
	}, path)

	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(raw)
	assert.Contains(t, report, "Run ID: run-1")
	assert.Contains(t, report, "**Source processed:** ANSA")
	assert.Contains(t, report, "Fetched from feed: 10")
	assert.Contains(t, report, "Geolocated successfully: 3")
	assert.Contains(t, report, "Duration: 1m30s")
}

func TestWriteMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.md")

	err := publish.WriteMarkdown([]pipeline.Article{
		{Source: "ANSA", Title: "Flood in Emilia", Link: "https://e/1", Content: "Body", Timestamp: "2025-08-04 10:30:00"},
	}, path)

	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"## [Flood in Emilia](https://e/1)\n**Date:** 2025-08-04 10:30:00\n**Source:** ANSA\n\nBody\n\n---\n\n",
		string(raw),
	)
}
