package publish_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/publish"
	"github.com/globonews/newsmapper/internal/pipeline"
)

type fakeRemote struct {
	calls    int
	messages []string
	synced   bool
	err      error
}

func (f *fakeRemote) Sync(_ context.Context, message string) (bool, error) {
	f.calls++
	f.messages = append(f.messages, message)
	return f.synced, f.err
}

func newPublisher(t *testing.T, remote *fakeRemote, maxEntries int) (*publish.Publisher, string) {
	t.Helper()
	repo := t.TempDir()
	p := publish.NewPublisher(repo, "public/data", "public/news_manifest.json", maxEntries, remote, zap.NewNop())
	return p, repo
}

func batchTime(t *testing.T, stamp string) time.Time {
	t.Helper()
	ts, err := time.Parse(publish.StampLayout, stamp)
	require.NoError(t, err)
	return ts
}

func TestPublishEmptyBatchIsSkipped(t *testing.T) {
	remote := &fakeRemote{}
	p, repo := newPublisher(t, remote, 100)

	result, err := p.Publish(context.Background(), nil, time.Now())

	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, 0, remote.calls)
	assert.NoFileExists(t, filepath.Join(repo, "public", "news_manifest.json"))
}

func TestPublishWritesBatchAndManifest(t *testing.T) {
	remote := &fakeRemote{synced: true}
	p, repo := newPublisher(t, remote, 100)

	batch := []pipeline.EnrichedArticle{
		{Lat: 41.9, Lon: 12.5, Title: "T", Link: "L1", Source: "ANSA", IconURL: "u"},
	}
	result, err := p.Publish(context.Background(), batch, batchTime(t, "2025-08-04_10-30-00"))

	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.True(t, result.Synced)
	assert.Equal(t, 1, result.ManifestLen)

	raw, err := os.ReadFile(result.BatchPath)
	require.NoError(t, err)
	var got []pipeline.EnrichedArticle
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, batch, got)

	raw, err = os.ReadFile(filepath.Join(repo, "public", "news_manifest.json"))
	require.NoError(t, err)
	var manifest []string
	require.NoError(t, json.Unmarshal(raw, &manifest))
	assert.Equal(t, []string{"data/2025-08-04_10-30-00/geolocated_news.json"}, manifest)

	require.Len(t, remote.messages, 1)
	assert.Contains(t, remote.messages[0], "2025-08-04_10-30-00")
}

func TestPublishManifestNewestFirstAndCapped(t *testing.T) {
	remote := &fakeRemote{synced: true}
	p, repo := newPublisher(t, remote, 3)

	stamps := []string{
		"2025-08-01_09-00-00",
		"2025-08-03_09-00-00",
		"2025-08-02_09-00-00",
		"2025-08-04_09-00-00",
	}
	batch := []pipeline.EnrichedArticle{{Title: "T", Link: "L"}}
	for _, stamp := range stamps {
		_, err := p.Publish(context.Background(), batch, batchTime(t, stamp))
		require.NoError(t, err)
	}

	raw, err := os.ReadFile(filepath.Join(repo, "public", "news_manifest.json"))
	require.NoError(t, err)
	var manifest []string
	require.NoError(t, json.Unmarshal(raw, &manifest))
	assert.Equal(t, []string{
		"data/2025-08-04_09-00-00/geolocated_news.json",
		"data/2025-08-03_09-00-00/geolocated_news.json",
		"data/2025-08-02_09-00-00/geolocated_news.json",
	}, manifest)
}

func TestPublishSyncFailurePropagates(t *testing.T) {
	remote := &fakeRemote{err: fmt.Errorf("push rejected")}
	p, _ := newPublisher(t, remote, 100)

	_, err := p.Publish(context.Background(), []pipeline.EnrichedArticle{{Title: "T"}}, time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "push rejected")
}

func TestPublishCleanTreeReportsNotSynced(t *testing.T) {
	remote := &fakeRemote{synced: false}
	p, _ := newPublisher(t, remote, 100)

	result, err := p.Publish(context.Background(), []pipeline.EnrichedArticle{{Title: "T"}}, time.Now())

	require.NoError(t, err)
	assert.False(t, result.Synced)
	assert.Equal(t, 1, remote.calls)
}
