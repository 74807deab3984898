package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/metrics"
	"github.com/globonews/newsmapper/internal/pipeline"
)

// StampLayout names per-run batch directories. Lexicographic order on the
// stamp equals chronological order, which the manifest sort relies on.
const StampLayout = "2006-01-02_15-04-05"

// BatchFileName is the JSON file written inside each batch directory.
const BatchFileName = "geolocated_news.json"

// Result describes what one publication attempt did.
type Result struct {
	Skipped     bool
	BatchPath   string
	ManifestLen int
	Synced      bool
}

// Publisher owns the publication transaction: it writes the batch file into
// the cloned publication repository, regenerates the manifest, and hands the
// working tree to the remote sync. State advancement is the caller's
// responsibility and must wait for a nil error from Publish.
type Publisher struct {
	repoPath     string
	dataDir      string
	manifestFile string
	maxEntries   int
	remote       pipeline.RemoteSync
	logger       *zap.Logger
}

// NewPublisher builds a Publisher. dataDir and manifestFile are relative to
// repoPath.
func NewPublisher(repoPath, dataDir, manifestFile string, maxEntries int, remote pipeline.RemoteSync, logger *zap.Logger) *Publisher {
	return &Publisher{
		repoPath:     repoPath,
		dataDir:      dataDir,
		manifestFile: manifestFile,
		maxEntries:   maxEntries,
		remote:       remote,
		logger:       logger,
	}
}

// Publish writes the batch under <dataDir>/<stamp>/geolocated_news.json,
// rebuilds the manifest and syncs the repository. An empty batch is a
// skipped no-op: nothing is written and nothing is pushed.
func (p *Publisher) Publish(ctx context.Context, batch []pipeline.EnrichedArticle, runTime time.Time) (Result, error) {
	if len(batch) == 0 {
		p.logger.Info("no geolocated articles, skipping publication")
		return Result{Skipped: true}, nil
	}

	stamp := runTime.Format(StampLayout)
	batchDir := filepath.Join(p.repoPath, filepath.FromSlash(p.dataDir), stamp)
	if err := os.MkdirAll(batchDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating batch directory: %w", err)
	}

	batchPath := filepath.Join(batchDir, BatchFileName)
	payload, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("encoding batch: %w", err)
	}
	if err := os.WriteFile(batchPath, payload, 0o644); err != nil {
		return Result{}, fmt.Errorf("writing batch file: %w", err)
	}
	p.logger.Info("batch written",
		zap.String("path", batchPath),
		zap.Int("articles", len(batch)),
	)

	entries, err := p.rebuildManifest()
	if err != nil {
		return Result{}, fmt.Errorf("rebuilding manifest: %w", err)
	}
	metrics.SetManifestEntries(entries)

	synced, err := p.remote.Sync(ctx, fmt.Sprintf("Add geolocated news batch %s", stamp))
	if err != nil {
		return Result{}, fmt.Errorf("publication sync: %w", err)
	}
	if !synced {
		p.logger.Info("working tree clean, nothing to push")
	}

	return Result{BatchPath: batchPath, ManifestLen: entries, Synced: synced}, nil
}
