package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/clock/system"
	"github.com/globonews/newsmapper/internal/enrich"
	"github.com/globonews/newsmapper/internal/feed"
	"github.com/globonews/newsmapper/internal/metrics"
	"github.com/globonews/newsmapper/internal/pipeline"
	"github.com/globonews/newsmapper/internal/publish"
)

// newRunCmd creates the 'run' subcommand, one full pipeline cycle: pick the
// next source, fetch and dedupe its feed, enrich the new articles, publish
// the batch and only then advance the run state.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Runs one ingestion-enrichment-publication cycle",
		Long: `Consumes the next source in the rotation, fetches its RSS feed,
drops already-published articles, geolocates and icon-matches the rest, and
publishes the enriched batch to the news site repository. Source rotation and
the published ledger advance only after the batch lands.`,

		RunE: runRunCommand,
	}
}

func runRunCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := appInstance.GetLogger()

	runID := uuid.NewString()
	start := system.New().Now()
	logger.Info("starting pipeline run", zap.String("run_id", runID))

	sources, err := feed.LoadSources(viper.GetString("sources.file"))
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	tracker := appInstance.GetTracker()
	name, url, ok, err := tracker.Next(sources)
	if err != nil {
		return fmt.Errorf("advance source rotation: %w", err)
	}
	if !ok {
		return fmt.Errorf("no sources configured in %s", viper.GetString("sources.file"))
	}
	logger.Info("selected source", zap.String("source", name), zap.String("url", url))

	articles, err := appInstance.GetReader().Fetch(ctx, name, url)
	if err != nil {
		// The source stays unprocessed so the next run retries it.
		metrics.RunCompleted("fetch_failed")
		return fmt.Errorf("fetch feed %s: %w", name, err)
	}

	ledger := appInstance.GetLedger()
	var fresh []pipeline.Article
	for _, a := range articles {
		if ledger.IsNew(a.Link) {
			fresh = append(fresh, a)
		}
	}
	logger.Info("deduplicated feed",
		zap.String("source", name),
		zap.Int("total", len(articles)),
		zap.Int("new", len(fresh)),
	)

	if len(fresh) == 0 {
		if err := tracker.MarkProcessed(name); err != nil {
			return fmt.Errorf("mark source processed: %w", err)
		}
		metrics.RunCompleted("empty")
		logger.Info("no new articles, source consumed", zap.String("source", name))
		return nil
	}

	// Open the publication repository before spending any model work so a
	// broken remote fails the run early.
	publisher, err := appInstance.OpenPublication(ctx)
	if err != nil {
		return err
	}

	stamp := start.Format(publish.StampLayout)
	outDir := filepath.Join(viper.GetString("output.dir"), stamp)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := publish.WriteMarkdown(fresh, filepath.Join(outDir, "articles.md")); err != nil {
		return err
	}

	llm := appInstance.GetLLM()
	assets := appInstance.GetAssets()
	enricher := enrich.NewEnricher(
		enrich.NewLocator(llm),
		appInstance.GetGeocoder(),
		enrich.NewExtractor(llm),
		enrich.NewResolver(llm, appInstance.GetIndex(), assets.DefaultIcon()),
		assets,
		assets.DefaultIcon(),
		viper.GetInt("output.description_limit"),
		logger,
	)
	outcome := enricher.Enrich(ctx, fresh)
	for range outcome.Published {
		metrics.ArticleOutcome("published")
	}
	for range outcome.Review {
		metrics.ArticleOutcome("review")
	}

	result, err := publisher.Publish(ctx, outcome.Published, start)
	if err != nil {
		// State does not advance; the whole batch is retried next run.
		metrics.RunCompleted("publish_failed")
		return fmt.Errorf("publish batch: %w", err)
	}

	if len(outcome.Review) > 0 {
		if err := publish.WriteMarkdown(outcome.Review, filepath.Join(outDir, "review_articles.md")); err != nil {
			return err
		}
	}
	if err := publish.WriteLines(outcome.Log, filepath.Join(outDir, "enrichment_log.txt")); err != nil {
		return err
	}

	links := make([]string, 0, len(fresh))
	for _, a := range fresh {
		links = append(links, a.Link)
	}
	if err := ledger.RecordAll(links); err != nil {
		return fmt.Errorf("record published links: %w", err)
	}
	if err := tracker.MarkProcessed(name); err != nil {
		return fmt.Errorf("mark source processed: %w", err)
	}

	end := system.New().Now()
	stats := publish.Stats{
		RunID:        runID,
		Source:       name,
		Fetched:      len(articles),
		New:          len(fresh),
		Geolocated:   len(outcome.Published),
		GeoFailed:    len(outcome.Review),
		IconMatched:  outcome.IconHits,
		IconFallback: len(outcome.Published) - outcome.IconHits,
		Start:        start,
		End:          end,
	}
	if err := publish.WriteReport(stats, filepath.Join(outDir, "report.txt")); err != nil {
		return err
	}

	metrics.RunCompleted("ok")
	metrics.ObserveRunDuration(end.Sub(start).Seconds())
	logger.Info("pipeline run finished",
		zap.String("run_id", runID),
		zap.String("source", name),
		zap.Int("published", len(outcome.Published)),
		zap.Int("review", len(outcome.Review)),
		zap.Bool("synced", result.Synced),
		zap.Int("manifest_entries", result.ManifestLen),
	)
	return nil
}
