// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/catalog"
	"github.com/globonews/newsmapper/internal/feed"
	"github.com/globonews/newsmapper/internal/geocode"
	"github.com/globonews/newsmapper/internal/gitsync"
	"github.com/globonews/newsmapper/internal/logging"
	"github.com/globonews/newsmapper/internal/metrics"
	"github.com/globonews/newsmapper/internal/ollama"
	"github.com/globonews/newsmapper/internal/pipeline"
	"github.com/globonews/newsmapper/internal/publish"
	"github.com/globonews/newsmapper/internal/state"
)

// App holds the shared services every command draws from: the LLM gateway,
// the geocoder, the icon catalog and its embedding index, the feed reader
// and the run state repositories. It is initialized once at startup and
// fails fast when any critical piece is missing or malformed.
type App struct {
	logger   *zap.Logger
	llm      *ollama.Client
	geocoder *geocode.Client
	assets   *catalog.Assets
	index    *catalog.Index
	reader   *feed.Reader
	tracker  *state.Tracker
	ledger   *state.Ledger
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger { return a.logger }

// GetLLM returns the gateway to the generative and embedding models.
func (a *App) GetLLM() *ollama.Client { return a.llm }

// GetGeocoder returns the forward geocoding client.
func (a *App) GetGeocoder() pipeline.Geocoder { return a.geocoder }

// GetAssets returns the icon asset catalog.
func (a *App) GetAssets() *catalog.Assets { return a.assets }

// GetIndex returns the icon embedding index. An index that has not been
// built yet is empty, which degrades icon resolution to the default icon.
func (a *App) GetIndex() *catalog.Index { return a.index }

// GetReader returns the RSS feed reader.
func (a *App) GetReader() *feed.Reader { return a.reader }

// GetTracker returns the source rotation state repository.
func (a *App) GetTracker() *state.Tracker { return a.tracker }

// GetLedger returns the published-links ledger repository.
func (a *App) GetLedger() *state.Ledger { return a.ledger }

// NewApp creates and initializes a new App from the loaded configuration.
// It is the central point for service initialization and fails fast if any
// critical service cannot be built. The publication repository is opened
// separately, per run, by OpenPublication.
func NewApp(_ context.Context) (*App, error) {
	l := logging.L
	l.Info("Initializing application services...")

	retry := pipeline.RetryPolicy{
		MaxAttempts: viper.GetInt("ollama.max_attempts"),
		BaseDelay:   viper.GetDuration("ollama.base_delay"),
		OnRetry: func(attempt int, err error) {
			metrics.LLMRetry()
			l.Warn("retrying LLM request", zap.Int("attempt", attempt), zap.Error(err))
		},
	}

	llm, err := ollama.New(ollama.Config{
		BaseURL:        viper.GetString("ollama.base_url"),
		Model:          viper.GetString("ollama.model"),
		EmbeddingModel: viper.GetString("ollama.embedding_model"),
		Timeout:        viper.GetDuration("ollama.timeout"),
	}, retry, l)
	if err != nil {
		return nil, fmt.Errorf("initialize LLM gateway: %w", err)
	}

	geocoder, err := geocode.New(geocode.Config{
		BaseURL:   viper.GetString("geocode.base_url"),
		UserAgent: viper.GetString("geocode.user_agent"),
		Timeout:   viper.GetDuration("geocode.timeout"),
	}, l)
	if err != nil {
		return nil, fmt.Errorf("initialize geocoder: %w", err)
	}

	assets, err := catalog.LoadAssets(
		viper.GetString("catalog.assets_file"),
		viper.GetString("catalog.asset_base_url"),
		viper.GetString("catalog.default_icon"),
	)
	if err != nil {
		return nil, fmt.Errorf("load icon catalog: %w", err)
	}

	index, err := catalog.LoadIndex(viper.GetString("catalog.index_file"))
	if err != nil {
		return nil, fmt.Errorf("load icon index: %w", err)
	}

	tracker, err := state.NewTracker(viper.GetString("state.tracker_file"), l)
	if err != nil {
		return nil, fmt.Errorf("open source tracker: %w", err)
	}
	ledger, err := state.NewLedger(viper.GetString("state.ledger_file"), l)
	if err != nil {
		return nil, fmt.Errorf("open published ledger: %w", err)
	}

	reader := feed.NewReader(viper.GetString("feed.user_agent"), viper.GetDuration("feed.timeout"), l)

	metrics.Init()
	if viper.GetBool("monitoring.enabled") {
		go metrics.Serve(viper.GetString("monitoring.addr"), l)
	}

	l.Info("Application services initialized successfully.")
	return &App{
		logger:   l,
		llm:      llm,
		geocoder: geocoder,
		assets:   assets,
		index:    index,
		reader:   reader,
		tracker:  tracker,
		ledger:   ledger,
	}, nil
}

// OpenPublication clones or refreshes the publication repository and returns
// a Publisher rooted in it. It runs before enrichment so a broken remote
// fails the run before any model work is spent.
func (a *App) OpenPublication(ctx context.Context) (*publish.Publisher, error) {
	repo, err := gitsync.Open(ctx, gitsync.Config{
		RemoteURL:   viper.GetString("git.remote_url"),
		Branch:      viper.GetString("git.branch"),
		LocalPath:   viper.GetString("git.local_path"),
		Token:       viper.GetString("git.token"),
		AuthorName:  viper.GetString("git.author_name"),
		AuthorEmail: viper.GetString("git.author_email"),
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open publication repository: %w", err)
	}

	return publish.NewPublisher(
		repo.Path(),
		viper.GetString("publish.data_dir"),
		viper.GetString("publish.manifest_file"),
		viper.GetInt("publish.max_manifest_entries"),
		repo,
		a.logger,
	), nil
}

// Close flushes the shared services. State repositories persist on every
// mutation, so there is nothing to write back here.
func (a *App) Close() {
	a.logger.Info("Shutting down application services...")
	// Sync can fail on stderr sinks; there is nothing useful to do about it.
	_ = a.logger.Sync()
}
