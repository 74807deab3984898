// Package cmd defines and implements the CLI commands for the newsmapper
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/app"
	"github.com/globonews/newsmapper/internal/catalog"
	"github.com/globonews/newsmapper/internal/feed"
	"github.com/globonews/newsmapper/internal/logging"
	"github.com/globonews/newsmapper/internal/ollama"
	"github.com/globonews/newsmapper/internal/pipeline"
	"github.com/globonews/newsmapper/internal/publish"
	"github.com/globonews/newsmapper/internal/state"
	"github.com/globonews/newsmapper/pkg/config"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands use. This allows us to
// inject a mock app during tests.
type App interface {
	Close()
	GetLogger() *zap.Logger
	GetLLM() *ollama.Client
	GetGeocoder() pipeline.Geocoder
	GetAssets() *catalog.Assets
	GetIndex() *catalog.Index
	GetReader() *feed.Reader
	GetTracker() *state.Tracker
	GetLedger() *state.Ledger
	OpenPublication(ctx context.Context) (*publish.Publisher, error)
}

// newApp is the application factory. It's a variable so we can replace it
// with a mock factory in our tests.
var newApp func(ctx context.Context) (App, error) = func(ctx context.Context) (App, error) {
	return app.NewApp(ctx)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newsmapper",
		Short: "An RSS news pipeline that geolocates articles onto a world map.",
		Long: `newsmapper ingests one RSS source per run, geolocates every new
article with a local LLM, matches an illustrative icon through embedding
similarity, and publishes the enriched batch to a static news site through
its git repository.`,

		// Runs AFTER config is loaded but BEFORE the subcommand's RunE;
		// the place to build and inject the application.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cobra.OnInitialize(config.InitConfig)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newReviewCmd())
	cmd.AddCommand(newIndexCmd())

	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	logging.InitLogger()

	if err := newRootCmd().Execute(); err != nil {
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}
