package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/review"
)

// newReviewCmd creates the 'review' subcommand, the corrective pass over
// articles that failed geolocation during a normal run.
func newReviewCmd() *cobra.Command {
	var (
		reviewFile string
		outputFile string
		logFile    string
	)

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Re-geolocates previously failed articles with a larger model",
		Long: `Reads the review queue written by a pipeline run and retries each
article with a chain-of-thought prompt against the review model. Recovered
articles are appended to the geolocated output with the default icon.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			logger := appInstance.GetLogger()
			assets := appInstance.GetAssets()

			reviewer := review.NewReviewer(
				appInstance.GetLLM(),
				viper.GetString("ollama.review_model"),
				appInstance.GetGeocoder(),
				assets,
				assets.DefaultIcon(),
				viper.GetInt("output.description_limit"),
				logger,
			)

			result, err := reviewer.Run(cmd.Context(), reviewFile, outputFile, logFile)
			if err != nil {
				return fmt.Errorf("review pass: %w", err)
			}

			logger.Info("review pass finished",
				zap.Int("reviewed", result.Reviewed),
				zap.Int("recovered", result.Recovered),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&reviewFile, "file", "review_articles.md", "review queue markdown file")
	cmd.Flags().StringVar(&outputFile, "output", "geolocated_news.json", "geolocated output to append to")
	cmd.Flags().StringVar(&logFile, "log", "review_log.txt", "per-article review log")

	return cmd
}
