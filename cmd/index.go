package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newIndexCmd creates the 'index' subcommand, which builds or refreshes the
// icon embedding index from the asset catalog.
func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Builds the icon embedding index from the asset catalog",
		Long: `Embeds every icon name in the asset catalog with the embedding
model and stores the vectors in the icon index used for nearest-neighbor icon
matching. Icons already indexed are skipped, so reruns only pick up catalog
additions.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := appInstance.GetLogger()
			llm := appInstance.GetLLM()
			index := appInstance.GetIndex()

			names := appInstance.GetAssets().Names()
			var added, skipped, failed int
			for _, name := range names {
				if index.Has(name) {
					skipped++
					continue
				}

				embedding, err := llm.Embed(ctx, name)
				if err != nil {
					// One bad icon never stops the rest of the batch.
					logger.Warn("embedding failed, icon skipped", zap.String("icon", name), zap.Error(err))
					failed++
					continue
				}
				index.Add(name, name, embedding)
				added++
			}

			if added > 0 {
				if err := index.Save(); err != nil {
					return fmt.Errorf("save icon index: %w", err)
				}
			}

			logger.Info("icon index up to date",
				zap.Int("catalog", len(names)),
				zap.Int("added", added),
				zap.Int("skipped", skipped),
				zap.Int("failed", failed),
				zap.Int("indexed", index.Len()),
			)
			return nil
		},
	}
}
