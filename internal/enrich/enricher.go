package enrich

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/metrics"
	"github.com/globonews/newsmapper/internal/pipeline"
)

// Outcome partitions one run's articles. Published preserves feed order;
// Review is terminal and handled by a separate corrective pass. Log carries
// one human-readable entry per article for the run log.
type Outcome struct {
	Published []pipeline.EnrichedArticle
	Review    []pipeline.Article
	Log       []string
	IconHits  int
}

// Enricher runs the per-article pipeline: geolocate, then extract keywords
// and resolve an icon for the articles that will publish. Processing is
// strictly sequential; one bad article never loses the rest of the batch.
type Enricher struct {
	locator          pipeline.LocationResolver
	geocoder         pipeline.Geocoder
	extractor        pipeline.KeywordExtractor
	resolver         pipeline.IconResolver
	assets           pipeline.AssetCatalog
	defaultIcon      string
	descriptionLimit int
	logger           *zap.Logger
}

// NewEnricher builds an Enricher.
func NewEnricher(
	locator pipeline.LocationResolver,
	geocoder pipeline.Geocoder,
	extractor pipeline.KeywordExtractor,
	resolver pipeline.IconResolver,
	assets pipeline.AssetCatalog,
	defaultIcon string,
	descriptionLimit int,
	logger *zap.Logger,
) *Enricher {
	if descriptionLimit <= 0 {
		descriptionLimit = 150
	}
	return &Enricher{
		locator:          locator,
		geocoder:         geocoder,
		extractor:        extractor,
		resolver:         resolver,
		assets:           assets,
		defaultIcon:      defaultIcon,
		descriptionLimit: descriptionLimit,
		logger:           logger,
	}
}

// Enrich processes the articles in feed order. An article publishes only
// when both coordinates resolve; geolocation failure routes it to the review
// bucket. Keyword and icon failures never block publication; they only decide
// which icon URL is attached and are logged as diagnostics.
func (e *Enricher) Enrich(ctx context.Context, articles []pipeline.Article) Outcome {
	out := Outcome{}

	for n, article := range articles {
		e.logger.Info("enriching article",
			zap.Int("index", n+1),
			zap.Int("total", len(articles)),
			zap.String("title", article.Title),
		)

		location, geoErr := e.locator.ResolveLocation(ctx, article)
		if geoErr != nil {
			e.logger.Warn("geolocation failed", zap.String("title", article.Title), zap.Error(geoErr))
		}

		lat, lon, ok := e.geocoder.Resolve(ctx, location)
		if !ok {
			metrics.GeolocationResult("failed")
			out.Review = append(out.Review, article)
			out.Log = append(out.Log, fmt.Sprintf("ARTICLE: %s\n  - Location: %s\n  - Outcome: review\n---", article.Title, location))
			continue
		}
		metrics.GeolocationResult("resolved")

		icon := e.resolveIconFor(ctx, article)
		if icon != e.defaultIcon {
			out.IconHits++
		} else {
			metrics.IconFallback()
		}

		out.Published = append(out.Published, pipeline.EnrichedArticle{
			Lat:         lat,
			Lon:         lon,
			Title:       article.Title,
			Link:        article.Link,
			Source:      article.Source,
			Timestamp:   article.Timestamp,
			IconURL:     e.assets.IconURL(icon),
			Description: pipeline.Truncate(article.Content, e.descriptionLimit),
		})
		out.Log = append(out.Log, fmt.Sprintf("ARTICLE: %s\n  - Location: %s\n  - Icon: %s\n---", article.Title, location, icon))
	}
	return out
}

// resolveIconFor runs the keyword/icon stage for one publishing article.
// Every failure degrades to the default icon.
func (e *Enricher) resolveIconFor(ctx context.Context, article pipeline.Article) string {
	keywords, err := e.extractor.Keywords(ctx, article)
	if err != nil {
		e.logger.Warn("keyword extraction failed", zap.String("title", article.Title), zap.Error(err))
	}

	icon, err := e.resolver.ResolveIcon(ctx, keywords)
	if err != nil {
		e.logger.Debug("icon resolution degraded",
			zap.String("title", article.Title),
			zap.Strings("keywords", keywords),
			zap.Error(err),
		)
	}
	return icon
}
