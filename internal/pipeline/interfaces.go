package pipeline

import (
	"context"
	"time"
)

// Generator invokes the generative LLM with a single prompt and returns the
// raw response text. When jsonFormat is set the service is instructed to
// constrain output to parseable JSON; callers still parse defensively.
type Generator interface {
	Generate(ctx context.Context, prompt string, jsonFormat bool) (string, error)
}

// Embedder converts text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Geocoder resolves a free-text location name to coordinates. A false ok
// covers every failure mode: sentinel or empty input (no lookup is
// performed), transport errors, and empty result sets. Geocoding misses are
// terminal; they are never retried.
type Geocoder interface {
	Resolve(ctx context.Context, location string) (lat, lon float64, ok bool)
}

// LocationResolver finds the geographic fulcrum of an article. A failed
// resolution returns LocationUnknown together with a descriptive error.
type LocationResolver interface {
	ResolveLocation(ctx context.Context, article Article) (string, error)
}

// KeywordExtractor asks the LLM for the article's central visual theme.
// Parse failures yield an empty slice plus an error; an empty slice is a
// valid, degraded input to icon resolution.
type KeywordExtractor interface {
	Keywords(ctx context.Context, article Article) ([]string, error)
}

// IconResolver maps keywords to a catalog icon id. It never fails hard: any
// problem degrades to the default icon with an explanatory error.
type IconResolver interface {
	ResolveIcon(ctx context.Context, keywords []string) (string, error)
}

// AssetCatalog resolves an icon id to its canonical asset URL.
type AssetCatalog interface {
	IconURL(iconID string) string
}

// RemoteSync commits and pushes the publication working tree as a single
// all-or-nothing change. It reports false without error when the tree is
// clean, which keeps re-runs idempotent.
type RemoteSync interface {
	Sync(ctx context.Context, message string) (bool, error)
}

// Clock returns the current time (swappable for tests).
type Clock interface {
	Now() time.Time
}
