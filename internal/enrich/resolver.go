package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/globonews/newsmapper/internal/catalog"
	"github.com/globonews/newsmapper/internal/pipeline"
)

// Resolver maps keywords to the nearest catalog icon by embedding
// similarity. It implements a hard fallback policy: icon resolution must
// never block publication, it may only degrade to the default icon.
type Resolver struct {
	embedder    pipeline.Embedder
	index       *catalog.Index
	defaultIcon string
}

// NewResolver builds a Resolver. A nil index is tolerated and degrades every
// lookup to the default icon.
func NewResolver(embedder pipeline.Embedder, index *catalog.Index, defaultIcon string) *Resolver {
	return &Resolver{embedder: embedder, index: index, defaultIcon: defaultIcon}
}

// ResolveIcon returns the icon id nearest to the joined keyword query. Empty
// keywords or an unavailable index return the default icon immediately, with
// no network call; embedding or lookup failures degrade the same way. The
// returned error is diagnostic only.
func (r *Resolver) ResolveIcon(ctx context.Context, keywords []string) (string, error) {
	if r.index == nil || r.index.Len() == 0 || len(keywords) == 0 {
		return r.defaultIcon, fmt.Errorf("icon index unavailable or no keywords")
	}

	query := strings.Join(keywords, ", ")
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return r.defaultIcon, fmt.Errorf("embed keyword query: %w", err)
	}

	id, ok := r.index.Nearest(embedding)
	if !ok {
		return r.defaultIcon, &pipeline.NotFoundError{Resource: "nearest icon"}
	}
	return id, nil
}
