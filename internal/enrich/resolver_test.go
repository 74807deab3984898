package enrich_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globonews/newsmapper/internal/catalog"
	"github.com/globonews/newsmapper/internal/enrich"
)

// fakeEmbedder returns a fixed vector and counts invocations.
type fakeEmbedder struct {
	vector []float64
	err    error
	calls  int
	lastIn string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.calls++
	f.lastIn = text
	return f.vector, f.err
}

func testIndex(t *testing.T) *catalog.Index {
	t.Helper()
	idx, err := catalog.LoadIndex(filepath.Join(t.TempDir(), "icon_index.json"))
	require.NoError(t, err)
	idx.Add("Bicycle", "Bicycle", []float64{1, 0})
	idx.Add("Newspaper", "Newspaper", []float64{0, 1})
	return idx
}

func TestResolveIcon(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float64{0.95, 0.05}}
	resolver := enrich.NewResolver(embedder, testIndex(t), "Newspaper")

	icon, err := resolver.ResolveIcon(context.Background(), []string{"bicycle", "road", "accident"})
	require.NoError(t, err)
	assert.Equal(t, "Bicycle", icon)
	assert.Equal(t, "bicycle, road, accident", embedder.lastIn)
}

func TestResolveIconEmptyKeywordsShortCircuits(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float64{1, 0}}
	resolver := enrich.NewResolver(embedder, testIndex(t), "Newspaper")

	icon, err := resolver.ResolveIcon(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, "Newspaper", icon)
	assert.Equal(t, 0, embedder.calls, "empty keywords must not reach the embedding service")
}

func TestResolveIconNilIndexShortCircuits(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float64{1, 0}}
	resolver := enrich.NewResolver(embedder, nil, "Newspaper")

	icon, err := resolver.ResolveIcon(context.Background(), []string{"bicycle"})
	require.Error(t, err)
	assert.Equal(t, "Newspaper", icon)
	assert.Equal(t, 0, embedder.calls)
}

func TestResolveIconEmbeddingFailureDegrades(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("embedding service down")}
	resolver := enrich.NewResolver(embedder, testIndex(t), "Newspaper")

	icon, err := resolver.ResolveIcon(context.Background(), []string{"bicycle"})
	require.Error(t, err)
	assert.Equal(t, "Newspaper", icon)
}

func TestResolveIconUnusableVectorDegrades(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float64{0, 0}}
	resolver := enrich.NewResolver(embedder, testIndex(t), "Newspaper")

	icon, err := resolver.ResolveIcon(context.Background(), []string{"bicycle"})
	require.Error(t, err)
	assert.Equal(t, "Newspaper", icon)
}
