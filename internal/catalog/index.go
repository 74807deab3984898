package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// IndexEntry is the persisted record for one icon: its embedding and the
// document (the icon name) that was embedded.
type IndexEntry struct {
	Embedding []float64 `json:"embedding"`
	Document  string    `json:"document"`
}

// Index is the icon embedding store. It is loaded wholesale at startup,
// mutated in memory, and written back as a whole, like every other persisted
// state file in the pipeline.
type Index struct {
	path    string
	entries map[string]IndexEntry
}

// LoadIndex reads the index file. A missing file yields an empty index so the
// index build command can bootstrap it.
func LoadIndex(path string) (*Index, error) {
	idx := &Index{path: path, entries: make(map[string]IndexEntry)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("read index %q: %w", path, err)
	}
	if len(data) == 0 {
		return idx, nil
	}
	if err := json.Unmarshal(data, &idx.entries); err != nil {
		return nil, fmt.Errorf("parse index %q: %w", path, err)
	}
	return idx, nil
}

// Save writes the index back to its file as a whole.
func (i *Index) Save() error {
	data, err := json.MarshalIndent(i.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := os.WriteFile(i.path, data, 0o600); err != nil {
		return fmt.Errorf("write index %q: %w", i.path, err)
	}
	return nil
}

// Add stores or replaces one entry.
func (i *Index) Add(id, document string, embedding []float64) {
	i.entries[id] = IndexEntry{Embedding: embedding, Document: document}
}

// Has reports whether the id is already indexed.
func (i *Index) Has(id string) bool {
	_, ok := i.entries[id]
	return ok
}

// IDs returns every indexed id, sorted.
func (i *Index) IDs() []string {
	ids := make([]string, 0, len(i.entries))
	for id := range i.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of indexed icons.
func (i *Index) Len() int {
	return len(i.entries)
}

// Nearest returns the id whose embedding is most similar to the query by
// cosine similarity. Ties break on the lexicographically smaller id so
// results are deterministic. The second result is false for an empty index
// or an unusable query vector.
func (i *Index) Nearest(query []float64) (string, bool) {
	best := ""
	bestScore := math.Inf(-1)
	for _, id := range i.IDs() {
		score, ok := cosineSimilarity(query, i.entries[id].Embedding)
		if !ok {
			continue
		}
		if score > bestScore {
			best = id
			bestScore = score
		}
	}
	return best, best != ""
}

// cosineSimilarity returns the cosine of the angle between a and b, or false
// when the vectors are incomparable (length mismatch or zero norm).
func cosineSimilarity(a, b []float64) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, normA, normB float64
	for n := range a {
		dot += a[n] * b[n]
		normA += a[n] * a[n]
		normB += b[n] * b[n]
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}
