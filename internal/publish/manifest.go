package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// rebuildManifest regenerates the manifest from scratch by rescanning the
// data directory, so the manifest always reflects the files that actually
// exist. Entries are slash-separated paths relative to the manifest's own
// directory (the web root of the published site), newest batch first, capped
// at maxEntries.
func (p *Publisher) rebuildManifest() (int, error) {
	dataDir := filepath.Join(p.repoPath, filepath.FromSlash(p.dataDir))
	manifestPath := filepath.Join(p.repoPath, filepath.FromSlash(p.manifestFile))

	relPrefix, err := filepath.Rel(filepath.Dir(manifestPath), dataDir)
	if err != nil {
		return 0, fmt.Errorf("computing manifest-relative data path: %w", err)
	}
	relPrefix = filepath.ToSlash(relPrefix)

	dirs, err := os.ReadDir(dataDir)
	if errors.Is(err, fs.ErrNotExist) {
		p.logger.Warn("data directory missing, manifest not rebuilt", zap.String("dir", dataDir))
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("scanning data directory: %w", err)
	}

	var entries []string
	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(dataDir, dir.Name()))
		if err != nil {
			return 0, fmt.Errorf("scanning batch directory %q: %w", dir.Name(), err)
		}
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
				continue
			}
			entries = append(entries, path.Join(relPrefix, dir.Name(), file.Name()))
		}
	}

	// Batch directory names are timestamps, so name order is time order.
	sort.Slice(entries, func(i, j int) bool {
		return path.Base(path.Dir(entries[i])) > path.Base(path.Dir(entries[j]))
	})
	if p.maxEntries > 0 && len(entries) > p.maxEntries {
		entries = entries[:p.maxEntries]
	}
	if entries == nil {
		entries = []string{}
	}

	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, payload, 0o644); err != nil {
		return 0, fmt.Errorf("writing manifest: %w", err)
	}

	p.logger.Info("manifest rebuilt", zap.Int("entries", len(entries)))
	return len(entries), nil
}
