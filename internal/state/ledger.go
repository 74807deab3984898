package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
)

// Ledger is the persisted set of article links that have already been
// processed. It grows monotonically and never shrinks; articles routed to
// review are recorded too so they are not re-fetched (review is handled by a
// separate corrective pass).
type Ledger struct {
	path   string
	links  map[string]struct{}
	logger *zap.Logger
}

// NewLedger loads the ledger, starting empty when the file is missing. A
// corrupted file degrades to an empty set with a warning: re-enriching a few
// articles is acceptable, losing the run is not.
func NewLedger(path string, logger *zap.Logger) (*Ledger, error) {
	l := &Ledger{path: path, links: make(map[string]struct{}), logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("read ledger %q: %w", path, err)
	}

	var links []string
	if err := json.Unmarshal(data, &links); err != nil {
		logger.Warn("ledger corrupted, starting empty", zap.String("path", path), zap.Error(err))
		return l, nil
	}
	for _, link := range links {
		l.links[link] = struct{}{}
	}
	return l, nil
}

// IsNew reports whether the link has never been recorded. Articles without a
// link are always "new": they can never be deduplicated and are reprocessed
// on every fetch of their source.
func (l *Ledger) IsNew(link string) bool {
	if link == "" {
		return true
	}
	_, seen := l.links[link]
	return !seen
}

// RecordAll adds the run's processed links (published and review-bound
// alike) and persists the whole set. Empty links are skipped. Called once
// per run, after publication succeeded.
func (l *Ledger) RecordAll(links []string) error {
	for _, link := range links {
		if link == "" {
			continue
		}
		l.links[link] = struct{}{}
	}
	return l.save()
}

// Len returns the number of recorded links.
func (l *Ledger) Len() int {
	return len(l.links)
}

func (l *Ledger) save() error {
	links := make([]string, 0, len(l.links))
	for link := range l.links {
		links = append(links, link)
	}
	sort.Strings(links)

	data, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o600); err != nil {
		return fmt.Errorf("write ledger %q: %w", l.path, err)
	}
	return nil
}
