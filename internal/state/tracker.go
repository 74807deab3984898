// Package state holds the pipeline's persisted run state: the source
// rotation tracker and the published-links ledger. Both follow the same
// contract: load the whole file at run start, mutate in memory, write the
// whole file back. There is exactly one writer.
package state

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"go.uber.org/zap"
)

// CycleState is the persisted rotation cycle: the sources not yet consumed
// this cycle (in randomized order) and the ones already consumed.
type CycleState struct {
	Unprocessed []string `json:"unprocessed"`
	Processed   []string `json:"processed"`
}

// Tracker schedules one source per run, visiting every configured source
// exactly once per cycle before reshuffling.
type Tracker struct {
	path   string
	state  CycleState
	logger *zap.Logger
}

// NewTracker loads the tracker state, starting fresh when the file is
// missing. A corrupted file is replaced by an empty state with a warning;
// the next cycle simply restarts, which is safe because the ledger still
// prevents duplicate publication.
func NewTracker(path string, logger *zap.Logger) (*Tracker, error) {
	t := &Tracker{path: path, logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("read tracker %q: %w", path, err)
	}
	if err := json.Unmarshal(data, &t.state); err != nil {
		logger.Warn("source tracker corrupted, starting a new cycle", zap.String("path", path), zap.Error(err))
		t.state = CycleState{}
	}
	return t, nil
}

// State returns a copy of the current cycle state.
func (t *Tracker) State() CycleState {
	return CycleState{
		Unprocessed: append([]string(nil), t.state.Unprocessed...),
		Processed:   append([]string(nil), t.state.Processed...),
	}
}

// Next selects the source to process this run. When the cycle is exhausted
// it repopulates the unprocessed list with every configured source in random
// order and persists the reset before selecting. Names that vanished from
// the configuration are dropped from the cycle (persisted, with an operator
// warning) and selection moves on. ok is false only when the configured
// source set itself is empty.
func (t *Tracker) Next(sources map[string]string) (name, url string, ok bool, err error) {
	if len(sources) == 0 {
		return "", "", false, nil
	}

	for {
		if len(t.state.Unprocessed) == 0 {
			t.logger.Info("all sources processed, starting a new cycle")
			t.state.Unprocessed = shuffledNames(sources)
			t.state.Processed = nil
			if err := t.save(); err != nil {
				return "", "", false, err
			}
		}

		head := t.state.Unprocessed[0]
		if feedURL, exists := sources[head]; exists {
			return head, feedURL, true, nil
		}

		// Configuration drift: the recorded source no longer exists.
		t.logger.Warn("source missing from configuration, dropping from cycle", zap.String("source", head))
		t.state.Unprocessed = t.state.Unprocessed[1:]
		if err := t.save(); err != nil {
			return "", "", false, err
		}
	}
}

// MarkProcessed moves a source from unprocessed to processed and persists.
// The caller invokes it only after the source's articles were fully handled,
// never on a fetch hard failure, so failed sources are retried next run.
func (t *Tracker) MarkProcessed(name string) error {
	for n, candidate := range t.state.Unprocessed {
		if candidate == name {
			t.state.Unprocessed = append(t.state.Unprocessed[:n], t.state.Unprocessed[n+1:]...)
			t.state.Processed = append(t.state.Processed, name)
			break
		}
	}
	return t.save()
}

func (t *Tracker) save() error {
	data, err := json.MarshalIndent(t.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tracker: %w", err)
	}
	if err := os.WriteFile(t.path, data, 0o600); err != nil {
		return fmt.Errorf("write tracker %q: %w", t.path, err)
	}
	return nil
}

func shuffledNames(sources map[string]string) []string {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	rand.Shuffle(len(names), func(a, b int) {
		names[a], names[b] = names[b], names[a]
	})
	return names
}
