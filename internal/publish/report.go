package publish

import (
	"fmt"
	"os"
	"time"
)

// Stats carries the counters for one pipeline run.
type Stats struct {
	RunID        string
	Source       string
	Fetched      int
	New          int
	Geolocated   int
	GeoFailed    int
	IconMatched  int
	IconFallback int
	Start        time.Time
	End          time.Time
}

const reportTemplate = `# Run Report
- Run ID: %s
- Started: %s
- Finished: %s
- Duration: %s
---
## Articles
- **Source processed:** %s
- Fetched from feed: %d
- New (not previously processed): %d
- Geolocated successfully: %d
- Geolocation failed: %d
---
## Icons
- Matched from the catalog: %d
- Fell back to the default: %d
`

// WriteReport renders the run statistics to path.
func WriteReport(stats Stats, path string) error {
	content := fmt.Sprintf(reportTemplate,
		stats.RunID,
		stats.Start.Format("2006-01-02 15:04:05"),
		stats.End.Format("2006-01-02 15:04:05"),
		stats.End.Sub(stats.Start).Round(time.Millisecond),
		stats.Source,
		stats.Fetched,
		stats.New,
		stats.Geolocated,
		stats.GeoFailed,
		stats.IconMatched,
		stats.IconFallback,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing run report: %w", err)
	}
	return nil
}
