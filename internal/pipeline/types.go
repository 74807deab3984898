package pipeline

import "unicode/utf8"

// TimestampUnavailable is the sentinel used when a feed entry carries no
// usable publish time.
const TimestampUnavailable = "unavailable"

// LocationUnknown is the sentinel returned when geolocation fails. It is a
// normal negative outcome, not a gateway error.
const LocationUnknown = "N/A"

// Article is a single feed entry as produced by the feed reader. It lives for
// one run only; Link is the deduplication key and may be empty, in which case
// the article never enters the ledger and will be reprocessed on the next
// fetch of its source.
type Article struct {
	Source    string `json:"source"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// EnrichedArticle is an Article that passed geolocation. IconURL is always
// populated, falling back to the default icon asset. The JSON field names are
// the public feed contract.
type EnrichedArticle struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	Source      string  `json:"source"`
	Timestamp   string  `json:"timestamp"`
	IconURL     string  `json:"icon_url"`
	Description string  `json:"description"`
}

// Truncate shortens s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
