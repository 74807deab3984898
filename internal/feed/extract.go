package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractText strips HTML markup from a feed entry body and collapses
// whitespace, returning plain text. Unparseable input falls back to the raw
// string trimmed.
func ExtractText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
