package scraper

import "github.com/PuerkitoBio/goquery"

const (
	tagSelector = `[class*="tag"], [data-testid*="tag"], .badge`
	maxTagLen   = 40
)

// extractTags returns distinct short tag texts in document order.
func extractTags(doc *goquery.Document) []string {
	tags := []string{}
	seen := make(map[string]struct{})
	doc.Find(tagSelector).Each(func(_ int, s *goquery.Selection) {
		text := trim(s.Text())
		if text == "" || textLen(text) >= maxTagLen {
			return
		}
		if _, ok := seen[text]; ok {
			return
		}
		seen[text] = struct{}{}
		tags = append(tags, text)
	})
	return tags
}
