package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// candidate pulls one trimmed text value out of a document, or "".
type candidate func(doc *goquery.Document) string

var companyCandidates = []candidate{
	firstText(`[data-testid="company-name"]`),
	firstText(`[class*="company"]`),
	firstMatching(`[aria-label]`, attrContainsFold("aria-label", "company")),
}

var locationCandidates = []candidate{
	firstText(`[data-testid*="location"]`),
	firstText(`[class*="location"]`),
}

var clearTextPattern = regexp.MustCompile(`(?i)clear text`)

func firstText(selector string) candidate {
	return func(doc *goquery.Document) string {
		return trim(doc.Find(selector).First().Text())
	}
}

func firstMatching(selector string, keep func(*goquery.Selection) bool) candidate {
	return func(doc *goquery.Document) string {
		matched := doc.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return keep(s)
		})
		return trim(matched.First().Text())
	}
}

func attrContainsFold(attr, needle string) func(*goquery.Selection) bool {
	needle = strings.ToLower(needle)
	return func(s *goquery.Selection) bool {
		val, ok := s.Attr(attr)
		return ok && strings.Contains(strings.ToLower(val), needle)
	}
}

// firstAccepted walks candidates in order and returns the first value
// accept approves.
func firstAccepted(doc *goquery.Document, candidates []candidate, accept func(string) bool) string {
	for _, c := range candidates {
		if text := c(doc); accept(text) {
			return text
		}
	}
	return ""
}

func withinFieldLength(text string) bool {
	n := textLen(text)
	return n > 1 && n < 100
}

func acceptCompany(text string) bool {
	return withinFieldLength(text) && !strings.Contains(strings.ToLower(text), "you may also apply")
}

func acceptLocation(text string) bool {
	return withinFieldLength(text) && !clearTextPattern.MatchString(text)
}
