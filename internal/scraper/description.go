package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// descriptionSelectors are tried in priority order.
var descriptionSelectors = []string{
	`[data-testid="job-description"]`,
	".job-description",
	".description",
	"section.job-content",
	"article",
	"main",
}

const minDescriptionLen = 50

func extractDescription(doc *goquery.Document, sourceURL string) string {
	for _, selector := range descriptionSelectors {
		block := doc.Find(selector).First()
		if textLen(trim(block.Text())) <= minDescriptionLen {
			continue
		}

		var lines []string
		block.Contents().Each(func(_ int, child *goquery.Selection) {
			if line := trim(child.Text()); line != "" {
				lines = append(lines, line)
			}
		})
		if description := strings.ReplaceAll(strings.Join(lines, "\n\n"), "\u00a0", " "); description != "" {
			return description
		}
		break
	}

	// LinkedIn's meta description is site boilerplate, not the posting.
	if strings.Contains(sourceURL, "linkedin.com") {
		return ""
	}
	content, _ := doc.Find(`meta[name="description"]`).Attr("content")
	return content
}
