package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extract runs every field heuristic over one parsed copy of rawHTML.
// Malformed markup is not an error; it only yields fewer matches.
func Extract(rawHTML, sourceURL string) (posting Posting, err error) {
	defer func() {
		if r := recover(); r != nil {
			posting = emptyPosting()
			err = &ParseError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return emptyPosting(), &ParseError{Err: err}
	}
	return extractDocument(doc, sourceURL), nil
}

func extractDocument(doc *goquery.Document, sourceURL string) Posting {
	description := extractDescription(doc, sourceURL)
	return Posting{
		Title:       trim(doc.Find("title").First().Text()),
		Company:     firstAccepted(doc, companyCandidates, acceptCompany),
		Description: description,
		Location:    firstAccepted(doc, locationCandidates, acceptLocation),
		Salary:      extractSalary(description),
		Tags:        extractTags(doc),
	}
}
