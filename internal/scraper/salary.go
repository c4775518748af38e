package scraper

import (
	"regexp"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ws also covers Unicode space separators such as the narrow no-break space
// used in European number formatting.
const ws = `[\s\p{Zs}]`

var (
	salaryLabelPattern = regexp.MustCompile(`(?i)(Salary)[:\s\p{Zs}]*`)
	salaryStopPattern  = regexp.MustCompile(`(?i)We offer|Benefits|Perks`)
	euroRangePattern   = regexp.MustCompile(`[\d.,]+` + ws + `*€` + ws + `*(?:–|-|to)?` + ws + `*[\d.,]+` + ws + `*€`)
)

// extractSalary prefers a "Salary:" labelled span over a Euro range. A label
// match wins even when it trims down to nothing.
func extractSalary(description string) string {
	if description == "" {
		return ""
	}
	if salary, ok := salaryByLabel(description); ok {
		return salary
	}
	return salaryByEuroRange(description)
}

// The text after a label must span 5 to 200 UTF-16 units, counted like
// textLen.
const (
	minLabelSpan = 5
	maxLabelSpan = 200
)

func salaryByLabel(description string) (string, bool) {
	var span string
	found := false
	for _, loc := range salaryLabelPattern.FindAllStringSubmatchIndex(description, -1) {
		if span, found = labelSpan(description, loc[3], loc[1]); found {
			break
		}
	}
	if !found {
		return "", false
	}
	raw := trim(span)
	if i := strings.IndexAny(raw, "\n\r."); i >= 0 {
		raw = raw[:i]
	}
	if loc := salaryStopPattern.FindStringIndex(raw); loc != nil {
		raw = raw[:loc[0]]
	}
	return trim(raw), true
}

func salaryByEuroRange(description string) string {
	return trim(euroRangePattern.FindString(description))
}

// labelSpan takes up to maxLabelSpan units after the separator run
// s[labelEnd:sepEnd]. When fewer than minLabelSpan units follow, separator
// characters are handed back to the span one at a time.
func labelSpan(s string, labelEnd, sepEnd int) (string, bool) {
	for start := sepEnd; start >= labelEnd; {
		if span, n := takeUnits(s[start:], maxLabelSpan); n >= minLabelSpan {
			return span, true
		}
		if start == labelEnd {
			break
		}
		_, size := utf8.DecodeLastRuneInString(s[labelEnd:start])
		start -= size
	}
	return "", false
}

// takeUnits returns the longest prefix of s spanning at most limit UTF-16 units.
func takeUnits(s string, limit int) (string, int) {
	n := 0
	for i, r := range s {
		l := utf16.RuneLen(r)
		if l < 0 {
			l = 1
		}
		if n+l > limit {
			return s[:i], n
		}
		n += l
	}
	return s, n
}
