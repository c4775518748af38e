package scraper

import (
	"strings"

	"golang.org/x/net/html"
)

type SimpleNormalizer struct{}

func NewSimpleNormalizer() *SimpleNormalizer {
	return &SimpleNormalizer{}
}

// Normalize flattens an HTML fragment into single-spaced text.
func (n *SimpleNormalizer) Normalize(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	text := ExtractText(doc)
	normalized := strings.Join(strings.Fields(text), " ")
	return normalized, nil
}

// ExtractText concatenates the text nodes under n, skipping script and style.
func ExtractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return ""
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(ExtractText(c))
		if c.Type == html.ElementNode && isBlock(c.Data) {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "section", "article":
		return true
	}
	return false
}
