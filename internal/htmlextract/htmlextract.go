// Package htmlextract implements the HTML-to-text extraction collaborator
// whose interface spec.md treats as external (out of scope), but which
// still needs a working implementation for the system to run end to end.
// It is adapted from original_source's BeautifulSoup-based html_parser.py:
// scripts/styles are dropped, and the text of <title>, <h1>/<h2>/<h3>, <b>
// and <strong> is collected into ImportantText instead of BodyText — unlike
// html_parser.py's soup.get_text(), which includes those tags' text in its
// normal_text too. spec.md §8 Scenario 2 pins the non-duplicated split
// exactly (body="alpha beta", important="alpha", combined tf=2), so the
// two streams partition the document's text rather than overlapping.
package htmlextract

import (
	"strings"

	"golang.org/x/net/html"
)

var importantTags = map[string]bool{
	"title":  true,
	"h1":     true,
	"h2":     true,
	"h3":     true,
	"b":      true,
	"strong": true,
}

var droppedTags = map[string]bool{
	"script": true,
	"style":  true,
}

// Extracted holds the two independent text streams the Document Processor
// consumes: BodyText (visible text outside the important tags) and
// ImportantText (text found inside title/heading/bold tags).
type Extracted struct {
	BodyText      string
	ImportantText string
}

// Extract parses htmlBytes and returns the body and important text streams
// per the collaborator contract in SPEC_FULL.md §4.C / §6.
func Extract(htmlBytes []byte) (Extracted, error) {
	doc, err := html.Parse(strings.NewReader(string(htmlBytes)))
	if err != nil {
		return Extracted{}, err
	}

	var body, important strings.Builder
	walk(doc, &body, &important, false)

	return Extracted{
		BodyText:      body.String(),
		ImportantText: strings.TrimSpace(important.String()),
	}, nil
}

// walk partitions text nodes between body and important: a text node inside
// an important tag (or an ancestor already marked important) goes to
// important only; every other text node goes to body only.
func walk(n *html.Node, body, important *strings.Builder, inImportant bool) {
	if n.Type == html.ElementNode && droppedTags[n.Data] {
		return
	}

	nodeImportant := inImportant
	if n.Type == html.ElementNode && importantTags[n.Data] {
		nodeImportant = true
	}

	if n.Type == html.TextNode {
		text := n.Data
		if inImportant {
			important.WriteString(text)
			important.WriteString(" ")
		} else {
			body.WriteString(text)
			body.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, body, important, nodeImportant)
	}
}
