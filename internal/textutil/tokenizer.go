// Package textutil implements the Tokenizer and Stemmer contracts shared by
// document processing at build time and query normalization at search time.
package textutil

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9]+`)

// Tokenize splits text into an ordered sequence of lowercased alphanumeric
// runs. Empty input yields an empty (nil) slice. No stopword filtering is
// performed; order is preserved since it is needed only to make per-document
// counts well-defined.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}
