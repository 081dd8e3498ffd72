package textutil

import porterstemmer "github.com/blevesearch/go-porterstemmer"

// Stem applies the Porter stemming algorithm (1980) to a single token.
// Stemming is idempotent on its own output for the tokens this system deals
// with. Depends on an existing Porter implementation rather than
// re-deriving the suffix-stripping rules by hand.
func Stem(token string) string {
	return porterstemmer.StemString(token)
}

// StemAll lifts Stem element-wise over an ordered token sequence.
func StemAll(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	stemmed := make([]string, len(tokens))
	for i, tok := range tokens {
		stemmed[i] = Stem(tok)
	}
	return stemmed
}

// TokenizeAndStem is the A+B composition used identically at build time
// (document processing) and query time (query normalization), guaranteeing
// both sides apply the same transformation.
func TokenizeAndStem(text string) []string {
	return StemAll(Tokenize(text))
}
