// Package tokenizer extracts weighted stemmed tokens from HTML documents
// and plain-text queries. It walks the document tree maintaining a stack of
// enclosing tag names, splits each text run on non-alphanumeric boundaries,
// lowercases, discards single letters other than "a"/"i", and reduces each
// surviving word to its Porter stem.
package tokenizer

import (
	"io"
	"strings"
	"unicode"

	"github.com/reiver/go-porterstemmer"
	"golang.org/x/net/html"
)

// tagWeight is the ENUMERATED tag->importance mapping: the innermost
// recognized tag enclosing a text run determines the weight of every token
// in that run. Untagged or unrecognized text defaults to defaultWeight.
var tagWeight = map[string]int{
	"title":  10,
	"h1":     7,
	"h2":     6,
	"h3":     5,
	"h4":     4,
	"h5":     3,
	"h6":     2,
	"b":      2,
	"strong": 2,
}

const defaultWeight = 1

// Weighted is a single token occurrence and the importance of the tag it
// appeared under.
type Weighted struct {
	Term   string
	Weight int
}

// TokenizeHTML parses an HTML document and yields (stem, weight) pairs in
// document order. The weight of each token is the innermost recognized tag
// on the ancestor stack at the point its enclosing text node appears.
func TokenizeHTML(r io.Reader) ([]Weighted, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	var out []Weighted
	var walk func(n *html.Node, weight int)
	walk = func(n *html.Node, weight int) {
		switch n.Type {
		case html.TextNode:
			out = append(out, tokenizeRun(n.Data, weight)...)
		case html.ElementNode:
			if w, ok := tagWeight[strings.ToLower(n.Data)]; ok {
				weight = w
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, weight)
		}
	}
	walk(root, defaultWeight)
	return out, nil
}

// TokenizePlainText tokenizes a raw string as if it were a single text node
// under an unrecognized tag (the default weight). Used for query strings.
func TokenizePlainText(text string) []Weighted {
	return tokenizeRun(text, defaultWeight)
}

func tokenizeRun(text string, weight int) []Weighted {
	if text == "" {
		return nil
	}
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]Weighted, 0, len(words))
	for _, word := range words {
		if !isValidToken(word) {
			continue
		}
		stem := stemWord(word)
		if stem == "" {
			continue
		}
		out = append(out, Weighted{Term: stem, Weight: weight})
	}
	return out
}

// isValidToken reports whether every rune is ASCII a-z/0-9 and the token is
// not a single letter other than "a" or "i".
func isValidToken(token string) bool {
	for _, r := range token {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	if len(token) <= 1 && token != "a" && token != "i" {
		return false
	}
	return true
}

// stemWord reduces a validated lowercase token to its Porter stem, falling
// back to the original word if the stemmer panics on unexpected input.
func stemWord(word string) (stem string) {
	defer func() {
		if recover() != nil {
			stem = word
		}
	}()
	return porterstemmer.StemString(word)
}
