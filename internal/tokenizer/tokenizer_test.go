package tokenizer

import (
	"strings"
	"testing"
)

func TestTokenizePlainText(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"simple words", "cat dog", []string{"cat", "dog"}},
		{"single letters kept for a and i", "a i", []string{"a", "i"}},
		{"single letter dropped", "x cat", []string{"cat"}},
		{"mixed case folds to lower", "Cats!", []string{"cat"}},
		{"stemming reduces plurals", "running runs runner", []string{"run", "run", "runner"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TokenizePlainText(tc.text)
			if len(got) != len(tc.want) {
				t.Fatalf("TokenizePlainText(%q) = %v, want terms %v", tc.text, got, tc.want)
			}
			for i, w := range tc.want {
				if got[i].Term != w {
					t.Errorf("token %d = %q, want %q", i, got[i].Term, w)
				}
				if got[i].Weight != defaultWeight {
					t.Errorf("token %d weight = %d, want default %d", i, got[i].Weight, defaultWeight)
				}
			}
		})
	}
}

func TestTokenizePlainTextQueryParity(t *testing.T) {
	a := TokenizePlainText("Cats!")
	b := TokenizePlainText("cat")
	if len(a) != 1 || len(b) != 1 || a[0].Term != b[0].Term {
		t.Fatalf("expected %q and %q to stem identically, got %v and %v", "Cats!", "cat", a, b)
	}
}

func TestTokenizeHTMLTagWeights(t *testing.T) {
	html := `<html><body><title>Cats</title><p>cat cat dog</p></body></html>`
	tokens, err := TokenizeHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("TokenizeHTML returned error: %v", err)
	}

	var catWeights, dogWeights []int
	for _, tok := range tokens {
		switch tok.Term {
		case "cat":
			catWeights = append(catWeights, tok.Weight)
		case "dog":
			dogWeights = append(dogWeights, tok.Weight)
		}
	}

	if len(catWeights) != 3 {
		t.Fatalf("expected 3 occurrences of 'cat' (1 title + 2 body), got %d: %v", len(catWeights), catWeights)
	}
	if catWeights[0] != 10 {
		t.Errorf("title occurrence of 'cat' weight = %d, want 10", catWeights[0])
	}
	for _, w := range catWeights[1:] {
		if w != defaultWeight {
			t.Errorf("body occurrence of 'cat' weight = %d, want %d", w, defaultWeight)
		}
	}
	if len(dogWeights) != 1 || dogWeights[0] != defaultWeight {
		t.Errorf("dog weights = %v, want single default-weight occurrence", dogWeights)
	}
}

func TestTokenizeHTMLHeadingWeights(t *testing.T) {
	html := `<h1>Rust</h1><h2>Rust</h2><b>rust</b>`
	tokens, err := TokenizeHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("TokenizeHTML returned error: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %v", len(tokens), tokens)
	}
	want := []int{7, 6, 2}
	for i, w := range want {
		if tokens[i].Weight != w {
			t.Errorf("token %d (%q) weight = %d, want %d", i, tokens[i].Term, tokens[i].Weight, w)
		}
	}
}

func TestIsValidToken(t *testing.T) {
	cases := map[string]bool{
		"":     false,
		"a":    true,
		"i":    true,
		"x":    false,
		"cat":  true,
		"123":  true,
		"c@t":  false,
		"café": false,
	}
	for token, want := range cases {
		if got := isValidToken(token); got != want {
			t.Errorf("isValidToken(%q) = %v, want %v", token, got, want)
		}
	}
}
