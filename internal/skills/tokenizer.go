package skills

import (
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tokenizer splits text into word units. Implementations must be safe for
// concurrent use; one instance is built per process and shared.
type Tokenizer interface {
	Tokenize(text string) []string
}

// ProseTokenizer segments text with prose's rule based tokenizer, which
// splits punctuation and contractions off words. Quotes are blanked first
// and tokens joined by / , ; : or - are split afterwards, since prose keeps
// "python/sql" whole and loses words wrapped in single quotes.
type ProseTokenizer struct{}

// NewProseTokenizer returns a tokenizer backed by prose.
func NewProseTokenizer() *ProseTokenizer {
	return &ProseTokenizer{}
}

// Tokenize implements Tokenizer.
func (ProseTokenizer) Tokenize(text string) []string {
	text = blankQuotes(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil
	}
	toks := doc.Tokens()
	out := make([]string, 0, len(toks))
	for _, tok := range toks {
		out = appendSplit(out, tok.Text)
	}
	return out
}

func isQuote(r rune) bool {
	switch r {
	case '\'', '"', '`', '\u2018', '\u2019', '\u201c', '\u201d':
		return true
	}
	return false
}

func isInfix(r rune) bool {
	switch r {
	case '/', ',', ';', ':', '-':
		return true
	}
	return false
}

// blankQuotes replaces quote characters with spaces. An apostrophe between
// two letters (don't, o'reilly) is kept.
func blankQuotes(text string) string {
	runes := []rune(text)
	changed := false
	for i, r := range runes {
		if !isQuote(r) {
			continue
		}
		if (r == '\'' || r == '\u2019') && i > 0 && i < len(runes)-1 &&
			unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1]) {
			continue
		}
		runes[i] = ' '
		changed = true
	}
	if !changed {
		return text
	}
	return string(runes)
}

// appendSplit appends tok and, when tok joins words with infix punctuation,
// each of those words. The compound stays so terms like ci/cd and
// scikit-learn still match. Bare punctuation is kept as a phrase boundary.
func appendSplit(out []string, tok string) []string {
	if !strings.ContainsFunc(tok, isWordRune) {
		if tok != "" {
			out = append(out, tok)
		}
		return out
	}
	tok = strings.Trim(strings.TrimRight(tok, "."), "/,;:-")
	parts := strings.FieldsFunc(tok, isInfix)
	if len(parts) == 1 {
		return append(out, tok)
	}
	out = append(out, tok)
	for _, p := range parts {
		if p = strings.TrimRight(p, "."); strings.ContainsFunc(p, isWordRune) {
			out = append(out, p)
		}
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// FieldsTokenizer splits on every rune that is not a letter, digit or one of
// "+#." so names like c++, c# and node.js survive. Trailing dots are dropped.
type FieldsTokenizer struct{}

// Tokenize implements Tokenizer.
func (FieldsTokenizer) Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimRight(f, ".")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// NewTokenizer returns the tokenizer registered under name ("prose" or
// "fields"). Unknown names fall back to prose.
func NewTokenizer(name string) Tokenizer {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fields":
		return FieldsTokenizer{}
	default:
		return NewProseTokenizer()
	}
}

// lower uses a fresh Caser per call; a Caser keeps state and must not be shared.
func lower(s string) string {
	return cases.Lower(language.English).String(s)
}
