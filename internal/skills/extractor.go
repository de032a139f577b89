package skills

import "strings"

// MatchMode selects how token streams are compared with the vocabulary.
type MatchMode int

const (
	// MatchTokens compares single tokens only. Multi-word vocabulary entries
	// such as "machine learning" never match in this mode.
	MatchTokens MatchMode = iota
	// MatchPhrases also compares sliding windows of consecutive tokens, up to
	// the longest vocabulary entry, joined by a single space.
	MatchPhrases
)

func (m MatchMode) String() string {
	if m == MatchPhrases {
		return "phrases"
	}
	return "tokens"
}

// Extractor finds vocabulary terms in text.
type Extractor struct {
	vocab     *Vocabulary
	tokenizer Tokenizer
	mode      MatchMode
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithPhraseMatching enables MatchPhrases.
func WithPhraseMatching() ExtractorOption {
	return func(e *Extractor) { e.mode = MatchPhrases }
}

// WithMatchMode sets the match mode explicitly.
func WithMatchMode(m MatchMode) ExtractorOption {
	return func(e *Extractor) { e.mode = m }
}

// NewExtractor builds an Extractor. A nil tokenizer defaults to prose.
func NewExtractor(vocab *Vocabulary, tok Tokenizer, opts ...ExtractorOption) *Extractor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	if tok == nil {
		tok = NewProseTokenizer()
	}
	e := &Extractor{vocab: vocab, tokenizer: tok, mode: MatchTokens}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Vocabulary returns the vocabulary the extractor matches against.
func (e *Extractor) Vocabulary() *Vocabulary { return e.vocab }

// Mode returns the configured match mode.
func (e *Extractor) Mode() MatchMode { return e.mode }

// Extract returns the vocabulary terms found in text.
func (e *Extractor) Extract(text string) Set {
	found := make(Set)
	if strings.TrimSpace(text) == "" {
		return found
	}

	tokens := e.tokenizer.Tokenize(lower(text))
	for i, tok := range tokens {
		if e.vocab.Contains(tok) {
			found[tok] = struct{}{}
		}
		if e.mode != MatchPhrases {
			continue
		}
		for n := 2; n <= e.vocab.MaxWords() && i+n <= len(tokens); n++ {
			phrase := strings.Join(tokens[i:i+n], " ")
			if e.vocab.Contains(phrase) {
				found[phrase] = struct{}{}
			}
		}
	}
	return found
}
