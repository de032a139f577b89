// Package skills holds the skill vocabulary and the extractor that finds
// vocabulary terms in free text.
package skills

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrVocabularyLoadFailed is returned when a vocabulary source cannot be read or parsed.
var ErrVocabularyLoadFailed = errors.New("vocabulary load failed")

// DefaultTerms is the built-in vocabulary used when no source is configured
// or the configured one is unusable.
var DefaultTerms = []string{"python", "java", "sql", "flask", "machine learning", "aws"}

// VocabularySource tells LoadVocabulary where the skill list lives.
// An empty Path selects the built-in default.
type VocabularySource struct {
	Path string
}

// Builtin reports whether the source resolves to the built-in default.
func (s VocabularySource) Builtin() bool {
	return strings.TrimSpace(s.Path) == ""
}

// Vocabulary is an immutable set of lowercase skill terms.
type Vocabulary struct {
	terms map[string]struct{}
	// longest entry measured in space separated words
	maxWords int
}

// NewVocabulary normalizes terms (trim, lowercase, drop empty, dedupe).
func NewVocabulary(terms []string) *Vocabulary {
	v := &Vocabulary{terms: make(map[string]struct{}, len(terms))}
	for _, t := range terms {
		t = normalizeTerm(t)
		if t == "" {
			continue
		}
		v.terms[t] = struct{}{}
		if n := len(strings.Fields(t)); n > v.maxWords {
			v.maxWords = n
		}
	}
	return v
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(DefaultTerms)
}

// Contains reports whether term is a member of the vocabulary.
func (v *Vocabulary) Contains(term string) bool {
	_, ok := v.terms[term]
	return ok
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int { return len(v.terms) }

// MaxWords returns the word count of the longest term.
func (v *Vocabulary) MaxWords() int { return v.maxWords }

// Terms returns the vocabulary sorted alphabetically.
func (v *Vocabulary) Terms() []string {
	out := make([]string, 0, len(v.terms))
	for t := range v.terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ParseVocabulary reads a JSON array of strings.
func ParseVocabulary(r io.Reader) (*Vocabulary, error) {
	var terms []string
	if err := json.NewDecoder(r).Decode(&terms); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVocabularyLoadFailed, err)
	}
	v := NewVocabulary(terms)
	if v.Len() == 0 {
		return nil, fmt.Errorf("%w: no usable terms", ErrVocabularyLoadFailed)
	}
	return v, nil
}

// LoadVocabulary resolves src once at startup. Any failure is logged as
// VocabularyLoadFailed and the default vocabulary is returned instead.
func LoadVocabulary(src VocabularySource, logger *zap.Logger) *Vocabulary {
	if logger == nil {
		logger = zap.NewNop()
	}
	if src.Builtin() {
		logger.Info("using built-in skill vocabulary", zap.Int("terms", len(DefaultTerms)))
		return DefaultVocabulary()
	}

	v, err := loadFile(src.Path)
	if err != nil {
		logger.Warn("VocabularyLoadFailed, falling back to built-in vocabulary",
			zap.String("path", src.Path),
			zap.Error(err),
		)
		return DefaultVocabulary()
	}

	logger.Info("skill vocabulary loaded", zap.String("path", src.Path), zap.Int("terms", v.Len()))
	return v
}

func loadFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVocabularyLoadFailed, err)
	}
	defer f.Close()

	return ParseVocabulary(f)
}

func normalizeTerm(t string) string {
	return strings.Join(strings.Fields(lower(t)), " ")
}
