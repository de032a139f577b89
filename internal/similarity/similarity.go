// Package similarity scores how close two texts are using TF-IDF weighted
// cosine similarity over the two-document corpus they form.
package similarity

import (
	_ "embed"
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed stopwords.txt
var stopwordList string

// StopWords is the English stop-word list removed before weighting.
var StopWords = func() map[string]struct{} {
	words := strings.Fields(stopwordList)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// termRe matches runs of two or more word characters.
var termRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Terms lowercases text and returns its non stop-word terms in order.
func Terms(text string) []string {
	raw := termRe.FindAllString(cases.Lower(language.English).String(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := StopWords[t]; !stop {
			out = append(out, t)
		}
	}
	return out
}

// ContentSimilarity returns the cosine similarity of a and b as a
// percentage in [0, 100]. Texts that produce no terms score 0.
func ContentSimilarity(a, b string) float64 {
	va, vb := Vectors(a, b)
	var dot float64
	for term, w := range va {
		dot += w * vb[term]
	}
	if math.IsNaN(dot) {
		return 0
	}
	return math.Max(0, math.Min(1, dot)) * 100
}

// Vectors builds the L2-normalized TF-IDF vectors of a and b. Term weight is
// the raw count times the smoothed idf ln((1+n)/(1+df)) + 1 with n = 2.
// A text without terms yields an empty vector.
func Vectors(a, b string) (map[string]float64, map[string]float64) {
	ta, tb := counts(Terms(a)), counts(Terms(b))

	df := make(map[string]int, len(ta)+len(tb))
	for t := range ta {
		df[t]++
	}
	for t := range tb {
		df[t]++
	}

	const n = 2.0
	idf := make(map[string]float64, len(df))
	for t, d := range df {
		idf[t] = math.Log((1+n)/(1+float64(d))) + 1
	}
	return weigh(ta, idf), weigh(tb, idf)
}

func counts(terms []string) map[string]int {
	c := make(map[string]int, len(terms))
	for _, t := range terms {
		c[t]++
	}
	return c
}

func weigh(tf map[string]int, idf map[string]float64) map[string]float64 {
	v := make(map[string]float64, len(tf))
	var norm float64
	for t, c := range tf {
		w := float64(c) * idf[t]
		v[t] = w
		norm += w * w
	}
	if norm == 0 {
		return map[string]float64{}
	}
	norm = math.Sqrt(norm)
	for t := range v {
		v[t] /= norm
	}
	return v
}
