package skills

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProseTokenizer_FindsTermsAroundPunctuation(t *testing.T) {
	vocab := NewVocabulary([]string{"python", "sql", "aws", "ci/cd", "scikit-learn", "machine learning"})

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "single quotes", text: "I know 'sql' well", want: []string{"sql"}},
		{name: "double quotes", text: `Expert in "Python" and AWS`, want: []string{"aws", "python"}},
		{name: "curly quotes", text: "I know ‘sql’ and “aws”", want: []string{"aws", "sql"}},
		{name: "slash", text: "Languages: Python/SQL", want: []string{"python", "sql"}},
		{name: "commas without spaces", text: "python,sql,aws", want: []string{"aws", "python", "sql"}},
		{name: "hyphen prefix", text: "AWS-certified engineer", want: []string{"aws"}},
		{name: "mixed", text: "Skills: Python/SQL, AWS-certified; python.", want: []string{"aws", "python", "sql"}},
		{name: "semicolon and colon", text: "stack:python;sql", want: []string{"python", "sql"}},
		{name: "compound terms survive", text: "Built ci/cd pipelines with scikit-learn", want: []string{"ci/cd", "scikit-learn"}},
		{name: "contraction", text: "I don't know java", want: []string{}},
		{name: "blank", text: "  \n ", want: []string{}},
	}

	ex := NewExtractor(vocab, NewProseTokenizer())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.Extract(tt.text).Sorted())
		})
	}
}

func TestProseTokenizer_PhraseAcrossHyphen(t *testing.T) {
	ex := NewExtractor(testVocab(), NewProseTokenizer(), WithPhraseMatching())
	assert.Equal(t, []string{"machine learning", "sql"}, ex.Extract("machine-learning and 'SQL'").Sorted())
}

func TestProseTokenizer_Tokens(t *testing.T) {
	tok := NewProseTokenizer()

	assert.Contains(t, tok.Tokenize("i know 'sql' well"), "sql")
	assert.Subset(t, tok.Tokenize("python/sql"), []string{"python", "sql"})
	assert.NotContains(t, tok.Tokenize("aws-certified"), "aws-")
	assert.Nil(t, tok.Tokenize("''"))
}

func TestBlankQuotes(t *testing.T) {
	assert.Equal(t, "i know  sql  well", blankQuotes("i know 'sql' well"))
	assert.Equal(t, "don't", blankQuotes("don't"))
	assert.Equal(t, " aws ", blankQuotes("`aws`"))
	assert.Equal(t, "plain text", blankQuotes("plain text"))
}

func TestNewTokenizer(t *testing.T) {
	assert.IsType(t, FieldsTokenizer{}, NewTokenizer("fields"))
	assert.IsType(t, FieldsTokenizer{}, NewTokenizer(" Fields "))
	assert.IsType(t, &ProseTokenizer{}, NewTokenizer("prose"))
	assert.IsType(t, &ProseTokenizer{}, NewTokenizer("unknown"))
}

func TestProseTokenizer_SharedAcrossGoroutines(t *testing.T) {
	ex := NewExtractor(testVocab(), NewTokenizer("prose"))

	var wg sync.WaitGroup
	results := make([][]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = ex.Extract("Python/SQL, 'aws' and java").Sorted()
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, []string{"aws", "python", "sql"}, got)
	}
}
