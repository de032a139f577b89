// Package analyzer runs the résumé matching pipeline: extract text, find
// skills in both texts, score content similarity and combine the signals.
package analyzer

import (
	"time"

	"github.com/muhammadolammi/resumematch/internal/extract"
	"github.com/muhammadolammi/resumematch/internal/similarity"
	"github.com/muhammadolammi/resumematch/internal/skills"
	"go.uber.org/zap"
)

// Analyzer is stateless apart from read-only collaborators and is safe for
// concurrent use.
type Analyzer struct {
	skills  *skills.Extractor
	weights Weights
	logger  *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWeights overrides the default 70/30 weighting.
func WithWeights(w Weights) Option {
	return func(a *Analyzer) { a.weights = w }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New builds an Analyzer around a shared skill extractor.
func New(ex *skills.Extractor, opts ...Option) *Analyzer {
	a := &Analyzer{
		skills:  ex,
		weights: DefaultWeights(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Vocabulary exposes the vocabulary in use.
func (a *Analyzer) Vocabulary() *skills.Vocabulary { return a.skills.Vocabulary() }

// Analyze compares the document at documentPath with jobDescription.
// It fails with extract.ErrUnsupportedFormat or extract.ErrExtractionFailed
// and never returns a partial result.
func (a *Analyzer) Analyze(documentPath, jobDescription string) (MatchResult, error) {
	start := time.Now()
	resumeText, err := extract.File(documentPath)
	if err != nil {
		a.logger.Debug("extraction failed", zap.String("path", documentPath), zap.Error(err))
		return MatchResult{}, err
	}
	a.logger.Debug("resume text extracted",
		zap.String("path", documentPath),
		zap.Int("chars", len(resumeText)),
		zap.Duration("took", time.Since(start)),
	)
	return a.AnalyzeText(resumeText, jobDescription), nil
}

// AnalyzeBytes is Analyze for documents already held in memory.
func (a *Analyzer) AnalyzeBytes(format extract.Format, data []byte, jobDescription string) (MatchResult, error) {
	resumeText, err := extract.Bytes(format, data)
	if err != nil {
		return MatchResult{}, err
	}
	return a.AnalyzeText(resumeText, jobDescription), nil
}

// AnalyzeText runs the pipeline on text that is already extracted.
func (a *Analyzer) AnalyzeText(resumeText, jobDescription string) MatchResult {
	resumeSkills := a.skills.Extract(resumeText)
	jobSkills := a.skills.Extract(jobDescription)
	content := similarity.ContentSimilarity(resumeText, jobDescription)

	res := Combine(resumeSkills, jobSkills, content, a.weights)
	a.logger.Debug("resume analyzed",
		zap.Int("resume_skills", len(res.Skills)),
		zap.Int("job_skills", jobSkills.Len()),
		zap.Float64("skill_match", res.SkillMatch),
		zap.Float64("content_match", res.ContentMatch),
		zap.Float64("match_score", res.MatchScore),
	)
	return res
}
