package analyzer

import (
	"fmt"
	"math"

	"github.com/muhammadolammi/resumematch/internal/skills"
)

// Default weighting of the two signals in the overall score.
const (
	DefaultSkillWeight   = 0.7
	DefaultContentWeight = 0.3
)

// Weights balances skill overlap against content similarity.
type Weights struct {
	Skill   float64 `json:"skill" mapstructure:"skill"`
	Content float64 `json:"content" mapstructure:"content"`
}

// DefaultWeights returns the 70/30 policy.
func DefaultWeights() Weights {
	return Weights{Skill: DefaultSkillWeight, Content: DefaultContentWeight}
}

// Validate rejects negative weights and weights that do not sum to 1.
func (w Weights) Validate() error {
	if w.Skill < 0 || w.Content < 0 {
		return fmt.Errorf("weights must be non-negative, got skill=%v content=%v", w.Skill, w.Content)
	}
	if math.Abs(w.Skill+w.Content-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %v", w.Skill+w.Content)
	}
	return nil
}

// MatchResult is the outcome of one résumé/job comparison.
type MatchResult struct {
	Skills         []string `json:"skills"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
	MatchScore     float64  `json:"match_score"`
	SkillMatch     float64  `json:"skill_match"`
	ContentMatch   float64  `json:"content_match"`
}

// SkillMatchPercentage is |resume ∩ job| / |job| * 100, or 0 for an empty job set.
func SkillMatchPercentage(resume, job skills.Set) float64 {
	if job.Len() == 0 {
		return 0
	}
	return float64(resume.Intersect(job).Len()) / float64(job.Len()) * 100
}

// Combine merges the skill sets and the content score into a MatchResult.
func Combine(resume, job skills.Set, content float64, w Weights) MatchResult {
	skillPct := SkillMatchPercentage(resume, job)
	overall := w.Skill*skillPct + w.Content*content

	return MatchResult{
		Skills:         resume.Sorted(),
		MatchingSkills: resume.Intersect(job).Sorted(),
		MissingSkills:  job.Difference(resume).Sorted(),
		MatchScore:     round2(clamp(overall)),
		SkillMatch:     round2(skillPct),
		ContentMatch:   round2(clamp(content)),
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
