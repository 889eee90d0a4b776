// Package rules holds the declarative rule catalog, the YAML scoring policy
// and the immutable RuleSet the engine evaluates against. Rules are
// versioned (id, predicate, effect) records; adding a rule never requires
// touching composition or scoring code.
package rules

import (
	"errors"

	"github.com/prosthocare/prostho-api/planner/entities"
)

// Stage says what a rule's predicate takes as context.
type Stage int

const (
	// StageCandidate rules see one candidate and its span context.
	StageCandidate Stage = iota
	// StagePlan rules see a full per-span selection.
	StagePlan
)

// Effect is what a matched rule does to its subject.
type Effect int

const (
	// EffectExclude removes the candidate (or combination) permanently.
	EffectExclude Effect = iota
	// EffectPenalty adds the rule's configured weight to the score.
	EffectPenalty
)

// ErrMissingField is returned by a predicate that could not see a required
// input field. The engine converts it into an absolute exclusion under
// InsufficientDataRuleID; it is never silently skipped.
var ErrMissingField = errors.New("required input field missing")

// InsufficientDataRuleID is the dedicated absolute rule id recorded when a
// predicate's required input is absent.
const InsufficientDataRuleID = "X0_InsufficientData"

// CandidateContext is the read-only context a candidate-stage predicate
// evaluates against. It is shared by all candidates of one span and never
// mutated during evaluation.
type CandidateContext struct {
	Span          *entities.Span
	Health        entities.HealthMap
	Risk          *entities.PatientRiskProfile
	KennedyClass  string
	Modifications int
}

// PlanContext is the context for plan-stage rules: one full combination of
// per-span selections.
type PlanContext struct {
	Selection []entities.ScoredOption
	Risk      *entities.PatientRiskProfile
}

// Rule is one declarative, versioned rule record. Exactly one of When and
// WhenPlan is set, matching the Stage. An empty Kinds slice applies the rule
// to every kind.
type Rule struct {
	ID     string
	Stage  Stage
	Effect Effect
	Kinds  []entities.Kind

	When     func(ctx *CandidateContext, c *entities.OptionCandidate) (bool, error)
	WhenPlan func(ctx *PlanContext) (bool, error)
}

// AppliesTo reports whether the rule targets the given kind.
func (r *Rule) AppliesTo(kind entities.Kind) bool {
	if len(r.Kinds) == 0 {
		return true
	}
	for _, k := range r.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}
