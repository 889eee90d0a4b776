package planner

import (
	"runtime"
	"sort"

	"github.com/prosthocare/prostho-api/planner/entities"
	"github.com/prosthocare/prostho-api/planner/rules"
	"golang.org/x/sync/errgroup"
)

// evaluatedCandidate pairs a candidate with its rule hits before scoring.
type evaluatedCandidate struct {
	candidate entities.OptionCandidate
	hits      entities.RuleHit
}

// EvaluateCandidates runs every candidate-stage rule against every candidate.
// Evaluation is pure per (candidate, context) pair, so candidates run across
// parallel workers bounded by the core count; each result lands in its own
// write-once slot.
func EvaluateCandidates(rs *rules.RuleSet, cands []entities.OptionCandidate,
	contexts map[string]*rules.CandidateContext) []evaluatedCandidate {

	results := make([]evaluatedCandidate, len(cands))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range cands {
		i := i
		g.Go(func() error {
			results[i] = evaluatedCandidate{
				candidate: cands[i],
				hits:      evaluateOne(rs, contexts[cands[i].SpanID], &cands[i]),
			}
			return nil
		})
	}
	// Workers never return errors; missing data is a rule hit, not a failure.
	_ = g.Wait()

	return results
}

// evaluateOne applies the candidate-stage rules to one candidate. A rule
// whose required input field is absent fails closed: it is recorded as an
// absolute exclusion under the insufficient-data rule id, never skipped.
func evaluateOne(rs *rules.RuleSet, ctx *rules.CandidateContext, c *entities.OptionCandidate) entities.RuleHit {
	hit := entities.RuleHit{Absolute: []string{}, Relative: []string{}}
	insufficient := false

	for _, rule := range rs.CandidateRules() {
		if !rule.AppliesTo(c.Kind) {
			continue
		}
		matched, err := rule.When(ctx, c)
		if err != nil {
			insufficient = true
			continue
		}
		if !matched {
			continue
		}
		switch rule.Effect {
		case rules.EffectExclude:
			hit.Absolute = append(hit.Absolute, rule.ID)
		case rules.EffectPenalty:
			hit.Relative = appendUnique(hit.Relative, rule.ID)
		}
	}

	if insufficient {
		hit.Absolute = append(hit.Absolute, rules.InsufficientDataRuleID)
	}
	sort.Strings(hit.Absolute)
	return hit
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
