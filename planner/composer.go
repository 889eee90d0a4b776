package planner

import (
	"fmt"
	"sort"

	"github.com/prosthocare/prostho-api/planner/entities"
	"github.com/prosthocare/prostho-api/planner/rules"
)

// FallbackGreedyBest names the approximation used when the cross-product
// exceeds the configured ceiling: the single plan built from each span's
// best-ranked option.
const FallbackGreedyBest = "greedy-best"

// NoFeasiblePlanError is returned when a span has no surviving candidate or
// every combination is excluded by a plan-level absolute rule. It is a
// distinct result, never an ambiguous empty success.
type NoFeasiblePlanError struct {
	SpanID string
	Reason string
}

func (e *NoFeasiblePlanError) Error() string {
	if e.SpanID != "" {
		return fmt.Sprintf("no feasible plan: span %s has no surviving candidates", e.SpanID)
	}
	return fmt.Sprintf("no feasible plan: %s", e.Reason)
}

// ComposePlans combines per-span ranked candidates into whole-case plans.
// The cross-product is bounded by the policy's per-span top-K cap and global
// combination ceiling; beyond the ceiling it falls back to greedy-best and
// reports the result as approximate. Plans are ordered by ascending
// total_score (lower is better, best first) with stable tie-breaking on span
// discovery order then per-span option order.
func ComposePlans(rs *rules.RuleSet, spans []entities.Span,
	spanOptions map[string][]entities.ScoredOption,
	risk *entities.PatientRiskProfile) ([]entities.CasePlan, bool, string, error) {

	limits := rs.Limits()

	// Per-span candidate lists in span discovery order, capped at top-K.
	lists := make([][]entities.ScoredOption, len(spans))
	for i := range spans {
		opts := spanOptions[spans[i].ID]
		if len(opts) == 0 {
			return nil, false, "", &NoFeasiblePlanError{SpanID: spans[i].ID}
		}
		if len(opts) > limits.TopK {
			opts = opts[:limits.TopK]
		}
		lists[i] = opts
	}

	total := 1
	overflow := false
	for _, l := range lists {
		total *= len(l)
		if total > limits.CombinationCeiling {
			overflow = true
			break
		}
	}

	var combos [][]entities.ScoredOption
	fallback := ""
	if overflow {
		// Greedy-best: one plan from each span's top-ranked option.
		best := make([]entities.ScoredOption, len(lists))
		for i, l := range lists {
			best[i] = l[0]
		}
		combos = [][]entities.ScoredOption{best}
		fallback = FallbackGreedyBest
	} else {
		combos = crossProduct(lists)
	}

	plans := make([]entities.CasePlan, 0, len(combos))
	for _, combo := range combos {
		plan, excluded := evaluateCombination(rs, spans, combo, risk)
		if excluded {
			continue
		}
		plans = append(plans, plan)
	}

	if len(plans) == 0 {
		reason := "every combination excluded by plan-level rules"
		if overflow {
			// Only the greedy-best combination was examined; an exhaustive
			// search over the ceiling was never attempted.
			reason = "greedy-best combination excluded by plan-level rules; " +
				"exhaustive search skipped above the combination ceiling"
		}
		return nil, overflow, fallback, &NoFeasiblePlanError{Reason: reason}
	}

	// Stable sort keeps the span-order-major enumeration as the tie-break.
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].TotalScore < plans[j].TotalScore
	})
	for i := range plans {
		plans[i].ID = fmt.Sprintf("plan-%d", i+1)
	}

	return plans, overflow, fallback, nil
}

// crossProduct enumerates every combination, span-order major: the last
// span's options vary fastest.
func crossProduct(lists [][]entities.ScoredOption) [][]entities.ScoredOption {
	count := 1
	for _, l := range lists {
		count *= len(l)
	}

	combos := make([][]entities.ScoredOption, 0, count)
	indices := make([]int, len(lists))
	for {
		combo := make([]entities.ScoredOption, len(lists))
		for i, idx := range indices {
			combo[i] = lists[i][idx]
		}
		combos = append(combos, combo)

		pos := len(indices) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(lists[pos]) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			return combos
		}
	}
}

// evaluateCombination applies the plan-stage rules to one combination and
// computes its total score. A matched absolute rule discards the combination
// outright.
func evaluateCombination(rs *rules.RuleSet, spans []entities.Span,
	combo []entities.ScoredOption, risk *entities.PatientRiskProfile) (entities.CasePlan, bool) {

	ctx := &rules.PlanContext{Selection: combo, Risk: risk}

	hits := entities.RuleHit{Absolute: []string{}, Relative: []string{}}
	penalty := 0
	for _, rule := range rs.PlanRules() {
		matched, err := rule.WhenPlan(ctx)
		if err != nil || !matched {
			// Plan predicates see only engine-produced data; an error here
			// means a field the engine never filled, treated as no match.
			continue
		}
		if rule.Effect == rules.EffectExclude {
			return entities.CasePlan{}, true
		}
		hits.Relative = append(hits.Relative, rule.ID)
		penalty += rs.Weight(rule.ID)
	}

	total := penalty
	selection := make(map[string]string, len(combo))
	for i := range combo {
		total += combo[i].RankScore
		selection[spans[i].ID] = combo[i].ID
	}

	return entities.CasePlan{
		Selection:  selection,
		TotalScore: total,
		RuleHits:   hits,
	}, false
}
