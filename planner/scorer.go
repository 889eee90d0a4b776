package planner

import (
	"sort"

	"github.com/prosthocare/prostho-api/planner/entities"
	"github.com/prosthocare/prostho-api/planner/rules"
)

// ScoreAndSort turns the surviving candidates of one span into ScoredOptions
// ordered best-first. rank_score is the sum of the configured weights of all
// matched relative rules; lower is better. Ties break, in order, on the
// policy's rule-priority ordering of the matched rules, the declared kind
// preference, and finally the lexical option id, so the order is fully
// deterministic.
// Ranking is advisory: every surviving candidate is retained.
func ScoreAndSort(rs *rules.RuleSet, survivors []evaluatedCandidate) []entities.ScoredOption {
	scored := make([]entities.ScoredOption, 0, len(survivors))
	for _, ec := range survivors {
		score := 0
		for _, id := range ec.hits.Relative {
			score += rs.Weight(id)
		}
		scored = append(scored, entities.ScoredOption{
			OptionCandidate: ec.candidate,
			RuleHits:        ec.hits,
			RankScore:       score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := &scored[i], &scored[j]
		if a.RankScore != b.RankScore {
			return a.RankScore < b.RankScore
		}
		if c := comparePriorities(rs, a.RuleHits.Relative, b.RuleHits.Relative); c != 0 {
			return c < 0
		}
		if ra, rb := rs.KindRank(a.Kind), rs.KindRank(b.Kind); ra != rb {
			return ra < rb
		}
		return a.ID < b.ID
	})

	return scored
}

// comparePriorities compares two matched-rule sets by the fixed rule-priority
// ordering: each set is reduced to its sorted priority indices and compared
// lexicographically, fewer or weaker hits first.
func comparePriorities(rs *rules.RuleSet, a, b []string) int {
	pa := priorityIndices(rs, a)
	pb := priorityIndices(rs, b)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			if pa[i] < pb[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(pa) < len(pb):
		return -1
	case len(pa) > len(pb):
		return 1
	default:
		return 0
	}
}

func priorityIndices(rs *rules.RuleSet, ids []string) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = rs.PriorityIndex(id)
	}
	sort.Ints(out)
	return out
}
