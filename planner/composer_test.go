package planner

import (
	"errors"
	"strings"
	"testing"

	"github.com/prosthocare/prostho-api/planner/entities"
	"github.com/prosthocare/prostho-api/planner/rules"
)

func scoredOpt(id, spanID string, kind entities.Kind, rank int) entities.ScoredOption {
	return entities.ScoredOption{
		OptionCandidate: entities.OptionCandidate{
			ID:     id,
			Kind:   kind,
			Family: kind.Family(),
			SpanID: spanID,
			Arch:   entities.ArchMaxilla,
		},
		RuleHits:  entities.RuleHit{Absolute: []string{}, Relative: []string{}},
		RankScore: rank,
	}
}

func twoSpans() []entities.Span {
	return []entities.Span{
		{ID: "Mx-1", Arch: entities.ArchMaxilla, Type: entities.SpanBounded, Length: 1},
		{ID: "Mx-2", Arch: entities.ArchMaxilla, Type: entities.SpanBounded, Length: 1},
	}
}

func TestComposePlansCrossProduct(t *testing.T) {
	rs := mustRuleSet(t)
	spans := twoSpans()
	spanOptions := map[string][]entities.ScoredOption{
		"Mx-1": {scoredOpt("A1", "Mx-1", entities.KindFDP, 0), scoredOpt("A2", "Mx-1", entities.KindRBB, 1)},
		"Mx-2": {scoredOpt("B1", "Mx-2", entities.KindFDP, 0), scoredOpt("B2", "Mx-2", entities.KindRBB, 1)},
	}

	risk := entities.PatientRiskProfile{}
	plans, approximate, fallback, err := ComposePlans(rs, spans, spanOptions, &risk)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if approximate || fallback != "" {
		t.Errorf("Expected exact composition, got approximate=%v fallback=%q", approximate, fallback)
	}
	if len(plans) != 4 {
		t.Fatalf("Expected 4 plans, got %d", len(plans))
	}

	// Sorted by ascending total score: 0, 1, 1, 2.
	wantScores := []int{0, 1, 1, 2}
	for i, plan := range plans {
		if plan.TotalScore != wantScores[i] {
			t.Errorf("Plan %d: expected total_score %d, got %d", i, wantScores[i], plan.TotalScore)
		}
		if len(plan.Selection) != 2 {
			t.Errorf("Plan %d: expected one selection per span, got %v", i, plan.Selection)
		}
	}

	if plans[0].ID != "plan-1" || plans[0].Selection["Mx-1"] != "A1" || plans[0].Selection["Mx-2"] != "B1" {
		t.Errorf("Expected best plan A1+B1 as plan-1, got %s %v", plans[0].ID, plans[0].Selection)
	}
}

func TestComposePlansTotalScoreSumsRankScores(t *testing.T) {
	rs := mustRuleSet(t)
	spans := twoSpans()
	spanOptions := map[string][]entities.ScoredOption{
		"Mx-1": {scoredOpt("A1", "Mx-1", entities.KindFDP, 2)},
		"Mx-2": {scoredOpt("B1", "Mx-2", entities.KindRBB, 3)},
	}

	risk := entities.PatientRiskProfile{}
	plans, _, _, err := ComposePlans(rs, spans, spanOptions, &risk)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("Expected 1 plan, got %d", len(plans))
	}
	if plans[0].TotalScore != 5 {
		t.Errorf("Expected total_score 5, got %d", plans[0].TotalScore)
	}
}

func TestComposePlansTopKTruncation(t *testing.T) {
	rs := mustRuleSet(t) // top_k = 3
	spans := []entities.Span{{ID: "Mx-1", Arch: entities.ArchMaxilla, Type: entities.SpanBounded, Length: 1}}
	spanOptions := map[string][]entities.ScoredOption{
		"Mx-1": {
			scoredOpt("A1", "Mx-1", entities.KindFDP, 0),
			scoredOpt("A2", "Mx-1", entities.KindRBB, 1),
			scoredOpt("A3", "Mx-1", entities.KindImplantSingle, 2),
			scoredOpt("A4", "Mx-1", entities.KindRPD, 3),
			scoredOpt("A5", "Mx-1", entities.KindCantilever, 4),
		},
	}

	risk := entities.PatientRiskProfile{}
	plans, _, _, err := ComposePlans(rs, spans, spanOptions, &risk)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(plans) != 3 {
		t.Errorf("Expected top-K to cap plans at 3, got %d", len(plans))
	}
	for _, plan := range plans {
		if sel := plan.Selection["Mx-1"]; sel == "A4" || sel == "A5" {
			t.Errorf("Expected options beyond top-K to be pruned, got plan with %s", sel)
		}
	}
}

func TestComposePlansGreedyFallbackBeyondCeiling(t *testing.T) {
	policy, err := rules.DefaultPolicy()
	if err != nil {
		t.Fatalf("Expected embedded policy to parse, got %v", err)
	}
	policy.Plan.CombinationCeiling = 2
	rs, err := rules.New(policy)
	if err != nil {
		t.Fatalf("Expected rule set to build, got %v", err)
	}

	spans := twoSpans()
	spanOptions := map[string][]entities.ScoredOption{
		"Mx-1": {scoredOpt("A1", "Mx-1", entities.KindFDP, 0), scoredOpt("A2", "Mx-1", entities.KindRBB, 1)},
		"Mx-2": {scoredOpt("B1", "Mx-2", entities.KindFDP, 0), scoredOpt("B2", "Mx-2", entities.KindRBB, 1)},
	}

	risk := entities.PatientRiskProfile{}
	plans, approximate, fallback, err := ComposePlans(rs, spans, spanOptions, &risk)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !approximate {
		t.Error("Expected the result to be flagged approximate beyond the ceiling")
	}
	if fallback != FallbackGreedyBest {
		t.Errorf("Expected fallback %q, got %q", FallbackGreedyBest, fallback)
	}
	if len(plans) != 1 {
		t.Fatalf("Expected a single greedy-best plan, got %d", len(plans))
	}
	if plans[0].Selection["Mx-1"] != "A1" || plans[0].Selection["Mx-2"] != "B1" {
		t.Errorf("Expected the greedy plan to take each span's best option, got %v", plans[0].Selection)
	}
}

func TestComposePlansGreedyFallbackExcludedReportsApproximation(t *testing.T) {
	policy, err := rules.DefaultPolicy()
	if err != nil {
		t.Fatalf("Expected embedded policy to parse, got %v", err)
	}
	policy.Plan.CombinationCeiling = 2
	rs, err := rules.New(policy)
	if err != nil {
		t.Fatalf("Expected rule set to build, got %v", err)
	}

	spans := twoSpans()

	// Each span's best option is a cantilever carried by the same tooth, so
	// the only combination the fallback examines is excluded.
	cl1 := scoredOpt("C1", "Mx-1", entities.KindCantilever, 0)
	cl1.Meta.RequiredAbutment = "13"
	cl2 := scoredOpt("C2", "Mx-2", entities.KindCantilever, 0)
	cl2.Meta.RequiredAbutment = "13"

	spanOptions := map[string][]entities.ScoredOption{
		"Mx-1": {cl1, scoredOpt("A2", "Mx-1", entities.KindRBB, 1)},
		"Mx-2": {cl2, scoredOpt("B2", "Mx-2", entities.KindRBB, 1)},
	}

	risk := entities.PatientRiskProfile{}
	_, approximate, fallback, err := ComposePlans(rs, spans, spanOptions, &risk)

	var noPlan *NoFeasiblePlanError
	if !errors.As(err, &noPlan) {
		t.Fatalf("Expected NoFeasiblePlanError, got %v", err)
	}
	if !approximate || fallback != FallbackGreedyBest {
		t.Errorf("Expected approximate greedy-best failure, got approximate=%v fallback=%q", approximate, fallback)
	}
	if !strings.Contains(noPlan.Reason, "greedy-best") {
		t.Errorf("Expected the reason to name the greedy-best approximation, got %q", noPlan.Reason)
	}
	if strings.Contains(noPlan.Reason, "every combination") {
		t.Errorf("Expected the reason not to claim an exhaustive search, got %q", noPlan.Reason)
	}
}

func TestComposePlansNoSurvivorsForSpan(t *testing.T) {
	rs := mustRuleSet(t)
	spans := twoSpans()
	spanOptions := map[string][]entities.ScoredOption{
		"Mx-1": {scoredOpt("A1", "Mx-1", entities.KindFDP, 0)},
		"Mx-2": {},
	}

	risk := entities.PatientRiskProfile{}
	_, _, _, err := ComposePlans(rs, spans, spanOptions, &risk)

	var noPlan *NoFeasiblePlanError
	if !errors.As(err, &noPlan) {
		t.Fatalf("Expected NoFeasiblePlanError, got %v", err)
	}
	if noPlan.SpanID != "Mx-2" {
		t.Errorf("Expected the failing span id Mx-2, got %s", noPlan.SpanID)
	}
}

func TestComposePlansSharedCantileverAbutmentExcluded(t *testing.T) {
	rs := mustRuleSet(t)
	spans := twoSpans()

	cl1 := scoredOpt("C1", "Mx-1", entities.KindCantilever, 0)
	cl1.Meta.RequiredAbutment = "13"
	cl2 := scoredOpt("C2", "Mx-2", entities.KindCantilever, 0)
	cl2.Meta.RequiredAbutment = "13"

	spanOptions := map[string][]entities.ScoredOption{
		"Mx-1": {cl1},
		"Mx-2": {cl2},
	}

	risk := entities.PatientRiskProfile{}
	_, _, _, err := ComposePlans(rs, spans, spanOptions, &risk)

	var noPlan *NoFeasiblePlanError
	if !errors.As(err, &noPlan) {
		t.Fatalf("Expected NoFeasiblePlanError when every combination shares a cantilever abutment, got %v", err)
	}
	if noPlan.SpanID != "" {
		t.Errorf("Expected a combination-level failure, got span id %s", noPlan.SpanID)
	}
}

func TestComposePlansPlanLevelPenalty(t *testing.T) {
	rs := mustRuleSet(t)
	spans := twoSpans()
	spanOptions := map[string][]entities.ScoredOption{
		"Mx-1": {scoredOpt("I1", "Mx-1", entities.KindImplantSingle, 0)},
		"Mx-2": {scoredOpt("I2", "Mx-2", entities.KindImplantSingle, 0)},
	}

	risk := entities.PatientRiskProfile{SystemicFlags: []string{"smoker"}}
	plans, _, _, err := ComposePlans(rs, spans, spanOptions, &risk)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("Expected 1 plan, got %d", len(plans))
	}
	if plans[0].TotalScore != 2 {
		t.Errorf("Expected total_score 2 from the implant healing penalty, got %d", plans[0].TotalScore)
	}
	if len(plans[0].RuleHits.Relative) != 1 || plans[0].RuleHits.Relative[0] != rules.RuleImplantSystemicLoad {
		t.Errorf("Expected plan hit [%s], got %v", rules.RuleImplantSystemicLoad, plans[0].RuleHits.Relative)
	}
}
