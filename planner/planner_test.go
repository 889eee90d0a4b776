package planner

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/prosthocare/prostho-api/planner/entities"
	"github.com/prosthocare/prostho-api/planner/rules"
	"github.com/prosthocare/prostho-api/validation"
)

func boundedTwoToothSnapshot() *entities.CaseSnapshot {
	enamel := true
	return &entities.CaseSnapshot{
		Missing: []string{"14", "15"},
		AbutmentHealth: []entities.AbutmentHealthRecord{
			{Tooth: "13", Status: entities.StatusPresentSound, MobilityMiller: "0", CrownRootRatio: ">=1:1", EnamelOKForRBB: &enamel},
			{Tooth: "16", Status: entities.StatusPresentSound, MobilityMiller: "0", CrownRootRatio: ">=1:1", EnamelOKForRBB: &enamel},
		},
		PatientRisk: entities.PatientRiskProfile{
			CariesRisk:        "low",
			OcclusalScheme:    "favorable",
			Parafunction:      "none",
			OpposingDentition: "natural",
		},
	}
}

func TestEvaluateBoundedSpan(t *testing.T) {
	rs := mustRuleSet(t)

	result, err := Evaluate(rs, boundedTwoToothSnapshot())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(result.SpanOrder) != 1 || result.SpanOrder[0] != "Mx-1" {
		t.Fatalf("Expected span order [Mx-1], got %v", result.SpanOrder)
	}

	options := result.SpanOptions["Mx-1"]
	kinds := make(map[entities.Kind]bool)
	for _, opt := range options {
		kinds[opt.Kind] = true
	}
	for _, want := range []entities.Kind{entities.KindFDP, entities.KindImplantFDP, entities.KindRPD} {
		if !kinds[want] {
			t.Errorf("Expected surviving kind %s, got %v", want, kinds)
		}
	}
	if kinds[entities.KindRBB] {
		t.Error("RBB must not appear for a two-tooth span")
	}

	if len(result.CasePlans) == 0 {
		t.Fatal("Expected at least one case plan")
	}
	best := result.CasePlans[0]
	if best.ID != "plan-1" {
		t.Errorf("Expected best plan id plan-1, got %s", best.ID)
	}
	if best.TotalScore != 0 {
		t.Errorf("Expected best plan total_score 0 for a clean case, got %d", best.TotalScore)
	}
	if best.Selection["Mx-1"] != options[0].ID {
		t.Errorf("Expected the best plan to select the top option %s, got %s", options[0].ID, best.Selection["Mx-1"])
	}

	summary, ok := result.ArchSummaries[entities.ArchMaxilla]
	if !ok {
		t.Fatal("Expected a maxilla arch summary")
	}
	if summary.KennedyClass != "Class III" {
		t.Errorf("Expected Class III, got %s", summary.KennedyClass)
	}

	if result.Provenance.EngineVersion != EngineVersion {
		t.Errorf("Expected engine version %s, got %s", EngineVersion, result.Provenance.EngineVersion)
	}
	if result.Provenance.RulesetVersion != rs.Version() {
		t.Errorf("Expected ruleset version %s, got %s", rs.Version(), result.Provenance.RulesetVersion)
	}
	if result.Provenance.EvaluationID == "" {
		t.Error("Expected a non-empty evaluation id")
	}
	if result.Provenance.Approximate {
		t.Error("Expected an exact result for a single span")
	}
	if result.ScoringPolicy != rs.PolicyID() {
		t.Errorf("Expected scoring policy %s, got %s", rs.PolicyID(), result.ScoringPolicy)
	}
}

func TestEvaluateDiscardsExcludedCandidates(t *testing.T) {
	rs := mustRuleSet(t)

	snap := &entities.CaseSnapshot{
		Missing: []string{"17", "18"},
		AbutmentHealth: []entities.AbutmentHealthRecord{
			{Tooth: "16", Status: entities.StatusPresentSound, MobilityMiller: "3", CrownRootRatio: ">=1:1"},
		},
		PatientRisk: entities.PatientRiskProfile{
			CariesRisk:        "low",
			OcclusalScheme:    "favorable",
			Parafunction:      "none",
			OpposingDentition: "natural",
		},
	}

	result, err := Evaluate(rs, snap)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// The cantilever on the mobile abutment is gone from span_options and
	// recorded in provenance with its triggering rule.
	for _, opt := range result.SpanOptions["Mx-1"] {
		if opt.Kind == entities.KindCantilever {
			t.Error("Excluded cantilever must not appear in span options")
		}
	}

	foundDiscard := false
	for _, d := range result.Provenance.Discarded {
		if d.Kind != entities.KindCantilever {
			continue
		}
		foundDiscard = true
		if !reflect.DeepEqual(d.Absolute, []string{rules.RuleCantileverMobility}) {
			t.Errorf("Expected discard rules [%s], got %v", rules.RuleCantileverMobility, d.Absolute)
		}
	}
	if !foundDiscard {
		t.Fatal("Expected the excluded cantilever in provenance.discarded")
	}

	// Every plan selects exactly one surviving option per span.
	surviving := make(map[string]bool)
	for _, opt := range result.SpanOptions["Mx-1"] {
		surviving[opt.ID] = true
	}
	for _, plan := range result.CasePlans {
		if len(plan.Selection) != 1 {
			t.Errorf("Expected one selection entry, got %v", plan.Selection)
		}
		if !surviving[plan.Selection["Mx-1"]] {
			t.Errorf("Plan selects non-surviving option %s", plan.Selection["Mx-1"])
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	rs := mustRuleSet(t)

	snap := boundedTwoToothSnapshot()
	snap.Missing = append(snap.Missing, "24", "47")

	first, err := Evaluate(rs, snap)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := Evaluate(rs, snap)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Identical input must yield byte-identical span options and case plans.
	// Only the evaluation id may differ.
	for _, pair := range []struct {
		name string
		a, b interface{}
	}{
		{"span_options", first.SpanOptions, second.SpanOptions},
		{"case_plans", first.CasePlans, second.CasePlans},
		{"span_order", first.SpanOrder, second.SpanOrder},
		{"discarded", first.Provenance.Discarded, second.Provenance.Discarded},
	} {
		a, err := json.Marshal(pair.a)
		if err != nil {
			t.Fatalf("Expected %s to marshal, got %v", pair.name, err)
		}
		b, err := json.Marshal(pair.b)
		if err != nil {
			t.Fatalf("Expected %s to marshal, got %v", pair.name, err)
		}
		if string(a) != string(b) {
			t.Errorf("Expected byte-identical %s across runs:\n%s\n%s", pair.name, a, b)
		}
	}
}

func TestEvaluateMultiSpanPlans(t *testing.T) {
	rs := mustRuleSet(t)

	enamel := true
	snap := &entities.CaseSnapshot{
		Missing: []string{"12", "25"},
		AbutmentHealth: []entities.AbutmentHealthRecord{
			{Tooth: "11", Status: entities.StatusPresentSound, MobilityMiller: "0", CrownRootRatio: ">=1:1", EnamelOKForRBB: &enamel},
			{Tooth: "13", Status: entities.StatusPresentSound, MobilityMiller: "0", CrownRootRatio: ">=1:1", EnamelOKForRBB: &enamel},
			{Tooth: "24", Status: entities.StatusPresentSound, MobilityMiller: "0", CrownRootRatio: ">=1:1", EnamelOKForRBB: &enamel},
			{Tooth: "26", Status: entities.StatusPresentSound, MobilityMiller: "0", CrownRootRatio: ">=1:1", EnamelOKForRBB: &enamel},
		},
		PatientRisk: entities.PatientRiskProfile{
			CariesRisk:        "low",
			OcclusalScheme:    "favorable",
			Parafunction:      "none",
			OpposingDentition: "natural",
		},
	}

	result, err := Evaluate(rs, snap)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(result.SpanOrder) != 2 {
		t.Fatalf("Expected 2 spans, got %v", result.SpanOrder)
	}

	for i := 1; i < len(result.CasePlans); i++ {
		if result.CasePlans[i].TotalScore < result.CasePlans[i-1].TotalScore {
			t.Errorf("Plans not sorted by ascending total_score: %d before %d",
				result.CasePlans[i-1].TotalScore, result.CasePlans[i].TotalScore)
		}
	}

	for _, plan := range result.CasePlans {
		if len(plan.Selection) != 2 {
			t.Errorf("Expected one selection per span, got %v", plan.Selection)
			continue
		}
		total := 0
		for spanID, optID := range plan.Selection {
			found := false
			for _, opt := range result.SpanOptions[spanID] {
				if opt.ID == optID {
					total += opt.RankScore
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Plan %s selects unknown option %s for span %s", plan.ID, optID, spanID)
			}
		}
		penalty := 0
		for _, id := range plan.RuleHits.Relative {
			penalty += rs.Weight(id)
		}
		if plan.TotalScore != total+penalty {
			t.Errorf("Plan %s: expected total_score %d (ranks %d + penalties %d), got %d",
				plan.ID, total+penalty, total, penalty, plan.TotalScore)
		}
	}
}

func TestEvaluateNoFeasiblePlan(t *testing.T) {
	rs := mustRuleSet(t)

	// No health records and an implant hard stop: the fixed candidates fail
	// closed on missing fields, the implants are contraindicated, and the
	// removable option fails closed on the absent caries risk.
	snap := &entities.CaseSnapshot{
		Missing: []string{"12"},
		PatientRisk: entities.PatientRiskProfile{
			SystemicFlags: []string{"uncontrolled_diabetes"},
		},
	}

	_, err := Evaluate(rs, snap)
	var noPlan *NoFeasiblePlanError
	if !errors.As(err, &noPlan) {
		t.Fatalf("Expected NoFeasiblePlanError, got %v", err)
	}
}

func TestEvaluateRejectsInvalidInput(t *testing.T) {
	rs := mustRuleSet(t)

	testCases := []struct {
		name  string
		snap  *entities.CaseSnapshot
		field string
	}{
		{
			"malformed tooth code",
			&entities.CaseSnapshot{Missing: []string{"95"}},
			"missing",
		},
		{
			"unknown risk value",
			&entities.CaseSnapshot{
				Missing:     []string{"14"},
				PatientRisk: entities.PatientRiskProfile{CariesRisk: "extreme"},
			},
			"patient_risk.caries_risk",
		},
		{
			"health record for non-adjacent tooth",
			&entities.CaseSnapshot{
				Missing: []string{"14"},
				AbutmentHealth: []entities.AbutmentHealthRecord{
					{Tooth: "47", Status: entities.StatusPresentSound},
				},
			},
			"abutment_health[0].tooth",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Evaluate(rs, tc.snap)
			var inputErr *validation.InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("Expected InputError, got %v", err)
			}
			if inputErr.Field != tc.field {
				t.Errorf("Expected field %s, got %s", tc.field, inputErr.Field)
			}
		})
	}
}
