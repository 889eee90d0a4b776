package rules

import (
	"strconv"

	"github.com/prosthocare/prostho-api/planner/entities"
)

// Rule ids. The letter prefixes group rules by clinical theme: B abutment
// condition, C design constraints, E patient/systemic factors, O occlusal
// relations, P pier configurations, R removable design, PL plan-level.
const (
	RuleImplantContraindication = "E1_ImplantContraindication"
	RuleCantileverMobility      = "C4a_CantileverAbutmentMobility"
	RuleCantileverCrownRoot     = "C4a_CantileverAbutmentCrownRoot"
	RuleFixedCrownRootWorst     = "B4a_FixedAbutmentCrownRoot"
	RuleRBBEnamelNotOK          = "C5_RBBEnamelNotOK"
	RuleRBBHighCaries           = "C5_RBBHighCariesRisk"

	RuleCompromisedAbutment = "B1_CompromisedAbutment"
	RuleOcclusionRisk       = "C2_OcclusionRisk"
	RuleParafunction        = "E4_Parafunction"
	RuleCariesOrHygiene     = "E3_CariesOrHygieneRisk"
	RulePierRigidConnector  = "P1_PierRigidConnector"
	RuleOpposingNaturalLoad = "O1_OpposingNaturalLoad"
	RuleRPDComplexDesign    = "R1_RPDComplexDesign"

	RuleSharedCantileverAbutment = "PL1_SharedCantileverAbutment"
	RuleImplantSystemicLoad      = "PL2_ImplantSystemicLoad"
	RuleRemovableExcessPerArch   = "PL3_RemovableExcessPerArch"
)

// Systemic flags that contraindicate implant placement outright.
var implantHardStops = []string{
	"uncontrolled_diabetes",
	"recent_head_neck_radiation",
	"high_risk_antiresorptives",
}

// Systemic flags that compromise healing around multiple implant sites.
var implantHealingRisks = []string{"smoker", "periodontal_disease", "poor_hygiene"}

// Catalog returns the full rule catalog in a fixed, deterministic order.
// Predicates are pure over (candidate, context); a predicate that cannot see
// a required field returns ErrMissingField and fails closed.
func Catalog() []Rule {
	return []Rule{
		// ---- candidate stage, absolute ----
		{
			ID: RuleImplantContraindication, Stage: StageCandidate, Effect: EffectExclude,
			Kinds: []entities.Kind{entities.KindImplantSingle, entities.KindImplantFDP},
			When: func(ctx *CandidateContext, c *entities.OptionCandidate) (bool, error) {
				for _, flag := range implantHardStops {
					if ctx.Risk.HasSystemicFlag(flag) {
						return true, nil
					}
				}
				return false, nil
			},
		},
		{
			ID: RuleCantileverMobility, Stage: StageCandidate, Effect: EffectExclude,
			Kinds: []entities.Kind{entities.KindCantilever},
			When: func(ctx *CandidateContext, c *entities.OptionCandidate) (bool, error) {
				rec := ctx.Health.For(c.Meta.RequiredAbutment)
				return mobilityAtLeast(rec, 2)
			},
		},
		{
			ID: RuleCantileverCrownRoot, Stage: StageCandidate, Effect: EffectExclude,
			Kinds: []entities.Kind{entities.KindCantilever},
			When: func(ctx *CandidateContext, c *entities.OptionCandidate) (bool, error) {
				rec := ctx.Health.For(c.Meta.RequiredAbutment)
				return crownRootWorst(rec)
			},
		},
		{
			ID: RuleFixedCrownRootWorst, Stage: StageCandidate, Effect: EffectExclude,
			Kinds: []entities.Kind{entities.KindFDP, entities.KindRBB},
			When: func(ctx *CandidateContext, c *entities.OptionCandidate) (bool, error) {
				return anyAbutment(ctx, c, crownRootWorst)
			},
		},
		{
			ID: RuleRBBEnamelNotOK, Stage: StageCandidate, Effect: EffectExclude,
			Kinds: []entities.Kind{entities.KindRBB},
			When: func(ctx *CandidateContext, c *entities.OptionCandidate) (bool, error) {
				for _, tooth := range c.LoadBearingAbutments() {
					ok, err := enamelOK(ctx.Health.For(tooth))
					if err != nil {
						return false, err
					}
					if !ok {
						return true, nil
					}
				}
				return false, nil
			},
		},
		{
			ID: RuleRBBHighCaries, Stage: StageCandidate, Effect: EffectExclude,
			Kinds: []entities.Kind{entities.KindRBB},
			When: func(ctx *CandidateContext, c *entities.OptionCandidate) (bool, error) {
				if ctx.Risk.CariesRisk == "" {
					return false, ErrMissingField
				}
				return ctx.Risk.CariesRisk == "high", nil
			},
		},

		// ---- candidate stage, relative ----
		{
			ID: RuleCompromisedAbutment, Stage: StageCandidate, Effect: EffectPenalty,
			Kinds: []entities.Kind{entities.KindFDP, entities.KindRBB},
			When: func(ctx *CandidateContext, c *entities.OptionCandidate) (bool, error) {
				return anyAbutment(ctx, c, func(rec entities.AbutmentHealthRecord) (bool, error) {
					return mobilityAtLeast(rec, 2)
				})
			},
		},
		{
			ID: RuleOcclusionRisk, Stage: StageCandidate, Effect: EffectPenalty,
			Kinds: []entities.Kind{entities.KindFDP, entities.KindCantilever, entities.KindRBB},
			When: func(ctx *CandidateContext, c *entities.OptionCandidate) (bool, error) {
				if ctx.Risk.OcclusalScheme == "" {
					return false, ErrMissingField
				}
				return ctx.Risk.OcclusalScheme == "heavy", nil
			},
		},
		{
			ID: RuleParafunction, Stage: StageCandidate, Effect: EffectPenalty,
			Kinds: []entities.Kind{entities.KindRBB, entities.KindCantilever},
			When: func(ctx *CandidateContext, c *entities.OptionCandidate) (bool, error) {
				pf := ctx.Risk.Parafunction
				if pf == "" {
					return false, ErrMissingField
				}
				return pf == "moderate" || pf == "severe", nil
			},
		},
		{
			ID: RuleCariesOrHygiene, Stage: StageCandidate, Effect: EffectPenalty,
			Kinds: []entities.Kind{entities.KindFDP, entities.KindCantilever, entities.KindRBB, entities.KindRPD},
			When: func(ctx *CandidateContext, c *entities.OptionCandidate) (bool, error) {
				if ctx.Risk.CariesRisk == "" {
					return false, ErrMissingField
				}
				if ctx.Risk.CariesRisk == "moderate" || ctx.Risk.CariesRisk == "high" {
					return true, nil
				}
				return ctx.Risk.HasSystemicFlag("poor_hygiene"), nil
			},
		},
		{
			ID: RulePierRigidConnector, Stage: StageCandidate, Effect: EffectPenalty,
			Kinds: []entities.Kind{entities.KindFDP, entities.KindRBB},
			When: func(ctx *CandidateContext, c *entities.OptionCandidate) (bool, error) {
				return ctx.Span.HasPier(), nil
			},
		},
		{
			ID: RuleOpposingNaturalLoad, Stage: StageCandidate, Effect: EffectPenalty,
			Kinds: []entities.Kind{entities.KindRPD},
			When: func(ctx *CandidateContext, c *entities.OptionCandidate) (bool, error) {
				if ctx.Risk.OpposingDentition == "" {
					return false, ErrMissingField
				}
				return ctx.Span.Type == entities.SpanDistalExtension &&
					ctx.Risk.OpposingDentition == "natural", nil
			},
		},
		{
			ID: RuleRPDComplexDesign, Stage: StageCandidate, Effect: EffectPenalty,
			Kinds: []entities.Kind{entities.KindRPD},
			When: func(ctx *CandidateContext, c *entities.OptionCandidate) (bool, error) {
				klass := ctx.KennedyClass
				return (klass == "Class I" || klass == "Class II") && ctx.Modifications >= 1, nil
			},
		},

		// ---- plan stage ----
		{
			ID: RuleSharedCantileverAbutment, Stage: StagePlan, Effect: EffectExclude,
			WhenPlan: func(ctx *PlanContext) (bool, error) {
				seen := make(map[entities.ToothCode]bool)
				for i := range ctx.Selection {
					sel := &ctx.Selection[i]
					if sel.Kind != entities.KindCantilever {
						continue
					}
					if seen[sel.Meta.RequiredAbutment] {
						return true, nil
					}
					seen[sel.Meta.RequiredAbutment] = true
				}
				return false, nil
			},
		},
		{
			ID: RuleImplantSystemicLoad, Stage: StagePlan, Effect: EffectPenalty,
			WhenPlan: func(ctx *PlanContext) (bool, error) {
				implants := 0
				for i := range ctx.Selection {
					if ctx.Selection[i].Family == entities.FamilyImplant {
						implants++
					}
				}
				if implants < 2 {
					return false, nil
				}
				for _, flag := range implantHealingRisks {
					if ctx.Risk.HasSystemicFlag(flag) {
						return true, nil
					}
				}
				return false, nil
			},
		},
		{
			ID: RuleRemovableExcessPerArch, Stage: StagePlan, Effect: EffectPenalty,
			WhenPlan: func(ctx *PlanContext) (bool, error) {
				perArch := make(map[entities.Arch]int)
				for i := range ctx.Selection {
					if ctx.Selection[i].Family == entities.FamilyRemovable {
						perArch[ctx.Selection[i].Arch]++
					}
				}
				for _, n := range perArch {
					if n > 1 {
						return true, nil
					}
				}
				return false, nil
			},
		},
	}
}

// ---- predicate helpers ----

func mobilityAtLeast(rec entities.AbutmentHealthRecord, grade int) (bool, error) {
	if rec.MobilityMiller == "" {
		return false, ErrMissingField
	}
	g, err := strconv.Atoi(rec.MobilityMiller)
	if err != nil {
		return false, ErrMissingField
	}
	return g >= grade, nil
}

func crownRootWorst(rec entities.AbutmentHealthRecord) (bool, error) {
	if rec.CrownRootRatio == "" {
		return false, ErrMissingField
	}
	return rec.CrownRootRatio == entities.CrownRootWorst, nil
}

func enamelOK(rec entities.AbutmentHealthRecord) (bool, error) {
	if rec.EnamelOKForRBB == nil {
		return false, ErrMissingField
	}
	return *rec.EnamelOKForRBB, nil
}

// anyAbutment applies check to every load-bearing abutment of the candidate
// and reports whether any matched. A missing field on any abutment fails the
// whole predicate closed.
func anyAbutment(ctx *CandidateContext, c *entities.OptionCandidate,
	check func(entities.AbutmentHealthRecord) (bool, error)) (bool, error) {
	for _, tooth := range c.LoadBearingAbutments() {
		matched, err := check(ctx.Health.For(tooth))
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
