package planner

import (
	"time"

	"github.com/google/uuid"
	"github.com/prosthocare/prostho-api/logging"
	"github.com/prosthocare/prostho-api/metrics"
	"github.com/prosthocare/prostho-api/planner/entities"
	"github.com/prosthocare/prostho-api/planner/rules"
	"github.com/prosthocare/prostho-api/validation"
)

// EngineVersion stamps every result's provenance.
const EngineVersion = "1.2.0"

// Evaluate runs the full planning pipeline for one case snapshot against the
// given RuleSet: span detection, snapshot validation, structural option
// enumeration, rule evaluation, scoring and plan composition. It is a pure
// function of its inputs; every entity is created fresh from the snapshot
// and discarded with the response.
func Evaluate(rs *rules.RuleSet, snap *entities.CaseSnapshot) (*entities.PlanResult, error) {
	start := time.Now()

	spans, err := DetectSpans(snap.Missing)
	if err != nil {
		metrics.PlanEvaluationsTotal.WithLabelValues("input_error").Inc()
		return nil, err
	}
	if err := validation.ValidateSnapshot(snap, spans); err != nil {
		metrics.PlanEvaluationsTotal.WithLabelValues("input_error").Inc()
		return nil, err
	}

	health := validation.BuildHealthMap(snap.AbutmentHealth)

	missingSet := make(map[entities.ToothCode]bool)
	for i := range spans {
		for _, t := range spans[i].Missing {
			missingSet[t] = true
		}
	}

	// Arch summaries feed both the response and the RPD complexity rule.
	summaries := make(map[entities.Arch]entities.ArchSummary)
	for _, arch := range []entities.Arch{entities.ArchMaxilla, entities.ArchMandible} {
		var archSpans []entities.Span
		for i := range spans {
			if spans[i].Arch == arch {
				archSpans = append(archSpans, spans[i])
			}
		}
		if len(archSpans) > 0 {
			summaries[arch] = SummarizeArch(archSpans)
		}
	}

	// One shared, read-only context per span.
	contexts := make(map[string]*rules.CandidateContext, len(spans))
	var candidates []entities.OptionCandidate
	for i := range spans {
		span := &spans[i]
		summary := summaries[span.Arch]
		contexts[span.ID] = &rules.CandidateContext{
			Span:          span,
			Health:        health,
			Risk:          &snap.PatientRisk,
			KennedyClass:  summary.KennedyClass,
			Modifications: summary.Modifications,
		}
		for _, c := range GenerateOptions(span, missingSet) {
			if c.Kind == entities.KindRPD {
				c.Meta.KennedyClass = summary.KennedyClass
				c.Meta.Modifications = summary.Modifications
			}
			candidates = append(candidates, c)
		}
	}

	evaluated := EvaluateCandidates(rs, candidates, contexts)

	// Split survivors from discarded, keyed by span.
	survivorsBySpan := make(map[string][]evaluatedCandidate, len(spans))
	var discarded []entities.DiscardedOption
	for _, ec := range evaluated {
		if ec.hits.Excluded() {
			discarded = append(discarded, entities.DiscardedOption{
				OptionID: ec.candidate.ID,
				SpanID:   ec.candidate.SpanID,
				Kind:     ec.candidate.Kind,
				Absolute: ec.hits.Absolute,
			})
			continue
		}
		survivorsBySpan[ec.candidate.SpanID] = append(survivorsBySpan[ec.candidate.SpanID], ec)
	}
	if len(discarded) > 0 {
		metrics.CandidatesDiscardedTotal.Add(float64(len(discarded)))
	}
	if discarded == nil {
		discarded = []entities.DiscardedOption{}
	}

	spanOrder := make([]string, len(spans))
	spanOptions := make(map[string][]entities.ScoredOption, len(spans))
	for i := range spans {
		spanOrder[i] = spans[i].ID
		spanOptions[spans[i].ID] = ScoreAndSort(rs, survivorsBySpan[spans[i].ID])
	}

	plans, approximate, fallbackUsed, err := ComposePlans(rs, spans, spanOptions, &snap.PatientRisk)
	if err != nil {
		metrics.PlanEvaluationsTotal.WithLabelValues("no_feasible_plan").Inc()
		return nil, err
	}
	if approximate {
		metrics.CombinationOverflowTotal.Inc()
		logging.Warn("Combination ceiling exceeded, using greedy-best fallback",
			"spans", len(spans), "ceiling", rs.Limits().CombinationCeiling)
	}

	result := &entities.PlanResult{
		ArchSummaries: summaries,
		SpanOrder:     spanOrder,
		SpanOptions:   spanOptions,
		CasePlans:     plans,
		Provenance: entities.Provenance{
			EngineVersion:  EngineVersion,
			RulesetVersion: rs.Version(),
			EvaluationID:   uuid.NewString(),
			Discarded:      discarded,
			Approximate:    approximate,
			Fallback:       fallbackUsed,
		},
		ScoringPolicy: rs.PolicyID(),
	}

	metrics.PlanEvaluationsTotal.WithLabelValues("ok").Inc()
	metrics.PlanEvaluationDuration.Observe(time.Since(start).Seconds())

	return result, nil
}
