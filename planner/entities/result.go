package entities

// CaseSnapshot is the per-request input consumed from the transport layer.
type CaseSnapshot struct {
	Missing        []string               `json:"missing"`
	AbutmentHealth []AbutmentHealthRecord `json:"abutment_health"`
	PatientRisk    PatientRiskProfile     `json:"patient_risk"`
}

// CasePlan assigns exactly one surviving option to every detected span.
type CasePlan struct {
	ID string `json:"plan_id"`
	// Selection maps span id to the chosen option id.
	Selection  map[string]string `json:"selection"`
	TotalScore int               `json:"total_score"`
	RuleHits   RuleHit           `json:"plan_rule_hits"`
}

// ArchSummary is the per-arch Kennedy classification derived from span data.
type ArchSummary struct {
	KennedyClass  string `json:"kennedy_class"`
	Modifications int    `json:"modifications"`
	Spans         int    `json:"spans"`
}

// DiscardedOption records a candidate excluded by absolute rules, with the
// triggering rule ids.
type DiscardedOption struct {
	OptionID string   `json:"option_id"`
	SpanID   string   `json:"span_id"`
	Kind     Kind     `json:"kind"`
	Absolute []string `json:"absolute"`
}

// Provenance stamps a result with engine and ruleset versions, the per-call
// evaluation id, the discarded candidates, and whether an approximation
// fallback was used.
type Provenance struct {
	EngineVersion  string            `json:"engine_version"`
	RulesetVersion string            `json:"ruleset_version"`
	EvaluationID   string            `json:"evaluation_id"`
	Discarded      []DiscardedOption `json:"discarded"`
	Approximate    bool              `json:"approximate"`
	Fallback       string            `json:"fallback,omitempty"`
}

// PlanResult is the full engine output for one case snapshot. SpanOrder
// preserves span discovery order since SpanOptions is a map.
type PlanResult struct {
	ArchSummaries map[Arch]ArchSummary      `json:"arch_summaries"`
	SpanOrder     []string                  `json:"span_order"`
	SpanOptions   map[string][]ScoredOption `json:"span_options"`
	CasePlans     []CasePlan                `json:"case_plans"`
	Provenance    Provenance                `json:"provenance"`
	ScoringPolicy string                    `json:"scoring_policy"`
}

// SpansResult is the output of span detection alone: the spans plus the
// distinct abutment teeth the caller should collect health records for.
type SpansResult struct {
	Spans         []Span      `json:"spans"`
	AbutmentTeeth []ToothCode `json:"abutment_teeth"`
}
