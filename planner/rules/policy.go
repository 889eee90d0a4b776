package rules

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/prosthocare/prostho-api/planner/entities"
	"gopkg.in/yaml.v3"
)

//go:embed default_policy.yaml
var defaultPolicyYAML []byte

// PlanLimits bounds the combinatorial search in the plan composer.
type PlanLimits struct {
	// TopK caps how many surviving candidates per span enter composition.
	TopK int `yaml:"top_k"`
	// CombinationCeiling caps the cross-product size; beyond it the engine
	// falls back to greedy-best and flags the result approximate.
	CombinationCeiling int `yaml:"combination_ceiling"`
}

// Policy is the externally configurable part of a RuleSet: penalty weights,
// the rule priority used for tie-breaking, the kind preference order, and
// the composition limits. It is loaded once and never mutated mid-request.
type Policy struct {
	PolicyID       string          `yaml:"policy_id"`
	RulesetVersion string          `yaml:"ruleset_version"`
	Weights        map[string]int  `yaml:"weights"`
	RulePriority   []string        `yaml:"rule_priority"`
	KindPreference []entities.Kind `yaml:"kind_preference"`
	Plan           PlanLimits      `yaml:"plan"`
}

// DefaultPolicy parses the embedded policy table.
func DefaultPolicy() (Policy, error) {
	return parsePolicy(defaultPolicyYAML)
}

// LoadPolicy reads a policy table from a YAML file.
func LoadPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("reading policy file: %w", err)
	}
	return parsePolicy(raw)
}

func parsePolicy(raw []byte) (Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("parsing policy: %w", err)
	}
	return p, nil
}

// RuleSet is the immutable value the engine evaluates against: the rule
// catalog bound to one policy. Built once at load time; any inconsistency
// between catalog and policy is fatal here, never a per-request condition.
type RuleSet struct {
	policy    Policy
	candidate []Rule
	plan      []Rule
	weights   map[string]int
	priority  map[string]int
	kindRank  map[entities.Kind]int
}

// New binds the rule catalog to a policy, validating their consistency.
func New(policy Policy) (*RuleSet, error) {
	catalog := Catalog()

	byID := make(map[string]*Rule, len(catalog))
	for i := range catalog {
		r := &catalog[i]
		if r.ID == "" {
			return nil, fmt.Errorf("rule table inconsistency: rule %d has empty id", i)
		}
		if _, dup := byID[r.ID]; dup {
			return nil, fmt.Errorf("rule table inconsistency: duplicate rule id %q", r.ID)
		}
		byID[r.ID] = r
		for _, k := range r.Kinds {
			if !entities.KnownKind(k) {
				return nil, fmt.Errorf("rule table inconsistency: rule %q references undefined kind %q", r.ID, k)
			}
		}
		switch r.Stage {
		case StageCandidate:
			if r.When == nil {
				return nil, fmt.Errorf("rule table inconsistency: candidate rule %q has no predicate", r.ID)
			}
		case StagePlan:
			if r.WhenPlan == nil {
				return nil, fmt.Errorf("rule table inconsistency: plan rule %q has no predicate", r.ID)
			}
		}
	}

	// Every penalty rule needs a configured weight; every weight must refer
	// to a known penalty rule.
	for id, w := range policy.Weights {
		r, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("rule table inconsistency: weight for undefined rule %q", id)
		}
		if r.Effect != EffectPenalty {
			return nil, fmt.Errorf("rule table inconsistency: weight for non-penalty rule %q", id)
		}
		if w <= 0 {
			return nil, fmt.Errorf("rule table inconsistency: non-positive weight %d for rule %q", w, id)
		}
	}
	for _, r := range catalog {
		if r.Effect == EffectPenalty {
			if _, ok := policy.Weights[r.ID]; !ok {
				return nil, fmt.Errorf("rule table inconsistency: penalty rule %q has no weight", r.ID)
			}
		}
	}

	priority := make(map[string]int, len(policy.RulePriority))
	for i, id := range policy.RulePriority {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("rule table inconsistency: priority entry for undefined rule %q", id)
		}
		if _, dup := priority[id]; dup {
			return nil, fmt.Errorf("rule table inconsistency: duplicate priority entry %q", id)
		}
		priority[id] = i
	}
	for _, r := range catalog {
		if r.Stage == StageCandidate && r.Effect == EffectPenalty {
			if _, ok := priority[r.ID]; !ok {
				return nil, fmt.Errorf("rule table inconsistency: relative rule %q missing from rule_priority", r.ID)
			}
		}
	}

	kindRank := make(map[entities.Kind]int, len(policy.KindPreference))
	for i, k := range policy.KindPreference {
		if !entities.KnownKind(k) {
			return nil, fmt.Errorf("rule table inconsistency: kind_preference entry %q is not a known kind", k)
		}
		if _, dup := kindRank[k]; dup {
			return nil, fmt.Errorf("rule table inconsistency: duplicate kind_preference entry %q", k)
		}
		kindRank[k] = i
	}
	for _, k := range entities.AllKinds {
		if _, ok := kindRank[k]; !ok {
			return nil, fmt.Errorf("rule table inconsistency: kind %q missing from kind_preference", k)
		}
	}

	if policy.Plan.TopK <= 0 {
		return nil, fmt.Errorf("rule table inconsistency: plan.top_k must be positive, got %d", policy.Plan.TopK)
	}
	if policy.Plan.CombinationCeiling <= 0 {
		return nil, fmt.Errorf("rule table inconsistency: plan.combination_ceiling must be positive, got %d", policy.Plan.CombinationCeiling)
	}
	if policy.PolicyID == "" {
		return nil, fmt.Errorf("rule table inconsistency: policy_id is empty")
	}
	if policy.RulesetVersion == "" {
		return nil, fmt.Errorf("rule table inconsistency: ruleset_version is empty")
	}

	rs := &RuleSet{
		policy:   policy,
		weights:  policy.Weights,
		priority: priority,
		kindRank: kindRank,
	}
	for _, r := range catalog {
		switch r.Stage {
		case StageCandidate:
			rs.candidate = append(rs.candidate, r)
		case StagePlan:
			rs.plan = append(rs.plan, r)
		}
	}
	return rs, nil
}

// PolicyID returns the active rule-weight table identifier.
func (rs *RuleSet) PolicyID() string { return rs.policy.PolicyID }

// Version returns the ruleset version stamp.
func (rs *RuleSet) Version() string { return rs.policy.RulesetVersion }

// CandidateRules returns the candidate-stage rules in catalog order.
func (rs *RuleSet) CandidateRules() []Rule { return rs.candidate }

// PlanRules returns the plan-stage rules in catalog order.
func (rs *RuleSet) PlanRules() []Rule { return rs.plan }

// Weight returns the configured penalty weight of a relative rule.
func (rs *RuleSet) Weight(id string) int { return rs.weights[id] }

// PriorityIndex returns the tie-break priority of a relative rule; lower is
// stronger. Unlisted ids (plan-stage rules) sort last.
func (rs *RuleSet) PriorityIndex(id string) int {
	if i, ok := rs.priority[id]; ok {
		return i
	}
	return len(rs.priority)
}

// KindRank returns the declared kind-preference position; lower is preferred.
func (rs *RuleSet) KindRank(k entities.Kind) int { return rs.kindRank[k] }

// Limits returns the composition bounds.
func (rs *RuleSet) Limits() PlanLimits { return rs.policy.Plan }
