package entities

// Family groups prosthesis kinds by support principle.
type Family string

const (
	FamilyFixed     Family = "fixed"
	FamilyRemovable Family = "removable"
	FamilyImplant   Family = "implant"
)

// Kind is a concrete prosthesis design.
type Kind string

const (
	KindFDP           Kind = "fdp"
	KindCantilever    Kind = "cantilever"
	KindRBB           Kind = "rbb"
	KindImplantSingle Kind = "implant_single"
	KindImplantFDP    Kind = "implant_fdp"
	KindRPD           Kind = "rpd"
)

// AllKinds lists every known kind in declaration order.
var AllKinds = []Kind{KindFDP, KindCantilever, KindRBB, KindImplantSingle, KindImplantFDP, KindRPD}

// Family returns the family a kind belongs to.
func (k Kind) Family() Family {
	switch k {
	case KindFDP, KindCantilever, KindRBB:
		return FamilyFixed
	case KindImplantSingle, KindImplantFDP:
		return FamilyImplant
	default:
		return FamilyRemovable
	}
}

// KnownKind reports whether k is one of the declared kinds.
func KnownKind(k Kind) bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// OptionMeta carries the structural metadata of a candidate. Each kind fills
// only the fields it needs: an abutment pair for fdp/rbb, a single site for
// implants, a required abutment for cantilevers, Kennedy data for rpd.
type OptionMeta struct {
	MesialAbutment   ToothCode `json:"mesial_abutment,omitempty"`
	DistalAbutment   ToothCode `json:"distal_abutment,omitempty"`
	Site             ToothCode `json:"site,omitempty"`
	RequiredAbutment ToothCode `json:"required_abutment,omitempty"`
	KennedyClass     string    `json:"kennedy_class,omitempty"`
	Modifications    int       `json:"modifications,omitempty"`
}

// OptionCandidate is one structurally possible prosthesis design for a span.
type OptionCandidate struct {
	ID       string     `json:"option_id"`
	Family   Family     `json:"family"`
	Kind     Kind       `json:"kind"`
	SpanID   string     `json:"span_id"`
	Arch     Arch       `json:"arch"`
	SpanType SpanType   `json:"span_type"`
	Length   int        `json:"length"`
	Meta     OptionMeta `json:"meta"`
}

// LoadBearingAbutments returns the present teeth the design would load:
// the boundary pair for fdp and rbb, the required abutment for a cantilever.
// Implant and removable designs load no natural abutment.
func (c *OptionCandidate) LoadBearingAbutments() []ToothCode {
	switch c.Kind {
	case KindFDP, KindRBB:
		teeth := make([]ToothCode, 0, 2)
		if c.Meta.MesialAbutment != "" {
			teeth = append(teeth, c.Meta.MesialAbutment)
		}
		if c.Meta.DistalAbutment != "" {
			teeth = append(teeth, c.Meta.DistalAbutment)
		}
		return teeth
	case KindCantilever:
		if c.Meta.RequiredAbutment != "" {
			return []ToothCode{c.Meta.RequiredAbutment}
		}
	}
	return nil
}

// RuleHit records the rule ids a candidate (or plan) matched, split by
// effect. A non-empty absolute set permanently excludes the candidate.
type RuleHit struct {
	Absolute []string `json:"absolute"`
	Relative []string `json:"relative"`
}

// Excluded reports whether any absolute rule matched.
func (h *RuleHit) Excluded() bool {
	return len(h.Absolute) > 0
}

// ScoredOption is a surviving candidate with its relative hits and rank
// score. RankScore is only defined for candidates with an empty absolute set.
type ScoredOption struct {
	OptionCandidate
	RuleHits  RuleHit `json:"rule_hits"`
	RankScore int     `json:"rank_score"`
}
