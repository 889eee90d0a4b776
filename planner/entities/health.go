package entities

// Tooth status values accepted in abutment health records.
const (
	StatusPresentSound    = "present_sound"
	StatusPresentOperated = "present_operated"
	StatusPresentCarious  = "present_carious"
	StatusPresentImplant  = "present_implant"
	// StatusNotRecorded is the neutral default for teeth the caller supplied
	// no record for. Rules that need a field of such a record fail closed.
	StatusNotRecorded = "not_recorded"
)

// CrownRootWorst is the worst crown-root-ratio category; load-bearing
// abutments in this category exclude fixed designs.
const CrownRootWorst = "<1:1"

// Input vocabularies, exposed so clients never hard-code them.
var (
	StatusValues       = []string{StatusPresentSound, StatusPresentOperated, StatusPresentCarious, StatusPresentImplant}
	MobilityValues     = []string{"0", "1", "2", "3"}
	CrownRootValues    = []string{">=1:1", "~1:1", CrownRootWorst}
	CariesValues       = []string{"low", "moderate", "high"}
	OcclusionValues    = []string{"favorable", "heavy"}
	ParafunctionValues = []string{"none", "mild", "moderate", "severe"}
	OpposingValues     = []string{"natural", "complete_denture", "implant_supported", "mixed"}
	SystemicFlagValues = []string{
		"uncontrolled_diabetes",
		"recent_head_neck_radiation",
		"high_risk_antiresorptives",
		"poor_hygiene",
		"smoker",
		"periodontal_disease",
	}
)

// AbutmentHealthRecord is the caller-supplied condition of one present tooth.
// Empty strings and a nil EnamelOKForRBB mean the field was not recorded.
type AbutmentHealthRecord struct {
	Tooth          ToothCode `json:"tooth"`
	Status         string    `json:"status"`
	MobilityMiller string    `json:"mobility_miller"`
	CrownRootRatio string    `json:"crown_root_ratio"`
	EnamelOKForRBB *bool     `json:"enamel_ok_for_rbb"`
}

// NeutralHealthRecord is the explicit default for a tooth without a submitted
// record. Its empty fields make any rule that requires them fail closed; a
// tooth is never assumed healthy.
func NeutralHealthRecord(tooth ToothCode) AbutmentHealthRecord {
	return AbutmentHealthRecord{Tooth: tooth, Status: StatusNotRecorded}
}

// HealthMap indexes health records by tooth.
type HealthMap map[ToothCode]AbutmentHealthRecord

// For returns the record for a tooth, falling back to the neutral default.
func (m HealthMap) For(tooth ToothCode) AbutmentHealthRecord {
	if rec, ok := m[tooth]; ok {
		return rec
	}
	return NeutralHealthRecord(tooth)
}

// PatientRiskProfile holds the case-level risk factors. Read-only input.
type PatientRiskProfile struct {
	CariesRisk        string   `json:"caries_risk"`
	OcclusalScheme    string   `json:"occlusal_scheme"`
	Parafunction      string   `json:"parafunction"`
	OpposingDentition string   `json:"opposing_dentition"`
	SystemicFlags     []string `json:"systemic_flags"`
}

// HasSystemicFlag reports whether the profile carries the given flag.
func (p *PatientRiskProfile) HasSystemicFlag(flag string) bool {
	for _, f := range p.SystemicFlags {
		if f == flag {
			return true
		}
	}
	return false
}
