// Package validation rejects malformed case snapshots before any rule
// evaluation runs, with field-level reasons and no partial results.
package validation

import (
	"fmt"

	"github.com/prosthocare/prostho-api/planner/entities"
)

// InputError reports a rejected snapshot with the offending field.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input in %s: %s", e.Field, e.Reason)
}

// ValidateSnapshot checks the health records and risk profile of a snapshot
// against the detected spans. Missing-teeth validation happens earlier, in
// span detection. Absent enum values are allowed (field-requiring rules fail
// closed per candidate); present values must be from the vocabulary.
func ValidateSnapshot(snap *entities.CaseSnapshot, spans []entities.Span) error {
	if err := validateRisk(&snap.PatientRisk); err != nil {
		return err
	}
	return validateHealthRecords(snap.AbutmentHealth, spans)
}

func validateRisk(risk *entities.PatientRiskProfile) error {
	checks := []struct {
		field string
		value string
		valid []string
	}{
		{"patient_risk.caries_risk", risk.CariesRisk, entities.CariesValues},
		{"patient_risk.occlusal_scheme", risk.OcclusalScheme, entities.OcclusionValues},
		{"patient_risk.parafunction", risk.Parafunction, entities.ParafunctionValues},
		{"patient_risk.opposing_dentition", risk.OpposingDentition, entities.OpposingValues},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		if !contains(c.valid, c.value) {
			return &InputError{Field: c.field, Reason: fmt.Sprintf("unknown value %q", c.value)}
		}
	}
	for _, flag := range risk.SystemicFlags {
		if !contains(entities.SystemicFlagValues, flag) {
			return &InputError{Field: "patient_risk.systemic_flags", Reason: fmt.Sprintf("unknown flag %q", flag)}
		}
	}
	return nil
}

func validateHealthRecords(records []entities.AbutmentHealthRecord, spans []entities.Span) error {
	// A health record must reference a tooth adjacent to some span: a
	// boundary abutment, a pier, or a designated cantilever abutment of a
	// single-tooth span.
	adjacent := make(map[entities.ToothCode]bool)
	for i := range spans {
		for _, t := range spans[i].BoundaryTeeth() {
			adjacent[t] = true
		}
		for _, t := range spans[i].PierAbutments {
			adjacent[t] = true
		}
		if spans[i].Length == 1 {
			if abut, ok := entities.CantileverAbutmentFor(spans[i].Site); ok {
				adjacent[abut] = true
			}
		}
	}

	seen := make(map[entities.ToothCode]int)
	for i, rec := range records {
		field := fmt.Sprintf("abutment_health[%d]", i)

		if _, err := entities.ParseToothCode(string(rec.Tooth)); err != nil {
			return &InputError{Field: field + ".tooth", Reason: err.Error()}
		}
		if !adjacent[rec.Tooth] {
			return &InputError{
				Field:  field + ".tooth",
				Reason: fmt.Sprintf("tooth %s is not adjacent to any detected span", rec.Tooth),
			}
		}
		if prev, dup := seen[rec.Tooth]; dup {
			return &InputError{
				Field:  field + ".tooth",
				Reason: fmt.Sprintf("duplicate record for tooth %s (first at index %d)", rec.Tooth, prev),
			}
		}
		seen[rec.Tooth] = i

		if rec.Status != "" && rec.Status != entities.StatusNotRecorded && !contains(entities.StatusValues, rec.Status) {
			return &InputError{Field: field + ".status", Reason: fmt.Sprintf("unknown value %q", rec.Status)}
		}
		if rec.MobilityMiller != "" && !contains(entities.MobilityValues, rec.MobilityMiller) {
			return &InputError{Field: field + ".mobility_miller", Reason: fmt.Sprintf("unknown value %q", rec.MobilityMiller)}
		}
		if rec.CrownRootRatio != "" && !contains(entities.CrownRootValues, rec.CrownRootRatio) {
			return &InputError{Field: field + ".crown_root_ratio", Reason: fmt.Sprintf("unknown value %q", rec.CrownRootRatio)}
		}
	}
	return nil
}

// BuildHealthMap indexes validated records by tooth.
func BuildHealthMap(records []entities.AbutmentHealthRecord) entities.HealthMap {
	m := make(entities.HealthMap, len(records))
	for _, rec := range records {
		m[rec.Tooth] = rec
	}
	return m
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
