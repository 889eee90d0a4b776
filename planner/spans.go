// Package planner implements the treatment-planning engine: span detection,
// structural option enumeration, rule evaluation, scoring and plan
// composition. Every entry point is a pure function of its input snapshot;
// nothing is shared or mutated across requests.
package planner

import (
	"fmt"

	"github.com/prosthocare/prostho-api/planner/entities"
	"github.com/prosthocare/prostho-api/validation"
)

// DetectSpans partitions the submitted missing teeth into contiguous spans
// per arch, infers boundary abutments, classifies span types and records
// pier abutments. Duplicate missing entries are deduplicated; malformed
// codes are rejected with an InputError.
func DetectSpans(missing []string) ([]entities.Span, error) {
	codes, err := parseMissing(missing)
	if err != nil {
		return nil, err
	}

	missingSet := make(map[entities.ToothCode]bool, len(codes))
	for _, t := range codes {
		missingSet[t] = true
	}

	var spans []entities.Span
	for _, arch := range []entities.Arch{entities.ArchMaxilla, entities.ArchMandible} {
		spans = append(spans, detectArchSpans(arch, missingSet)...)
	}
	return spans, nil
}

// parseMissing validates and deduplicates the raw missing-teeth list,
// preserving submission order.
func parseMissing(missing []string) ([]entities.ToothCode, error) {
	seen := make(map[entities.ToothCode]bool, len(missing))
	codes := make([]entities.ToothCode, 0, len(missing))
	for _, raw := range missing {
		code, err := entities.ParseToothCode(raw)
		if err != nil {
			return nil, &validation.InputError{Field: "missing", Reason: err.Error()}
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes, nil
}

// detectArchSpans walks one arch's canonical slot order and turns each
// maximal run of missing slots into a Span.
func detectArchSpans(arch entities.Arch, missing map[entities.ToothCode]bool) []entities.Span {
	order := entities.ArchOrder(arch)

	var spans []entities.Span
	for i := 0; i < len(order); {
		if !missing[order[i]] {
			i++
			continue
		}
		start := i
		for i < len(order) && missing[order[i]] {
			i++
		}
		spans = append(spans, buildSpan(arch, order, start, i-1, len(spans)+1))
	}

	markPierAbutments(spans)
	return spans
}

// buildSpan assembles the Span for the run order[first..last].
func buildSpan(arch entities.Arch, order []entities.ToothCode, first, last, ordinal int) entities.Span {
	run := make([]entities.ToothCode, last-first+1)
	copy(run, order[first:last+1])

	var before, after entities.ToothCode
	if first > 0 {
		before = order[first-1]
	}
	if last < len(order)-1 {
		after = order[last+1]
	}

	crossMidline := first <= entities.MidlineSeamIndex && last > entities.MidlineSeamIndex

	// Map the traversal-order neighbors onto mesial/distal. For runs on the
	// right half the neighbor toward the midline (after) is mesial; mirrored
	// on the left half. A cross-midline run has two distal-facing boundaries;
	// we keep the patient-right one as mesial for a stable orientation.
	var mesial, distal entities.ToothCode
	switch {
	case crossMidline:
		mesial, distal = before, after
	case last <= entities.MidlineSeamIndex: // entirely right half
		mesial, distal = after, before
	default: // entirely left half
		mesial, distal = before, after
	}

	spanType := entities.SpanBounded
	if mesial == "" || distal == "" {
		spanType = entities.SpanDistalExtension
	}

	prefix := "Md"
	if arch == entities.ArchMaxilla {
		prefix = "Mx"
	}

	s := entities.Span{
		ID:             fmt.Sprintf("%s-%d", prefix, ordinal),
		Arch:           arch,
		Missing:        run,
		MesialAbutment: mesial,
		DistalAbutment: distal,
		Type:           spanType,
		CrossMidline:   crossMidline,
		Length:         len(run),
	}
	if s.Length == 1 {
		s.Site = run[0]
	}
	return s
}

// markPierAbutments records, on both spans, any present tooth that is the
// distal boundary of one span and the mesial boundary of another.
func markPierAbutments(spans []entities.Span) {
	for i := range spans {
		for j := range spans {
			if i == j {
				continue
			}
			tooth := spans[i].DistalAbutment
			if tooth == "" || tooth != spans[j].MesialAbutment {
				continue
			}
			appendPier(&spans[i], tooth)
			appendPier(&spans[j], tooth)
		}
	}
}

func appendPier(s *entities.Span, tooth entities.ToothCode) {
	for _, p := range s.PierAbutments {
		if p == tooth {
			return
		}
	}
	s.PierAbutments = append(s.PierAbutments, tooth)
}

// AbutmentTeeth collects the distinct boundary and pier teeth of the given
// spans in discovery order; these are the teeth a caller should submit
// health records for.
func AbutmentTeeth(spans []entities.Span) []entities.ToothCode {
	seen := make(map[entities.ToothCode]bool)
	var teeth []entities.ToothCode
	add := func(t entities.ToothCode) {
		if t != "" && !seen[t] {
			seen[t] = true
			teeth = append(teeth, t)
		}
	}
	for i := range spans {
		add(spans[i].MesialAbutment)
		add(spans[i].DistalAbutment)
		for _, p := range spans[i].PierAbutments {
			add(p)
		}
	}
	return teeth
}
