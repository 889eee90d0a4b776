package planner

import (
	"fmt"

	"github.com/prosthocare/prostho-api/planner/entities"
)

// GenerateOptions enumerates the structurally possible prosthesis candidates
// for one span. It decides only structure, which designs physically fit the
// gap and its boundaries; clinical feasibility is entirely the rule engine's
// job. missing is the case-wide missing set, needed to check presence of a
// designated cantilever abutment outside the span.
//
// Enumeration:
//
//	single-tooth bounded span    fdp, cantilever (designated abutment present),
//	                             rbb (anterior site), implant_single, rpd
//	multi-tooth bounded span     fdp (suppressed for cross-midline runs),
//	                             implant_fdp, rpd
//	distal-extension span        cantilever off the sole present boundary,
//	                             implant at the available sites, rpd
func GenerateOptions(span *entities.Span, missing map[entities.ToothCode]bool) []entities.OptionCandidate {
	var cands []entities.OptionCandidate

	switch {
	case span.Bounded() && span.Length == 1:
		cands = append(cands, makeFDP(span))
		if c, ok := makeDesignatedCantilever(span, missing); ok {
			cands = append(cands, c)
		}
		if span.Site.IsAnterior() && !span.CrossMidline {
			cands = append(cands, makeRBB(span))
		}
		cands = append(cands, makeImplantSingle(span))

	case span.Bounded():
		// A rigid bridge across the midline curvature is not offered;
		// such cases surface implant and removable designs instead.
		if !span.CrossMidline {
			cands = append(cands, makeFDP(span))
		}
		cands = append(cands, makeImplantFDP(span))

	default: // distal extension
		if c, ok := makeBoundaryCantilever(span); ok {
			cands = append(cands, c)
		}
		if span.Length == 1 {
			cands = append(cands, makeImplantSingle(span))
		} else {
			cands = append(cands, makeImplantFDP(span))
		}
	}

	cands = append(cands, makeRPD(span))
	return cands
}

func baseCandidate(span *entities.Span, kind entities.Kind) entities.OptionCandidate {
	return entities.OptionCandidate{
		Kind:     kind,
		Family:   kind.Family(),
		SpanID:   span.ID,
		Arch:     span.Arch,
		SpanType: span.Type,
		Length:   span.Length,
	}
}

func makeFDP(span *entities.Span) entities.OptionCandidate {
	c := baseCandidate(span, entities.KindFDP)
	c.ID = fmt.Sprintf("FIX_FDP_%s", span.ID)
	c.Meta.MesialAbutment = span.MesialAbutment
	c.Meta.DistalAbutment = span.DistalAbutment
	return c
}

func makeRBB(span *entities.Span) entities.OptionCandidate {
	c := baseCandidate(span, entities.KindRBB)
	c.ID = fmt.Sprintf("FIX_RBB_%s_%s", span.ID, span.Site)
	c.Meta.Site = span.Site
	c.Meta.MesialAbutment = span.MesialAbutment
	c.Meta.DistalAbutment = span.DistalAbutment
	return c
}

// makeDesignatedCantilever builds the cantilever candidate for a single-tooth
// bounded span whose site has a designated cantilever abutment (laterals off
// their canine, centrals off the paired central), provided that abutment is
// itself present.
func makeDesignatedCantilever(span *entities.Span, missing map[entities.ToothCode]bool) (entities.OptionCandidate, bool) {
	abut, ok := entities.CantileverAbutmentFor(span.Site)
	if !ok || missing[abut] {
		return entities.OptionCandidate{}, false
	}
	c := baseCandidate(span, entities.KindCantilever)
	c.ID = fmt.Sprintf("FIX_CL_%s_%s", span.ID, span.Site)
	c.Meta.Site = span.Site
	c.Meta.RequiredAbutment = abut
	return c, true
}

// makeBoundaryCantilever builds the cantilever candidate carried by the sole
// present boundary of a distal-extension span.
func makeBoundaryCantilever(span *entities.Span) (entities.OptionCandidate, bool) {
	boundaries := span.BoundaryTeeth()
	if len(boundaries) != 1 {
		return entities.OptionCandidate{}, false
	}
	c := baseCandidate(span, entities.KindCantilever)
	c.ID = fmt.Sprintf("FIX_CL_%s_%s", span.ID, boundaries[0])
	c.Meta.RequiredAbutment = boundaries[0]
	if span.Length == 1 {
		c.Meta.Site = span.Site
	}
	return c, true
}

func makeImplantSingle(span *entities.Span) entities.OptionCandidate {
	c := baseCandidate(span, entities.KindImplantSingle)
	c.ID = fmt.Sprintf("IMP_SINGLE_%s_%s", span.ID, span.Site)
	c.Meta.Site = span.Site
	return c
}

func makeImplantFDP(span *entities.Span) entities.OptionCandidate {
	c := baseCandidate(span, entities.KindImplantFDP)
	c.ID = fmt.Sprintf("IMP_FDP_%s_len%d", span.ID, span.Length)
	return c
}

func makeRPD(span *entities.Span) entities.OptionCandidate {
	c := baseCandidate(span, entities.KindRPD)
	c.ID = fmt.Sprintf("RPD_%s_%s", span.Arch, span.ID)
	return c
}
